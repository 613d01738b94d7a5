package health

import "errors"

var (
	ErrCheckFailed     = errors.New("health: check failed")
	ErrCheckTimeout    = errors.New("health: check timeout")
	ErrCheckerNotFound = errors.New("health: checker not found")

	// ErrNoCredentials means fewer credentials than MinKeys are available.
	ErrNoCredentials = errors.New("health: not enough credentials")

	// ErrMissingSlot means a required slot holds no credential.
	ErrMissingSlot = errors.New("health: required slot missing")
)
