package cache

import (
	"context"
	"errors"
	"strings"
	"time"
)

// MaxKeyLength bounds keys produced by a Keyer.
const MaxKeyLength = 512

var (
	ErrInvalidKey = errors.New("cache: key is invalid")
	ErrKeyTooLong = errors.New("cache: key exceeds max length")
)

// Cache holds encoded HTTP responses until they expire.
//
// Implementations must be safe for concurrent use. A miss, an expired
// entry and a backend failure on Get all look the same to the caller: the
// request falls through to the wrapped handler.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)

	// Set stores value for ttl. A ttl <= 0 stores nothing.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete drops key if present.
	Delete(ctx context.Context, key string) error
}

// ValidateKey rejects blank keys, keys spanning lines and keys longer than
// MaxKeyLength.
func ValidateKey(key string) error {
	switch {
	case strings.TrimSpace(key) == "", strings.ContainsAny(key, "\r\n"):
		return ErrInvalidKey
	case len(key) > MaxKeyLength:
		return ErrKeyTooLong
	}
	return nil
}
