package main

import (
	"errors"
	"fmt"
)

// Exit codes for different error types.
// These enable scripts to distinguish between failure modes.
const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0

	// ExitGeneral indicates a general error, no credentials, or a failed check
	ExitGeneral = 1

	// ExitUsage indicates invalid arguments, an invalid slot, or bad config
	ExitUsage = 2

	// ExitNotFound indicates the requested credential is not set
	ExitNotFound = 3
)

// exitError carries an exit code through cobra's error return.
type exitError struct {
	code int
	err  error

	// reported is set when the command already explained the failure on
	// stdout, so execute does not print it again.
	reported bool
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

func withExitCode(code int, err error) error {
	return &exitError{code: code, err: err}
}

func reportedExit(code int, err error) error {
	return &exitError{code: code, err: err, reported: true}
}

// shouldPrint reports whether execute must print err to stderr.
func shouldPrint(err error) bool {
	var ee *exitError
	if errors.As(err, &ee) {
		return !ee.reported
	}
	return err != nil
}

// exitCode maps an error returned from a command to a process exit code.
func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return ExitGeneral
}
