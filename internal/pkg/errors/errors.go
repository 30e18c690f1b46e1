package errors

import "errors"

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is a generic sentinel for auth failures.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrDecryptFailed marks ciphertext that could not be authenticated or
	// decoded. Callers must treat the payload as absent, never as partial.
	ErrDecryptFailed = errors.New("decrypt failed")
	// ErrInsufficientData marks analyses that need more sessions than the
	// user has recorded.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrConflict marks writes that lost a uniqueness or version race.
	ErrConflict = errors.New("conflict")
)
