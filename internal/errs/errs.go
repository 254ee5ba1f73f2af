package errs

import "errors"

var (
	// ErrNotAuthenticated is returned when an operation needs an owner and no user session exists.
	ErrNotAuthenticated = errors.New("user not authenticated")
	// ErrValidation marks a missing or invalid required field.
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	// ErrQueryFailure is an underlying store query that could not complete.
	ErrQueryFailure    = errors.New("query failure")
	ErrAlreadyEnrolled = errors.New("already enrolled in challenge")
)
