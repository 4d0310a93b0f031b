package types

import (
	"errors"
	"fmt"
)

// ErrorCode represents a specific error type
type ErrorCode string

const (
	// Caller errors
	ErrValidation    ErrorCode = "VALIDATION"
	ErrAuthorization ErrorCode = "AUTHORIZATION"
	ErrStateConflict ErrorCode = "STATE_CONFLICT"
	ErrNotFound      ErrorCode = "NOT_FOUND"

	// System errors
	ErrExternalDependency ErrorCode = "EXTERNAL_DEPENDENCY"
	ErrInternal           ErrorCode = "INTERNAL"
)

// LeagueError is the structured error returned across the league service boundary
type LeagueError struct {
	Code    ErrorCode
	Message string
	Err     error // Underlying error, if any
}

// Error implements the error interface
func (e *LeagueError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *LeagueError) Unwrap() error {
	return e.Err
}

// NewLeagueError creates a new LeagueError
func NewLeagueError(code ErrorCode, message string) *LeagueError {
	return &LeagueError{
		Code:    code,
		Message: message,
	}
}

// NewLeagueErrorf creates a new LeagueError with a formatted message
func NewLeagueErrorf(code ErrorCode, format string, args ...interface{}) *LeagueError {
	return NewLeagueError(code, fmt.Sprintf(format, args...))
}

// WrapError wraps an existing error in a LeagueError
func WrapError(code ErrorCode, message string, err error) *LeagueError {
	return &LeagueError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// IsLeagueError checks if an error is a LeagueError and has a specific code
func IsLeagueError(err error, code ErrorCode) bool {
	var leagueErr *LeagueError
	if err == nil {
		return false
	}
	if ok := As(err, &leagueErr); !ok {
		return false
	}
	return leagueErr.Code == code
}

// As finds the first LeagueError in err's chain
func As(err error, target **LeagueError) bool {
	if target == nil || err == nil {
		return false
	}
	return errors.As(err, target)
}

// CodeOf returns the code of a LeagueError, or ErrInternal for any other error
func CodeOf(err error) ErrorCode {
	var leagueErr *LeagueError
	if As(err, &leagueErr) {
		return leagueErr.Code
	}
	return ErrInternal
}
