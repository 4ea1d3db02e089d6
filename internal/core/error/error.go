package errx

import (
	"errors"
	"fmt"
	"net/http"
)

// Fault classifies where in the pipeline a run failed. Every terminal run
// error carries exactly one fault kind so callers can react without string
// matching.
type Fault string

const (
	// FaultTranslation: the planner produced nothing usable.
	FaultTranslation Fault = "translation"
	// FaultValidation: the structured intent violated plan rules.
	FaultValidation Fault = "validation"
	// FaultResolution: vessel or time resolution failed.
	FaultResolution Fault = "resolution"
	// FaultQuery: the position store was unavailable or rejected the query.
	FaultQuery Fault = "query"
	// FaultAnalytical: an analytics stage hit a malformed input or invariant.
	FaultAnalytical Fault = "analytical"
)

const (
	// SystemErrorMessage is a user-facing fallback when internal errors occur.
	SystemErrorMessage = "internal server error"
	// RedisErrorMessage describes Redis related failures.
	RedisErrorMessage = "redis operation failed"
	// RedisNotFoundMessage describes a missing Redis key.
	RedisNotFoundMessage = "redis key not found"
	// StoreErrorMessage describes position-store failures.
	StoreErrorMessage = "position store operation failed"
)

// AppError wraps an underlying error with an HTTP status, a safe message and
// an optional pipeline fault classification.
type AppError struct {
	Err     error
	Status  int
	Message string
	Fault   Fault
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

// Unwrap exposes the underlying error for errors.Is / errors.As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError with the provided information.
func New(err error, status int, message string) *AppError {
	return &AppError{
		Err:     err,
		Status:  status,
		Message: message,
	}
}

// NewFault creates an AppError classified under one of the pipeline fault
// kinds. The message is what reaches the run result; the wrapped error stays
// available for logs.
func NewFault(kind Fault, err error, message string) *AppError {
	return &AppError{
		Err:     err,
		Status:  http.StatusUnprocessableEntity,
		Message: message,
		Fault:   kind,
	}
}

// Faultf is a convenience formatter over NewFault without a wrapped cause.
func Faultf(kind Fault, format string, args ...any) *AppError {
	return NewFault(kind, nil, fmt.Sprintf(format, args...))
}

// FaultOf extracts the fault classification from an error chain, or "" when
// the error is not a classified pipeline fault.
func FaultOf(err error) Fault {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Fault
	}
	return ""
}

// Is reports whether the target matches the underlying error or the AppError itself.
func (e *AppError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// As allows casting to AppError or the wrapped error in a chain.
func (e *AppError) As(target any) bool {
	if errors.As(e.Err, target) {
		return true
	}
	if t, ok := target.(**AppError); ok {
		*t = e
		return true
	}
	return false
}
