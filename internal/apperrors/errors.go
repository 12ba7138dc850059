package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found,
// or exists but is out of the caller's tenant scope.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates that a document, period or journal is not in a state
// permitting the requested transition.
var ErrConflict = errors.New("state conflict")

// ErrPolicyBlocked indicates a policy rejection (closed period, cutover lock,
// opening-balances block, SoD conflict). Always audit-logged before surfacing.
var ErrPolicyBlocked = errors.New("blocked by policy")

// ErrConfiguration indicates a missing required tenant configuration value,
// such as an unmapped control account.
var ErrConfiguration = errors.New("configuration error")

// ErrForbidden indicates the caller lacks a required permission.
var ErrForbidden = errors.New("forbidden")

// ErrInternal indicates an unexpected internal failure.
var ErrInternal = errors.New("internal error")

// AppError carries an HTTP-ish status code alongside a message and a wrapped cause.
// Repositories use it to surface infrastructure failures without losing context.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError wrapping the given cause.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}
