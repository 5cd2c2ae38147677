package apperrors

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// Resource errors
	ErrResourceNotFound      = errors.New("resource not found")
	ErrResourceAlreadyExists = errors.New("resource already exists")
	ErrConflict              = errors.New("conflict")

	// Authentication errors
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("invalid token")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")

	// Persistence errors
	ErrStorage              = errors.New("storage error")
	ErrReferentialIntegrity = errors.New("referential integrity violation")
)

// Student errors
var (
	ErrStudentNotFound       = NewResourceNotFoundError("student not found")
	ErrStudentAlreadyDeleted = NewConflictError("student is already in the bin")
	ErrStudentNotDeleted     = NewConflictError("student is not in the bin")
	ErrStudentStillActive    = NewConflictError("student must be moved to the bin before permanent deletion")
	ErrRollNumberTaken       = NewConflictError("roll number already taken in this class and section")
	ErrAdmissionNumberTaken  = NewConflictError("admission number already exists")
)

// Class errors
var (
	ErrClassNotFound   = NewResourceNotFoundError("class not found")
	ErrSectionNotFound = NewResourceNotFoundError("section not found")
	ErrClassExists     = NewConflictError("class with this name already exists")
	ErrSectionExists   = NewConflictError("section with this name already exists in the class")
)

// Content Errors
var (
	ErrInvalidFormat = errors.New("invalid token format")
)

// NewResourceNotFoundError creates a new custom error for resource not found with a message
func NewResourceNotFoundError(message string) error {
	return &CustomError{
		Err:     ErrResourceNotFound,
		Message: message,
	}
}

// NewConflictError creates a new custom error for conflict situations with a message
func NewConflictError(message string) error {
	return &CustomError{
		Err:     ErrConflict,
		Message: message,
	}
}

// NewForbiddenError creates a new custom error for permission denied with a message
func NewForbiddenError(message string) error {
	return &CustomError{
		Err:     ErrPermissionDenied,
		Message: message,
	}
}

// NewBadRequestError creates a new custom error for bad request with a message
func NewBadRequestError(message string) error {
	return &CustomError{
		Err:     ErrBadRequest,
		Message: message,
	}
}

// NewValidationError rejects a whole request before any work is attempted.
func NewValidationError(message string) error {
	return &CustomError{
		Err:     ErrValidationFailed,
		Message: message,
	}
}

// Is returns whether target matches any of the errors in errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err       error
	Message   string
	StatusMsg string
	Code      string
	Details   map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// WithCode adds an error code
func (e *CustomError) WithCode(code string) *CustomError {
	e.Code = code
	return e
}

// WithStatusMsg adds a user-friendly status message
func (e *CustomError) WithStatusMsg(msg string) *CustomError {
	e.StatusMsg = msg
	return e
}

// StorageError is a persistence failure tagged with the store operation that raised it.
type StorageError struct {
	Op  string
	Err error
}

// NewStorageError wraps err unless it already carries application meaning
// (not found, conflict, referential integrity), which callers need to match on.
func NewStorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	var custom *CustomError
	var ref *ReferentialIntegrityError
	var storage *StorageError
	if errors.As(err, &custom) || errors.As(err, &ref) || errors.As(err, &storage) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap exposes the driver error
func (e *StorageError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrStorage) match any StorageError
func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}

// ReferentialIntegrityError reports which table and constraint still reference a row
// that was about to be removed.
type ReferentialIntegrityError struct {
	Table      string
	Constraint string
	Detail     string
}

func (e *ReferentialIntegrityError) Error() string {
	msg := fmt.Sprintf("record is still referenced by %s (constraint %s)", e.Table, e.Constraint)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// Is lets errors.Is(err, ErrReferentialIntegrity) match
func (e *ReferentialIntegrityError) Is(target error) bool {
	return target == ErrReferentialIntegrity
}

// Details returns the fields an operator needs to find the blocking rows.
func (e *ReferentialIntegrityError) Details() map[string]interface{} {
	return map[string]interface{}{
		"table":      e.Table,
		"constraint": e.Constraint,
		"detail":     e.Detail,
	}
}
