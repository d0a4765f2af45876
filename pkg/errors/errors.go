package errors

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Common application errors
var (
	ErrNotFound        = NewNotFoundError("resource", "resource not found")
	ErrAlreadyExists   = NewAlreadyExistsError("resource", "resource already exists")
	ErrInvalidArgument = NewValidationError("", "invalid argument")
	ErrInternal        = NewInternalError("internal server error", nil)
)

// ValidationError represents a validation failure with field-level details
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed: %s - %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// GRPCStatus returns the gRPC status for this error
func (e *ValidationError) GRPCStatus() *status.Status {
	return status.New(codes.InvalidArgument, e.Error())
}

// NotFoundError represents a resource not found error
type NotFoundError struct {
	Resource string
	Message  string
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(resource, message string) *NotFoundError {
	return &NotFoundError{
		Resource: resource,
		Message:  message,
	}
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// GRPCStatus returns the gRPC status for this error
func (e *NotFoundError) GRPCStatus() *status.Status {
	return status.New(codes.NotFound, e.Error())
}

// AlreadyExistsError represents a resource already exists error
type AlreadyExistsError struct {
	Resource string
	Message  string
}

// NewAlreadyExistsError creates a new already exists error
func NewAlreadyExistsError(resource, message string) *AlreadyExistsError {
	return &AlreadyExistsError{
		Resource: resource,
		Message:  message,
	}
}

// Error implements the error interface
func (e *AlreadyExistsError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s already exists", e.Resource)
}

// GRPCStatus returns the gRPC status for this error
func (e *AlreadyExistsError) GRPCStatus() *status.Status {
	return status.New(codes.AlreadyExists, e.Error())
}

// InternalError represents an internal server error with context
type InternalError struct {
	Message string
	Err     error
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *InternalError {
	return &InternalError{
		Message: message,
		Err:     err,
	}
}

// Error implements the error interface
func (e *InternalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *InternalError) Unwrap() error {
	return e.Err
}

// GRPCStatus returns the gRPC status for this error.
// The wrapped cause is not exposed to clients.
func (e *InternalError) GRPCStatus() *status.Status {
	return status.New(codes.Internal, e.Message)
}

// ConstraintKind identifies which storage constraint rejected a write.
type ConstraintKind string

const (
	// UniqueViolation is raised when a write duplicates a unique column.
	UniqueViolation ConstraintKind = "unique"
	// NotNullViolation is raised when a write omits a required column.
	NotNullViolation ConstraintKind = "not_null"
)

// ConstraintError is a write rejected by the storage engine.
// Column is empty when the engine did not report it.
type ConstraintError struct {
	Kind   ConstraintKind
	Table  string
	Column string
	Err    error
}

// NewConstraintError creates a new constraint error
func NewConstraintError(kind ConstraintKind, table, column string, err error) *ConstraintError {
	return &ConstraintError{
		Kind:   kind,
		Table:  table,
		Column: column,
		Err:    err,
	}
}

// Error implements the error interface
func (e *ConstraintError) Error() string {
	target := e.Table
	if e.Column != "" {
		target = e.Table + "." + e.Column
	}
	switch e.Kind {
	case UniqueViolation:
		return fmt.Sprintf("unique constraint violated: %s already exists", target)
	case NotNullViolation:
		return fmt.Sprintf("not-null constraint violated: %s is required", target)
	default:
		return fmt.Sprintf("constraint violated: %s", target)
	}
}

// Unwrap returns the driver error
func (e *ConstraintError) Unwrap() error {
	return e.Err
}

// GRPCStatus returns the gRPC status for this error
func (e *ConstraintError) GRPCStatus() *status.Status {
	if e.Kind == UniqueViolation {
		return status.New(codes.AlreadyExists, e.Error())
	}
	return status.New(codes.InvalidArgument, e.Error())
}

// IsUniqueViolation reports whether err is a unique constraint violation.
func IsUniqueViolation(err error) bool {
	var ce *ConstraintError
	return errors.As(err, &ce) && ce.Kind == UniqueViolation
}

// IsNotNullViolation reports whether err is a not-null constraint violation.
func IsNotNullViolation(err error) bool {
	var ce *ConstraintError
	return errors.As(err, &ce) && ce.Kind == NotNullViolation
}

// GRPCStatuser interface for errors that can provide gRPC status
type GRPCStatuser interface {
	GRPCStatus() *status.Status
}
