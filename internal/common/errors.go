package common

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("already exists")
	ErrInternal     = errors.New("internal error")
	ErrDatabase     = errors.New("database error")
	ErrNoText       = errors.New("no text extracted")
	ErrNoClasses    = errors.New("no classes found")
	ErrTooLarge     = errors.New("upload too large")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// InvalidInput builds a validation AppError.
func InvalidInput(message string) *AppError {
	return NewAppError("INVALID_INPUT", message, ErrInvalidInput)
}

// InvalidInputf is InvalidInput with formatting.
func InvalidInputf(format string, args ...any) *AppError {
	return InvalidInput(fmt.Sprintf(format, args...))
}

// HTTPStatus maps an error chain onto an HTTP status code.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrNoText), errors.Is(err, ErrNoClasses):
		return http.StatusBadRequest
	case errors.Is(err, ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the user-facing part of err: the AppError message when
// there is one, the error text otherwise.
func Message(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

// GRPCStatus converts an application error into a gRPC status error.
func GRPCStatus(err error) error {
	if err == nil {
		return nil
	}
	msg := Message(err)
	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrNoText), errors.Is(err, ErrNoClasses):
		return InvalidArgumentError(msg)
	case errors.Is(err, ErrNotFound):
		return NotFoundError(msg)
	case errors.Is(err, ErrUnauthorized):
		return status.Error(codes.Unauthenticated, msg)
	case errors.Is(err, ErrConflict):
		return status.Error(codes.AlreadyExists, msg)
	default:
		return InternalError(msg)
	}
}

// gRPC error helpers
func InvalidArgumentError(message string) error {
	return status.Error(codes.InvalidArgument, message)
}

func NotFoundError(message string) error {
	return status.Error(codes.NotFound, message)
}

func InternalError(message string) error {
	return status.Error(codes.Internal, message)
}
