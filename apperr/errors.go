// Package apperr provides structured error types shared by the canvas,
// service and controller layers.
//
// Errors carry a machine-readable Code so handlers can map them to HTTP
// statuses without matching on message text:
//
//	err := apperr.New(apperr.CodeInvalidName, "outfit name is required")
//	if apperr.Is(err, apperr.CodeInvalidName) {
//	    // reject with 422
//	}
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code represents a machine-readable error code.
type Code string

const (
	// Input validation
	CodeInvalidInput Code = "INVALID_INPUT"
	CodeInvalidName  Code = "INVALID_NAME"
	CodeNoItems      Code = "NO_ITEMS"
	CodeNoProfile    Code = "NO_PROFILE_IMAGE"
	CodeInvalidOrder Code = "INVALID_ORDER"

	// Lookups
	CodeNotFound      Code = "NOT_FOUND"
	CodeLayerNotFound Code = "LAYER_NOT_FOUND"
	CodeDuplicate     Code = "DUPLICATE"

	// Auth
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeForbidden    Code = "FORBIDDEN"
	CodeConflict     Code = "CONFLICT"

	// Submission pipeline
	CodeCaptureFailed Code = "CAPTURE_FAILED"
	CodeUploadFailed  Code = "UPLOAD_FAILED"
	CodePersistFailed Code = "PERSIST_FAILED"
	CodeBusy          Code = "SUBMIT_IN_PROGRESS"
	CodeSessionClosed Code = "SESSION_CLOSED"

	CodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Is reports whether err has the given error code.
func Is(err error, code Code) bool {
	return GetCode(err) == code
}

// GetCode extracts the error code from an error chain.
// Returns empty string if no *Error is present.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Message returns the human-readable part of err, falling back to err.Error().
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// HTTPStatus maps an error code to the response status used by controllers.
func HTTPStatus(err error) int {
	switch GetCode(err) {
	case CodeInvalidInput, CodeInvalidOrder:
		return http.StatusBadRequest
	case CodeInvalidName, CodeNoItems, CodeNoProfile, CodeCaptureFailed:
		return http.StatusUnprocessableEntity
	case CodeNotFound, CodeLayerNotFound:
		return http.StatusNotFound
	case CodeDuplicate, CodeConflict, CodeBusy:
		return http.StatusConflict
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeUploadFailed, CodePersistFailed:
		return http.StatusBadGateway
	case CodeSessionClosed:
		return http.StatusGone
	default:
		return http.StatusInternalServerError
	}
}
