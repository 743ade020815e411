package util

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
)

// DomainError standardizes application errors carried to the request
// boundary, where they are rendered as {error:{code, field?, message}}.
type DomainError struct {
	Code       string
	Message    string
	Field      string
	HTTPStatus int
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Body returns the uniform wire shape {error:{code, field?, message}}.
func (e *DomainError) Body() map[string]any {
	inner := map[string]any{
		"code":    e.Code,
		"message": e.Message,
	}
	if e.Field != "" {
		inner["field"] = e.Field
	}
	return map[string]any{"error": inner}
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status}
}

func NewValidationError(message string) error {
	return NewDomainError("VALIDATION_ERROR", message, http.StatusBadRequest)
}

// NewFieldError reports a missing or malformed field by name.
func NewFieldError(code, field, message string) error {
	return &DomainError{Code: code, Message: message, Field: field, HTTPStatus: http.StatusBadRequest}
}

func NewFieldRequired(field string) error {
	return NewFieldError("FIELD_REQUIRED", field, fmt.Sprintf("%s is required", field))
}

func NewNotFound(resource string) error {
	return &DomainError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
	}
}

// NewResourceNotFound uses an explicit error code, e.g. USER_NOT_FOUND.
func NewResourceNotFound(code, resource string) error {
	return &DomainError{
		Code:       code,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError("UNAUTHORIZED", message, http.StatusUnauthorized)
}

func NewForbidden(message string) error {
	return NewDomainError("FORBIDDEN", message, http.StatusForbidden)
}

func NewConflict(code, message string) error {
	return NewDomainError(code, message, http.StatusConflict)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError. Storage-layer
// errors never reach the client verbatim: pgx.ErrNoRows becomes a 404 and
// anything else a generic 500.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return NewNotFound("resource").(*DomainError)
	}
	return NewInternalError(err).(*DomainError)
}

func MapError(err error) error {
	if err == nil {
		return nil
	}
	return ToDomainError(err)
}
