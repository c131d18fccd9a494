// Copyright (c) 2026 Planora. All rights reserved.

/*
Package apperr defines the centralized error handling framework for the EDT client.

It provides a rich error type that bridges the gap between low-level transport
failures and the session state transitions they must produce.

Architecture:

  - AppError: A struct containing a machine-readable Code, a user-facing message,
    and a Kind that classifies the failure.
  - Kind taxonomy: Recoverable input errors keep the session alive, session
    invalidation errors force a logout, transient errors are logged and retried
    on the next occasion.
  - Mapping: Explicit mapping from AppError to HTTP status codes for the shell.

Every error that leaves the gateway or the session store is wrapped as an
[AppError] so the guard and the shell never have to inspect raw transport errors.
*/
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure by the session transition it must produce.
type Kind int

const (
	// KindRecoverable covers bad credentials and validation failures. The
	// session stays as it was and the user may retry.
	KindRecoverable Kind = iota

	// KindSessionInvalid covers expired or revoked credentials. The session
	// must be cleared and the user sent back to the login screen.
	KindSessionInvalid

	// KindTransient covers network-level failures of background fetches.
	// They are logged and never mutate session state.
	KindTransient

	// KindInternal covers everything unexpected.
	KindInternal
)

// AppError is the canonical error type for the EDT client.
//
// The Cause field is for logging only and is never surfaced to the UI,
// to avoid leaking transport internals into rendered error messages.
type AppError struct {
	// Code is a machine-readable error identifier (e.g. "UNAUTHORIZED").
	Code string `json:"code"`
	// Message is a human-readable description safe to render.
	Message string `json:"error"`
	// Kind classifies the failure for the session lifecycle.
	Kind Kind `json:"-"`
	// HTTPStatus is the status the local shell responds with.
	HTTPStatus int `json:"-"`
	// Cause is the underlying error, used for logging only.
	Cause error `json:"-"`
	// Details holds per-field validation errors for VALIDATION_ERROR responses.
	Details []FieldError `json:"details,omitempty"`
}

// FieldError represents a single field-level validation failure.
type FieldError struct {
	// Field is the JSON field name that failed validation.
	Field string `json:"field"`
	// Message is the human-readable description of the failure.
	Message string `json:"message"`
}

// Error implements the error interface. It returns the user-facing message.
func (e *AppError) Error() string { return e.Message }

// Unwrap allows [errors.Is] and [errors.As] to traverse the cause chain.
func (e *AppError) Unwrap() error { return e.Cause }

// # Recoverable Errors

// ValidationError creates a recoverable [AppError] with optional per-field details.
func ValidationError(msg string, details ...FieldError) *AppError {
	return &AppError{
		Code:       "VALIDATION_ERROR",
		Message:    msg,
		Kind:       KindRecoverable,
		HTTPStatus: http.StatusBadRequest,
		Details:    details,
	}
}

// BadCredentials creates a recoverable [AppError] for a rejected login attempt.
func BadCredentials(msg string) *AppError {
	return &AppError{
		Code:       "BAD_CREDENTIALS",
		Message:    msg,
		Kind:       KindRecoverable,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// Conflict creates a recoverable [AppError] for duplicate-resource rejections.
func Conflict(msg string) *AppError {
	return &AppError{
		Code:       "CONFLICT",
		Message:    msg,
		Kind:       KindRecoverable,
		HTTPStatus: http.StatusConflict,
	}
}

// NotFound creates a recoverable [AppError] for a named resource.
func NotFound(resource string) *AppError {
	return &AppError{
		Code:       "NOT_FOUND",
		Message:    resource + " not found",
		Kind:       KindRecoverable,
		HTTPStatus: http.StatusNotFound,
	}
}

// Forbidden creates a recoverable [AppError] for an authorization refusal.
// The session stays valid; only the requested action is denied.
func Forbidden(msg string) *AppError {
	return &AppError{
		Code:       "FORBIDDEN",
		Message:    msg,
		Kind:       KindRecoverable,
		HTTPStatus: http.StatusForbidden,
	}
}

// # Session Invalidation

// SessionInvalid creates an [AppError] that must force a full logout.
// It is produced when a token is rejected and could not be refreshed.
func SessionInvalid(msg string, cause error) *AppError {
	return &AppError{
		Code:       "SESSION_INVALID",
		Message:    msg,
		Kind:       KindSessionInvalid,
		HTTPStatus: http.StatusUnauthorized,
		Cause:      cause,
	}
}

// # Transient Errors

// Transient creates an [AppError] for a network-level failure that should not
// mutate session state.
func Transient(msg string, cause error) *AppError {
	return &AppError{
		Code:       "NETWORK_ERROR",
		Message:    msg,
		Kind:       KindTransient,
		HTTPStatus: http.StatusBadGateway,
		Cause:      cause,
	}
}

// # Internal Errors

// Internal creates an [AppError] wrapping an unexpected failure.
// The cause is stored for logging but is never rendered.
func Internal(cause error) *AppError {
	return &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    "An unexpected error occurred",
		Kind:       KindInternal,
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// # Helpers

// As extracts the [*AppError] from err's chain. It returns nil if not found.
func As(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}

// KindOf reports the [Kind] of err, defaulting to [KindInternal] for errors
// that did not originate in this package.
func KindOf(err error) Kind {
	if ae := As(err); ae != nil {
		return ae.Kind
	}
	return KindInternal
}

// IsSessionInvalid reports whether err requires a forced logout.
func IsSessionInvalid(err error) bool {
	return err != nil && KindOf(err) == KindSessionInvalid
}

// FromStatus translates a backend HTTP status and detail message into the
// client taxonomy. It is the single place where backend responses become
// session-lifecycle decisions.
func FromStatus(status int, detail string) *AppError {
	if detail == "" {
		detail = http.StatusText(status)
	}
	switch {
	case status == http.StatusUnauthorized:
		return SessionInvalid(detail, nil)
	case status == http.StatusForbidden:
		return Forbidden(detail)
	case status == http.StatusNotFound:
		return &AppError{Code: "NOT_FOUND", Message: detail, Kind: KindRecoverable, HTTPStatus: status}
	case status == http.StatusConflict:
		return Conflict(detail)
	case status >= 400 && status < 500:
		return ValidationError(detail)
	default:
		return Internal(fmt.Errorf("backend returned %d: %s", status, detail))
	}
}
