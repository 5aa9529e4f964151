// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package apperr defines the centralized error handling framework for the Yomira client core.

It provides a rich error type that bridges the gap between low-level failures
(token decoding, storage I/O, network transport) and the messages a frontend
is allowed to show the member.

Architecture:

  - AppError: A struct containing a machine-readable Code and a user-facing message.
  - Severity: Some codes (MALFORMED_TOKEN, TOKEN_EXPIRED) are internal-only and
    must never surface as distinct errors — they demote the session to anonymous.
  - Mapping: Transport maps server error envelopes back into AppError values.

Every error that leaves a store should be wrapped as an [AppError] to ensure
consistent handling by the embedding frontend.
*/
package apperr

import (
	"errors"
	"fmt"
)

// AppError is the canonical error type for the Yomira client core.
//
// It carries a machine-readable code, a message safe to present to the member,
// and an optional cause chain for structured logging.
//
// # Security
//
// The Cause field is for client-side logging only and is never rendered in
// the UI, so server internals quoted in transport errors stay out of sight.
type AppError struct {
	// Code is a machine-readable error identifier (e.g. "LOGIN_FAILED").
	Code string `json:"code"`
	// Message is a human-readable description safe to show in the UI.
	Message string `json:"error"`
	// Cause is the underlying error, used for logging only.
	Cause error `json:"-"`
	// Details holds per-field validation errors for VALIDATION_ERROR results.
	Details []FieldError `json:"details,omitempty"`
}

// FieldError represents a single field-level validation failure.
type FieldError struct {
	// Field is the form field name that failed validation.
	Field string `json:"field"`
	// Message is the human-readable description of the failure.
	Message string `json:"message"`
}

// Error implements the error interface. It returns the user-safe message.
func (e *AppError) Error() string { return e.Message }

// Unwrap allows [errors.Is] and [errors.As] to traverse the cause chain.
func (e *AppError) Unwrap() error { return e.Cause }

// # Session Errors

// MalformedToken creates the decode-time error for a structurally invalid
// bearer token. It is internal-only: callers treat it as "not authenticated"
// and never display it.
func MalformedToken(cause error) *AppError {
	return &AppError{
		Code:    "MALFORMED_TOKEN",
		Message: "Session token is not decodable",
		Cause:   cause,
	}
}

// TokenExpired creates the error for a token whose expiry is in the past.
// Internal-only, same treatment as [MalformedToken].
func TokenExpired() *AppError {
	return &AppError{
		Code:    "TOKEN_EXPIRED",
		Message: "Session token has expired",
	}
}

// LoginFailed creates the user-visible error for rejected credentials or a
// failed authentication round trip. This is the only error the session store
// intentionally re-raises to the calling form.
func LoginFailed(msg string, cause error) *AppError {
	return &AppError{
		Code:    "LOGIN_FAILED",
		Message: msg,
		Cause:   cause,
	}
}

// # Interaction Errors

// ToggleFailed creates the error for a relationship toggle whose network call
// failed. The optimistic local state has already been rolled back when this
// is returned.
func ToggleFailed(kind string, cause error) *AppError {
	return &AppError{
		Code:    "TOGGLE_FAILED",
		Message: fmt.Sprintf("Could not update %s state", kind),
		Cause:   cause,
	}
}

// # Boundary Errors

// ValidationError creates a client-side validation failure with optional
// per-field details, produced before any network call is made.
func ValidationError(msg string, details ...FieldError) *AppError {
	return &AppError{
		Code:    "VALIDATION_ERROR",
		Message: msg,
		Details: details,
	}
}

// Transport creates the error for a failed or non-2xx HTTP exchange. The
// server-reported code and message are preserved when available.
func Transport(code, msg string, cause error) *AppError {
	if code == "" {
		code = "TRANSPORT_ERROR"
	}
	if msg == "" {
		msg = "The Yomira service could not be reached"
	}
	return &AppError{
		Code:    code,
		Message: msg,
		Cause:   cause,
	}
}

// Storage creates the error for a failed persisted-slot read or write.
func Storage(cause error) *AppError {
	return &AppError{
		Code:    "STORAGE_ERROR",
		Message: "Local session storage is unavailable",
		Cause:   cause,
	}
}

// # Helpers

// IsAppError reports whether err (or any error in its chain) is an [*AppError].
func IsAppError(err error) bool {
	var ae *AppError
	return errors.As(err, &ae)
}

// As extracts the [*AppError] from err's chain. It returns nil if not found.
func As(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}

// HasCode reports whether err carries the given machine-readable code.
func HasCode(err error, code string) bool {
	ae := As(err)
	return ae != nil && ae.Code == code
}
