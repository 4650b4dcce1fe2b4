// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies every error the resource layer can surface to a client.
// The taxonomy is closed: adapters must translate raw driver errors into one
// of these kinds before they cross the repository boundary.
type Kind int

const (
	// KindBackend is an opaque storage failure. The original error is
	// logged, never exposed.
	KindBackend Kind = iota
	// KindValidation is a payload shape/constraint violation, detected
	// before any backend call.
	KindValidation
	// KindAuthentication means the request lacked a usable identity.
	KindAuthentication
	// KindAuthorization means the identity's role is insufficient.
	KindAuthorization
	// KindNotFound means the addressed resource does not exist.
	KindNotFound
	// KindConflict is a uniqueness violation; Field names the constraint.
	KindConflict
)

// Error is the single error type crossing the repository and service
// boundaries. Message is safe to return to clients verbatim.
type Error struct {
	Kind    Kind
	Message string
	Field   string // set for KindConflict: "username", "email" or "slug"
	wrapped error
}

func (e *Error) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.wrapped)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.wrapped }

// HTTPStatus maps the error kind to the status code the API responds with.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindAuthentication, KindAuthorization:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Validation creates a validation error. The message is shown to the client
// unchanged.
func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// Authentication creates a token-missing/invalid error.
func Authentication(message string) *Error {
	return &Error{Kind: KindAuthentication, Message: message}
}

// Authorization creates a role-insufficient error.
func Authorization(message string) *Error {
	return &Error{Kind: KindAuthorization, Message: message}
}

// NotFound creates a resource-absent error.
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Conflict creates a uniqueness-violation error naming the violated field.
func Conflict(field string) *Error {
	return &Error{
		Kind:    KindConflict,
		Message: fmt.Sprintf("%s already exists", field),
		Field:   field,
	}
}

// Backend wraps a raw storage error. The wrapped error is kept for logging;
// clients only ever see the opaque message.
func Backend(err error) *Error {
	return &Error{Kind: KindBackend, Message: "Internal Server Error", wrapped: err}
}

// AsError extracts the typed error, converting unknown errors into backend
// errors so raw driver failures can never leak through.
func AsError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Backend(err)
}

// IsKind reports whether err is a store error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
