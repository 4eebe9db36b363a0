// Package domain defines the core business entities and errors.
package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an item ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid item ID")

	// ErrUnknownField is returned when an item payload names a field that
	// is not in the mutable-column allow-list.
	ErrUnknownField = errors.New("unknown item field")

	// ErrNoFields is returned when an item create/update payload carries
	// no fields at all.
	ErrNoFields = errors.New("no item fields provided")

	// ErrUnauthorized is returned when an operation is not permitted.
	ErrUnauthorized = errors.New("unauthorized operation")
)
