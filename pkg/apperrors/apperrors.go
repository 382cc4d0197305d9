// Package apperrors defines the structured error taxonomy shared by the
// appointment store, the availability engine, and the HTTP layer. Errors
// carry a machine-readable kind plus a message; they never cross the API
// boundary as raw strings.
package apperrors

import (
	"errors"
	"fmt"
)

// Kind identifies the error category for API consumers.
type Kind string

const (
	KindValidation Kind = "validation_error"
	KindSlotTaken  Kind = "slot_taken"
	KindNotFound   Kind = "not_found"
	KindNoSlots    Kind = "no_slots_available"
	KindStorage    Kind = "storage_unavailable"
)

// Error is a structured application error.
type Error struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// WithError returns a copy carrying the underlying cause.
func (e *Error) WithError(err error) *Error {
	return &Error{Kind: e.Kind, Message: e.Message, Err: err}
}

// Predefined errors. Callers compare with errors.Is against these values;
// Is matches on Kind so wrapped copies still compare equal.
var (
	ErrSlotTaken = &Error{
		Kind:    KindSlotTaken,
		Message: "the requested time slot is already booked",
	}

	ErrNotFound = &Error{
		Kind:    KindNotFound,
		Message: "appointment not found",
	}

	ErrNoSlotsAvailable = &Error{
		Kind:    KindNoSlots,
		Message: "no free slots within the search horizon",
	}

	ErrStorageUnavailable = &Error{
		Kind:    KindStorage,
		Message: "appointment storage is unavailable",
	}
)

// Is reports kind equality so derived copies match their prototype.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind
}

// Validation builds a validation error with the given message.
func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the Kind from err, or empty string for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// MessageOf extracts the public message from err. Foreign errors are
// reported as a storage problem rather than leaking internals.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return ErrStorageUnavailable.Message
}
