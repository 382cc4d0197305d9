package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorString(t *testing.T) {
	e := Validation("missing field %q", "patientName")
	assert.Equal(t, `validation_error: missing field "patientName"`, e.Error())

	wrapped := ErrStorageUnavailable.WithError(errors.New("disk full"))
	assert.Contains(t, wrapped.Error(), "storage_unavailable")
	assert.Contains(t, wrapped.Error(), "disk full")
}

func TestIsMatchesOnKind(t *testing.T) {
	derived := ErrSlotTaken.WithError(errors.New("unique constraint"))
	assert.True(t, errors.Is(derived, ErrSlotTaken))
	assert.False(t, errors.Is(derived, ErrNotFound))

	// Wrapped through fmt.Errorf as services do.
	deep := fmt.Errorf("create appointment: %w", derived)
	assert.True(t, errors.Is(deep, ErrSlotTaken))
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindSlotTaken, KindOf(ErrSlotTaken))
	assert.Equal(t, KindValidation, KindOf(Validation("bad date")))
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
}

func TestMessageOfForeignError(t *testing.T) {
	// Foreign errors must not leak driver internals to API consumers.
	assert.Equal(t, ErrStorageUnavailable.Message, MessageOf(errors.New("sqlite: I/O error 0x2ef1")))
	assert.Equal(t, "appointment not found", MessageOf(ErrNotFound))
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("boom")
	assert.Equal(t, cause, errors.Unwrap(ErrStorageUnavailable.WithError(cause)))
}
