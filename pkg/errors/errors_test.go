package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromErrorKeepsTypedErrors(t *testing.T) {
	typed := Clone(ErrNotFound, "Room not found.")
	wrapped := fmt.Errorf("lookup: %w", typed)

	got := FromError(wrapped)
	require.NotNil(t, got)
	assert.Equal(t, "NOT_FOUND", got.Code)
	assert.Equal(t, http.StatusNotFound, got.Status)
	assert.Equal(t, "Room not found.", got.Message)
}

func TestFromErrorDefaultsToInternal(t *testing.T) {
	got := FromError(errors.New("boom"))
	assert.Equal(t, ErrInternal.Code, got.Code)
	assert.Equal(t, http.StatusInternalServerError, got.Status)
	assert.EqualError(t, got, "internal server error: boom")
	assert.Nil(t, FromError(nil))
}

func TestConflictAnswersBadRequest(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, ErrConflict.Status)
}

func TestIsKind(t *testing.T) {
	err := Wrap(errors.New("dup"), ErrConflict.Code, ErrConflict.Status, "An event with this name already exists.")
	assert.True(t, IsKind(err, ErrConflict))
	assert.True(t, errors.Is(err, ErrConflict))
	assert.False(t, IsKind(err, ErrNotFound))
	assert.False(t, IsKind(errors.New("plain"), ErrConflict))
}

func TestCloneDoesNotMutateOriginal(t *testing.T) {
	clone := Clone(ErrValidation, "Start time must be before end time.")
	assert.Equal(t, "validation failed", ErrValidation.Message)
	assert.Equal(t, "Start time must be before end time.", clone.Message)
	assert.Nil(t, Clone(nil, "x"))
}
