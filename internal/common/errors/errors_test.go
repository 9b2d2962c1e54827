package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeOf(t *testing.T) {
	assert.Equal(t, ErrCodeNotFound, CodeOf(NewNotFound("g1")))
	assert.Equal(t, ErrCodeInternal, CodeOf(stderrors.New("plain")))

	// Wrapped AppErrors are still recognized.
	wrapped := fmt.Errorf("handling command: %w", NewGiveawayClosed("g1"))
	assert.Equal(t, ErrCodeGiveawayClosed, CodeOf(wrapped))
}

func TestHasCode(t *testing.T) {
	err := NewStillOpen("g1")
	assert.True(t, HasCode(err, ErrCodeStillOpen))
	assert.False(t, HasCode(err, ErrCodeNotFound))
	assert.False(t, HasCode(stderrors.New("plain"), ErrCodeStillOpen))
}

func TestIs_MatchesOnCode(t *testing.T) {
	err := NewStorageError("create", stderrors.New("disk full"))
	assert.True(t, stderrors.Is(err, New(ErrCodeStorage, "anything")))
	assert.False(t, stderrors.Is(err, New(ErrCodeNotFound, "anything")))
}

func TestUnwrap(t *testing.T) {
	cause := stderrors.New("disk full")
	err := Wrap(cause, ErrCodeStorage, "persist failed")
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "STORAGE_ERROR")
	assert.Contains(t, err.Error(), "disk full")
}
