package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	wrapped := fmt.Errorf("submit prompt: %w", Validation("Invalid card IDs provided"))

	assert.Equal(t, KindValidation, KindOf(wrapped))
	assert.True(t, Is(wrapped, KindValidation))
	assert.False(t, Is(wrapped, KindNotFound))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.False(t, Is(nil, KindInternal))
}

func TestErrorsIsMatchesByKind(t *testing.T) {
	err := fmt.Errorf("load: %w", NotFound("game abc not found"))
	assert.True(t, errors.Is(err, &Error{Kind: KindNotFound}))
	assert.False(t, errors.Is(err, &Error{Kind: KindConflict}))
}

func TestProviderUnwrapsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Provider("judge call failed", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "judge call failed: connection refused", err.Error())
}
