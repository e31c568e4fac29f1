package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_IsMatchesOnCode(t *testing.T) {
	detailed := &Error{Kind: KindPreconditionFailed, Code: "TOOL_OUT_OF_STOCK", Message: "tool 7 has no units"}
	assert.ErrorIs(t, detailed, ErrToolOutOfStock)
	assert.NotErrorIs(t, detailed, ErrToolInactive)

	wrapped := fmt.Errorf("handler: %w", ErrLoanNotActive)
	assert.ErrorIs(t, wrapped, ErrLoanNotActive)
	assert.Equal(t, KindPreconditionFailed, KindOf(wrapped))
}

func TestStorage_WrapsForeignErrorsOnly(t *testing.T) {
	assert.NoError(t, storage("noop", nil))

	err := storage("create loan", errors.New("disk full"))
	assert.True(t, IsKind(err, KindStorageFailure))
	assert.Contains(t, err.Error(), "disk full")

	assert.Same(t, ErrToolNotFound, storage("create loan", ErrToolNotFound))
}

func TestKindOf_Unknown(t *testing.T) {
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
	assert.True(t, IsKind(invalid("name", "required"), KindValidationFailed))
}
