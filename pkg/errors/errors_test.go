package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsMatchesKindAcrossClonesAndWraps(t *testing.T) {
	cloned := Clone(ErrInvalidInput, "email is required")
	assert.True(t, errors.Is(cloned, ErrInvalidInput))
	assert.False(t, errors.Is(cloned, ErrStoreUnavailable))

	wrapped := fmt.Errorf("enroll: %w", StoreUnavailable(errors.New("dial tcp"), ""))
	assert.True(t, errors.Is(wrapped, ErrStoreUnavailable))
	assert.Contains(t, wrapped.Error(), "dial tcp")
}

func TestFromErrorDefaultsToInternal(t *testing.T) {
	appErr := FromError(errors.New("boom"))
	require.NotNil(t, appErr)
	assert.Equal(t, KindInternal, appErr.Kind)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)

	typed := FromError(fmt.Errorf("outer: %w", ErrConflict))
	assert.Equal(t, KindConflict, typed.Kind)
	assert.Nil(t, FromError(nil))
}

func TestCloneKeepsOriginalUntouched(t *testing.T) {
	clone := Clone(ErrNotFound, "entry not found")
	assert.Equal(t, "entry not found", clone.Message)
	assert.Equal(t, "resource not found", ErrNotFound.Message)
	assert.Nil(t, Clone(nil, "x"))
}
