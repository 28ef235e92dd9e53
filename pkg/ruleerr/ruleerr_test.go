package ruleerr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/chris/fairtask-ledger/pkg/ruleerr"
	"github.com/stretchr/testify/assert"
)

func TestErrorMatching(t *testing.T) {
	t.Run("Same Kind Matches Sentinel", func(t *testing.T) {
		err := ruleerr.New(ruleerr.LimitReached, "daily limit of %d reached", 8)

		assert.True(t, errors.Is(err, ruleerr.ErrLimitReached))
		assert.False(t, errors.Is(err, ruleerr.ErrNoBalance))
		assert.Equal(t, "daily limit of 8 reached", err.Error())
	})

	t.Run("Wrapped Rejection Keeps Kind", func(t *testing.T) {
		err := fmt.Errorf("complete task: %w", ruleerr.New(ruleerr.EmergencyPaused, "paused"))

		kind, ok := ruleerr.KindOf(err)
		assert.True(t, ok)
		assert.Equal(t, ruleerr.EmergencyPaused, kind)
		assert.ErrorIs(t, err, ruleerr.ErrEmergencyPaused)
	})

	t.Run("Storage Fault Has No Kind", func(t *testing.T) {
		_, ok := ruleerr.KindOf(errors.New("failed to get user from DynamoDB"))
		assert.False(t, ok)
	})

	t.Run("Sentinel Message Falls Back To Kind", func(t *testing.T) {
		assert.Equal(t, "NOT_FOUND", ruleerr.ErrNotFound.Error())
	})
}
