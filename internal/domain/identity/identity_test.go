package identity

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIdentity(t *testing.T) {
	t.Run("creates identity", func(t *testing.T) {
		i, err := NewIdentity("Ada", "Lovelace", "")
		require.NoError(t, err)
		assert.Equal(t, "Ada Lovelace", i.DisplayName())
	})

	t.Run("single name is allowed", func(t *testing.T) {
		i, err := NewIdentity("", "Cashbox", "register pseudo identity")
		require.NoError(t, err)
		assert.Equal(t, "Cashbox", i.DisplayName())
	})

	t.Run("rejects fully empty name", func(t *testing.T) {
		_, err := NewIdentity("", "", "")
		assert.Error(t, err)
	})
}

func TestNewPaymentAccount(t *testing.T) {
	t.Run("creates account", func(t *testing.T) {
		a, err := NewPaymentAccount(uuid.New(), uuid.New(), "member@example.org")
		require.NoError(t, err)
		assert.Equal(t, "member@example.org", a.ExternalAccount)
	})

	t.Run("rejects empty external account", func(t *testing.T) {
		_, err := NewPaymentAccount(uuid.New(), uuid.New(), "")
		assert.Error(t, err)
	})
}

func TestSubscriptionAssignmentActiveAt(t *testing.T) {
	begin := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	marchStart := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("open ended assignment is active", func(t *testing.T) {
		a, err := NewSubscriptionAssignment(uuid.New(), uuid.New(), begin, nil)
		require.NoError(t, err)
		assert.True(t, a.ActiveAt(marchStart))
	})

	t.Run("assignment starting later is inactive", func(t *testing.T) {
		a, err := NewSubscriptionAssignment(uuid.New(), uuid.New(), marchStart.AddDate(0, 1, 0), nil)
		require.NoError(t, err)
		assert.False(t, a.ActiveAt(marchStart))
	})

	t.Run("assignment ending at month start is still active", func(t *testing.T) {
		end := marchStart
		a, err := NewSubscriptionAssignment(uuid.New(), uuid.New(), begin, &end)
		require.NoError(t, err)
		assert.True(t, a.ActiveAt(marchStart))
	})

	t.Run("assignment ended before month start is inactive", func(t *testing.T) {
		end := marchStart.AddDate(0, -1, 0)
		a, err := NewSubscriptionAssignment(uuid.New(), uuid.New(), begin, &end)
		require.NoError(t, err)
		assert.False(t, a.ActiveAt(marchStart))
	})

	t.Run("rejects end before begin", func(t *testing.T) {
		end := begin.AddDate(0, -2, 0)
		_, err := NewSubscriptionAssignment(uuid.New(), uuid.New(), begin, &end)
		assert.Error(t, err)
	})
}
