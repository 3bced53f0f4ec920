package booking

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openaccounting/backend/internal/domain/shared/valueobject"
)

func reconciliationItem(t *testing.T, amount string) Item {
	t.Helper()
	m, err := valueobject.NewMoneyEURFromString(amount)
	require.NoError(t, err)
	item, err := NewItem(uuid.New(), time.Now(), m, "")
	require.NoError(t, err)
	return *item
}

func reconciliationLink(t *testing.T, source uuid.UUID, amount string) PaymentLink {
	t.Helper()
	m, err := valueobject.NewMoneyEURFromString(amount)
	require.NoError(t, err)
	link, err := NewPaymentLink(source, uuid.New(), m, LinkReasonCashDeposit)
	require.NoError(t, err)
	return *link
}

func TestComputeBalance(t *testing.T) {
	t.Run("no associations leaves the gross amount", func(t *testing.T) {
		p := testPayment(t, "100.00")
		balance, err := ComputeBalance(p, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, "100.00", balance.AmountString())
		assert.False(t, IsSettled(balance))
	})

	t.Run("fully matched item settles the payment", func(t *testing.T) {
		p := testPayment(t, "100.00")
		balance, err := ComputeBalance(p, []Item{reconciliationItem(t, "100.00")}, nil)
		require.NoError(t, err)
		assert.True(t, IsSettled(balance))
	})

	t.Run("partial settlement keeps the payment open", func(t *testing.T) {
		p := testPayment(t, "50.00")
		balance, err := ComputeBalance(p, []Item{reconciliationItem(t, "30.00")}, nil)
		require.NoError(t, err)
		assert.Equal(t, "20.00", balance.AmountString())
		assert.False(t, IsSettled(balance))
	})

	t.Run("items and links both subtract", func(t *testing.T) {
		p := testPayment(t, "100.00")
		items := []Item{reconciliationItem(t, "40.00")}
		links := []PaymentLink{reconciliationLink(t, p.ID, "60.00")}
		balance, err := ComputeBalance(p, items, links)
		require.NoError(t, err)
		assert.True(t, IsSettled(balance))
	})

	t.Run("over-settlement stays open", func(t *testing.T) {
		p := testPayment(t, "100.00")
		items := []Item{reconciliationItem(t, "100.00"), reconciliationItem(t, "25.00")}
		balance, err := ComputeBalance(p, items, nil)
		require.NoError(t, err)
		assert.True(t, balance.IsNegative())
		assert.False(t, IsSettled(balance))
	})

	t.Run("duplicate edges double-count", func(t *testing.T) {
		p := testPayment(t, "100.00")
		item := reconciliationItem(t, "50.00")
		balance, err := ComputeBalance(p, []Item{item, item}, nil)
		require.NoError(t, err)
		assert.True(t, IsSettled(balance))
	})

	t.Run("currency mismatch is a hard error", func(t *testing.T) {
		p := testPayment(t, "100.00")
		usd, _ := valueobject.NewMoneyFromString("100.00", valueobject.USD)
		item, err := NewItem(uuid.New(), time.Now(), usd, "")
		require.NoError(t, err)
		_, err = ComputeBalance(p, []Item{*item}, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "USD")
	})
}
