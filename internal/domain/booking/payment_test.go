package booking

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openaccounting/backend/internal/domain/shared/valueobject"
)

func testPayment(t *testing.T, gross string) *Payment {
	t.Helper()
	amount, err := valueobject.NewMoneyEURFromString(gross)
	require.NoError(t, err)
	p, err := NewPayment(
		PaymentTypeNormal,
		uuid.New(),
		"TXN-1",
		uuid.New(),
		uuid.New(),
		time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC),
		amount,
		valueobject.ZeroEUR(),
		"",
	)
	require.NoError(t, err)
	return p
}

func TestNewPayment(t *testing.T) {
	t.Run("starts open with nonzero gross amount", func(t *testing.T) {
		p := testPayment(t, "100.00")
		assert.True(t, p.IsOpen)
		assert.Equal(t, 1, p.Version)
	})

	t.Run("zero gross amount starts closed", func(t *testing.T) {
		p := testPayment(t, "0.00")
		assert.False(t, p.IsOpen)
	})

	t.Run("rejects mismatched fee currency", func(t *testing.T) {
		gross, _ := valueobject.NewMoneyFromString("100.00", valueobject.EUR)
		fee, _ := valueobject.NewMoneyFromString("-1.90", valueobject.USD)
		_, err := NewPayment(PaymentTypeNormal, uuid.New(), "TXN-1", uuid.New(), uuid.New(),
			time.Now(), gross, fee, "")
		assert.Error(t, err)
	})

	t.Run("rejects unknown payment type", func(t *testing.T) {
		_, err := NewPayment("BOGUS", uuid.New(), "TXN-1", uuid.New(), uuid.New(),
			time.Now(), valueobject.ZeroEUR(), valueobject.ZeroEUR(), "")
		assert.Error(t, err)
	})

	t.Run("rejects empty transaction code", func(t *testing.T) {
		_, err := NewPayment(PaymentTypeNormal, uuid.New(), "", uuid.New(), uuid.New(),
			time.Now(), valueobject.ZeroEUR(), valueobject.ZeroEUR(), "")
		assert.Error(t, err)
	})
}

func TestPaymentSetOpen(t *testing.T) {
	p := testPayment(t, "100.00")
	p.SetOpen(false)
	assert.False(t, p.IsOpen)
	assert.Equal(t, 2, p.Version)
}

func TestPaymentNetMoney(t *testing.T) {
	gross, _ := valueobject.NewMoneyEURFromString("100.00")
	fee, _ := valueobject.NewMoneyEURFromString("-1.90")
	p, err := NewPayment(PaymentTypeNormal, uuid.New(), "TXN-1", uuid.New(), uuid.New(),
		time.Now(), gross, fee, "")
	require.NoError(t, err)
	assert.Equal(t, "98.10", p.NetMoney().AmountString())
}

func TestPaymentUpdateManualFields(t *testing.T) {
	t.Run("rejects edit of imported payment", func(t *testing.T) {
		p := testPayment(t, "100.00")
		amount, _ := valueobject.NewMoneyEURFromString("50.00")
		err := p.UpdateManualFields(uuid.New(), uuid.New(), time.Now(), amount, "edited")
		assert.Error(t, err)
	})

	t.Run("edits manual payment", func(t *testing.T) {
		p := testPayment(t, "100.00")
		p.Manual = true
		amount, _ := valueobject.NewMoneyEURFromString("50.00")
		err := p.UpdateManualFields(p.SenderID, p.ReceiverID, p.BookedAt, amount, "edited")
		require.NoError(t, err)
		assert.Equal(t, "50.00", p.GrossMoney().AmountString())
		assert.Equal(t, "edited", p.Note)
		assert.Equal(t, 2, p.Version)
	})
}

func TestPaymentMatches(t *testing.T) {
	p := testPayment(t, "100.00")
	other := *p

	assert.True(t, p.Matches(&other))

	other.GrossAmount = other.GrossAmount.Neg()
	assert.False(t, p.Matches(&other))
}
