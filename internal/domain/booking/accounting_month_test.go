package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAccountingMonth(t *testing.T) {
	t.Run("creates open month", func(t *testing.T) {
		m, err := NewAccountingMonth(2024, 3)
		require.NoError(t, err)
		assert.True(t, m.IsOpen)
		assert.Equal(t, 0, m.CashTransactionCounter)
	})

	t.Run("rejects month out of range", func(t *testing.T) {
		_, err := NewAccountingMonth(2024, 13)
		assert.Error(t, err)
		_, err = NewAccountingMonth(2024, 0)
		assert.Error(t, err)
	})
}

func TestAccountingMonthRange(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	m, _ := NewAccountingMonth(2024, 3)
	start, end := m.Range(loc)

	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, loc), start)
	assert.Equal(t, time.Date(2024, 4, 1, 0, 0, 0, 0, loc), end)
	// DST starts inside March, the local month is an hour short of 31 days
	assert.Equal(t, 31*24*time.Hour-time.Hour, end.Sub(start))
}

func TestAccountingMonthNext(t *testing.T) {
	m, _ := NewAccountingMonth(2024, 12)
	year, month := m.Next()
	assert.Equal(t, 2025, year)
	assert.Equal(t, 1, month)

	m, _ = NewAccountingMonth(2024, 3)
	year, month = m.Next()
	assert.Equal(t, 2024, year)
	assert.Equal(t, 4, month)
}

func TestAccountingMonthSetOpen(t *testing.T) {
	m, _ := NewAccountingMonth(2024, 3)
	m.SetOpen(false)
	assert.False(t, m.IsOpen)
	m.SetOpen(true)
	assert.True(t, m.IsOpen)
}

func TestCashTransactionCode(t *testing.T) {
	assert.Equal(t, "202403-7", CashTransactionCode(2024, 3, 7))
	assert.Equal(t, "202412-123", CashTransactionCode(2024, 12, 123))
}
