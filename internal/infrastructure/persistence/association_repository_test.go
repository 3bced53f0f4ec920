package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormAssociationRepository_FindItemsForPayment(t *testing.T) {
	t.Run("keeps one row per edge", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormAssociationRepository(gormDB)

		paymentID := uuid.New()
		itemID := uuid.New()
		rows := sqlmock.NewRows([]string{"id", "debtor_id", "booked_at", "amount", "currency", "is_open"}).
			AddRow(itemID, uuid.New(), time.Now(), "25.0000", "EUR", false).
			AddRow(itemID, uuid.New(), time.Now(), "25.0000", "EUR", false)

		mock.ExpectQuery(`SELECT items\.\* FROM "payment_item_associations" JOIN items ON items\.id = payment_item_associations\.item_id WHERE payment_item_associations\.payment_id = \$1`).
			WithArgs(paymentID).
			WillReturnRows(rows)

		items, err := repo.FindItemsForPayment(context.Background(), paymentID)
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, items[0].ID, items[1].ID)
	})
}

func TestGormAssociationRepository_FindPaymentIDsForItem(t *testing.T) {
	gormDB, mock, mockDB := newMockDB(t)
	defer mockDB.Close()
	repo := NewGormAssociationRepository(gormDB)

	itemID := uuid.New()
	first := uuid.New()
	second := uuid.New()
	rows := sqlmock.NewRows([]string{"payment_id"}).AddRow(first).AddRow(second)

	mock.ExpectQuery(`SELECT "payment_id" FROM "payment_item_associations" WHERE item_id = \$1 ORDER BY created_at`).
		WithArgs(itemID).
		WillReturnRows(rows)

	ids, err := repo.FindPaymentIDsForItem(context.Background(), itemID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{first, second}, ids)
}
