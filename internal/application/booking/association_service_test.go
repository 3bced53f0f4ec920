package booking_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appbooking "github.com/openaccounting/backend/internal/application/booking"
	"github.com/openaccounting/backend/internal/application/apptest"
	"github.com/openaccounting/backend/internal/domain/booking"
	"github.com/openaccounting/backend/internal/domain/shared"
	"github.com/openaccounting/backend/internal/domain/shared/valueobject"
)

func newBookingFixture() (*apptest.Repositories, appbooking.TransactionScope) {
	repos := apptest.NewRepositories()
	scope := appbooking.NewNoOpTransactionScope(
		repos.Payments, repos.Items, repos.Associations, repos.Months, repos.Services,
		repos.Identities, repos.Accounts, repos.Assignments, repos.Subscriptions, repos.Products,
	)
	return repos, scope
}

func eur(t *testing.T, amount string) valueobject.Money {
	t.Helper()
	m, err := valueobject.NewMoneyEURFromString(amount)
	require.NoError(t, err)
	return m
}

func seedPayment(t *testing.T, repos *apptest.Repositories, gross string) *booking.Payment {
	t.Helper()
	payment, err := booking.NewPayment(
		booking.PaymentTypeNormal,
		uuid.New(),
		"TX-"+uuid.NewString()[:8],
		uuid.New(),
		uuid.New(),
		time.Date(2024, 3, 12, 14, 30, 0, 0, time.UTC),
		eur(t, gross),
		eur(t, "0"),
		"",
	)
	require.NoError(t, err)
	require.NoError(t, repos.Payments.Save(context.Background(), payment))
	return payment
}

func seedItem(t *testing.T, repos *apptest.Repositories, amount string) *booking.Item {
	t.Helper()
	item, err := booking.NewItem(
		uuid.New(),
		time.Date(2024, 3, 12, 10, 0, 0, 0, time.UTC),
		eur(t, amount),
		"",
	)
	require.NoError(t, err)
	require.NoError(t, repos.Items.Save(context.Background(), item))
	return item
}

func TestAssociationService_AssociateItem(t *testing.T) {
	ctx := context.Background()

	t.Run("partial settlement keeps the payment open", func(t *testing.T) {
		repos, scope := newBookingFixture()
		service := appbooking.NewAssociationService(scope, zap.NewNop())

		payment := seedPayment(t, repos, "50.00")
		item := seedItem(t, repos, "30.00")

		require.NoError(t, service.AssociateItem(ctx, payment.ID, item.ID))

		storedItem, err := repos.Items.FindByID(ctx, item.ID)
		require.NoError(t, err)
		assert.False(t, storedItem.IsOpen, "associated item must close")

		storedPayment, err := repos.Payments.FindByID(ctx, payment.ID)
		require.NoError(t, err)
		assert.True(t, storedPayment.IsOpen, "balance of 20.00 remains")
	})

	t.Run("exact settlement closes the payment", func(t *testing.T) {
		repos, scope := newBookingFixture()
		service := appbooking.NewAssociationService(scope, zap.NewNop())

		payment := seedPayment(t, repos, "50.00")
		first := seedItem(t, repos, "30.00")
		second := seedItem(t, repos, "20.00")

		require.NoError(t, service.AssociateItem(ctx, payment.ID, first.ID))
		require.NoError(t, service.AssociateItem(ctx, payment.ID, second.ID))

		storedPayment, err := repos.Payments.FindByID(ctx, payment.ID)
		require.NoError(t, err)
		assert.False(t, storedPayment.IsOpen)
	})

	t.Run("over settlement keeps the payment open", func(t *testing.T) {
		repos, scope := newBookingFixture()
		service := appbooking.NewAssociationService(scope, zap.NewNop())

		payment := seedPayment(t, repos, "50.00")
		item := seedItem(t, repos, "60.00")

		require.NoError(t, service.AssociateItem(ctx, payment.ID, item.ID))

		storedPayment, err := repos.Payments.FindByID(ctx, payment.ID)
		require.NoError(t, err)
		assert.True(t, storedPayment.IsOpen, "negative balance is not settled")
	})

	t.Run("duplicate edges count the item twice", func(t *testing.T) {
		repos, scope := newBookingFixture()
		service := appbooking.NewAssociationService(scope, zap.NewNop())

		payment := seedPayment(t, repos, "50.00")
		item := seedItem(t, repos, "25.00")

		require.NoError(t, service.AssociateItem(ctx, payment.ID, item.ID))
		require.NoError(t, service.AssociateItem(ctx, payment.ID, item.ID))

		storedPayment, err := repos.Payments.FindByID(ctx, payment.ID)
		require.NoError(t, err)
		assert.False(t, storedPayment.IsOpen, "25.00 twice settles 50.00")
	})

	t.Run("currency mismatch is a hard error", func(t *testing.T) {
		repos, scope := newBookingFixture()
		service := appbooking.NewAssociationService(scope, zap.NewNop())

		payment := seedPayment(t, repos, "50.00")

		usd, err := valueobject.NewMoneyFromString("30.00", valueobject.USD)
		require.NoError(t, err)
		item, err := booking.NewItem(uuid.New(), payment.BookedAt, usd, "")
		require.NoError(t, err)
		require.NoError(t, repos.Items.Save(ctx, item))

		err = service.AssociateItem(ctx, payment.ID, item.ID)
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, booking.ErrCodeCurrencyMismatch, domainErr.Code)
	})

	t.Run("missing payment", func(t *testing.T) {
		repos, scope := newBookingFixture()
		service := appbooking.NewAssociationService(scope, zap.NewNop())

		item := seedItem(t, repos, "10.00")
		err := service.AssociateItem(ctx, uuid.New(), item.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("missing item", func(t *testing.T) {
		repos, scope := newBookingFixture()
		service := appbooking.NewAssociationService(scope, zap.NewNop())

		payment := seedPayment(t, repos, "10.00")
		err := service.AssociateItem(ctx, payment.ID, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestAssociationService_LinkPayments(t *testing.T) {
	ctx := context.Background()

	t.Run("items and links settle together", func(t *testing.T) {
		repos, scope := newBookingFixture()
		service := appbooking.NewAssociationService(scope, zap.NewNop())

		source := seedPayment(t, repos, "100.00")
		target := seedPayment(t, repos, "40.00")
		item := seedItem(t, repos, "60.00")

		require.NoError(t, service.AssociateItem(ctx, source.ID, item.ID))
		require.NoError(t, service.LinkPayments(ctx, source.ID, appbooking.LinkRequest{
			TargetPaymentID: target.ID,
			Amount:          eur(t, "40.00"),
			Reason:          booking.LinkReasonCashDeposit,
		}))

		storedSource, err := repos.Payments.FindByID(ctx, source.ID)
		require.NoError(t, err)
		assert.False(t, storedSource.IsOpen, "60.00 item plus 40.00 link settle 100.00")

		storedTarget, err := repos.Payments.FindByID(ctx, target.ID)
		require.NoError(t, err)
		assert.True(t, storedTarget.IsOpen, "incoming links never settle the target")
	})

	t.Run("link to missing target", func(t *testing.T) {
		repos, scope := newBookingFixture()
		service := appbooking.NewAssociationService(scope, zap.NewNop())

		source := seedPayment(t, repos, "10.00")
		err := service.LinkPayments(ctx, source.ID, appbooking.LinkRequest{
			TargetPaymentID: uuid.New(),
			Amount:          eur(t, "10.00"),
			Reason:          booking.LinkReasonPrivateDisbursement,
		})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("self link rejected", func(t *testing.T) {
		repos, scope := newBookingFixture()
		service := appbooking.NewAssociationService(scope, zap.NewNop())

		source := seedPayment(t, repos, "10.00")
		err := service.LinkPayments(ctx, source.ID, appbooking.LinkRequest{
			TargetPaymentID: source.ID,
			Amount:          eur(t, "10.00"),
			Reason:          booking.LinkReasonCashDeposit,
		})
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_INPUT", domainErr.Code)
	})
}

func TestAssociationService_RecomputeOpenStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("reopens a payment when nothing settles it", func(t *testing.T) {
		repos, scope := newBookingFixture()
		service := appbooking.NewAssociationService(scope, zap.NewNop())

		payment := seedPayment(t, repos, "50.00")
		payment.SetOpen(false)
		require.NoError(t, repos.Payments.Save(ctx, payment))

		require.NoError(t, service.RecomputeOpenStatus(ctx, payment.ID))

		stored, err := repos.Payments.FindByID(ctx, payment.ID)
		require.NoError(t, err)
		assert.True(t, stored.IsOpen)
	})

	t.Run("no write when the flag is unchanged", func(t *testing.T) {
		repos, scope := newBookingFixture()
		service := appbooking.NewAssociationService(scope, zap.NewNop())

		payment := seedPayment(t, repos, "50.00")
		before := payment.Version

		require.NoError(t, service.RecomputeOpenStatus(ctx, payment.ID))

		stored, err := repos.Payments.FindByID(ctx, payment.ID)
		require.NoError(t, err)
		assert.Equal(t, before, stored.Version)
	})

	t.Run("missing payment", func(t *testing.T) {
		_, scope := newBookingFixture()
		service := appbooking.NewAssociationService(scope, zap.NewNop())

		err := service.RecomputeOpenStatus(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
