package catalog_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appbooking "github.com/openaccounting/backend/internal/application/booking"
	"github.com/openaccounting/backend/internal/application/apptest"
	appcatalog "github.com/openaccounting/backend/internal/application/catalog"
	"github.com/openaccounting/backend/internal/domain/shared"
	"github.com/openaccounting/backend/internal/domain/shared/valueobject"
)

func newCatalogFixture(t *testing.T) *appcatalog.CatalogService {
	t.Helper()
	repos := apptest.NewRepositories()
	scope := appbooking.NewNoOpTransactionScope(
		repos.Payments, repos.Items, repos.Associations, repos.Months, repos.Services,
		repos.Identities, repos.Accounts, repos.Assignments, repos.Subscriptions, repos.Products,
	)
	return appcatalog.NewCatalogService(scope, zap.NewNop())
}

func eur(t *testing.T, amount string) valueobject.Money {
	t.Helper()
	m, err := valueobject.NewMoneyEURFromString(amount)
	require.NoError(t, err)
	return m
}

func TestCatalogService_Products(t *testing.T) {
	ctx := context.Background()

	t.Run("create, update and list", func(t *testing.T) {
		service := newCatalogFixture(t)

		shirt, err := service.CreateProduct(ctx, "Club shirt", eur(t, "25.00"))
		require.NoError(t, err)
		_, err = service.CreateProduct(ctx, "Badge", eur(t, "3.50"))
		require.NoError(t, err)

		updated, err := service.UpdateProduct(ctx, shirt.ID, "Club shirt", eur(t, "30.00"))
		require.NoError(t, err)
		assert.Equal(t, "30.00", updated.PriceMoney().AmountString())

		products, err := service.ListProducts(ctx)
		require.NoError(t, err)
		require.Len(t, products, 2)
		assert.Equal(t, "Badge", products[0].Title, "ordered by title")
	})

	t.Run("missing product", func(t *testing.T) {
		service := newCatalogFixture(t)
		_, err := service.GetProduct(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestCatalogService_Subscriptions(t *testing.T) {
	ctx := context.Background()

	t.Run("create and update", func(t *testing.T) {
		service := newCatalogFixture(t)

		membership, err := service.CreateSubscription(ctx, "Membership", eur(t, "15.00"))
		require.NoError(t, err)

		updated, err := service.UpdateSubscription(ctx, membership.ID, "Membership", eur(t, "17.50"))
		require.NoError(t, err)
		assert.Equal(t, "17.50", updated.PriceMoney().AmountString())

		subscriptions, err := service.ListSubscriptions(ctx)
		require.NoError(t, err)
		assert.Len(t, subscriptions, 1)
	})

	t.Run("missing subscription", func(t *testing.T) {
		service := newCatalogFixture(t)
		_, err := service.GetSubscription(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
