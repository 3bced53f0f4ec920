package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appidentity "github.com/openaccounting/backend/internal/application/identity"
	"github.com/openaccounting/backend/internal/domain/catalog"
	"github.com/openaccounting/backend/internal/domain/identity"
	"github.com/openaccounting/backend/internal/domain/shared/valueobject"
)

func seedIdentity(t *testing.T, f *fixture, firstName, lastName string) *identity.Identity {
	t.Helper()

	record, err := identity.NewIdentity(firstName, lastName, "")
	require.NoError(t, err)
	require.NoError(t, f.repos.Identities.Save(context.Background(), record))
	return record
}

func seedSubscription(t *testing.T, f *fixture, name, price string) *catalog.Subscription {
	t.Helper()

	money, err := valueobject.NewMoneyEURFromString(price)
	require.NoError(t, err)
	subscription, err := catalog.NewSubscription(name, money)
	require.NoError(t, err)
	require.NoError(t, f.repos.Subscriptions.Save(context.Background(), subscription))
	return subscription
}

func TestIdentityHandler_CreateAndUpdate(t *testing.T) {
	t.Run("creates an identity", func(t *testing.T) {
		f := newFixture(t, nil)

		w := f.do(t, http.MethodPost, "/api/v1/identities", gin.H{
			"firstName": "Erika",
			"lastName":  "Mustermann",
			"note":      "board member",
		})

		requireStatus(t, w, http.StatusCreated)
		var created identity.Identity
		decode(t, w, &created)
		assert.Equal(t, "Erika", created.FirstName)
		assert.Equal(t, "Mustermann", created.LastName)
	})

	t.Run("rejects a missing last name", func(t *testing.T) {
		f := newFixture(t, nil)

		w := f.do(t, http.MethodPost, "/api/v1/identities", gin.H{"firstName": "Erika"})

		requireStatus(t, w, http.StatusBadRequest)
	})

	t.Run("updates an identity", func(t *testing.T) {
		f := newFixture(t, nil)
		record := seedIdentity(t, f, "Erika", "Mustermann")

		w := f.do(t, http.MethodPut, "/api/v1/identities/"+record.ID.String(), gin.H{
			"firstName": "Erika",
			"lastName":  "Musterfrau",
		})

		requireStatus(t, w, http.StatusOK)
		var updated identity.Identity
		decode(t, w, &updated)
		assert.Equal(t, "Musterfrau", updated.LastName)
	})

	t.Run("answers 404 when updating an unknown identity", func(t *testing.T) {
		f := newFixture(t, nil)

		w := f.do(t, http.MethodPut, "/api/v1/identities/"+uuid.NewString(), gin.H{
			"firstName": "Erika",
			"lastName":  "Mustermann",
		})

		requireStatus(t, w, http.StatusNotFound)
	})
}

func TestIdentityHandler_AccountsAndSubscriptions(t *testing.T) {
	t.Run("adds a payment account", func(t *testing.T) {
		f := newFixture(t, nil)
		record := seedIdentity(t, f, "Erika", "Mustermann")
		service := f.seedService(t, "paypal", "PayPal")

		w := f.do(t, http.MethodPost, "/api/v1/identities/"+record.ID.String()+"/accounts", gin.H{
			"serviceId":       service.ID,
			"externalAccount": "erika@example.org",
		})

		requireStatus(t, w, http.StatusCreated)
		var account identity.PaymentAccount
		decode(t, w, &account)
		assert.Equal(t, record.ID, account.IdentityID)
		assert.Equal(t, "erika@example.org", account.ExternalAccount)
	})

	t.Run("assigns and ends a subscription", func(t *testing.T) {
		f := newFixture(t, nil)
		record := seedIdentity(t, f, "Erika", "Mustermann")
		subscription := seedSubscription(t, f, "Regular membership", "12.00")

		w := f.do(t, http.MethodPost, "/api/v1/identities/"+record.ID.String()+"/subscriptions", gin.H{
			"subscriptionId": subscription.ID,
			"beginsAt":       "2024-01-01T00:00:00Z",
		})

		requireStatus(t, w, http.StatusCreated)
		var assignment identity.SubscriptionAssignment
		decode(t, w, &assignment)
		assert.Equal(t, subscription.ID, assignment.SubscriptionID)
		assert.Nil(t, assignment.EndsAt)

		w = f.do(t, http.MethodPut, "/api/v1/subscription-assignments/"+assignment.ID.String()+"/end", gin.H{
			"endsAt": "2024-06-30T00:00:00Z",
		})

		requireStatus(t, w, http.StatusOK)
		decode(t, w, &assignment)
		require.NotNil(t, assignment.EndsAt)
	})

	t.Run("lists details with accounts and assignments", func(t *testing.T) {
		f := newFixture(t, nil)
		record := seedIdentity(t, f, "Erika", "Mustermann")
		service := f.seedService(t, "paypal", "PayPal")

		w := f.do(t, http.MethodPost, "/api/v1/identities/"+record.ID.String()+"/accounts", gin.H{
			"serviceId":       service.ID,
			"externalAccount": "erika@example.org",
		})
		requireStatus(t, w, http.StatusCreated)

		w = f.do(t, http.MethodGet, "/api/v1/identities/"+record.ID.String(), nil)
		requireStatus(t, w, http.StatusOK)
		var details appidentity.IdentityDetails
		decode(t, w, &details)
		assert.Equal(t, record.ID, details.Identity.ID)
		assert.Len(t, details.Accounts, 1)
	})
}
