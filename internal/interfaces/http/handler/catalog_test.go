package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/openaccounting/backend/internal/domain/catalog"
)

func TestCatalogHandler_Products(t *testing.T) {
	t.Run("creates and lists products", func(t *testing.T) {
		f := newFixture(t, nil)

		w := f.do(t, http.MethodPost, "/api/v1/products", gin.H{
			"title": "Club T-shirt",
			"price": "20.00",
		})
		requireStatus(t, w, http.StatusCreated)
		var created catalog.Product
		decode(t, w, &created)
		assert.Equal(t, "Club T-shirt", created.Title)
		assert.True(t, created.Price.Equal(decimal.RequireFromString("20.00")))

		w = f.do(t, http.MethodGet, "/api/v1/products", nil)
		requireStatus(t, w, http.StatusOK)
		var products []catalog.Product
		decode(t, w, &products)
		assert.Len(t, products, 1)
	})

	t.Run("updates a product price", func(t *testing.T) {
		f := newFixture(t, nil)
		product := seedProduct(t, f, "Club T-shirt", "20.00")

		w := f.do(t, http.MethodPut, "/api/v1/products/"+product.ID.String(), gin.H{
			"title": "Club T-shirt",
			"price": "22.50",
		})

		requireStatus(t, w, http.StatusOK)
		var updated catalog.Product
		decode(t, w, &updated)
		assert.True(t, updated.Price.Equal(decimal.RequireFromString("22.50")))
	})

	t.Run("answers 404 for an unknown product", func(t *testing.T) {
		f := newFixture(t, nil)

		w := f.do(t, http.MethodGet, "/api/v1/products/"+uuid.NewString(), nil)

		requireStatus(t, w, http.StatusNotFound)
	})

	t.Run("rejects a missing price", func(t *testing.T) {
		f := newFixture(t, nil)

		w := f.do(t, http.MethodPost, "/api/v1/products", gin.H{"title": "Club T-shirt"})

		requireStatus(t, w, http.StatusBadRequest)
	})
}

func TestCatalogHandler_Subscriptions(t *testing.T) {
	t.Run("creates and fetches a subscription", func(t *testing.T) {
		f := newFixture(t, nil)

		w := f.do(t, http.MethodPost, "/api/v1/subscriptions", gin.H{
			"name":  "Regular membership",
			"price": "12.00",
		})
		requireStatus(t, w, http.StatusCreated)
		var created catalog.Subscription
		decode(t, w, &created)

		w = f.do(t, http.MethodGet, "/api/v1/subscriptions/"+created.ID.String(), nil)
		requireStatus(t, w, http.StatusOK)
		var fetched catalog.Subscription
		decode(t, w, &fetched)
		assert.Equal(t, created.ID, fetched.ID)
		assert.True(t, fetched.Price.Equal(decimal.RequireFromString("12.00")))
	})

	t.Run("updates a subscription", func(t *testing.T) {
		f := newFixture(t, nil)
		subscription := seedSubscription(t, f, "Regular membership", "12.00")

		w := f.do(t, http.MethodPut, "/api/v1/subscriptions/"+subscription.ID.String(), gin.H{
			"name":  "Reduced membership",
			"price": "6.00",
		})

		requireStatus(t, w, http.StatusOK)
		var updated catalog.Subscription
		decode(t, w, &updated)
		assert.Equal(t, "Reduced membership", updated.Name)
	})
}
