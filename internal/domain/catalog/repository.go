package catalog

import (
	"context"

	"github.com/google/uuid"
)

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// FindByID finds a product by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindAll returns all products ordered by title
	FindAll(ctx context.Context) ([]Product, error)

	// Save creates or updates a product
	Save(ctx context.Context, product *Product) error
}

// SubscriptionRepository defines the interface for subscription persistence
type SubscriptionRepository interface {
	// FindByID finds a subscription by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Subscription, error)

	// FindAll returns all subscriptions ordered by name
	FindAll(ctx context.Context) ([]Subscription, error)

	// Save creates or updates a subscription
	Save(ctx context.Context, subscription *Subscription) error
}
