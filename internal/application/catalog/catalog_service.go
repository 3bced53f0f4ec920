package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appbooking "github.com/openaccounting/backend/internal/application/booking"
	"github.com/openaccounting/backend/internal/domain/catalog"
	"github.com/openaccounting/backend/internal/domain/shared"
	"github.com/openaccounting/backend/internal/domain/shared/valueobject"
)

// CatalogService manages the sellable products and the recurring
// subscriptions.
type CatalogService struct {
	scope  appbooking.TransactionScope
	logger *zap.Logger
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(scope appbooking.TransactionScope, logger *zap.Logger) *CatalogService {
	return &CatalogService{scope: scope, logger: logger}
}

// CreateProduct adds a product to the catalog
func (s *CatalogService) CreateProduct(ctx context.Context, title string, price valueobject.Money) (*catalog.Product, error) {
	product, err := catalog.NewProduct(title, price)
	if err != nil {
		return nil, err
	}
	err = s.scope.Execute(ctx, func(repos appbooking.TransactionalRepositories) error {
		return repos.ProductRepo().Save(ctx, product)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("created product", zap.String("product_id", product.ID.String()))
	return product, nil
}

// UpdateProduct edits a product's title and price. Already booked sale
// items keep the price they were created with.
func (s *CatalogService) UpdateProduct(ctx context.Context, id uuid.UUID, title string, price valueobject.Money) (*catalog.Product, error) {
	var product *catalog.Product
	err := s.scope.Execute(ctx, func(repos appbooking.TransactionalRepositories) error {
		var err error
		product, err = repos.ProductRepo().FindByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to load product: %w", err)
		}
		if product == nil {
			return shared.ErrNotFound
		}
		if err := product.Update(title, price); err != nil {
			return err
		}
		return repos.ProductRepo().Save(ctx, product)
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

// GetProduct returns one product
func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var product *catalog.Product
	err := s.scope.Execute(ctx, func(repos appbooking.TransactionalRepositories) error {
		var err error
		product, err = repos.ProductRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if product == nil {
			return shared.ErrNotFound
		}
		return nil
	})
	return product, err
}

// ListProducts returns all products ordered by title
func (s *CatalogService) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	var products []catalog.Product
	err := s.scope.Execute(ctx, func(repos appbooking.TransactionalRepositories) error {
		var err error
		products, err = repos.ProductRepo().FindAll(ctx)
		return err
	})
	return products, err
}

// CreateSubscription adds a recurring subscription
func (s *CatalogService) CreateSubscription(ctx context.Context, name string, price valueobject.Money) (*catalog.Subscription, error) {
	subscription, err := catalog.NewSubscription(name, price)
	if err != nil {
		return nil, err
	}
	err = s.scope.Execute(ctx, func(repos appbooking.TransactionalRepositories) error {
		return repos.SubscriptionRepo().Save(ctx, subscription)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("created subscription", zap.String("subscription_id", subscription.ID.String()))
	return subscription, nil
}

// UpdateSubscription edits a subscription's name and price. The new
// price applies from the next created accounting month on.
func (s *CatalogService) UpdateSubscription(ctx context.Context, id uuid.UUID, name string, price valueobject.Money) (*catalog.Subscription, error) {
	var subscription *catalog.Subscription
	err := s.scope.Execute(ctx, func(repos appbooking.TransactionalRepositories) error {
		var err error
		subscription, err = repos.SubscriptionRepo().FindByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to load subscription: %w", err)
		}
		if subscription == nil {
			return shared.ErrNotFound
		}
		if err := subscription.Update(name, price); err != nil {
			return err
		}
		return repos.SubscriptionRepo().Save(ctx, subscription)
	})
	if err != nil {
		return nil, err
	}
	return subscription, nil
}

// GetSubscription returns one subscription
func (s *CatalogService) GetSubscription(ctx context.Context, id uuid.UUID) (*catalog.Subscription, error) {
	var subscription *catalog.Subscription
	err := s.scope.Execute(ctx, func(repos appbooking.TransactionalRepositories) error {
		var err error
		subscription, err = repos.SubscriptionRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if subscription == nil {
			return shared.ErrNotFound
		}
		return nil
	})
	return subscription, err
}

// ListSubscriptions returns all subscriptions ordered by name
func (s *CatalogService) ListSubscriptions(ctx context.Context) ([]catalog.Subscription, error) {
	var subscriptions []catalog.Subscription
	err := s.scope.Execute(ctx, func(repos appbooking.TransactionalRepositories) error {
		var err error
		subscriptions, err = repos.SubscriptionRepo().FindAll(ctx)
		return err
	})
	return subscriptions, err
}
