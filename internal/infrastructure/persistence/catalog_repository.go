package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/openaccounting/backend/internal/domain/catalog"
	"gorm.io/gorm"
)

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by its ID, nil when it does not exist
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var product catalog.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

// FindAll returns all products ordered by title
func (r *GormProductRepository) FindAll(ctx context.Context) ([]catalog.Product, error) {
	var products []catalog.Product
	if err := r.db.WithContext(ctx).
		Order("title").
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// Save creates or updates a product
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

// GormSubscriptionRepository implements SubscriptionRepository using GORM
type GormSubscriptionRepository struct {
	db *gorm.DB
}

// NewGormSubscriptionRepository creates a new GormSubscriptionRepository
func NewGormSubscriptionRepository(db *gorm.DB) *GormSubscriptionRepository {
	return &GormSubscriptionRepository{db: db}
}

// FindByID finds a subscription by its ID, nil when it does not exist
func (r *GormSubscriptionRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Subscription, error) {
	var subscription catalog.Subscription
	if err := r.db.WithContext(ctx).First(&subscription, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &subscription, nil
}

// FindAll returns all subscriptions ordered by name
func (r *GormSubscriptionRepository) FindAll(ctx context.Context) ([]catalog.Subscription, error) {
	var subscriptions []catalog.Subscription
	if err := r.db.WithContext(ctx).
		Order("name").
		Find(&subscriptions).Error; err != nil {
		return nil, err
	}
	return subscriptions, nil
}

// Save creates or updates a subscription
func (r *GormSubscriptionRepository) Save(ctx context.Context, subscription *catalog.Subscription) error {
	return r.db.WithContext(ctx).Save(subscription).Error
}

// Ensure the repositories implement their interfaces
var (
	_ catalog.ProductRepository      = (*GormProductRepository)(nil)
	_ catalog.SubscriptionRepository = (*GormSubscriptionRepository)(nil)
)
