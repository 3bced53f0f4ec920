package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/openaccounting/backend/internal/domain/booking"
	"gorm.io/gorm"
)

// GormItemRepository implements ItemRepository using GORM
type GormItemRepository struct {
	db *gorm.DB
}

// NewGormItemRepository creates a new GormItemRepository
func NewGormItemRepository(db *gorm.DB) *GormItemRepository {
	return &GormItemRepository{db: db}
}

// FindByID finds an item by its ID, nil when it does not exist
func (r *GormItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*booking.Item, error) {
	var item booking.Item
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// FindByRange finds items booked inside [from, to)
func (r *GormItemRepository) FindByRange(ctx context.Context, from, to time.Time) ([]booking.Item, error) {
	var items []booking.Item
	if err := r.db.WithContext(ctx).
		Where("booked_at >= ? AND booked_at < ?", from, to).
		Order("booked_at").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// FindOpen finds all currently open items
func (r *GormItemRepository) FindOpen(ctx context.Context) ([]booking.Item, error) {
	var items []booking.Item
	if err := r.db.WithContext(ctx).
		Where("is_open = ?", true).
		Order("booked_at").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// FindOpenInRange finds open items booked inside [from, to)
func (r *GormItemRepository) FindOpenInRange(ctx context.Context, from, to time.Time) ([]booking.Item, error) {
	var items []booking.Item
	if err := r.db.WithContext(ctx).
		Where("is_open = ? AND booked_at >= ? AND booked_at < ?", true, from, to).
		Order("booked_at").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Save creates or updates an item
func (r *GormItemRepository) Save(ctx context.Context, item *booking.Item) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// Ensure GormItemRepository implements ItemRepository
var _ booking.ItemRepository = (*GormItemRepository)(nil)
