package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/openaccounting/backend/internal/domain/booking"
	"gorm.io/gorm"
)

// GormPaymentServiceRepository implements PaymentServiceRepository using GORM
type GormPaymentServiceRepository struct {
	db *gorm.DB
}

// NewGormPaymentServiceRepository creates a new GormPaymentServiceRepository
func NewGormPaymentServiceRepository(db *gorm.DB) *GormPaymentServiceRepository {
	return &GormPaymentServiceRepository{db: db}
}

// FindByID finds a service by its ID, nil when it does not exist
func (r *GormPaymentServiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*booking.PaymentService, error) {
	var service booking.PaymentService
	if err := r.db.WithContext(ctx).First(&service, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &service, nil
}

// FindByCode finds a service by its code
func (r *GormPaymentServiceRepository) FindByCode(ctx context.Context, code string) (*booking.PaymentService, error) {
	var service booking.PaymentService
	if err := r.db.WithContext(ctx).
		Where("code = ?", code).
		First(&service).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &service, nil
}

// FindAll returns all services ordered by code
func (r *GormPaymentServiceRepository) FindAll(ctx context.Context) ([]booking.PaymentService, error) {
	var services []booking.PaymentService
	if err := r.db.WithContext(ctx).
		Order("code").
		Find(&services).Error; err != nil {
		return nil, err
	}
	return services, nil
}

// Save creates or updates a service
func (r *GormPaymentServiceRepository) Save(ctx context.Context, service *booking.PaymentService) error {
	return r.db.WithContext(ctx).Save(service).Error
}

// Ensure GormPaymentServiceRepository implements PaymentServiceRepository
var _ booking.PaymentServiceRepository = (*GormPaymentServiceRepository)(nil)
