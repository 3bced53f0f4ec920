package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/openaccounting/backend/internal/domain/booking"
	"github.com/openaccounting/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormPaymentRepository implements PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// FindByID finds a payment by its ID, nil when it does not exist
func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*booking.Payment, error) {
	var payment booking.Payment
	if err := r.db.WithContext(ctx).First(&payment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}

// FindByTransactionCode finds a payment by service and transaction code
func (r *GormPaymentRepository) FindByTransactionCode(ctx context.Context, serviceID uuid.UUID, code string) (*booking.Payment, error) {
	var payment booking.Payment
	if err := r.db.WithContext(ctx).
		Where("service_id = ? AND transaction_code = ?", serviceID, code).
		First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}

// FindByRange finds payments booked inside [from, to)
func (r *GormPaymentRepository) FindByRange(ctx context.Context, from, to time.Time) ([]booking.Payment, error) {
	var payments []booking.Payment
	if err := r.db.WithContext(ctx).
		Where("booked_at >= ? AND booked_at < ?", from, to).
		Order("booked_at").
		Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// FindOpen finds all currently open payments
func (r *GormPaymentRepository) FindOpen(ctx context.Context) ([]booking.Payment, error) {
	var payments []booking.Payment
	if err := r.db.WithContext(ctx).
		Where("is_open = ?", true).
		Order("booked_at").
		Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// FindOpenInRange finds open payments booked inside [from, to)
func (r *GormPaymentRepository) FindOpenInRange(ctx context.Context, from, to time.Time) ([]booking.Payment, error) {
	var payments []booking.Payment
	if err := r.db.WithContext(ctx).
		Where("is_open = ? AND booked_at >= ? AND booked_at < ?", true, from, to).
		Order("booked_at").
		Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// FindClosed finds all settled payments
func (r *GormPaymentRepository) FindClosed(ctx context.Context) ([]booking.Payment, error) {
	var payments []booking.Payment
	if err := r.db.WithContext(ctx).
		Where("is_open = ?", false).
		Order("booked_at").
		Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// Save creates or updates a payment
func (r *GormPaymentRepository) Save(ctx context.Context, payment *booking.Payment) error {
	return r.db.WithContext(ctx).Save(payment).Error
}

// SaveWithLock updates a payment only when the stored version matches the
// version the caller read before mutating
func (r *GormPaymentRepository) SaveWithLock(ctx context.Context, payment *booking.Payment) error {
	result := r.db.WithContext(ctx).
		Model(&booking.Payment{}).
		Where("id = ? AND version = ?", payment.ID, payment.Version-1).
		Select("*").
		Omit("created_at").
		Updates(payment)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).
			Model(&booking.Payment{}).
			Where("id = ?", payment.ID).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return shared.ErrNotFound
		}
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Ensure GormPaymentRepository implements PaymentRepository
var _ booking.PaymentRepository = (*GormPaymentRepository)(nil)
