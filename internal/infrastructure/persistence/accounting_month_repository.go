package persistence

import (
	"context"
	"errors"

	"github.com/openaccounting/backend/internal/domain/booking"
	"github.com/openaccounting/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormAccountingMonthRepository implements AccountingMonthRepository using GORM
type GormAccountingMonthRepository struct {
	db *gorm.DB
}

// NewGormAccountingMonthRepository creates a new GormAccountingMonthRepository
func NewGormAccountingMonthRepository(db *gorm.DB) *GormAccountingMonthRepository {
	return &GormAccountingMonthRepository{db: db}
}

// FindByKey finds a month by its (year, month) key, nil when it does not exist
func (r *GormAccountingMonthRepository) FindByKey(ctx context.Context, year, month int) (*booking.AccountingMonth, error) {
	var record booking.AccountingMonth
	if err := r.db.WithContext(ctx).
		Where("year = ? AND month = ?", year, month).
		First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// FindAll returns all months ordered by year, month
func (r *GormAccountingMonthRepository) FindAll(ctx context.Context) ([]booking.AccountingMonth, error) {
	var records []booking.AccountingMonth
	if err := r.db.WithContext(ctx).
		Order("year, month").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// FindYears returns the distinct years with at least one month
func (r *GormAccountingMonthRepository) FindYears(ctx context.Context) ([]int, error) {
	var years []int
	if err := r.db.WithContext(ctx).
		Model(&booking.AccountingMonth{}).
		Distinct("year").
		Order("year").
		Pluck("year", &years).Error; err != nil {
		return nil, err
	}
	return years, nil
}

// FindByYear returns the months of a year ordered by month
func (r *GormAccountingMonthRepository) FindByYear(ctx context.Context, year int) ([]booking.AccountingMonth, error) {
	var records []booking.AccountingMonth
	if err := r.db.WithContext(ctx).
		Where("year = ?", year).
		Order("month").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// FindLast returns the most recent month, nil when none exist
func (r *GormAccountingMonthRepository) FindLast(ctx context.Context) (*booking.AccountingMonth, error) {
	var record booking.AccountingMonth
	if err := r.db.WithContext(ctx).
		Order("year DESC, month DESC").
		First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// Save creates or updates a month
func (r *GormAccountingMonthRepository) Save(ctx context.Context, month *booking.AccountingMonth) error {
	return r.db.WithContext(ctx).Save(month).Error
}

// IncrementCashCounter atomically bumps the cash transaction counter of a
// month and returns the new value
func (r *GormAccountingMonthRepository) IncrementCashCounter(ctx context.Context, year, month int) (int, error) {
	result := r.db.WithContext(ctx).
		Model(&booking.AccountingMonth{}).
		Where("year = ? AND month = ?", year, month).
		UpdateColumn("cash_transaction_counter", gorm.Expr("cash_transaction_counter + 1"))
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, shared.ErrNotFound
	}

	var counters []int
	if err := r.db.WithContext(ctx).
		Model(&booking.AccountingMonth{}).
		Where("year = ? AND month = ?", year, month).
		Pluck("cash_transaction_counter", &counters).Error; err != nil {
		return 0, err
	}
	if len(counters) == 0 {
		return 0, shared.ErrNotFound
	}
	return counters[0], nil
}

// Ensure GormAccountingMonthRepository implements AccountingMonthRepository
var _ booking.AccountingMonthRepository = (*GormAccountingMonthRepository)(nil)
