package booking

import (
	"fmt"
	"time"

	"github.com/openaccounting/backend/internal/domain/shared"
)

// AccountingMonth represents a calendar-month accounting period. A month
// starts open; locking it requires that no item or payment booked inside
// the month is still open. Locking and unlocking can alternate
// indefinitely.
type AccountingMonth struct {
	shared.BaseEntity
	Year                   int  `gorm:"not null;uniqueIndex:idx_accounting_months_key,priority:1"`
	Month                  int  `gorm:"not null;uniqueIndex:idx_accounting_months_key,priority:2"`
	IsOpen                 bool `gorm:"not null"`
	CashTransactionCounter int  `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (AccountingMonth) TableName() string {
	return "accounting_months"
}

// NewAccountingMonth creates an open accounting month
func NewAccountingMonth(year, month int) (*AccountingMonth, error) {
	if year < 1970 || year > 9999 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Year out of range")
	}
	if month < 1 || month > 12 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Month must be between 1 and 12")
	}
	return &AccountingMonth{
		BaseEntity: shared.NewBaseEntity(),
		Year:       year,
		Month:      month,
		IsOpen:     true,
	}, nil
}

// SetOpen flips the lock state
func (m *AccountingMonth) SetOpen(open bool) {
	m.IsOpen = open
	m.UpdatedAt = time.Now()
}

// Range returns the half-open UTC instant range [start, end) covered by
// this month in the given booking time zone.
func (m *AccountingMonth) Range(loc *time.Location) (time.Time, time.Time) {
	return MonthRange(m.Year, m.Month, loc)
}

// Next returns the (year, month) key following this month
func (m *AccountingMonth) Next() (int, int) {
	if m.Month == 12 {
		return m.Year + 1, 1
	}
	return m.Year, m.Month + 1
}

// MonthRange returns the half-open instant range [start, end) of the
// calendar month in the given time zone.
func MonthRange(year, month int, loc *time.Location) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 1, 0)
}

// CashTransactionCode formats a sequential cash register transaction
// code such as "202403-7".
func CashTransactionCode(year, month, number int) string {
	return fmt.Sprintf("%04d%02d-%d", year, month, number)
}
