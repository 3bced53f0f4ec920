package catalog

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/openaccounting/backend/internal/domain/shared"
	"github.com/openaccounting/backend/internal/domain/shared/valueobject"
)

// Subscription represents a recurring monthly due, such as a membership
// fee. The price is the current price; month creation bills whatever the
// price is at creation time.
type Subscription struct {
	shared.BaseEntity
	Name     string               `gorm:"type:varchar(200);not null"`
	Price    decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	Currency valueobject.Currency `gorm:"type:varchar(3);not null"`
}

// TableName returns the table name for GORM
func (Subscription) TableName() string {
	return "subscriptions"
}

// NewSubscription creates a new subscription
func NewSubscription(name string, price valueobject.Money) (*Subscription, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Subscription name cannot be empty")
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Subscription price cannot be negative")
	}
	return &Subscription{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
		Price:      price.Amount(),
		Currency:   price.Currency(),
	}, nil
}

// Update edits the subscription fields
func (s *Subscription) Update(name string, price valueobject.Money) error {
	if name == "" {
		return shared.NewDomainError("INVALID_INPUT", "Subscription name cannot be empty")
	}
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_INPUT", "Subscription price cannot be negative")
	}
	s.Name = name
	s.Price = price.Amount()
	s.Currency = price.Currency()
	s.UpdatedAt = time.Now()
	return nil
}

// PriceMoney returns the price as Money
func (s *Subscription) PriceMoney() valueobject.Money {
	m, _ := valueobject.NewMoney(s.Price, s.Currency)
	return m
}
