package booking

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/openaccounting/backend/internal/domain/shared"
	"github.com/openaccounting/backend/internal/domain/shared/valueobject"
)

// Item represents a billable event: a subscription due, a product sale
// or a manually entered sale. Items are settled by associating them with
// payments; the open flag flips the moment any association is created.
type Item struct {
	shared.BaseEntity
	DebtorID       uuid.UUID            `gorm:"type:uuid;not null;index"`
	BookedAt       time.Time            `gorm:"not null;index:idx_items_booked_open,priority:1"`
	Amount         decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	Currency       valueobject.Currency `gorm:"type:varchar(3);not null"`
	ProductID      *uuid.UUID           `gorm:"type:uuid;index"`
	SubscriptionID *uuid.UUID           `gorm:"type:uuid;index"`
	Note           string               `gorm:"type:text"`
	IsOpen         bool                 `gorm:"not null;index:idx_items_booked_open,priority:2"`
}

// TableName returns the table name for GORM
func (Item) TableName() string {
	return "items"
}

// NewItem creates a manually entered item
func NewItem(debtorID uuid.UUID, bookedAt time.Time, amount valueobject.Money, note string) (*Item, error) {
	if debtorID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Debtor ID cannot be empty")
	}
	if bookedAt.IsZero() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Booking timestamp is required")
	}
	return &Item{
		BaseEntity: shared.NewBaseEntity(),
		DebtorID:   debtorID,
		BookedAt:   bookedAt,
		Amount:     amount.Amount(),
		Currency:   amount.Currency(),
		Note:       note,
		IsOpen:     true,
	}, nil
}

// NewProductItem creates an item for a product sale
func NewProductItem(debtorID, productID uuid.UUID, bookedAt time.Time, price valueobject.Money, note string) (*Item, error) {
	item, err := NewItem(debtorID, bookedAt, price, note)
	if err != nil {
		return nil, err
	}
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Product ID cannot be empty")
	}
	item.ProductID = &productID
	return item, nil
}

// NewSubscriptionItem creates an item for a subscription due
func NewSubscriptionItem(debtorID, subscriptionID uuid.UUID, bookedAt time.Time, price valueobject.Money, note string) (*Item, error) {
	item, err := NewItem(debtorID, bookedAt, price, note)
	if err != nil {
		return nil, err
	}
	if subscriptionID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Subscription ID cannot be empty")
	}
	item.SubscriptionID = &subscriptionID
	return item, nil
}

// AmountMoney returns the item amount as Money
func (i *Item) AmountMoney() valueobject.Money {
	m, _ := valueobject.NewMoney(i.Amount, i.Currency)
	return m
}

// Close marks the item settled
func (i *Item) Close() {
	i.IsOpen = false
	i.UpdatedAt = time.Now()
}
