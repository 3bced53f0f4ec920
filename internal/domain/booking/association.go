package booking

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/openaccounting/backend/internal/domain/shared"
	"github.com/openaccounting/backend/internal/domain/shared/valueobject"
)

// PaymentItemAssociation is the many-to-many edge between a payment and
// an item it (partially) settles. Re-associating the same pair creates a
// second edge that double-counts in the balance; callers must not do it.
type PaymentItemAssociation struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	PaymentID uuid.UUID `gorm:"type:uuid;not null;index"`
	ItemID    uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PaymentItemAssociation) TableName() string {
	return "payment_item_associations"
}

// NewPaymentItemAssociation creates a new settlement edge
func NewPaymentItemAssociation(paymentID, itemID uuid.UUID) *PaymentItemAssociation {
	return &PaymentItemAssociation{
		ID:        uuid.New(),
		PaymentID: paymentID,
		ItemID:    itemID,
		CreatedAt: time.Now(),
	}
}

// LinkReason explains why funds moved between two payments
type LinkReason string

const (
	LinkReasonCashDeposit         LinkReason = "CASH_DEPOSIT"
	LinkReasonPrivateDisbursement LinkReason = "PRIVATE_DISBURSEMENT"
)

// IsValid returns true for a known link reason
func (r LinkReason) IsValid() bool {
	return r == LinkReasonCashDeposit || r == LinkReasonPrivateDisbursement
}

// PaymentLink is a directed edge from a source payment to a target
// payment carrying a sub-amount, e.g. cash withdrawn from a PayPal
// balance and deposited into the cash register.
type PaymentLink struct {
	ID              uuid.UUID            `gorm:"type:uuid;primary_key"`
	SourcePaymentID uuid.UUID            `gorm:"type:uuid;not null;index"`
	TargetPaymentID uuid.UUID            `gorm:"type:uuid;not null;index"`
	Amount          decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	Currency        valueobject.Currency `gorm:"type:varchar(3);not null"`
	Reason          LinkReason           `gorm:"type:varchar(30);not null"`
	CreatedAt       time.Time            `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PaymentLink) TableName() string {
	return "payment_links"
}

// NewPaymentLink creates a directed link between two payments
func NewPaymentLink(sourceID, targetID uuid.UUID, amount valueobject.Money, reason LinkReason) (*PaymentLink, error) {
	if sourceID == uuid.Nil || targetID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Source and target payment IDs are required")
	}
	if sourceID == targetID {
		return nil, shared.NewDomainError("INVALID_INPUT", "A payment cannot be linked to itself")
	}
	if !reason.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Link reason is not valid")
	}
	return &PaymentLink{
		ID:              uuid.New(),
		SourcePaymentID: sourceID,
		TargetPaymentID: targetID,
		Amount:          amount.Amount(),
		Currency:        amount.Currency(),
		Reason:          reason,
		CreatedAt:       time.Now(),
	}, nil
}

// AmountMoney returns the link amount as Money
func (l *PaymentLink) AmountMoney() valueobject.Money {
	m, _ := valueobject.NewMoney(l.Amount, l.Currency)
	return m
}
