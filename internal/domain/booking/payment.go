package booking

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/openaccounting/backend/internal/domain/shared"
	"github.com/openaccounting/backend/internal/domain/shared/valueobject"
)

// PaymentType distinguishes regular payments from balance withdrawals
type PaymentType string

const (
	PaymentTypeNormal     PaymentType = "NORMAL"
	PaymentTypeWithdrawal PaymentType = "WITHDRAWAL"
)

// IsValid returns true for a known payment type
func (t PaymentType) IsValid() bool {
	return t == PaymentTypeNormal || t == PaymentTypeWithdrawal
}

// Payment represents money received or sent through a payment service.
// The open flag is derived state: it is maintained exclusively by the
// reconciliation engine and never edited directly.
type Payment struct {
	shared.BaseAggregateRoot
	Type              PaymentType          `gorm:"type:varchar(20);not null"`
	ServiceID         uuid.UUID            `gorm:"type:uuid;not null;index"`
	TransactionCode   string               `gorm:"type:varchar(100);not null;uniqueIndex:idx_payments_service_txn,priority:2"`
	SenderID          uuid.UUID            `gorm:"type:uuid;not null;index"`
	ReceiverID        uuid.UUID            `gorm:"type:uuid;not null;index"`
	BookedAt          time.Time            `gorm:"not null;index:idx_payments_booked_open,priority:1"`
	GrossAmount       decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	FeeAmount         decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	Currency          valueobject.Currency `gorm:"type:varchar(3);not null"`
	Note              string               `gorm:"type:text"`
	IsOpen            bool                 `gorm:"not null;index:idx_payments_booked_open,priority:2"`
	Manual            bool                 `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (Payment) TableName() string {
	return "payments"
}

// NewPayment creates a new payment. A payment whose gross amount is zero
// is already balanced and starts closed.
func NewPayment(
	paymentType PaymentType,
	serviceID uuid.UUID,
	transactionCode string,
	senderID uuid.UUID,
	receiverID uuid.UUID,
	bookedAt time.Time,
	grossAmount valueobject.Money,
	feeAmount valueobject.Money,
	note string,
) (*Payment, error) {
	if !paymentType.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Payment type is not valid")
	}
	if serviceID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Payment service ID cannot be empty")
	}
	if transactionCode == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Transaction code cannot be empty")
	}
	if senderID == uuid.Nil || receiverID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Sender and receiver identities are required")
	}
	if bookedAt.IsZero() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Booking timestamp is required")
	}
	if grossAmount.Currency() != feeAmount.Currency() {
		return nil, shared.NewDomainError("CURRENCY_MISMATCH", "Gross amount and fee must share a currency")
	}

	return &Payment{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Type:              paymentType,
		ServiceID:         serviceID,
		TransactionCode:   transactionCode,
		SenderID:          senderID,
		ReceiverID:        receiverID,
		BookedAt:          bookedAt,
		GrossAmount:       grossAmount.Amount(),
		FeeAmount:         feeAmount.Amount(),
		Currency:          grossAmount.Currency(),
		Note:              note,
		IsOpen:            !grossAmount.IsZero(),
	}, nil
}

// GrossMoney returns the gross amount as Money
func (p *Payment) GrossMoney() valueobject.Money {
	m, _ := valueobject.NewMoney(p.GrossAmount, p.Currency)
	return m
}

// FeeMoney returns the transaction fee as Money. Fees from provider
// exports are negative amounts.
func (p *Payment) FeeMoney() valueobject.Money {
	m, _ := valueobject.NewMoney(p.FeeAmount, p.Currency)
	return m
}

// NetMoney returns gross plus fee, the amount that actually moved on
// the service balance.
func (p *Payment) NetMoney() valueobject.Money {
	m, _ := valueobject.NewMoney(p.GrossAmount.Add(p.FeeAmount), p.Currency)
	return m
}

// SetOpen records the outcome of a reconciliation run
func (p *Payment) SetOpen(open bool) {
	p.IsOpen = open
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// IsWithdrawal returns true for balance withdrawal payments
func (p *Payment) IsWithdrawal() bool {
	return p.Type == PaymentTypeWithdrawal
}

// UpdateManualFields edits the mutable fields of a manually entered
// payment. Imported payments mirror an external feed and must not drift
// from it.
func (p *Payment) UpdateManualFields(
	senderID uuid.UUID,
	receiverID uuid.UUID,
	bookedAt time.Time,
	grossAmount valueobject.Money,
	note string,
) error {
	if !p.Manual {
		return shared.NewDomainError("INVALID_STATE", "Only manually entered payments can be edited")
	}
	if senderID == uuid.Nil || receiverID == uuid.Nil {
		return shared.NewDomainError("INVALID_INPUT", "Sender and receiver identities are required")
	}
	if bookedAt.IsZero() {
		return shared.NewDomainError("INVALID_INPUT", "Booking timestamp is required")
	}

	p.SenderID = senderID
	p.ReceiverID = receiverID
	p.BookedAt = bookedAt
	p.GrossAmount = grossAmount.Amount()
	p.Currency = grossAmount.Currency()
	p.Note = note
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// Matches reports whether an incoming feed record carries the same data
// as this stored payment. A mismatch on reimport is a data integrity
// problem that needs manual reconciliation.
func (p *Payment) Matches(other *Payment) bool {
	return p.Type == other.Type &&
		p.ServiceID == other.ServiceID &&
		p.TransactionCode == other.TransactionCode &&
		p.SenderID == other.SenderID &&
		p.ReceiverID == other.ReceiverID &&
		p.BookedAt.Equal(other.BookedAt) &&
		p.GrossAmount.Equal(other.GrossAmount) &&
		p.FeeAmount.Equal(other.FeeAmount) &&
		p.Currency == other.Currency
}
