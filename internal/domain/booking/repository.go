package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// PaymentRepository defines the interface for payment persistence
type PaymentRepository interface {
	// FindByID finds a payment by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)

	// FindByTransactionCode finds a payment by service and transaction code
	FindByTransactionCode(ctx context.Context, serviceID uuid.UUID, code string) (*Payment, error)

	// FindByRange finds payments booked inside [from, to)
	FindByRange(ctx context.Context, from, to time.Time) ([]Payment, error)

	// FindOpen finds all currently open payments
	FindOpen(ctx context.Context) ([]Payment, error)

	// FindOpenInRange finds open payments booked inside [from, to)
	FindOpenInRange(ctx context.Context, from, to time.Time) ([]Payment, error)

	// FindClosed finds all settled payments
	FindClosed(ctx context.Context) ([]Payment, error)

	// Save creates or updates a payment
	Save(ctx context.Context, payment *Payment) error

	// SaveWithLock saves with an optimistic version check
	SaveWithLock(ctx context.Context, payment *Payment) error
}

// ItemRepository defines the interface for item persistence
type ItemRepository interface {
	// FindByID finds an item by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Item, error)

	// FindByRange finds items booked inside [from, to)
	FindByRange(ctx context.Context, from, to time.Time) ([]Item, error)

	// FindOpen finds all currently open items
	FindOpen(ctx context.Context) ([]Item, error)

	// FindOpenInRange finds open items booked inside [from, to)
	FindOpenInRange(ctx context.Context, from, to time.Time) ([]Item, error)

	// Save creates or updates an item
	Save(ctx context.Context, item *Item) error
}

// AssociationRepository defines the interface for the settlement edges
// between payments and items, and between payments
type AssociationRepository interface {
	// CreateItemAssociation persists a payment-item edge
	CreateItemAssociation(ctx context.Context, assoc *PaymentItemAssociation) error

	// FindItemsForPayment returns the items associated with a payment,
	// one entry per edge so duplicate edges double-count
	FindItemsForPayment(ctx context.Context, paymentID uuid.UUID) ([]Item, error)

	// FindPaymentIDsForItem returns the ids of payments associated with an item
	FindPaymentIDsForItem(ctx context.Context, itemID uuid.UUID) ([]uuid.UUID, error)

	// CreateLink persists a directed payment-payment link
	CreateLink(ctx context.Context, link *PaymentLink) error

	// FindOutgoingLinks returns links where the payment is the source
	FindOutgoingLinks(ctx context.Context, paymentID uuid.UUID) ([]PaymentLink, error)

	// FindIncomingLinks returns links where the payment is the target
	FindIncomingLinks(ctx context.Context, paymentID uuid.UUID) ([]PaymentLink, error)
}

// AccountingMonthRepository defines the interface for accounting month persistence
type AccountingMonthRepository interface {
	// FindByKey finds a month by its (year, month) key
	FindByKey(ctx context.Context, year, month int) (*AccountingMonth, error)

	// FindAll returns all months ordered by year, month
	FindAll(ctx context.Context) ([]AccountingMonth, error)

	// FindYears returns the distinct years with at least one month
	FindYears(ctx context.Context) ([]int, error)

	// FindByYear returns the months of a year ordered by month
	FindByYear(ctx context.Context, year int) ([]AccountingMonth, error)

	// FindLast returns the most recent month, nil when none exist
	FindLast(ctx context.Context) (*AccountingMonth, error)

	// Save creates or updates a month
	Save(ctx context.Context, month *AccountingMonth) error

	// IncrementCashCounter atomically bumps the cash transaction counter
	// of a month and returns the new value
	IncrementCashCounter(ctx context.Context, year, month int) (int, error)
}

// PaymentServiceRepository defines the interface for payment service persistence
type PaymentServiceRepository interface {
	// FindByID finds a service by ID
	FindByID(ctx context.Context, id uuid.UUID) (*PaymentService, error)

	// FindByCode finds a service by its code
	FindByCode(ctx context.Context, code string) (*PaymentService, error)

	// FindAll returns all services
	FindAll(ctx context.Context) ([]PaymentService, error)

	// Save creates or updates a service
	Save(ctx context.Context, service *PaymentService) error
}
