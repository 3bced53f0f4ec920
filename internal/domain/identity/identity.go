package identity

import (
	"time"

	"github.com/google/uuid"

	"github.com/openaccounting/backend/internal/domain/shared"
)

// Identity represents a person or organization the bookkeeping deals
// with: members paying dues, customers buying products, counterparties
// of payments.
type Identity struct {
	shared.BaseEntity
	FirstName string `gorm:"type:varchar(100);not null"`
	LastName  string `gorm:"type:varchar(100);not null"`
	Note      string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Identity) TableName() string {
	return "identities"
}

// NewIdentity creates a new identity
func NewIdentity(firstName, lastName, note string) (*Identity, error) {
	if firstName == "" && lastName == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Identity needs at least one name")
	}
	return &Identity{
		BaseEntity: shared.NewBaseEntity(),
		FirstName:  firstName,
		LastName:   lastName,
		Note:       note,
	}, nil
}

// Update edits the identity fields
func (i *Identity) Update(firstName, lastName, note string) error {
	if firstName == "" && lastName == "" {
		return shared.NewDomainError("INVALID_INPUT", "Identity needs at least one name")
	}
	i.FirstName = firstName
	i.LastName = lastName
	i.Note = note
	i.UpdatedAt = time.Now()
	return nil
}

// DisplayName returns the name used in reports
func (i *Identity) DisplayName() string {
	switch {
	case i.FirstName == "":
		return i.LastName
	case i.LastName == "":
		return i.FirstName
	default:
		return i.FirstName + " " + i.LastName
	}
}

// PaymentAccount identifies an identity within one payment service, for
// instance the e-mail address of a PayPal account or a synthetic cash
// register account.
type PaymentAccount struct {
	shared.BaseEntity
	IdentityID      uuid.UUID `gorm:"type:uuid;not null;index"`
	ServiceID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_payment_accounts_service_ext,priority:1"`
	ExternalAccount string    `gorm:"type:varchar(200);not null;uniqueIndex:idx_payment_accounts_service_ext,priority:2"`
}

// TableName returns the table name for GORM
func (PaymentAccount) TableName() string {
	return "payment_accounts"
}

// NewPaymentAccount creates a new payment account association
func NewPaymentAccount(identityID, serviceID uuid.UUID, externalAccount string) (*PaymentAccount, error) {
	if identityID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Identity ID cannot be empty")
	}
	if serviceID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Service ID cannot be empty")
	}
	if externalAccount == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "External account cannot be empty")
	}
	return &PaymentAccount{
		BaseEntity:      shared.NewBaseEntity(),
		IdentityID:      identityID,
		ServiceID:       serviceID,
		ExternalAccount: externalAccount,
	}, nil
}

// SubscriptionAssignment subscribes an identity to a recurring
// subscription from a start month, optionally until an end month.
// Month boundaries are stored as the first instant of the month in the
// booking time zone.
type SubscriptionAssignment struct {
	shared.BaseEntity
	IdentityID     uuid.UUID  `gorm:"type:uuid;not null;index"`
	SubscriptionID uuid.UUID  `gorm:"type:uuid;not null;index"`
	BeginsAt       time.Time  `gorm:"not null"`
	EndsAt         *time.Time `gorm:"index"`
}

// TableName returns the table name for GORM
func (SubscriptionAssignment) TableName() string {
	return "subscription_assignments"
}

// NewSubscriptionAssignment creates a new assignment
func NewSubscriptionAssignment(identityID, subscriptionID uuid.UUID, beginsAt time.Time, endsAt *time.Time) (*SubscriptionAssignment, error) {
	if identityID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Identity ID cannot be empty")
	}
	if subscriptionID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Subscription ID cannot be empty")
	}
	if beginsAt.IsZero() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Assignment start is required")
	}
	if endsAt != nil && endsAt.Before(beginsAt) {
		return nil, shared.NewDomainError("INVALID_INPUT", "Assignment end cannot precede its start")
	}
	return &SubscriptionAssignment{
		BaseEntity:     shared.NewBaseEntity(),
		IdentityID:     identityID,
		SubscriptionID: subscriptionID,
		BeginsAt:       beginsAt,
		EndsAt:         endsAt,
	}, nil
}

// ActiveAt reports whether the assignment covers the month starting at
// the given instant.
func (a *SubscriptionAssignment) ActiveAt(monthStart time.Time) bool {
	if a.BeginsAt.After(monthStart) {
		return false
	}
	return a.EndsAt == nil || !a.EndsAt.Before(monthStart)
}

// End closes the assignment at the given instant
func (a *SubscriptionAssignment) End(endsAt time.Time) error {
	if endsAt.Before(a.BeginsAt) {
		return shared.NewDomainError("INVALID_INPUT", "Assignment end cannot precede its start")
	}
	a.EndsAt = &endsAt
	a.UpdatedAt = time.Now()
	return nil
}
