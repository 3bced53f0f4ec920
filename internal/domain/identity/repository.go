package identity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// IdentityRepository defines the interface for identity persistence
type IdentityRepository interface {
	// FindByID finds an identity by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Identity, error)

	// FindAll returns all identities ordered by last name
	FindAll(ctx context.Context) ([]Identity, error)

	// Save creates or updates an identity
	Save(ctx context.Context, identity *Identity) error
}

// PaymentAccountRepository defines the interface for payment account persistence
type PaymentAccountRepository interface {
	// FindByID finds a payment account by ID
	FindByID(ctx context.Context, id uuid.UUID) (*PaymentAccount, error)

	// FindByServiceAndExternal finds the account identified by an
	// external account string within one service
	FindByServiceAndExternal(ctx context.Context, serviceID uuid.UUID, externalAccount string) (*PaymentAccount, error)

	// FindByIdentity returns the accounts of an identity
	FindByIdentity(ctx context.Context, identityID uuid.UUID) ([]PaymentAccount, error)

	// Save creates or updates a payment account
	Save(ctx context.Context, account *PaymentAccount) error
}

// SubscriptionAssignmentRepository defines the interface for assignment persistence
type SubscriptionAssignmentRepository interface {
	// FindByID finds an assignment by ID
	FindByID(ctx context.Context, id uuid.UUID) (*SubscriptionAssignment, error)

	// FindByIdentity returns the assignments of an identity
	FindByIdentity(ctx context.Context, identityID uuid.UUID) ([]SubscriptionAssignment, error)

	// FindActiveAt returns the assignments covering the month that
	// starts at the given instant
	FindActiveAt(ctx context.Context, monthStart time.Time) ([]SubscriptionAssignment, error)

	// Save creates or updates an assignment
	Save(ctx context.Context, assignment *SubscriptionAssignment) error
}
