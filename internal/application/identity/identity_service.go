package identity

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appbooking "github.com/openaccounting/backend/internal/application/booking"
	"github.com/openaccounting/backend/internal/domain/identity"
	"github.com/openaccounting/backend/internal/domain/shared"
)

// IdentityService manages the people and organizations money moves
// between, their payment accounts and their subscription assignments.
type IdentityService struct {
	scope  appbooking.TransactionScope
	logger *zap.Logger
}

// NewIdentityService creates a new IdentityService
func NewIdentityService(scope appbooking.TransactionScope, logger *zap.Logger) *IdentityService {
	return &IdentityService{scope: scope, logger: logger}
}

// IdentityDetails is an identity with its accounts and assignments
type IdentityDetails struct {
	Identity    identity.Identity                 `json:"identity"`
	Accounts    []identity.PaymentAccount         `json:"accounts"`
	Assignments []identity.SubscriptionAssignment `json:"assignments"`
}

// Create registers a new identity
func (s *IdentityService) Create(ctx context.Context, firstName, lastName, note string) (*identity.Identity, error) {
	record, err := identity.NewIdentity(firstName, lastName, note)
	if err != nil {
		return nil, err
	}
	err = s.scope.Execute(ctx, func(repos appbooking.TransactionalRepositories) error {
		return repos.IdentityRepo().Save(ctx, record)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("created identity", zap.String("identity_id", record.ID.String()))
	return record, nil
}

// Update edits an identity's names and note
func (s *IdentityService) Update(ctx context.Context, id uuid.UUID, firstName, lastName, note string) (*identity.Identity, error) {
	var record *identity.Identity
	err := s.scope.Execute(ctx, func(repos appbooking.TransactionalRepositories) error {
		var err error
		record, err = repos.IdentityRepo().FindByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to load identity: %w", err)
		}
		if record == nil {
			return shared.ErrNotFound
		}
		if err := record.Update(firstName, lastName, note); err != nil {
			return err
		}
		return repos.IdentityRepo().Save(ctx, record)
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// Get returns an identity with its payment accounts and assignments
func (s *IdentityService) Get(ctx context.Context, id uuid.UUID) (*IdentityDetails, error) {
	var details *IdentityDetails
	err := s.scope.Execute(ctx, func(repos appbooking.TransactionalRepositories) error {
		record, err := repos.IdentityRepo().FindByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to load identity: %w", err)
		}
		if record == nil {
			return shared.ErrNotFound
		}
		accounts, err := repos.AccountRepo().FindByIdentity(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to load accounts: %w", err)
		}
		assignments, err := repos.AssignmentRepo().FindByIdentity(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to load assignments: %w", err)
		}
		details = &IdentityDetails{Identity: *record, Accounts: accounts, Assignments: assignments}
		return nil
	})
	return details, err
}

// List returns all identities ordered by last name
func (s *IdentityService) List(ctx context.Context) ([]identity.Identity, error) {
	var records []identity.Identity
	err := s.scope.Execute(ctx, func(repos appbooking.TransactionalRepositories) error {
		var err error
		records, err = repos.IdentityRepo().FindAll(ctx)
		return err
	})
	return records, err
}

// AddPaymentAccount attaches an external account to an identity. An
// external account name is unique within its service.
func (s *IdentityService) AddPaymentAccount(ctx context.Context, identityID, serviceID uuid.UUID, externalAccount string) (*identity.PaymentAccount, error) {
	var account *identity.PaymentAccount
	err := s.scope.Execute(ctx, func(repos appbooking.TransactionalRepositories) error {
		record, err := repos.IdentityRepo().FindByID(ctx, identityID)
		if err != nil {
			return fmt.Errorf("failed to load identity: %w", err)
		}
		if record == nil {
			return shared.ErrNotFound
		}

		existing, err := repos.AccountRepo().FindByServiceAndExternal(ctx, serviceID, externalAccount)
		if err != nil {
			return fmt.Errorf("failed to check account: %w", err)
		}
		if existing != nil {
			return shared.ErrAlreadyExists
		}

		account, err = identity.NewPaymentAccount(identityID, serviceID, externalAccount)
		if err != nil {
			return err
		}
		return repos.AccountRepo().Save(ctx, account)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("added payment account",
		zap.String("identity_id", identityID.String()),
		zap.String("account", externalAccount))
	return account, nil
}

// AssignSubscription starts a subscription assignment for an identity
func (s *IdentityService) AssignSubscription(ctx context.Context, identityID, subscriptionID uuid.UUID, beginsAt time.Time, endsAt *time.Time) (*identity.SubscriptionAssignment, error) {
	var assignment *identity.SubscriptionAssignment
	err := s.scope.Execute(ctx, func(repos appbooking.TransactionalRepositories) error {
		record, err := repos.IdentityRepo().FindByID(ctx, identityID)
		if err != nil {
			return fmt.Errorf("failed to load identity: %w", err)
		}
		if record == nil {
			return shared.ErrNotFound
		}
		subscription, err := repos.SubscriptionRepo().FindByID(ctx, subscriptionID)
		if err != nil {
			return fmt.Errorf("failed to load subscription: %w", err)
		}
		if subscription == nil {
			return shared.ErrNotFound
		}

		assignment, err = identity.NewSubscriptionAssignment(identityID, subscriptionID, beginsAt, endsAt)
		if err != nil {
			return err
		}
		return repos.AssignmentRepo().Save(ctx, assignment)
	})
	if err != nil {
		return nil, err
	}
	return assignment, nil
}

// EndAssignment closes an open subscription assignment
func (s *IdentityService) EndAssignment(ctx context.Context, assignmentID uuid.UUID, endsAt time.Time) (*identity.SubscriptionAssignment, error) {
	var assignment *identity.SubscriptionAssignment
	err := s.scope.Execute(ctx, func(repos appbooking.TransactionalRepositories) error {
		var err error
		assignment, err = repos.AssignmentRepo().FindByID(ctx, assignmentID)
		if err != nil {
			return fmt.Errorf("failed to load assignment: %w", err)
		}
		if assignment == nil {
			return shared.ErrNotFound
		}
		if err := assignment.End(endsAt); err != nil {
			return err
		}
		return repos.AssignmentRepo().Save(ctx, assignment)
	})
	if err != nil {
		return nil, err
	}
	return assignment, nil
}
