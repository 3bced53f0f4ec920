package booking

import (
	"context"

	"github.com/openaccounting/backend/internal/domain/booking"
	"github.com/openaccounting/backend/internal/domain/catalog"
	"github.com/openaccounting/backend/internal/domain/identity"
)

// TransactionScope provides transactional access to the bookkeeping
// repositories. When a function is executed within a transaction scope,
// all repository operations are part of the same database transaction
// and commit or roll back atomically. Every reconcile-then-write
// sequence and the cash counter increment run through it.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to all bookkeeping
// repositories within one transaction.
type TransactionalRepositories interface {
	// PaymentRepo returns the payment repository scoped to the current transaction
	PaymentRepo() booking.PaymentRepository
	// ItemRepo returns the item repository scoped to the current transaction
	ItemRepo() booking.ItemRepository
	// AssociationRepo returns the association repository scoped to the current transaction
	AssociationRepo() booking.AssociationRepository
	// MonthRepo returns the accounting month repository scoped to the current transaction
	MonthRepo() booking.AccountingMonthRepository
	// ServiceRepo returns the payment service repository scoped to the current transaction
	ServiceRepo() booking.PaymentServiceRepository
	// IdentityRepo returns the identity repository scoped to the current transaction
	IdentityRepo() identity.IdentityRepository
	// AccountRepo returns the payment account repository scoped to the current transaction
	AccountRepo() identity.PaymentAccountRepository
	// AssignmentRepo returns the subscription assignment repository scoped to the current transaction
	AssignmentRepo() identity.SubscriptionAssignmentRepository
	// SubscriptionRepo returns the subscription repository scoped to the current transaction
	SubscriptionRepo() catalog.SubscriptionRepository
	// ProductRepo returns the product repository scoped to the current transaction
	ProductRepo() catalog.ProductRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. Useful for tests and for wiring against stores that
// handle atomicity themselves.
type NoOpTransactionScope struct {
	paymentRepo      booking.PaymentRepository
	itemRepo         booking.ItemRepository
	associationRepo  booking.AssociationRepository
	monthRepo        booking.AccountingMonthRepository
	serviceRepo      booking.PaymentServiceRepository
	identityRepo     identity.IdentityRepository
	accountRepo      identity.PaymentAccountRepository
	assignmentRepo   identity.SubscriptionAssignmentRepository
	subscriptionRepo catalog.SubscriptionRepository
	productRepo      catalog.ProductRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope over the given repositories.
func NewNoOpTransactionScope(
	paymentRepo booking.PaymentRepository,
	itemRepo booking.ItemRepository,
	associationRepo booking.AssociationRepository,
	monthRepo booking.AccountingMonthRepository,
	serviceRepo booking.PaymentServiceRepository,
	identityRepo identity.IdentityRepository,
	accountRepo identity.PaymentAccountRepository,
	assignmentRepo identity.SubscriptionAssignmentRepository,
	subscriptionRepo catalog.SubscriptionRepository,
	productRepo catalog.ProductRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		paymentRepo:      paymentRepo,
		itemRepo:         itemRepo,
		associationRepo:  associationRepo,
		monthRepo:        monthRepo,
		serviceRepo:      serviceRepo,
		identityRepo:     identityRepo,
		accountRepo:      accountRepo,
		assignmentRepo:   assignmentRepo,
		subscriptionRepo: subscriptionRepo,
		productRepo:      productRepo,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// PaymentRepo returns the payment repository.
func (s *NoOpTransactionScope) PaymentRepo() booking.PaymentRepository { return s.paymentRepo }

// ItemRepo returns the item repository.
func (s *NoOpTransactionScope) ItemRepo() booking.ItemRepository { return s.itemRepo }

// AssociationRepo returns the association repository.
func (s *NoOpTransactionScope) AssociationRepo() booking.AssociationRepository {
	return s.associationRepo
}

// MonthRepo returns the accounting month repository.
func (s *NoOpTransactionScope) MonthRepo() booking.AccountingMonthRepository { return s.monthRepo }

// ServiceRepo returns the payment service repository.
func (s *NoOpTransactionScope) ServiceRepo() booking.PaymentServiceRepository { return s.serviceRepo }

// IdentityRepo returns the identity repository.
func (s *NoOpTransactionScope) IdentityRepo() identity.IdentityRepository { return s.identityRepo }

// AccountRepo returns the payment account repository.
func (s *NoOpTransactionScope) AccountRepo() identity.PaymentAccountRepository {
	return s.accountRepo
}

// AssignmentRepo returns the subscription assignment repository.
func (s *NoOpTransactionScope) AssignmentRepo() identity.SubscriptionAssignmentRepository {
	return s.assignmentRepo
}

// SubscriptionRepo returns the subscription repository.
func (s *NoOpTransactionScope) SubscriptionRepo() catalog.SubscriptionRepository {
	return s.subscriptionRepo
}

// ProductRepo returns the product repository.
func (s *NoOpTransactionScope) ProductRepo() catalog.ProductRepository {
	return s.productRepo
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
