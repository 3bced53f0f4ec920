package persistence

import (
	"context"

	appbooking "github.com/openaccounting/backend/internal/application/booking"
	"github.com/openaccounting/backend/internal/domain/booking"
	"github.com/openaccounting/backend/internal/domain/catalog"
	"github.com/openaccounting/backend/internal/domain/identity"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// It provides atomic execution of multiple repository operations.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appbooking.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// gormTransactionalRepositories provides access to all repositories within a transaction
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// PaymentRepo returns the payment repository scoped to the current transaction
func (r *gormTransactionalRepositories) PaymentRepo() booking.PaymentRepository {
	return NewGormPaymentRepository(r.tx)
}

// ItemRepo returns the item repository scoped to the current transaction
func (r *gormTransactionalRepositories) ItemRepo() booking.ItemRepository {
	return NewGormItemRepository(r.tx)
}

// AssociationRepo returns the association repository scoped to the current transaction
func (r *gormTransactionalRepositories) AssociationRepo() booking.AssociationRepository {
	return NewGormAssociationRepository(r.tx)
}

// MonthRepo returns the accounting month repository scoped to the current transaction
func (r *gormTransactionalRepositories) MonthRepo() booking.AccountingMonthRepository {
	return NewGormAccountingMonthRepository(r.tx)
}

// ServiceRepo returns the payment service repository scoped to the current transaction
func (r *gormTransactionalRepositories) ServiceRepo() booking.PaymentServiceRepository {
	return NewGormPaymentServiceRepository(r.tx)
}

// IdentityRepo returns the identity repository scoped to the current transaction
func (r *gormTransactionalRepositories) IdentityRepo() identity.IdentityRepository {
	return NewGormIdentityRepository(r.tx)
}

// AccountRepo returns the payment account repository scoped to the current transaction
func (r *gormTransactionalRepositories) AccountRepo() identity.PaymentAccountRepository {
	return NewGormPaymentAccountRepository(r.tx)
}

// AssignmentRepo returns the subscription assignment repository scoped to the current transaction
func (r *gormTransactionalRepositories) AssignmentRepo() identity.SubscriptionAssignmentRepository {
	return NewGormSubscriptionAssignmentRepository(r.tx)
}

// SubscriptionRepo returns the subscription repository scoped to the current transaction
func (r *gormTransactionalRepositories) SubscriptionRepo() catalog.SubscriptionRepository {
	return NewGormSubscriptionRepository(r.tx)
}

// ProductRepo returns the product repository scoped to the current transaction
func (r *gormTransactionalRepositories) ProductRepo() catalog.ProductRepository {
	return NewGormProductRepository(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ appbooking.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ appbooking.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
