package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/openaccounting/backend/internal/domain/identity"
	"gorm.io/gorm"
)

// GormIdentityRepository implements IdentityRepository using GORM
type GormIdentityRepository struct {
	db *gorm.DB
}

// NewGormIdentityRepository creates a new GormIdentityRepository
func NewGormIdentityRepository(db *gorm.DB) *GormIdentityRepository {
	return &GormIdentityRepository{db: db}
}

// FindByID finds an identity by its ID, nil when it does not exist
func (r *GormIdentityRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Identity, error) {
	var record identity.Identity
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// FindAll returns all identities ordered by last name
func (r *GormIdentityRepository) FindAll(ctx context.Context) ([]identity.Identity, error) {
	var records []identity.Identity
	if err := r.db.WithContext(ctx).
		Order("last_name, first_name").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// Save creates or updates an identity
func (r *GormIdentityRepository) Save(ctx context.Context, record *identity.Identity) error {
	return r.db.WithContext(ctx).Save(record).Error
}

// GormPaymentAccountRepository implements PaymentAccountRepository using GORM
type GormPaymentAccountRepository struct {
	db *gorm.DB
}

// NewGormPaymentAccountRepository creates a new GormPaymentAccountRepository
func NewGormPaymentAccountRepository(db *gorm.DB) *GormPaymentAccountRepository {
	return &GormPaymentAccountRepository{db: db}
}

// FindByID finds a payment account by its ID, nil when it does not exist
func (r *GormPaymentAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.PaymentAccount, error) {
	var account identity.PaymentAccount
	if err := r.db.WithContext(ctx).First(&account, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

// FindByServiceAndExternal finds the account identified by an external
// account string within one service
func (r *GormPaymentAccountRepository) FindByServiceAndExternal(ctx context.Context, serviceID uuid.UUID, externalAccount string) (*identity.PaymentAccount, error) {
	var account identity.PaymentAccount
	if err := r.db.WithContext(ctx).
		Where("service_id = ? AND external_account = ?", serviceID, externalAccount).
		First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

// FindByIdentity returns the accounts of an identity
func (r *GormPaymentAccountRepository) FindByIdentity(ctx context.Context, identityID uuid.UUID) ([]identity.PaymentAccount, error) {
	var accounts []identity.PaymentAccount
	if err := r.db.WithContext(ctx).
		Where("identity_id = ?", identityID).
		Order("external_account").
		Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

// Save creates or updates a payment account
func (r *GormPaymentAccountRepository) Save(ctx context.Context, account *identity.PaymentAccount) error {
	return r.db.WithContext(ctx).Save(account).Error
}

// GormSubscriptionAssignmentRepository implements SubscriptionAssignmentRepository using GORM
type GormSubscriptionAssignmentRepository struct {
	db *gorm.DB
}

// NewGormSubscriptionAssignmentRepository creates a new GormSubscriptionAssignmentRepository
func NewGormSubscriptionAssignmentRepository(db *gorm.DB) *GormSubscriptionAssignmentRepository {
	return &GormSubscriptionAssignmentRepository{db: db}
}

// FindByID finds an assignment by its ID, nil when it does not exist
func (r *GormSubscriptionAssignmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.SubscriptionAssignment, error) {
	var assignment identity.SubscriptionAssignment
	if err := r.db.WithContext(ctx).First(&assignment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &assignment, nil
}

// FindByIdentity returns the assignments of an identity
func (r *GormSubscriptionAssignmentRepository) FindByIdentity(ctx context.Context, identityID uuid.UUID) ([]identity.SubscriptionAssignment, error) {
	var assignments []identity.SubscriptionAssignment
	if err := r.db.WithContext(ctx).
		Where("identity_id = ?", identityID).
		Order("begins_at").
		Find(&assignments).Error; err != nil {
		return nil, err
	}
	return assignments, nil
}

// FindActiveAt returns the assignments covering the month that starts at
// the given instant
func (r *GormSubscriptionAssignmentRepository) FindActiveAt(ctx context.Context, monthStart time.Time) ([]identity.SubscriptionAssignment, error) {
	var assignments []identity.SubscriptionAssignment
	if err := r.db.WithContext(ctx).
		Where("begins_at <= ? AND (ends_at IS NULL OR ends_at >= ?)", monthStart, monthStart).
		Order("begins_at").
		Find(&assignments).Error; err != nil {
		return nil, err
	}
	return assignments, nil
}

// Save creates or updates an assignment
func (r *GormSubscriptionAssignmentRepository) Save(ctx context.Context, assignment *identity.SubscriptionAssignment) error {
	return r.db.WithContext(ctx).Save(assignment).Error
}

// Ensure the repositories implement their interfaces
var (
	_ identity.IdentityRepository               = (*GormIdentityRepository)(nil)
	_ identity.PaymentAccountRepository         = (*GormPaymentAccountRepository)(nil)
	_ identity.SubscriptionAssignmentRepository = (*GormSubscriptionAssignmentRepository)(nil)
)
