package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/openaccounting/backend/internal/domain/booking"
	"gorm.io/gorm"
)

// GormAssociationRepository implements AssociationRepository using GORM
type GormAssociationRepository struct {
	db *gorm.DB
}

// NewGormAssociationRepository creates a new GormAssociationRepository
func NewGormAssociationRepository(db *gorm.DB) *GormAssociationRepository {
	return &GormAssociationRepository{db: db}
}

// CreateItemAssociation persists a payment-item edge
func (r *GormAssociationRepository) CreateItemAssociation(ctx context.Context, assoc *booking.PaymentItemAssociation) error {
	return r.db.WithContext(ctx).Create(assoc).Error
}

// FindItemsForPayment returns the items associated with a payment.
// The join yields one row per edge, so duplicate edges stay duplicated.
func (r *GormAssociationRepository) FindItemsForPayment(ctx context.Context, paymentID uuid.UUID) ([]booking.Item, error) {
	var items []booking.Item
	if err := r.db.WithContext(ctx).
		Table("payment_item_associations").
		Select("items.*").
		Joins("JOIN items ON items.id = payment_item_associations.item_id").
		Where("payment_item_associations.payment_id = ?", paymentID).
		Order("payment_item_associations.created_at").
		Scan(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// FindPaymentIDsForItem returns the ids of payments associated with an item
func (r *GormAssociationRepository) FindPaymentIDsForItem(ctx context.Context, itemID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&booking.PaymentItemAssociation{}).
		Where("item_id = ?", itemID).
		Order("created_at").
		Pluck("payment_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// CreateLink persists a directed payment-payment link
func (r *GormAssociationRepository) CreateLink(ctx context.Context, link *booking.PaymentLink) error {
	return r.db.WithContext(ctx).Create(link).Error
}

// FindOutgoingLinks returns links where the payment is the source
func (r *GormAssociationRepository) FindOutgoingLinks(ctx context.Context, paymentID uuid.UUID) ([]booking.PaymentLink, error) {
	var links []booking.PaymentLink
	if err := r.db.WithContext(ctx).
		Where("source_payment_id = ?", paymentID).
		Order("created_at").
		Find(&links).Error; err != nil {
		return nil, err
	}
	return links, nil
}

// FindIncomingLinks returns links where the payment is the target
func (r *GormAssociationRepository) FindIncomingLinks(ctx context.Context, paymentID uuid.UUID) ([]booking.PaymentLink, error) {
	var links []booking.PaymentLink
	if err := r.db.WithContext(ctx).
		Where("target_payment_id = ?", paymentID).
		Order("created_at").
		Find(&links).Error; err != nil {
		return nil, err
	}
	return links, nil
}

// Ensure GormAssociationRepository implements AssociationRepository
var _ booking.AssociationRepository = (*GormAssociationRepository)(nil)
