package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/openaccounting/backend/internal/domain/booking"
	"github.com/openaccounting/backend/internal/domain/shared"
	"github.com/openaccounting/backend/internal/domain/shared/valueobject"
	"github.com/openaccounting/backend/internal/infrastructure/telemetry"
)

// ItemService creates and queries billable items
type ItemService struct {
	scope  TransactionScope
	logger *zap.Logger
}

// NewItemService creates a new ItemService
func NewItemService(scope TransactionScope, logger *zap.Logger) *ItemService {
	return &ItemService{scope: scope, logger: logger}
}

// ItemDetails is an item together with the payments settling it
type ItemDetails struct {
	Item       booking.Item `json:"item"`
	PaymentIDs []uuid.UUID  `json:"paymentIds"`
}

// CreateManual books a free-form sale with an explicit amount
func (s *ItemService) CreateManual(ctx context.Context, debtorID uuid.UUID, bookedAt time.Time, amount valueobject.Money, note string) (*booking.Item, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "item", "create_manual")
	defer span.End()

	item, err := booking.NewItem(debtorID, bookedAt, amount, note)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.saveNew(ctx, item); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return item, nil
}

// CreateProductSale books a sale of a catalog product at its current price
func (s *ItemService) CreateProductSale(ctx context.Context, debtorID, productID uuid.UUID, bookedAt time.Time, note string) (*booking.Item, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "item", "create_product_sale")
	defer span.End()

	var item *booking.Item
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		product, err := repos.ProductRepo().FindByID(ctx, productID)
		if err != nil {
			return fmt.Errorf("failed to load product: %w", err)
		}
		if product == nil {
			return shared.ErrNotFound
		}

		item, err = booking.NewProductItem(debtorID, productID, bookedAt, product.PriceMoney(), note)
		if err != nil {
			return err
		}
		return repos.ItemRepo().Save(ctx, item)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("created product sale item",
		zap.String("item_id", item.ID.String()),
		zap.String("product_id", productID.String()))
	return item, nil
}

// CreateSubscriptionSale books a single subscription due outside the
// regular month creation, at the subscription's current price.
func (s *ItemService) CreateSubscriptionSale(ctx context.Context, debtorID, subscriptionID uuid.UUID, bookedAt time.Time) (*booking.Item, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "item", "create_subscription_sale")
	defer span.End()

	var item *booking.Item
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		subscription, err := repos.SubscriptionRepo().FindByID(ctx, subscriptionID)
		if err != nil {
			return fmt.Errorf("failed to load subscription: %w", err)
		}
		if subscription == nil {
			return shared.ErrNotFound
		}

		item, err = booking.NewSubscriptionItem(debtorID, subscriptionID, bookedAt, subscription.PriceMoney(), subscription.Name)
		if err != nil {
			return err
		}
		return repos.ItemRepo().Save(ctx, item)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("created subscription sale item",
		zap.String("item_id", item.ID.String()),
		zap.String("subscription_id", subscriptionID.String()))
	return item, nil
}

// Get returns an item together with the ids of the payments associated
// with it
func (s *ItemService) Get(ctx context.Context, itemID uuid.UUID) (*ItemDetails, error) {
	var details *ItemDetails
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		item, err := repos.ItemRepo().FindByID(ctx, itemID)
		if err != nil {
			return fmt.Errorf("failed to load item: %w", err)
		}
		if item == nil {
			return shared.ErrNotFound
		}

		paymentIDs, err := repos.AssociationRepo().FindPaymentIDsForItem(ctx, itemID)
		if err != nil {
			return fmt.Errorf("failed to load associated payments: %w", err)
		}

		details = &ItemDetails{Item: *item, PaymentIDs: paymentIDs}
		return nil
	})
	return details, err
}

// ListByRange returns the items booked inside [start, end)
func (s *ItemService) ListByRange(ctx context.Context, start, end time.Time) ([]booking.Item, error) {
	var items []booking.Item
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		items, err = repos.ItemRepo().FindByRange(ctx, start, end)
		return err
	})
	return items, err
}

// ListOpen returns every item that has not been settled yet
func (s *ItemService) ListOpen(ctx context.Context) ([]booking.Item, error) {
	var items []booking.Item
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		items, err = repos.ItemRepo().FindOpen(ctx)
		return err
	})
	return items, err
}

func (s *ItemService) saveNew(ctx context.Context, item *booking.Item) error {
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		return repos.ItemRepo().Save(ctx, item)
	})
	if err != nil {
		return err
	}
	s.logger.Info("created item",
		zap.String("item_id", item.ID.String()),
		zap.String("amount", item.AmountMoney().String()))
	return nil
}
