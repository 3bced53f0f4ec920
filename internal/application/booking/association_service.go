package booking

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/openaccounting/backend/internal/domain/booking"
	"github.com/openaccounting/backend/internal/domain/shared"
	"github.com/openaccounting/backend/internal/domain/shared/valueobject"
	"github.com/openaccounting/backend/internal/infrastructure/telemetry"
)

// AssociationService maintains the settlement edges between payments
// and items and the derived open flags. Every mutation runs its whole
// read-compute-write sequence in one transaction.
type AssociationService struct {
	scope  TransactionScope
	logger *zap.Logger
}

// NewAssociationService creates a new AssociationService
func NewAssociationService(scope TransactionScope, logger *zap.Logger) *AssociationService {
	return &AssociationService{
		scope:  scope,
		logger: logger,
	}
}

// LinkRequest describes a directed link from one payment to another
type LinkRequest struct {
	TargetPaymentID uuid.UUID
	Amount          valueobject.Money
	Reason          booking.LinkReason
}

// AssociateItem attaches an item to a payment. The item closes
// unconditionally the moment the edge exists; the payment's open flag
// follows from its recomputed balance.
func (s *AssociationService) AssociateItem(ctx context.Context, paymentID, itemID uuid.UUID) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment_association", "associate_item")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrPaymentID, paymentID.String(),
		telemetry.SpanAttrItemID, itemID.String(),
	)

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		payment, err := repos.PaymentRepo().FindByID(ctx, paymentID)
		if err != nil {
			return fmt.Errorf("failed to load payment: %w", err)
		}
		if payment == nil {
			return shared.ErrNotFound
		}

		item, err := repos.ItemRepo().FindByID(ctx, itemID)
		if err != nil {
			return fmt.Errorf("failed to load item: %w", err)
		}
		if item == nil {
			return shared.ErrNotFound
		}

		assoc := booking.NewPaymentItemAssociation(paymentID, itemID)
		if err := repos.AssociationRepo().CreateItemAssociation(ctx, assoc); err != nil {
			return fmt.Errorf("failed to create association: %w", err)
		}

		item.Close()
		if err := repos.ItemRepo().Save(ctx, item); err != nil {
			return fmt.Errorf("failed to close item: %w", err)
		}

		return RecomputeOpenStatusIn(ctx, repos, payment)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	s.logger.Info("associated item with payment",
		zap.String("payment_id", paymentID.String()),
		zap.String("item_id", itemID.String()))
	return nil
}

// LinkPayments creates a directed link from a payment to another and
// recomputes both endpoints independently.
func (s *AssociationService) LinkPayments(ctx context.Context, paymentID uuid.UUID, req LinkRequest) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment_association", "link_payments")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrPaymentID, paymentID.String(),
		"target_payment_id", req.TargetPaymentID.String(),
		telemetry.SpanAttrAmount, req.Amount.AmountString(),
	)

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		source, err := repos.PaymentRepo().FindByID(ctx, paymentID)
		if err != nil {
			return fmt.Errorf("failed to load source payment: %w", err)
		}
		if source == nil {
			return shared.ErrNotFound
		}

		target, err := repos.PaymentRepo().FindByID(ctx, req.TargetPaymentID)
		if err != nil {
			return fmt.Errorf("failed to load target payment: %w", err)
		}
		if target == nil {
			return shared.ErrNotFound
		}

		link, err := booking.NewPaymentLink(paymentID, req.TargetPaymentID, req.Amount, req.Reason)
		if err != nil {
			return err
		}
		if err := repos.AssociationRepo().CreateLink(ctx, link); err != nil {
			return fmt.Errorf("failed to create link: %w", err)
		}

		if err := RecomputeOpenStatusIn(ctx, repos, source); err != nil {
			return err
		}
		return RecomputeOpenStatusIn(ctx, repos, target)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	s.logger.Info("linked payments",
		zap.String("source_id", paymentID.String()),
		zap.String("target_id", req.TargetPaymentID.String()),
		zap.String("reason", string(req.Reason)))
	return nil
}

// RecomputeOpenStatus reloads a payment's associations and rewrites its
// open flag inside a fresh transaction.
func (s *AssociationService) RecomputeOpenStatus(ctx context.Context, paymentID uuid.UUID) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment_association", "recompute_open_status")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrPaymentID, paymentID.String())

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		payment, err := repos.PaymentRepo().FindByID(ctx, paymentID)
		if err != nil {
			return fmt.Errorf("failed to load payment: %w", err)
		}
		if payment == nil {
			return shared.ErrNotFound
		}
		return RecomputeOpenStatusIn(ctx, repos, payment)
	})
	if err != nil {
		telemetry.RecordError(span, err)
	}
	return err
}

// RecomputeOpenStatusIn recomputes a payment's open flag using the
// repositories of the surrounding transaction. The payment row is only
// written when the flag changes, and then with an optimistic version
// check so a concurrent reconciliation surfaces as a conflict instead
// of a silent lost update.
func RecomputeOpenStatusIn(ctx context.Context, repos TransactionalRepositories, payment *booking.Payment) error {
	items, err := repos.AssociationRepo().FindItemsForPayment(ctx, payment.ID)
	if err != nil {
		return fmt.Errorf("failed to load associated items: %w", err)
	}
	links, err := repos.AssociationRepo().FindOutgoingLinks(ctx, payment.ID)
	if err != nil {
		return fmt.Errorf("failed to load outgoing links: %w", err)
	}

	balance, err := booking.ComputeBalance(payment, items, links)
	if err != nil {
		return err
	}

	open := !booking.IsSettled(balance)
	if open == payment.IsOpen {
		return nil
	}

	payment.SetOpen(open)
	if err := repos.PaymentRepo().SaveWithLock(ctx, payment); err != nil {
		return fmt.Errorf("failed to write open flag: %w", err)
	}
	return nil
}
