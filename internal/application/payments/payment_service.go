package payments

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appbooking "github.com/openaccounting/backend/internal/application/booking"
	"github.com/openaccounting/backend/internal/domain/booking"
	"github.com/openaccounting/backend/internal/domain/shared"
	"github.com/openaccounting/backend/internal/domain/shared/valueobject"
	"github.com/openaccounting/backend/internal/infrastructure/telemetry"
)

// PaymentService creates and queries payments. Imported payments come
// in through the ImportService; this service covers the manually
// entered ones, cash above all.
type PaymentService struct {
	scope    appbooking.TransactionScope
	timeZone *time.Location
	logger   *zap.Logger
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(scope appbooking.TransactionScope, timeZone *time.Location, logger *zap.Logger) *PaymentService {
	return &PaymentService{
		scope:    scope,
		timeZone: timeZone,
		logger:   logger,
	}
}

// ManualPaymentRequest carries the fields of a manually entered payment.
// TransactionCode stays empty for cash payments; the service assigns a
// sequential code from the accounting month's counter.
type ManualPaymentRequest struct {
	Type            booking.PaymentType
	ServiceID       uuid.UUID
	TransactionCode string
	SenderID        uuid.UUID
	ReceiverID      uuid.UUID
	BookedAt        time.Time
	GrossAmount     valueobject.Money
	Note            string
}

// ManualPaymentUpdate carries the editable fields of a manual payment
type ManualPaymentUpdate struct {
	SenderID    uuid.UUID
	ReceiverID  uuid.UUID
	BookedAt    time.Time
	GrossAmount valueobject.Money
	Note        string
}

// PaymentDetails is a payment together with everything settling it
type PaymentDetails struct {
	Payment  booking.Payment       `json:"payment"`
	Items    []booking.Item        `json:"items"`
	Outgoing []booking.PaymentLink `json:"outgoingLinks"`
	Incoming []booking.PaymentLink `json:"incomingLinks"`
	Balance  valueobject.Money     `json:"balance"`
}

// CreateManual books a manually entered payment. Cash payments draw
// their transaction code from the counter of the accounting month the
// booking timestamp falls into, so the month must already exist.
func (s *PaymentService) CreateManual(ctx context.Context, req ManualPaymentRequest) (*booking.Payment, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "create_manual")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrAmount, req.GrossAmount.AmountString())

	var payment *booking.Payment
	err := s.scope.Execute(ctx, func(repos appbooking.TransactionalRepositories) error {
		paymentService, err := repos.ServiceRepo().FindByID(ctx, req.ServiceID)
		if err != nil {
			return fmt.Errorf("failed to load payment service: %w", err)
		}
		if paymentService == nil {
			return shared.ErrNotFound
		}

		code := req.TransactionCode
		if paymentService.IsCash() {
			if code != "" {
				return shared.NewDomainError("INVALID_INPUT",
					"Cash payments get their transaction code assigned, none may be supplied")
			}
			local := req.BookedAt.In(s.timeZone)
			number, err := repos.MonthRepo().IncrementCashCounter(ctx, local.Year(), int(local.Month()))
			if err != nil {
				return fmt.Errorf("failed to draw cash transaction number: %w", err)
			}
			code = booking.CashTransactionCode(local.Year(), int(local.Month()), number)
		} else {
			if code == "" {
				return shared.NewDomainError("INVALID_INPUT", "Transaction code cannot be empty")
			}
			existing, err := repos.PaymentRepo().FindByTransactionCode(ctx, req.ServiceID, code)
			if err != nil {
				return fmt.Errorf("failed to check transaction code: %w", err)
			}
			if existing != nil {
				return shared.ErrAlreadyExists
			}
		}

		payment, err = booking.NewPayment(
			req.Type,
			req.ServiceID,
			code,
			req.SenderID,
			req.ReceiverID,
			req.BookedAt,
			req.GrossAmount,
			valueobject.Zero(req.GrossAmount.Currency()),
			req.Note,
		)
		if err != nil {
			return err
		}
		payment.Manual = true

		return repos.PaymentRepo().Save(ctx, payment)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("created manual payment",
		zap.String("payment_id", payment.ID.String()),
		zap.String("transaction_code", payment.TransactionCode))
	return payment, nil
}

// UpdateManual edits a manually entered payment and recomputes its open
// flag against the changed gross amount.
func (s *PaymentService) UpdateManual(ctx context.Context, paymentID uuid.UUID, update ManualPaymentUpdate) (*booking.Payment, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "update_manual")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrPaymentID, paymentID.String())

	var payment *booking.Payment
	err := s.scope.Execute(ctx, func(repos appbooking.TransactionalRepositories) error {
		var err error
		payment, err = repos.PaymentRepo().FindByID(ctx, paymentID)
		if err != nil {
			return fmt.Errorf("failed to load payment: %w", err)
		}
		if payment == nil {
			return shared.ErrNotFound
		}

		if err := payment.UpdateManualFields(
			update.SenderID, update.ReceiverID, update.BookedAt, update.GrossAmount, update.Note,
		); err != nil {
			return err
		}
		if err := repos.PaymentRepo().SaveWithLock(ctx, payment); err != nil {
			return fmt.Errorf("failed to write payment: %w", err)
		}

		return appbooking.RecomputeOpenStatusIn(ctx, repos, payment)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("updated manual payment", zap.String("payment_id", paymentID.String()))
	return payment, nil
}

// Get returns a payment with its associated items, its links in both
// directions and the resulting open balance.
func (s *PaymentService) Get(ctx context.Context, paymentID uuid.UUID) (*PaymentDetails, error) {
	var details *PaymentDetails
	err := s.scope.Execute(ctx, func(repos appbooking.TransactionalRepositories) error {
		payment, err := repos.PaymentRepo().FindByID(ctx, paymentID)
		if err != nil {
			return fmt.Errorf("failed to load payment: %w", err)
		}
		if payment == nil {
			return shared.ErrNotFound
		}

		items, err := repos.AssociationRepo().FindItemsForPayment(ctx, paymentID)
		if err != nil {
			return fmt.Errorf("failed to load associated items: %w", err)
		}
		outgoing, err := repos.AssociationRepo().FindOutgoingLinks(ctx, paymentID)
		if err != nil {
			return fmt.Errorf("failed to load outgoing links: %w", err)
		}
		incoming, err := repos.AssociationRepo().FindIncomingLinks(ctx, paymentID)
		if err != nil {
			return fmt.Errorf("failed to load incoming links: %w", err)
		}

		balance, err := booking.ComputeBalance(payment, items, outgoing)
		if err != nil {
			return err
		}

		details = &PaymentDetails{
			Payment:  *payment,
			Items:    items,
			Outgoing: outgoing,
			Incoming: incoming,
			Balance:  balance,
		}
		return nil
	})
	return details, err
}

// ListByRange returns the payments booked inside [start, end)
func (s *PaymentService) ListByRange(ctx context.Context, start, end time.Time) ([]booking.Payment, error) {
	var result []booking.Payment
	err := s.scope.Execute(ctx, func(repos appbooking.TransactionalRepositories) error {
		var err error
		result, err = repos.PaymentRepo().FindByRange(ctx, start, end)
		return err
	})
	return result, err
}

// ListOpen returns every payment whose balance is not settled
func (s *PaymentService) ListOpen(ctx context.Context) ([]booking.Payment, error) {
	var result []booking.Payment
	err := s.scope.Execute(ctx, func(repos appbooking.TransactionalRepositories) error {
		var err error
		result, err = repos.PaymentRepo().FindOpen(ctx)
		return err
	})
	return result, err
}

// ListClosed returns every settled payment
func (s *PaymentService) ListClosed(ctx context.Context) ([]booking.Payment, error) {
	var result []booking.Payment
	err := s.scope.Execute(ctx, func(repos appbooking.TransactionalRepositories) error {
		var err error
		result, err = repos.PaymentRepo().FindClosed(ctx)
		return err
	})
	return result, err
}

// Services returns the configured payment services
func (s *PaymentService) Services(ctx context.Context) ([]booking.PaymentService, error) {
	var result []booking.PaymentService
	err := s.scope.Execute(ctx, func(repos appbooking.TransactionalRepositories) error {
		var err error
		result, err = repos.ServiceRepo().FindAll(ctx)
		return err
	})
	return result, err
}

// ServiceByCode returns the payment service with the given code
func (s *PaymentService) ServiceByCode(ctx context.Context, code string) (*booking.PaymentService, error) {
	var result *booking.PaymentService
	err := s.scope.Execute(ctx, func(repos appbooking.TransactionalRepositories) error {
		var err error
		result, err = repos.ServiceRepo().FindByCode(ctx, code)
		if err != nil {
			return err
		}
		if result == nil {
			return shared.ErrNotFound
		}
		return nil
	})
	return result, err
}
