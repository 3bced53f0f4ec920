package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/openaccounting/backend/internal/domain/booking"
	"github.com/openaccounting/backend/internal/domain/shared"
	"github.com/openaccounting/backend/internal/infrastructure/telemetry"
)

// AccountingMonthService drives the month lifecycle: creation with
// subscription billing, the lock precondition checks, and the cash
// transaction counter.
type AccountingMonthService struct {
	scope    TransactionScope
	timeZone *time.Location
	logger   *zap.Logger
}

// NewAccountingMonthService creates a new AccountingMonthService. The
// time zone is the organization's booking time zone; month boundaries
// are computed in it.
func NewAccountingMonthService(scope TransactionScope, timeZone *time.Location, logger *zap.Logger) *AccountingMonthService {
	return &AccountingMonthService{
		scope:    scope,
		timeZone: timeZone,
		logger:   logger,
	}
}

// MonthKey is a (year, month) pair
type MonthKey struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// Create opens a new accounting month and materializes one open item
// per subscription assignment active in it, dated at the month's first
// instant and priced at the subscription's current price.
func (s *AccountingMonthService) Create(ctx context.Context, year, month int) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "accounting_month", "create")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrAccountingYear, year,
		telemetry.SpanAttrAccountingMon, month,
	)

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		existing, err := repos.MonthRepo().FindByKey(ctx, year, month)
		if err != nil {
			return fmt.Errorf("failed to check month: %w", err)
		}
		if existing != nil {
			return shared.ErrAlreadyExists
		}

		newMonth, err := booking.NewAccountingMonth(year, month)
		if err != nil {
			return err
		}
		monthStart, _ := newMonth.Range(s.timeZone)

		assignments, err := repos.AssignmentRepo().FindActiveAt(ctx, monthStart)
		if err != nil {
			return fmt.Errorf("failed to load assignments: %w", err)
		}

		for i := range assignments {
			subscription, err := repos.SubscriptionRepo().FindByID(ctx, assignments[i].SubscriptionID)
			if err != nil {
				return fmt.Errorf("failed to load subscription: %w", err)
			}
			if subscription == nil {
				return shared.ErrNotFound
			}

			item, err := booking.NewSubscriptionItem(
				assignments[i].IdentityID,
				subscription.ID,
				monthStart,
				subscription.PriceMoney(),
				subscription.Name,
			)
			if err != nil {
				return err
			}
			if err := repos.ItemRepo().Save(ctx, item); err != nil {
				return fmt.Errorf("failed to create subscription item: %w", err)
			}
		}

		if err := repos.MonthRepo().Save(ctx, newMonth); err != nil {
			return fmt.Errorf("failed to create month: %w", err)
		}

		s.logger.Info("created accounting month",
			zap.Int("year", year), zap.Int("month", month),
			zap.Int("billed_subscriptions", len(assignments)))
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
	}
	return err
}

// SetLockStatus locks or unlocks a month. Locking re-verifies at lock
// time that no item and no payment booked inside the month is still
// open; unlocking is unconditional. Months can toggle indefinitely.
func (s *AccountingMonthService) SetLockStatus(ctx context.Context, year, month int, locked bool) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "accounting_month", "set_lock_status")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrAccountingYear, year,
		telemetry.SpanAttrAccountingMon, month,
		"locked", locked,
	)

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		record, err := repos.MonthRepo().FindByKey(ctx, year, month)
		if err != nil {
			return fmt.Errorf("failed to load month: %w", err)
		}
		if record == nil {
			return shared.ErrNotFound
		}

		if locked {
			start, end := record.Range(s.timeZone)

			openItems, err := repos.ItemRepo().FindOpenInRange(ctx, start, end)
			if err != nil {
				return fmt.Errorf("failed to scan open items: %w", err)
			}
			if len(openItems) > 0 {
				return booking.NewOpenItemsError(itemIDs(openItems))
			}

			openPayments, err := repos.PaymentRepo().FindOpenInRange(ctx, start, end)
			if err != nil {
				return fmt.Errorf("failed to scan open payments: %w", err)
			}
			if len(openPayments) > 0 {
				return booking.NewOpenPaymentsError(paymentIDs(openPayments))
			}
		}

		record.SetOpen(!locked)
		if err := repos.MonthRepo().Save(ctx, record); err != nil {
			return fmt.Errorf("failed to write month: %w", err)
		}

		s.logger.Info("changed month lock status",
			zap.Int("year", year), zap.Int("month", month), zap.Bool("locked", locked))
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
	}
	return err
}

// List returns all accounting months
func (s *AccountingMonthService) List(ctx context.Context) ([]booking.AccountingMonth, error) {
	var months []booking.AccountingMonth
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		months, err = repos.MonthRepo().FindAll(ctx)
		return err
	})
	return months, err
}

// Years returns the years that have at least one accounting month
func (s *AccountingMonthService) Years(ctx context.Context) ([]int, error) {
	var years []int
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		years, err = repos.MonthRepo().FindYears(ctx)
		return err
	})
	return years, err
}

// MonthsOfYear returns the months created in a year
func (s *AccountingMonthService) MonthsOfYear(ctx context.Context, year int) ([]booking.AccountingMonth, error) {
	var months []booking.AccountingMonth
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		months, err = repos.MonthRepo().FindByYear(ctx, year)
		return err
	})
	return months, err
}

// Last returns the most recent accounting month, falling back to the
// current calendar month in the booking time zone when none exist yet.
func (s *AccountingMonthService) Last(ctx context.Context) (MonthKey, error) {
	last, err := s.findLast(ctx)
	if err != nil {
		return MonthKey{}, err
	}
	if last == nil {
		now := time.Now().In(s.timeZone)
		return MonthKey{Year: now.Year(), Month: int(now.Month())}, nil
	}
	return MonthKey{Year: last.Year, Month: last.Month}, nil
}

// Next returns the month following the most recent one, the key a
// caller would pass to Create next.
func (s *AccountingMonthService) Next(ctx context.Context) (MonthKey, error) {
	last, err := s.findLast(ctx)
	if err != nil {
		return MonthKey{}, err
	}
	if last == nil {
		now := time.Now().In(s.timeZone)
		return MonthKey{Year: now.Year(), Month: int(now.Month())}, nil
	}
	year, month := last.Next()
	return MonthKey{Year: year, Month: month}, nil
}

// FindMonthOf returns the (year, month) key the given instant belongs
// to under the booking time zone.
func (s *AccountingMonthService) FindMonthOf(at time.Time) MonthKey {
	local := at.In(s.timeZone)
	return MonthKey{Year: local.Year(), Month: int(local.Month())}
}

// NextCashTransactionNumber atomically increments the cash transaction
// counter of a month and returns the new value.
func (s *AccountingMonthService) NextCashTransactionNumber(ctx context.Context, year, month int) (int, error) {
	var number int
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		number, err = repos.MonthRepo().IncrementCashCounter(ctx, year, month)
		return err
	})
	return number, err
}

func (s *AccountingMonthService) findLast(ctx context.Context) (*booking.AccountingMonth, error) {
	var last *booking.AccountingMonth
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		last, err = repos.MonthRepo().FindLast(ctx)
		return err
	})
	return last, err
}

func itemIDs(items []booking.Item) []uuid.UUID {
	ids := make([]uuid.UUID, len(items))
	for i := range items {
		ids[i] = items[i].ID
	}
	return ids
}

func paymentIDs(payments []booking.Payment) []uuid.UUID {
	ids := make([]uuid.UUID, len(payments))
	for i := range payments {
		ids[i] = payments[i].ID
	}
	return ids
}
