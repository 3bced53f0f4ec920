package payments

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appbooking "github.com/openaccounting/backend/internal/application/booking"
	"github.com/openaccounting/backend/internal/domain/booking"
	"github.com/openaccounting/backend/internal/domain/identity"
	"github.com/openaccounting/backend/internal/domain/shared"
	"github.com/openaccounting/backend/internal/infrastructure/telemetry"
)

// ImportService feeds payment service activity exports into the books.
// Records already present are verified against the stored row instead
// of being written twice; unknown account names become new identities.
type ImportService struct {
	scope   appbooking.TransactionScope
	parsers map[string]ActivityParser
	logger  *zap.Logger
}

// NewImportService creates an ImportService with one parser per payment
// service code.
func NewImportService(scope appbooking.TransactionScope, parsers map[string]ActivityParser, logger *zap.Logger) *ImportService {
	return &ImportService{
		scope:   scope,
		parsers: parsers,
		logger:  logger,
	}
}

// ImportResult summarizes one import run
type ImportResult struct {
	Imported int      `json:"imported"`
	Found    int      `json:"found"`
	Invalid  []string `json:"invalid"`
}

// Import parses an activity export and books every record not yet
// known. The whole run is one transaction: a stored record that
// disagrees with the feed aborts and rolls back the run.
func (s *ImportService) Import(ctx context.Context, serviceCode string, r io.Reader) (*ImportResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment_import", "import")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrServiceCode, serviceCode)

	parser, ok := s.parsers[serviceCode]
	if !ok {
		return nil, shared.NewDomainError("INVALID_INPUT",
			fmt.Sprintf("No importer is registered for service %q", serviceCode))
	}

	records, err := parser.Parse(r)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to parse activity export: %w", err)
	}

	result := &ImportResult{Invalid: []string{}}
	err = s.scope.Execute(ctx, func(repos appbooking.TransactionalRepositories) error {
		service, err := repos.ServiceRepo().FindByCode(ctx, serviceCode)
		if err != nil {
			return fmt.Errorf("failed to load payment service: %w", err)
		}
		if service == nil {
			return shared.ErrNotFound
		}

		for i := range records {
			if err := s.importRecord(ctx, repos, service, records[i], result); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("imported activity export",
		zap.String("service", serviceCode),
		zap.Int("imported", result.Imported),
		zap.Int("found", result.Found),
		zap.Int("invalid", len(result.Invalid)))
	return result, nil
}

func (s *ImportService) importRecord(
	ctx context.Context,
	repos appbooking.TransactionalRepositories,
	service *booking.PaymentService,
	record ParsedPayment,
	result *ImportResult,
) error {
	if strings.TrimSpace(record.SenderName) == "" {
		result.Invalid = append(result.Invalid,
			fmt.Sprintf("Payment %s does not contain a valid sender", record.TransactionCode))
		return nil
	}
	if record.Type == booking.PaymentTypeWithdrawal {
		// A withdrawal moves money to the account holder themselves
		record.ReceiverName = record.SenderName
	}
	if strings.TrimSpace(record.ReceiverName) == "" {
		result.Invalid = append(result.Invalid,
			fmt.Sprintf("Payment %s does not contain a valid receiver", record.TransactionCode))
		return nil
	}

	senderID, err := s.resolveIdentity(ctx, repos, service.ID, record.SenderName)
	if err != nil {
		return err
	}
	receiverID, err := s.resolveIdentity(ctx, repos, service.ID, record.ReceiverName)
	if err != nil {
		return err
	}

	incoming, err := booking.NewPayment(
		record.Type,
		service.ID,
		record.TransactionCode,
		senderID,
		receiverID,
		record.BookedAt,
		record.GrossAmount,
		record.FeeAmount,
		record.Note,
	)
	if err != nil {
		return err
	}

	existing, err := repos.PaymentRepo().FindByTransactionCode(ctx, service.ID, record.TransactionCode)
	if err != nil {
		return fmt.Errorf("failed to check for existing payment: %w", err)
	}
	if existing != nil {
		if !existing.Matches(incoming) {
			return shared.ErrInvariantViolation
		}
		result.Found++
		return nil
	}

	if err := repos.PaymentRepo().Save(ctx, incoming); err != nil {
		return fmt.Errorf("failed to save payment: %w", err)
	}
	result.Imported++
	return nil
}

// resolveIdentity maps an external account name to an identity,
// creating the identity and its payment account on first sight.
func (s *ImportService) resolveIdentity(
	ctx context.Context,
	repos appbooking.TransactionalRepositories,
	serviceID uuid.UUID,
	accountName string,
) (uuid.UUID, error) {
	account, err := repos.AccountRepo().FindByServiceAndExternal(ctx, serviceID, accountName)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to look up payment account: %w", err)
	}
	if account != nil {
		return account.IdentityID, nil
	}

	firstName, lastName := splitAccountName(accountName)
	record, err := identity.NewIdentity(firstName, lastName, "")
	if err != nil {
		return uuid.Nil, err
	}
	if err := repos.IdentityRepo().Save(ctx, record); err != nil {
		return uuid.Nil, fmt.Errorf("failed to create identity: %w", err)
	}

	account, err = identity.NewPaymentAccount(record.ID, serviceID, accountName)
	if err != nil {
		return uuid.Nil, err
	}
	if err := repos.AccountRepo().Save(ctx, account); err != nil {
		return uuid.Nil, fmt.Errorf("failed to create payment account: %w", err)
	}

	s.logger.Info("created identity from activity export",
		zap.String("identity_id", record.ID.String()),
		zap.String("account", accountName))
	return record.ID, nil
}

// splitAccountName treats the last word as the last name and everything
// before it as the first name. Single-word names become last names.
func splitAccountName(name string) (string, string) {
	words := strings.Fields(name)
	if len(words) == 1 {
		return "", words[0]
	}
	return strings.Join(words[:len(words)-1], " "), words[len(words)-1]
}
