package reporting

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appbooking "github.com/openaccounting/backend/internal/application/booking"
	"github.com/openaccounting/backend/internal/domain/booking"
	"github.com/openaccounting/backend/internal/domain/shared"
	"github.com/openaccounting/backend/internal/domain/shared/valueobject"
	"github.com/openaccounting/backend/internal/infrastructure/telemetry"
)

// DistributionService reports where the settled money currently sits:
// per identity holding it and per payment service it sits in.
type DistributionService struct {
	scope  appbooking.TransactionScope
	logger *zap.Logger
}

// NewDistributionService creates a new DistributionService
func NewDistributionService(scope appbooking.TransactionScope, logger *zap.Logger) *DistributionService {
	return &DistributionService{scope: scope, logger: logger}
}

// DistributionEntry is one bucket of the money distribution
type DistributionEntry struct {
	IdentityID   uuid.UUID         `json:"identityId"`
	IdentityName string            `json:"identityName"`
	ServiceID    uuid.UUID         `json:"serviceId"`
	ServiceCode  string            `json:"serviceCode"`
	Amount       valueobject.Money `json:"amount"`
}

type bucketKey struct {
	identityID uuid.UUID
	serviceID  uuid.UUID
}

// Distribution accumulates the net amount of every settled payment into
// the bucket of its receiver and service. Cash deposit links move the
// deposited amount out of the sender's cash bucket. Open payments are
// excluded: their money has not arrived anywhere yet. Empty buckets are
// dropped.
func (s *DistributionService) Distribution(ctx context.Context) ([]DistributionEntry, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "reporting", "distribution")
	defer span.End()

	buckets := make(map[bucketKey]valueobject.Money)
	names := make(map[uuid.UUID]string)
	codes := make(map[uuid.UUID]string)

	err := s.scope.Execute(ctx, func(repos appbooking.TransactionalRepositories) error {
		settled, err := repos.PaymentRepo().FindClosed(ctx)
		if err != nil {
			return fmt.Errorf("failed to load settled payments: %w", err)
		}

		var cashServiceID uuid.UUID
		cashService, err := repos.ServiceRepo().FindByCode(ctx, booking.ServiceCodeCash)
		if err != nil {
			return fmt.Errorf("failed to load cash service: %w", err)
		}
		if cashService != nil {
			cashServiceID = cashService.ID
		}

		for i := range settled {
			payment := &settled[i]
			if err := addToBucket(buckets, bucketKey{payment.ReceiverID, payment.ServiceID}, payment.NetMoney()); err != nil {
				return err
			}

			links, err := repos.AssociationRepo().FindOutgoingLinks(ctx, payment.ID)
			if err != nil {
				return fmt.Errorf("failed to load outgoing links: %w", err)
			}
			for _, link := range links {
				if link.Reason != booking.LinkReasonCashDeposit {
					continue
				}
				if cashServiceID == uuid.Nil {
					return shared.ErrNotFound
				}
				if err := addToBucket(buckets, bucketKey{payment.SenderID, cashServiceID}, link.AmountMoney().Negate()); err != nil {
					return err
				}
			}
		}

		for key := range buckets {
			if _, ok := names[key.identityID]; !ok {
				record, err := repos.IdentityRepo().FindByID(ctx, key.identityID)
				if err != nil {
					return fmt.Errorf("failed to load identity: %w", err)
				}
				if record != nil {
					names[key.identityID] = record.DisplayName()
				}
			}
			if _, ok := codes[key.serviceID]; !ok {
				service, err := repos.ServiceRepo().FindByID(ctx, key.serviceID)
				if err != nil {
					return fmt.Errorf("failed to load service: %w", err)
				}
				if service != nil {
					codes[key.serviceID] = service.Code
				}
			}
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	entries := make([]DistributionEntry, 0, len(buckets))
	for key, amount := range buckets {
		if amount.IsZero() {
			continue
		}
		entries = append(entries, DistributionEntry{
			IdentityID:   key.identityID,
			IdentityName: names[key.identityID],
			ServiceID:    key.serviceID,
			ServiceCode:  codes[key.serviceID],
			Amount:       amount,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].IdentityName != entries[j].IdentityName {
			return entries[i].IdentityName < entries[j].IdentityName
		}
		return entries[i].ServiceCode < entries[j].ServiceCode
	})
	return entries, nil
}

func addToBucket(buckets map[bucketKey]valueobject.Money, key bucketKey, amount valueobject.Money) error {
	current, ok := buckets[key]
	if !ok {
		buckets[key] = amount
		return nil
	}
	sum, err := current.Add(amount)
	if err != nil {
		return err
	}
	buckets[key] = sum
	return nil
}
