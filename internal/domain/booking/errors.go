package booking

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/openaccounting/backend/internal/domain/shared"
)

// Error codes raised by the booking domain
const (
	ErrCodeOpenItemsExist      = "OPEN_ITEMS_EXIST"
	ErrCodeOpenPaymentsExist   = "OPEN_PAYMENTS_EXIST"
	ErrCodeCurrencyMismatch    = "CURRENCY_MISMATCH"
	ErrCodeConcurrencyConflict = "CONCURRENCY_CONFLICT"
)

// NewOpenItemsError reports a month lock blocked by open items. The
// blocking ids are part of the message so the caller can resolve them.
func NewOpenItemsError(ids []uuid.UUID) *shared.DomainError {
	return shared.NewDomainError(ErrCodeOpenItemsExist,
		fmt.Sprintf("Cannot lock month, open items exist: %s", joinIDs(ids)))
}

// NewOpenPaymentsError reports a month lock blocked by open payments
func NewOpenPaymentsError(ids []uuid.UUID) *shared.DomainError {
	return shared.NewDomainError(ErrCodeOpenPaymentsExist,
		fmt.Sprintf("Cannot lock month, open payments exist: %s", joinIDs(ids)))
}

// NewCurrencyMismatchError reports arithmetic across currencies, a data
// integrity problem rather than a user error.
func NewCurrencyMismatchError(detail string) *shared.DomainError {
	return shared.NewDomainError(ErrCodeCurrencyMismatch, detail)
}

func joinIDs(ids []uuid.UUID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	return strings.Join(parts, ", ")
}
