package payments

import (
	"io"
	"time"

	"github.com/openaccounting/backend/internal/domain/booking"
	"github.com/openaccounting/backend/internal/domain/shared/valueobject"
)

// ParsedPayment is one record from a payment service's activity export.
// Sender and receiver are the raw account names from the feed; the
// import resolves them to identities.
type ParsedPayment struct {
	Type            booking.PaymentType
	TransactionCode string
	SenderName      string
	ReceiverName    string
	BookedAt        time.Time
	GrossAmount     valueobject.Money
	FeeAmount       valueobject.Money
	Note            string
}

// ActivityParser turns a payment service's activity export into parsed
// payment records. The CSV importer in infrastructure/importer is the
// PayPal implementation.
type ActivityParser interface {
	Parse(r io.Reader) ([]ParsedPayment, error)
}
