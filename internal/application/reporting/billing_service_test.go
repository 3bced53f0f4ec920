package reporting_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/openaccounting/backend/internal/application/apptest"
	"github.com/openaccounting/backend/internal/application/reporting"
	"github.com/openaccounting/backend/internal/domain/booking"
	"github.com/openaccounting/backend/internal/domain/shared"
)

type stubRenderer struct {
	lastTitle string
	lastHTML  string
}

func (r *stubRenderer) RenderHTML(_ context.Context, title, html string) ([]byte, error) {
	r.lastTitle = title
	r.lastHTML = html
	return []byte("%PDF-stub"), nil
}

type stubArchive struct {
	lastKey         string
	lastContentType string
	lastData        []byte
}

func (a *stubArchive) Store(_ context.Context, key, contentType string, data []byte) (string, error) {
	a.lastKey = key
	a.lastContentType = contentType
	a.lastData = data
	return "s3://bills/" + key, nil
}

func seedMarch(t *testing.T, repos *apptest.Repositories) {
	t.Helper()
	ctx := context.Background()
	month, err := booking.NewAccountingMonth(2024, 3)
	require.NoError(t, err)
	require.NoError(t, repos.Months.Save(ctx, month))

	bookedAt := time.Date(2024, 3, 12, 14, 30, 0, 0, time.UTC)
	payment, err := booking.NewPayment(
		booking.PaymentTypeNormal, uuid.New(), "TX-1", uuid.New(), uuid.New(),
		bookedAt, eur(t, "15.00"), eur(t, "-0.35"), "dues")
	require.NoError(t, err)
	require.NoError(t, repos.Payments.Save(ctx, payment))

	item, err := booking.NewItem(uuid.New(), bookedAt, eur(t, "15.00"), "membership")
	require.NoError(t, err)
	require.NoError(t, repos.Items.Save(ctx, item))
}

func TestBillingService_MonthlyBillHTML(t *testing.T) {
	ctx := context.Background()

	t.Run("renders payments and items with totals", func(t *testing.T) {
		repos, scope := newReportingFixture(t)
		service := reporting.NewBillingService(scope, nil, nil, time.UTC, zap.NewNop())
		seedMarch(t, repos)

		html, err := service.MonthlyBillHTML(ctx, 2024, 3)
		require.NoError(t, err)
		assert.Contains(t, html, "Monthly bill 2024-03")
		assert.Contains(t, html, "TX-1")
		assert.Contains(t, html, "membership")
		assert.Contains(t, html, "14.65 EUR", "payments total is the net sum")
		assert.Contains(t, html, "15.00 EUR")
	})

	t.Run("missing month", func(t *testing.T) {
		_, scope := newReportingFixture(t)
		service := reporting.NewBillingService(scope, nil, nil, time.UTC, zap.NewNop())

		_, err := service.MonthlyBillHTML(ctx, 2024, 3)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestBillingService_MonthlyBillPDF(t *testing.T) {
	ctx := context.Background()

	t.Run("renders and archives the PDF", func(t *testing.T) {
		repos, scope := newReportingFixture(t)
		renderer := &stubRenderer{}
		archive := &stubArchive{}
		service := reporting.NewBillingService(scope, renderer, archive, time.UTC, zap.NewNop())
		seedMarch(t, repos)

		pdf, err := service.MonthlyBillPDF(ctx, 2024, 3)
		require.NoError(t, err)
		assert.Equal(t, []byte("%PDF-stub"), pdf)
		assert.Equal(t, "Monthly bill 2024-03", renderer.lastTitle)
		assert.Contains(t, renderer.lastHTML, "TX-1")
		assert.Equal(t, "bills/2024/03.pdf", archive.lastKey)
		assert.Equal(t, "application/pdf", archive.lastContentType)
	})

	t.Run("without a renderer", func(t *testing.T) {
		_, scope := newReportingFixture(t)
		service := reporting.NewBillingService(scope, nil, nil, time.UTC, zap.NewNop())

		_, err := service.MonthlyBillPDF(ctx, 2024, 3)
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_STATE", domainErr.Code)
	})
}
