package reporting

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"go.uber.org/zap"

	appbooking "github.com/openaccounting/backend/internal/application/booking"
	"github.com/openaccounting/backend/internal/domain/shared"
	"github.com/openaccounting/backend/internal/domain/shared/valueobject"
	"github.com/openaccounting/backend/internal/infrastructure/telemetry"
)

// PDFRenderer converts rendered HTML into a PDF document. The chromedp
// renderer in infrastructure/printing is the production implementation.
type PDFRenderer interface {
	RenderHTML(ctx context.Context, title, html string) ([]byte, error)
}

// BillArchive stores rendered bills and returns the stored object's
// location. The S3 storage in infrastructure/storage implements it.
type BillArchive interface {
	Store(ctx context.Context, key, contentType string, data []byte) (string, error)
}

// BillingService renders the monthly bill: all payments and items of an
// accounting month with their totals.
type BillingService struct {
	scope    appbooking.TransactionScope
	renderer PDFRenderer
	archive  BillArchive
	timeZone *time.Location
	template *template.Template
	logger   *zap.Logger
}

// NewBillingService creates a new BillingService. Renderer and archive
// may be nil; PDF output is then unavailable.
func NewBillingService(
	scope appbooking.TransactionScope,
	renderer PDFRenderer,
	archive BillArchive,
	timeZone *time.Location,
	logger *zap.Logger,
) *BillingService {
	return &BillingService{
		scope:    scope,
		renderer: renderer,
		archive:  archive,
		timeZone: timeZone,
		template: template.Must(template.New("monthly_bill").Parse(monthlyBillTemplate)),
		logger:   logger,
	}
}

type billRow struct {
	BookedAt string
	Code     string
	Note     string
	Amount   string
	Open     bool
}

type billData struct {
	Year          int
	Month         int
	Payments      []billRow
	Items         []billRow
	PaymentsTotal string
	ItemsTotal    string
}

// MonthlyBillHTML renders the bill of an accounting month as HTML
func (s *BillingService) MonthlyBillHTML(ctx context.Context, year, month int) (string, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "reporting", "monthly_bill")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrAccountingYear, year,
		telemetry.SpanAttrAccountingMon, month,
	)

	data := billData{Year: year, Month: month}
	err := s.scope.Execute(ctx, func(repos appbooking.TransactionalRepositories) error {
		record, err := repos.MonthRepo().FindByKey(ctx, year, month)
		if err != nil {
			return fmt.Errorf("failed to load month: %w", err)
		}
		if record == nil {
			return shared.ErrNotFound
		}
		start, end := record.Range(s.timeZone)

		payments, err := repos.PaymentRepo().FindByRange(ctx, start, end)
		if err != nil {
			return fmt.Errorf("failed to load payments: %w", err)
		}
		items, err := repos.ItemRepo().FindByRange(ctx, start, end)
		if err != nil {
			return fmt.Errorf("failed to load items: %w", err)
		}

		paymentsTotal := valueobject.ZeroEUR()
		for i := range payments {
			if i == 0 {
				paymentsTotal = valueobject.Zero(payments[i].GrossMoney().Currency())
			}
			paymentsTotal, err = paymentsTotal.Add(payments[i].NetMoney())
			if err != nil {
				return err
			}
			data.Payments = append(data.Payments, billRow{
				BookedAt: payments[i].BookedAt.In(s.timeZone).Format("2006-01-02"),
				Code:     payments[i].TransactionCode,
				Note:     payments[i].Note,
				Amount:   payments[i].NetMoney().String(),
				Open:     payments[i].IsOpen,
			})
		}

		itemsTotal := valueobject.ZeroEUR()
		for i := range items {
			if i == 0 {
				itemsTotal = valueobject.Zero(items[i].AmountMoney().Currency())
			}
			itemsTotal, err = itemsTotal.Add(items[i].AmountMoney())
			if err != nil {
				return err
			}
			data.Items = append(data.Items, billRow{
				BookedAt: items[i].BookedAt.In(s.timeZone).Format("2006-01-02"),
				Note:     items[i].Note,
				Amount:   items[i].AmountMoney().String(),
				Open:     items[i].IsOpen,
			})
		}

		data.PaymentsTotal = paymentsTotal.String()
		data.ItemsTotal = itemsTotal.String()
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return "", err
	}

	var buf bytes.Buffer
	if err := s.template.Execute(&buf, data); err != nil {
		telemetry.RecordError(span, err)
		return "", fmt.Errorf("failed to render bill: %w", err)
	}
	return buf.String(), nil
}

// MonthlyBillPDF renders the bill as PDF and, when an archive is
// configured, stores a copy under bills/<year>/<month>.pdf.
func (s *BillingService) MonthlyBillPDF(ctx context.Context, year, month int) ([]byte, error) {
	if s.renderer == nil {
		return nil, shared.NewDomainError("INVALID_STATE", "No PDF renderer is configured")
	}

	html, err := s.MonthlyBillHTML(ctx, year, month)
	if err != nil {
		return nil, err
	}

	title := fmt.Sprintf("Monthly bill %04d-%02d", year, month)
	pdf, err := s.renderer.RenderHTML(ctx, title, html)
	if err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}

	if s.archive != nil {
		key := fmt.Sprintf("bills/%04d/%02d.pdf", year, month)
		location, err := s.archive.Store(ctx, key, "application/pdf", pdf)
		if err != nil {
			return nil, fmt.Errorf("failed to archive bill: %w", err)
		}
		s.logger.Info("archived monthly bill",
			zap.Int("year", year), zap.Int("month", month), zap.String("location", location))
	}
	return pdf, nil
}

const monthlyBillTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Monthly bill {{.Year}}-{{printf "%02d" .Month}}</title>
<style>
body { font-family: sans-serif; font-size: 12px; }
table { border-collapse: collapse; width: 100%; margin-bottom: 2em; }
th, td { border: 1px solid #999; padding: 4px 8px; text-align: left; }
td.amount { text-align: right; }
tfoot td { font-weight: bold; }
.open { color: #b00; }
</style>
</head>
<body>
<h1>Monthly bill {{.Year}}-{{printf "%02d" .Month}}</h1>
<h2>Payments</h2>
<table>
<thead><tr><th>Date</th><th>Transaction</th><th>Note</th><th>Net</th></tr></thead>
<tbody>
{{range .Payments}}<tr{{if .Open}} class="open"{{end}}><td>{{.BookedAt}}</td><td>{{.Code}}</td><td>{{.Note}}</td><td class="amount">{{.Amount}}</td></tr>
{{end}}</tbody>
<tfoot><tr><td colspan="3">Total</td><td class="amount">{{.PaymentsTotal}}</td></tr></tfoot>
</table>
<h2>Items</h2>
<table>
<thead><tr><th>Date</th><th>Note</th><th>Amount</th></tr></thead>
<tbody>
{{range .Items}}<tr{{if .Open}} class="open"{{end}}><td>{{.BookedAt}}</td><td>{{.Note}}</td><td class="amount">{{.Amount}}</td></tr>
{{end}}</tbody>
<tfoot><tr><td colspan="2">Total</td><td class="amount">{{.ItemsTotal}}</td></tr></tfoot>
</table>
</body>
</html>
`
