package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"

	"github.com/openaccounting/backend/internal/application/reporting"
	"github.com/openaccounting/backend/internal/interfaces/http/router"
)

type stubRenderer struct {
	pdf []byte
	err error
}

func (r *stubRenderer) RenderHTML(context.Context, string, string) ([]byte, error) {
	return r.pdf, r.err
}

// withReports mounts the report handler next to the default fixture
func withReports(t *testing.T, renderer reporting.PDFRenderer) *fixture {
	t.Helper()

	f := newFixture(t, nil)
	logger := zaptest.NewLogger(t)
	billing := reporting.NewBillingService(f.scope, renderer, nil, time.UTC, logger)
	distribution := reporting.NewDistributionService(f.scope, logger)

	r := router.New(f.engine, logger)
	r.Register(NewReportHandler(billing, distribution, logger))
	r.Setup("v1")
	return f
}

func TestReportHandler_Distribution(t *testing.T) {
	f := withReports(t, nil)

	w := f.do(t, http.MethodGet, "/api/v1/reports/distribution", nil)

	requireStatus(t, w, http.StatusOK)
	var entries []reporting.DistributionEntry
	decode(t, w, &entries)
	assert.Empty(t, entries)
}

func TestReportHandler_MonthlyBill(t *testing.T) {
	t.Run("renders the bill as HTML", func(t *testing.T) {
		f := withReports(t, nil)
		f.seedMonth(t, 2024, 3)
		service := f.seedService(t, "bank", "Bank account")
		seedPayment(t, f, service.ID, "TX-1001", "25.00")

		w := f.do(t, http.MethodGet, "/api/v1/reports/monthly-bill/2024/3", nil)

		requireStatus(t, w, http.StatusOK)
		assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
		assert.Contains(t, w.Body.String(), "TX-1001")
	})

	t.Run("answers 404 for an unknown month", func(t *testing.T) {
		f := withReports(t, nil)

		w := f.do(t, http.MethodGet, "/api/v1/reports/monthly-bill/2024/3", nil)

		requireStatus(t, w, http.StatusNotFound)
	})

	t.Run("rejects a non-numeric month", func(t *testing.T) {
		f := withReports(t, nil)

		w := f.do(t, http.MethodGet, "/api/v1/reports/monthly-bill/2024/march", nil)

		requireStatus(t, w, http.StatusBadRequest)
	})

	t.Run("streams the PDF with a download name", func(t *testing.T) {
		f := withReports(t, &stubRenderer{pdf: []byte("%PDF-1.4 test")})
		f.seedMonth(t, 2024, 3)

		w := f.do(t, http.MethodGet, "/api/v1/reports/monthly-bill/2024/3/pdf", nil)

		requireStatus(t, w, http.StatusOK)
		assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
		assert.Contains(t, w.Header().Get("Content-Disposition"), "bill-2024-03.pdf")
		assert.Equal(t, "%PDF-1.4 test", w.Body.String())
	})

	t.Run("answers 422 without a renderer", func(t *testing.T) {
		f := withReports(t, nil)
		f.seedMonth(t, 2024, 3)

		w := f.do(t, http.MethodGet, "/api/v1/reports/monthly-bill/2024/3/pdf", nil)

		requireStatus(t, w, http.StatusUnprocessableEntity)
		assert.Equal(t, "INVALID_STATE", errorCode(t, w))
	})
}
