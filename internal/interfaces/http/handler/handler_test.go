package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/openaccounting/backend/internal/application/apptest"
	appbooking "github.com/openaccounting/backend/internal/application/booking"
	appcatalog "github.com/openaccounting/backend/internal/application/catalog"
	appidentity "github.com/openaccounting/backend/internal/application/identity"
	"github.com/openaccounting/backend/internal/application/payments"
	"github.com/openaccounting/backend/internal/domain/booking"
	"github.com/openaccounting/backend/internal/interfaces/http/dto"
	"github.com/openaccounting/backend/internal/interfaces/http/router"
)

func init() {
	gin.SetMode(gin.TestMode)
	dto.RegisterValidations()
}

type fixture struct {
	repos  *apptest.Repositories
	scope  appbooking.TransactionScope
	engine *gin.Engine
}

// newFixture wires real application services over in-memory
// repositories and mounts every handler under /api/v1.
func newFixture(t *testing.T, parsers map[string]payments.ActivityParser) *fixture {
	t.Helper()

	repos := apptest.NewRepositories()
	scope := appbooking.NewNoOpTransactionScope(
		repos.Payments, repos.Items, repos.Associations, repos.Months, repos.Services,
		repos.Identities, repos.Accounts, repos.Assignments, repos.Subscriptions, repos.Products,
	)
	logger := zaptest.NewLogger(t)

	f := &fixture{repos: repos, scope: scope, engine: gin.New()}
	r := router.New(f.engine, logger)
	r.Register(
		NewAccountingMonthHandler(appbooking.NewAccountingMonthService(scope, time.UTC, logger), logger),
		NewItemHandler(appbooking.NewItemService(scope, logger), time.UTC, "EUR", logger),
		NewPaymentHandler(
			payments.NewPaymentService(scope, time.UTC, logger),
			appbooking.NewAssociationService(scope, logger),
			payments.NewImportService(scope, parsers, logger),
			time.UTC,
			"EUR",
			logger,
		),
		NewIdentityHandler(appidentity.NewIdentityService(scope, logger), logger),
		NewCatalogHandler(appcatalog.NewCatalogService(scope, logger), "EUR", logger),
	)
	r.Setup("v1")
	return f
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

// decode unmarshals the envelope and the data payload into out
func decode(t *testing.T, w *httptest.ResponseRecorder, out any) dto.Response {
	t.Helper()

	var resp struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   *dto.ErrorInfo  `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	if out != nil && len(resp.Data) > 0 {
		require.NoError(t, json.Unmarshal(resp.Data, out))
	}
	return dto.Response{Success: resp.Success, Error: resp.Error}
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()

	resp := decode(t, w, nil)
	require.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	return resp.Error.Code
}

func requireStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	require.Equal(t, want, w.Code, "unexpected status, body: %s", w.Body.String())
}

// seedService stores a payment service and returns it
func (f *fixture) seedService(t *testing.T, code, name string) *booking.PaymentService {
	t.Helper()

	service, err := booking.NewPaymentService(code, name)
	require.NoError(t, err)
	require.NoError(t, f.repos.Services.Save(context.Background(), service))
	return service
}

// seedMonth opens an accounting month directly in the repository
func (f *fixture) seedMonth(t *testing.T, year, month int) *booking.AccountingMonth {
	t.Helper()

	m, err := booking.NewAccountingMonth(year, month)
	require.NoError(t, err)
	require.NoError(t, f.repos.Months.Save(context.Background(), m))
	return m
}
