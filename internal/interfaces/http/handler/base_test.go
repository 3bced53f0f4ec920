package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/openaccounting/backend/internal/domain/shared"
	"github.com/openaccounting/backend/internal/interfaces/http/dto"
)

func TestBaseHandler_HandleError(t *testing.T) {
	serve := func(t *testing.T, err error) *httptest.ResponseRecorder {
		t.Helper()

		h := NewBaseHandler(zaptest.NewLogger(t))
		engine := gin.New()
		engine.GET("/boom", func(c *gin.Context) {
			h.HandleError(c, err)
		})

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
		return w
	}

	t.Run("maps not found to 404", func(t *testing.T) {
		w := serve(t, shared.ErrNotFound)

		assert.Equal(t, http.StatusNotFound, w.Code)
		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.Success)
		assert.Equal(t, "NOT_FOUND", resp.Error.Code)
	})

	t.Run("maps concurrency conflict to 409", func(t *testing.T) {
		w := serve(t, shared.ErrConcurrencyConflict)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("maps invariant violation to 422", func(t *testing.T) {
		w := serve(t, shared.ErrInvariantViolation)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("maps a wrapped domain error", func(t *testing.T) {
		err := fmt.Errorf("loading payment: %w", shared.ErrNotFound)
		w := serve(t, err)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("hides unexpected errors behind 500", func(t *testing.T) {
		w := serve(t, errors.New("disk on fire"))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "INTERNAL_ERROR", resp.Error.Code)
		assert.NotContains(t, w.Body.String(), "disk on fire")
	})
}
