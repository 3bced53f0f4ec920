package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appbooking "github.com/openaccounting/backend/internal/application/booking"
	"github.com/openaccounting/backend/internal/domain/booking"
)

func TestAccountingMonthHandler_Create(t *testing.T) {
	t.Run("creates a month", func(t *testing.T) {
		f := newFixture(t, nil)

		w := f.do(t, http.MethodPost, "/api/v1/accounting-months", gin.H{"year": 2024, "month": 3})

		requireStatus(t, w, http.StatusCreated)
		var key appbooking.MonthKey
		decode(t, w, &key)
		assert.Equal(t, appbooking.MonthKey{Year: 2024, Month: 3}, key)
	})

	t.Run("rejects duplicate month", func(t *testing.T) {
		f := newFixture(t, nil)
		f.seedMonth(t, 2024, 3)

		w := f.do(t, http.MethodPost, "/api/v1/accounting-months", gin.H{"year": 2024, "month": 3})

		requireStatus(t, w, http.StatusConflict)
		assert.Equal(t, "ALREADY_EXISTS", errorCode(t, w))
	})

	t.Run("rejects month out of range", func(t *testing.T) {
		f := newFixture(t, nil)

		w := f.do(t, http.MethodPost, "/api/v1/accounting-months", gin.H{"year": 2024, "month": 13})

		requireStatus(t, w, http.StatusBadRequest)
	})

	t.Run("rejects missing body", func(t *testing.T) {
		f := newFixture(t, nil)

		w := f.do(t, http.MethodPost, "/api/v1/accounting-months", nil)

		requireStatus(t, w, http.StatusBadRequest)
	})
}

func TestAccountingMonthHandler_SetLockStatus(t *testing.T) {
	t.Run("locks an existing month", func(t *testing.T) {
		f := newFixture(t, nil)
		f.seedMonth(t, 2024, 3)

		w := f.do(t, http.MethodPut, "/api/v1/accounting-months/2024/3/lock", gin.H{"locked": true})

		requireStatus(t, w, http.StatusNoContent)
		stored, err := f.repos.Months.FindByKey(context.Background(), 2024, 3)
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.False(t, stored.IsOpen)
	})

	t.Run("unlocks a locked month", func(t *testing.T) {
		f := newFixture(t, nil)
		m := f.seedMonth(t, 2024, 3)
		m.IsOpen = false
		require.NoError(t, f.repos.Months.Save(context.Background(), m))

		w := f.do(t, http.MethodPut, "/api/v1/accounting-months/2024/3/lock", gin.H{"locked": false})

		requireStatus(t, w, http.StatusNoContent)
		stored, err := f.repos.Months.FindByKey(context.Background(), 2024, 3)
		require.NoError(t, err)
		assert.True(t, stored.IsOpen)
	})

	t.Run("answers 404 for an unknown month", func(t *testing.T) {
		f := newFixture(t, nil)

		w := f.do(t, http.MethodPut, "/api/v1/accounting-months/2024/3/lock", gin.H{"locked": true})

		requireStatus(t, w, http.StatusNotFound)
		assert.Equal(t, "NOT_FOUND", errorCode(t, w))
	})

	t.Run("rejects non-numeric year", func(t *testing.T) {
		f := newFixture(t, nil)

		w := f.do(t, http.MethodPut, "/api/v1/accounting-months/march/3/lock", gin.H{"locked": true})

		requireStatus(t, w, http.StatusBadRequest)
	})

	t.Run("rejects missing locked flag", func(t *testing.T) {
		f := newFixture(t, nil)
		f.seedMonth(t, 2024, 3)

		w := f.do(t, http.MethodPut, "/api/v1/accounting-months/2024/3/lock", gin.H{})

		requireStatus(t, w, http.StatusBadRequest)
	})
}

func TestAccountingMonthHandler_Queries(t *testing.T) {
	t.Run("lists months and years", func(t *testing.T) {
		f := newFixture(t, nil)
		f.seedMonth(t, 2023, 12)
		f.seedMonth(t, 2024, 1)
		f.seedMonth(t, 2024, 2)

		w := f.do(t, http.MethodGet, "/api/v1/accounting-months", nil)
		requireStatus(t, w, http.StatusOK)
		var months []booking.AccountingMonth
		decode(t, w, &months)
		assert.Len(t, months, 3)

		w = f.do(t, http.MethodGet, "/api/v1/accounting-months/years", nil)
		requireStatus(t, w, http.StatusOK)
		var years []int
		decode(t, w, &years)
		assert.Equal(t, []int{2023, 2024}, years)

		w = f.do(t, http.MethodGet, "/api/v1/accounting-months/years/2024", nil)
		requireStatus(t, w, http.StatusOK)
		decode(t, w, &months)
		assert.Len(t, months, 2)
	})

	t.Run("last and next month", func(t *testing.T) {
		f := newFixture(t, nil)
		f.seedMonth(t, 2024, 12)

		w := f.do(t, http.MethodGet, "/api/v1/accounting-months/last", nil)
		requireStatus(t, w, http.StatusOK)
		var key appbooking.MonthKey
		decode(t, w, &key)
		assert.Equal(t, appbooking.MonthKey{Year: 2024, Month: 12}, key)

		w = f.do(t, http.MethodGet, "/api/v1/accounting-months/next", nil)
		requireStatus(t, w, http.StatusOK)
		decode(t, w, &key)
		assert.Equal(t, appbooking.MonthKey{Year: 2025, Month: 1}, key)
	})

	t.Run("last falls back to the current month", func(t *testing.T) {
		f := newFixture(t, nil)

		w := f.do(t, http.MethodGet, "/api/v1/accounting-months/last", nil)

		requireStatus(t, w, http.StatusOK)
		var key appbooking.MonthKey
		decode(t, w, &key)
		now := time.Now().UTC()
		assert.Equal(t, appbooking.MonthKey{Year: now.Year(), Month: int(now.Month())}, key)
	})
}
