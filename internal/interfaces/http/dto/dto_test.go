package dto

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{"NOT_FOUND", http.StatusNotFound},
		{"ALREADY_EXISTS", http.StatusConflict},
		{"CONCURRENCY_CONFLICT", http.StatusConflict},
		{"INVALID_INPUT", http.StatusBadRequest},
		{"INVALID_STATE", http.StatusUnprocessableEntity},
		{"OPEN_ITEMS_EXIST", http.StatusUnprocessableEntity},
		{"OPEN_PAYMENTS_EXIST", http.StatusUnprocessableEntity},
		{"CURRENCY_MISMATCH", http.StatusUnprocessableEntity},
		{"SOMETHING_ELSE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, GetHTTPStatus(tt.code))
		})
	}
}

func TestResponses(t *testing.T) {
	t.Run("success carries data", func(t *testing.T) {
		resp := NewSuccessResponse(map[string]int{"a": 1})
		assert.True(t, resp.Success)
		assert.NotNil(t, resp.Data)
		assert.Nil(t, resp.Error)
	})

	t.Run("error carries code and message", func(t *testing.T) {
		resp := NewErrorResponse("NOT_FOUND", "payment not found")
		assert.False(t, resp.Success)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "NOT_FOUND", resp.Error.Code)
		assert.Equal(t, "payment not found", resp.Error.Message)
	})
}

func TestRegisterValidations(t *testing.T) {
	RegisterValidations()

	type body struct {
		Amount   string `binding:"required,amount"`
		Currency string `binding:"omitempty,currency"`
	}

	valid := func(amount, currency string) error {
		return binding.Validator.ValidateStruct(&body{Amount: amount, Currency: currency})
	}

	t.Run("accepts decimal amounts", func(t *testing.T) {
		assert.NoError(t, valid("15.00", "EUR"))
		assert.NoError(t, valid("-0.35", ""))
		assert.NoError(t, valid("1250", "USD"))
	})

	t.Run("rejects malformed amounts", func(t *testing.T) {
		assert.Error(t, valid("15,00", "EUR"))
		assert.Error(t, valid("fifteen", "EUR"))
		assert.Error(t, valid("15.00.00", "EUR"))
	})

	t.Run("rejects malformed currencies", func(t *testing.T) {
		assert.Error(t, valid("15.00", "eur"))
		assert.Error(t, valid("15.00", "EURO"))
	})
}
