package dto

import "net/http"

// ErrorCodeHTTPStatus maps domain error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	"NOT_FOUND":            http.StatusNotFound,
	"ALREADY_EXISTS":       http.StatusConflict,
	"CONCURRENCY_CONFLICT": http.StatusConflict,
	"INVALID_INPUT":        http.StatusBadRequest,
	"BAD_REQUEST":          http.StatusBadRequest,
	"INVALID_STATE":        http.StatusUnprocessableEntity,
	"INVARIANT_VIOLATION":  http.StatusUnprocessableEntity,
	"CURRENCY_MISMATCH":    http.StatusUnprocessableEntity,
	"OPEN_ITEMS_EXIST":     http.StatusUnprocessableEntity,
	"OPEN_PAYMENTS_EXIST":  http.StatusUnprocessableEntity,
}

// GetHTTPStatus resolves a domain error code to its HTTP status,
// defaulting to 500 for codes without an explicit mapping.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
