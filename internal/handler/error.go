// Package handler provides shared HTTP response helpers for the API and
// webhook handlers.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/iablee/iablee/internal/domain"
)

// ErrorCodeToHTTPStatus maps domain error codes to HTTP status codes.
func ErrorCodeToHTTPStatus(code string) int {
	switch code {
	case domain.EINVALID:
		return http.StatusBadRequest
	case domain.EUNAUTHORIZED:
		return http.StatusUnauthorized
	case domain.EPAYMENT:
		return http.StatusPaymentRequired
	case domain.EFORBIDDEN:
		return http.StatusForbidden
	case domain.ENOTFOUND:
		return http.StatusNotFound
	case domain.ECONFLICT:
		return http.StatusConflict
	case domain.ERATELIMIT:
		return http.StatusTooManyRequests
	default:
		// EINTERNAL, ECONFIG and anything unrecognized.
		return http.StatusInternalServerError
	}
}

// errorEnvelope is the JSON error shape for all API responses.
type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse writes err as a JSON error envelope. Internal and
// configuration details are hidden behind a generic message by
// domain.ErrorMessage.
func ErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	code := domain.ErrorCode(err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(ErrorCodeToHTTPStatus(code))
	_ = json.NewEncoder(w).Encode(errorEnvelope{
		Error: errorBody{
			Code:    code,
			Message: domain.ErrorMessage(err),
		},
	})
}

// JSON writes v with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
