// Package api implements the authenticated JSON API handlers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/iablee/iablee/internal/domain"
	"github.com/iablee/iablee/internal/handler"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// decode parses and validates a JSON request body into dst.
func decode(r *http.Request, dst any) error {
	const op = "api.decode"

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return domain.Invalid(op, "malformed JSON body")
	}

	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, len(verrs))
			for i, fe := range verrs {
				fields[i] = strings.ToLower(fe.Field())
			}
			return domain.Invalid(op, "invalid or missing fields: "+strings.Join(fields, ", "))
		}
		return domain.Invalid(op, "invalid request body")
	}
	return nil
}

// requireAccount pulls the authenticated account from context, writing a 401
// when absent. The auth middleware normally guarantees presence.
func requireAccount(w http.ResponseWriter, r *http.Request) (*domain.Account, bool) {
	account := domain.AccountFromContext(r.Context())
	if account == nil {
		handler.ErrorResponse(w, r, domain.Unauthorized("api.require_account", "authentication required"))
		return nil, false
	}
	return account, true
}
