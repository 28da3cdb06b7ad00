// Package routes wires HTTP handlers onto the router. Each route area takes
// a small Deps struct so main only assembles what the area actually needs.
package routes

import (
	"github.com/iablee/iablee/internal/domain"
	"github.com/iablee/iablee/internal/handler/api"
	"github.com/iablee/iablee/internal/handler/webhook"
)

// APIDeps holds the handlers for the JSON API under /api/v1.
type APIDeps struct {
	Auth    *api.AuthHandler
	Billing *api.BillingHandler
	Vault   *api.VaultHandler
	Users   domain.UserService
}

// WebhookDeps holds the per-provider webhook handlers. A nil handler means
// the provider is not configured and its route is not registered.
type WebhookDeps struct {
	Stripe *webhook.Handler
	PayU   *webhook.Handler
}
