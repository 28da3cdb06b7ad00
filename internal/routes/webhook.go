package routes

import "github.com/iablee/iablee/internal/router"

// RegisterWebhookRoutes mounts the provider webhook endpoints.
//
// Note: webhook routes do NOT go through the auth middleware. The handlers
// authenticate each delivery with the provider's signature scheme instead.
func RegisterWebhookRoutes(r *router.Router, deps WebhookDeps) {
	if deps.Stripe != nil {
		r.Post("/webhooks/stripe", deps.Stripe.HandleWebhook)
	}
	if deps.PayU != nil {
		r.Post("/webhooks/payu", deps.PayU.HandleWebhook)
	}
}
