package routes

import (
	"github.com/iablee/iablee/internal/middleware"
	"github.com/iablee/iablee/internal/router"
)

// RegisterAPIRoutes mounts the JSON API under /api/v1. Registration, login
// and the plan catalog are public; everything else requires a session.
func RegisterAPIRoutes(r *router.Router, deps APIDeps) {
	public := r.Group("/api/v1")
	public.Get("/plans", deps.Billing.ListPlans)
	public.Post("/auth/register", deps.Auth.Register)
	public.Post("/auth/login", deps.Auth.Login)

	authed := r.Group("/api/v1", middleware.WithUser(deps.Users), middleware.RequireAuth)

	authed.Get("/auth/me", deps.Auth.Me)
	authed.Post("/auth/logout", deps.Auth.Logout)

	authed.Get("/billing/subscription", deps.Billing.GetSubscription)
	authed.Post("/billing/subscription", deps.Billing.CreateSubscription)
	authed.Patch("/billing/subscription", deps.Billing.ChangePlan)
	authed.Post("/billing/subscription/cancel", deps.Billing.CancelSubscription)
	authed.Post("/billing/subscription/reactivate", deps.Billing.ReactivateSubscription)

	authed.Get("/billing/payment-methods", deps.Billing.ListPaymentMethods)
	authed.Post("/billing/payment-methods", deps.Billing.AttachPaymentMethod)
	authed.Post("/billing/payment-methods/{id}/default", deps.Billing.SetDefaultPaymentMethod)
	authed.Delete("/billing/payment-methods/{id}", deps.Billing.DetachPaymentMethod)

	authed.Get("/billing/invoices", deps.Billing.ListInvoices)
	authed.Post("/billing/checkout", deps.Billing.CreateCheckoutSession)
	authed.Post("/billing/portal", deps.Billing.CreatePortalSession)
	authed.Get("/billing/usage", deps.Billing.GetUsage)

	authed.Post("/vault/assets", deps.Vault.CreateAsset)
	authed.Post("/vault/beneficiaries", deps.Vault.AddBeneficiary)
}
