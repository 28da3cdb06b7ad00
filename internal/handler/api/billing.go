package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/iablee/iablee/internal/domain"
	"github.com/iablee/iablee/internal/handler"
	"github.com/iablee/iablee/internal/telemetry"
)

// BillingHandler exposes plans, subscriptions, payment methods, invoices and
// hosted checkout/portal sessions.
type BillingHandler struct {
	billing domain.BillingService
	limits  domain.LimitService
	logger  *slog.Logger
}

// NewBillingHandler creates the billing handler.
func NewBillingHandler(billing domain.BillingService, limits domain.LimitService, logger *slog.Logger) *BillingHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &BillingHandler{billing: billing, limits: limits, logger: logger}
}

// ListPlans handles GET /plans. Public: the pricing page needs no session.
func (h *BillingHandler) ListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := h.billing.ListPlans(r.Context())
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.JSON(w, http.StatusOK, map[string]any{"plans": plans})
}

// GetSubscription handles GET /billing/subscription.
func (h *BillingHandler) GetSubscription(w http.ResponseWriter, r *http.Request) {
	account, ok := requireAccount(w, r)
	if !ok {
		return
	}

	sub, err := h.billing.GetSubscription(r.Context(), account.ID)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.JSON(w, http.StatusOK, map[string]any{"subscription": sub})
}

type createSubscriptionRequest struct {
	PlanID             string `json:"plan_id" validate:"required"`
	PaymentMethodToken string `json:"payment_method_token"`
}

// CreateSubscription handles POST /billing/subscription.
func (h *BillingHandler) CreateSubscription(w http.ResponseWriter, r *http.Request) {
	account, ok := requireAccount(w, r)
	if !ok {
		return
	}

	var req createSubscriptionRequest
	if err := decode(r, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	checkout, err := h.billing.CreateSubscription(r.Context(), domain.CreateSubscriptionParams{
		UserID:             account.ID,
		PlanID:             req.PlanID,
		PaymentMethodToken: req.PaymentMethodToken,
		Email:              account.Email,
		Name:               account.FullName,
	})
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	if telemetry.Business != nil {
		telemetry.Business.SubscriptionsCreated.
			WithLabelValues(string(checkout.Subscription.Provider), checkout.Subscription.PlanID).Inc()
	}

	handler.JSON(w, http.StatusCreated, map[string]any{
		"subscription":  checkout.Subscription,
		"client_secret": checkout.ClientSecret,
	})
}

type changePlanRequest struct {
	PlanID string `json:"plan_id" validate:"required"`
}

// ChangePlan handles PATCH /billing/subscription.
func (h *BillingHandler) ChangePlan(w http.ResponseWriter, r *http.Request) {
	account, ok := requireAccount(w, r)
	if !ok {
		return
	}

	var req changePlanRequest
	if err := decode(r, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	sub, err := h.billing.ChangePlan(r.Context(), account.ID, req.PlanID)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	if telemetry.Business != nil {
		telemetry.Business.PlanChanges.WithLabelValues(sub.PlanID).Inc()
	}

	handler.JSON(w, http.StatusOK, map[string]any{"subscription": sub})
}

type cancelSubscriptionRequest struct {
	AtPeriodEnd *bool `json:"at_period_end"`
}

// CancelSubscription handles POST /billing/subscription/cancel. Defaults to
// canceling at period end.
func (h *BillingHandler) CancelSubscription(w http.ResponseWriter, r *http.Request) {
	account, ok := requireAccount(w, r)
	if !ok {
		return
	}

	var req cancelSubscriptionRequest
	if err := decode(r, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	atPeriodEnd := true
	if req.AtPeriodEnd != nil {
		atPeriodEnd = *req.AtPeriodEnd
	}

	sub, err := h.billing.CancelSubscription(r.Context(), account.ID, atPeriodEnd)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	if telemetry.Business != nil {
		telemetry.Business.SubscriptionsCanceled.WithLabelValues(string(sub.Provider)).Inc()
	}

	handler.JSON(w, http.StatusOK, map[string]any{"subscription": sub})
}

// ReactivateSubscription handles POST /billing/subscription/reactivate.
func (h *BillingHandler) ReactivateSubscription(w http.ResponseWriter, r *http.Request) {
	account, ok := requireAccount(w, r)
	if !ok {
		return
	}

	sub, err := h.billing.ReactivateSubscription(r.Context(), account.ID)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	if telemetry.Business != nil {
		telemetry.Business.SubscriptionsReactivated.WithLabelValues(string(sub.Provider)).Inc()
	}

	handler.JSON(w, http.StatusOK, map[string]any{"subscription": sub})
}

// ListPaymentMethods handles GET /billing/payment-methods.
func (h *BillingHandler) ListPaymentMethods(w http.ResponseWriter, r *http.Request) {
	account, ok := requireAccount(w, r)
	if !ok {
		return
	}

	methods, err := h.billing.ListPaymentMethods(r.Context(), account.ID)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.JSON(w, http.StatusOK, map[string]any{"payment_methods": methods})
}

type attachPaymentMethodRequest struct {
	Token       string `json:"token" validate:"required"`
	MakeDefault bool   `json:"make_default"`
}

// AttachPaymentMethod handles POST /billing/payment-methods.
func (h *BillingHandler) AttachPaymentMethod(w http.ResponseWriter, r *http.Request) {
	account, ok := requireAccount(w, r)
	if !ok {
		return
	}

	var req attachPaymentMethodRequest
	if err := decode(r, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	method, err := h.billing.AttachPaymentMethod(r.Context(), domain.AttachPaymentMethodParams{
		UserID:      account.ID,
		Email:       account.Email,
		Name:        account.FullName,
		Token:       req.Token,
		MakeDefault: req.MakeDefault,
	})
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.JSON(w, http.StatusCreated, map[string]any{"payment_method": method})
}

// SetDefaultPaymentMethod handles POST /billing/payment-methods/{id}/default.
func (h *BillingHandler) SetDefaultPaymentMethod(w http.ResponseWriter, r *http.Request) {
	account, ok := requireAccount(w, r)
	if !ok {
		return
	}

	methodID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handler.ErrorResponse(w, r, domain.Invalid("billing.set_default_payment_method", "invalid payment method id"))
		return
	}

	if err := h.billing.SetDefaultPaymentMethod(r.Context(), account.ID, methodID); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DetachPaymentMethod handles DELETE /billing/payment-methods/{id}.
func (h *BillingHandler) DetachPaymentMethod(w http.ResponseWriter, r *http.Request) {
	account, ok := requireAccount(w, r)
	if !ok {
		return
	}

	methodID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handler.ErrorResponse(w, r, domain.Invalid("billing.detach_payment_method", "invalid payment method id"))
		return
	}

	if err := h.billing.DetachPaymentMethod(r.Context(), account.ID, methodID); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListInvoices handles GET /billing/invoices?limit=N.
func (h *BillingHandler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	account, ok := requireAccount(w, r)
	if !ok {
		return
	}

	var limit int32
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 32)
		if err != nil || parsed < 1 {
			handler.ErrorResponse(w, r, domain.Invalid("billing.list_invoices", "limit must be a positive integer"))
			return
		}
		limit = int32(parsed)
	}

	invoices, err := h.billing.ListInvoices(r.Context(), account.ID, limit)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.JSON(w, http.StatusOK, map[string]any{"invoices": invoices})
}

type checkoutRequest struct {
	PlanID     string `json:"plan_id" validate:"required"`
	SuccessURL string `json:"success_url" validate:"omitempty,url"`
	CancelURL  string `json:"cancel_url" validate:"omitempty,url"`
}

// CreateCheckoutSession handles POST /billing/checkout.
func (h *BillingHandler) CreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	account, ok := requireAccount(w, r)
	if !ok {
		return
	}

	var req checkoutRequest
	if err := decode(r, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	intent, err := h.billing.CreateCheckoutSession(r.Context(), domain.CheckoutParams{
		UserID:     account.ID,
		PlanID:     req.PlanID,
		Email:      account.Email,
		Name:       account.FullName,
		SuccessURL: req.SuccessURL,
		CancelURL:  req.CancelURL,
	})
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	if telemetry.Business != nil {
		provider := domain.ProviderStripe
		if intent.FormAction != "" {
			provider = domain.ProviderPayU
		}
		telemetry.Business.CheckoutSessions.WithLabelValues(string(provider)).Inc()
	}

	handler.JSON(w, http.StatusCreated, map[string]any{"checkout": intent})
}

type portalRequest struct {
	ReturnURL string `json:"return_url" validate:"omitempty,url"`
}

// CreatePortalSession handles POST /billing/portal.
func (h *BillingHandler) CreatePortalSession(w http.ResponseWriter, r *http.Request) {
	account, ok := requireAccount(w, r)
	if !ok {
		return
	}

	var req portalRequest
	if err := decode(r, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	url, err := h.billing.CreatePortalSession(r.Context(), account.ID, req.ReturnURL)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.JSON(w, http.StatusCreated, map[string]any{"url": url})
}

// GetUsage handles GET /billing/usage.
func (h *BillingHandler) GetUsage(w http.ResponseWriter, r *http.Request) {
	account, ok := requireAccount(w, r)
	if !ok {
		return
	}

	usage, err := h.limits.GetUsage(r.Context(), account.ID)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.JSON(w, http.StatusOK, map[string]any{"usage": usage})
}
