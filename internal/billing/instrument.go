package billing

import (
	"context"
	"time"

	"github.com/iablee/iablee/internal/domain"
	"github.com/iablee/iablee/internal/telemetry"
)

// instrumentedGateway wraps a Gateway and records call latency per operation.
type instrumentedGateway struct {
	next Gateway
}

var _ Gateway = (*instrumentedGateway)(nil)

// InstrumentGateway returns a Gateway that times every provider call and
// reports it to the gateway latency histogram.
func InstrumentGateway(next Gateway) Gateway {
	return &instrumentedGateway{next: next}
}

func (g *instrumentedGateway) observe(operation string, start time.Time) {
	if telemetry.Business == nil {
		return
	}
	telemetry.Business.GatewayLatency.
		WithLabelValues(string(g.next.Name()), operation).
		Observe(time.Since(start).Seconds())
}

func (g *instrumentedGateway) Name() domain.Provider {
	return g.next.Name()
}

func (g *instrumentedGateway) CreateCustomer(ctx context.Context, params CreateCustomerParams) (*domain.CustomerRef, error) {
	defer g.observe("create_customer", time.Now())
	return g.next.CreateCustomer(ctx, params)
}

func (g *instrumentedGateway) GetOrCreateCustomer(ctx context.Context, params CreateCustomerParams) (*domain.CustomerRef, error) {
	defer g.observe("get_or_create_customer", time.Now())
	return g.next.GetOrCreateCustomer(ctx, params)
}

func (g *instrumentedGateway) AttachPaymentMethod(ctx context.Context, customerID, token string) (*domain.PaymentMethodToken, error) {
	defer g.observe("attach_payment_method", time.Now())
	return g.next.AttachPaymentMethod(ctx, customerID, token)
}

func (g *instrumentedGateway) SetDefaultPaymentMethod(ctx context.Context, customerID, token string) error {
	defer g.observe("set_default_payment_method", time.Now())
	return g.next.SetDefaultPaymentMethod(ctx, customerID, token)
}

func (g *instrumentedGateway) DetachPaymentMethod(ctx context.Context, token string) error {
	defer g.observe("detach_payment_method", time.Now())
	return g.next.DetachPaymentMethod(ctx, token)
}

func (g *instrumentedGateway) CreateSubscription(ctx context.Context, params CreateSubscriptionParams) (*SubscriptionResult, error) {
	defer g.observe("create_subscription", time.Now())
	return g.next.CreateSubscription(ctx, params)
}

func (g *instrumentedGateway) UpdateSubscription(ctx context.Context, params UpdateSubscriptionParams) (*SubscriptionResult, error) {
	defer g.observe("update_subscription", time.Now())
	return g.next.UpdateSubscription(ctx, params)
}

func (g *instrumentedGateway) CancelSubscription(ctx context.Context, providerSubscriptionID string, atPeriodEnd bool) (*SubscriptionResult, error) {
	defer g.observe("cancel_subscription", time.Now())
	return g.next.CancelSubscription(ctx, providerSubscriptionID, atPeriodEnd)
}

func (g *instrumentedGateway) ReactivateSubscription(ctx context.Context, providerSubscriptionID string) (*SubscriptionResult, error) {
	defer g.observe("reactivate_subscription", time.Now())
	return g.next.ReactivateSubscription(ctx, providerSubscriptionID)
}

func (g *instrumentedGateway) GetInvoices(ctx context.Context, customerID string, limit int) ([]InvoiceResult, error) {
	defer g.observe("get_invoices", time.Now())
	return g.next.GetInvoices(ctx, customerID, limit)
}

func (g *instrumentedGateway) GetInvoice(ctx context.Context, providerInvoiceID string) (*InvoiceResult, error) {
	defer g.observe("get_invoice", time.Now())
	return g.next.GetInvoice(ctx, providerInvoiceID)
}

func (g *instrumentedGateway) RetryInvoicePayment(ctx context.Context, providerInvoiceID string) (*InvoiceResult, error) {
	defer g.observe("retry_invoice_payment", time.Now())
	return g.next.RetryInvoicePayment(ctx, providerInvoiceID)
}

func (g *instrumentedGateway) CreateCheckoutSession(ctx context.Context, params CheckoutSessionParams) (*CheckoutSession, error) {
	defer g.observe("create_checkout_session", time.Now())
	return g.next.CreateCheckoutSession(ctx, params)
}

func (g *instrumentedGateway) CreatePortalSession(ctx context.Context, customerID, returnURL string) (*PortalSession, error) {
	defer g.observe("create_portal_session", time.Now())
	return g.next.CreatePortalSession(ctx, customerID, returnURL)
}
