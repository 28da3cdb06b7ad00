package billing

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/iablee/iablee/internal/domain"
)

// PayUGateway implements Gateway for PayU Latam's redirect checkout.
//
// PayU cannot vault payment methods or mutate subscriptions through an API;
// its sole productive capability is building the signed off-site form that
// sends the buyer to PayU's hosted checkout. Every other operation fails with
// a provider-tagged UnsupportedOperationError so misconfigured call sites
// surface immediately instead of silently no-op-ing.
type PayUGateway struct {
	config PayUConfig
}

var _ Gateway = (*PayUGateway)(nil)

// NewPayUGateway creates a PayU gateway.
func NewPayUGateway(config PayUConfig) (*PayUGateway, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.CheckoutURL == "" {
		config.CheckoutURL = DefaultPayUCheckoutURL
	}
	return &PayUGateway{config: config}, nil
}

// Name returns the provider name.
func (g *PayUGateway) Name() domain.Provider {
	return domain.ProviderPayU
}

// CreateCustomer is not supported: PayU has no customer vault.
func (g *PayUGateway) CreateCustomer(ctx context.Context, params CreateCustomerParams) (*domain.CustomerRef, error) {
	return nil, unsupported(domain.ProviderPayU, "create_customer")
}

// GetOrCreateCustomer is not supported: PayU has no customer vault.
func (g *PayUGateway) GetOrCreateCustomer(ctx context.Context, params CreateCustomerParams) (*domain.CustomerRef, error) {
	return nil, unsupported(domain.ProviderPayU, "get_or_create_customer")
}

// AttachPaymentMethod is not supported: PayU never exposes instrument tokens.
func (g *PayUGateway) AttachPaymentMethod(ctx context.Context, customerID, token string) (*domain.PaymentMethodToken, error) {
	return nil, unsupported(domain.ProviderPayU, "attach_payment_method")
}

// SetDefaultPaymentMethod is not supported.
func (g *PayUGateway) SetDefaultPaymentMethod(ctx context.Context, customerID, token string) error {
	return unsupported(domain.ProviderPayU, "set_default_payment_method")
}

// DetachPaymentMethod is not supported.
func (g *PayUGateway) DetachPaymentMethod(ctx context.Context, token string) error {
	return unsupported(domain.ProviderPayU, "detach_payment_method")
}

// CreateSubscription is not supported: recurring billing goes through the
// redirect checkout, with renewals arriving as webhook confirmations.
func (g *PayUGateway) CreateSubscription(ctx context.Context, params CreateSubscriptionParams) (*SubscriptionResult, error) {
	return nil, unsupported(domain.ProviderPayU, "create_subscription")
}

// UpdateSubscription is not supported.
func (g *PayUGateway) UpdateSubscription(ctx context.Context, params UpdateSubscriptionParams) (*SubscriptionResult, error) {
	return nil, unsupported(domain.ProviderPayU, "update_subscription")
}

// CancelSubscription is not supported.
func (g *PayUGateway) CancelSubscription(ctx context.Context, providerSubscriptionID string, atPeriodEnd bool) (*SubscriptionResult, error) {
	return nil, unsupported(domain.ProviderPayU, "cancel_subscription")
}

// ReactivateSubscription is not supported.
func (g *PayUGateway) ReactivateSubscription(ctx context.Context, providerSubscriptionID string) (*SubscriptionResult, error) {
	return nil, unsupported(domain.ProviderPayU, "reactivate_subscription")
}

// GetInvoices is not supported: invoices exist only as webhook confirmations.
func (g *PayUGateway) GetInvoices(ctx context.Context, customerID string, limit int) ([]InvoiceResult, error) {
	return nil, unsupported(domain.ProviderPayU, "get_invoices")
}

// GetInvoice is not supported.
func (g *PayUGateway) GetInvoice(ctx context.Context, providerInvoiceID string) (*InvoiceResult, error) {
	return nil, unsupported(domain.ProviderPayU, "get_invoice")
}

// RetryInvoicePayment is not supported.
func (g *PayUGateway) RetryInvoicePayment(ctx context.Context, providerInvoiceID string) (*InvoiceResult, error) {
	return nil, unsupported(domain.ProviderPayU, "retry_invoice_payment")
}

// CreateCheckoutSession builds the signed form the frontend auto-submits to
// PayU's hosted checkout. The signature covers exactly
// apiKey~merchantId~referenceCode~amount~currency with the amount as a
// 2-decimal string; PayU rejects the form if any of that differs.
func (g *PayUGateway) CreateCheckoutSession(ctx context.Context, params CheckoutSessionParams) (*CheckoutSession, error) {
	if params.Plan == nil {
		return nil, fmt.Errorf("billing: nil plan")
	}
	if _, err := priceFor(domain.ProviderPayU, params.Plan); err != nil {
		return nil, err
	}

	referenceCode := newPayUReference(params.Plan.ID)
	amount := formatAmountCents(params.Plan.AmountCents)
	currency := normalizeCurrency(params.Plan.Currency)
	signature := payuSignature(g.config.APIKey, g.config.MerchantID, referenceCode, amount, currency)

	test := "0"
	if g.config.Test {
		test = "1"
	}

	fields := map[string]string{
		"merchantId":      g.config.MerchantID,
		"accountId":       g.config.AccountID,
		"description":     fmt.Sprintf("iablee %s subscription", params.Plan.Name),
		"referenceCode":   referenceCode,
		"amount":          amount,
		"tax":             "0.00",
		"taxReturnBase":   "0.00",
		"currency":        currency,
		"signature":       signature,
		"test":            test,
		"buyerEmail":      params.BuyerEmail,
		"buyerFullName":   params.BuyerName,
		"responseUrl":     g.config.ResponseURL,
		"confirmationUrl": g.config.ConfirmationURL,
	}
	if params.UserID != "" {
		fields["extra1"] = params.UserID
	}
	if params.Plan.ID != "" {
		fields["extra2"] = params.Plan.ID
	}

	return &CheckoutSession{
		ID:         referenceCode,
		FormAction: g.config.CheckoutURL,
		FormFields: fields,
	}, nil
}

// CreatePortalSession is not supported: PayU has no hosted billing portal.
func (g *PayUGateway) CreatePortalSession(ctx context.Context, customerID, returnURL string) (*PortalSession, error) {
	return nil, unsupported(domain.ProviderPayU, "create_portal_session")
}

// newPayUReference generates a unique merchant reference code for one
// checkout attempt.
func newPayUReference(planID string) string {
	return fmt.Sprintf("iablee-%s-%s", planID, uuid.New().String())
}

// payuSignature computes PayU's keyed digest: md5 over the tilde-joined
// parts. The part ordering and 2-decimal amount formatting are part of the
// provider contract.
func payuSignature(parts ...string) string {
	sum := md5.Sum([]byte(strings.Join(parts, "~")))
	return hex.EncodeToString(sum[:])
}
