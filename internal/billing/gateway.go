package billing

import (
	"context"
	"time"

	"github.com/iablee/iablee/internal/domain"
)

// Gateway defines the interface for payment provider adapters.
// One concrete gateway is active per process, selected by configuration.
//
// Providers differ in capability: the card processor vaults payment methods
// and mutates subscriptions directly, the redirect-checkout provider can only
// build a signed off-site form. A provider that cannot support an operation
// fails fast with a provider-tagged ErrUnsupportedOperation rather than
// silently no-op-ing, so the orchestration layer keeps a single call-site
// contract and unsupported-operation bugs surface immediately in testing.
type Gateway interface {
	// Name returns the provider this gateway talks to.
	Name() domain.Provider

	// CreateCustomer creates a customer record in the provider's system.
	CreateCustomer(ctx context.Context, params CreateCustomerParams) (*domain.CustomerRef, error)

	// GetOrCreateCustomer looks up a customer by email and creates one only
	// if none exists, so repeated attach attempts never duplicate customer
	// records provider-side.
	GetOrCreateCustomer(ctx context.Context, params CreateCustomerParams) (*domain.CustomerRef, error)

	// AttachPaymentMethod attaches a tokenized payment method to a customer
	// and returns the token enriched with display metadata.
	AttachPaymentMethod(ctx context.Context, customerID, token string) (*domain.PaymentMethodToken, error)

	// SetDefaultPaymentMethod marks a payment method as the customer's
	// default for future invoices.
	SetDefaultPaymentMethod(ctx context.Context, customerID, token string) error

	// DetachPaymentMethod removes a payment method from a customer.
	DetachPaymentMethod(ctx context.Context, token string) error

	// CreateSubscription creates a recurring subscription on the provider.
	CreateSubscription(ctx context.Context, params CreateSubscriptionParams) (*SubscriptionResult, error)

	// UpdateSubscription switches a subscription to a different price.
	UpdateSubscription(ctx context.Context, params UpdateSubscriptionParams) (*SubscriptionResult, error)

	// CancelSubscription cancels immediately or at period end.
	CancelSubscription(ctx context.Context, providerSubscriptionID string, atPeriodEnd bool) (*SubscriptionResult, error)

	// ReactivateSubscription clears a pending at-period-end cancellation.
	ReactivateSubscription(ctx context.Context, providerSubscriptionID string) (*SubscriptionResult, error)

	// GetInvoices lists invoices for a provider customer.
	GetInvoices(ctx context.Context, customerID string, limit int) ([]InvoiceResult, error)

	// GetInvoice retrieves a single invoice.
	GetInvoice(ctx context.Context, providerInvoiceID string) (*InvoiceResult, error)

	// RetryInvoicePayment re-attempts collection of an open invoice.
	RetryInvoicePayment(ctx context.Context, providerInvoiceID string) (*InvoiceResult, error)

	// CreateCheckoutSession builds a provider-hosted checkout for the plan.
	CreateCheckoutSession(ctx context.Context, params CheckoutSessionParams) (*CheckoutSession, error)

	// CreatePortalSession builds a provider-hosted billing portal session.
	CreatePortalSession(ctx context.Context, customerID, returnURL string) (*PortalSession, error)
}

// CreateCustomerParams contains parameters for creating a provider customer.
type CreateCustomerParams struct {
	Email    string
	Name     string
	UserID   string
	Metadata map[string]string
}

// CreateSubscriptionParams contains parameters for creating a subscription.
// The price identifier is resolved from the plan's ProviderPriceMap before
// any provider call; a missing mapping is a configuration error.
type CreateSubscriptionParams struct {
	CustomerID           string
	Plan                 *domain.PlanDefinition
	DefaultPaymentMethod string
	Metadata             map[string]string
}

// UpdateSubscriptionParams contains parameters for switching plans.
type UpdateSubscriptionParams struct {
	ProviderSubscriptionID string
	Plan                   *domain.PlanDefinition
}

// SubscriptionResult is the provider's view of a subscription after a
// lifecycle operation, already mapped to domain vocabulary.
type SubscriptionResult struct {
	ProviderSubscriptionID string
	ProviderCustomerID     string
	Status                 domain.SubscriptionStatus
	CurrentPeriodStart     *time.Time
	CurrentPeriodEnd       *time.Time
	CancelAtPeriodEnd      bool
	CanceledAt             *time.Time

	// ClientSecret is set when the provider requires client-side payment
	// confirmation to activate the subscription.
	ClientSecret string
}

// InvoiceResult is a provider invoice mapped to domain vocabulary.
type InvoiceResult struct {
	ProviderInvoiceID      string
	ProviderCustomerID     string
	ProviderSubscriptionID string
	AmountCents            int64
	Currency               string
	Status                 domain.InvoiceStatus
	IssuedAt               time.Time
	PaidAt                 *time.Time
}

// CheckoutSessionParams contains parameters for a hosted checkout.
type CheckoutSessionParams struct {
	Plan       *domain.PlanDefinition
	CustomerID string
	BuyerEmail string
	BuyerName  string
	UserID     string
	SuccessURL string
	CancelURL  string
}

// CheckoutSession is the result of CreateCheckoutSession. Exactly one of URL
// or FormFields is populated: hosted-page providers return a redirect URL,
// form-post providers return signed fields for the caller to auto-submit.
type CheckoutSession struct {
	ID string

	// URL is the hosted checkout page to redirect the buyer to.
	URL string

	// FormAction and FormFields describe an off-site form submission,
	// including the request signature the provider verifies.
	FormAction string
	FormFields map[string]string
}

// PortalSession is a provider-hosted billing management session.
type PortalSession struct {
	ID  string
	URL string
}
