package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/iablee/iablee/internal/domain"
)

// MockGateway is a mock payment gateway for testing. Simulates successful
// provider flows without network calls; individual operations can be
// overridden through the Func fields.
type MockGateway struct {
	// NameValue is the provider reported by Name. Defaults to stripe.
	NameValue domain.Provider

	CreateCustomerFunc        func(ctx context.Context, params CreateCustomerParams) (*domain.CustomerRef, error)
	GetOrCreateCustomerFunc   func(ctx context.Context, params CreateCustomerParams) (*domain.CustomerRef, error)
	AttachPaymentMethodFunc   func(ctx context.Context, customerID, token string) (*domain.PaymentMethodToken, error)
	CreateSubscriptionFunc    func(ctx context.Context, params CreateSubscriptionParams) (*SubscriptionResult, error)
	UpdateSubscriptionFunc    func(ctx context.Context, params UpdateSubscriptionParams) (*SubscriptionResult, error)
	CancelSubscriptionFunc    func(ctx context.Context, providerSubscriptionID string, atPeriodEnd bool) (*SubscriptionResult, error)
	GetInvoicesFunc           func(ctx context.Context, customerID string, limit int) ([]InvoiceResult, error)
	CreateCheckoutSessionFunc func(ctx context.Context, params CheckoutSessionParams) (*CheckoutSession, error)

	// CallLog tracks method calls for test assertions.
	CallLog []string
}

var _ Gateway = (*MockGateway)(nil)

// NewMockGateway creates a mock gateway reporting the given provider.
func NewMockGateway(provider domain.Provider) *MockGateway {
	return &MockGateway{NameValue: provider}
}

func (m *MockGateway) log(format string, args ...interface{}) {
	m.CallLog = append(m.CallLog, fmt.Sprintf(format, args...))
}

// Name returns the configured provider.
func (m *MockGateway) Name() domain.Provider {
	if m.NameValue == "" {
		return domain.ProviderStripe
	}
	return m.NameValue
}

// CreateCustomer creates a mock customer ref.
func (m *MockGateway) CreateCustomer(ctx context.Context, params CreateCustomerParams) (*domain.CustomerRef, error) {
	m.log("CreateCustomer(%s)", params.Email)
	if m.CreateCustomerFunc != nil {
		return m.CreateCustomerFunc(ctx, params)
	}
	return &domain.CustomerRef{
		Provider:           m.Name(),
		ProviderCustomerID: "cus_" + uuid.New().String()[:8],
	}, nil
}

// GetOrCreateCustomer returns a mock customer ref.
func (m *MockGateway) GetOrCreateCustomer(ctx context.Context, params CreateCustomerParams) (*domain.CustomerRef, error) {
	m.log("GetOrCreateCustomer(%s)", params.Email)
	if m.GetOrCreateCustomerFunc != nil {
		return m.GetOrCreateCustomerFunc(ctx, params)
	}
	return m.CreateCustomer(ctx, params)
}

// AttachPaymentMethod returns a mock card token.
func (m *MockGateway) AttachPaymentMethod(ctx context.Context, customerID, token string) (*domain.PaymentMethodToken, error) {
	m.log("AttachPaymentMethod(%s, %s)", customerID, token)
	if m.AttachPaymentMethodFunc != nil {
		return m.AttachPaymentMethodFunc(ctx, customerID, token)
	}
	return &domain.PaymentMethodToken{
		Provider: m.Name(),
		Token:    token,
		Brand:    "visa",
		Last4:    "4242",
		ExpMonth: 12,
		ExpYear:  2030,
	}, nil
}

// SetDefaultPaymentMethod records the call.
func (m *MockGateway) SetDefaultPaymentMethod(ctx context.Context, customerID, token string) error {
	m.log("SetDefaultPaymentMethod(%s, %s)", customerID, token)
	return nil
}

// DetachPaymentMethod records the call.
func (m *MockGateway) DetachPaymentMethod(ctx context.Context, token string) error {
	m.log("DetachPaymentMethod(%s)", token)
	return nil
}

// CreateSubscription returns a mock incomplete subscription with a client
// secret, mirroring the card processor's default_incomplete flow.
func (m *MockGateway) CreateSubscription(ctx context.Context, params CreateSubscriptionParams) (*SubscriptionResult, error) {
	planID := ""
	if params.Plan != nil {
		planID = params.Plan.ID
	}
	m.log("CreateSubscription(%s, %s)", params.CustomerID, planID)
	if m.CreateSubscriptionFunc != nil {
		return m.CreateSubscriptionFunc(ctx, params)
	}
	if _, err := priceFor(m.Name(), params.Plan); err != nil {
		return nil, err
	}
	periodEnd := time.Now().Add(30 * 24 * time.Hour).UTC()
	return &SubscriptionResult{
		ProviderSubscriptionID: "sub_" + uuid.New().String()[:8],
		ProviderCustomerID:     params.CustomerID,
		Status:                 domain.SubscriptionIncomplete,
		CurrentPeriodEnd:       &periodEnd,
		ClientSecret:           "pi_secret_" + uuid.New().String()[:8],
	}, nil
}

// UpdateSubscription returns a mock active subscription.
func (m *MockGateway) UpdateSubscription(ctx context.Context, params UpdateSubscriptionParams) (*SubscriptionResult, error) {
	m.log("UpdateSubscription(%s)", params.ProviderSubscriptionID)
	if m.UpdateSubscriptionFunc != nil {
		return m.UpdateSubscriptionFunc(ctx, params)
	}
	if _, err := priceFor(m.Name(), params.Plan); err != nil {
		return nil, err
	}
	return &SubscriptionResult{
		ProviderSubscriptionID: params.ProviderSubscriptionID,
		Status:                 domain.SubscriptionActive,
	}, nil
}

// CancelSubscription returns a canceled or flagged subscription.
func (m *MockGateway) CancelSubscription(ctx context.Context, providerSubscriptionID string, atPeriodEnd bool) (*SubscriptionResult, error) {
	m.log("CancelSubscription(%s, %t)", providerSubscriptionID, atPeriodEnd)
	if m.CancelSubscriptionFunc != nil {
		return m.CancelSubscriptionFunc(ctx, providerSubscriptionID, atPeriodEnd)
	}
	result := &SubscriptionResult{
		ProviderSubscriptionID: providerSubscriptionID,
		Status:                 domain.SubscriptionActive,
		CancelAtPeriodEnd:      true,
	}
	if !atPeriodEnd {
		now := time.Now().UTC()
		result.Status = domain.SubscriptionCanceled
		result.CancelAtPeriodEnd = false
		result.CanceledAt = &now
	}
	return result, nil
}

// ReactivateSubscription clears the cancel flag.
func (m *MockGateway) ReactivateSubscription(ctx context.Context, providerSubscriptionID string) (*SubscriptionResult, error) {
	m.log("ReactivateSubscription(%s)", providerSubscriptionID)
	return &SubscriptionResult{
		ProviderSubscriptionID: providerSubscriptionID,
		Status:                 domain.SubscriptionActive,
	}, nil
}

// GetInvoices returns mock invoices.
func (m *MockGateway) GetInvoices(ctx context.Context, customerID string, limit int) ([]InvoiceResult, error) {
	m.log("GetInvoices(%s)", customerID)
	if m.GetInvoicesFunc != nil {
		return m.GetInvoicesFunc(ctx, customerID, limit)
	}
	return nil, nil
}

// GetInvoice returns a mock paid invoice.
func (m *MockGateway) GetInvoice(ctx context.Context, providerInvoiceID string) (*InvoiceResult, error) {
	m.log("GetInvoice(%s)", providerInvoiceID)
	now := time.Now().UTC()
	return &InvoiceResult{
		ProviderInvoiceID: providerInvoiceID,
		AmountCents:       999,
		Currency:          "USD",
		Status:            domain.InvoicePaid,
		IssuedAt:          now,
		PaidAt:            &now,
	}, nil
}

// RetryInvoicePayment returns the invoice as paid.
func (m *MockGateway) RetryInvoicePayment(ctx context.Context, providerInvoiceID string) (*InvoiceResult, error) {
	m.log("RetryInvoicePayment(%s)", providerInvoiceID)
	return m.GetInvoice(ctx, providerInvoiceID)
}

// CreateCheckoutSession returns a mock hosted checkout.
func (m *MockGateway) CreateCheckoutSession(ctx context.Context, params CheckoutSessionParams) (*CheckoutSession, error) {
	m.log("CreateCheckoutSession")
	if m.CreateCheckoutSessionFunc != nil {
		return m.CreateCheckoutSessionFunc(ctx, params)
	}
	if _, err := priceFor(m.Name(), params.Plan); err != nil {
		return nil, err
	}
	return &CheckoutSession{
		ID:  "cs_" + uuid.New().String()[:8],
		URL: "https://checkout.example.com/" + uuid.New().String()[:8],
	}, nil
}

// CreatePortalSession returns a mock portal session.
func (m *MockGateway) CreatePortalSession(ctx context.Context, customerID, returnURL string) (*PortalSession, error) {
	m.log("CreatePortalSession(%s)", customerID)
	return &PortalSession{
		ID:  "ps_" + uuid.New().String()[:8],
		URL: "https://portal.example.com/" + uuid.New().String()[:8],
	}, nil
}
