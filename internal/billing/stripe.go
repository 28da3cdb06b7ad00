package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v83"
	portalsession "github.com/stripe/stripe-go/v83/billingportal/session"
	checkoutsession "github.com/stripe/stripe-go/v83/checkout/session"
	stripecustomer "github.com/stripe/stripe-go/v83/customer"
	stripeinvoice "github.com/stripe/stripe-go/v83/invoice"
	stripepm "github.com/stripe/stripe-go/v83/paymentmethod"
	stripesubscription "github.com/stripe/stripe-go/v83/subscription"

	"github.com/iablee/iablee/internal/domain"
)

// StripeGateway implements Gateway using the Stripe API.
//
// Subscriptions are created with payment_behavior=default_incomplete: Stripe
// returns the subscription in incomplete status together with a client secret
// on the first invoice, and the frontend confirms the payment to activate it.
type StripeGateway struct {
	config StripeConfig
}

// Compile-time check.
var _ Gateway = (*StripeGateway)(nil)

// NewStripeGateway creates a Stripe gateway. The Stripe SDK uses a
// process-global API key, set once here.
func NewStripeGateway(config StripeConfig) (*StripeGateway, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	stripe.Key = config.SecretKey
	return &StripeGateway{config: config}, nil
}

// Name returns the provider name.
func (g *StripeGateway) Name() domain.Provider {
	return domain.ProviderStripe
}

// CreateCustomer creates a Stripe customer.
func (g *StripeGateway) CreateCustomer(ctx context.Context, params CreateCustomerParams) (*domain.CustomerRef, error) {
	cusParams := &stripe.CustomerParams{
		Email: stripe.String(params.Email),
	}
	if params.Name != "" {
		cusParams.Name = stripe.String(params.Name)
	}
	if params.UserID != "" {
		cusParams.AddMetadata("user_id", params.UserID)
	}
	for k, v := range params.Metadata {
		cusParams.AddMetadata(k, v)
	}
	cusParams.Context = ctx

	cus, err := stripecustomer.New(cusParams)
	if err != nil {
		return nil, g.wrapError("create_customer", err)
	}

	return &domain.CustomerRef{
		Provider:           domain.ProviderStripe,
		ProviderCustomerID: cus.ID,
	}, nil
}

// GetOrCreateCustomer looks up an existing customer by email before creating
// one, so repeated attach attempts converge on a single Stripe customer.
func (g *StripeGateway) GetOrCreateCustomer(ctx context.Context, params CreateCustomerParams) (*domain.CustomerRef, error) {
	listParams := &stripe.CustomerListParams{
		Email: stripe.String(params.Email),
	}
	listParams.Limit = stripe.Int64(1)
	listParams.Context = ctx

	iter := stripecustomer.List(listParams)
	for iter.Next() {
		cus := iter.Customer()
		return &domain.CustomerRef{
			Provider:           domain.ProviderStripe,
			ProviderCustomerID: cus.ID,
		}, nil
	}
	if err := iter.Err(); err != nil {
		return nil, g.wrapError("list_customers", err)
	}

	return g.CreateCustomer(ctx, params)
}

// AttachPaymentMethod attaches a tokenized payment method to a customer.
func (g *StripeGateway) AttachPaymentMethod(ctx context.Context, customerID, token string) (*domain.PaymentMethodToken, error) {
	attachParams := &stripe.PaymentMethodAttachParams{
		Customer: stripe.String(customerID),
	}
	attachParams.Context = ctx

	pm, err := stripepm.Attach(token, attachParams)
	if err != nil {
		return nil, g.wrapError("attach_payment_method", err)
	}

	return mapStripePaymentMethod(pm), nil
}

// SetDefaultPaymentMethod marks the payment method as the customer's default
// for invoices.
func (g *StripeGateway) SetDefaultPaymentMethod(ctx context.Context, customerID, token string) error {
	updateParams := &stripe.CustomerParams{
		InvoiceSettings: &stripe.CustomerInvoiceSettingsParams{
			DefaultPaymentMethod: stripe.String(token),
		},
	}
	updateParams.Context = ctx

	if _, err := stripecustomer.Update(customerID, updateParams); err != nil {
		return g.wrapError("set_default_payment_method", err)
	}
	return nil
}

// DetachPaymentMethod detaches a payment method from its customer.
func (g *StripeGateway) DetachPaymentMethod(ctx context.Context, token string) error {
	detachParams := &stripe.PaymentMethodDetachParams{}
	detachParams.Context = ctx

	if _, err := stripepm.Detach(token, detachParams); err != nil {
		return g.wrapError("detach_payment_method", err)
	}
	return nil
}

// CreateSubscription creates a subscription in default_incomplete mode and
// expands the first invoice's confirmation secret for client-side payment
// confirmation.
func (g *StripeGateway) CreateSubscription(ctx context.Context, params CreateSubscriptionParams) (*SubscriptionResult, error) {
	priceID, err := priceFor(domain.ProviderStripe, params.Plan)
	if err != nil {
		return nil, err
	}

	subParams := &stripe.SubscriptionParams{
		Customer: stripe.String(params.CustomerID),
		Items: []*stripe.SubscriptionItemsParams{
			{Price: stripe.String(priceID)},
		},
		PaymentBehavior: stripe.String("default_incomplete"),
		PaymentSettings: &stripe.SubscriptionPaymentSettingsParams{
			SaveDefaultPaymentMethod: stripe.String("on_subscription"),
		},
	}
	if params.DefaultPaymentMethod != "" {
		subParams.DefaultPaymentMethod = stripe.String(params.DefaultPaymentMethod)
	}
	for k, v := range params.Metadata {
		subParams.AddMetadata(k, v)
	}
	subParams.AddExpand("latest_invoice.confirmation_secret")
	subParams.Context = ctx

	sub, err := stripesubscription.New(subParams)
	if err != nil {
		return nil, g.wrapError("create_subscription", err)
	}

	return mapStripeSubscription(sub), nil
}

// UpdateSubscription switches the subscription's single item to the new
// plan's price, prorating the difference.
func (g *StripeGateway) UpdateSubscription(ctx context.Context, params UpdateSubscriptionParams) (*SubscriptionResult, error) {
	priceID, err := priceFor(domain.ProviderStripe, params.Plan)
	if err != nil {
		return nil, err
	}

	getParams := &stripe.SubscriptionParams{}
	getParams.Context = ctx
	current, err := stripesubscription.Get(params.ProviderSubscriptionID, getParams)
	if err != nil {
		return nil, g.wrapError("get_subscription", err)
	}
	if current.Items == nil || len(current.Items.Data) == 0 {
		return nil, &GatewayError{
			Provider: domain.ProviderStripe,
			Op:       "update_subscription",
			Message:  fmt.Sprintf("subscription %s has no items", params.ProviderSubscriptionID),
		}
	}

	updateParams := &stripe.SubscriptionParams{
		Items: []*stripe.SubscriptionItemsParams{
			{
				ID:    stripe.String(current.Items.Data[0].ID),
				Price: stripe.String(priceID),
			},
		},
		ProrationBehavior: stripe.String("create_prorations"),
	}
	updateParams.Context = ctx

	sub, err := stripesubscription.Update(params.ProviderSubscriptionID, updateParams)
	if err != nil {
		return nil, g.wrapError("update_subscription", err)
	}

	return mapStripeSubscription(sub), nil
}

// CancelSubscription cancels immediately or flags cancellation at period end.
func (g *StripeGateway) CancelSubscription(ctx context.Context, providerSubscriptionID string, atPeriodEnd bool) (*SubscriptionResult, error) {
	if atPeriodEnd {
		updateParams := &stripe.SubscriptionParams{
			CancelAtPeriodEnd: stripe.Bool(true),
		}
		updateParams.Context = ctx

		sub, err := stripesubscription.Update(providerSubscriptionID, updateParams)
		if err != nil {
			return nil, g.wrapError("cancel_subscription", err)
		}
		return mapStripeSubscription(sub), nil
	}

	cancelParams := &stripe.SubscriptionCancelParams{}
	cancelParams.Context = ctx

	sub, err := stripesubscription.Cancel(providerSubscriptionID, cancelParams)
	if err != nil {
		return nil, g.wrapError("cancel_subscription", err)
	}
	return mapStripeSubscription(sub), nil
}

// ReactivateSubscription clears a pending at-period-end cancellation.
func (g *StripeGateway) ReactivateSubscription(ctx context.Context, providerSubscriptionID string) (*SubscriptionResult, error) {
	updateParams := &stripe.SubscriptionParams{
		CancelAtPeriodEnd: stripe.Bool(false),
	}
	updateParams.Context = ctx

	sub, err := stripesubscription.Update(providerSubscriptionID, updateParams)
	if err != nil {
		return nil, g.wrapError("reactivate_subscription", err)
	}
	return mapStripeSubscription(sub), nil
}

// GetInvoices lists invoices for a customer, newest first.
func (g *StripeGateway) GetInvoices(ctx context.Context, customerID string, limit int) ([]InvoiceResult, error) {
	if limit <= 0 {
		limit = 10
	}
	listParams := &stripe.InvoiceListParams{
		Customer: stripe.String(customerID),
	}
	listParams.Limit = stripe.Int64(int64(limit))
	listParams.Context = ctx

	var invoices []InvoiceResult
	iter := stripeinvoice.List(listParams)
	for iter.Next() {
		invoices = append(invoices, *mapStripeInvoice(iter.Invoice()))
	}
	if err := iter.Err(); err != nil {
		return nil, g.wrapError("list_invoices", err)
	}

	return invoices, nil
}

// GetInvoice retrieves a single invoice.
func (g *StripeGateway) GetInvoice(ctx context.Context, providerInvoiceID string) (*InvoiceResult, error) {
	getParams := &stripe.InvoiceParams{}
	getParams.Context = ctx

	inv, err := stripeinvoice.Get(providerInvoiceID, getParams)
	if err != nil {
		return nil, g.wrapError("get_invoice", err)
	}
	return mapStripeInvoice(inv), nil
}

// RetryInvoicePayment re-attempts collection of an open invoice using the
// customer's default payment method.
func (g *StripeGateway) RetryInvoicePayment(ctx context.Context, providerInvoiceID string) (*InvoiceResult, error) {
	payParams := &stripe.InvoicePayParams{}
	payParams.Context = ctx

	inv, err := stripeinvoice.Pay(providerInvoiceID, payParams)
	if err != nil {
		return nil, g.wrapError("retry_invoice_payment", err)
	}
	return mapStripeInvoice(inv), nil
}

// CreateCheckoutSession creates a Stripe Checkout session in subscription
// mode for the plan's price.
func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, params CheckoutSessionParams) (*CheckoutSession, error) {
	priceID, err := priceFor(domain.ProviderStripe, params.Plan)
	if err != nil {
		return nil, err
	}

	sessionParams := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(priceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(params.SuccessURL),
		CancelURL:  stripe.String(params.CancelURL),
	}
	if params.CustomerID != "" {
		sessionParams.Customer = stripe.String(params.CustomerID)
	} else if params.BuyerEmail != "" {
		sessionParams.CustomerEmail = stripe.String(params.BuyerEmail)
	}
	if params.UserID != "" {
		sessionParams.AddMetadata("user_id", params.UserID)
	}
	sessionParams.Context = ctx

	session, err := checkoutsession.New(sessionParams)
	if err != nil {
		return nil, g.wrapError("create_checkout_session", err)
	}

	return &CheckoutSession{
		ID:  session.ID,
		URL: session.URL,
	}, nil
}

// CreatePortalSession creates a Stripe Customer Portal session.
func (g *StripeGateway) CreatePortalSession(ctx context.Context, customerID, returnURL string) (*PortalSession, error) {
	sessionParams := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(returnURL),
	}
	sessionParams.Context = ctx

	session, err := portalsession.New(sessionParams)
	if err != nil {
		return nil, g.wrapError("create_portal_session", err)
	}

	return &PortalSession{
		ID:  session.ID,
		URL: session.URL,
	}, nil
}

// wrapError converts a Stripe SDK error into a provider-tagged GatewayError.
func (g *StripeGateway) wrapError(op string, err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		return &GatewayError{
			Provider: domain.ProviderStripe,
			Op:       op,
			Code:     string(stripeErr.Code),
			Message:  stripeErr.Msg,
			Err:      err,
		}
	}
	return &GatewayError{
		Provider: domain.ProviderStripe,
		Op:       op,
		Message:  err.Error(),
		Err:      err,
	}
}

// mapStripeSubscription maps a Stripe subscription onto the domain result.
// Period boundaries live on the subscription item since the Basil API.
func mapStripeSubscription(sub *stripe.Subscription) *SubscriptionResult {
	result := &SubscriptionResult{
		ProviderSubscriptionID: sub.ID,
		Status:                 mapStripeSubscriptionStatus(sub.Status),
		CancelAtPeriodEnd:      sub.CancelAtPeriodEnd,
	}
	if sub.Customer != nil {
		result.ProviderCustomerID = sub.Customer.ID
	}
	if sub.CanceledAt > 0 {
		t := time.Unix(sub.CanceledAt, 0).UTC()
		result.CanceledAt = &t
	}
	if sub.Items != nil && len(sub.Items.Data) > 0 {
		item := sub.Items.Data[0]
		if item.CurrentPeriodStart > 0 {
			t := time.Unix(item.CurrentPeriodStart, 0).UTC()
			result.CurrentPeriodStart = &t
		}
		if item.CurrentPeriodEnd > 0 {
			t := time.Unix(item.CurrentPeriodEnd, 0).UTC()
			result.CurrentPeriodEnd = &t
		}
	}
	if sub.LatestInvoice != nil && sub.LatestInvoice.ConfirmationSecret != nil {
		result.ClientSecret = sub.LatestInvoice.ConfirmationSecret.ClientSecret
	}
	return result
}

// mapStripeSubscriptionStatus maps Stripe statuses onto the domain state set.
func mapStripeSubscriptionStatus(status stripe.SubscriptionStatus) domain.SubscriptionStatus {
	switch status {
	case stripe.SubscriptionStatusActive:
		return domain.SubscriptionActive
	case stripe.SubscriptionStatusPastDue:
		return domain.SubscriptionPastDue
	case stripe.SubscriptionStatusCanceled, stripe.SubscriptionStatusIncompleteExpired:
		return domain.SubscriptionCanceled
	case stripe.SubscriptionStatusTrialing:
		return domain.SubscriptionTrialing
	case stripe.SubscriptionStatusUnpaid:
		return domain.SubscriptionUnpaid
	default:
		return domain.SubscriptionIncomplete
	}
}

// mapStripePaymentMethod extracts display metadata from an attached method.
func mapStripePaymentMethod(pm *stripe.PaymentMethod) *domain.PaymentMethodToken {
	token := &domain.PaymentMethodToken{
		Provider: domain.ProviderStripe,
		Token:    pm.ID,
	}
	if pm.Card != nil {
		token.Brand = string(pm.Card.Brand)
		token.Last4 = pm.Card.Last4
		token.ExpMonth = int32(pm.Card.ExpMonth)
		token.ExpYear = int32(pm.Card.ExpYear)
	}
	return token
}

// mapStripeInvoice maps a Stripe invoice onto the domain result.
func mapStripeInvoice(inv *stripe.Invoice) *InvoiceResult {
	result := &InvoiceResult{
		ProviderInvoiceID: inv.ID,
		AmountCents:       inv.Total,
		Currency:          normalizeCurrency(string(inv.Currency)),
		Status:            mapStripeInvoiceStatus(inv.Status),
		IssuedAt:          time.Unix(inv.Created, 0).UTC(),
	}
	if inv.Customer != nil {
		result.ProviderCustomerID = inv.Customer.ID
	}
	if sub := subscriptionFromInvoice(inv); sub != nil {
		result.ProviderSubscriptionID = sub.ID
	}
	if inv.StatusTransitions != nil && inv.StatusTransitions.PaidAt > 0 {
		t := time.Unix(inv.StatusTransitions.PaidAt, 0).UTC()
		result.PaidAt = &t
	}
	return result
}

// subscriptionFromInvoice extracts the parent subscription, if any.
func subscriptionFromInvoice(inv *stripe.Invoice) *stripe.Subscription {
	if inv.Parent == nil || inv.Parent.SubscriptionDetails == nil {
		return nil
	}
	return inv.Parent.SubscriptionDetails.Subscription
}

// mapStripeInvoiceStatus maps Stripe invoice statuses onto the domain set.
func mapStripeInvoiceStatus(status stripe.InvoiceStatus) domain.InvoiceStatus {
	switch status {
	case stripe.InvoiceStatusPaid:
		return domain.InvoicePaid
	case stripe.InvoiceStatusOpen:
		return domain.InvoiceOpen
	case stripe.InvoiceStatusUncollectible:
		return domain.InvoiceUncollectible
	case stripe.InvoiceStatusVoid:
		return domain.InvoiceVoid
	default:
		return domain.InvoiceDraft
	}
}
