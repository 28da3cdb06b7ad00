package billing

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/webhook"

	"github.com/iablee/iablee/internal/domain"
)

// stripeEventTypes is the allow-list of Stripe event types this system
// processes, mapped to normalized types. Everything else is acknowledged
// without processing.
var stripeEventTypes = map[string]domain.NormalizedEventType{
	"customer.subscription.created": domain.EventSubscriptionCreated,
	"customer.subscription.updated": domain.EventSubscriptionUpdated,
	"customer.subscription.deleted": domain.EventSubscriptionCanceled,
	"invoice.paid":                  domain.EventInvoicePaid,
	"invoice.payment_succeeded":     domain.EventInvoicePaid,
	"invoice.payment_failed":        domain.EventInvoicePaymentFailed,
	"payment_method.attached":       domain.EventPaymentMethodAttached,
	"payment_method.detached":       domain.EventPaymentMethodDetached,
	"customer.created":              domain.EventCustomerCreated,
	"customer.updated":              domain.EventCustomerUpdated,
}

// StripeNormalizer verifies and normalizes Stripe webhook deliveries.
type StripeNormalizer struct {
	webhookSecret string
}

var _ Normalizer = (*StripeNormalizer)(nil)

// NewStripeNormalizer creates a normalizer for Stripe webhook payloads.
func NewStripeNormalizer(webhookSecret string) (*StripeNormalizer, error) {
	if webhookSecret == "" {
		return nil, fmt.Errorf("stripe: webhook secret is required")
	}
	return &StripeNormalizer{webhookSecret: webhookSecret}, nil
}

// Provider returns the provider name.
func (n *StripeNormalizer) Provider() domain.Provider {
	return domain.ProviderStripe
}

// Verify authenticates the payload against the Stripe-Signature header.
// The SDK recomputes the HMAC over the raw body and compares it to the
// header's signatures; nothing in the payload is trusted before this passes.
func (n *StripeNormalizer) Verify(payload []byte, headers map[string]string) VerifyResult {
	signature := headers["Stripe-Signature"]
	if signature == "" {
		return VerifyResult{Verified: false, Err: ErrMissingSignature}
	}

	event, err := webhook.ConstructEventWithOptions(payload, signature, n.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return VerifyResult{Verified: false, Err: fmt.Errorf("%w: %v", ErrInvalidWebhookSignature, err)}
	}

	return VerifyResult{
		Verified: true,
		Event: &RawEvent{
			Type:    string(event.Type),
			ID:      event.ID,
			Payload: payload,
		},
	}
}

// ShouldProcess reports whether the Stripe event type is on the allow-list.
func (n *StripeNormalizer) ShouldProcess(providerEventType string) bool {
	_, ok := stripeEventTypes[providerEventType]
	return ok
}

// EventID returns the Stripe event id (evt_...).
func (n *StripeNormalizer) EventID(raw *RawEvent) string {
	if raw == nil {
		return ""
	}
	return raw.ID
}

// Normalize maps a verified Stripe event onto a NormalizedEvent. Returns nil
// for event types outside the allow-list.
func (n *StripeNormalizer) Normalize(raw *RawEvent) (*domain.NormalizedEvent, error) {
	eventType, ok := stripeEventTypes[raw.Type]
	if !ok {
		return nil, nil
	}

	var event stripe.Event
	if err := json.Unmarshal(raw.Payload, &event); err != nil {
		return nil, fmt.Errorf("stripe: parse event: %w", err)
	}

	normalized := &domain.NormalizedEvent{
		ID:         event.ID,
		Type:       eventType,
		OccurredAt: time.Unix(event.Created, 0).UTC(),
		Provider:   domain.ProviderStripe,
		Raw:        raw.Payload,
	}

	switch eventType {
	case domain.EventSubscriptionCreated, domain.EventSubscriptionUpdated, domain.EventSubscriptionCanceled:
		data, err := normalizeStripeSubscription(event.Data.Raw)
		if err != nil {
			return nil, err
		}
		normalized.Data = data

	case domain.EventInvoicePaid, domain.EventInvoicePaymentFailed:
		data, err := normalizeStripeInvoice(event.Data.Raw)
		if err != nil {
			return nil, err
		}
		normalized.Data = data

	case domain.EventPaymentMethodAttached, domain.EventPaymentMethodDetached:
		var pm stripe.PaymentMethod
		if err := json.Unmarshal(event.Data.Raw, &pm); err != nil {
			return nil, fmt.Errorf("stripe: parse payment method: %w", err)
		}
		data := domain.PaymentMethodEventData{
			ProviderPaymentMethodID: pm.ID,
		}
		if pm.Customer != nil {
			data.ProviderCustomerID = pm.Customer.ID
		}
		if pm.Card != nil {
			data.Brand = string(pm.Card.Brand)
			data.Last4 = pm.Card.Last4
		}
		normalized.Data = data

	case domain.EventCustomerCreated, domain.EventCustomerUpdated:
		var cus stripe.Customer
		if err := json.Unmarshal(event.Data.Raw, &cus); err != nil {
			return nil, fmt.Errorf("stripe: parse customer: %w", err)
		}
		normalized.Data = domain.CustomerEventData{
			ProviderCustomerID: cus.ID,
			Email:              cus.Email,
		}
	}

	return normalized, nil
}

// normalizeStripeSubscription maps a subscription object payload.
func normalizeStripeSubscription(raw json.RawMessage) (domain.SubscriptionEventData, error) {
	var sub stripe.Subscription
	if err := json.Unmarshal(raw, &sub); err != nil {
		return domain.SubscriptionEventData{}, fmt.Errorf("stripe: parse subscription: %w", err)
	}

	data := domain.SubscriptionEventData{
		ProviderSubscriptionID: sub.ID,
		UserID:                 sub.Metadata["user_id"],
		Status:                 mapStripeSubscriptionStatus(sub.Status),
		CancelAtPeriodEnd:      sub.CancelAtPeriodEnd,
		PlanID:                 sub.Metadata["plan_id"],
	}
	if sub.Customer != nil {
		data.ProviderCustomerID = sub.Customer.ID
	}
	if sub.CanceledAt > 0 {
		t := time.Unix(sub.CanceledAt, 0).UTC()
		data.CanceledAt = &t
	}
	if sub.Items != nil && len(sub.Items.Data) > 0 {
		item := sub.Items.Data[0]
		if item.CurrentPeriodStart > 0 {
			t := time.Unix(item.CurrentPeriodStart, 0).UTC()
			data.CurrentPeriodStart = &t
		}
		if item.CurrentPeriodEnd > 0 {
			t := time.Unix(item.CurrentPeriodEnd, 0).UTC()
			data.CurrentPeriodEnd = &t
		}
	}
	return data, nil
}

// normalizeStripeInvoice maps an invoice object payload. Amounts arrive in
// minor units already.
func normalizeStripeInvoice(raw json.RawMessage) (domain.InvoiceEventData, error) {
	var inv stripe.Invoice
	if err := json.Unmarshal(raw, &inv); err != nil {
		return domain.InvoiceEventData{}, fmt.Errorf("stripe: parse invoice: %w", err)
	}

	data := domain.InvoiceEventData{
		ProviderInvoiceID: inv.ID,
		AmountCents:       inv.Total,
		Currency:          normalizeCurrency(string(inv.Currency)),
		Status:            mapStripeInvoiceStatus(inv.Status),
	}
	if inv.Customer != nil {
		data.ProviderCustomerID = inv.Customer.ID
	}
	if sub := subscriptionFromInvoice(&inv); sub != nil {
		data.ProviderSubscriptionID = sub.ID
	}
	if inv.StatusTransitions != nil && inv.StatusTransitions.PaidAt > 0 {
		t := time.Unix(inv.StatusTransitions.PaidAt, 0).UTC()
		data.PaidAt = &t
	}
	return data, nil
}
