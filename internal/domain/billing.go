package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Provider identifies a payment provider integration.
type Provider string

const (
	// ProviderStripe is the card-processing provider (vaulted payment
	// methods, direct subscription lifecycle).
	ProviderStripe Provider = "stripe"

	// ProviderPayU is the Latin-American redirect-checkout provider.
	// It cannot vault payment methods; its only productive capability is
	// building a signed off-site checkout form.
	ProviderPayU Provider = "payu"
)

// Valid reports whether p is a known provider.
func (p Provider) Valid() bool {
	return p == ProviderStripe || p == ProviderPayU
}

// SupportedCurrencies are the ISO 4217 codes plans may be priced in.
var SupportedCurrencies = []string{"USD", "EUR", "COP"}

// IsSupportedCurrency reports whether code is one of the supported currencies.
func IsSupportedCurrency(code string) bool {
	for _, c := range SupportedCurrencies {
		if c == code {
			return true
		}
	}
	return false
}

// UnlimitedLimit is the sentinel for numeric plan limits with no cap.
const UnlimitedLimit = -1

// PlanInterval is the billing period of a plan.
type PlanInterval string

const (
	IntervalMonth PlanInterval = "month"
	IntervalYear  PlanInterval = "year"
)

// PlanFeatures are the entitlements a plan grants. Numeric limits use
// UnlimitedLimit (-1) as the no-cap sentinel.
type PlanFeatures struct {
	MaxAssets        int  `json:"max_assets"`
	MaxBeneficiaries int  `json:"max_beneficiaries"`
	MaxStorageMB     int  `json:"max_storage_mb"`
	MaxFileSizeMB    int  `json:"max_file_size_mb"`
	PrioritySupport  bool `json:"priority_support"`
	AdvancedSecurity bool `json:"advanced_security"`
}

// PlanDefinition is a priced tier from the plan catalog. Immutable from the
// billing service's perspective.
type PlanDefinition struct {
	ID          string
	Name        string
	Currency    string
	AmountCents int64
	Interval    PlanInterval
	Features    PlanFeatures

	// ProviderPriceMap holds each provider's external price identifier for
	// this plan. A missing entry for the active provider is a configuration
	// error, surfaced before any network call.
	ProviderPriceMap map[Provider]string
}

// FreePlanID is the plan substituted when a user has no active subscription.
const FreePlanID = "plan_free"

// CustomerRef is a weak reference to a customer record inside one specific
// provider's system. Never used across providers.
type CustomerRef struct {
	Provider           Provider
	ProviderCustomerID string
}

// PaymentMethodToken is a provider-issued opaque token for a payment
// instrument plus display metadata. Raw card data never enters this system.
type PaymentMethodToken struct {
	Provider Provider
	Token    string
	Brand    string
	Last4    string
	ExpMonth int32
	ExpYear  int32
}

// SubscriptionStatus is the lifecycle state of a subscription.
type SubscriptionStatus string

const (
	SubscriptionActive     SubscriptionStatus = "active"
	SubscriptionPastDue    SubscriptionStatus = "past_due"
	SubscriptionCanceled   SubscriptionStatus = "canceled"
	SubscriptionIncomplete SubscriptionStatus = "incomplete"
	SubscriptionTrialing   SubscriptionStatus = "trialing"
	SubscriptionUnpaid     SubscriptionStatus = "unpaid"
)

// ActiveSubscriptionStatuses are the statuses that count as "active" for
// limit-checking purposes. At most one subscription per user carries one of
// these statuses.
var ActiveSubscriptionStatuses = []SubscriptionStatus{
	SubscriptionActive,
	SubscriptionTrialing,
	SubscriptionPastDue,
}

// IsActive reports whether the status counts as active for limit checks.
func (s SubscriptionStatus) IsActive() bool {
	for _, a := range ActiveSubscriptionStatuses {
		if s == a {
			return true
		}
	}
	return false
}

// CanTransitionTo reports whether the status state machine permits moving
// from s to next. Canceled is terminal.
func (s SubscriptionStatus) CanTransitionTo(next SubscriptionStatus) bool {
	if s == next {
		return true
	}
	switch s {
	case SubscriptionCanceled:
		return false
	case SubscriptionIncomplete:
		return next == SubscriptionActive || next == SubscriptionPastDue || next == SubscriptionCanceled
	case SubscriptionActive:
		return next == SubscriptionPastDue || next == SubscriptionCanceled || next == SubscriptionUnpaid
	case SubscriptionPastDue:
		return next == SubscriptionActive || next == SubscriptionCanceled || next == SubscriptionUnpaid
	case SubscriptionTrialing:
		return next == SubscriptionActive || next == SubscriptionCanceled || next == SubscriptionPastDue
	case SubscriptionUnpaid:
		return next == SubscriptionActive || next == SubscriptionCanceled
	}
	return false
}

// Subscription is the billing core's subscription entity. Historical and
// canceled rows are retained, never hard-deleted.
type Subscription struct {
	ID                     uuid.UUID
	UserID                 uuid.UUID
	PlanID                 string
	Status                 SubscriptionStatus
	Provider               Provider
	ProviderSubscriptionID string
	ProviderCustomerID     string
	CurrentPeriodStart     *time.Time
	CurrentPeriodEnd       *time.Time
	CancelAtPeriodEnd      bool
	CanceledAt             *time.Time
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// PaymentMethod is a stored, tokenized payment instrument. Within a
// (UserID, Provider) pair at most one row has IsDefault set; the service
// enforces this with clear-then-set.
type PaymentMethod struct {
	ID                 uuid.UUID
	UserID             uuid.UUID
	Provider           Provider
	ProviderCustomerID string
	Token              string
	Brand              string
	Last4              string
	ExpMonth           int32
	ExpYear            int32
	IsDefault          bool
	CreatedAt          time.Time
}

// InvoiceStatus is the settlement state of an invoice.
type InvoiceStatus string

const (
	InvoicePaid          InvoiceStatus = "paid"
	InvoiceOpen          InvoiceStatus = "open"
	InvoiceUncollectible InvoiceStatus = "uncollectible"
	InvoiceVoid          InvoiceStatus = "void"
	InvoiceDraft         InvoiceStatus = "draft"
)

// Invoice is created and updated only through webhook events, upserted by
// ProviderInvoiceID for idempotency.
type Invoice struct {
	ID                uuid.UUID
	UserID            uuid.UUID
	SubscriptionID    *uuid.UUID
	Provider          Provider
	ProviderInvoiceID string
	AmountCents       int64
	Currency          string
	Status            InvoiceStatus
	IssuedAt          time.Time
	PaidAt            *time.Time
}

// NormalizedEventType enumerates the domain events webhook normalizers may
// produce. Provider payloads outside this set are acknowledged and ignored.
type NormalizedEventType string

const (
	EventSubscriptionCreated   NormalizedEventType = "subscription.created"
	EventSubscriptionUpdated   NormalizedEventType = "subscription.updated"
	EventSubscriptionCanceled  NormalizedEventType = "subscription.canceled"
	EventInvoicePaid           NormalizedEventType = "invoice.paid"
	EventInvoicePaymentFailed  NormalizedEventType = "invoice.payment_failed"
	EventPaymentMethodAttached NormalizedEventType = "payment_method.attached"
	EventPaymentMethodDetached NormalizedEventType = "payment_method.detached"
	EventCustomerCreated       NormalizedEventType = "customer.created"
	EventCustomerUpdated       NormalizedEventType = "customer.updated"
)

// SubscriptionEventData is the payload of subscription.* events.
type SubscriptionEventData struct {
	ProviderSubscriptionID string
	ProviderCustomerID     string

	// UserID is the local user id echoed back by providers whose checkout
	// form carried it. Attribution fallback for providers with no customer
	// vault.
	UserID string

	Status SubscriptionStatus
	PlanID string
	CurrentPeriodStart     *time.Time
	CurrentPeriodEnd       *time.Time
	CancelAtPeriodEnd      bool
	CanceledAt             *time.Time
}

// InvoiceEventData is the payload of invoice.* events.
type InvoiceEventData struct {
	ProviderInvoiceID      string
	ProviderCustomerID     string
	ProviderSubscriptionID string

	// UserID is the echoed-back local user id, when the checkout carried
	// one. See SubscriptionEventData.UserID.
	UserID string

	AmountCents int64
	Currency               string
	Status                 InvoiceStatus
	PaidAt                 *time.Time
}

// PaymentMethodEventData is the payload of payment_method.* events.
type PaymentMethodEventData struct {
	ProviderPaymentMethodID string
	ProviderCustomerID      string
	Brand                   string
	Last4                   string
}

// CustomerEventData is the payload of customer.* events.
type CustomerEventData struct {
	ProviderCustomerID string
	Email              string
}

// NormalizedEvent is a verified, provider-agnostic webhook event. It is
// constructed per delivery, recorded once in the append-only audit log, then
// dispatched and discarded.
type NormalizedEvent struct {
	// ID is the provider-assigned event identifier, the idempotency key of
	// the audit log.
	ID string

	Type       NormalizedEventType
	OccurredAt time.Time
	Provider   Provider

	// Raw is the verified provider payload, retained for audit.
	Raw json.RawMessage

	// Data is one of SubscriptionEventData, InvoiceEventData,
	// PaymentMethodEventData or CustomerEventData, matching Type.
	Data any
}

// SubscriptionData returns the event payload as SubscriptionEventData.
func (e *NormalizedEvent) SubscriptionData() (SubscriptionEventData, bool) {
	d, ok := e.Data.(SubscriptionEventData)
	return d, ok
}

// InvoiceData returns the event payload as InvoiceEventData.
func (e *NormalizedEvent) InvoiceData() (InvoiceEventData, bool) {
	d, ok := e.Data.(InvoiceEventData)
	return d, ok
}
