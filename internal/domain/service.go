package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// CreateSubscriptionParams are the inputs for starting a paid subscription.
type CreateSubscriptionParams struct {
	UserID             uuid.UUID
	PlanID             string
	PaymentMethodToken string
	Email              string
	Name               string
}

// AttachPaymentMethodParams are the inputs for storing a tokenized instrument.
type AttachPaymentMethodParams struct {
	UserID      uuid.UUID
	Email       string
	Name        string
	Token       string
	MakeDefault bool
}

// CheckoutParams are the inputs for a provider-hosted checkout.
type CheckoutParams struct {
	UserID     uuid.UUID
	PlanID     string
	Email      string
	Name       string
	SuccessURL string
	CancelURL  string
}

// SubscriptionCheckout is the result of creating a subscription. ClientSecret
// is set when the provider requires client-side payment confirmation before
// the subscription activates.
type SubscriptionCheckout struct {
	Subscription *Subscription
	ClientSecret string
}

// CheckoutIntent describes how the frontend hands the buyer to a hosted
// checkout: either a redirect URL or a signed form to auto-submit.
type CheckoutIntent struct {
	SessionID   string            `json:"session_id"`
	RedirectURL string            `json:"redirect_url,omitempty"`
	FormAction  string            `json:"form_action,omitempty"`
	FormFields  map[string]string `json:"form_fields,omitempty"`
}

// BillingService orchestrates plans, subscriptions, payment methods, invoices
// and webhook event application on top of a payment gateway.
type BillingService interface {
	ListPlans(ctx context.Context) ([]PlanDefinition, error)
	GetPlan(ctx context.Context, planID string) (*PlanDefinition, error)

	// GetSubscription returns the user's active subscription, or a synthetic
	// free-plan subscription when none exists.
	GetSubscription(ctx context.Context, userID uuid.UUID) (*Subscription, error)

	CreateSubscription(ctx context.Context, params CreateSubscriptionParams) (*SubscriptionCheckout, error)
	ChangePlan(ctx context.Context, userID uuid.UUID, planID string) (*Subscription, error)
	CancelSubscription(ctx context.Context, userID uuid.UUID, atPeriodEnd bool) (*Subscription, error)
	ReactivateSubscription(ctx context.Context, userID uuid.UUID) (*Subscription, error)

	AttachPaymentMethod(ctx context.Context, params AttachPaymentMethodParams) (*PaymentMethod, error)
	SetDefaultPaymentMethod(ctx context.Context, userID, paymentMethodID uuid.UUID) error
	DetachPaymentMethod(ctx context.Context, userID, paymentMethodID uuid.UUID) error
	ListPaymentMethods(ctx context.Context, userID uuid.UUID) ([]PaymentMethod, error)

	ListInvoices(ctx context.Context, userID uuid.UUID, limit int32) ([]Invoice, error)

	CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*CheckoutIntent, error)
	CreatePortalSession(ctx context.Context, userID uuid.UUID, returnURL string) (string, error)

	// HandleWebhookEvent records the event in the append-only audit log and
	// applies it. Duplicate deliveries are acknowledged without reprocessing.
	HandleWebhookEvent(ctx context.Context, event *NormalizedEvent) error
}

// PlanUsage is a user's current consumption against plan limits.
type PlanUsage struct {
	PlanID           string `json:"plan_id"`
	Assets           int64  `json:"assets"`
	MaxAssets        int    `json:"max_assets"`
	Beneficiaries    int64  `json:"beneficiaries"`
	MaxBeneficiaries int    `json:"max_beneficiaries"`
	StorageBytes     int64  `json:"storage_bytes"`
	MaxStorageMB     int    `json:"max_storage_mb"`
}

// LimitService enforces plan entitlements against current usage.
type LimitService interface {
	CanCreateAsset(ctx context.Context, userID uuid.UUID) error
	CanCreateBeneficiary(ctx context.Context, userID uuid.UUID) error
	CanStoreBytes(ctx context.Context, userID uuid.UUID, sizeBytes int64) error
	GetUsage(ctx context.Context, userID uuid.UUID) (*PlanUsage, error)
}

// Account is a registered user of the vault.
type Account struct {
	ID        uuid.UUID
	Email     string
	FullName  string
	CreatedAt time.Time
}

// UserService handles registration, authentication and sessions.
type UserService interface {
	Register(ctx context.Context, email, password, fullName string) (*Account, error)
	Authenticate(ctx context.Context, email, password string) (*Account, error)
	CreateSession(ctx context.Context, userID uuid.UUID) (string, error)
	GetUserBySessionToken(ctx context.Context, token string) (*Account, error)
	DeleteSession(ctx context.Context, token string) error

	// PurgeExpiredSessions removes sessions past their expiry and returns how
	// many were deleted. Meant to run periodically.
	PurgeExpiredSessions(ctx context.Context) (int64, error)
}
