package billing

import (
	"errors"
	"strings"
)

// StripeConfig contains configuration for the Stripe gateway.
type StripeConfig struct {
	// SecretKey is the Stripe secret key (sk_test_... or sk_live_...)
	SecretKey string

	// WebhookSecret is the webhook signing secret (whsec_...)
	// Used to verify webhook signatures from Stripe.
	WebhookSecret string
}

// Validate checks that required configuration is present.
func (c *StripeConfig) Validate() error {
	if c.SecretKey == "" {
		return errors.New("stripe: secret key is required")
	}
	if c.WebhookSecret == "" {
		return errors.New("stripe: webhook secret is required")
	}
	return nil
}

// IsTestMode returns true if using test mode API keys.
func (c *StripeConfig) IsTestMode() bool {
	return strings.HasPrefix(c.SecretKey, "sk_test_")
}
