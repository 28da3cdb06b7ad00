package billing

import (
	"errors"
)

// DefaultPayUCheckoutURL is PayU Latam's hosted web checkout gateway.
const DefaultPayUCheckoutURL = "https://checkout.payulatam.com/ppp-web-gateway-payu/"

// PayUConfig contains configuration for the PayU redirect-checkout gateway.
type PayUConfig struct {
	// APIKey is the merchant API key used in request and webhook signatures.
	APIKey string

	// MerchantID identifies the merchant account.
	MerchantID string

	// AccountID identifies the country-specific account under the merchant.
	AccountID string

	// CheckoutURL is the form-post target. Defaults to the production
	// gateway when empty.
	CheckoutURL string

	// ResponseURL is where the buyer's browser returns after payment.
	ResponseURL string

	// ConfirmationURL is where PayU posts server-to-server confirmations.
	ConfirmationURL string

	// Test marks transactions as test-mode ("1" in the form).
	Test bool
}

// Validate checks that required configuration is present.
func (c *PayUConfig) Validate() error {
	if c.APIKey == "" {
		return errors.New("payu: API key is required")
	}
	if c.MerchantID == "" {
		return errors.New("payu: merchant ID is required")
	}
	if c.AccountID == "" {
		return errors.New("payu: account ID is required")
	}
	if c.ResponseURL == "" || c.ConfirmationURL == "" {
		return errors.New("payu: response and confirmation URLs are required")
	}
	return nil
}
