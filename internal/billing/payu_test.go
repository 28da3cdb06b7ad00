package billing

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iablee/iablee/internal/domain"
)

func testPayUConfig() PayUConfig {
	return PayUConfig{
		APIKey:          "4Vj8eK4rloUd272L48hsrarnUA",
		MerchantID:      "508029",
		AccountID:       "512321",
		ResponseURL:     "https://app.example.com/billing/payu/response",
		ConfirmationURL: "https://app.example.com/webhooks/payu",
		Test:            true,
	}
}

func testPayUPlan() *domain.PlanDefinition {
	return &domain.PlanDefinition{
		ID:          "plan_premium",
		Name:        "Premium",
		Currency:    "USD",
		AmountCents: 1999,
		Interval:    "month",
		ProviderPriceMap: map[domain.Provider]string{
			domain.ProviderPayU: "payu_premium_monthly",
		},
	}
}

func TestPayUConfig_Validation(t *testing.T) {
	t.Run("accepts valid configuration", func(t *testing.T) {
		cfg := testPayUConfig()
		assert.NoError(t, cfg.Validate())
	})

	t.Run("requires API key", func(t *testing.T) {
		cfg := testPayUConfig()
		cfg.APIKey = ""
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "API key")
	})

	t.Run("requires merchant ID", func(t *testing.T) {
		cfg := testPayUConfig()
		cfg.MerchantID = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("requires confirmation URL", func(t *testing.T) {
		cfg := testPayUConfig()
		cfg.ConfirmationURL = ""
		assert.Error(t, cfg.Validate())
	})
}

func TestPayUGateway_CreateCheckoutSession(t *testing.T) {
	gateway, err := NewPayUGateway(testPayUConfig())
	require.NoError(t, err)

	t.Run("builds signed checkout form", func(t *testing.T) {
		session, err := gateway.CreateCheckoutSession(context.Background(), CheckoutSessionParams{
			Plan:       testPayUPlan(),
			BuyerEmail: "buyer@example.com",
			BuyerName:  "Ana Buyer",
			UserID:     "user_123",
		})
		require.NoError(t, err)
		require.NotNil(t, session)

		assert.Equal(t, DefaultPayUCheckoutURL, session.FormAction)
		assert.Empty(t, session.URL, "form-post provider must not return a redirect URL")

		fields := session.FormFields
		assert.Equal(t, "508029", fields["merchantId"])
		assert.Equal(t, "512321", fields["accountId"])
		assert.Equal(t, "19.99", fields["amount"])
		assert.Equal(t, "USD", fields["currency"])
		assert.Equal(t, "1", fields["test"])
		assert.Equal(t, "buyer@example.com", fields["buyerEmail"])
		assert.Equal(t, "user_123", fields["extra1"])
		assert.Equal(t, "plan_premium", fields["extra2"])
		assert.True(t, strings.HasPrefix(fields["referenceCode"], "iablee-plan_premium-"))

		// The signature must be the md5 of apiKey~merchantId~referenceCode~amount~currency.
		raw := strings.Join([]string{
			"4Vj8eK4rloUd272L48hsrarnUA",
			"508029",
			fields["referenceCode"],
			"19.99",
			"USD",
		}, "~")
		sum := md5.Sum([]byte(raw))
		assert.Equal(t, hex.EncodeToString(sum[:]), fields["signature"])
	})

	t.Run("generates a fresh reference per attempt", func(t *testing.T) {
		first, err := gateway.CreateCheckoutSession(context.Background(), CheckoutSessionParams{Plan: testPayUPlan()})
		require.NoError(t, err)
		second, err := gateway.CreateCheckoutSession(context.Background(), CheckoutSessionParams{Plan: testPayUPlan()})
		require.NoError(t, err)
		assert.NotEqual(t, first.ID, second.ID)
	})

	t.Run("fails fast on missing price mapping", func(t *testing.T) {
		plan := testPayUPlan()
		plan.ProviderPriceMap = map[domain.Provider]string{
			domain.ProviderStripe: "price_123",
		}
		session, err := gateway.CreateCheckoutSession(context.Background(), CheckoutSessionParams{Plan: plan})
		assert.Nil(t, session)
		require.Error(t, err)
		assert.True(t, IsMissingPriceMapping(err))
	})

	t.Run("rejects nil plan", func(t *testing.T) {
		_, err := gateway.CreateCheckoutSession(context.Background(), CheckoutSessionParams{})
		assert.Error(t, err)
	})
}

func TestPayUGateway_UnsupportedOperations(t *testing.T) {
	gateway, err := NewPayUGateway(testPayUConfig())
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("customer vault operations", func(t *testing.T) {
		_, err := gateway.CreateCustomer(ctx, CreateCustomerParams{Email: "a@b.co"})
		assert.True(t, IsUnsupported(err))

		_, err = gateway.AttachPaymentMethod(ctx, "cus_1", "tok_1")
		assert.True(t, IsUnsupported(err))

		assert.True(t, IsUnsupported(gateway.SetDefaultPaymentMethod(ctx, "cus_1", "tok_1")))
		assert.True(t, IsUnsupported(gateway.DetachPaymentMethod(ctx, "tok_1")))
	})

	t.Run("subscription mutations", func(t *testing.T) {
		_, err := gateway.CreateSubscription(ctx, CreateSubscriptionParams{Plan: testPayUPlan()})
		assert.True(t, IsUnsupported(err))

		_, err = gateway.UpdateSubscription(ctx, UpdateSubscriptionParams{ProviderSubscriptionID: "sub_1", Plan: testPayUPlan()})
		assert.True(t, IsUnsupported(err))

		_, err = gateway.CancelSubscription(ctx, "sub_1", true)
		assert.True(t, IsUnsupported(err))

		_, err = gateway.ReactivateSubscription(ctx, "sub_1")
		assert.True(t, IsUnsupported(err))
	})

	t.Run("invoice operations", func(t *testing.T) {
		_, err := gateway.GetInvoices(ctx, "cus_1", 10)
		assert.True(t, IsUnsupported(err))

		_, err = gateway.GetInvoice(ctx, "inv_1")
		assert.True(t, IsUnsupported(err))

		_, err = gateway.RetryInvoicePayment(ctx, "inv_1")
		assert.True(t, IsUnsupported(err))

		_, err = gateway.CreatePortalSession(ctx, "cus_1", "https://app.example.com")
		assert.True(t, IsUnsupported(err))
	})

	t.Run("errors carry the provider and operation", func(t *testing.T) {
		_, err := gateway.CreateSubscription(ctx, CreateSubscriptionParams{Plan: testPayUPlan()})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "payu")
		assert.Contains(t, err.Error(), "create_subscription")
	})
}
