package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iablee/iablee/internal/billing"
	"github.com/iablee/iablee/internal/domain"
)

const (
	testStripeSecret = "whsec_test_secret"
	testPayUAPIKey   = "4Vj8eK4rloUd272L48hsrarnUA"
	testPayUMerchant = "508029"
)

// stubBillingService fails loudly on anything except webhook application.
type stubBillingService struct {
	handleFunc func(ctx context.Context, event *domain.NormalizedEvent) error
	events     []*domain.NormalizedEvent
}

var _ domain.BillingService = (*stubBillingService)(nil)

func (s *stubBillingService) ListPlans(context.Context) ([]domain.PlanDefinition, error) {
	return nil, errors.New("not implemented")
}
func (s *stubBillingService) GetPlan(context.Context, string) (*domain.PlanDefinition, error) {
	return nil, errors.New("not implemented")
}
func (s *stubBillingService) GetSubscription(context.Context, uuid.UUID) (*domain.Subscription, error) {
	return nil, errors.New("not implemented")
}
func (s *stubBillingService) CreateSubscription(context.Context, domain.CreateSubscriptionParams) (*domain.SubscriptionCheckout, error) {
	return nil, errors.New("not implemented")
}
func (s *stubBillingService) ChangePlan(context.Context, uuid.UUID, string) (*domain.Subscription, error) {
	return nil, errors.New("not implemented")
}
func (s *stubBillingService) CancelSubscription(context.Context, uuid.UUID, bool) (*domain.Subscription, error) {
	return nil, errors.New("not implemented")
}
func (s *stubBillingService) ReactivateSubscription(context.Context, uuid.UUID) (*domain.Subscription, error) {
	return nil, errors.New("not implemented")
}
func (s *stubBillingService) AttachPaymentMethod(context.Context, domain.AttachPaymentMethodParams) (*domain.PaymentMethod, error) {
	return nil, errors.New("not implemented")
}
func (s *stubBillingService) SetDefaultPaymentMethod(context.Context, uuid.UUID, uuid.UUID) error {
	return errors.New("not implemented")
}
func (s *stubBillingService) DetachPaymentMethod(context.Context, uuid.UUID, uuid.UUID) error {
	return errors.New("not implemented")
}
func (s *stubBillingService) ListPaymentMethods(context.Context, uuid.UUID) ([]domain.PaymentMethod, error) {
	return nil, errors.New("not implemented")
}
func (s *stubBillingService) ListInvoices(context.Context, uuid.UUID, int32) ([]domain.Invoice, error) {
	return nil, errors.New("not implemented")
}
func (s *stubBillingService) CreateCheckoutSession(context.Context, domain.CheckoutParams) (*domain.CheckoutIntent, error) {
	return nil, errors.New("not implemented")
}
func (s *stubBillingService) CreatePortalSession(context.Context, uuid.UUID, string) (string, error) {
	return "", errors.New("not implemented")
}
func (s *stubBillingService) HandleWebhookEvent(ctx context.Context, event *domain.NormalizedEvent) error {
	s.events = append(s.events, event)
	if s.handleFunc != nil {
		return s.handleFunc(ctx, event)
	}
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func signStripePayload(payload []byte, secret string, at time.Time) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", at.Unix(), payload)
	return fmt.Sprintf("t=%d,v1=%s", at.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func postWebhook(t *testing.T, h *Handler, payload []byte, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/webhooks/test", bytes.NewReader(payload))
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	rec := httptest.NewRecorder()
	h.HandleWebhook(rec, req)
	return rec
}

func TestStripeWebhookHandler(t *testing.T) {
	normalizer, err := billing.NewStripeNormalizer(testStripeSecret)
	require.NoError(t, err)

	subscriptionPayload := []byte(`{
		"id": "evt_wh_1",
		"type": "customer.subscription.updated",
		"created": 1756300000,
		"data": {
			"object": {
				"id": "sub_123",
				"customer": "cus_123",
				"status": "active",
				"metadata": {"plan_id": "plan_premium"},
				"items": {"data": [{"current_period_start": 1756300000, "current_period_end": 1758900000}]}
			}
		}
	}`)

	t.Run("valid signature applies the event and returns 200", func(t *testing.T) {
		svc := &stubBillingService{}
		h := NewHandler(normalizer, svc, discardLogger())

		rec := postWebhook(t, h, subscriptionPayload, map[string]string{
			"Stripe-Signature": signStripePayload(subscriptionPayload, testStripeSecret, time.Now()),
		})

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"received": true}`, rec.Body.String())
		require.Len(t, svc.events, 1)
		assert.Equal(t, "evt_wh_1", svc.events[0].ID)
		assert.Equal(t, domain.EventSubscriptionUpdated, svc.events[0].Type)
	})

	t.Run("bad signature returns 401 and applies nothing", func(t *testing.T) {
		svc := &stubBillingService{}
		h := NewHandler(normalizer, svc, discardLogger())

		rec := postWebhook(t, h, subscriptionPayload, map[string]string{
			"Stripe-Signature": signStripePayload(subscriptionPayload, "whsec_wrong", time.Now()),
		})

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Empty(t, svc.events)
	})

	t.Run("missing signature returns 401", func(t *testing.T) {
		svc := &stubBillingService{}
		h := NewHandler(normalizer, svc, discardLogger())

		rec := postWebhook(t, h, subscriptionPayload, nil)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Empty(t, svc.events)
	})

	t.Run("unhandled event type is acknowledged", func(t *testing.T) {
		payload := []byte(`{"id": "evt_wh_2", "type": "account.updated", "data": {"object": {}}}`)
		svc := &stubBillingService{}
		h := NewHandler(normalizer, svc, discardLogger())

		rec := postWebhook(t, h, payload, map[string]string{
			"Stripe-Signature": signStripePayload(payload, testStripeSecret, time.Now()),
		})

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, svc.events)
	})

	t.Run("processing failure is still acknowledged", func(t *testing.T) {
		svc := &stubBillingService{
			handleFunc: func(ctx context.Context, event *domain.NormalizedEvent) error {
				return errors.New("database unavailable")
			},
		}
		h := NewHandler(normalizer, svc, discardLogger())

		rec := postWebhook(t, h, subscriptionPayload, map[string]string{
			"Stripe-Signature": signStripePayload(subscriptionPayload, testStripeSecret, time.Now()),
		})

		assert.Equal(t, http.StatusOK, rec.Code,
			"the provider must not retry deliveries that fail locally")
	})
}

func TestPayUWebhookHandler(t *testing.T) {
	config := billing.PayUConfig{
		APIKey:     testPayUAPIKey,
		MerchantID: testPayUMerchant,
		AccountID:  "512321",
		Test:       true,
	}
	normalizer, err := billing.NewPayUNormalizer(config)
	require.NoError(t, err)

	confirmation := func(state string) []byte {
		reference := "iablee-plan_premium-" + uuid.New().String()
		amount := "19.99"
		currency := "USD"
		sig := md5.Sum([]byte(strings.Join([]string{
			testPayUAPIKey, testPayUMerchant, reference, amount, currency, state,
		}, "~")))

		form := url.Values{}
		form.Set("merchant_id", testPayUMerchant)
		form.Set("reference_sale", reference)
		form.Set("value", amount)
		form.Set("currency", currency)
		form.Set("state_pol", state)
		form.Set("transaction_id", uuid.New().String())
		form.Set("sign", hex.EncodeToString(sig[:]))
		return []byte(form.Encode())
	}

	t.Run("approved confirmation applies an invoice event", func(t *testing.T) {
		svc := &stubBillingService{}
		h := NewHandler(normalizer, svc, discardLogger())

		rec := postWebhook(t, h, confirmation("4"), map[string]string{
			"Content-Type": "application/x-www-form-urlencoded",
		})

		assert.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, svc.events, 1)
		assert.Equal(t, domain.EventInvoicePaid, svc.events[0].Type)
		assert.Equal(t, domain.ProviderPayU, svc.events[0].Provider)
	})

	t.Run("tampered confirmation returns 401", func(t *testing.T) {
		payload := confirmation("4")
		tampered := bytes.Replace(payload, []byte("19.99"), []byte("0.01"), 1)

		svc := &stubBillingService{}
		h := NewHandler(normalizer, svc, discardLogger())

		rec := postWebhook(t, h, tampered, map[string]string{
			"Content-Type": "application/x-www-form-urlencoded",
		})

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Empty(t, svc.events)
	})
}
