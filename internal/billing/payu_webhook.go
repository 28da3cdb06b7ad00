package billing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/iablee/iablee/internal/domain"
)

// PayU transaction states delivered in confirmation webhooks. Numeric codes
// arrive in state_pol; some integrations deliver the textual equivalents.
const (
	payuStateApproved = "4"
	payuStateDeclined = "6"
	payuStatePending  = "7"
)

// PayUNormalizer verifies and normalizes PayU confirmation webhooks.
// Payloads arrive either URL-encoded (the documented confirmation page
// format) or as JSON objects.
type PayUNormalizer struct {
	config PayUConfig
}

var _ Normalizer = (*PayUNormalizer)(nil)

// NewPayUNormalizer creates a normalizer for PayU confirmation payloads.
func NewPayUNormalizer(config PayUConfig) (*PayUNormalizer, error) {
	if config.APIKey == "" || config.MerchantID == "" {
		return nil, fmt.Errorf("payu: API key and merchant ID are required")
	}
	return &PayUNormalizer{config: config}, nil
}

// Provider returns the provider name.
func (n *PayUNormalizer) Provider() domain.Provider {
	return domain.ProviderPayU
}

// Verify recomputes the confirmation signature
// md5(apiKey~merchantId~referenceCode~value~currency~state) and compares it,
// case-insensitively, against the signature field in the payload. PayU sends
// the signature under several field names depending on integration age.
func (n *PayUNormalizer) Verify(payload []byte, headers map[string]string) VerifyResult {
	fields, err := decodePayUPayload(payload)
	if err != nil {
		return VerifyResult{Verified: false, Err: err}
	}

	supplied := firstField(fields, "sign", "signature", "firma")
	if supplied == "" {
		return VerifyResult{Verified: false, Err: ErrMissingSignature}
	}

	reference := firstField(fields, "reference_sale", "referenceCode", "reference_code")
	rawValue := firstField(fields, "value", "TX_VALUE", "amount")
	currency := firstField(fields, "currency")
	state := payuState(fields)

	cents, err := parseDecimalAmount(rawValue)
	if err != nil {
		return VerifyResult{Verified: false, Err: fmt.Errorf("payu: %w", err)}
	}

	expected := payuSignature(
		n.config.APIKey,
		n.config.MerchantID,
		reference,
		formatAmountCents(cents),
		normalizeCurrency(currency),
		state,
	)
	if !strings.EqualFold(expected, supplied) {
		return VerifyResult{Verified: false, Err: ErrInvalidWebhookSignature}
	}

	return VerifyResult{
		Verified: true,
		Event: &RawEvent{
			Type:    state,
			ID:      payuEventID(fields),
			Payload: payload,
			Fields:  fields,
		},
	}
}

// ShouldProcess reports whether the state maps to a known outcome.
func (n *PayUNormalizer) ShouldProcess(providerEventType string) bool {
	switch providerEventType {
	case payuStateApproved, payuStateDeclined, payuStatePending:
		return true
	}
	return false
}

// EventID returns PayU's transaction id, falling back to the merchant
// reference when absent.
func (n *PayUNormalizer) EventID(raw *RawEvent) string {
	if raw == nil {
		return ""
	}
	return raw.ID
}

// Normalize maps a verified confirmation onto a NormalizedEvent:
//
//	PENDING  -> subscription.updated with incomplete status (no invoice yet)
//	APPROVED -> invoice.paid
//	DECLINED -> invoice.payment_failed with an open invoice
//
// Any other state returns nil and is acknowledged without processing.
func (n *PayUNormalizer) Normalize(raw *RawEvent) (*domain.NormalizedEvent, error) {
	if raw == nil || !n.ShouldProcess(raw.Type) {
		return nil, nil
	}
	fields := raw.Fields

	reference := firstField(fields, "reference_sale", "referenceCode", "reference_code")
	cents, err := parseDecimalAmount(firstField(fields, "value", "TX_VALUE", "amount"))
	if err != nil {
		return nil, fmt.Errorf("payu: %w", err)
	}
	currency := normalizeCurrency(firstField(fields, "currency"))
	occurredAt := payuOccurredAt(fields)

	// The checkout form sends the local user and plan ids as extra1/extra2;
	// PayU echoes them back in the confirmation. They are the only
	// attribution PayU offers, since it never issues customer references.
	userRef := firstField(fields, "extra1")
	planRef := firstField(fields, "extra2")

	normalized := &domain.NormalizedEvent{
		ID:         payuEventID(fields),
		OccurredAt: occurredAt,
		Provider:   domain.ProviderPayU,
		Raw:        raw.Payload,
	}

	switch raw.Type {
	case payuStatePending:
		// The redirect flow has not produced a billable invoice yet; the
		// subscription stays incomplete until an approved confirmation.
		normalized.Type = domain.EventSubscriptionUpdated
		normalized.Data = domain.SubscriptionEventData{
			ProviderSubscriptionID: reference,
			UserID:                 userRef,
			Status:                 domain.SubscriptionIncomplete,
			PlanID:                 planRef,
		}

	case payuStateApproved:
		paidAt := occurredAt
		normalized.Type = domain.EventInvoicePaid
		normalized.Data = domain.InvoiceEventData{
			ProviderInvoiceID:      payuEventID(fields),
			ProviderSubscriptionID: reference,
			UserID:                 userRef,
			AmountCents:            cents,
			Currency:               currency,
			Status:                 domain.InvoicePaid,
			PaidAt:                 &paidAt,
		}

	case payuStateDeclined:
		normalized.Type = domain.EventInvoicePaymentFailed
		normalized.Data = domain.InvoiceEventData{
			ProviderInvoiceID:      payuEventID(fields),
			ProviderSubscriptionID: reference,
			UserID:                 userRef,
			AmountCents:            cents,
			Currency:               currency,
			Status:                 domain.InvoiceOpen,
		}
	}

	return normalized, nil
}

// decodePayUPayload accepts URL-encoded bodies or JSON objects and flattens
// both into a string map.
func decodePayUPayload(payload []byte) (map[string]string, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("payu: empty payload")
	}

	if trimmed[0] == '{' {
		var obj map[string]any
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return nil, fmt.Errorf("payu: parse payload: %w", err)
		}
		fields := make(map[string]string, len(obj))
		for k, v := range obj {
			switch value := v.(type) {
			case string:
				fields[k] = value
			case float64:
				fields[k] = trimFloat(value)
			case bool:
				if value {
					fields[k] = "true"
				} else {
					fields[k] = "false"
				}
			}
		}
		return fields, nil
	}

	values, err := url.ParseQuery(string(trimmed))
	if err != nil {
		return nil, fmt.Errorf("payu: parse payload: %w", err)
	}
	fields := make(map[string]string, len(values))
	for k := range values {
		fields[k] = values.Get(k)
	}
	return fields, nil
}

// trimFloat renders a JSON number without a trailing ".000000".
func trimFloat(v float64) string {
	s := fmt.Sprintf("%f", v)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	if s == "" || s == "-" {
		return "0"
	}
	return s
}

// firstField returns the first non-empty value among the aliases.
func firstField(fields map[string]string, names ...string) string {
	for _, name := range names {
		if v := fields[name]; v != "" {
			return v
		}
	}
	return ""
}

// payuState resolves the transaction state, mapping textual states from
// older integrations onto the numeric codes.
func payuState(fields map[string]string) string {
	if v := firstField(fields, "state_pol", "polTransactionState"); v != "" {
		return v
	}
	switch strings.ToUpper(firstField(fields, "lapTransactionState", "transactionState", "state")) {
	case "APPROVED":
		return payuStateApproved
	case "DECLINED", "REJECTED":
		return payuStateDeclined
	case "PENDING":
		return payuStatePending
	}
	return ""
}

// payuEventID resolves the provider event identifier used for idempotency.
func payuEventID(fields map[string]string) string {
	return firstField(fields, "transaction_id", "transactionId", "reference_pol", "reference_sale", "referenceCode")
}

// payuOccurredAt parses the transaction date when present.
func payuOccurredAt(fields map[string]string) time.Time {
	raw := firstField(fields, "transaction_date", "operation_date", "processingDate")
	if raw != "" {
		for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02T15:04:05", time.RFC3339} {
			if t, err := time.Parse(layout, raw); err == nil {
				return t.UTC()
			}
		}
	}
	return time.Now().UTC()
}
