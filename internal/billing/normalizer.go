package billing

import (
	"github.com/iablee/iablee/internal/domain"
)

// Normalizer turns provider-specific webhook payloads into verified,
// normalized domain events. Both providers' normalizers may be registered in
// one process even though only one gateway is active, since each provider
// keeps delivering webhooks to its own endpoint.
type Normalizer interface {
	// Provider returns the provider whose payloads this normalizer accepts.
	Provider() domain.Provider

	// Verify cryptographically authenticates the payload before any data in
	// it is trusted. On success the returned VerifyResult carries the parsed
	// raw event for Normalize.
	Verify(payload []byte, headers map[string]string) VerifyResult

	// ShouldProcess reports whether the provider event type maps to a
	// normalized event. Unsupported types are acknowledged, not processed.
	ShouldProcess(providerEventType string) bool

	// Normalize maps a verified raw event to a NormalizedEvent. Returns nil
	// for event types outside the supported set; the caller then acknowledges
	// receipt without further processing.
	Normalize(raw *RawEvent) (*domain.NormalizedEvent, error)

	// EventID extracts the provider-assigned event identifier used as the
	// audit-log idempotency key. Empty when the provider supplies none.
	EventID(raw *RawEvent) string
}

// VerifyResult is the outcome of webhook signature verification.
type VerifyResult struct {
	Verified bool
	Event    *RawEvent
	Err      error
}

// RawEvent is a verified provider payload awaiting normalization.
type RawEvent struct {
	// Type is the provider's own event type string (e.g.
	// "customer.subscription.updated" or a PayU state code name).
	Type string

	// ID is the provider-assigned event id, when present.
	ID string

	// Payload is the raw verified body.
	Payload []byte

	// Fields holds decoded key/value payloads for form-encoded providers.
	Fields map[string]string
}
