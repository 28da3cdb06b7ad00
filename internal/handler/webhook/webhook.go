// Package webhook implements the provider webhook endpoints.
//
// Response policy: 401 is returned only when signature verification fails.
// Everything else (unknown event types, malformed payloads that passed the
// signature check, processing failures) is acknowledged with 200 so the
// provider stops redelivering. Processing failures are recoverable from the
// audit log.
package webhook

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/iablee/iablee/internal/billing"
	"github.com/iablee/iablee/internal/domain"
	"github.com/iablee/iablee/internal/handler"
	"github.com/iablee/iablee/internal/telemetry"
)

// Handler processes webhook deliveries for a single provider.
type Handler struct {
	normalizer billing.Normalizer
	billing    domain.BillingService
	logger     *slog.Logger
}

// NewHandler creates a webhook handler around the provider's normalizer.
func NewHandler(normalizer billing.Normalizer, billingService domain.BillingService, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		normalizer: normalizer,
		billing:    billingService,
		logger:     logger.With(slog.String("provider", string(normalizer.Provider()))),
	}
}

// HandleWebhook is the POST endpoint for provider deliveries.
func (h *Handler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	provider := string(h.normalizer.Provider())

	if telemetry.Business != nil {
		defer func() {
			telemetry.Business.WebhookLatency.WithLabelValues(provider).Observe(time.Since(start).Seconds())
		}()
	}

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		handler.ErrorResponse(w, r, domain.Invalid("webhook.read_body", "failed to read request body"))
		return
	}

	headers := make(map[string]string, len(r.Header))
	for key := range r.Header {
		headers[key] = r.Header.Get(key)
	}

	result := h.normalizer.Verify(payload, headers)
	if !result.Verified {
		h.logger.WarnContext(r.Context(), "webhook signature verification failed",
			slog.Any("error", result.Err))
		if telemetry.Business != nil {
			telemetry.Business.WebhookRejected.WithLabelValues(provider).Inc()
		}
		handler.ErrorResponse(w, r, domain.Unauthorized("webhook.verify", "invalid webhook signature"))
		return
	}

	raw := result.Event
	if telemetry.Business != nil {
		telemetry.Business.WebhookReceived.WithLabelValues(provider, raw.Type).Inc()
	}

	if !h.normalizer.ShouldProcess(raw.Type) {
		h.logger.DebugContext(r.Context(), "ignoring webhook event type", slog.String("type", raw.Type))
		h.ack(w)
		return
	}

	event, err := h.normalizer.Normalize(raw)
	if err != nil {
		// Authentic but unparseable. Acknowledge so the provider stops
		// retrying a payload that will never parse.
		h.logger.ErrorContext(r.Context(), "failed to normalize webhook event",
			slog.String("event_id", h.normalizer.EventID(raw)),
			slog.String("type", raw.Type),
			slog.Any("error", err))
		if telemetry.Business != nil {
			telemetry.Business.WebhookFailed.WithLabelValues(provider, raw.Type).Inc()
		}
		h.ack(w)
		return
	}
	if event == nil {
		h.ack(w)
		return
	}

	if err := h.billing.HandleWebhookEvent(r.Context(), event); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to apply webhook event",
			slog.String("event_id", event.ID),
			slog.String("type", string(event.Type)),
			slog.Any("error", err))
		if telemetry.Business != nil {
			telemetry.Business.WebhookFailed.WithLabelValues(provider, string(event.Type)).Inc()
		}
	}

	h.ack(w)
}

func (h *Handler) ack(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"received": true}`))
}
