// Package telemetry exposes business-level Prometheus metrics.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Business is the global metrics instance. Nil until Init is called, so
// callers guard with a nil check.
var Business *BusinessMetrics

// Init creates and registers the business metrics.
func Init(namespace string) {
	Business = NewBusinessMetrics(namespace)
}

// BusinessMetrics holds Prometheus metrics for business-level observability.
// Provider-labeled metrics segment dashboards per payment provider.
type BusinessMetrics struct {
	// Auth & accounts
	Signups     prometheus.Counter
	Logins      prometheus.Counter
	LoginFailed prometheus.Counter

	// Subscriptions
	SubscriptionsCreated     *prometheus.CounterVec
	SubscriptionsCanceled    *prometheus.CounterVec
	SubscriptionsReactivated *prometheus.CounterVec
	PlanChanges              *prometheus.CounterVec

	// Payments
	PaymentSucceeded *prometheus.CounterVec
	PaymentFailed    *prometheus.CounterVec
	RevenueCollected *prometheus.CounterVec

	// Checkout
	CheckoutSessions *prometheus.CounterVec

	// Gateway calls
	GatewayLatency *prometheus.HistogramVec

	// Webhooks
	WebhookReceived *prometheus.CounterVec
	WebhookRejected *prometheus.CounterVec
	WebhookFailed   *prometheus.CounterVec
	WebhookLatency  *prometheus.HistogramVec
}

// NewBusinessMetrics creates and registers all business metrics.
func NewBusinessMetrics(namespace string) *BusinessMetrics {
	if namespace == "" {
		namespace = "iablee"
	}

	subsystem := "business"

	return &BusinessMetrics{
		Signups: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "signups_total",
			Help:      "Total account registrations",
		}),
		Logins: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "logins_total",
			Help:      "Total successful logins",
		}),
		LoginFailed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "login_failed_total",
			Help:      "Total failed login attempts",
		}),

		SubscriptionsCreated: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "subscriptions_created_total",
			Help:      "Subscriptions created, by provider and plan",
		}, []string{"provider", "plan"}),
		SubscriptionsCanceled: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "subscriptions_canceled_total",
			Help:      "Subscriptions canceled, by provider",
		}, []string{"provider"}),
		SubscriptionsReactivated: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "subscriptions_reactivated_total",
			Help:      "At-period-end cancellations reverted, by provider",
		}, []string{"provider"}),
		PlanChanges: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "plan_changes_total",
			Help:      "Plan changes on active subscriptions, by target plan",
		}, []string{"plan"}),

		PaymentSucceeded: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "payment_succeeded_total",
			Help:      "Successful payments, by provider",
		}, []string{"provider"}),
		PaymentFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "payment_failed_total",
			Help:      "Failed payments, by provider",
		}, []string{"provider"}),
		RevenueCollected: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "revenue_collected_cents_total",
			Help:      "Revenue from paid invoices in cents, by provider and currency",
		}, []string{"provider", "currency"}),

		CheckoutSessions: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "checkout_sessions_total",
			Help:      "Hosted checkout sessions created, by provider",
		}, []string{"provider"}),

		GatewayLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "gateway_request_duration_seconds",
			Help:      "Payment gateway API call latency, by provider and operation",
			Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"provider", "operation"}),

		WebhookReceived: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "webhook_received_total",
			Help:      "Webhook deliveries received, by provider and event type",
		}, []string{"provider", "event_type"}),
		WebhookRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "webhook_rejected_total",
			Help:      "Webhook deliveries rejected for bad signatures, by provider",
		}, []string{"provider"}),
		WebhookFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "webhook_failed_total",
			Help:      "Webhook deliveries that failed processing, by provider and event type",
		}, []string{"provider", "event_type"}),
		WebhookLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "webhook_duration_seconds",
			Help:      "Webhook processing time, by provider",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"provider"}),
	}
}
