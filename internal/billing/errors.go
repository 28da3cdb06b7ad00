package billing

import (
	"errors"
	"fmt"

	"github.com/iablee/iablee/internal/domain"
)

var (
	// ErrInvalidWebhookSignature is returned when webhook signature
	// verification fails. Processing must stop before normalization.
	ErrInvalidWebhookSignature = errors.New("billing: invalid webhook signature")

	// ErrMissingSignature is returned when the signature header or field is
	// absent from a webhook delivery.
	ErrMissingSignature = errors.New("billing: missing webhook signature")

	// ErrCustomerNotFound is returned when a provider customer lookup finds
	// no record.
	ErrCustomerNotFound = errors.New("billing: customer not found")

	// ErrInvoiceNotFound is returned when a provider invoice does not exist.
	ErrInvoiceNotFound = errors.New("billing: invoice not found")
)

// GatewayError wraps a provider API failure, tagged with the provider name so
// callers and logs can always tell which integration failed.
type GatewayError struct {
	Provider domain.Provider
	Op       string // gateway operation, e.g. "create_subscription"
	Code     string // provider error code when available
	Message  string
	Err      error
}

func (e *GatewayError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s: %s (code: %s)", e.Provider, e.Op, e.Message, e.Code)
	}
	return fmt.Sprintf("%s: %s: %s", e.Provider, e.Op, e.Message)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// UnsupportedOperationError is returned when a provider cannot support a
// requested capability. Callers branch on provider capability via
// configuration; reaching this error in production is a wiring bug.
type UnsupportedOperationError struct {
	Provider domain.Provider
	Op       string
}

func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("%s: operation %q not supported by this provider", e.Provider, e.Op)
}

// IsUnsupported reports whether err is an UnsupportedOperationError.
func IsUnsupported(err error) bool {
	var ue *UnsupportedOperationError
	return errors.As(err, &ue)
}

// MissingPriceMappingError is returned when a plan has no external price id
// for the active provider. This is a configuration error and is raised before
// any network call.
type MissingPriceMappingError struct {
	Provider domain.Provider
	PlanID   string
}

func (e *MissingPriceMappingError) Error() string {
	return fmt.Sprintf("plan %q has no price mapping for provider %q", e.PlanID, e.Provider)
}

// IsMissingPriceMapping reports whether err is a MissingPriceMappingError.
func IsMissingPriceMapping(err error) bool {
	var me *MissingPriceMappingError
	return errors.As(err, &me)
}

// unsupported is a convenience constructor used by adapters.
func unsupported(provider domain.Provider, op string) error {
	return &UnsupportedOperationError{Provider: provider, Op: op}
}

// priceFor resolves the provider price id for a plan or fails with a
// MissingPriceMappingError.
func priceFor(provider domain.Provider, plan *domain.PlanDefinition) (string, error) {
	if plan == nil {
		return "", fmt.Errorf("billing: nil plan")
	}
	price, ok := plan.ProviderPriceMap[provider]
	if !ok || price == "" {
		return "", &MissingPriceMappingError{Provider: provider, PlanID: plan.ID}
	}
	return price, nil
}
