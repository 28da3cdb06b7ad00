package billing

import (
	"fmt"
	"sync"

	"github.com/iablee/iablee/internal/domain"
)

// Registry holds the configured gateways and webhook normalizers keyed by
// provider. Webhook routes need every configured normalizer reachable at once
// even though checkout traffic flows through a single primary gateway.
type Registry struct {
	mu          sync.RWMutex
	gateways    map[domain.Provider]Gateway
	normalizers map[domain.Provider]Normalizer
	primary     domain.Provider
}

// NewRegistry creates an empty registry with the given primary provider.
func NewRegistry(primary domain.Provider) *Registry {
	return &Registry{
		gateways:    make(map[domain.Provider]Gateway),
		normalizers: make(map[domain.Provider]Normalizer),
		primary:     primary,
	}
}

// RegisterGateway adds a gateway under its own provider name.
func (r *Registry) RegisterGateway(g Gateway) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gateways[g.Name()] = g
}

// RegisterNormalizer adds a webhook normalizer under its own provider name.
func (r *Registry) RegisterNormalizer(n Normalizer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.normalizers[n.Provider()] = n
}

// Gateway returns the gateway for the given provider.
func (r *Registry) Gateway(provider domain.Provider) (Gateway, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.gateways[provider]
	if !ok {
		return nil, fmt.Errorf("billing: no gateway registered for provider %q", provider)
	}
	return g, nil
}

// Primary returns the gateway handling customer-initiated billing operations.
func (r *Registry) Primary() (Gateway, error) {
	return r.Gateway(r.primary)
}

// PrimaryProvider returns the primary provider name.
func (r *Registry) PrimaryProvider() domain.Provider {
	return r.primary
}

// Normalizer returns the webhook normalizer for the given provider.
func (r *Registry) Normalizer(provider domain.Provider) (Normalizer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.normalizers[provider]
	if !ok {
		return nil, fmt.Errorf("billing: no webhook normalizer registered for provider %q", provider)
	}
	return n, nil
}
