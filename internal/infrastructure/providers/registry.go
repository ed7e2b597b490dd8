package providers

import (
	"fmt"
	"time"

	"github.com/storefront/backend/internal/domain/integration"
)

// Registry dispatches integrations to the adapter matching their provider
// kind. The adapter set is fixed at construction; there is no registration
// after startup.
type Registry struct {
	adapters map[integration.ProviderKind]integration.Provider
}

// NewRegistry builds a registry over the given adapters. A later adapter for
// the same kind replaces the earlier one.
func NewRegistry(adapters ...integration.Provider) *Registry {
	byKind := make(map[integration.ProviderKind]integration.Provider, len(adapters))
	for _, adapter := range adapters {
		byKind[adapter.Kind()] = adapter
	}
	return &Registry{adapters: byKind}
}

// NewDefaultRegistry wires every built-in adapter with a shared timeout
func NewDefaultRegistry(timeout time.Duration) *Registry {
	return NewRegistry(
		NewRESTAdapter(timeout),
		NewStorefrontAdapter(timeout),
		NewWooCommerceAdapter(timeout),
		NewMagentoAdapter(timeout),
		NewCustomAdapter(timeout),
	)
}

// GetProvider returns the adapter for the specified kind
func (r *Registry) GetProvider(kind integration.ProviderKind) (integration.Provider, error) {
	adapter, ok := r.adapters[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", integration.ErrProviderNotRegistered, kind)
	}
	return adapter, nil
}

// ListProviders returns all registered adapters
func (r *Registry) ListProviders() []integration.Provider {
	list := make([]integration.Provider, 0, len(r.adapters))
	for _, adapter := range r.adapters {
		list = append(list, adapter)
	}
	return list
}

// Ensure Registry implements ProviderRegistry interface
var _ integration.ProviderRegistry = (*Registry)(nil)
