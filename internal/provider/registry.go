// Package provider maps stable provider ids onto their gateway adapters.
// Each adapter normalizes one vendor wire format to the single
// domain.Provider completion contract; everything provider-specific
// (endpoints, auth headers, response paths, tuning constants) lives behind
// it.
package provider

import (
	"sort"

	"github.com/codevault-app/codevault/internal/domain"
)

// Registry holds the configured providers keyed by id. It is populated at
// startup and read-only afterwards, so no locking is needed.
type Registry struct {
	providers map[domain.ProviderID]domain.Provider
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[domain.ProviderID]domain.Provider)}
}

// Register adds a provider under the given id, replacing any previous entry.
func (r *Registry) Register(id domain.ProviderID, p domain.Provider) {
	r.providers[id] = p
}

// Get returns the provider registered under id.
func (r *Registry) Get(id domain.ProviderID) (domain.Provider, bool) {
	p, ok := r.providers[id]
	return p, ok
}

// IDs returns the registered provider ids in sorted order.
func (r *Registry) IDs() []domain.ProviderID {
	ids := make([]domain.ProviderID, 0, len(r.providers))
	for id := range r.providers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
