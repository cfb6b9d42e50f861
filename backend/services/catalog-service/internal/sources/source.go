package sources

import (
	"context"
	"fmt"
	"time"

	"evcharge/backend/services/catalog-service/internal/models"
)

// Source is one external provider of station data. Fetch translates the
// provider's payload into canonical records; an error from Fetch is always
// transport-level (network, auth, unparseable response). Individual malformed
// records are skipped inside the adapter, never surfaced as errors.
type Source interface {
	ID() string
	Interval() time.Duration
	Fetch(ctx context.Context) ([]models.StationRecord, error)
}

// Registry is an explicit, constructed set of sources handed to the
// orchestrator and scheduler at startup. Iteration order is registration order.
type Registry struct {
	ordered []Source
	byID    map[string]Source
}

// NewRegistry builds a registry, rejecting duplicate source ids.
func NewRegistry(srcs ...Source) (*Registry, error) {
	r := &Registry{byID: make(map[string]Source, len(srcs))}
	for _, src := range srcs {
		if _, exists := r.byID[src.ID()]; exists {
			return nil, fmt.Errorf("sources: duplicate source id %q", src.ID())
		}
		r.byID[src.ID()] = src
		r.ordered = append(r.ordered, src)
	}
	return r, nil
}

// Get returns the source registered under id.
func (r *Registry) Get(id string) (Source, bool) {
	src, ok := r.byID[id]
	return src, ok
}

// All returns sources in registration order.
func (r *Registry) All() []Source {
	out := make([]Source, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// Len reports the number of registered sources.
func (r *Registry) Len() int {
	return len(r.ordered)
}
