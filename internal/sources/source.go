// Package sources provides the external listing sources the import
// pipeline can acquire from.
package sources

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"property-import-backend/internal/models"
)

var ErrUnknownSource = errors.New("unknown listing source")

// Source fetches raw listings from one external origin.
type Source interface {
	Name() string
	FetchListings(ctx context.Context) ([]models.ScrapedListing, error)
}

// Registry resolves sources by name.
type Registry struct {
	mu      sync.RWMutex
	sources map[string]Source
}

func NewRegistry(sources ...Source) *Registry {
	r := &Registry{sources: make(map[string]Source)}
	for _, s := range sources {
		r.Register(s)
	}
	return r
}

// Register adds s, replacing any source with the same name.
func (r *Registry) Register(s Source) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources[s.Name()] = s
}

func (r *Registry) Get(name string) (Source, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sources[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, name)
	}
	return s, nil
}

// Names returns registered source names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.sources))
	for name := range r.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
