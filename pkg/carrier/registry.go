package carrier

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Registry manages registered quote providers. Registration order is
// preserved: it decides fan-out order and therefore tie order in the
// merged quote list.
type Registry struct {
	names     []string
	providers map[string]QuoteProvider
	mu        sync.RWMutex
}

// NewRegistry creates a new provider registry.
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]QuoteProvider),
	}
}

// Register adds a provider to the registry. Re-registering a name
// replaces the provider but keeps its original position.
func (r *Registry) Register(p QuoteProvider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.providers[p.Name()]; !ok {
		r.names = append(r.names, p.Name())
	}
	r.providers[p.Name()] = p
}

// Get returns a provider by name.
func (r *Registry) Get(name string) (QuoteProvider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.providers[name]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrProviderNotFound, name)
}

// All returns all registered providers in registration order.
func (r *Registry) All() []QuoteProvider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]QuoteProvider, 0, len(r.names))
	for _, name := range r.names {
		result = append(result, r.providers[name])
	}
	return result
}

// Names returns the names of all registered providers in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.names))
	copy(names, r.names)
	return names
}

// Count returns the number of registered providers.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.providers)
}

// Failure records one provider's failure during a fan-out.
type Failure struct {
	Provider string
	Err      error
}

// GetAllQuotes fetches quotes from every registered provider in parallel
// and merges the survivors into one list sorted ascending by numeric
// price. Each branch settles independently: a provider timing out or
// erroring never aborts the others, it only contributes a Failure.
// When every provider fails the quote list is empty, not an error.
func (r *Registry) GetAllQuotes(ctx context.Context, req *QuoteRequest) ([]Quote, []Failure) {
	providers := r.All()

	// Per-branch slots keep the merge in fan-out order so that price
	// ties stay stable.
	results := make([][]Quote, len(providers))
	failed := make([]error, len(providers))

	g, ctx := errgroup.WithContext(ctx)
	for i, p := range providers {
		i, p := i, p
		g.Go(func() error {
			quotes, err := p.GetQuotes(ctx, req)
			if err != nil {
				failed[i] = err
				return nil // settle, don't fail the group
			}
			results[i] = quotes
			return nil
		})
	}
	g.Wait()

	merged := make([]Quote, 0)
	failures := make([]Failure, 0)
	for i, p := range providers {
		if failed[i] != nil {
			failures = append(failures, Failure{Provider: p.Name(), Err: failed[i]})
			continue
		}
		merged = append(merged, results[i]...)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].PriceValue() < merged[j].PriceValue()
	})
	return merged, failures
}
