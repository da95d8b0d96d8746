package providers

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Router maintains the registry clients by jurisdiction. A sub-national key
// ("US-CA") falls back to the national client ("US") when no board-specific
// client is registered.
type Router struct {
	mu      sync.RWMutex
	clients map[string]RegistryClient
}

// NewRouter creates a router and registers the given clients.
func NewRouter(clients ...RegistryClient) (*Router, error) {
	r := &Router{clients: make(map[string]RegistryClient)}
	for _, c := range clients {
		if err := r.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a client for every jurisdiction it serves.
func (r *Router) Register(c RegistryClient) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, j := range c.Jurisdictions() {
		key := strings.ToUpper(strings.TrimSpace(j))
		if existing, ok := r.clients[key]; ok {
			return fmt.Errorf("%w: %s served by %s and %s", ErrDuplicateJurisdiction, key, existing.ID(), c.ID())
		}
		r.clients[key] = c
	}
	return nil
}

// Resolve returns the client serving a jurisdiction key.
func (r *Router) Resolve(jurisdiction string) (RegistryClient, error) {
	key := strings.ToUpper(strings.TrimSpace(jurisdiction))
	r.mu.RLock()
	defer r.mu.RUnlock()
	if c, ok := r.clients[key]; ok {
		return c, nil
	}
	if national, _, found := strings.Cut(key, "-"); found {
		if c, ok := r.clients[national]; ok {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedJurisdiction, key)
}

// Lookup dispatches to the client serving the jurisdiction. The only error
// is ErrUnsupportedJurisdiction; lookup failures travel in the result.
func (r *Router) Lookup(ctx context.Context, jurisdiction, licenseNumber string) (*LookupResult, error) {
	c, err := r.Resolve(jurisdiction)
	if err != nil {
		return nil, err
	}
	return c.Lookup(ctx, jurisdiction, licenseNumber), nil
}

// Jurisdictions lists every routable key, sorted.
func (r *Router) Jurisdictions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.clients))
	for k := range r.clients {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
