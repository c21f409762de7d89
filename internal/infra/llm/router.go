// LLM provider router.
// Router keeps providers in registration order; the first entry is the
// primary and every later entry is a fallback, tried in order.
package llm

import (
	"context"
	"fmt"
)

// NamedProvider pairs a provider with the name it is configured under.
type NamedProvider struct {
	Name     string
	Provider LLMProvider
}

// Router holds the ordered provider chain.
type Router struct {
	chain []NamedProvider
	index map[string]int
}

// NewRouter creates a Router from an ordered chain. Nil providers are skipped
// and a repeated name replaces the earlier entry in place.
func NewRouter(chain ...NamedProvider) *Router {
	r := &Router{index: make(map[string]int, len(chain))}
	for _, np := range chain {
		r.Register(np.Name, np.Provider)
	}
	return r
}

// Register appends a provider to the end of the chain, or replaces the
// provider already registered under key.
func (r *Router) Register(key string, p LLMProvider) {
	if p == nil {
		return
	}
	if i, ok := r.index[key]; ok {
		r.chain[i].Provider = p
		return
	}
	r.index[key] = len(r.chain)
	r.chain = append(r.chain, NamedProvider{Name: key, Provider: p})
}

// Route returns the primary provider.
// Returns an error if the chain is empty.
func (r *Router) Route(_ context.Context) (LLMProvider, error) {
	if len(r.chain) == 0 {
		return nil, fmt.Errorf("llm router: no providers registered")
	}
	return r.chain[0].Provider, nil
}

// Get returns the provider registered under key.
func (r *Router) Get(key string) (LLMProvider, error) {
	i, ok := r.index[key]
	if !ok {
		return nil, fmt.Errorf("llm router: provider %q not registered (available: %v)", key, r.Names())
	}
	return r.chain[i].Provider, nil
}

// Available reports whether a provider is configured under key.
func (r *Router) Available(key string) bool {
	_, ok := r.index[key]
	return ok
}

// Chain returns a copy of the ordered chain.
func (r *Router) Chain() []NamedProvider {
	out := make([]NamedProvider, len(r.chain))
	copy(out, r.chain)
	return out
}

// Names returns the registered provider names in chain order.
func (r *Router) Names() []string {
	out := make([]string, 0, len(r.chain))
	for _, np := range r.chain {
		out = append(out, np.Name)
	}
	return out
}
