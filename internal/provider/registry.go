package provider

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Factory builds a Provider from backend configuration.
type Factory func(config Config, opts Options) (Provider, error)

// Registry maps provider names to factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds or replaces the factory for name. Names are case-insensitive.
func (r *Registry) Register(name string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[strings.ToLower(name)] = f
}

// New builds the named provider.
func (r *Registry) New(name string, config Config, opts Options) (Provider, error) {
	r.mu.RLock()
	f, ok := r.factories[strings.ToLower(name)]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownProvider, name, strings.Join(r.Names(), ", "))
	}
	return f(config, opts)
}

// Names returns the registered provider names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry returns a registry holding the built-in backends.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("anthropic", func(config Config, opts Options) (Provider, error) {
		return newService("anthropic", newAnthropic(config), opts), nil
	})
	r.Register("gemini", func(config Config, opts Options) (Provider, error) {
		return newService("gemini", newGemini(config), opts), nil
	})
	r.Register("openai", func(config Config, opts Options) (Provider, error) {
		return newService("openai", newOpenAI(config), opts), nil
	})
	return r
}
