package provider

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"agentgate/internal/config"
)

// Factory builds a Provider from configuration.
type Factory func(ctx context.Context, cfg *config.Config) (Provider, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// Register adds a provider factory under name. Concrete providers register
// themselves in init; main imports them for side effects.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = factory
}

// New creates the provider selected by cfg.Provider.
func New(ctx context.Context, cfg *config.Config) (Provider, error) {
	registryMu.RLock()
	factory, ok := registry[cfg.Provider]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown provider %q (available: %v)", cfg.Provider, names())
	}
	return factory(ctx, cfg)
}

func names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
