package ai

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// ProviderFactory builds a Provider for a model name. Factories run per
// lookup so a model override in config takes effect without restarts.
type ProviderFactory func(ctx context.Context, model string) (Provider, error)

// Registry resolves reply generators by name. The server registers gemini
// and ollama at startup; AI_PROVIDER selects which one chat uses. Names are
// case-insensitive so config values like "Gemini" still resolve.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]ProviderFactory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]ProviderFactory)}
}

func (r *Registry) Register(name string, f ProviderFactory) {
	name = strings.ToLower(strings.TrimSpace(name))
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = f
}

func (r *Registry) Get(ctx context.Context, name string, model string) (Provider, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	r.mu.RLock()
	f, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("ai provider %q is not registered", name)
	}
	return f(ctx, model)
}
