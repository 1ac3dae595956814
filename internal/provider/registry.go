package provider

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/docuchat/docuchat-server/internal/config"
	"github.com/docuchat/docuchat-server/internal/types"
)

// Registry holds one adapter per provider identifier plus a designated
// default. Dispatch on an unknown provider routes to the default rather than
// failing: provider choice is a UI preference, not a security boundary.
type Registry struct {
	mu       sync.RWMutex
	adapters map[types.Provider]Adapter
	def      types.Provider
}

func NewRegistry(def types.Provider) *Registry {
	return &Registry{
		adapters: make(map[types.Provider]Adapter),
		def:      def,
	}
}

func (r *Registry) Register(p types.Provider, adapter Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[p] = adapter
}

func (r *Registry) Get(p types.Provider) (Adapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.adapters[p]
	return a, ok
}

// Default returns the registry's default provider identifier.
func (r *Registry) Default() types.Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.def
}

// Replace swaps in another registry's adapter set and default under the
// existing lock. Config reloads go through here so the Registry value (and
// its mutex) is never copied while Dispatch runs concurrently.
func (r *Registry) Replace(other *Registry) {
	other.mu.RLock()
	adapters := make(map[types.Provider]Adapter, len(other.adapters))
	for p, a := range other.adapters {
		adapters[p] = a
	}
	def := other.def
	other.mu.RUnlock()

	r.mu.Lock()
	r.adapters = adapters
	r.def = def
	r.mu.Unlock()
}

// Dispatch sends one chat completion to the adapter registered for p, or to
// the default adapter when p is unknown. No retries.
func (r *Registry) Dispatch(ctx context.Context, p types.Provider, prompt, system, apiKey, model string) (string, error) {
	adapter, ok := r.Get(p)
	if !ok {
		adapter, _ = r.Get(r.Default())
	}
	return adapter.Complete(ctx, prompt, system, apiKey, model)
}

// BuildFromConfig builds the adapter registry from the providers config.
// Every provider in the closed set gets a registration; gemini has its own
// wire format, everything else is OpenAI-compatible.
func BuildFromConfig(provCfg *config.ProvidersConfig) *Registry {
	registry := NewRegistry(types.ParseProvider(provCfg.Default))

	for _, p := range types.AllProviders {
		cfg := provCfg.Providers[string(p)]
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 60 * time.Second
		}
		client := &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
				ForceAttemptHTTP2:   true,
			},
		}

		var adapter Adapter
		switch p {
		case types.ProviderGemini:
			adapter = NewGeminiAdapter(cfg, client)
		default:
			adapter = NewOpenAICompatAdapter(string(p), cfg, client)
		}
		registry.Register(p, adapter)
	}
	return registry
}
