// Package credential decides, per request, whether a chat turn runs on a
// caller-supplied API key (BYOK) or the system-held fallback key for the
// provider. The choice is binary and explicit: a request that did not opt
// into BYOK never uses a supplied key, and a BYOK request never falls back
// to a system key.
package credential

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/docuchat/docuchat-server/internal/config"
	"github.com/docuchat/docuchat-server/internal/types"
)

var (
	// ErrMissingCredential means the caller opted into BYOK but supplied no key.
	ErrMissingCredential = errors.New("missing user-supplied API key")

	// ErrProviderUnconfigured means the system holds no fallback key for the
	// provider. Unlike ErrMissingCredential this is a server-side problem.
	ErrProviderUnconfigured = errors.New("no system API key configured for provider")
)

// Resolver holds the system keys, loaded at startup and replaced wholesale
// on config reload.
type Resolver struct {
	mu         sync.RWMutex
	systemKeys map[types.Provider]string
}

func NewResolver(cfg *config.ProvidersConfig) *Resolver {
	r := &Resolver{}
	r.Reload(cfg)
	return r
}

// Reload replaces the system key set from a freshly loaded providers config.
func (r *Resolver) Reload(cfg *config.ProvidersConfig) {
	keys := make(map[types.Provider]string, len(types.AllProviders))
	for _, p := range types.AllProviders {
		if pc, ok := cfg.Providers[string(p)]; ok {
			keys[p] = strings.TrimSpace(pc.APIKey)
		}
	}
	r.mu.Lock()
	r.systemKeys = keys
	r.mu.Unlock()
}

// Resolve returns the credential for one chat turn. The returned key is
// scoped to the request; it is never cached or persisted.
func (r *Resolver) Resolve(useOwnKey bool, suppliedKey string, p types.Provider) (string, error) {
	if useOwnKey {
		key := strings.TrimSpace(suppliedKey)
		if key == "" {
			return "", ErrMissingCredential
		}
		return key, nil
	}

	// The caller did not opt into BYOK: any supplied key is ignored outright.
	r.mu.RLock()
	key := r.systemKeys[p]
	r.mu.RUnlock()
	if key == "" {
		return "", fmt.Errorf("%w: %s", ErrProviderUnconfigured, p)
	}
	return key, nil
}
