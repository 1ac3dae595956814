package config

import "time"

// ProvidersConfig describes the upstream LLM providers the router can reach.
// System-held API keys are resolved here once at startup (usually through
// ${VAR} expansion in providers.yaml); nothing re-reads the process
// environment mid-request.
type ProvidersConfig struct {
	// Default names the provider used when a request carries no provider
	// or an unknown one.
	Default   string                    `yaml:"default"`
	Providers map[string]ProviderConfig `yaml:"providers"`
}

type ProviderConfig struct {
	BaseURL string            `yaml:"base_url"`
	APIKey  string            `yaml:"api_key"`
	Model   string            `yaml:"model"`
	Timeout time.Duration     `yaml:"timeout"`
	Headers map[string]string `yaml:"headers,omitempty"`
}

// Normalize back-fills built-in endpoint defaults for every known provider.
// YAML decoding replaces map entries wholesale, so a providers.yaml that sets
// only api_key would otherwise lose the provider's base URL and model.
func (p *ProvidersConfig) Normalize() {
	defaults := DefaultProvidersConfig()
	if p.Default == "" {
		p.Default = defaults.Default
	}
	if p.Providers == nil {
		p.Providers = make(map[string]ProviderConfig)
	}
	for name, def := range defaults.Providers {
		cfg := p.Providers[name]
		if cfg.BaseURL == "" {
			cfg.BaseURL = def.BaseURL
		}
		if cfg.Model == "" {
			cfg.Model = def.Model
		}
		if cfg.Timeout == 0 {
			cfg.Timeout = def.Timeout
		}
		p.Providers[name] = cfg
	}
}

// DefaultProvidersConfig returns the built-in provider endpoints. API keys
// are intentionally empty: a provider without a key is unconfigured for
// system-key requests until providers.yaml supplies one.
func DefaultProvidersConfig() *ProvidersConfig {
	return &ProvidersConfig{
		Default: "perplexity",
		Providers: map[string]ProviderConfig{
			"perplexity": {
				BaseURL: "https://api.perplexity.ai",
				Model:   "sonar",
				Timeout: 60 * time.Second,
			},
			"openai": {
				BaseURL: "https://api.openai.com/v1",
				Model:   "gpt-4o-mini",
				Timeout: 60 * time.Second,
			},
			"gemini": {
				BaseURL: "https://generativelanguage.googleapis.com/v1beta",
				Model:   "gemini-1.5-flash",
				Timeout: 60 * time.Second,
			},
			"huggingface": {
				BaseURL: "https://router.huggingface.co/v1",
				Model:   "Qwen/Qwen2.5-7B-Instruct",
				Timeout: 60 * time.Second,
			},
			"deepseek": {
				BaseURL: "https://api.deepseek.com/v1",
				Model:   "deepseek-chat",
				Timeout: 60 * time.Second,
			},
		},
	}
}
