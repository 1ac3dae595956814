package types

import "strings"

// Provider identifies one upstream LLM vendor. The set is closed: every
// value maps to exactly one adapter registration.
type Provider string

const (
	ProviderPerplexity  Provider = "perplexity"
	ProviderOpenAI      Provider = "openai"
	ProviderGemini      Provider = "gemini"
	ProviderHuggingFace Provider = "huggingface"
	ProviderDeepSeek    Provider = "deepseek"
)

// DefaultProvider handles requests that name no provider or an unknown one.
// Provider choice is a UI preference, not a security boundary, so routing is
// forgiving rather than strict.
const DefaultProvider = ProviderPerplexity

// AllProviders lists the closed provider set in display order.
var AllProviders = []Provider{
	ProviderPerplexity,
	ProviderOpenAI,
	ProviderGemini,
	ProviderHuggingFace,
	ProviderDeepSeek,
}

// ParseProvider maps a raw identifier onto the closed set, falling back to
// DefaultProvider for empty or unknown values.
func ParseProvider(s string) Provider {
	p := Provider(strings.ToLower(strings.TrimSpace(s)))
	switch p {
	case ProviderPerplexity, ProviderOpenAI, ProviderGemini, ProviderHuggingFace, ProviderDeepSeek:
		return p
	default:
		return DefaultProvider
	}
}
