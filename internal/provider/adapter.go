package provider

import (
	"context"
	"errors"
	"fmt"
)

// Generation settings shared by every adapter: low temperature for
// deterministic answers, a generous token ceiling so structured or tabular
// answers are not cut off.
const (
	temperature     = 0.2
	maxOutputTokens = 4096
)

// fallbackAnswer is returned when a provider responds 2xx but the expected
// content path is empty.
const fallbackAnswer = "Could not generate a response."

// Adapter sends one chat completion to one upstream provider and returns the
// answer text. Adapters never retry; retry policy belongs to the caller.
type Adapter interface {
	Name() string
	Complete(ctx context.Context, prompt, system, apiKey, model string) (string, error)
}

var (
	// ErrInvalidCredential means the upstream rejected the API key (401/403).
	ErrInvalidCredential = errors.New("invalid API key")

	// ErrRateLimited means the upstream returned 429.
	ErrRateLimited = errors.New("provider rate limit exceeded")
)

// UpstreamError carries the raw status and body of any other non-2xx
// upstream response, for diagnostics. Callers show a generic message and
// log the detail.
type UpstreamError struct {
	Provider string
	Status   int
	Body     string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s returned status %d: %s", e.Provider, e.Status, e.Body)
}

// classifyStatus maps a non-2xx upstream status onto the failure taxonomy.
func classifyStatus(providerName string, status int, body []byte) error {
	switch status {
	case 401, 403:
		return fmt.Errorf("%w (%s)", ErrInvalidCredential, providerName)
	case 429:
		return fmt.Errorf("%w (%s)", ErrRateLimited, providerName)
	default:
		return &UpstreamError{Provider: providerName, Status: status, Body: string(body)}
	}
}
