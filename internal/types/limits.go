package types

// Shared truncation bounds. The extraction cap and the per-file context cap
// are defined together so the two stages cannot drift apart.
const (
	// MaxExtractChars bounds a single extracted document.
	MaxExtractChars = 50000

	// MaxContextCharsPerFile bounds each file's contribution to one prompt.
	// Tighter than MaxExtractChars because multiple files share a single
	// prompt budget.
	MaxContextCharsPerFile = 10000

	// TruncationMarker is appended whenever either bound cuts content.
	TruncationMarker = "\n...(content truncated, file too long)"
)
