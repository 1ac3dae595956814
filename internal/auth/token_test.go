package auth

import (
	"strings"
	"testing"
	"time"
)

func TestGenerateToken_Format(t *testing.T) {
	token, err := GenerateToken("prod")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	if !strings.HasPrefix(token, "dcu-prod-") {
		t.Errorf("expected dcu-prod- prefix, got %s", token)
	}

	random := strings.TrimPrefix(token, "dcu-prod-")
	if len(random) != 32 {
		t.Errorf("expected 32 random chars, got %d", len(random))
	}
}

func TestGenerateToken_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token, err := GenerateToken("test")
		if err != nil {
			t.Fatal(err)
		}
		if seen[token] {
			t.Fatalf("duplicate token generated: %s", token)
		}
		seen[token] = true
	}
}

func TestHashToken_Deterministic(t *testing.T) {
	h1 := HashToken("dcu-prod-abc123")
	h2 := HashToken("dcu-prod-abc123")
	if h1 != h2 {
		t.Error("same token should produce same hash")
	}

	h3 := HashToken("dcu-prod-abc124")
	if h1 == h3 {
		t.Error("different tokens should produce different hashes")
	}

	if len(h1) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(h1))
	}
}

func TestTokenPrefix(t *testing.T) {
	token := "dcu-prod-abcdefghij1234567890abcdefghij12"
	prefix := TokenPrefix(token)

	if prefix != "dcu-prod-abcdefgh" {
		t.Errorf("expected dcu-prod-abcdefgh, got %s", prefix)
	}
	if strings.Contains(prefix, token[len(token)-10:]) {
		t.Error("prefix should not contain the token tail")
	}
}

func TestTokenPrefix_ShortToken(t *testing.T) {
	if got := TokenPrefix("short"); got != "short" {
		t.Errorf("short tokens should pass through, got %s", got)
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		input    string
		expected time.Duration
		wantErr  bool
	}{
		{"365d", 365 * 24 * time.Hour, false},
		{"30d", 30 * 24 * time.Hour, false},
		{"24h", 24 * time.Hour, false},
		{"", 0, true},
		{"abc", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseDuration(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseDuration(%q): expected error", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseDuration(%q): unexpected error: %v", tt.input, err)
			continue
		}
		if got != tt.expected {
			t.Errorf("ParseDuration(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}
