package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/docuchat/docuchat-server/internal/auth"
	"github.com/docuchat/docuchat-server/internal/config"
	"github.com/docuchat/docuchat-server/internal/credential"
	"github.com/docuchat/docuchat-server/internal/drive"
	"github.com/docuchat/docuchat-server/internal/files"
	"github.com/docuchat/docuchat-server/internal/provider"
	"github.com/docuchat/docuchat-server/internal/types"
)

type mockDispatcher struct {
	calls    int
	provider types.Provider
	prompt   string
	system   string
	apiKey   string
	model    string
	answer   string
	err      error
}

func (m *mockDispatcher) Dispatch(ctx context.Context, p types.Provider, prompt, system, apiKey, model string) (string, error) {
	m.calls++
	m.provider = p
	m.prompt = prompt
	m.system = system
	m.apiKey = apiKey
	m.model = model
	if m.err != nil {
		return "", m.err
	}
	return m.answer, nil
}

type mockLister struct {
	stored []files.StoredFile
	err    error
}

func (m *mockLister) ListByUser(ctx context.Context, userID string) ([]files.StoredFile, error) {
	return m.stored, m.err
}

func testResolver() *credential.Resolver {
	return credential.NewResolver(&config.ProvidersConfig{
		Default: "perplexity",
		Providers: map[string]config.ProviderConfig{
			"perplexity": {APIKey: "sys-pplx-key"},
			"openai":     {APIKey: "sys-oai-key"},
		},
	})
}

func chatRequest(t *testing.T, body types.ChatRequest) *http.Request {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/v1/chat", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	return req.WithContext(auth.ContextWithAuth(req.Context(), &auth.AuthInfo{
		TokenID: "token-1",
		UserID:  "user-1",
		Email:   "dev@example.com",
	}))
}

func TestServeChat_RoundTrip(t *testing.T) {
	d := &mockDispatcher{answer: "hi there"}
	h := NewHandler(d, testResolver(), nil, nil, nil)

	req := chatRequest(t, types.ChatRequest{Message: "hello"})
	rec := httptest.NewRecorder()
	h.ServeChat(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Success  bool   `json:"success"`
		Response string `json:"response"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !resp.Success || resp.Response != "hi there" {
		t.Errorf("unexpected response: %+v", resp)
	}
	if d.provider != types.ProviderPerplexity {
		t.Errorf("expected default provider, got %s", d.provider)
	}
	if d.apiKey != "sys-pplx-key" {
		t.Errorf("expected system key, got %q", d.apiKey)
	}
	if d.prompt != "hello" {
		t.Errorf("bare question should pass through unchanged, got %q", d.prompt)
	}
}

func TestServeChat_EmptyMessage(t *testing.T) {
	d := &mockDispatcher{}
	h := NewHandler(d, testResolver(), nil, nil, nil)

	req := chatRequest(t, types.ChatRequest{Message: "   "})
	rec := httptest.NewRecorder()
	h.ServeChat(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	if d.calls != 0 {
		t.Error("dispatcher must not be invoked for an empty message")
	}
}

func TestServeChat_Unauthenticated(t *testing.T) {
	h := NewHandler(&mockDispatcher{}, testResolver(), nil, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/chat", strings.NewReader(`{"message":"hi"}`))
	rec := httptest.NewRecorder()
	h.ServeChat(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestServeChat_BYOKMissingKey(t *testing.T) {
	d := &mockDispatcher{}
	h := NewHandler(d, testResolver(), nil, nil, nil)

	req := chatRequest(t, types.ChatRequest{Message: "hello", UseOwnKey: true})
	rec := httptest.NewRecorder()
	h.ServeChat(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	if d.calls != 0 {
		t.Error("no upstream call may happen when the credential is rejected")
	}
}

func TestServeChat_BYOKHeaderKeyForwarded(t *testing.T) {
	d := &mockDispatcher{answer: "ok"}
	h := NewHandler(d, testResolver(), nil, nil, nil)

	req := chatRequest(t, types.ChatRequest{Message: "hello", UseOwnKey: true})
	req.Header.Set(HeaderUserAPIKey, "user-key-123")
	req.Header.Set(HeaderProvider, "openai")
	req.Header.Set(HeaderModel, "gpt-4o")
	rec := httptest.NewRecorder()
	h.ServeChat(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if d.apiKey != "user-key-123" {
		t.Errorf("header key must be forwarded verbatim, got %q", d.apiKey)
	}
	if d.provider != types.ProviderOpenAI {
		t.Errorf("header provider must win, got %s", d.provider)
	}
	if d.model != "gpt-4o" {
		t.Errorf("header model must win, got %q", d.model)
	}
}

func TestServeChat_KeyHeaderIgnoredWithoutOptIn(t *testing.T) {
	d := &mockDispatcher{answer: "ok"}
	h := NewHandler(d, testResolver(), nil, nil, nil)

	req := chatRequest(t, types.ChatRequest{Message: "hello", UseOwnKey: false})
	req.Header.Set(HeaderUserAPIKey, "stray-user-key")
	rec := httptest.NewRecorder()
	h.ServeChat(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if d.apiKey != "sys-pplx-key" {
		t.Errorf("without useOwnKey the system key must be used, adapter got %q", d.apiKey)
	}
}

func TestServeChat_BYOKOptInViaBodyKeyViaHeader(t *testing.T) {
	d := &mockDispatcher{answer: "ok"}
	h := NewHandler(d, testResolver(), nil, nil, nil)

	req := chatRequest(t, types.ChatRequest{Message: "hello", UseOwnKey: true})
	req.Header.Set(HeaderUserAPIKey, "user-key-456")
	rec := httptest.NewRecorder()
	h.ServeChat(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if d.apiKey != "user-key-456" {
		t.Errorf("opted-in request must use the header key, adapter got %q", d.apiKey)
	}
}

func TestServeChat_SystemKeyIgnoresBodyProviderCase(t *testing.T) {
	d := &mockDispatcher{answer: "ok"}
	h := NewHandler(d, testResolver(), nil, nil, nil)

	req := chatRequest(t, types.ChatRequest{Message: "hello", Provider: "OpenAI"})
	rec := httptest.NewRecorder()
	h.ServeChat(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if d.provider != types.ProviderOpenAI {
		t.Errorf("provider names are case-insensitive, got %s", d.provider)
	}
	if d.apiKey != "sys-oai-key" {
		t.Errorf("expected openai system key, got %q", d.apiKey)
	}
}

func TestServeChat_UnknownProviderUsesDefault(t *testing.T) {
	d := &mockDispatcher{answer: "ok"}
	h := NewHandler(d, testResolver(), nil, nil, nil)

	req := chatRequest(t, types.ChatRequest{Message: "hello", Provider: "mystery-llm"})
	rec := httptest.NewRecorder()
	h.ServeChat(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if d.provider != types.ProviderPerplexity {
		t.Errorf("unknown provider must resolve to the default, got %s", d.provider)
	}
}

func TestServeChat_ProviderUnconfigured(t *testing.T) {
	d := &mockDispatcher{}
	resolver := credential.NewResolver(&config.ProvidersConfig{
		Providers: map[string]config.ProviderConfig{},
	})
	h := NewHandler(d, resolver, nil, nil, nil)

	req := chatRequest(t, types.ChatRequest{Message: "hello"})
	rec := httptest.NewRecorder()
	h.ServeChat(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
	if d.calls != 0 {
		t.Error("no upstream call without a credential")
	}
}

func TestServeChat_InvalidCredentialMapsTo401(t *testing.T) {
	d := &mockDispatcher{err: provider.ErrInvalidCredential}
	h := NewHandler(d, testResolver(), nil, nil, nil)

	req := chatRequest(t, types.ChatRequest{Message: "hello"})
	rec := httptest.NewRecorder()
	h.ServeChat(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestServeChat_RateLimitedMapsTo429(t *testing.T) {
	d := &mockDispatcher{err: provider.ErrRateLimited}
	h := NewHandler(d, testResolver(), nil, nil, nil)

	req := chatRequest(t, types.ChatRequest{Message: "hello"})
	rec := httptest.NewRecorder()
	h.ServeChat(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", rec.Code)
	}
}

func TestServeChat_UpstreamErrorIsGeneric(t *testing.T) {
	d := &mockDispatcher{err: &provider.UpstreamError{
		Provider: "perplexity",
		Status:   502,
		Body:     `{"detail":"internal secret trace"}`,
	}}
	h := NewHandler(d, testResolver(), nil, nil, nil)

	req := chatRequest(t, types.ChatRequest{Message: "hello"})
	rec := httptest.NewRecorder()
	h.ServeChat(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "secret trace") {
		t.Errorf("upstream body must not leak to the client: %s", rec.Body.String())
	}
}

func TestServeChat_FileContextAssembled(t *testing.T) {
	d := &mockDispatcher{answer: "ok"}
	h := NewHandler(d, testResolver(), nil, nil, nil)

	req := chatRequest(t, types.ChatRequest{
		Message: "summarize",
		FileContents: []types.FileContent{
			{Name: "a.txt", Content: "alpha"},
			{Name: "b.txt", Content: "beta"},
		},
	})
	rec := httptest.NewRecorder()
	h.ServeChat(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	for _, want := range []string{"File 1: a.txt", "File 2: b.txt", "alpha", "beta", "User question: summarize"} {
		if !strings.Contains(d.prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, d.prompt)
		}
	}
	if strings.Index(d.prompt, "a.txt") > strings.Index(d.prompt, "b.txt") {
		t.Error("files must appear in input order")
	}
}

func TestServeChat_StoredFilesAppended(t *testing.T) {
	d := &mockDispatcher{answer: "ok"}
	lister := &mockLister{stored: []files.StoredFile{
		{Name: "report.pdf", Content: "stored report text"},
	}}
	h := NewHandler(d, testResolver(), lister, nil, nil)

	req := chatRequest(t, types.ChatRequest{
		Message:      "summarize",
		FileContents: []types.FileContent{{Name: "inline.txt", Content: "inline text"}},
	})
	rec := httptest.NewRecorder()
	h.ServeChat(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(d.prompt, "File 1: inline.txt") || !strings.Contains(d.prompt, "File 2: report.pdf") {
		t.Errorf("body contents come first, stored files after:\n%s", d.prompt)
	}
}

func TestServeChat_StoredFileErrorIsNotFatal(t *testing.T) {
	d := &mockDispatcher{answer: "ok"}
	lister := &mockLister{err: errors.New("db down")}
	h := NewHandler(d, testResolver(), lister, nil, nil)

	req := chatRequest(t, types.ChatRequest{Message: "hello"})
	rec := httptest.NewRecorder()
	h.ServeChat(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("store failure must not fail the chat turn, got %d", rec.Code)
	}
}

func TestServeChat_DrivePartialFailureStillSucceeds(t *testing.T) {
	d := &mockDispatcher{answer: "ok"}
	fetch := func(ctx context.Context, token string, ids []string) drive.FetchResult {
		if token != "ya29.drive-token" {
			t.Errorf("drive token not forwarded: %q", token)
		}
		return drive.FetchResult{
			Contents: []types.FileContent{
				{Name: "doc-a", Content: "from drive a"},
				{Name: "doc-b", Content: "from drive b"},
			},
			Failed: map[string]string{"id-c": "export failed"},
		}
	}
	h := NewHandler(d, testResolver(), nil, fetch, nil)

	req := chatRequest(t, types.ChatRequest{
		Message:      "summarize",
		DriveFileIDs: []string{"id-a", "id-b", "id-c"},
	})
	req.Header.Set(drive.HeaderAccessToken, "ya29.drive-token")
	rec := httptest.NewRecorder()
	h.ServeChat(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("one failed drive fetch must not fail the turn, got %d", rec.Code)
	}
	if !strings.Contains(d.prompt, "from drive a") || !strings.Contains(d.prompt, "from drive b") {
		t.Errorf("successful drive imports missing from prompt:\n%s", d.prompt)
	}
}

func TestServeChat_DriveSkippedWithoutToken(t *testing.T) {
	d := &mockDispatcher{answer: "ok"}
	called := false
	fetch := func(ctx context.Context, token string, ids []string) drive.FetchResult {
		called = true
		return drive.FetchResult{}
	}
	h := NewHandler(d, testResolver(), nil, fetch, nil)

	req := chatRequest(t, types.ChatRequest{Message: "hello", DriveFileIDs: []string{"id-a"}})
	rec := httptest.NewRecorder()
	h.ServeChat(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if called {
		t.Error("drive fetch must be skipped without an access token")
	}
}

func TestServeChat_InvalidBody(t *testing.T) {
	h := NewHandler(&mockDispatcher{}, testResolver(), nil, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/chat", strings.NewReader("{not json"))
	req = req.WithContext(auth.ContextWithAuth(req.Context(), &auth.AuthInfo{TokenID: "t", UserID: "u"}))
	rec := httptest.NewRecorder()
	h.ServeChat(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}
