// Package chat implements the POST /v1/chat endpoint: it resolves the
// request's credential, gathers document context from the body, the caller's
// stored files, and optional Drive imports, then dispatches one completion to
// the routed provider.
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/docuchat/docuchat-server/internal/auth"
	"github.com/docuchat/docuchat-server/internal/credential"
	"github.com/docuchat/docuchat-server/internal/drive"
	"github.com/docuchat/docuchat-server/internal/files"
	"github.com/docuchat/docuchat-server/internal/httputil"
	"github.com/docuchat/docuchat-server/internal/prompt"
	"github.com/docuchat/docuchat-server/internal/provider"
	"github.com/docuchat/docuchat-server/internal/telemetry"
	"github.com/docuchat/docuchat-server/internal/types"
)

// BYOK request headers. The API key travels as a header so it never appears
// in logged request bodies; provider and model headers win over their body
// fields. The key header carries the BYOK key but never turns BYOK on.
const (
	HeaderUserAPIKey = "X-User-API-Key"
	HeaderProvider   = "X-AI-Provider"
	HeaderModel      = "X-AI-Model"
)

// Dispatcher routes one completion to a provider adapter.
type Dispatcher interface {
	Dispatch(ctx context.Context, p types.Provider, prompt, system, apiKey, model string) (string, error)
}

// FileLister supplies the caller's stored file records.
type FileLister interface {
	ListByUser(ctx context.Context, userID string) ([]files.StoredFile, error)
}

// DriveFetchFunc imports Drive documents with a per-request access token.
type DriveFetchFunc func(ctx context.Context, accessToken string, fileIDs []string) drive.FetchResult

// Handler orchestrates one chat turn.
type Handler struct {
	dispatcher Dispatcher
	resolver   *credential.Resolver
	files      FileLister     // optional
	fetchDrive DriveFetchFunc // optional
	metrics    *telemetry.Metrics
}

func NewHandler(dispatcher Dispatcher, resolver *credential.Resolver, fileStore FileLister, fetchDrive DriveFetchFunc, metrics *telemetry.Metrics) *Handler {
	return &Handler{
		dispatcher: dispatcher,
		resolver:   resolver,
		files:      fileStore,
		fetchDrive: fetchDrive,
		metrics:    metrics,
	}
}

// ServeChat handles POST /v1/chat.
func (h *Handler) ServeChat(w http.ResponseWriter, r *http.Request) {
	reqID := w.Header().Get("X-Request-ID")
	started := time.Now()

	authInfo, ok := auth.AuthFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, reqID, "Unauthorized - Please log in again")
		return
	}

	var req types.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, reqID, "Invalid request body")
		return
	}

	// The header is only the transport for the BYOK key. Whether the key is
	// used is decided by useOwnKey alone: a request that did not opt in keeps
	// the system key even when a key header is present.
	suppliedKey := r.Header.Get(HeaderUserAPIKey)
	if p := r.Header.Get(HeaderProvider); p != "" {
		req.Provider = p
	}
	if m := r.Header.Get(HeaderModel); m != "" {
		req.Model = m
	}

	if strings.TrimSpace(req.Message) == "" {
		httputil.WriteBadRequest(w, reqID, "Message is required")
		return
	}

	p := types.ParseProvider(req.Provider)

	apiKey, err := h.resolver.Resolve(req.UseOwnKey, suppliedKey, p)
	if err != nil {
		switch {
		case errors.Is(err, credential.ErrMissingCredential):
			httputil.WriteBadRequest(w, reqID, "API key is required when using your own key")
		case errors.Is(err, credential.ErrProviderUnconfigured):
			slog.Error("provider unconfigured", "request_id", reqID, "provider", p)
			httputil.WriteInternalError(w, reqID, "AI provider is not configured")
		default:
			httputil.WriteInternalError(w, reqID, "Failed to resolve credentials")
		}
		h.record(string(p), "rejected", req.UseOwnKey, started)
		return
	}

	fileContents := h.gatherContext(r, reqID, authInfo.UserID, &req)

	contextBlock := prompt.Assemble(fileContents)
	fullPrompt := prompt.BuildPrompt(contextBlock, req.Message)

	answer, err := h.dispatcher.Dispatch(r.Context(), p, fullPrompt, prompt.SystemPreamble, apiKey, req.Model)
	if err != nil {
		status := h.writeDispatchError(w, reqID, p, err)
		h.record(string(p), strconv.Itoa(status), req.UseOwnKey, started)
		return
	}

	slog.Info("chat turn completed",
		"request_id", reqID,
		"user_id", authInfo.UserID,
		"provider", p,
		"byok", req.UseOwnKey,
		"files", len(fileContents),
		"duration_ms", time.Since(started).Milliseconds(),
	)
	h.record(string(p), "200", req.UseOwnKey, started)
	httputil.WriteChatResponse(w, reqID, answer)
}

// gatherContext collects document context in priority order: body-supplied
// contents first, then stored files, then Drive imports. Collaborator
// failures are logged and skipped, never fatal to the chat turn.
func (h *Handler) gatherContext(r *http.Request, reqID, userID string, req *types.ChatRequest) []types.FileContent {
	fileContents := req.FileContents

	if h.files != nil {
		stored, err := h.files.ListByUser(r.Context(), userID)
		if err != nil {
			slog.Warn("stored file lookup failed, continuing without", "request_id", reqID, "user_id", userID, "error", err)
		}
		for _, f := range stored {
			fileContents = append(fileContents, types.FileContent{Name: f.Name, Content: f.Content})
		}
	}

	driveToken := r.Header.Get(drive.HeaderAccessToken)
	if h.fetchDrive != nil && driveToken != "" && len(req.DriveFileIDs) > 0 {
		result := h.fetchDrive(r.Context(), driveToken, req.DriveFileIDs)
		fileContents = append(fileContents, result.Contents...)
		for id, reason := range result.Failed {
			slog.Warn("drive import failed, continuing without", "request_id", reqID, "file_id", id, "reason", reason)
			if h.metrics != nil {
				h.metrics.RecordDriveImport("error")
			}
		}
		if h.metrics != nil {
			for range result.Contents {
				h.metrics.RecordDriveImport("ok")
			}
		}
	}
	return fileContents
}

// writeDispatchError maps a provider failure to the HTTP response and
// returns the status written.
func (h *Handler) writeDispatchError(w http.ResponseWriter, reqID string, p types.Provider, err error) int {
	var upstream *provider.UpstreamError
	switch {
	case errors.Is(err, provider.ErrInvalidCredential):
		httputil.WriteUnauthorized(w, reqID, "Invalid API key for the selected provider")
		return http.StatusUnauthorized
	case errors.Is(err, provider.ErrRateLimited):
		httputil.WriteRateLimited(w, reqID, "AI provider rate limit exceeded. Please try again later.")
		return http.StatusTooManyRequests
	case errors.As(err, &upstream):
		slog.Error("upstream provider error",
			"request_id", reqID,
			"provider", upstream.Provider,
			"status", upstream.Status,
			"body", upstream.Body,
		)
		httputil.WriteInternalError(w, reqID, "Failed to generate response")
		return http.StatusInternalServerError
	default:
		slog.Error("chat dispatch failed", "request_id", reqID, "provider", p, "error", err)
		httputil.WriteInternalError(w, reqID, "Failed to generate response")
		return http.StatusInternalServerError
	}
}

func (h *Handler) record(providerName, status string, byok bool, started time.Time) {
	if h.metrics == nil {
		return
	}
	h.metrics.RecordChat(providerName, status, byok, float64(time.Since(started).Milliseconds()))
}
