package drive

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/docuchat/docuchat-server/internal/httputil"
)

// HeaderAccessToken carries the caller's Google OAuth access token.
const HeaderAccessToken = "X-Drive-Token"

// Fetch builds a one-shot Drive client for the given access token and fetches
// the requested documents. On client construction failure every requested ID
// is reported as failed.
func Fetch(ctx context.Context, accessToken string, fileIDs []string) FetchResult {
	svc, err := NewService(ctx, accessToken)
	if err != nil {
		failed := make(map[string]string, len(fileIDs))
		for _, id := range fileIDs {
			failed[id] = err.Error()
		}
		return FetchResult{Failed: failed}
	}
	return svc.FetchAll(ctx, fileIDs)
}

type listFunc func(ctx context.Context, accessToken string, pageSize int64) ([]Document, error)

// Handler serves the Drive listing endpoint.
type Handler struct {
	list listFunc
}

func NewHandler() *Handler {
	return &Handler{
		list: func(ctx context.Context, accessToken string, pageSize int64) ([]Document, error) {
			svc, err := NewService(ctx, accessToken)
			if err != nil {
				return nil, err
			}
			return svc.ListDocuments(ctx, pageSize)
		},
	}
}

// List handles GET /v1/drive/files.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	reqID := w.Header().Get("X-Request-ID")

	token := r.Header.Get(HeaderAccessToken)
	if token == "" {
		httputil.WriteBadRequest(w, reqID, "Missing "+HeaderAccessToken+" header")
		return
	}

	docs, err := h.list(r.Context(), token, 50)
	if err != nil {
		slog.Error("drive list", "request_id", reqID, "error", err)
		httputil.WriteInternalError(w, reqID, "Failed to list Drive files")
		return
	}
	if docs == nil {
		docs = []Document{}
	}
	httputil.WriteJSON(w, reqID, http.StatusOK, map[string]interface{}{"files": docs})
}
