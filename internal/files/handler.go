package files

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/docuchat/docuchat-server/internal/auth"
	"github.com/docuchat/docuchat-server/internal/extract"
	"github.com/docuchat/docuchat-server/internal/httputil"
	"github.com/docuchat/docuchat-server/internal/telemetry"
)

// Handler serves the document upload endpoints.
type Handler struct {
	store        Store
	maxFileBytes int64
	metrics      *telemetry.Metrics
}

func NewHandler(store Store, maxFileBytes int64, metrics *telemetry.Metrics) *Handler {
	return &Handler{store: store, maxFileBytes: maxFileBytes, metrics: metrics}
}

// Upload handles POST /v1/files. The document is extracted to plain text at
// upload time; the original bytes are not retained.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	reqID := w.Header().Get("X-Request-ID")

	authInfo, ok := auth.AuthFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, reqID, "Unauthorized - Please log in again")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxFileBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			httputil.WriteBadRequest(w, reqID, "File too large")
			return
		}
		httputil.WriteBadRequest(w, reqID, "Missing file field in multipart form")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			httputil.WriteBadRequest(w, reqID, "File too large")
			return
		}
		slog.Error("read upload", "request_id", reqID, "error", err)
		httputil.WriteInternalError(w, reqID, "Failed to read uploaded file")
		return
	}

	mimeType := header.Header.Get("Content-Type")
	content := extract.Extract(data, mimeType, header.Filename)
	if h.metrics != nil {
		h.metrics.RecordExtraction(mimeType)
	}

	stored := &StoredFile{
		UserID:    authInfo.UserID,
		Name:      header.Filename,
		MIMEType:  mimeType,
		SizeBytes: int64(len(data)),
		Content:   content,
	}
	if err := h.store.Save(r.Context(), stored); err != nil {
		slog.Error("save file", "request_id", reqID, "user_id", authInfo.UserID, "error", err)
		httputil.WriteInternalError(w, reqID, "Failed to save file")
		return
	}

	slog.Info("file uploaded",
		"request_id", reqID,
		"user_id", authInfo.UserID,
		"file_id", stored.ID,
		"name", stored.Name,
		"size_bytes", stored.SizeBytes,
	)
	httputil.WriteJSON(w, reqID, http.StatusCreated, uploadResponse{
		Success: true,
		File: uploadedFile{
			ID:         stored.ID,
			Name:       stored.Name,
			Size:       stored.SizeBytes,
			Type:       stored.MIMEType,
			UploadedAt: stored.CreatedAt,
		},
	})
}

type uploadResponse struct {
	Success bool         `json:"success"`
	File    uploadedFile `json:"file"`
}

type uploadedFile struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	Type       string    `json:"type"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// List handles GET /v1/files.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	reqID := w.Header().Get("X-Request-ID")

	authInfo, ok := auth.AuthFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, reqID, "Unauthorized - Please log in again")
		return
	}

	list, err := h.store.ListByUser(r.Context(), authInfo.UserID)
	if err != nil {
		slog.Error("list files", "request_id", reqID, "user_id", authInfo.UserID, "error", err)
		httputil.WriteInternalError(w, reqID, "Failed to list files")
		return
	}
	if list == nil {
		list = []StoredFile{}
	}
	httputil.WriteJSON(w, reqID, http.StatusOK, map[string]interface{}{"files": list})
}

// Delete handles DELETE /v1/files/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	reqID := w.Header().Get("X-Request-ID")

	authInfo, ok := auth.AuthFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, reqID, "Unauthorized - Please log in again")
		return
	}

	fileID := chi.URLParam(r, "id")
	if fileID == "" {
		httputil.WriteBadRequest(w, reqID, "Missing file id")
		return
	}

	if err := h.store.Delete(r.Context(), authInfo.UserID, fileID); err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.WriteError(w, reqID, http.StatusNotFound, "File not found")
			return
		}
		slog.Error("delete file", "request_id", reqID, "user_id", authInfo.UserID, "error", err)
		httputil.WriteInternalError(w, reqID, "Failed to delete file")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
