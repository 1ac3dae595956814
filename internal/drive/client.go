// Package drive imports documents from a user's Google Drive using an OAuth
// access token supplied per request. The server holds no Drive credentials of
// its own.
package drive

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"golang.org/x/oauth2"
	driveapi "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/docuchat/docuchat-server/internal/extract"
	"github.com/docuchat/docuchat-server/internal/types"
)

// Google-native MIME types that must be exported rather than downloaded.
const (
	mimeGoogleDoc   = "application/vnd.google-apps.document"
	mimeGoogleSheet = "application/vnd.google-apps.spreadsheet"
)

// listQuery restricts listing to document types the extractor understands,
// plus Google-native docs and sheets which are exported to plain formats.
var listQuery = strings.Join([]string{
	"mimeType='" + extract.MIMEPDF + "'",
	"mimeType='" + extract.MIMEDocx + "'",
	"mimeType='" + extract.MIMEXlsx + "'",
	"mimeType='" + extract.MIMEXls + "'",
	"mimeType='" + extract.MIMEText + "'",
	"mimeType='" + mimeGoogleDoc + "'",
	"mimeType='" + mimeGoogleSheet + "'",
}, " or ")

// Document is one listable Drive file.
type Document struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	MIMEType     string `json:"mime_type"`
	ModifiedTime string `json:"modified_time"`
}

// Service wraps the Drive API for one user's access token.
type Service struct {
	svc *driveapi.Service
}

// NewService builds a Drive client authenticated with the caller's OAuth
// access token.
func NewService(ctx context.Context, accessToken string) (*Service, error) {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})
	svc, err := driveapi.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("create drive client: %w", err)
	}
	return &Service{svc: svc}, nil
}

// ListDocuments returns the user's supported documents, newest first.
func (s *Service) ListDocuments(ctx context.Context, pageSize int64) ([]Document, error) {
	if pageSize <= 0 {
		pageSize = 50
	}
	resp, err := s.svc.Files.List().
		Context(ctx).
		Q("(" + listQuery + ") and trashed=false").
		OrderBy("modifiedTime desc").
		PageSize(pageSize).
		Fields("files(id, name, mimeType, modifiedTime)").
		Do()
	if err != nil {
		return nil, fmt.Errorf("list drive files: %w", err)
	}

	out := make([]Document, 0, len(resp.Files))
	for _, f := range resp.Files {
		out = append(out, Document{
			ID:           f.Id,
			Name:         f.Name,
			MIMEType:     f.MimeType,
			ModifiedTime: f.ModifiedTime,
		})
	}
	return out, nil
}

// FetchResult is the outcome of fetching one batch of Drive documents.
// Failed maps file ID to the failure reason; one bad document never
// discards the rest of the batch.
type FetchResult struct {
	Contents []types.FileContent
	Failed   map[string]string
}

// FetchAll downloads and extracts each requested document. Google-native
// docs and sheets are exported to plain text and CSV respectively; binary
// formats go through the extractor.
func (s *Service) FetchAll(ctx context.Context, fileIDs []string) FetchResult {
	result := FetchResult{Failed: map[string]string{}}

	for _, id := range fileIDs {
		content, name, err := s.fetchOne(ctx, id)
		if err != nil {
			slog.Warn("drive fetch failed", "file_id", id, "error", err)
			result.Failed[id] = err.Error()
			continue
		}
		result.Contents = append(result.Contents, types.FileContent{
			Name:    name,
			Content: content,
		})
	}
	return result
}

func (s *Service) fetchOne(ctx context.Context, id string) (content, name string, err error) {
	meta, err := s.svc.Files.Get(id).Context(ctx).Fields("id, name, mimeType").Do()
	if err != nil {
		return "", "", fmt.Errorf("get metadata: %w", err)
	}

	switch meta.MimeType {
	case mimeGoogleDoc:
		data, err := s.export(ctx, id, "text/plain")
		if err != nil {
			return "", "", err
		}
		return extract.Extract(data, extract.MIMEText, meta.Name), meta.Name, nil
	case mimeGoogleSheet:
		data, err := s.export(ctx, id, "text/csv")
		if err != nil {
			return "", "", err
		}
		return extract.Extract(data, extract.MIMEText, meta.Name), meta.Name, nil
	default:
		resp, err := s.svc.Files.Get(id).Context(ctx).Download()
		if err != nil {
			return "", "", fmt.Errorf("download: %w", err)
		}
		defer resp.Body.Close()
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", "", fmt.Errorf("read download: %w", err)
		}
		return extract.Extract(data, meta.MimeType, meta.Name), meta.Name, nil
	}
}

func (s *Service) export(ctx context.Context, id, mimeType string) ([]byte, error) {
	resp, err := s.svc.Files.Export(id, mimeType).Context(ctx).Download()
	if err != nil {
		return nil, fmt.Errorf("export as %s: %w", mimeType, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read export: %w", err)
	}
	return data, nil
}
