// Package files persists uploaded documents as extracted plain text so chat
// turns can reference them without re-parsing the original binary.
package files

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a file does not exist or belongs to another user.
var ErrNotFound = errors.New("file not found")

// StoredFile is one uploaded document with its extracted text content.
type StoredFile struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	Name      string    `json:"name"`
	MIMEType  string    `json:"mime_type"`
	SizeBytes int64     `json:"size_bytes"`
	Content   string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// Store is the persistence interface for uploaded documents.
type Store interface {
	Save(ctx context.Context, f *StoredFile) error
	ListByUser(ctx context.Context, userID string) ([]StoredFile, error)
	Delete(ctx context.Context, userID, fileID string) error
}

// PGStore is the Postgres-backed Store.
type PGStore struct {
	db *pgxpool.Pool
}

func NewPGStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) Save(ctx context.Context, f *StoredFile) error {
	const q = `
		INSERT INTO files (user_id, name, mime_type, size_bytes, content)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := s.db.QueryRow(ctx, q, f.UserID, f.Name, f.MIMEType, f.SizeBytes, f.Content).
		Scan(&f.ID, &f.CreatedAt)
	if err != nil {
		return fmt.Errorf("save file: %w", err)
	}
	return nil
}

// ListByUser returns the user's files newest first, extracted content included.
func (s *PGStore) ListByUser(ctx context.Context, userID string) ([]StoredFile, error) {
	const q = `
		SELECT id, user_id, name, mime_type, size_bytes, content, created_at
		FROM files
		WHERE user_id = $1
		ORDER BY created_at DESC`

	rows, err := s.db.Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	defer rows.Close()

	var out []StoredFile
	for rows.Next() {
		var f StoredFile
		if err := rows.Scan(&f.ID, &f.UserID, &f.Name, &f.MIMEType, &f.SizeBytes, &f.Content, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (s *PGStore) Delete(ctx context.Context, userID, fileID string) error {
	const q = `DELETE FROM files WHERE id = $1 AND user_id = $2`

	tag, err := s.db.Exec(ctx, q, fileID, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("delete file: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
