package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_document_store.go -package=mocks campusrag/internal/storage DocumentStore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")
)

// DocumentRecord is the catalog entry for one ingested document.
// The vector store owns the chunks; this table is the audit trail of
// which files have been ingested, by whom, and where the original lives.
type DocumentRecord struct {
	ID          string // UUID
	FileName    string // Original filename
	Domain      string // Logical category, e.g. "user_uploaded"
	ExternalRef string // Durable URL to the original binary, if stored
	UploadedBy  string // Actor identifier or "anonymous"
	ChunkCount  int    // Number of chunks stored in the vector index
	CreatedAt   time.Time
}

// DocumentStore defines the interface for document catalog operations.
type DocumentStore interface {
	// Insert adds a new document record.
	Insert(ctx context.Context, doc *DocumentRecord) error
	// GetByNameAndDomain gets a document by file name and domain.
	// Returns nil and ErrNotFound if not found.
	GetByNameAndDomain(ctx context.Context, fileName, domain string) (*DocumentRecord, error)
	// ListAll returns all document records, newest first.
	ListAll(ctx context.Context) ([]*DocumentRecord, error)
}

// DocumentRepo provides methods for document catalog operations.
// It implements the DocumentStore interface.
type DocumentRepo struct {
	db *sql.DB
}

// NewDocumentRepo creates a new DocumentRepo.
func NewDocumentRepo(db *sql.DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

// Insert adds a new document record.
func (r *DocumentRepo) Insert(ctx context.Context, doc *DocumentRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO documents (id, file_name, domain, external_ref, uploaded_by, chunk_count)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		doc.ID, doc.FileName, doc.Domain, doc.ExternalRef, doc.UploadedBy, doc.ChunkCount,
	)
	if err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}
	return nil
}

// GetByNameAndDomain gets a document by file name and domain.
// Returns nil and ErrNotFound if not found.
func (r *DocumentRepo) GetByNameAndDomain(ctx context.Context, fileName, domain string) (*DocumentRecord, error) {
	var doc DocumentRecord
	var createdAtStr string

	err := r.db.QueryRowContext(ctx,
		"SELECT id, file_name, domain, external_ref, uploaded_by, chunk_count, created_at FROM documents WHERE file_name = ? AND domain = ?",
		fileName, domain,
	).Scan(&doc.ID, &doc.FileName, &doc.Domain, &doc.ExternalRef, &doc.UploadedBy, &doc.ChunkCount, &createdAtStr)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query document: %w", err)
	}

	doc.CreatedAt, err = parseTimestamp(createdAtStr)
	if err != nil {
		return nil, err
	}

	return &doc, nil
}

// ListAll returns all document records, newest first.
func (r *DocumentRepo) ListAll(ctx context.Context) ([]*DocumentRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, file_name, domain, external_ref, uploaded_by, chunk_count, created_at FROM documents ORDER BY created_at DESC",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var docs []*DocumentRecord
	for rows.Next() {
		var doc DocumentRecord
		var createdAtStr string
		if err := rows.Scan(&doc.ID, &doc.FileName, &doc.Domain, &doc.ExternalRef, &doc.UploadedBy, &doc.ChunkCount, &createdAtStr); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		doc.CreatedAt, err = parseTimestamp(createdAtStr)
		if err != nil {
			return nil, err
		}
		docs = append(docs, &doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate documents: %w", err)
	}

	return docs, nil
}

// parseTimestamp parses a SQLite DATETIME string.
func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02 15:04:05", s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse timestamp: %w", err)
	}
	return t, nil
}
