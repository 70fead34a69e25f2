package ingest

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_embedder.go -package=mocks campusrag/internal/ingest Embedder

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"campusrag/internal/contextutil"
	"campusrag/internal/extract"
	"campusrag/internal/filestore"
	"campusrag/internal/storage"
	"campusrag/internal/vectorstore"
)

// UserUploadedDomain tags vectors that came from user uploads so they can
// be counted and filtered separately from seeded knowledge.
const UserUploadedDomain = "user_uploaded"

// Outcome statuses for a single document.
const (
	StatusSuccess       = "success"
	StatusFailed        = "failed"
	StatusAlreadyExists = "already_exists"
)

// Embedder converts texts into fixed-dimension vectors.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Document is one uploaded file to ingest.
type Document struct {
	FileName    string
	ContentType string
	Data        []byte
	UploadedBy  string
}

// Outcome reports what happened to one document.
type Outcome struct {
	FileName     string
	Status       string
	ChunksStored int
	// ExtractedText is populated whenever extraction succeeded, even if
	// the document was skipped as a duplicate. Callers that answer
	// questions against just-uploaded files need the text either way.
	ExtractedText string
	Err           error
}

// ExtractionError reports a document whose text could not be extracted.
type ExtractionError struct {
	FileName string
	Reason   string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("failed to extract text from %s: %s", e.FileName, e.Reason)
}

// Pipeline ingests uploaded documents: archive the original file, extract
// its text, chunk, embed, and store vectors, then record the document in
// the catalog.
type Pipeline struct {
	extractor  extract.Extractor
	embedder   Embedder
	store      vectorstore.VectorStore
	objects    filestore.ObjectStore
	catalog    storage.DocumentStore
	collection string
	chunkSize  int
}

// NewPipeline creates an ingestion pipeline.
func NewPipeline(
	extractor extract.Extractor,
	embedder Embedder,
	store vectorstore.VectorStore,
	objects filestore.ObjectStore,
	catalog storage.DocumentStore,
	collection string,
	chunkSize int,
) *Pipeline {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Pipeline{
		extractor:  extractor,
		embedder:   embedder,
		store:      store,
		objects:    objects,
		catalog:    catalog,
		collection: collection,
		chunkSize:  chunkSize,
	}
}

// IngestDocument processes a single uploaded document end to end.
// Ingestion is idempotent by file name: a document whose name already
// exists in the uploaded domain is skipped, not re-embedded.
func (p *Pipeline) IngestDocument(ctx context.Context, doc Document) Outcome {
	logger := contextutil.LoggerFromContext(ctx)
	outcome := Outcome{FileName: doc.FileName}

	externalRef, err := p.objects.Upload(ctx, doc.FileName, doc.ContentType, doc.Data)
	if err != nil {
		logger.ErrorContext(ctx, "failed to archive uploaded file", "file_name", doc.FileName, "error", err)
		outcome.Status = StatusFailed
		outcome.Err = fmt.Errorf("failed to archive file: %w", err)
		return outcome
	}

	text, err := p.extractor.ExtractText(ctx, doc.Data)
	if err != nil {
		logger.ErrorContext(ctx, "text extraction failed", "file_name", doc.FileName, "error", err)
		outcome.Status = StatusFailed
		outcome.Err = &ExtractionError{FileName: doc.FileName, Reason: err.Error()}
		return outcome
	}
	if text == "" {
		outcome.Status = StatusFailed
		outcome.Err = &ExtractionError{FileName: doc.FileName, Reason: "document contains no extractable text"}
		return outcome
	}
	outcome.ExtractedText = text

	existing, err := p.store.Count(ctx, p.collection, map[string]any{
		"file_name": doc.FileName,
		"domain":    UserUploadedDomain,
	})
	if err != nil {
		logger.ErrorContext(ctx, "duplicate check failed", "file_name", doc.FileName, "error", err)
		outcome.Status = StatusFailed
		outcome.Err = fmt.Errorf("failed to check for existing document: %w", err)
		return outcome
	}
	if existing > 0 {
		logger.InfoContext(ctx, "document already ingested, skipping", "file_name", doc.FileName)
		outcome.Status = StatusAlreadyExists
		return outcome
	}

	chunks := SplitText(text, p.chunkSize)
	createdAt := time.Now().UTC().Format(time.RFC3339)

	for i, chunk := range chunks {
		vectors, err := p.embedder.EmbedTexts(ctx, []string{chunk})
		if err != nil {
			outcome.Status = StatusFailed
			outcome.Err = fmt.Errorf("failed to embed chunk %d: %w", i, err)
			return outcome
		}

		point := vectorstore.Point{
			ID:  uuid.New().String(),
			Vec: vectors[0],
			Meta: map[string]any{
				"content":      chunk,
				"domain":       UserUploadedDomain,
				"file_name":    doc.FileName,
				"chunk_index":  i,
				"external_ref": externalRef,
				"uploaded_by":  doc.UploadedBy,
				"created_at":   createdAt,
			},
		}
		if err := p.store.Upsert(ctx, p.collection, []vectorstore.Point{point}); err != nil {
			outcome.Status = StatusFailed
			outcome.Err = fmt.Errorf("failed to store chunk %d: %w", i, err)
			return outcome
		}
	}

	record := &storage.DocumentRecord{
		ID:          uuid.New().String(),
		FileName:    doc.FileName,
		Domain:      UserUploadedDomain,
		ExternalRef: externalRef,
		UploadedBy:  doc.UploadedBy,
		ChunkCount:  len(chunks),
	}
	if err := p.catalog.Insert(ctx, record); err != nil {
		// The vectors are already stored and searchable; a catalog miss
		// only degrades the document listing.
		logger.WarnContext(ctx, "failed to record document in catalog", "file_name", doc.FileName, "error", err)
	}

	logger.InfoContext(ctx, "document ingested",
		"file_name", doc.FileName,
		"chunks_stored", len(chunks),
		"uploaded_by", doc.UploadedBy,
	)

	outcome.Status = StatusSuccess
	outcome.ChunksStored = len(chunks)
	return outcome
}

// IngestBatch processes documents sequentially. One document failing does
// not stop the rest; each outcome carries its own status and error.
func (p *Pipeline) IngestBatch(ctx context.Context, docs []Document) []Outcome {
	outcomes := make([]Outcome, 0, len(docs))
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			outcomes = append(outcomes, Outcome{
				FileName: doc.FileName,
				Status:   StatusFailed,
				Err:      err,
			})
			continue
		}
		outcomes = append(outcomes, p.IngestDocument(ctx, doc))
	}
	return outcomes
}
