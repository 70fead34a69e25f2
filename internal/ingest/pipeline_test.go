package ingest_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	extractmocks "campusrag/internal/extract/mocks"
	filestoremocks "campusrag/internal/filestore/mocks"
	"campusrag/internal/ingest"
	ingestmocks "campusrag/internal/ingest/mocks"
	"campusrag/internal/storage"
	storagemocks "campusrag/internal/storage/mocks"
	"campusrag/internal/vectorstore"
	vectorstoremocks "campusrag/internal/vectorstore/mocks"

	"go.uber.org/mock/gomock"
)

func init() {
	// Set default logger to discard output for cleaner test output
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

const testCollection = "knowledge_embeddings"

type pipelineMocks struct {
	extractor *extractmocks.MockExtractor
	embedder  *ingestmocks.MockEmbedder
	store     *vectorstoremocks.MockVectorStore
	objects   *filestoremocks.MockObjectStore
	catalog   *storagemocks.MockDocumentStore
}

func newTestPipeline(ctrl *gomock.Controller) (*ingest.Pipeline, pipelineMocks) {
	m := pipelineMocks{
		extractor: extractmocks.NewMockExtractor(ctrl),
		embedder:  ingestmocks.NewMockEmbedder(ctrl),
		store:     vectorstoremocks.NewMockVectorStore(ctrl),
		objects:   filestoremocks.NewMockObjectStore(ctrl),
		catalog:   storagemocks.NewMockDocumentStore(ctrl),
	}
	p := ingest.NewPipeline(m.extractor, m.embedder, m.store, m.objects, m.catalog, testCollection, 1200)
	return p, m
}

func testDoc() ingest.Document {
	return ingest.Document{
		FileName:    "handbook.pdf",
		ContentType: "application/pdf",
		Data:        []byte("%PDF-1.4 fake"),
		UploadedBy:  "student-42",
	}
}

func TestPipeline_IngestDocument_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	p, m := newTestPipeline(ctrl)
	doc := testDoc()

	m.objects.EXPECT().
		Upload(gomock.Any(), "handbook.pdf", "application/pdf", doc.Data).
		Return("https://bucket.s3.us-east-1.amazonaws.com/user-pdfs/handbook.pdf", nil)
	m.extractor.EXPECT().
		ExtractText(gomock.Any(), doc.Data).
		Return("The hostel fee is 45000 INR per year. The mess plan is vegetarian.", nil)
	m.store.EXPECT().
		Count(gomock.Any(), testCollection, map[string]any{
			"file_name": "handbook.pdf",
			"domain":    "user_uploaded",
		}).
		Return(uint64(0), nil)
	m.embedder.EXPECT().
		EmbedTexts(gomock.Any(), gomock.Len(1)).
		Return([][]float32{{0.1, 0.2, 0.3}}, nil)
	m.store.EXPECT().
		Upsert(gomock.Any(), testCollection, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, points []vectorstore.Point) error {
			if len(points) != 1 {
				t.Errorf("Upsert() got %d points, want 1", len(points))
				return nil
			}
			meta := points[0].Meta
			if meta["domain"] != "user_uploaded" {
				t.Errorf("point domain = %v, want user_uploaded", meta["domain"])
			}
			if meta["file_name"] != "handbook.pdf" {
				t.Errorf("point file_name = %v, want handbook.pdf", meta["file_name"])
			}
			if meta["chunk_index"] != 0 {
				t.Errorf("point chunk_index = %v, want 0", meta["chunk_index"])
			}
			if meta["uploaded_by"] != "student-42" {
				t.Errorf("point uploaded_by = %v, want student-42", meta["uploaded_by"])
			}
			if points[0].ID == "" {
				t.Error("point ID is empty, want a UUID")
			}
			return nil
		})
	m.catalog.EXPECT().
		Insert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, record *storage.DocumentRecord) error {
			if record.FileName != "handbook.pdf" || record.ChunkCount != 1 {
				t.Errorf("catalog record = %+v, want handbook.pdf with 1 chunk", record)
			}
			return nil
		})

	outcome := p.IngestDocument(context.Background(), doc)

	if outcome.Status != ingest.StatusSuccess {
		t.Errorf("Status = %q, want %q (err: %v)", outcome.Status, ingest.StatusSuccess, outcome.Err)
	}
	if outcome.ChunksStored != 1 {
		t.Errorf("ChunksStored = %d, want 1", outcome.ChunksStored)
	}
	if outcome.ExtractedText == "" {
		t.Error("ExtractedText is empty, want extracted content")
	}
}

func TestPipeline_IngestDocument_AlreadyExists(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	p, m := newTestPipeline(ctrl)
	doc := testDoc()

	m.objects.EXPECT().
		Upload(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return("", nil)
	m.extractor.EXPECT().
		ExtractText(gomock.Any(), doc.Data).
		Return("Some already indexed content.", nil)
	m.store.EXPECT().
		Count(gomock.Any(), testCollection, gomock.Any()).
		Return(uint64(4), nil)
	// No embed, no upsert, no catalog insert for duplicates.

	outcome := p.IngestDocument(context.Background(), doc)

	if outcome.Status != ingest.StatusAlreadyExists {
		t.Errorf("Status = %q, want %q", outcome.Status, ingest.StatusAlreadyExists)
	}
	if outcome.ExtractedText != "Some already indexed content." {
		t.Errorf("ExtractedText = %q, want text preserved for duplicate files", outcome.ExtractedText)
	}
	if outcome.Err != nil {
		t.Errorf("Err = %v, want nil", outcome.Err)
	}
}

func TestPipeline_IngestDocument_ExtractionFailures(t *testing.T) {
	tests := []struct {
		name        string
		extractText string
		extractErr  error
	}{
		{name: "extractor error", extractErr: errors.New("pdftotext failed")},
		{name: "empty text", extractText: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			p, m := newTestPipeline(ctrl)
			doc := testDoc()

			m.objects.EXPECT().
				Upload(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
				Return("", nil)
			m.extractor.EXPECT().
				ExtractText(gomock.Any(), doc.Data).
				Return(tt.extractText, tt.extractErr)

			outcome := p.IngestDocument(context.Background(), doc)

			if outcome.Status != ingest.StatusFailed {
				t.Errorf("Status = %q, want %q", outcome.Status, ingest.StatusFailed)
			}
			var extractionErr *ingest.ExtractionError
			if !errors.As(outcome.Err, &extractionErr) {
				t.Errorf("Err = %v, want *ExtractionError", outcome.Err)
			}
		})
	}
}

func TestPipeline_IngestDocument_ArchiveFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	p, m := newTestPipeline(ctrl)
	doc := testDoc()

	m.objects.EXPECT().
		Upload(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return("", errors.New("bucket unreachable"))

	outcome := p.IngestDocument(context.Background(), doc)

	if outcome.Status != ingest.StatusFailed {
		t.Errorf("Status = %q, want %q", outcome.Status, ingest.StatusFailed)
	}
	if outcome.Err == nil {
		t.Error("Err = nil, want archive error")
	}
}

func TestPipeline_IngestDocument_CatalogFailureIsNotFatal(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	p, m := newTestPipeline(ctrl)
	doc := testDoc()

	m.objects.EXPECT().
		Upload(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return("", nil)
	m.extractor.EXPECT().
		ExtractText(gomock.Any(), doc.Data).
		Return("Short content.", nil)
	m.store.EXPECT().
		Count(gomock.Any(), testCollection, gomock.Any()).
		Return(uint64(0), nil)
	m.embedder.EXPECT().
		EmbedTexts(gomock.Any(), gomock.Any()).
		Return([][]float32{{0.5}}, nil)
	m.store.EXPECT().
		Upsert(gomock.Any(), testCollection, gomock.Any()).
		Return(nil)
	m.catalog.EXPECT().
		Insert(gomock.Any(), gomock.Any()).
		Return(errors.New("disk full"))

	outcome := p.IngestDocument(context.Background(), doc)

	// Vectors are stored and searchable; a catalog miss only degrades
	// the document listing.
	if outcome.Status != ingest.StatusSuccess {
		t.Errorf("Status = %q, want %q despite catalog failure", outcome.Status, ingest.StatusSuccess)
	}
}

func TestPipeline_IngestBatch_IsolatesFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	p, m := newTestPipeline(ctrl)

	docs := []ingest.Document{
		{FileName: "bad.pdf", ContentType: "application/pdf", Data: []byte("x"), UploadedBy: "anonymous"},
		{FileName: "good.pdf", ContentType: "application/pdf", Data: []byte("y"), UploadedBy: "anonymous"},
	}

	m.objects.EXPECT().
		Upload(gomock.Any(), "bad.pdf", gomock.Any(), gomock.Any()).
		Return("", nil)
	m.extractor.EXPECT().
		ExtractText(gomock.Any(), []byte("x")).
		Return("", errors.New("corrupt file"))

	m.objects.EXPECT().
		Upload(gomock.Any(), "good.pdf", gomock.Any(), gomock.Any()).
		Return("", nil)
	m.extractor.EXPECT().
		ExtractText(gomock.Any(), []byte("y")).
		Return("Valid content here.", nil)
	m.store.EXPECT().
		Count(gomock.Any(), testCollection, gomock.Any()).
		Return(uint64(0), nil)
	m.embedder.EXPECT().
		EmbedTexts(gomock.Any(), gomock.Any()).
		Return([][]float32{{0.1}}, nil)
	m.store.EXPECT().
		Upsert(gomock.Any(), testCollection, gomock.Any()).
		Return(nil)
	m.catalog.EXPECT().
		Insert(gomock.Any(), gomock.Any()).
		Return(nil)

	outcomes := p.IngestBatch(context.Background(), docs)

	if len(outcomes) != 2 {
		t.Fatalf("IngestBatch() returned %d outcomes, want 2", len(outcomes))
	}
	if outcomes[0].Status != ingest.StatusFailed {
		t.Errorf("outcomes[0].Status = %q, want %q", outcomes[0].Status, ingest.StatusFailed)
	}
	if outcomes[1].Status != ingest.StatusSuccess {
		t.Errorf("outcomes[1].Status = %q, want %q", outcomes[1].Status, ingest.StatusSuccess)
	}
}

func TestPipeline_IngestBatch_ContextCancelled(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	p, _ := newTestPipeline(ctrl)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcomes := p.IngestBatch(ctx, []ingest.Document{testDoc()})

	if len(outcomes) != 1 {
		t.Fatalf("IngestBatch() returned %d outcomes, want 1", len(outcomes))
	}
	if outcomes[0].Status != ingest.StatusFailed {
		t.Errorf("Status = %q, want %q", outcomes[0].Status, ingest.StatusFailed)
	}
	if !errors.Is(outcomes[0].Err, context.Canceled) {
		t.Errorf("Err = %v, want context.Canceled", outcomes[0].Err)
	}
}
