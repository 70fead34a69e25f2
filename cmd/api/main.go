package main

import (
	"context"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"

	"campusrag/internal/config"
	"campusrag/internal/extract"
	"campusrag/internal/filestore"
	"campusrag/internal/http"
	"campusrag/internal/ingest"
	"campusrag/internal/llm"
	"campusrag/internal/rag"
	"campusrag/internal/storage"
	"campusrag/internal/vectorstore"
)

//go:generate swagger generate spec -o swagger.json

// General API information
//
// This API answers university questions with RAG (Retrieval-Augmented
// Generation) over seeded knowledge and user-uploaded PDFs.
//
// swagger:meta
//
// ---
// swagger: '2.0'
// info:
//   title: Campus RAG API
//   description: |
//     RAG (Retrieval-Augmented Generation) API for a university assistant.
//     Ask questions about admissions, academics, fees, hostels, placements,
//     scholarships, timetables, and campus facilities, or upload PDFs and
//     ask questions about them.
//   version: 1.0.0
// schemes:
//   - http
//   - https
// consumes:
//   - application/json
// produces:
//   - application/json

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure structured logging with configurable level and format
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	// Initialize database
	db, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("Database initialized", "path", cfg.DBPath)

	documentRepo := storage.NewDocumentRepo(db)

	ctx := context.Background()

	// Initialize Qdrant vector store
	vectorStore, err := vectorstore.NewQdrantStore(cfg.QdrantURL)
	if err != nil {
		log.Fatalf("Failed to create Qdrant client: %v", err)
	}

	// Ensure collection exists with correct vector size
	if err := vectorStore.EnsureCollection(ctx, cfg.QdrantCollection, cfg.VectorSize); err != nil {
		log.Fatalf("Failed to ensure Qdrant collection: %v", err)
	}
	slog.Info("Qdrant collection ready", "collection", cfg.QdrantCollection, "vector_size", cfg.VectorSize)

	// Validate embedding client vector size (fail-fast)
	embedder := llm.NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.LLMAPIKey, cfg.EmbeddingModelName, cfg.VectorSize)
	testEmbeddings, err := embedder.EmbedTexts(ctx, []string{"test"})
	if err != nil {
		log.Fatalf("Failed to validate embedding client: %v", err)
	}
	if len(testEmbeddings) == 0 || len(testEmbeddings[0]) != cfg.VectorSize {
		log.Fatalf("Embedding vector size mismatch: expected %d, got %d", cfg.VectorSize, len(testEmbeddings[0]))
	}
	slog.Info("Embedding client validated", "vector_size", cfg.VectorSize)

	// Object storage for uploaded PDFs. Optional; disabled without a bucket.
	var objectStore filestore.ObjectStore
	if cfg.S3Bucket != "" {
		s3Store, err := filestore.NewS3Store(ctx, filestore.S3Config{
			Bucket:   cfg.S3Bucket,
			Region:   cfg.S3Region,
			Endpoint: cfg.S3Endpoint,
			Prefix:   cfg.S3Prefix,
		})
		if err != nil {
			log.Fatalf("Failed to create S3 store: %v", err)
		}
		objectStore = s3Store
		slog.Info("Object storage enabled", "bucket", cfg.S3Bucket, "prefix", cfg.S3Prefix)
	} else {
		objectStore = filestore.Disabled{}
		slog.Info("Object storage disabled, uploaded files kept in vectors only")
	}

	// Create ingestion pipeline for uploaded PDFs
	pipeline := ingest.NewPipeline(
		extract.NewPDFExtractor(),
		embedder,
		vectorStore,
		objectStore,
		documentRepo,
		cfg.QdrantCollection,
		cfg.ChunkSize,
	)

	// Create LLM client (external service layer)
	llmClient := llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModelName)

	// Create RAG engine
	ragEngine := rag.NewEngine(embedder, vectorStore, llmClient, rag.Options{
		Collection:         cfg.QdrantCollection,
		RetrieveLimit:      cfg.RetrieveLimit,
		NumCandidates:      cfg.NumCandidates,
		RelevanceThreshold: cfg.RelevanceThreshold,
		UploadChunkSize:    cfg.UploadChunkSize,
	})
	slog.Info("RAG engine initialized")

	// Create router with dependencies
	deps := &http.Deps{
		RAGEngine:      ragEngine,
		Pipeline:       pipeline,
		DocumentRepo:   documentRepo,
		VectorStore:    vectorStore,
		CollectionName: cfg.QdrantCollection,
	}
	router := http.NewRouter(deps)

	// Start API server
	addr := ":" + cfg.APIPort
	slog.Info("Starting API server", "addr", addr)
	slog.Debug("LLM configuration", "base_url", cfg.LLMBaseURL, "model", cfg.LLMModelName)
	if err := nethttp.ListenAndServe(addr, router); err != nil {
		log.Fatalf("API server failed to start: %v", err)
	}
}
