package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"

	"campusrag/internal/config"
	"campusrag/internal/llm"
	"campusrag/internal/seed"
	"campusrag/internal/vectorstore"
)

func main() {
	var dir string
	flag.StringVar(&dir, "dir", "", "directory with seed JSON files (defaults to SEED_DIR)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))

	if dir == "" {
		dir = cfg.SeedDir
	}

	ctx := context.Background()

	vectorStore, err := vectorstore.NewQdrantStore(cfg.QdrantURL)
	if err != nil {
		log.Fatalf("Failed to create Qdrant client: %v", err)
	}

	if err := vectorStore.EnsureCollection(ctx, cfg.QdrantCollection, cfg.VectorSize); err != nil {
		log.Fatalf("Failed to ensure Qdrant collection: %v", err)
	}
	slog.Info("Qdrant collection ready", "collection", cfg.QdrantCollection, "vector_size", cfg.VectorSize)

	embedder := llm.NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.LLMAPIKey, cfg.EmbeddingModelName, cfg.VectorSize)

	seeder := seed.NewSeeder(embedder, vectorStore, cfg.QdrantCollection)
	total, err := seeder.Run(ctx, dir)
	if err != nil {
		log.Fatalf("Seeding failed after %d records: %v", total, err)
	}

	slog.Info("Seeding completed", "records", total, "dir", dir)
}
