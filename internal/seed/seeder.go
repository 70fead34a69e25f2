package seed

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_embedder.go -package=mocks campusrag/internal/seed Embedder

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"campusrag/internal/contextutil"
	"campusrag/internal/vectorstore"
)

// Embedder converts texts into fixed-dimension vectors.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Seeder loads JSON knowledge files into the vector store. Each file
// holds an array of records for one domain, named after the file.
type Seeder struct {
	embedder   Embedder
	store      vectorstore.VectorStore
	collection string
}

// NewSeeder creates a seeder.
func NewSeeder(embedder Embedder, store vectorstore.VectorStore, collection string) *Seeder {
	return &Seeder{embedder: embedder, store: store, collection: collection}
}

// Run embeds every record in every *.json file under dir and stores the
// vectors. Returns the total number of records embedded.
func (s *Seeder) Run(ctx context.Context, dir string) (int, error) {
	logger := contextutil.LoggerFromContext(ctx)

	matches, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return 0, fmt.Errorf("failed to list seed files: %w", err)
	}
	if len(matches) == 0 {
		logger.WarnContext(ctx, "no seed files found", "dir", dir)
		return 0, nil
	}

	total := 0
	for _, path := range matches {
		count, err := s.seedFile(ctx, path)
		if err != nil {
			return total, fmt.Errorf("failed to seed %s: %w", filepath.Base(path), err)
		}
		logger.InfoContext(ctx, "seed file processed", "file", filepath.Base(path), "records", count)
		total += count
	}

	return total, nil
}

func (s *Seeder) seedFile(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read file: %w", err)
	}

	var records []map[string]any
	if err := json.Unmarshal(data, &records); err != nil {
		return 0, fmt.Errorf("failed to parse file: %w", err)
	}

	fileName := filepath.Base(path)
	domain := strings.TrimSuffix(fileName, ".json")

	texts := make([]string, 0, len(records))
	for _, record := range records {
		text := Render(domain, record)
		if text == "" {
			continue
		}
		texts = append(texts, text)
	}
	if len(texts) == 0 {
		return 0, nil
	}

	vectors, err := s.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("failed to embed records: %w", err)
	}

	createdAt := time.Now().UTC().Format(time.RFC3339)
	points := make([]vectorstore.Point, 0, len(texts))
	for i, text := range texts {
		points = append(points, vectorstore.Point{
			ID:  uuid.New().String(),
			Vec: vectors[i],
			Meta: map[string]any{
				"content":     text,
				"domain":      domain,
				"source_file": fileName,
				"created_at":  createdAt,
			},
		})
	}

	if err := s.store.Upsert(ctx, s.collection, points); err != nil {
		return 0, fmt.Errorf("failed to store embeddings: %w", err)
	}

	return len(points), nil
}
