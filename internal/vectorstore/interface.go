package vectorstore

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_vector_store.go -package=mocks campusrag/internal/vectorstore VectorStore

import "context"

// Point represents a vector point with metadata.
type Point struct {
	ID   string
	Vec  []float32
	Meta map[string]any
}

// SearchResult represents a search result from vector search.
type SearchResult struct {
	PointID string
	Score   float32
	Meta    map[string]any
}

// VectorStore defines the interface for vector storage operations.
// Records are insert-or-read only; the pipeline never mutates a stored
// point after insertion.
type VectorStore interface {
	// Upsert inserts points into the collection.
	Upsert(ctx context.Context, collection string, points []Point) error

	// Search performs a similarity search, returning the top limit results
	// by score descending. numCandidates is the internal candidate pool the
	// index considers; it must be >= limit.
	Search(ctx context.Context, collection string, query []float32, limit, numCandidates int, filters map[string]any) ([]SearchResult, error)

	// Count returns the number of points matching the given filters.
	Count(ctx context.Context, collection string, filters map[string]any) (uint64, error)

	// CollectionExists checks if a collection exists.
	CollectionExists(ctx context.Context, collection string) (bool, error)
}
