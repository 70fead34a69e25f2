package rag

import (
	"context"
	"fmt"
	"sort"

	"campusrag/internal/vectorstore"
)

// Retriever embeds a query and performs similarity search against the
// vector store. The similarity metric belongs to the store; scores are
// treated as opaque values in [0,1] where higher is better.
type Retriever struct {
	embedder      Embedder
	store         vectorstore.VectorStore
	collection    string
	numCandidates int
}

// NewRetriever creates a Retriever. numCandidates is the internal
// candidate pool requested from the index on every search; it should be
// well above typical limits (conventionally 100 for limit 5) to preserve
// recall headroom.
func NewRetriever(embedder Embedder, store vectorstore.VectorStore, collection string, numCandidates int) *Retriever {
	return &Retriever{
		embedder:      embedder,
		store:         store,
		collection:    collection,
		numCandidates: numCandidates,
	}
}

// Retrieve returns up to limit scored candidates for the query, sorted by
// score descending.
func (r *Retriever) Retrieve(ctx context.Context, query string, limit int) ([]RetrievedCandidate, error) {
	embeddings, err := r.embedder.EmbedTexts(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w: %w", ErrEmbeddingService, err)
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("no embedding returned for query: %w", ErrEmbeddingService)
	}

	results, err := r.store.Search(ctx, r.collection, embeddings[0], limit, r.numCandidates, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to search vector store: %w: %w", ErrStorage, err)
	}

	candidates := make([]RetrievedCandidate, 0, len(results))
	for _, result := range results {
		content, _ := result.Meta["content"].(string)
		domain, _ := result.Meta["domain"].(string)
		fileName, _ := result.Meta["file_name"].(string)
		chunkIndex := 0
		switch v := result.Meta["chunk_index"].(type) {
		case int64:
			chunkIndex = int(v)
		case float64:
			chunkIndex = int(v)
		}

		candidates = append(candidates, RetrievedCandidate{
			Content:    content,
			Domain:     domain,
			FileName:   fileName,
			ChunkIndex: chunkIndex,
			Score:      result.Score,
		})
	}

	// The store returns results ranked already; keep the contract explicit.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	return candidates, nil
}
