package rag

import (
	"errors"
	"fmt"
)

var (
	// ErrEmbeddingService is returned when the embedding model call fails.
	ErrEmbeddingService = errors.New("embedding service error")
	// ErrGenerationService is returned when the generative model call fails.
	ErrGenerationService = errors.New("generation service error")
	// ErrStorage is returned when a vector store operation fails.
	ErrStorage = errors.New("storage error")
)

// ValidationError represents a validation error with a field name.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field %s: %s", e.Field, e.Message)
}
