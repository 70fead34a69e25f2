package filestore

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_object_store.go -package=mocks campusrag/internal/filestore ObjectStore

import "context"

// ObjectStore stores an uploaded binary and returns a durable URL for it.
type ObjectStore interface {
	// Upload stores data under key and returns the object's URL.
	Upload(ctx context.Context, key, contentType string, data []byte) (string, error)
}

// Disabled is an ObjectStore that stores nothing. Used when no bucket is
// configured; documents are still indexed, just without an external ref.
type Disabled struct{}

// Upload returns an empty URL without storing anything.
func (Disabled) Upload(_ context.Context, _, _ string, _ []byte) (string, error) {
	return "", nil
}
