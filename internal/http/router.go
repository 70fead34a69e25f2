package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"campusrag/internal/handlers"
	"campusrag/internal/ingest"
	"campusrag/internal/rag"
	"campusrag/internal/storage"
	"campusrag/internal/vectorstore"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	RAGEngine      rag.Engine
	Pipeline       *ingest.Pipeline
	DocumentRepo   storage.DocumentStore
	VectorStore    vectorstore.VectorStore
	CollectionName string
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	// Add chi middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Add CORS and request-scoped logger middleware
	r.Use(CORS)
	r.Use(LoggerMiddleware)

	askHandler := handlers.NewAskHandler(deps.RAGEngine)
	uploadHandler := handlers.NewUploadHandler(deps.Pipeline)
	uploadAskHandler := handlers.NewUploadAskHandler(deps.Pipeline, deps.RAGEngine)
	documentsHandler := handlers.NewDocumentsHandler(deps.DocumentRepo)
	healthHandler := handlers.NewHealthHandler(deps.VectorStore, deps.CollectionName)

	// Register API routes
	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodPost, "/ask", askHandler)
		r.Method(http.MethodPost, "/files/upload", uploadHandler)
		r.Method(http.MethodPost, "/files/ask", uploadAskHandler)
		r.Method(http.MethodGet, "/documents", documentsHandler)
		r.Method(http.MethodGet, "/health", healthHandler)
	})

	// Welcome message at root
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"message": "Welcome to the University Assistant API",
		})
	})

	return r
}
