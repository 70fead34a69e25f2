package handlers

import (
	"net/http"
	"time"

	"campusrag/internal/contextutil"
	"campusrag/internal/storage"
)

// DocumentsHandler lists documents recorded in the upload catalog.
type DocumentsHandler struct {
	documentRepo storage.DocumentStore
}

// NewDocumentsHandler creates a new DocumentsHandler.
func NewDocumentsHandler(documentRepo storage.DocumentStore) *DocumentsHandler {
	return &DocumentsHandler{documentRepo: documentRepo}
}

// DocumentResponse represents one catalogued document.
//
// swagger:model DocumentResponse
type DocumentResponse struct {
	ID          string `json:"id"`
	FileName    string `json:"fileName"`
	Domain      string `json:"domain"`
	ExternalRef string `json:"externalRef,omitempty"`
	UploadedBy  string `json:"uploadedBy"`
	ChunkCount  int    `json:"chunkCount"`
	CreatedAt   string `json:"createdAt"`
}

// DocumentListResponse wraps the document list.
//
// swagger:model DocumentListResponse
type DocumentListResponse struct {
	Documents []DocumentResponse `json:"documents"`
}

// ServeHTTP handles GET /api/documents.
func (h *DocumentsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodGet {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	records, err := h.documentRepo.ListAll(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "failed to list documents", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to list documents")
		return
	}

	documents := make([]DocumentResponse, 0, len(records))
	for _, record := range records {
		documents = append(documents, DocumentResponse{
			ID:          record.ID,
			FileName:    record.FileName,
			Domain:      record.Domain,
			ExternalRef: record.ExternalRef,
			UploadedBy:  record.UploadedBy,
			ChunkCount:  record.ChunkCount,
			CreatedAt:   record.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	writeJSON(w, ctx, http.StatusOK, DocumentListResponse{Documents: documents})
}
