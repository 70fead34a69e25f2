package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"campusrag/internal/contextutil"
	"campusrag/internal/rag"
)

// AskHandler handles HTTP requests for RAG queries against the seeded
// knowledge base.
type AskHandler struct {
	ragEngine rag.Engine
}

// NewAskHandler creates a new AskHandler.
func NewAskHandler(ragEngine rag.Engine) *AskHandler {
	return &AskHandler{ragEngine: ragEngine}
}

// AskRequest represents the HTTP request payload for RAG queries.
//
// swagger:model AskRequest
type AskRequest struct {
	Question string `json:"question"`
}

// AskResponse represents the HTTP response payload for RAG queries.
//
// swagger:model AskResponse
type AskResponse struct {
	// The generated answer
	Answer string `json:"answer"`

	// Identifier of the document the answer was grounded on
	Source string `json:"source,omitempty"`
}

// ErrorResponse represents an error response.
//
// swagger:model ErrorResponse
type ErrorResponse struct {
	Error string `json:"error"`
}

// ServeHTTP handles HTTP requests for RAG queries.
//
// swagger:route POST /api/ask askQuestion
//
// # Ask a question about the university
//
// Questions may be answered with a canned response, refused when they fall
// outside university topics, or answered from the knowledge base.
//
// ---
// consumes:
// - application/json
// produces:
// - application/json
// responses:
//
//	'200':
//	  description: Successful response with answer and source
//	  schema:
//	    "$ref": "#/definitions/AskResponse"
//	'400':
//	  description: Bad request (missing or empty question)
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
//	'502':
//	  description: External service error (LLM or embedding service unavailable)
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
//	'503':
//	  description: Vector store unavailable
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
func (h *AskHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Question == "" {
		logger.WarnContext(ctx, "empty question in request")
		writeError(w, http.StatusBadRequest, "Question is required")
		return
	}

	ragResp, err := h.ragEngine.Ask(ctx, rag.AskRequest{Question: req.Question})
	if err != nil {
		handleEngineError(w, ctx, err)
		return
	}

	writeJSON(w, ctx, http.StatusOK, AskResponse{
		Answer: ragResp.Answer,
		Source: ragResp.Source,
	})
}

// handleEngineError maps RAG engine errors to HTTP status codes. Response
// bodies stay generic; details go to the log only.
func handleEngineError(w http.ResponseWriter, ctx context.Context, err error) {
	logger := contextutil.LoggerFromContext(ctx)
	logger.ErrorContext(ctx, "RAG engine error", "error", err)

	var validationErr *rag.ValidationError
	switch {
	case errors.As(err, &validationErr):
		writeError(w, http.StatusBadRequest, validationErr.Error())
	case errors.Is(err, rag.ErrEmbeddingService), errors.Is(err, rag.ErrGenerationService):
		writeError(w, http.StatusBadGateway, "External service error")
	case errors.Is(err, rag.ErrStorage):
		writeError(w, http.StatusServiceUnavailable, "Vector store unavailable")
	default:
		writeError(w, http.StatusInternalServerError, "Failed to process question")
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, ctx context.Context, statusCode int, payload any) {
	logger := contextutil.LoggerFromContext(ctx)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error: message,
	})
}
