package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"campusrag/internal/contextutil"
	"campusrag/internal/ingest"
	"campusrag/internal/rag"
)

const (
	maxUploadFiles = 3
	// 32 MB total for a multipart request, matching the default memory
	// threshold for ParseMultipartForm.
	maxUploadMemory = 32 << 20

	uploadAskRetrieveLimit = 3
)

// UploadHandler handles PDF uploads into the knowledge base.
type UploadHandler struct {
	pipeline *ingest.Pipeline
}

// NewUploadHandler creates a new UploadHandler.
func NewUploadHandler(pipeline *ingest.Pipeline) *UploadHandler {
	return &UploadHandler{pipeline: pipeline}
}

// FileResult reports the ingestion outcome for one uploaded file.
//
// swagger:model FileResult
type FileResult struct {
	FileName     string `json:"fileName"`
	Status       string `json:"status"`
	ChunksStored int    `json:"chunksStored,omitempty"`
	Error        string `json:"error,omitempty"`
}

// UploadResponse represents the response for a batch upload.
//
// swagger:model UploadResponse
type UploadResponse struct {
	Message string       `json:"message"`
	Files   []FileResult `json:"files"`
}

// ServeHTTP handles POST /api/files/upload. Accepts one to three PDFs in
// the multipart "files" field and ingests each into the knowledge base.
func (h *UploadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	docs, err := readUploadedPDFs(r)
	if err != nil {
		logger.WarnContext(ctx, "invalid upload request", "error", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	outcomes := h.pipeline.IngestBatch(ctx, docs)

	writeJSON(w, ctx, http.StatusCreated, UploadResponse{
		Message: "PDFs processed successfully",
		Files:   toFileResults(outcomes),
	})
}

// UploadAskHandler handles PDF uploads combined with a question. The
// uploaded documents are ingested for future queries and their extracted
// text is injected into the answer context immediately.
type UploadAskHandler struct {
	pipeline  *ingest.Pipeline
	ragEngine rag.Engine
}

// NewUploadAskHandler creates a new UploadAskHandler.
func NewUploadAskHandler(pipeline *ingest.Pipeline, ragEngine rag.Engine) *UploadAskHandler {
	return &UploadAskHandler{pipeline: pipeline, ragEngine: ragEngine}
}

// ServeHTTP handles POST /api/files/ask.
func (h *UploadAskHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	docs, err := readUploadedPDFs(r)
	if err != nil {
		logger.WarnContext(ctx, "invalid upload request", "error", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	query := strings.TrimSpace(r.FormValue("query"))
	if query == "" {
		logger.WarnContext(ctx, "empty query in upload request")
		writeError(w, http.StatusBadRequest, "Query is required")
		return
	}

	// Ingestion is best effort here. A file that fails to ingest simply
	// contributes no text to the answer; the question is still answered
	// from whatever context remains.
	outcomes := h.pipeline.IngestBatch(ctx, docs)

	uploadedTexts := make([]string, 0, len(outcomes))
	for _, outcome := range outcomes {
		if outcome.ExtractedText != "" {
			uploadedTexts = append(uploadedTexts, outcome.ExtractedText)
		}
		if outcome.Err != nil {
			logger.WarnContext(ctx, "file ingestion failed during upload-and-ask",
				"file_name", outcome.FileName, "error", outcome.Err)
		}
	}

	ragResp, err := h.ragEngine.Ask(ctx, rag.AskRequest{
		Question:      query,
		UploadedTexts: uploadedTexts,
		Limit:         uploadAskRetrieveLimit,
	})
	if err != nil {
		handleEngineError(w, ctx, err)
		return
	}

	writeJSON(w, ctx, http.StatusOK, AskResponse{
		Answer: ragResp.Answer,
		Source: ragResp.Source,
	})
}

// readUploadedPDFs parses the multipart form and validates the "files"
// field: one to three files, all PDFs.
func readUploadedPDFs(r *http.Request) ([]ingest.Document, error) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		return nil, errors.New("Invalid multipart form")
	}

	var files []*multipart.FileHeader
	if r.MultipartForm != nil {
		files = r.MultipartForm.File["files"]
	}

	if len(files) == 0 {
		return nil, errors.New("At least one PDF is required")
	}
	if len(files) > maxUploadFiles {
		return nil, fmt.Errorf("Maximum %d PDFs allowed", maxUploadFiles)
	}

	uploadedBy := strings.TrimSpace(r.Header.Get("X-User-Id"))
	if uploadedBy == "" {
		uploadedBy = "anonymous"
	}

	docs := make([]ingest.Document, 0, len(files))
	for _, header := range files {
		contentType := header.Header.Get("Content-Type")
		if contentType != "application/pdf" {
			return nil, errors.New("Only PDF files are allowed")
		}

		file, err := header.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to read uploaded file %s", header.Filename)
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read uploaded file %s", header.Filename)
		}

		docs = append(docs, ingest.Document{
			FileName:    header.Filename,
			ContentType: contentType,
			Data:        data,
			UploadedBy:  uploadedBy,
		})
	}

	return docs, nil
}

func toFileResults(outcomes []ingest.Outcome) []FileResult {
	results := make([]FileResult, 0, len(outcomes))
	for _, outcome := range outcomes {
		result := FileResult{
			FileName:     outcome.FileName,
			Status:       outcome.Status,
			ChunksStored: outcome.ChunksStored,
		}
		if outcome.Err != nil {
			result.Error = outcome.Err.Error()
		}
		results = append(results, result)
	}
	return results
}
