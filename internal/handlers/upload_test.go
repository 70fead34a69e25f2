package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	extractmocks "campusrag/internal/extract/mocks"
	filestoremocks "campusrag/internal/filestore/mocks"
	"campusrag/internal/handlers"
	"campusrag/internal/ingest"
	ingestmocks "campusrag/internal/ingest/mocks"
	"campusrag/internal/rag"
	ragmocks "campusrag/internal/rag/mocks"
	storagemocks "campusrag/internal/storage/mocks"
	vectorstoremocks "campusrag/internal/vectorstore/mocks"

	"go.uber.org/mock/gomock"
)

const testCollection = "knowledge_embeddings"

type uploadMocks struct {
	extractor *extractmocks.MockExtractor
	embedder  *ingestmocks.MockEmbedder
	store     *vectorstoremocks.MockVectorStore
	objects   *filestoremocks.MockObjectStore
	catalog   *storagemocks.MockDocumentStore
}

func newUploadPipeline(ctrl *gomock.Controller) (*ingest.Pipeline, uploadMocks) {
	m := uploadMocks{
		extractor: extractmocks.NewMockExtractor(ctrl),
		embedder:  ingestmocks.NewMockEmbedder(ctrl),
		store:     vectorstoremocks.NewMockVectorStore(ctrl),
		objects:   filestoremocks.NewMockObjectStore(ctrl),
		catalog:   storagemocks.NewMockDocumentStore(ctrl),
	}
	p := ingest.NewPipeline(m.extractor, m.embedder, m.store, m.objects, m.catalog, testCollection, 1200)
	return p, m
}

// multipartBody builds a multipart request body with the given PDF files
// and optional form fields.
func multipartBody(t *testing.T, files map[string][]byte, contentType string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for name, data := range files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", `form-data; name="files"; filename="`+name+`"`)
		header.Set("Content-Type", contentType)
		part, err := writer.CreatePart(header)
		if err != nil {
			t.Fatalf("failed to create part: %v", err)
		}
		if _, err := part.Write(data); err != nil {
			t.Fatalf("failed to write part: %v", err)
		}
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("failed to write field: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}

	return &buf, writer.FormDataContentType()
}

func expectSuccessfulIngest(m uploadMocks, fileName, text string) {
	m.objects.EXPECT().
		Upload(gomock.Any(), fileName, "application/pdf", gomock.Any()).
		Return("", nil)
	m.extractor.EXPECT().
		ExtractText(gomock.Any(), gomock.Any()).
		Return(text, nil)
	m.store.EXPECT().
		Count(gomock.Any(), testCollection, gomock.Any()).
		Return(uint64(0), nil)
	m.embedder.EXPECT().
		EmbedTexts(gomock.Any(), gomock.Any()).
		Return([][]float32{{0.1}}, nil)
	m.store.EXPECT().
		Upsert(gomock.Any(), testCollection, gomock.Any()).
		Return(nil)
	m.catalog.EXPECT().
		Insert(gomock.Any(), gomock.Any()).
		Return(nil)
}

func TestUploadHandler_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	pipeline, m := newUploadPipeline(ctrl)
	expectSuccessfulIngest(m, "notes.pdf", "Lecture notes on operating systems.")

	handler := handlers.NewUploadHandler(pipeline)

	body, contentType := multipartBody(t, map[string][]byte{"notes.pdf": []byte("%PDF")}, "application/pdf", nil)
	req := httptest.NewRequest(http.MethodPost, "/api/files/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusCreated, w.Body.String())
	}

	var resp handlers.UploadResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Files) != 1 {
		t.Fatalf("got %d file results, want 1", len(resp.Files))
	}
	if resp.Files[0].Status != ingest.StatusSuccess {
		t.Errorf("file status = %q, want %q (error: %s)", resp.Files[0].Status, ingest.StatusSuccess, resp.Files[0].Error)
	}
	if resp.Files[0].ChunksStored != 1 {
		t.Errorf("chunksStored = %d, want 1", resp.Files[0].ChunksStored)
	}
}

func TestUploadHandler_UserIDFromHeader(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	pipeline, m := newUploadPipeline(ctrl)

	m.objects.EXPECT().
		Upload(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return("", nil)
	m.extractor.EXPECT().
		ExtractText(gomock.Any(), gomock.Any()).
		Return("Content.", nil)
	m.store.EXPECT().
		Count(gomock.Any(), testCollection, gomock.Any()).
		Return(uint64(0), nil)
	m.embedder.EXPECT().
		EmbedTexts(gomock.Any(), gomock.Any()).
		Return([][]float32{{0.1}}, nil)
	m.store.EXPECT().
		Upsert(gomock.Any(), testCollection, gomock.Any()).
		Return(nil)
	m.catalog.EXPECT().
		Insert(gomock.Any(), gomock.Any()).
		Return(nil)

	handler := handlers.NewUploadHandler(pipeline)

	body, contentType := multipartBody(t, map[string][]byte{"notes.pdf": []byte("%PDF")}, "application/pdf", nil)
	req := httptest.NewRequest(http.MethodPost, "/api/files/upload", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-User-Id", "student-7")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusCreated)
	}
}

func TestUploadHandler_Validation(t *testing.T) {
	tests := []struct {
		name        string
		files       map[string][]byte
		contentType string
	}{
		{
			name:        "no files",
			files:       nil,
			contentType: "application/pdf",
		},
		{
			name: "too many files",
			files: map[string][]byte{
				"a.pdf": []byte("%PDF"), "b.pdf": []byte("%PDF"),
				"c.pdf": []byte("%PDF"), "d.pdf": []byte("%PDF"),
			},
			contentType: "application/pdf",
		},
		{
			name:        "wrong content type",
			files:       map[string][]byte{"notes.txt": []byte("plain text")},
			contentType: "text/plain",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			pipeline, _ := newUploadPipeline(ctrl)
			handler := handlers.NewUploadHandler(pipeline)

			body, contentType := multipartBody(t, tt.files, tt.contentType, nil)
			req := httptest.NewRequest(http.MethodPost, "/api/files/upload", body)
			req.Header.Set("Content-Type", contentType)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestUploadAskHandler_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	pipeline, m := newUploadPipeline(ctrl)
	expectSuccessfulIngest(m, "syllabus.pdf", "The syllabus covers graph theory in week four.")

	mockEngine := ragmocks.NewMockEngine(ctrl)
	mockEngine.EXPECT().
		Ask(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req rag.AskRequest) (rag.AskResponse, error) {
			if req.Question != "When is graph theory covered?" {
				t.Errorf("question = %q", req.Question)
			}
			if len(req.UploadedTexts) != 1 || req.UploadedTexts[0] != "The syllabus covers graph theory in week four." {
				t.Errorf("uploadedTexts = %v, want extracted text", req.UploadedTexts)
			}
			if req.Limit != 3 {
				t.Errorf("limit = %d, want 3 for upload-and-ask", req.Limit)
			}
			return rag.AskResponse{
				Answer: "Graph theory is covered in week four.",
				Source: rag.UploadedSourceLabel,
			}, nil
		})

	handler := handlers.NewUploadAskHandler(pipeline, mockEngine)

	body, contentType := multipartBody(t,
		map[string][]byte{"syllabus.pdf": []byte("%PDF")},
		"application/pdf",
		map[string]string{"query": "When is graph theory covered?"},
	)
	req := httptest.NewRequest(http.MethodPost, "/api/files/ask", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusOK, w.Body.String())
	}

	var resp handlers.AskResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Answer != "Graph theory is covered in week four." {
		t.Errorf("answer = %q", resp.Answer)
	}
	if resp.Source != rag.UploadedSourceLabel {
		t.Errorf("source = %q, want %q", resp.Source, rag.UploadedSourceLabel)
	}
}

func TestUploadAskHandler_MissingQuery(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	pipeline, _ := newUploadPipeline(ctrl)
	mockEngine := ragmocks.NewMockEngine(ctrl)
	handler := handlers.NewUploadAskHandler(pipeline, mockEngine)

	body, contentType := multipartBody(t, map[string][]byte{"a.pdf": []byte("%PDF")}, "application/pdf", nil)
	req := httptest.NewRequest(http.MethodPost, "/api/files/ask", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestUploadAskHandler_IngestFailureStillAnswers(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	pipeline, m := newUploadPipeline(ctrl)

	// Extraction fails, so the upload contributes no text; the question
	// still goes to the engine against the persisted corpus.
	m.objects.EXPECT().
		Upload(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return("", nil)
	m.extractor.EXPECT().
		ExtractText(gomock.Any(), gomock.Any()).
		Return("", nil)

	mockEngine := ragmocks.NewMockEngine(ctrl)
	mockEngine.EXPECT().
		Ask(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req rag.AskRequest) (rag.AskResponse, error) {
			if len(req.UploadedTexts) != 0 {
				t.Errorf("uploadedTexts = %v, want none after failed extraction", req.UploadedTexts)
			}
			return rag.AskResponse{Answer: "From the knowledge base."}, nil
		})

	handler := handlers.NewUploadAskHandler(pipeline, mockEngine)

	body, contentType := multipartBody(t,
		map[string][]byte{"scan.pdf": []byte("%PDF")},
		"application/pdf",
		map[string]string{"query": "What is the exam schedule?"},
	)
	req := httptest.NewRequest(http.MethodPost, "/api/files/ask", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusOK, w.Body.String())
	}
}
