package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"campusrag/internal/contextutil"
	apphttp "campusrag/internal/http"
)

func jsonBody(t *testing.T, payload any) io.Reader {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("failed to marshal payload: %v", err)
	}
	return bytes.NewReader(data)
}

func TestLoggerMiddleware_InjectsLogger(t *testing.T) {
	var buf bytes.Buffer
	previous := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	defer slog.SetDefault(previous)

	handler := apphttp.LoggerMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := contextutil.LoggerFromContext(r.Context())
		logger.InfoContext(r.Context(), "handled")
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log output: %v", err)
	}
	if entry["method"] != http.MethodGet {
		t.Errorf("log method = %v, want %q", entry["method"], http.MethodGet)
	}
	if entry["path"] != "/api/health" {
		t.Errorf("log path = %v, want %q", entry["path"], "/api/health")
	}
}

func TestCORS_Headers(t *testing.T) {
	handler := apphttp.CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, "*")
	}
	allowed := w.Header().Get("Access-Control-Allow-Headers")
	if allowed != "Content-Type, Authorization, X-User-Id" {
		t.Errorf("Access-Control-Allow-Headers = %q", allowed)
	}
}

func TestCORS_EchoesOrigin(t *testing.T) {
	handler := apphttp.CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "https://portal.example.edu")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://portal.example.edu" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}

func TestCORS_Preflight(t *testing.T) {
	called := false
	handler := apphttp.CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/ask", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNoContent)
	}
	if called {
		t.Error("preflight request should not reach the next handler")
	}
}
