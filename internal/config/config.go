package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
// It is constructed once in main and passed by reference into every
// component; nothing reads the environment after Load returns.
type Config struct {
	LLMBaseURL         string
	LLMModelName       string
	LLMAPIKey          string
	EmbeddingBaseURL   string
	EmbeddingModelName string
	VectorSize         int
	DBPath             string
	SeedDir            string
	QdrantURL          string
	QdrantCollection   string
	APIPort            string
	LogLevel           slog.Level
	LogFormat          string

	// Object storage for uploaded PDFs. Empty bucket disables uploads
	// (documents are still indexed, just without a durable URL).
	S3Bucket   string
	S3Region   string
	S3Endpoint string
	S3Prefix   string

	// Pipeline tunables.
	RelevanceThreshold float32
	RetrieveLimit      int
	NumCandidates      int
	ChunkSize          int
	UploadChunkSize    int
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates required fields.
// If a .env file exists in the current directory or project root, it will be loaded automatically.
// Environment variables already set take precedence over .env file values.
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	// Check current directory first, then walk up to find project root (where go.mod is)
	_ = godotenv.Load() // Try current directory

	wd, err := os.Getwd()
	if err == nil {
		dir := wd
		for i := 0; i < 5; i++ { // Limit search depth
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break // Reached filesystem root
			}
			dir = parent
		}
	}

	cfg := &Config{
		LLMBaseURL:         getEnv("LLM_BASE_URL", "https://openrouter.ai/api/v1"),
		LLMModelName:       getEnv("LLM_MODEL", "openai/gpt-4o-mini"),
		LLMAPIKey:          os.Getenv("LLM_API_KEY"),
		EmbeddingBaseURL:   getEnv("EMBEDDING_BASE_URL", ""),
		EmbeddingModelName: getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
		DBPath:             getEnv("DB_PATH", "./data/campusrag.db"),
		SeedDir:            getEnv("SEED_DIR", "./seed"),
		QdrantURL:          getEnv("QDRANT_URL", "http://localhost:6333"),
		QdrantCollection:   getEnv("QDRANT_COLLECTION", "knowledge_embeddings"),
		APIPort:            getEnv("API_PORT", "8000"),
		LogFormat:          getEnv("LOG_FORMAT", "text"),
		S3Bucket:           getEnv("S3_BUCKET", ""),
		S3Region:           getEnv("S3_REGION", "us-east-1"),
		S3Endpoint:         getEnv("S3_ENDPOINT", ""),
		S3Prefix:           getEnv("S3_PREFIX", "user-pdfs"),
	}

	// Embeddings default to the same endpoint as the chat model.
	if cfg.EmbeddingBaseURL == "" {
		cfg.EmbeddingBaseURL = cfg.LLMBaseURL
	}

	if cfg.LLMAPIKey == "" {
		return nil, fmt.Errorf("LLM_API_KEY is required")
	}

	// VECTOR_SIZE must match the embedding model's output dimension and the
	// Qdrant collection's configured size. Changing it requires recreating
	// the collection and re-seeding.
	cfg.VectorSize, err = getEnvInt("VECTOR_SIZE", 512)
	if err != nil {
		return nil, err
	}
	if cfg.VectorSize <= 0 {
		return nil, fmt.Errorf("VECTOR_SIZE must be greater than 0")
	}

	cfg.RetrieveLimit, err = getEnvInt("RETRIEVE_LIMIT", 5)
	if err != nil {
		return nil, err
	}
	if cfg.RetrieveLimit <= 0 {
		return nil, fmt.Errorf("RETRIEVE_LIMIT must be greater than 0")
	}
	cfg.NumCandidates, err = getEnvInt("NUM_CANDIDATES", 100)
	if err != nil {
		return nil, err
	}
	if cfg.NumCandidates < cfg.RetrieveLimit {
		return nil, fmt.Errorf("NUM_CANDIDATES must be >= RETRIEVE_LIMIT")
	}
	cfg.ChunkSize, err = getEnvInt("CHUNK_SIZE", 1200)
	if err != nil {
		return nil, err
	}
	cfg.UploadChunkSize, err = getEnvInt("UPLOAD_CHUNK_SIZE", 800)
	if err != nil {
		return nil, err
	}
	if cfg.ChunkSize <= 0 || cfg.UploadChunkSize <= 0 {
		return nil, fmt.Errorf("chunk sizes must be greater than 0")
	}

	threshold := getEnv("RELEVANCE_THRESHOLD", "0.3")
	t64, err := strconv.ParseFloat(threshold, 32)
	if err != nil {
		return nil, fmt.Errorf("RELEVANCE_THRESHOLD must be a valid number: %w", err)
	}
	if t64 < 0 || t64 >= 1 {
		return nil, fmt.Errorf("RELEVANCE_THRESHOLD must be in [0, 1)")
	}
	cfg.RelevanceThreshold = float32(t64)

	cfg.LogLevel = parseLogLevel(getEnv("LOG_LEVEL", "info"))

	// Create ./data directory if it doesn't exist (for the catalog DB file)
	dataDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable or returns a default value.
func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	return n, nil
}

func parseLogLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
