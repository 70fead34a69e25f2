package rag

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_engine.go -package=mocks campusrag/internal/rag Engine
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_embedder.go -package=mocks campusrag/internal/rag Embedder
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_generator.go -package=mocks campusrag/internal/rag Generator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"campusrag/internal/contextutil"
	"campusrag/internal/llm"
	"campusrag/internal/vectorstore"
)

// Embedder converts texts into fixed-dimension vectors.
// Defined from the consumer's perspective; satisfied by llm.EmbeddingsClient.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Generator produces an answer from a chat prompt.
// Satisfied by llm.Client.
type Generator interface {
	ChatWithMessages(ctx context.Context, messages []llm.Message, params llm.ChatParams) (string, error)
}

// Engine answers university questions with retrieval-augmented generation.
type Engine interface {
	// Ask answers a question, optionally grounding it in documents
	// uploaded with the request.
	Ask(ctx context.Context, req AskRequest) (AskResponse, error)
}

// Options holds the pipeline tunables for the engine.
type Options struct {
	Collection         string
	RetrieveLimit      int
	NumCandidates      int
	RelevanceThreshold float32
	UploadChunkSize    int
}

// ragEngine implements the Engine interface.
type ragEngine struct {
	classifier *Classifier
	retriever  *Retriever
	generator  Generator
	opts       Options
	logger     *slog.Logger
}

// NewEngine creates a RAG engine.
func NewEngine(embedder Embedder, store vectorstore.VectorStore, generator Generator, opts Options) Engine {
	return &ragEngine{
		classifier: NewClassifier(),
		retriever:  NewRetriever(embedder, store, opts.Collection, opts.NumCandidates),
		generator:  generator,
		opts:       opts,
		logger:     slog.Default(),
	}
}

// Ask answers a question. Control flow: intent classification first
// (canned response or refusal short-circuits everything), then retrieve,
// filter, fuse with uploaded content, and generate.
func (e *ragEngine) Ask(ctx context.Context, req AskRequest) (AskResponse, error) {
	logger := contextutil.LoggerFromContext(ctx)

	question := strings.TrimSpace(req.Question)
	if question == "" {
		return AskResponse{}, &ValidationError{Field: "question", Message: "cannot be empty"}
	}

	hasUploads := false
	for _, text := range req.UploadedTexts {
		if strings.TrimSpace(text) != "" {
			hasUploads = true
			break
		}
	}

	classification := e.classifier.Classify(question)
	if classification.Canned {
		logger.InfoContext(ctx, "answered with canned response", "question", question)
		return AskResponse{Answer: classification.Response}, nil
	}

	// Uploaded documents are in-domain by construction; the keyword gate
	// only applies to questions against the persisted corpus.
	if !classification.InDomain && !hasUploads {
		logger.InfoContext(ctx, "refused out-of-domain question", "question", question)
		return AskResponse{Answer: RefusalMessage}, nil
	}

	limit := req.Limit
	if limit <= 0 {
		limit = e.opts.RetrieveLimit
	}

	candidates, err := e.retriever.Retrieve(ctx, question, limit)
	if err != nil {
		logger.ErrorContext(ctx, "retrieval failed", "error", err)
		return AskResponse{}, err
	}

	filtered := FilterByScore(candidates, e.opts.RelevanceThreshold)
	logger.InfoContext(ctx, "retrieval completed",
		"question", question,
		"candidates", len(candidates),
		"after_filter", len(filtered),
		"uploaded_docs", len(req.UploadedTexts),
	)

	contextItems := Fuse(filtered, req.UploadedTexts, e.opts.UploadChunkSize)

	if len(contextItems) == 0 {
		// Strict grounding with nothing to ground on: answer locally
		// without calling the model.
		logger.InfoContext(ctx, "no context available, returning strict refusal")
		return AskResponse{Answer: InsufficientContextAnswer}, nil
	}

	hasUploadedContext := HasUploadedContext(contextItems)
	policy := SelectPolicy(hasUploadedContext, IsStructuredQuery(question))

	answer, err := e.generate(ctx, question, contextItems, policy)
	if err != nil {
		logger.ErrorContext(ctx, "generation failed", "error", err)
		return AskResponse{}, err
	}

	source := attributeSource(contextItems, hasUploadedContext)

	logger.InfoContext(ctx, "question answered",
		"context_items", len(contextItems),
		"uploaded_context", hasUploadedContext,
		"answer_length", len(answer),
		"source", source,
	)

	return AskResponse{Answer: answer, Source: source}, nil
}

// generate builds the prompt from the selected policy and invokes the
// generative model.
func (e *ragEngine) generate(ctx context.Context, question string, items []RetrievedCandidate, policy PromptPolicy) (string, error) {
	var contextBuilder strings.Builder
	for i, item := range items {
		if i > 0 {
			contextBuilder.WriteString("\n\n")
		}
		contextBuilder.WriteString(item.Content)
	}

	userMessage := fmt.Sprintf(
		"Context from university documents: %s\n\nQuestion: %s\n\nAnswer based on the information provided in the context above:",
		contextBuilder.String(), question,
	)

	messages := []llm.Message{
		{Role: "system", Content: policy.System},
		{Role: "user", Content: userMessage},
	}

	answer, err := e.generator.ChatWithMessages(ctx, messages, llm.ChatParams{
		MaxTokens:   policy.MaxTokens,
		Temperature: policy.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate answer: %w: %w", ErrGenerationService, err)
	}

	return answer, nil
}

// attributeSource reports where the answer came from: the composite label
// when uploaded content participated, otherwise the highest-scoring
// persisted candidate's file or domain identifier.
func attributeSource(items []RetrievedCandidate, hasUploadedContext bool) string {
	if hasUploadedContext {
		return UploadedSourceLabel
	}

	for _, item := range items {
		if item.Domain == UploadedContextDomain {
			continue
		}
		if item.FileName != "" {
			return item.FileName
		}
		if item.Domain != "" {
			return item.Domain
		}
	}

	return FallbackSourceLabel
}
