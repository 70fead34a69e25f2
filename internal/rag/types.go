package rag

// RetrievedCandidate is one scored context item for a single request.
// Candidates are ephemeral; they are never written back to the store.
type RetrievedCandidate struct {
	// Content is the chunk text.
	Content string
	// Domain is the logical category (e.g. "fees", "user_uploaded",
	// "uploaded_context" for freshly uploaded, not-yet-indexed content).
	Domain string
	// FileName is the original filename or seed-file identifier.
	FileName string
	// ChunkIndex is the chunk's order within its source document.
	ChunkIndex int
	// Score is the similarity score in [0,1], higher is more relevant.
	Score float32
}

// AskRequest represents a question to answer.
type AskRequest struct {
	// Question is the user's question.
	Question string
	// UploadedTexts carries the extracted text of documents attached to
	// this request. They are fused into the context with a fixed high
	// score and dominate persisted knowledge for this request only.
	UploadedTexts []string
	// Limit optionally overrides the retrieval result count. Zero means
	// the engine default.
	Limit int
}

// AskResponse represents the answer to a question.
type AskResponse struct {
	// Answer is the generated (or canned) answer text.
	Answer string
	// Source identifies where the answer came from. Empty when no
	// source applies (canned responses, refusals).
	Source string
}
