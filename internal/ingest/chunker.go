package ingest

import "strings"

// DefaultChunkSize is the chunk bound used for indexed documents.
const DefaultChunkSize = 1200

// SplitText splits text into chunks of at most maxSize characters by
// accumulating whole sentences. Sentences are delimited by terminal
// punctuation (".", "!", "?"); when appending the next sentence would
// exceed maxSize, the running buffer is flushed as one chunk.
//
// This is length-bounded, not semantically aware. A single sentence
// longer than maxSize is emitted as an oversized chunk rather than
// split mid-sentence; accepted limitation.
func SplitText(text string, maxSize int) []string {
	if maxSize <= 0 {
		maxSize = DefaultChunkSize
	}

	sentences := splitSentences(text)
	var chunks []string
	var current strings.Builder

	for _, sentence := range sentences {
		// +1 accounts for the terminal "." the flushed chunk keeps.
		if current.Len() > 0 && current.Len()+len(sentence)+1 > maxSize {
			chunk := strings.TrimSpace(current.String())
			if chunk != "" {
				chunks = append(chunks, chunk)
			}
			current.Reset()
		}
		current.WriteString(sentence)
		current.WriteString(". ")
	}

	if chunk := strings.TrimSpace(current.String()); chunk != "" {
		chunks = append(chunks, chunk)
	}

	return chunks
}

// splitSentences segments text on sentence-terminal punctuation and
// drops empty segments.
func splitSentences(text string) []string {
	parts := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})

	sentences := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		sentences = append(sentences, trimmed)
	}
	return sentences
}
