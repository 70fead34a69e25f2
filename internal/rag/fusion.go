package rag

import (
	"strings"

	"campusrag/internal/ingest"
)

// Fuse merges already-filtered persisted candidates with the content of
// documents uploaded alongside the current question. Uploaded texts are
// re-chunked with a smaller chunk size tuned for tight context windows,
// tagged with a fixed high score and the uploaded-context domain marker,
// and appended after the persisted candidates. They deliberately bypass
// the relevance filter: an attached document is authoritative for the
// request that attached it, even before (or without) full indexing.
func Fuse(persisted []RetrievedCandidate, uploadedTexts []string, chunkSize int) []RetrievedCandidate {
	fused := make([]RetrievedCandidate, 0, len(persisted))
	fused = append(fused, persisted...)

	for _, text := range uploadedTexts {
		if strings.TrimSpace(text) == "" {
			continue
		}
		chunks := ingest.SplitText(text, chunkSize)
		for i, chunk := range chunks {
			fused = append(fused, RetrievedCandidate{
				Content:    chunk,
				Domain:     UploadedContextDomain,
				FileName:   "Uploaded document",
				ChunkIndex: i,
				Score:      UploadedContextScore,
			})
		}
	}

	return fused
}
