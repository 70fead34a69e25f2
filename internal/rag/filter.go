package rag

// FilterByScore returns the candidates whose score is strictly greater
// than threshold, preserving relative order. Pure function; an empty
// result is a valid outcome and the pipeline proceeds with empty context.
func FilterByScore(candidates []RetrievedCandidate, threshold float32) []RetrievedCandidate {
	filtered := make([]RetrievedCandidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Score > threshold {
			filtered = append(filtered, c)
		}
	}
	return filtered
}
