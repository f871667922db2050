package domain

// RetrievalResult is a chunk scored against one query.
// It is created per request and never persisted.
type RetrievalResult struct {
	Chunk

	// RelevanceScore is the normalised BM25 score in (0, 1], rounded to 4 decimals.
	RelevanceScore float64 `json:"relevance_score"`
}

// Source is the caller-facing citation for a retrieved chunk.
type Source struct {
	Document       string  `json:"document"`
	Page           int     `json:"page"`
	RelevanceScore float64 `json:"relevance_score"`
}

// Sources converts retrieval results into citations, preserving order.
func Sources(results []RetrievalResult) []Source {
	sources := make([]Source, len(results))
	for i := range results {
		sources[i] = Source{
			Document:       results[i].Source,
			Page:           results[i].Page,
			RelevanceScore: results[i].RelevanceScore,
		}
	}
	return sources
}
