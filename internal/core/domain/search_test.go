package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSources_PreservesOrder(t *testing.T) {
	results := []RetrievalResult{
		{Chunk: Chunk{Text: "a", Source: "14_Pricing.pdf", Page: 2, ChunkID: 7}, RelevanceScore: 1},
		{Chunk: Chunk{Text: "b", Source: "03_FAQ.pdf", Page: 1, ChunkID: 2}, RelevanceScore: 0.5123},
	}

	sources := Sources(results)

	assert.Equal(t, []Source{
		{Document: "14_Pricing.pdf", Page: 2, RelevanceScore: 1},
		{Document: "03_FAQ.pdf", Page: 1, RelevanceScore: 0.5123},
	}, sources)
}

func TestSources_Empty(t *testing.T) {
	assert.Empty(t, Sources(nil))
}

func TestClassification_IsValid(t *testing.T) {
	assert.True(t, ClassificationSimple.IsValid())
	assert.True(t, ClassificationComplex.IsValid())
	assert.False(t, Classification("medium").IsValid())
	assert.Equal(t, "complex", ClassificationComplex.String())
}
