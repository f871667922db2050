package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()

	assert.Equal(t, 350, s.Chunking.Size)
	assert.Equal(t, 50, s.Chunking.Overlap)
	assert.Equal(t, 5, s.Retrieval.TopK)
	assert.Equal(t, "llama-3.1-8b-instant", s.Router.LightModel)
	assert.Equal(t, "llama-3.3-70b-versatile", s.Router.HeavyModel)
	assert.Equal(t, RequestLogJSONL, s.RequestLog.Kind)
	assert.False(t, s.Tokenizer.Stemming)
	assert.False(t, s.LLM.IsConfigured(), "API key must come from the environment")
	assert.NotEmpty(t, s.Evaluator.InternalDocPrefixes)
	require.NoError(t, s.Chunking.Validate())
}

func TestChunkingSettings_Validate(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		overlap int
		wantErr bool
	}{
		{"defaults", 350, 50, false},
		{"no overlap", 10, 0, false},
		{"overlap one less than size", 10, 9, false},
		{"overlap equals size", 10, 10, true},
		{"overlap exceeds size", 10, 15, true},
		{"zero size", 0, 0, true},
		{"negative overlap", 10, -1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ChunkingSettings{Size: tt.size, Overlap: tt.overlap}.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidChunkConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestChunkingSettings_Stride(t *testing.T) {
	assert.Equal(t, 300, ChunkingSettings{Size: 350, Overlap: 50}.Stride())
}

func TestRouterSettings_ModelFor(t *testing.T) {
	r := RouterSettings{LightModel: "light", HeavyModel: "heavy"}

	assert.Equal(t, "light", r.ModelFor(ClassificationSimple))
	assert.Equal(t, "heavy", r.ModelFor(ClassificationComplex))
}

func TestRequestLogKind_IsValid(t *testing.T) {
	assert.True(t, RequestLogJSONL.IsValid())
	assert.True(t, RequestLogSQLite.IsValid())
	assert.True(t, RequestLogNone.IsValid())
	assert.False(t, RequestLogKind("kafka").IsValid())
}

func TestLLMSettings_IsConfigured(t *testing.T) {
	assert.False(t, LLMSettings{}.IsConfigured())
	assert.False(t, LLMSettings{BaseURL: "http://x"}.IsConfigured())
	assert.True(t, LLMSettings{BaseURL: "http://x", APIKey: "k"}.IsConfigured())
}
