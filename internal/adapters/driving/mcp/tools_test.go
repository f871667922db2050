package mcp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearpath-labs/clearpath/internal/core/domain"
)

func TestServer_handleRetrieve(t *testing.T) {
	ctx := context.Background()

	t.Run("returns passages", func(t *testing.T) {
		retrieval := &mockRetrievalService{
			results: []domain.RetrievalResult{{
				Chunk: domain.Chunk{
					Text:    "The Pro plan costs $49 per month",
					Source:  "14_Pricing.pdf",
					Page:    2,
					ChunkID: 7,
				},
				RelevanceScore: 1,
			}},
		}
		ports := validPorts()
		ports.Retrieval = retrieval
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, output, err := server.handleRetrieve(ctx, nil, RetrieveInput{Query: "pro plan", TopK: 3})

		require.NoError(t, err)
		assert.Equal(t, 1, output.Count)
		require.Len(t, output.Results, 1)
		assert.Equal(t, PassageOutput{
			ChunkID:        7,
			Source:         "14_Pricing.pdf",
			Page:           2,
			RelevanceScore: 1,
			Text:           "The Pro plan costs $49 per month",
		}, output.Results[0])
		assert.Equal(t, "pro plan", retrieval.lastQuery)
		assert.Equal(t, 3, retrieval.lastTopK)
	})

	t.Run("empty results", func(t *testing.T) {
		server, err := NewServer(validPorts())
		require.NoError(t, err)

		_, output, err := server.handleRetrieve(ctx, nil, RetrieveInput{Query: "the"})

		require.NoError(t, err)
		assert.Equal(t, 0, output.Count)
		assert.NotNil(t, output.Results)
	})

	t.Run("index unavailable", func(t *testing.T) {
		ports := validPorts()
		ports.Retrieval = &mockRetrievalService{loadErr: domain.ErrIndexUnavailable}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, _, err = server.handleRetrieve(ctx, nil, RetrieveInput{Query: "pricing"})

		assert.ErrorIs(t, err, domain.ErrIndexUnavailable)
	})
}

func TestServer_handleRoute(t *testing.T) {
	want := domain.Route{Classification: domain.ClassificationComplex, Model: domain.DefaultHeavyModel}
	ports := validPorts()
	ports.Router = &mockRouterService{route: want}
	server, err := NewServer(ports)
	require.NoError(t, err)

	_, got, err := server.handleRoute(context.Background(), nil, RouteInput{Query: "compare the plans"})

	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestServer_handleAsk(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the answer", func(t *testing.T) {
		query := &mockQueryService{answer: &domain.Answer{
			Answer:         "$49 per month.",
			ConversationID: "conv_0123456789ab",
		}}
		ports := validPorts()
		ports.Query = query
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, answer, err := server.handleAsk(ctx, nil, AskInput{Question: "Pro price?", ConversationID: "conv_0123456789ab"})

		require.NoError(t, err)
		assert.Equal(t, "$49 per month.", answer.Answer)
		assert.Equal(t, domain.Question{Text: "Pro price?", ConversationID: "conv_0123456789ab"}, query.question)
	})

	t.Run("propagates pipeline errors", func(t *testing.T) {
		ports := validPorts()
		ports.Query = &mockQueryService{err: domain.ErrLLMUnavailable}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, _, err = server.handleAsk(ctx, nil, AskInput{Question: "Pro price?"})

		assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
	})
}
