package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/clearpath-labs/clearpath/internal/core/domain"
)

// RetrieveInput is the input schema for the retrieve tool.
type RetrieveInput struct {
	Query string `json:"query" jsonschema:"the question or keywords to match against the documents"`
	TopK  int    `json:"top_k,omitempty" jsonschema:"maximum number of passages to return (default from configuration)"`
}

// RetrieveOutput is the output schema for the retrieve tool.
type RetrieveOutput struct {
	Results []PassageOutput `json:"results"`
	Count   int             `json:"count"`
}

// PassageOutput represents a single retrieved chunk.
type PassageOutput struct {
	ChunkID        int     `json:"chunk_id"`
	Source         string  `json:"source"`
	Page           int     `json:"page"`
	RelevanceScore float64 `json:"relevance_score"`
	Text           string  `json:"text"`
}

// RouteInput is the input schema for the route tool.
type RouteInput struct {
	Query string `json:"query" jsonschema:"the query to classify"`
}

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question       string `json:"question" jsonschema:"the question to answer from the documents"`
	ConversationID string `json:"conversation_id,omitempty" jsonschema:"continue an earlier conversation"`
}

// Tool names.
const (
	toolRetrieve = "retrieve"
	toolRoute    = "route"
	toolAsk      = "ask"
)

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        toolRetrieve,
		Description: "Find the document passages most relevant to a query, ranked by BM25",
	}, s.handleRetrieve)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        toolRoute,
		Description: "Classify a query as simple or complex and name the model tier that would answer it",
	}, s.handleRoute)

	if s.ports.Query != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        toolAsk,
			Description: "Answer a question from the indexed documents, citing sources",
		}, s.handleAsk)
	}
}

// handleRetrieve handles the retrieve tool invocation.
func (s *Server) handleRetrieve(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RetrieveInput,
) (*mcp.CallToolResult, RetrieveOutput, error) {
	if err := s.ports.Retrieval.EnsureLoaded(ctx); err != nil {
		return nil, RetrieveOutput{}, err
	}

	results, err := s.ports.Retrieval.Retrieve(ctx, input.Query, input.TopK)
	if err != nil {
		return nil, RetrieveOutput{}, err
	}

	output := RetrieveOutput{
		Results: make([]PassageOutput, len(results)),
		Count:   len(results),
	}
	for i := range results {
		output.Results[i] = PassageOutput{
			ChunkID:        results[i].ChunkID,
			Source:         results[i].Source,
			Page:           results[i].Page,
			RelevanceScore: results[i].RelevanceScore,
			Text:           results[i].Text,
		}
	}

	return nil, output, nil
}

// handleRoute handles the route tool invocation.
func (s *Server) handleRoute(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input RouteInput,
) (*mcp.CallToolResult, domain.Route, error) {
	return nil, s.ports.Router.Route(input.Query), nil
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, domain.Answer, error) {
	if err := s.ports.Retrieval.EnsureLoaded(ctx); err != nil {
		return nil, domain.Answer{}, err
	}

	answer, err := s.ports.Query.Ask(ctx, domain.Question{
		Text:           input.Question,
		ConversationID: input.ConversationID,
	})
	if err != nil {
		return nil, domain.Answer{}, err
	}
	return nil, *answer, nil
}
