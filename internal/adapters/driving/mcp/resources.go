package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// URIScheme is the custom URI scheme for ClearPath resources.
	uriScheme = "clearpath://"

	statusURI = uriScheme + "index/status"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	if s.ports.Index == nil {
		return
	}
	s.server.AddResource(&mcp.Resource{
		URI:         statusURI,
		Name:        "index-status",
		Description: "Persisted index manifest and whether the documents changed since it was built",
		MIMEType:    "application/json",
	}, s.handleStatusResource)
}

// statusInfo is the JSON shape of the index status resource.
type statusInfo struct {
	Exists        bool   `json:"exists"`
	Stale         bool   `json:"stale"`
	Loaded        bool   `json:"loaded"`
	ChunkCount    int    `json:"chunk_count"`
	DocumentCount int    `json:"document_count"`
	CreatedAt     string `json:"created_at,omitempty"`
	Fingerprint   string `json:"fingerprint,omitempty"`
}

// handleStatusResource describes the persisted index.
func (s *Server) handleStatusResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	status, err := s.ports.Index.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading index status: %w", err)
	}

	info := statusInfo{
		Exists: status.Exists,
		Stale:  status.Stale,
		Loaded: s.ports.Retrieval.Ready(),
	}
	if m := status.Manifest; m != nil {
		info.ChunkCount = m.ChunkCount
		info.DocumentCount = m.DocumentCount
		info.CreatedAt = m.CreatedAt.Format(time.RFC3339)
		info.Fingerprint = m.Fingerprint
	}

	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling status: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
