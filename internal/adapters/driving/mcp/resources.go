package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/grasp/internal/core/domain"
	"github.com/custodia-labs/grasp/internal/core/ports/driving"
)

const (
	// uriScheme is the custom URI scheme for grasp resources.
	uriScheme = "grasp://"

	documentURI = uriScheme + "document"
)

// documentResource is the JSON served for the loaded document.
type documentResource struct {
	Document *driving.DocumentInfo `json:"document"`
	Summary  *domain.Summary       `json:"summary,omitempty"`
	Status   string                `json:"status"`
}

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         documentURI,
		Name:        "document",
		Description: "The loaded document: title, word and character counts, and summary",
		MIMEType:    "application/json",
	}, s.handleDocumentResource)
}

// handleDocumentResource returns the document card and summary.
func (s *Server) handleDocumentResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	snap := s.ports.Session.Snapshot()
	if snap.Document == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	data, err := json.MarshalIndent(documentResource{
		Document: snap.Document,
		Summary:  snap.Summary,
		Status:   snap.Status,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling document: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
