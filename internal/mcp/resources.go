package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/asteroid-belt/pantry/internal/render"
)

// resourcePrefix is the URI scheme for Pantry resources.
const resourcePrefix = "pantry://"

// parseRecipeURI extracts the id from a pantry://recipe/{id}[/metadata] URI.
func parseRecipeURI(uri string) (id int64, isMetadata bool, err error) {
	if !strings.HasPrefix(uri, resourcePrefix+"recipe/") {
		return 0, false, fmt.Errorf("invalid URI scheme: %s", uri)
	}

	path := strings.TrimPrefix(uri, resourcePrefix+"recipe/")
	if strings.HasSuffix(path, "/metadata") {
		path = strings.TrimSuffix(path, "/metadata")
		isMetadata = true
	}

	id, err = strconv.ParseInt(path, 10, 64)
	if err != nil || id <= 0 {
		return 0, false, fmt.Errorf("invalid recipe id in URI: %s", uri)
	}
	return id, isMetadata, nil
}

// handleRecipeResource handles pantry://recipe/{id} resources.
func (s *Server) handleRecipeResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	id, _, err := parseRecipeURI(req.Params.URI)
	if err != nil {
		return nil, err
	}

	recipe, err := s.app.Repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "text/markdown",
			Text:     render.RecipeMarkdown(*recipe),
		},
	}, nil
}

// handleRecipeMetadataResource handles pantry://recipe/{id}/metadata resources.
func (s *Server) handleRecipeMetadataResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	id, _, err := parseRecipeURI(req.Params.URI)
	if err != nil {
		return nil, err
	}

	recipe, err := s.app.Repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(toRecipeResponse(recipe))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metadata: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
