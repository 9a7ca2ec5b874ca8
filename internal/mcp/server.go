// Package mcp provides the Model Context Protocol server for Pantry.
//
// The server exposes the same paginated recipe feeds as the CLI, backed by
// the same offline-first repository, so an assistant can browse recipes
// with or without network access.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/asteroid-belt/pantry/internal/app"
	"github.com/asteroid-belt/pantry/internal/repository"
	"github.com/asteroid-belt/pantry/internal/telemetry"
	"github.com/asteroid-belt/pantry/pkg/version"
)

// Server wraps the MCP server with Pantry-specific functionality.
type Server struct {
	app       *app.App
	browser   *repository.Browser
	server    *server.MCPServer
	telemetry telemetry.Client
}

// NewServer creates a new MCP server instance. tc may be nil.
func NewServer(a *app.App, tc telemetry.Client) *Server {
	s := &Server{
		app:       a,
		browser:   repository.NewBrowser(a.Repo),
		telemetry: tc,
	}

	s.server = server.NewMCPServer(
		"pantry",
		version.Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
	)

	s.registerTools()
	s.registerResources()

	return s
}

// Serve starts the MCP server over stdio. While it runs, connectivity is
// re-checked on interface changes and after cache-served loads, and the
// active feed is reloaded whenever the network comes back.
func (s *Server) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer s.browser.Close()

	s.app.Watch(ctx)

	updates, unsubscribe := s.app.Monitor.Subscribe()
	defer unsubscribe()
	go s.browser.Run(ctx, updates)

	return server.ServeStdio(s.server)
}

func (s *Server) registerTools() {
	// Feeds
	s.server.AddTool(listTool(), s.handleList)
	s.server.AddTool(searchTool(), s.handleSearch)
	s.server.AddTool(categoryTool(), s.handleCategory)

	// Cache
	s.server.AddTool(getRecipeTool(), s.handleGetRecipe)
	s.server.AddTool(pinTool(), s.handlePin)
	s.server.AddTool(statusTool(), s.handleStatus)
}

func (s *Server) registerResources() {
	s.server.AddResourceTemplate(
		mcp.NewResourceTemplate(
			"pantry://recipe/{id}",
			"Recipe",
			mcp.WithTemplateDescription("A cached recipe rendered as markdown"),
			mcp.WithTemplateMIMEType("text/markdown"),
		),
		s.handleRecipeResource,
	)

	s.server.AddResourceTemplate(
		mcp.NewResourceTemplate(
			"pantry://recipe/{id}/metadata",
			"Recipe metadata",
			mcp.WithTemplateDescription("JSON metadata for a cached recipe"),
			mcp.WithTemplateMIMEType("application/json"),
		),
		s.handleRecipeMetadataResource,
	)
}
