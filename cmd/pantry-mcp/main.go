// Package main provides the pantry-mcp server.
//
// pantry-mcp exposes the Pantry recipe feeds via the Model Context Protocol.
//
// Usage:
//
//	pantry-mcp [flags]
//
// The server communicates via JSON-RPC 2.0 over stdio (stdin/stdout).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/asteroid-belt/pantry/internal/app"
	"github.com/asteroid-belt/pantry/internal/config"
	"github.com/asteroid-belt/pantry/internal/log"
	"github.com/asteroid-belt/pantry/internal/mcp"
	"github.com/asteroid-belt/pantry/internal/telemetry"
	"github.com/asteroid-belt/pantry/pkg/version"
)

func main() {
	if len(os.Args) > 1 && (os.Args[1] == "--version" || os.Args[1] == "-v") {
		fmt.Printf("pantry-mcp %s\n", version.Version)
		os.Exit(0)
	}

	if len(os.Args) > 1 && (os.Args[1] == "--help" || os.Args[1] == "-h") {
		printHelp()
		os.Exit(0)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// stdout carries the protocol, so logs only go to the file.
	logger, err := log.Init(config.GetPaths(cfg).Log, log.ParseLevel(cfg.LogLevel), false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Close() }()

	a, err := app.Open(ctx, cfg, app.Options{Logger: logger})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open pantry: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = a.Close() }()

	telemetryClient := telemetry.New(a.DB)
	defer telemetryClient.Close()
	if stats, err := a.DB.GetStats(ctx); err == nil {
		telemetryClient.TrackAppStarted("mcp", stats.TotalRecipes, !a.Online())
	}

	server := mcp.NewServer(a, telemetryClient)
	if err := server.Serve(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}

func printHelp() {
	help := `pantry-mcp - MCP server for the Pantry recipe browser

USAGE:
    pantry-mcp [FLAGS]

FLAGS:
    -h, --help       Print this help message
    -v, --version    Print version information

DESCRIPTION:
    pantry-mcp is a Model Context Protocol (MCP) server that exposes the
    offline-first Pantry recipe feeds to MCP-compatible clients.

    The server communicates via JSON-RPC 2.0 over stdio (stdin/stdout).

CONFIGURATION:
    {
      "mcpServers": {
        "pantry": {
          "type": "stdio",
          "command": "pantry-mcp"
        }
      }
    }

TOOLS PROVIDED:
    pantry_list         One page of all recipes
    pantry_search       One page of a text search
    pantry_category     One page of a dish-type category
    pantry_get_recipe   A cached recipe by id
    pantry_pin          Pin or unpin a cached recipe
    pantry_status       Connectivity and cache statistics

RESOURCES PROVIDED:
    pantry://recipe/{id}            Recipe as markdown
    pantry://recipe/{id}/metadata   Recipe metadata as JSON
`
	fmt.Print(help)
}
