// Pantry - offline-first recipe browser.
//
// Pages through Spoonacular recipes, caching every page locally so the same
// feeds keep working without a network.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/asteroid-belt/pantry/internal/cli"
	"github.com/asteroid-belt/pantry/internal/config"
	"github.com/asteroid-belt/pantry/internal/db"
	"github.com/asteroid-belt/pantry/internal/log"
	"github.com/asteroid-belt/pantry/internal/telemetry"
)

func main() {
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

	paths := config.GetPaths(cfg)
	if _, err := log.Init(paths.Log, log.ParseLevel(cfg.LogLevel), false); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Close() }()

	// Read the persistent tracking ID, then release the database for the command.
	database, err := db.New(db.DefaultConfig(paths.Database))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
		os.Exit(1)
	}
	telemetryClient := telemetry.New(database)
	_ = database.Close()
	defer telemetryClient.Close()

	if err := cli.Execute(ctx, telemetryClient); err != nil {
		os.Exit(1)
	}
}
