// Package cli provides the command-line interface for Pantry.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/asteroid-belt/pantry/internal/app"
	"github.com/asteroid-belt/pantry/internal/config"
	"github.com/asteroid-belt/pantry/internal/log"
	"github.com/asteroid-belt/pantry/internal/paging"
	"github.com/asteroid-belt/pantry/internal/repository"
	"github.com/asteroid-belt/pantry/internal/telemetry"
	"github.com/asteroid-belt/pantry/pkg/version"
)

var telemetryClient telemetry.Client

var commandStartTime time.Time

// Global flags.
var (
	flagPage        int
	flagOffline     bool
	flagMetricsFile string
)

// baseOptions is the starting point for every app.Open call.
var baseOptions app.Options

var rootCmd = &cobra.Command{
	Use:   "pantry",
	Short: "Offline-first recipe browser",
	Long: `Offline-first recipe browser

Browse, search and filter Spoonacular recipes. Every page fetched online is
cached locally, so the same feeds keep working without a network.

Run without arguments to show the feed of the last selected category.

Configuration:
  ~/.pantry/config.toml, overridden by SPOONACULAR_API_KEY, PANTRY_BASE_URL,
  PANTRY_OFFLINE and PANTRY_HOME.

Telemetry:
  Telemetry is enabled by default, always anonymous, and never records
  search text, recipe data or IP addresses.

  Opt-out with:
  	PANTRY_TELEMETRY_TRACKING_ENABLED=false`,
	SilenceUsage: true,
	Args:         cobra.NoArgs,
	RunE:         runHome,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		commandStartTime = time.Now()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		durationMs := time.Since(commandStartTime).Milliseconds()
		hasFlags := cmd.Flags().NFlag() > 0
		telemetryClient.TrackCLICommandExecuted(cmd.Name(), hasFlags, durationMs)

		if cmd.Flags().Changed("help") {
			telemetryClient.TrackCLIHelpViewed(cmd.Name(), os.Args[1:])
		}
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.IntVarP(&flagPage, "page", "p", 0, "page index in page_size units, starting at 0 (page 0 holds initial_load_size recipes; use the footer's next page)")
	pf.BoolVar(&flagOffline, "offline", false, "serve from the local cache only")
	pf.StringVar(&flagMetricsFile, "metrics-file", "", "write Prometheus metrics to this file on exit")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(categoryCmd)
	rootCmd.AddCommand(categoriesCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(pinCmd)
	rootCmd.AddCommand(unpinCmd)
	rootCmd.AddCommand(pinnedCmd)
	rootCmd.AddCommand(pruneCmd)
	rootCmd.AddCommand(purgeCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(configCmd)
}

// Execute runs the CLI with fang enhancements.
func Execute(ctx context.Context, tc telemetry.Client) error {
	if tc == nil {
		tc = telemetry.New(nil)
	}
	telemetryClient = tc

	err := fang.Execute(
		ctx,
		rootCmd,
		fang.WithVersion(version.Short()),
		fang.WithCommit(version.Commit),
	)

	durationMs := time.Since(commandStartTime).Milliseconds()
	telemetryClient.TrackAppExited("cli", durationMs, 1)

	return err
}

// withApp loads config, opens the app for one command and closes it after fn.
func withApp(cmd *cobra.Command, name string, fn func(ctx context.Context, a *app.App) error) error {
	cfg, err := config.Load()
	if err != nil {
		return trackCLIError(name, fmt.Errorf("load config: %w", err))
	}

	opts := baseOptions
	opts.Offline = opts.Offline || flagOffline
	opts.MetricsFile = flagMetricsFile
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	a, err := app.Open(cmd.Context(), cfg, opts)
	if err != nil {
		return trackCLIError(name, err)
	}
	defer func() { _ = a.Close() }()

	showStartupNotification(a.DB, cmd.ErrOrStderr())

	return trackCLIError(name, fn(cmd.Context(), a))
}

// trackCLIError wraps an error with telemetry tracking.
// Call this before returning errors from CLI commands.
func trackCLIError(cmdName string, err error) error {
	if err == nil {
		return nil
	}
	errorType := classifyError(err)
	telemetryClient.TrackCLIError(cmdName, errorType)
	return err
}

// classifyError determines the error type for telemetry.
func classifyError(err error) string {
	if kind := paging.KindOf(err); kind != 0 {
		return kind.String()
	}
	switch {
	case errors.Is(err, repository.ErrRecipeNotFound):
		return "not_found_error"
	case errors.Is(err, paging.ErrInvalidRequest):
		return "validation_error"
	}

	errStr := err.Error()
	switch {
	case containsAny(errStr, "config", "configuration"):
		return "config_error"
	case containsAny(errStr, "database", "db"):
		return "database_error"
	case containsAny(errStr, "network", "timeout", "connection"):
		return "network_error"
	case containsAny(errStr, "permission", "access denied"):
		return "permission_error"
	case containsAny(errStr, "not found", "does not exist"):
		return "not_found_error"
	case containsAny(errStr, "invalid", "parse", "format"):
		return "validation_error"
	default:
		return "unknown_error"
	}
}

// containsAny checks if s contains any of the substrings (case-insensitive).
func containsAny(s string, substrs ...string) bool {
	lower := strings.ToLower(s)
	for _, sub := range substrs {
		if strings.Contains(lower, sub) {
			return true
		}
	}
	return false
}
