package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/asteroid-belt/pantry/internal/app"
	"github.com/asteroid-belt/pantry/internal/config"
	"github.com/asteroid-belt/pantry/internal/models"
	"github.com/asteroid-belt/pantry/internal/paging"
	"github.com/asteroid-belt/pantry/internal/render"
	"github.com/asteroid-belt/pantry/pkg/version"
)

var (
	flagPurgeQuery    string
	flagPurgeCategory string
)

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Evict stale recipes from the cache",
	Long: `Delete cached recipes fetched longer ago than cache.retention_hours
(24 by default). Pinned recipes are kept.`,
	Args: cobra.NoArgs,
	RunE: runPrune,
}

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete cached recipes for one search or category",
	Long: `Delete the cached recipes that were fetched for a search query or a
category. Pinned recipes are kept.`,
	Args: cobra.NoArgs,
	RunE: runPurge,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show cache and connectivity status",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List recipe categories",
	Args:  cobra.NoArgs,
	RunE:  runCategories,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long:  `Print the effective configuration as TOML. The API key is never printed.`,
	Args:  cobra.NoArgs,
	RunE:  runConfig,
}

func init() {
	purgeCmd.Flags().StringVar(&flagPurgeQuery, "query", "", "purge rows cached for this search query")
	purgeCmd.Flags().StringVar(&flagPurgeCategory, "category", "", "purge rows cached for this category")
	purgeCmd.MarkFlagsMutuallyExclusive("query", "category")
	purgeCmd.MarkFlagsOneRequired("query", "category")
}

func runPrune(cmd *cobra.Command, args []string) error {
	return withApp(cmd, "prune", func(ctx context.Context, a *app.App) error {
		n, err := a.Prune(ctx)
		if err != nil {
			return err
		}
		telemetryClient.TrackCachePruned(n)
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Evicted %d stale recipes (older than %s).\n",
			n, a.Config.Cache.Retention())
		return nil
	})
}

func runPurge(cmd *cobra.Command, args []string) error {
	var (
		lt    paging.LoadType
		scope string
	)
	switch {
	case flagPurgeQuery != "":
		lt, scope = paging.Search(flagPurgeQuery), "query"
	case flagPurgeCategory != "":
		c, ok := models.FindCategory(flagPurgeCategory)
		if !ok || c.IsAll() {
			return trackCLIError("purge", fmt.Errorf("unknown category %q", flagPurgeCategory))
		}
		lt, scope = paging.ForCategory(c), "category"
	default:
		return trackCLIError("purge", errors.New("one of --query or --category is required"))
	}

	return withApp(cmd, "purge", func(ctx context.Context, a *app.App) error {
		n, err := a.Repo.Purge(ctx, lt)
		if err != nil {
			return err
		}
		telemetryClient.TrackCachePurged(scope, n)
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Purged %d cached recipes for %s.\n", n, lt)
		return nil
	})
}

func runStatus(cmd *cobra.Command, args []string) error {
	return withApp(cmd, "status", func(ctx context.Context, a *app.App) error {
		stats, err := a.DB.GetStats(ctx)
		if err != nil {
			return fmt.Errorf("read cache stats: %w", err)
		}
		telemetryClient.TrackStatusViewed(stats.TotalRecipes, stats.PinnedRecipes)

		out := cmd.OutOrStdout()
		network := render.Warn.Render("offline")
		if a.Online() {
			network = render.Heading.Render("online")
		}

		_, _ = fmt.Fprintln(out, render.Heading.Render("PANTRY STATUS"))
		_, _ = fmt.Fprintln(out, render.Muted.Render("──────────────────────────────────────────────────"))
		_, _ = fmt.Fprintf(out, "  Network:   %s\n", network)
		_, _ = fmt.Fprintf(out, "  Version:   %s (%s)\n", version.Version, version.Channel())
		_, _ = fmt.Fprintf(out, "  Database:  %s\n", a.DB.Path())
		_, _ = fmt.Fprintf(out, "  Cached:    %d recipes (%s)\n", stats.TotalRecipes, formatBytes(stats.CacheSizeBytes))
		_, _ = fmt.Fprintf(out, "  Pinned:    %s\n", render.Meter(stats.PinnedRecipes, stats.TotalRecipes, 15))
		_, _ = fmt.Fprintf(out, "  Retention: %s\n", a.Config.Cache.Retention())
		if !stats.NewestFetch.IsZero() {
			_, _ = fmt.Fprintf(out, "  Newest:    %s\n", formatTimeSince(stats.NewestFetch, a.Now()))
		}
		if !stats.OldestFetch.IsZero() {
			_, _ = fmt.Fprintf(out, "  Oldest:    %s\n", formatTimeSince(stats.OldestFetch, a.Now()))
		}
		if state, err := a.DB.GetUserState(); err == nil && version.NewerThanCurrent(state.CacheVersion) {
			_, _ = fmt.Fprintln(out, render.Warn.Render(fmt.Sprintf("\n  Cache was written by pantry %s; consider upgrading.", state.CacheVersion)))
		}
		if a.Config.API.APIKey == "" {
			_, _ = fmt.Fprintln(out, render.Warn.Render("\n  No API key configured: online loads will fail."))
		}
		return nil
	})
}

func runCategories(cmd *cobra.Command, args []string) error {
	return withApp(cmd, "categories", func(ctx context.Context, a *app.App) error {
		state, err := a.DB.GetUserState()
		if err != nil {
			return fmt.Errorf("read user state: %w", err)
		}
		sel := state.Selection()
		telemetryClient.TrackCategoriesListed(len(models.Categories))

		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintln(out, render.Heading.Render("CATEGORIES"))
		for _, c := range models.Categories {
			marker := "  "
			if sel.IsSelected(c) {
				marker = "▸ "
			}
			_, _ = fmt.Fprintf(out, "%s%-12s %s\n", marker, c.ID, render.Muted.Render(c.Name))
		}
		return nil
	})
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return trackCLIError("config", fmt.Errorf("load config: %w", err))
	}
	return trackCLIError("config", cfg.Write(cmd.OutOrStdout()))
}

// formatTimeSince formats the time between t and now in a human-readable way.
func formatTimeSince(t, now time.Time) string {
	diff := now.Sub(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		mins := int(diff.Minutes())
		if mins == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", mins)
	case diff < 24*time.Hour:
		hours := int(diff.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	case diff < 7*24*time.Hour:
		days := int(diff.Hours() / 24)
		if days == 1 {
			return "1 day ago"
		}
		return fmt.Sprintf("%d days ago", days)
	default:
		return t.Format("2006-01-02")
	}
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGT"[exp])
}
