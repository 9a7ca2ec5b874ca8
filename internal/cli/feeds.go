package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/asteroid-belt/pantry/internal/app"
	"github.com/asteroid-belt/pantry/internal/models"
	"github.com/asteroid-belt/pantry/internal/paging"
	"github.com/asteroid-belt/pantry/internal/render"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all recipes",
	Long: `List one page of the all-recipes feed.

Online, the page is fetched from Spoonacular and cached. Offline, it is
served from the cache, freshest first.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFeed(cmd, "list", paging.All())
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search recipes by text",
	Long: `Search recipes by text.

Offline, the query is matched case-insensitively against cached titles.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

var categoryCmd = &cobra.Command{
	Use:   "category <id>",
	Short: "List recipes in a category",
	Long: `List recipes in a dish-type category and remember it as the
current selection. Run 'pantry categories' to see the ids.`,
	Args: cobra.ExactArgs(1),
	RunE: runCategory,
}

// runHome shows the feed of the last selected category.
func runHome(cmd *cobra.Command, args []string) error {
	return withApp(cmd, "home", func(ctx context.Context, a *app.App) error {
		state, err := a.DB.GetUserState()
		if err != nil {
			return fmt.Errorf("read user state: %w", err)
		}
		lt := paging.ForCategory(state.Selection().Selected())
		return showFeed(ctx, cmd.OutOrStdout(), a, lt)
	})
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.TrimSpace(strings.Join(args, " "))
	if query == "" {
		return trackCLIError("search", errors.New("search query must not be blank"))
	}
	return runFeed(cmd, "search", paging.Search(query))
}

func runCategory(cmd *cobra.Command, args []string) error {
	c, ok := models.FindCategory(args[0])
	if !ok {
		return trackCLIError("category", fmt.Errorf("unknown category %q (run 'pantry categories')", args[0]))
	}
	return withApp(cmd, "category", func(ctx context.Context, a *app.App) error {
		if err := a.DB.SaveSelection(models.SelectionOf(c)); err != nil {
			a.Logger.Warn("save category selection failed", slog.String("error", err.Error()))
		}
		telemetryClient.TrackCategorySelected(c.ID)
		return showFeed(ctx, cmd.OutOrStdout(), a, paging.ForCategory(c))
	})
}

func runFeed(cmd *cobra.Command, name string, lt paging.LoadType) error {
	return withApp(cmd, name, func(ctx context.Context, a *app.App) error {
		return showFeed(ctx, cmd.OutOrStdout(), a, lt)
	})
}

// showFeed loads the page selected by --page and prints it.
func showFeed(ctx context.Context, w io.Writer, a *app.App, lt paging.LoadType) error {
	page, err := a.Repo.Stream(lt).Load(ctx, flagPage)
	if err != nil {
		return explainLoadError(err)
	}

	printPage(w, lt, page, flagPage)

	telemetryClient.TrackFeedLoaded(lt.Variant().String(), string(page.Source), flagPage, len(page.Records))
	if q, ok := lt.Query(); ok {
		telemetryClient.TrackSearchPerformed(len([]rune(q)), len(page.Records), page.Source == paging.SourceCache)
	}
	return nil
}

func printPage(w io.Writer, lt paging.LoadType, page paging.Page, index int) {
	_, _ = fmt.Fprintf(w, "%s %s\n", render.Heading.Render(feedTitle(lt)), render.SourceBadge(page.Source))
	_, _ = fmt.Fprintln(w, render.Muted.Render("──────────────────────────────────────────────────"))

	if len(page.Records) == 0 {
		if page.Source == paging.SourceCache {
			_, _ = fmt.Fprintln(w, "No cached recipes match. Go online to fetch more.")
		} else {
			_, _ = fmt.Fprintln(w, "No recipes found.")
		}
	}
	for _, r := range page.Records {
		_, _ = fmt.Fprintln(w, render.RecipeLine(r))
	}

	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, render.PageFooter(page, index))
}

func feedTitle(lt paging.LoadType) string {
	if q, ok := lt.Query(); ok {
		return fmt.Sprintf("SEARCH %q", q)
	}
	if tag, ok := lt.Tag(); ok {
		if c, found := models.FindCategory(tag); found {
			return strings.ToUpper(c.Name)
		}
		return strings.ToUpper(tag)
	}
	return "ALL RECIPES"
}

// explainLoadError adds a hint to classified failures. The classification
// stays reachable through errors.Is.
func explainLoadError(err error) error {
	switch {
	case errors.Is(err, paging.ErrInvalidCredentials):
		return fmt.Errorf("%w (set SPOONACULAR_API_KEY or api.api_key in config.toml)", err)
	case errors.Is(err, paging.ErrQuotaExhausted):
		return fmt.Errorf("%w (daily quota used up; --offline serves cached recipes)", err)
	case errors.Is(err, paging.ErrRateLimited):
		return fmt.Errorf("%w (wait a moment and retry)", err)
	case errors.Is(err, paging.ErrTransport):
		return fmt.Errorf("%w (check your connection or use --offline)", err)
	default:
		return err
	}
}
