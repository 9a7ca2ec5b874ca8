package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/asteroid-belt/pantry/internal/app"
	"github.com/asteroid-belt/pantry/internal/models"
	"github.com/asteroid-belt/pantry/internal/render"
)

// copyToClipboard is swapped out in tests.
var copyToClipboard = clipboard.WriteAll

var flagCopy bool

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a cached recipe",
	Long: `Show the details of a recipe from the local cache.

Use --copy to put the recipe's source URL on the clipboard.`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

var pinCmd = &cobra.Command{
	Use:   "pin <id>",
	Short: "Pin a cached recipe",
	Long:  `Pin a cached recipe. Pinned recipes are never evicted or purged.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSetPinned(cmd, args, true)
	},
}

var unpinCmd = &cobra.Command{
	Use:   "unpin <id>",
	Short: "Unpin a recipe",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSetPinned(cmd, args, false)
	},
}

var pinnedCmd = &cobra.Command{
	Use:   "pinned",
	Short: "List pinned recipes",
	Args:  cobra.NoArgs,
	RunE:  runPinned,
}

func init() {
	showCmd.Flags().BoolVar(&flagCopy, "copy", false, "copy the source URL to the clipboard")
}

func parseRecipeID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid recipe id %q", s)
	}
	return id, nil
}

func runShow(cmd *cobra.Command, args []string) error {
	id, err := parseRecipeID(args[0])
	if err != nil {
		return trackCLIError("show", err)
	}

	return withApp(cmd, "show", func(ctx context.Context, a *app.App) error {
		recipe, err := a.Repo.Get(ctx, id)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, line := range render.Markdown(render.RecipeMarkdown(*recipe), render.DefaultWrap) {
			_, _ = fmt.Fprintln(out, line)
		}
		telemetryClient.TrackRecipeViewed(models.Deref(recipe.Summary) != "")

		if !flagCopy {
			return nil
		}
		src := models.Deref(recipe.SourceURL)
		if src == "" {
			return errors.New("recipe has no source URL to copy")
		}
		if err := copyToClipboard(src); err != nil {
			return fmt.Errorf("copy to clipboard: %w", err)
		}
		telemetryClient.TrackRecipeCopied()
		_, _ = fmt.Fprintln(out, render.Muted.Render("Source URL copied to clipboard."))
		return nil
	})
}

func runSetPinned(cmd *cobra.Command, args []string, pinned bool) error {
	name := "unpin"
	if pinned {
		name = "pin"
	}
	id, err := parseRecipeID(args[0])
	if err != nil {
		return trackCLIError(name, err)
	}

	return withApp(cmd, name, func(ctx context.Context, a *app.App) error {
		if err := a.Repo.SetPinned(ctx, id, pinned); err != nil {
			return err
		}
		telemetryClient.TrackRecipePinned(pinned)
		if pinned {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Pinned recipe %d.\n", id)
		} else {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Unpinned recipe %d.\n", id)
		}
		return nil
	})
}

func runPinned(cmd *cobra.Command, args []string) error {
	return withApp(cmd, "pinned", func(ctx context.Context, a *app.App) error {
		recipes, err := a.Repo.Pinned(ctx)
		if err != nil {
			return fmt.Errorf("list pinned: %w", err)
		}
		telemetryClient.TrackPinnedListed(len(recipes))

		out := cmd.OutOrStdout()
		if len(recipes) == 0 {
			_, _ = fmt.Fprintln(out, "No pinned recipes.")
			_, _ = fmt.Fprintln(out, "\nUse 'pantry pin <id>' to keep a recipe in the cache.")
			return nil
		}

		_, _ = fmt.Fprintf(out, "%s (%d)\n", render.Heading.Render("PINNED"), len(recipes))
		for _, r := range recipes {
			_, _ = fmt.Fprintln(out, render.RecipeLine(r))
		}
		return nil
	})
}
