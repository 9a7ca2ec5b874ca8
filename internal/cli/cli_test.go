package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asteroid-belt/pantry/internal/app"
	"github.com/asteroid-belt/pantry/internal/config"
	"github.com/asteroid-belt/pantry/internal/db"
	"github.com/asteroid-belt/pantry/internal/models"
	"github.com/asteroid-belt/pantry/internal/network"
	"github.com/asteroid-belt/pantry/internal/paging"
	"github.com/asteroid-belt/pantry/internal/render"
	"github.com/asteroid-belt/pantry/internal/repository"
	"github.com/asteroid-belt/pantry/internal/spoonacular"
	"github.com/asteroid-belt/pantry/internal/telemetry"
)

type stubRemote struct {
	results []spoonacular.RawRecipe
	err     error
	params  []spoonacular.SearchParams
}

func (r *stubRemote) Search(_ context.Context, p spoonacular.SearchParams) (*spoonacular.SearchResponse, error) {
	r.params = append(r.params, p)
	if r.err != nil {
		return nil, r.err
	}
	return &spoonacular.SearchResponse{Results: r.results, TotalResults: len(r.results)}, nil
}

func raw(id int64, title string) spoonacular.RawRecipe {
	return spoonacular.RawRecipe{ID: id, Title: &title}
}

// setupCLI isolates the CLI in a temp PANTRY_HOME with a stub remote.
func setupCLI(t *testing.T, remote *stubRemote, online bool) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv(config.EnvHome, home)
	t.Setenv(config.EnvAPIKey, "test-key")
	t.Setenv(config.EnvBaseURL, "")
	t.Setenv(config.EnvOffline, "")
	t.Setenv(config.EnvLogLevel, "")
	t.Setenv(telemetry.EnvEnabled, "false")

	telemetryClient = telemetry.New(nil)
	baseOptions = app.Options{
		Remote: remote,
		Prober: network.Static(online),
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	t.Cleanup(func() { baseOptions = app.Options{} })
	return home
}

// seed writes recipes straight into the cache under home.
func seed(t *testing.T, home string, recipes ...models.Recipe) {
	t.Helper()
	database, err := db.New(db.DefaultConfig(filepath.Join(home, "pantry.db")))
	require.NoError(t, err)
	defer func() { _ = database.Close() }()
	require.NoError(t, database.UpsertRecipes(context.Background(), recipes))
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return render.StripANSI(out.String()), err
}

func TestRootCmd_Structure(t *testing.T) {
	assert.Equal(t, "pantry", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)

	for _, name := range []string{"page", "offline", "metrics-file"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), name)
	}
	assert.Contains(t, rootCmd.PersistentFlags().Lookup("page").Usage, "page_size units")
}

func TestRootCmd_HasSubcommands(t *testing.T) {
	var names []string
	for _, cmd := range rootCmd.Commands() {
		names = append(names, cmd.Name())
	}

	for _, want := range []string{
		"list", "search", "category", "categories", "show",
		"pin", "unpin", "pinned", "prune", "purge", "status", "config",
	} {
		assert.Contains(t, names, want)
	}
}

func TestList_OnlineThenOffline(t *testing.T) {
	remote := &stubRemote{results: []spoonacular.RawRecipe{raw(1, "Pad Thai"), raw(2, "Pho")}}
	setupCLI(t, remote, true)

	out, err := runCLI(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "ALL RECIPES")
	assert.Contains(t, out, "LIVE")
	assert.Contains(t, out, "Pad Thai")
	assert.Contains(t, out, "end of results")
	require.Len(t, remote.params, 1)
	assert.Equal(t, 40, remote.params[0].Number)

	out, err = runCLI(t, "list", "--offline")
	require.NoError(t, err)
	assert.Contains(t, out, "OFFLINE")
	assert.Contains(t, out, "Pad Thai")
	assert.Contains(t, out, "Pho")
	assert.Len(t, remote.params, 1)
}

func TestList_PageFlag(t *testing.T) {
	remote := &stubRemote{}
	setupCLI(t, remote, true)

	_, err := runCLI(t, "list", "--page", "3")
	require.NoError(t, err)
	require.Len(t, remote.params, 1)
	assert.Equal(t, 20, remote.params[0].Number)
	assert.Equal(t, 60, remote.params[0].Offset)
}

func TestList_FooterSkipsEnlargedFirstPage(t *testing.T) {
	var results []spoonacular.RawRecipe
	for i := 1; i <= 40; i++ {
		results = append(results, raw(int64(i), fmt.Sprintf("Recipe %d", i)))
	}
	setupCLI(t, &stubRemote{results: results}, true)

	out, err := runCLI(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "next: --page 2")
}

func TestSearch_Offline(t *testing.T) {
	home := setupCLI(t, &stubRemote{}, false)
	seed(t, home,
		models.Recipe{ID: 1, Title: "Chicken Curry"},
		models.Recipe{ID: 2, Title: "Beef Stew"},
	)

	out, err := runCLI(t, "search", "curry")
	require.NoError(t, err)
	assert.Contains(t, out, `SEARCH "curry"`)
	assert.Contains(t, out, "Chicken Curry")
	assert.NotContains(t, out, "Beef Stew")
}

func TestSearch_BlankQuery(t *testing.T) {
	setupCLI(t, &stubRemote{}, false)
	_, err := runCLI(t, "search", "   ")
	assert.ErrorContains(t, err, "blank")
}

func TestList_QuotaExhausted(t *testing.T) {
	setupCLI(t, &stubRemote{err: &spoonacular.StatusError{StatusCode: http.StatusPaymentRequired}}, true)

	_, err := runCLI(t, "list")
	require.Error(t, err)
	assert.True(t, errors.Is(err, paging.ErrQuotaExhausted))
	assert.Contains(t, err.Error(), "--offline")
}

func TestCategory_SavesSelection(t *testing.T) {
	remote := &stubRemote{results: []spoonacular.RawRecipe{raw(5, "Brownies")}}
	setupCLI(t, remote, true)

	out, err := runCLI(t, "category", "dessert")
	require.NoError(t, err)
	assert.Contains(t, out, "DESSERTS")
	assert.Contains(t, out, "Brownies")
	assert.Equal(t, "dessert", remote.params[0].Type)

	out, err = runCLI(t, "categories")
	require.NoError(t, err)
	assert.Contains(t, out, "▸ dessert")

	// The root command reopens the saved category, here from the cache.
	out, err = runCLI(t, "--offline")
	require.NoError(t, err)
	assert.Contains(t, out, "DESSERTS")
	assert.Contains(t, out, "Brownies")
}

func TestCategory_Unknown(t *testing.T) {
	setupCLI(t, &stubRemote{}, false)
	_, err := runCLI(t, "category", "haggis")
	assert.ErrorContains(t, err, "unknown category")
}

func TestShow(t *testing.T) {
	home := setupCLI(t, &stubRemote{}, false)
	seed(t, home, models.Recipe{
		ID:        42,
		Title:     "Shakshuka",
		Summary:   models.StringPtr("Eggs in <b>spicy</b> tomato sauce."),
		SourceURL: models.StringPtr("https://example.com/shakshuka"),
	})

	var copied string
	orig := copyToClipboard
	copyToClipboard = func(s string) error { copied = s; return nil }
	t.Cleanup(func() { copyToClipboard = orig })

	out, err := runCLI(t, "show", "42", "--copy")
	require.NoError(t, err)
	assert.Contains(t, out, "Shakshuka")
	assert.Contains(t, out, "spicy")
	assert.NotContains(t, out, "<b>")
	assert.Contains(t, out, "copied")
	assert.Equal(t, "https://example.com/shakshuka", copied)
}

func TestShow_Errors(t *testing.T) {
	setupCLI(t, &stubRemote{}, false)

	_, err := runCLI(t, "show", "404")
	assert.ErrorIs(t, err, repository.ErrRecipeNotFound)

	_, err = runCLI(t, "show", "abc")
	assert.ErrorContains(t, err, "invalid recipe id")
}

func TestPinUnpinPinned(t *testing.T) {
	home := setupCLI(t, &stubRemote{}, false)
	seed(t, home, models.Recipe{ID: 7, Title: "Ramen"})

	out, err := runCLI(t, "pinned")
	require.NoError(t, err)
	assert.Contains(t, out, "No pinned recipes")

	out, err = runCLI(t, "pin", "7")
	require.NoError(t, err)
	assert.Contains(t, out, "Pinned recipe 7")

	out, err = runCLI(t, "pinned")
	require.NoError(t, err)
	assert.Contains(t, out, "Ramen")

	_, err = runCLI(t, "unpin", "7")
	require.NoError(t, err)
	out, err = runCLI(t, "pinned")
	require.NoError(t, err)
	assert.Contains(t, out, "No pinned recipes")

	_, err = runCLI(t, "pin", "8")
	assert.ErrorIs(t, err, repository.ErrRecipeNotFound)
}

func TestPrune(t *testing.T) {
	home := setupCLI(t, &stubRemote{}, false)
	now := time.Now()
	seed(t, home,
		models.Recipe{ID: 1, Title: "old", FetchedAt: now.Add(-72 * time.Hour)},
		models.Recipe{ID: 2, Title: "new", FetchedAt: now.Add(-time.Hour)},
	)

	out, err := runCLI(t, "prune")
	require.NoError(t, err)
	assert.Contains(t, out, "Evicted 1 stale recipes")

	out, err = runCLI(t, "prune")
	require.NoError(t, err)
	assert.Contains(t, out, "Evicted 0 stale recipes")
}

func TestPurge(t *testing.T) {
	home := setupCLI(t, &stubRemote{}, false)
	seed(t, home,
		models.Recipe{ID: 1, Title: "Pie", SearchQuery: models.StringPtr("pie")},
		models.Recipe{ID: 2, Title: "Pie too", SearchQuery: models.StringPtr("pie")},
		models.Recipe{ID: 3, Title: "Salad", CategoryTag: models.StringPtr("salad")},
	)

	_, err := runCLI(t, "purge")
	assert.Error(t, err)

	out, err := runCLI(t, "purge", "--query", "pie")
	require.NoError(t, err)
	assert.Contains(t, out, "Purged 2 cached recipes")

	out, err = runCLI(t, "purge", "--category", "salad")
	require.NoError(t, err)
	assert.Contains(t, out, "Purged 1 cached recipes")

	_, err = runCLI(t, "purge", "--category", "all")
	assert.ErrorContains(t, err, "unknown category")
}

func TestStatus(t *testing.T) {
	home := setupCLI(t, &stubRemote{}, false)
	seed(t, home, models.Recipe{ID: 1, Title: "x", FetchedAt: time.Now().Add(-2 * time.Hour)})

	out, err := runCLI(t, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "PANTRY STATUS")
	assert.Contains(t, out, "offline")
	assert.Contains(t, out, "1 recipes")
	assert.Contains(t, out, "0/1")
	assert.Contains(t, out, "2 hours ago")
	assert.Contains(t, out, "Version:")
}

func TestConfigCommand_RedactsKey(t *testing.T) {
	setupCLI(t, &stubRemote{}, false)

	out, err := runCLI(t, "config")
	require.NoError(t, err)
	assert.Contains(t, out, "page_size = 20")
	assert.NotContains(t, out, "test-key")
}

func TestMetricsFileFlag(t *testing.T) {
	home := setupCLI(t, &stubRemote{}, false)
	path := filepath.Join(home, "pantry.prom")

	_, err := runCLI(t, "list", "--metrics-file", path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "pantry_pages_loaded_total")
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&paging.Error{Kind: paging.KindRateLimited}, "rate_limited"},
		{repository.ErrRecipeNotFound, "not_found_error"},
		{paging.ErrInvalidRequest, "validation_error"},
		{errors.New("load config: bad toml"), "config_error"},
		{errors.New("initialize database: locked"), "database_error"},
		{errors.New("connection reset"), "network_error"},
		{errors.New("boom"), "unknown_error"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, classifyError(tt.err), tt.err.Error())
	}
}

func TestFormatTimeSince(t *testing.T) {
	now := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	assert.Equal(t, "just now", formatTimeSince(now.Add(-10*time.Second), now))
	assert.Equal(t, "1 minute ago", formatTimeSince(now.Add(-time.Minute), now))
	assert.Equal(t, "5 hours ago", formatTimeSince(now.Add(-5*time.Hour), now))
	assert.Equal(t, "2 days ago", formatTimeSince(now.Add(-48*time.Hour), now))
	assert.Equal(t, "2024-01-01", formatTimeSince(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), now))
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", formatBytes(512))
	assert.Equal(t, "1.5 KiB", formatBytes(1536))
	assert.Equal(t, "2.0 MiB", formatBytes(2*1024*1024))
}
