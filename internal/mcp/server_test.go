package mcp

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asteroid-belt/pantry/internal/app"
	"github.com/asteroid-belt/pantry/internal/config"
	"github.com/asteroid-belt/pantry/internal/models"
	"github.com/asteroid-belt/pantry/internal/network"
	"github.com/asteroid-belt/pantry/internal/spoonacular"
	"github.com/asteroid-belt/pantry/internal/telemetry"
)

// mockTelemetryClient records Track calls.
type mockTelemetryClient struct {
	mu     sync.Mutex
	events []mockEvent
}

type mockEvent struct {
	name       string
	properties map[string]interface{}
}

func (m *mockTelemetryClient) Track(event string, properties map[string]interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, mockEvent{name: event, properties: properties})
}

func (m *mockTelemetryClient) Close()                {}
func (m *mockTelemetryClient) GetTrackingID() string { return "test-tracking-id" }

func (m *mockTelemetryClient) TrackAppStarted(mode string, cachedRecipes int64, offline bool)       {}
func (m *mockTelemetryClient) TrackAppExited(mode string, sessionDurationMs int64, commandsRun int) {}
func (m *mockTelemetryClient) TrackCLICommandExecuted(commandName string, hasFlags bool, durationMs int64) {
}
func (m *mockTelemetryClient) TrackCLIError(commandName, errorType string)             {}
func (m *mockTelemetryClient) TrackCLIHelpViewed(commandName string, cliArgs []string) {}
func (m *mockTelemetryClient) TrackFeedLoaded(loadType, source string, pageIndex, recordCount int) {
	m.Track(telemetry.EventFeedLoaded, map[string]interface{}{"load_type": loadType, "source": source})
}
func (m *mockTelemetryClient) TrackSearchPerformed(queryLength, resultCount int, offline bool) {}
func (m *mockTelemetryClient) TrackCategorySelected(tag string)                                {}
func (m *mockTelemetryClient) TrackCategoriesListed(count int)                                 {}
func (m *mockTelemetryClient) TrackRecipeViewed(hasSummary bool)                               {}
func (m *mockTelemetryClient) TrackRecipeCopied()                                              {}
func (m *mockTelemetryClient) TrackRecipePinned(pinned bool) {
	m.Track(telemetry.EventRecipePinned, map[string]interface{}{"pinned": pinned})
}
func (m *mockTelemetryClient) TrackPinnedListed(count int)                         {}
func (m *mockTelemetryClient) TrackCachePruned(deleted int64)                      {}
func (m *mockTelemetryClient) TrackCachePurged(scope string, deleted int64)        {}
func (m *mockTelemetryClient) TrackStatusViewed(totalRecipes, pinnedRecipes int64) {}
func (m *mockTelemetryClient) TrackMCPToolCalled(toolName string, durationMs int64, success bool) {
	m.Track(telemetry.EventMCPToolCalled, map[string]interface{}{"tool_name": toolName, "success": success})
}

func (m *mockTelemetryClient) getEvents() []mockEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	events := make([]mockEvent, len(m.events))
	copy(events, m.events)
	return events
}

// toolCalls returns tool name to success for every mcp_tool_called event.
func (m *mockTelemetryClient) toolCalls() map[string]bool {
	calls := make(map[string]bool)
	for _, e := range m.getEvents() {
		if e.name == telemetry.EventMCPToolCalled {
			calls[e.properties["tool_name"].(string)] = e.properties["success"].(bool)
		}
	}
	return calls
}

type stubRemote struct {
	mu      sync.Mutex
	results []spoonacular.RawRecipe
	err     error
	params  []spoonacular.SearchParams
}

func (r *stubRemote) Search(_ context.Context, p spoonacular.SearchParams) (*spoonacular.SearchResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.params = append(r.params, p)
	if r.err != nil {
		return nil, r.err
	}
	return &spoonacular.SearchResponse{Results: r.results}, nil
}

// setupTestServer opens an App in a temp dir and wraps it in a Server.
func setupTestServer(t *testing.T, remote *stubRemote, online bool) (*Server, *mockTelemetryClient) {
	t.Helper()
	return setupTestServerWithProber(t, remote, network.Static(online))
}

func setupTestServerWithProber(t *testing.T, remote *stubRemote, prober network.Prober) (*Server, *mockTelemetryClient) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.BaseDir = t.TempDir()
	cfg.Paging.PageSize = 2
	cfg.Paging.InitialLoadSize = 2

	a, err := app.Open(context.Background(), cfg, app.Options{
		Remote: remote,
		Prober: prober,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	tc := &mockTelemetryClient{}
	return NewServer(a, tc), tc
}

func seedRecipes(t *testing.T, s *Server, recipes ...models.Recipe) {
	t.Helper()
	require.NoError(t, s.app.DB.UpsertRecipes(context.Background(), recipes))
}

func TestNewServer(t *testing.T) {
	s, _ := setupTestServer(t, &stubRemote{}, false)

	assert.NotNil(t, s.server)
	assert.NotNil(t, s.app)
}

func TestNewServer_NilTelemetry(t *testing.T) {
	s, _ := setupTestServer(t, &stubRemote{}, false)
	s.telemetry = nil

	// Handlers must not panic without telemetry.
	res, err := s.handleStatus(context.Background(), callRequest(nil))
	require.NoError(t, err)
	assert.False(t, res.IsError)
}
