package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/asteroid-belt/pantry/internal/models"
	"github.com/asteroid-belt/pantry/internal/paging"
	"github.com/asteroid-belt/pantry/internal/render"
	"github.com/asteroid-belt/pantry/internal/repository"
)

// RecipeResponse represents a recipe in MCP tool responses.
type RecipeResponse struct {
	ID             int64     `json:"id"`
	Title          string    `json:"title"`
	Summary        string    `json:"summary,omitempty"`
	Image          string    `json:"image,omitempty"`
	ReadyInMinutes int       `json:"ready_in_minutes,omitempty"`
	Servings       int       `json:"servings,omitempty"`
	SourceURL      string    `json:"source_url,omitempty"`
	DishTypes      []string  `json:"dish_types,omitempty"`
	Pinned         bool      `json:"pinned"`
	FetchedAt      time.Time `json:"fetched_at"`
}

// PageResponse is one page of a feed.
type PageResponse struct {
	Feed    string           `json:"feed"`
	Source  string           `json:"source"`
	Page    int              `json:"page"`
	Prev    *int             `json:"prev,omitempty"`
	Next    *int             `json:"next,omitempty"`
	Recipes []RecipeResponse `json:"recipes"`
}

// StatusResponse reports connectivity and cache statistics.
type StatusResponse struct {
	Online         bool       `json:"online"`
	TotalRecipes   int64      `json:"total_recipes"`
	PinnedRecipes  int64      `json:"pinned_recipes"`
	CacheSizeBytes int64      `json:"cache_size_bytes"`
	OldestFetch    *time.Time `json:"oldest_fetch,omitempty"`
	NewestFetch    *time.Time `json:"newest_fetch,omitempty"`
	RetentionHours int        `json:"retention_hours"`
	ActiveFeed     string     `json:"active_feed"`
	QuotaReached   bool       `json:"quota_reached"`
	LastError      string     `json:"last_error,omitempty"`
}

// PinResult is the result of a pin or unpin.
type PinResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// toRecipeResponse converts a cached recipe. Summaries are reduced to plain text.
func toRecipeResponse(r *models.Recipe) RecipeResponse {
	return RecipeResponse{
		ID:             r.ID,
		Title:          r.Title,
		Summary:        render.PlainText(models.Deref(r.Summary)),
		Image:          models.Deref(r.Image),
		ReadyInMinutes: r.ReadyInMinutes,
		Servings:       r.Servings,
		SourceURL:      models.Deref(r.SourceURL),
		DishTypes:      r.DishTypes,
		Pinned:         r.IsPinned,
		FetchedAt:      r.FetchedAt,
	}
}

// parsePage extracts the page index. Missing or negative values mean 0.
func parsePage(arguments map[string]interface{}) int {
	if p, ok := arguments["page"].(float64); ok && p > 0 {
		return int(p)
	}
	return 0
}

// parseID extracts a positive recipe id given as a number or numeric string.
func parseID(arguments map[string]interface{}) (int64, error) {
	switch v := arguments["id"].(type) {
	case float64:
		if v > 0 && v == math.Trunc(v) {
			return int64(v), nil
		}
	case string:
		if id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil && id > 0 {
			return id, nil
		}
	}
	return 0, errors.New("id parameter must be a positive integer")
}

// trackToolCall is a helper to track MCP tool invocations.
func (s *Server) trackToolCall(toolName string, start time.Time, success bool) {
	if s.telemetry != nil {
		durationMs := time.Since(start).Milliseconds()
		s.telemetry.TrackMCPToolCalled(toolName, durationMs, success)
	}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal results: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// loadFeed serves one page of the browser's active stream as a tool result.
func (s *Server) loadFeed(ctx context.Context, tool string, stream *repository.Stream, page int) (*mcp.CallToolResult, error) {
	start := time.Now()
	lt := stream.LoadType()

	p, err := stream.Load(ctx, page)
	if err != nil {
		s.trackToolCall(tool, start, false)
		return mcp.NewToolResultError(fmt.Sprintf("load failed (%s): %v", paging.KindOf(err), err)), nil
	}

	if p.Source == paging.SourceCache {
		s.app.RecheckSoon()
	}

	resp := PageResponse{
		Feed:    lt.String(),
		Source:  string(p.Source),
		Page:    page,
		Prev:    p.Prev,
		Next:    p.Next,
		Recipes: make([]RecipeResponse, 0, len(p.Records)),
	}
	for i := range p.Records {
		resp.Recipes = append(resp.Recipes, toRecipeResponse(&p.Records[i]))
	}

	if s.telemetry != nil {
		s.telemetry.TrackFeedLoaded(lt.Variant().String(), resp.Source, page, len(resp.Recipes))
	}
	s.trackToolCall(tool, start, true)
	return jsonResult(resp)
}

func (s *Server) handleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.loadFeed(ctx, "pantry_list", s.browser.SelectCategory(models.Categories[0]), parsePage(req.Params.Arguments))
}

func (s *Server) handleSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, _ := req.Params.Arguments["query"].(string)
	if strings.TrimSpace(query) == "" {
		s.trackToolCall("pantry_search", time.Now(), false)
		return mcp.NewToolResultError("query parameter is required"), nil
	}
	return s.loadFeed(ctx, "pantry_search", s.browser.SetSearchQuery(query), parsePage(req.Params.Arguments))
}

func (s *Server) handleCategory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key, _ := req.Params.Arguments["category"].(string)
	c, ok := models.FindCategory(strings.TrimSpace(key))
	if !ok {
		s.trackToolCall("pantry_category", time.Now(), false)
		ids := make([]string, len(models.Categories))
		for i, cat := range models.Categories {
			ids[i] = cat.ID
		}
		return mcp.NewToolResultError(fmt.Sprintf("unknown category %q; valid: %s", key, strings.Join(ids, ", "))), nil
	}
	return s.loadFeed(ctx, "pantry_category", s.browser.SelectCategory(c), parsePage(req.Params.Arguments))
}

func (s *Server) handleGetRecipe(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start := time.Now()

	id, err := parseID(req.Params.Arguments)
	if err != nil {
		s.trackToolCall("pantry_get_recipe", start, false)
		return mcp.NewToolResultError(err.Error()), nil
	}

	recipe, err := s.app.Repo.Get(ctx, id)
	if err != nil {
		s.trackToolCall("pantry_get_recipe", start, false)
		if errors.Is(err, repository.ErrRecipeNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("recipe %d is not cached", id)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("failed to get recipe: %v", err)), nil
	}

	s.trackToolCall("pantry_get_recipe", start, true)
	return jsonResult(toRecipeResponse(recipe))
}

func (s *Server) handlePin(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start := time.Now()

	id, err := parseID(req.Params.Arguments)
	if err != nil {
		s.trackToolCall("pantry_pin", start, false)
		return mcp.NewToolResultError(err.Error()), nil
	}
	pinned := true
	if v, ok := req.Params.Arguments["pinned"].(bool); ok {
		pinned = v
	}

	if err := s.app.Repo.SetPinned(ctx, id, pinned); err != nil {
		s.trackToolCall("pantry_pin", start, false)
		if errors.Is(err, repository.ErrRecipeNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("recipe %d is not cached", id)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("failed to update pin: %v", err)), nil
	}

	if s.telemetry != nil {
		s.telemetry.TrackRecipePinned(pinned)
	}
	s.trackToolCall("pantry_pin", start, true)

	msg := fmt.Sprintf("Pinned recipe %d", id)
	if !pinned {
		msg = fmt.Sprintf("Unpinned recipe %d", id)
	}
	return jsonResult(PinResult{Success: true, Message: msg})
}

func (s *Server) handleStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start := time.Now()

	stats, err := s.app.DB.GetStats(ctx)
	if err != nil {
		s.trackToolCall("pantry_status", start, false)
		return mcp.NewToolResultError(fmt.Sprintf("failed to read cache stats: %v", err)), nil
	}

	resp := StatusResponse{
		Online:         s.app.Recheck(ctx),
		TotalRecipes:   stats.TotalRecipes,
		PinnedRecipes:  stats.PinnedRecipes,
		CacheSizeBytes: stats.CacheSizeBytes,
		RetentionHours: s.app.Config.Cache.RetentionHours,
		ActiveFeed:     s.browser.LoadType().Get().String(),
		QuotaReached:   s.browser.QuotaReached().Get(),
		LastError:      s.browser.LastError().Get(),
	}
	if !stats.OldestFetch.IsZero() {
		resp.OldestFetch = &stats.OldestFetch
		resp.NewestFetch = &stats.NewestFetch
	}

	if s.telemetry != nil {
		s.telemetry.TrackStatusViewed(stats.TotalRecipes, stats.PinnedRecipes)
	}
	s.trackToolCall("pantry_status", start, true)
	return jsonResult(resp)
}
