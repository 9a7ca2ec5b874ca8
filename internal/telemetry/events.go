package telemetry

import (
	"runtime"

	"github.com/asteroid-belt/pantry/pkg/version"
)

// Event names - lifecycle and CLI
const (
	EventAppStarted         = "app_started"
	EventAppExited          = "app_exited"
	EventCLICommandExecuted = "cli_command_executed"
	EventCLIErrorOccurred   = "cli_error_occurred"
	EventCLIHelpViewed      = "cli_help_viewed"
)

// Event names - feeds and recipes
const (
	EventFeedLoaded       = "feed_loaded"
	EventSearchPerformed  = "search_performed"
	EventCategorySelected = "category_selected"
	EventCategoriesListed = "categories_listed"
	EventRecipeViewed     = "recipe_viewed"
	EventRecipeCopied     = "recipe_copied"
	EventRecipePinned     = "recipe_pinned"
	EventRecipeUnpinned   = "recipe_unpinned"
	EventPinnedListed     = "pinned_listed"
	EventCachePruned      = "cache_pruned"
	EventCachePurged      = "cache_purged"
	EventStatusViewed     = "status_viewed"
	EventMCPToolCalled    = "mcp_tool_called"
)

// baseProperties returns common properties for all events.
func baseProperties() map[string]interface{} {
	return map[string]interface{}{
		"os":         runtime.GOOS,
		"arch":       runtime.GOARCH,
		"version":    version.Version,
		"prerelease": version.IsPrerelease(),
		"dev_build":  version.IsDevBuild(),
	}
}

// TrackAppStarted tracks application startup.
func (c *posthogClient) TrackAppStarted(mode string, cachedRecipes int64, offline bool) {
	props := baseProperties()
	props["mode"] = mode
	props["cached_recipes"] = cachedRecipes
	props["offline"] = offline
	c.Track(EventAppStarted, props)
}

// TrackAppExited tracks application exit.
func (c *posthogClient) TrackAppExited(mode string, sessionDurationMs int64, commandsRun int) {
	props := baseProperties()
	props["mode"] = mode
	props["session_duration_ms"] = sessionDurationMs
	props["commands_run"] = commandsRun
	c.Track(EventAppExited, props)
}

// TrackCLICommandExecuted tracks CLI command execution.
func (c *posthogClient) TrackCLICommandExecuted(commandName string, hasFlags bool, durationMs int64) {
	props := baseProperties()
	props["command_name"] = commandName
	props["has_flags"] = hasFlags
	props["execution_duration_ms"] = durationMs
	c.Track(EventCLICommandExecuted, props)
}

// TrackCLIError tracks CLI errors.
func (c *posthogClient) TrackCLIError(commandName, errorType string) {
	props := baseProperties()
	props["command_name"] = commandName
	props["error_type"] = errorType
	c.Track(EventCLIErrorOccurred, props)
}

// TrackCLIHelpViewed tracks help output.
func (c *posthogClient) TrackCLIHelpViewed(commandName string, cliArgs []string) {
	props := baseProperties()
	props["command_name"] = commandName
	props["arg_count"] = len(cliArgs)
	c.Track(EventCLIHelpViewed, props)
}

// TrackFeedLoaded tracks a page served to the user.
func (c *posthogClient) TrackFeedLoaded(loadType, source string, pageIndex, recordCount int) {
	props := baseProperties()
	props["load_type"] = loadType
	props["source"] = source
	props["page_index"] = pageIndex
	props["record_count"] = recordCount
	c.Track(EventFeedLoaded, props)
}

// TrackSearchPerformed tracks searches. The query text itself is never sent.
func (c *posthogClient) TrackSearchPerformed(queryLength, resultCount int, offline bool) {
	props := baseProperties()
	props["query_length"] = queryLength
	props["result_count"] = resultCount
	props["offline"] = offline
	c.Track(EventSearchPerformed, props)
}

// TrackCategorySelected tracks category browsing.
func (c *posthogClient) TrackCategorySelected(tag string) {
	props := baseProperties()
	props["category"] = tag
	c.Track(EventCategorySelected, props)
}

// TrackCategoriesListed tracks the category list command.
func (c *posthogClient) TrackCategoriesListed(count int) {
	props := baseProperties()
	props["category_count"] = count
	c.Track(EventCategoriesListed, props)
}

// TrackRecipeViewed tracks recipe detail views.
func (c *posthogClient) TrackRecipeViewed(hasSummary bool) {
	props := baseProperties()
	props["has_summary"] = hasSummary
	c.Track(EventRecipeViewed, props)
}

// TrackRecipeCopied tracks source URLs copied to the clipboard.
func (c *posthogClient) TrackRecipeCopied() {
	c.Track(EventRecipeCopied, baseProperties())
}

// TrackRecipePinned tracks pin and unpin.
func (c *posthogClient) TrackRecipePinned(pinned bool) {
	if pinned {
		c.Track(EventRecipePinned, baseProperties())
		return
	}
	c.Track(EventRecipeUnpinned, baseProperties())
}

// TrackPinnedListed tracks the pinned list command.
func (c *posthogClient) TrackPinnedListed(count int) {
	props := baseProperties()
	props["pinned_count"] = count
	c.Track(EventPinnedListed, props)
}

// TrackCachePruned tracks manual eviction.
func (c *posthogClient) TrackCachePruned(deleted int64) {
	props := baseProperties()
	props["deleted_count"] = deleted
	c.Track(EventCachePruned, props)
}

// TrackCachePurged tracks scoped purges. scope is "query" or "category".
func (c *posthogClient) TrackCachePurged(scope string, deleted int64) {
	props := baseProperties()
	props["scope"] = scope
	props["deleted_count"] = deleted
	c.Track(EventCachePurged, props)
}

// TrackStatusViewed tracks the status command.
func (c *posthogClient) TrackStatusViewed(totalRecipes, pinnedRecipes int64) {
	props := baseProperties()
	props["total_recipes"] = totalRecipes
	props["pinned_recipes"] = pinnedRecipes
	c.Track(EventStatusViewed, props)
}

// TrackMCPToolCalled tracks MCP tool invocations.
func (c *posthogClient) TrackMCPToolCalled(toolName string, durationMs int64, success bool) {
	props := baseProperties()
	props["tool_name"] = toolName
	props["duration_ms"] = durationMs
	props["success"] = success
	c.Track(EventMCPToolCalled, props)
}

// --- noopClient implementations (no-ops) ---

func (c *noopClient) TrackAppStarted(mode string, cachedRecipes int64, offline bool)              {}
func (c *noopClient) TrackAppExited(mode string, sessionDurationMs int64, commandsRun int)        {}
func (c *noopClient) TrackCLICommandExecuted(commandName string, hasFlags bool, durationMs int64) {}
func (c *noopClient) TrackCLIError(commandName, errorType string)                                 {}
func (c *noopClient) TrackCLIHelpViewed(commandName string, cliArgs []string)                     {}
func (c *noopClient) TrackFeedLoaded(loadType, source string, pageIndex, recordCount int)         {}
func (c *noopClient) TrackSearchPerformed(queryLength, resultCount int, offline bool)             {}
func (c *noopClient) TrackCategorySelected(tag string)                                            {}
func (c *noopClient) TrackCategoriesListed(count int)                                             {}
func (c *noopClient) TrackRecipeViewed(hasSummary bool)                                           {}
func (c *noopClient) TrackRecipeCopied()                                                          {}
func (c *noopClient) TrackRecipePinned(pinned bool)                                               {}
func (c *noopClient) TrackPinnedListed(count int)                                                 {}
func (c *noopClient) TrackCachePruned(deleted int64)                                              {}
func (c *noopClient) TrackCachePurged(scope string, deleted int64)                                {}
func (c *noopClient) TrackStatusViewed(totalRecipes, pinnedRecipes int64)                         {}
func (c *noopClient) TrackMCPToolCalled(toolName string, durationMs int64, success bool)          {}
