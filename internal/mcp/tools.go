package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// Tool definitions for the Pantry MCP server.

func pageOption() mcp.ToolOption {
	return mcp.WithNumber("page",
		mcp.Description("Page index in page-size units starting at 0 (default: 0). Page 0 may hold several pages' worth of recipes, so always continue with the returned next value."),
	)
}

// listTool returns the pantry_list tool definition.
func listTool() mcp.Tool {
	return mcp.NewTool("pantry_list",
		mcp.WithDescription("List one page of all recipes. Online pages come from Spoonacular and are cached; offline pages come from the cache, freshest first."),
		pageOption(),
	)
}

// searchTool returns the pantry_search tool definition.
func searchTool() mcp.Tool {
	return mcp.NewTool("pantry_search",
		mcp.WithDescription("Search recipes by text. Offline, the query is matched against cached recipe titles."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Free-text search query"),
		),
		pageOption(),
	)
}

// categoryTool returns the pantry_category tool definition.
func categoryTool() mcp.Tool {
	return mcp.NewTool("pantry_category",
		mcp.WithDescription("List recipes of one dish-type category such as dessert, soup or main_course."),
		mcp.WithString("category",
			mcp.Required(),
			mcp.Description("Category id or dish type (e.g. dessert, main_course, \"main course\")"),
		),
		pageOption(),
	)
}

// getRecipeTool returns the pantry_get_recipe tool definition.
func getRecipeTool() mcp.Tool {
	return mcp.NewTool("pantry_get_recipe",
		mcp.WithDescription("Get a recipe from the local cache by id. Never contacts the network."),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("Recipe id"),
		),
	)
}

// pinTool returns the pantry_pin tool definition.
func pinTool() mcp.Tool {
	return mcp.NewTool("pantry_pin",
		mcp.WithDescription("Pin or unpin a cached recipe. Pinned recipes survive cache eviction."),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("Recipe id"),
		),
		mcp.WithBoolean("pinned",
			mcp.Description("true to pin, false to unpin (default: true)"),
		),
	)
}

// statusTool returns the pantry_status tool definition.
func statusTool() mcp.Tool {
	return mcp.NewTool("pantry_status",
		mcp.WithDescription("Report connectivity and cache statistics."),
	)
}
