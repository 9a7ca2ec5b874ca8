// Package models defines the core data structures for Pantry.
package models

import (
	"time"
)

// UntitledRecipe is stored when the remote catalog omits a title.
const UntitledRecipe = "No Title"

// Recipe is a cached recipe row. ID is the remote identifier and the primary key.
type Recipe struct {
	ID int64 `gorm:"primaryKey;autoIncrement:false" json:"id"`

	// Content
	Title          string   `gorm:"size:500;index" json:"title"`
	Image          *string  `gorm:"size:1000" json:"image,omitempty"`
	Summary        *string  `gorm:"type:text" json:"summary,omitempty"` // HTML from the remote catalog
	ReadyInMinutes int      `gorm:"default:0" json:"ready_in_minutes"`
	Servings       int      `gorm:"default:0" json:"servings"`
	SourceURL      *string  `gorm:"size:1000" json:"source_url,omitempty"`
	DishTypes      []string `gorm:"type:text;serializer:json" json:"dish_types"`

	// Local state, never written by a remote refresh
	IsPinned bool `gorm:"default:false;index" json:"is_pinned"`

	// Provenance
	FetchedAt   time.Time `gorm:"index" json:"fetched_at"`
	Page        int       `gorm:"default:0" json:"page"`
	SearchQuery *string   `gorm:"size:255;index" json:"search_query,omitempty"`
	CategoryTag *string   `gorm:"size:100;index" json:"category_tag,omitempty"`
}

// TableName specifies the table name for GORM.
func (Recipe) TableName() string {
	return "recipes"
}

// HasDishType reports whether tag is one of the recipe's dish types.
func (r *Recipe) HasDishType(tag string) bool {
	for _, t := range r.DishTypes {
		if t == tag {
			return true
		}
	}
	return false
}

// StringPtr returns nil for an empty string, otherwise a pointer to s.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns the pointed-to string or "" for nil.
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// RecipeStats provides aggregate statistics about the cache.
type RecipeStats struct {
	TotalRecipes   int64     `json:"total_recipes"`
	PinnedRecipes  int64     `json:"pinned_recipes"`
	OldestFetch    time.Time `json:"oldest_fetch"`
	NewestFetch    time.Time `json:"newest_fetch"`
	CacheSizeBytes int64     `json:"cache_size_bytes"`
}
