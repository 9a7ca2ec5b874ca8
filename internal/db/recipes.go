package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/asteroid-belt/pantry/internal/models"
)

// recipeOrder is the cache read order: freshest first, ties broken by ID.
const recipeOrder = "fetched_at DESC, id ASC"

// upsertBatchSize bounds the rows per INSERT statement.
const upsertBatchSize = 100

// remoteColumns are the columns a remote refresh may overwrite.
// is_pinned is local state and is never part of this list.
var remoteColumns = []string{
	"title", "image", "summary",
	"ready_in_minutes", "servings", "source_url", "dish_types",
	"fetched_at", "page", "search_query", "category_tag",
}

// UpsertRecipes creates or replaces recipes by ID in one transaction.
// Only remote fields and provenance are updated on conflict; the pinned
// flag of an existing row is preserved. A zero FetchedAt is stamped with
// the current time.
func (db *DB) UpsertRecipes(ctx context.Context, recipes []models.Recipe) error {
	if len(recipes) == 0 {
		return nil
	}

	batch := make([]models.Recipe, len(recipes))
	copy(batch, recipes)
	now := time.Now()
	for i := range batch {
		if batch[i].FetchedAt.IsZero() {
			batch[i].FetchedAt = now
		}
		// Timestamps are compared as text; keep a single zone.
		batch[i].FetchedAt = batch[i].FetchedAt.UTC()
	}

	return db.Transaction(ctx, func(tx *DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns(remoteColumns),
		}).CreateInBatches(&batch, upsertBatchSize).Error
		if err != nil {
			return fmt.Errorf("upsert recipes: %w", err)
		}
		return nil
	})
}

// GetRecipe retrieves a cached recipe by ID. It returns nil, nil when absent.
func (db *DB) GetRecipe(ctx context.Context, id int64) (*models.Recipe, error) {
	var recipe models.Recipe
	err := db.WithContext(ctx).First(&recipe, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &recipe, nil
}

// QueryAll returns every cached recipe, freshest first.
func (db *DB) QueryAll(ctx context.Context) ([]models.Recipe, error) {
	var recipes []models.Recipe
	err := db.WithContext(ctx).Order(recipeOrder).Find(&recipes).Error
	return recipes, err
}

// QueryByText returns recipes whose title contains text, ignoring case.
func (db *DB) QueryByText(ctx context.Context, text string) ([]models.Recipe, error) {
	var recipes []models.Recipe
	pattern := "%" + escapeLike(strings.ToLower(text)) + "%"
	err := db.WithContext(ctx).
		Where(`LOWER(title) LIKE ? ESCAPE '\'`, pattern).
		Order(recipeOrder).
		Find(&recipes).Error
	return recipes, err
}

// QueryByCategory returns recipes carrying tag as a dish type, or fetched
// under that category filter.
func (db *DB) QueryByCategory(ctx context.Context, tag string) ([]models.Recipe, error) {
	var recipes []models.Recipe
	err := db.WithContext(ctx).
		Where(`category_tag = ? OR EXISTS (
			SELECT 1 FROM json_each(CASE WHEN json_valid(recipes.dish_types) THEN recipes.dish_types ELSE '[]' END)
			WHERE json_each.value = ?)`, tag, tag).
		Order(recipeOrder).
		Find(&recipes).Error
	return recipes, err
}

// DeleteOlderThan removes unpinned recipes fetched before t.
func (db *DB) DeleteOlderThan(ctx context.Context, t time.Time) (int64, error) {
	result := db.WithContext(ctx).
		Where("fetched_at < ? AND is_pinned = ?", t.UTC(), false).
		Delete(&models.Recipe{})
	return result.RowsAffected, result.Error
}

// DeleteByQuery removes unpinned recipes fetched for a search query.
func (db *DB) DeleteByQuery(ctx context.Context, query string) (int64, error) {
	result := db.WithContext(ctx).
		Where("search_query = ? AND is_pinned = ?", query, false).
		Delete(&models.Recipe{})
	return result.RowsAffected, result.Error
}

// DeleteByCategory removes unpinned recipes fetched for a category tag.
func (db *DB) DeleteByCategory(ctx context.Context, tag string) (int64, error) {
	result := db.WithContext(ctx).
		Where("category_tag = ? AND is_pinned = ?", tag, false).
		Delete(&models.Recipe{})
	return result.RowsAffected, result.Error
}

// SetPinned flips the pinned flag. It reports false when no such recipe exists.
func (db *DB) SetPinned(ctx context.Context, id int64, pinned bool) (bool, error) {
	result := db.WithContext(ctx).
		Model(&models.Recipe{}).
		Where("id = ?", id).
		Update("is_pinned", pinned)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ListPinned returns pinned recipes, freshest first.
func (db *DB) ListPinned(ctx context.Context) ([]models.Recipe, error) {
	var recipes []models.Recipe
	err := db.WithContext(ctx).
		Where("is_pinned = ?", true).
		Order(recipeOrder).
		Find(&recipes).Error
	return recipes, err
}

// escapeLike escapes LIKE wildcards so text matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
