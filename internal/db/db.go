// Package db provides a GORM-based database layer for Pantry.
// It uses the pure-Go SQLite driver and doubles as the paging engine's
// local recipe cache.
package db

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/asteroid-belt/pantry/internal/models"
)

// DB wraps the GORM database connection with Pantry-specific operations.
type DB struct {
	*gorm.DB
	path string
}

// Config holds database configuration options.
type Config struct {
	Path        string
	Debug       bool
	MaxIdleConn int
	MaxOpenConn int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig(path string) Config {
	return Config{
		Path:        path,
		Debug:       false,
		MaxIdleConn: 1,
		MaxOpenConn: 1,
	}
}

// New creates a new database connection and runs migrations.
func New(cfg Config) (*DB, error) {
	dir := filepath.Dir(cfg.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	logLevel := logger.Silent
	if cfg.Debug {
		logLevel = logger.Info
	}

	// DELETE journal mode: WAL has visibility issues with the pure-Go driver.
	dsn := fmt.Sprintf("%s?_pragma=journal_mode(DELETE)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)", cfg.Path)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 logger.Default.LogMode(logLevel),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConn)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConn)
	sqlDB.SetConnMaxLifetime(time.Hour)

	wrapped := &DB{DB: db, path: cfg.Path}

	if err := wrapped.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	if err := wrapped.seedUserState(); err != nil {
		return nil, fmt.Errorf("seed user state: %w", err)
	}

	return wrapped, nil
}

// migrate runs GORM auto-migrations for all models.
func (db *DB) migrate() error {
	return db.AutoMigrate(
		&models.Recipe{},
		&models.UserState{},
	)
}

// seedUserState inserts the default state row if not present.
func (db *DB) seedUserState() error {
	state := models.UserState{ID: models.UserStateID}
	return db.Where("id = ?", models.UserStateID).FirstOrCreate(&state).Error
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}

// Close closes the database connection.
func (db *DB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Transaction executes a function within a database transaction.
// The callback receives a *DB wrapper that uses the transaction.
// If the callback returns an error, the transaction is rolled back.
func (d *DB) Transaction(ctx context.Context, fc func(tx *DB) error) error {
	return d.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fc(&DB{DB: tx, path: d.path})
	})
}

// GetStats returns aggregate statistics about the recipe cache.
func (db *DB) GetStats(ctx context.Context) (*models.RecipeStats, error) {
	var stats models.RecipeStats
	q := db.WithContext(ctx)

	if err := q.Model(&models.Recipe{}).Count(&stats.TotalRecipes).Error; err != nil {
		return nil, fmt.Errorf("count recipes: %w", err)
	}

	if err := q.Model(&models.Recipe{}).Where("is_pinned = ?", true).Count(&stats.PinnedRecipes).Error; err != nil {
		return nil, fmt.Errorf("count pinned recipes: %w", err)
	}

	if stats.TotalRecipes > 0 {
		var oldest, newest models.Recipe
		if err := q.Order("fetched_at ASC").First(&oldest).Error; err != nil {
			return nil, fmt.Errorf("oldest fetch: %w", err)
		}
		if err := q.Order("fetched_at DESC").First(&newest).Error; err != nil {
			return nil, fmt.Errorf("newest fetch: %w", err)
		}
		stats.OldestFetch = oldest.FetchedAt
		stats.NewestFetch = newest.FetchedAt
	}

	if info, err := os.Stat(db.path); err == nil {
		stats.CacheSizeBytes = info.Size()
	}

	return &stats, nil
}
