package db

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/asteroid-belt/pantry/internal/models"
)

// GetUserState retrieves the current application state.
func (db *DB) GetUserState() (*models.UserState, error) {
	var state models.UserState
	err := db.Where("id = ?", models.UserStateID).First(&state).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return &models.UserState{ID: models.UserStateID}, nil
		}
		return nil, err
	}
	return &state, nil
}

// SaveSelection persists the last selected category.
func (db *DB) SaveSelection(sel models.Selection) error {
	state := models.UserState{
		ID:             models.UserStateID,
		LastCategoryID: sel.Selected().ID,
	}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"last_category_id", "updated_at"}),
	}).Create(&state).Error
}

// MarkTelemetryNoticed records that the telemetry notice was shown.
func (db *DB) MarkTelemetryNoticed() error {
	state := models.UserState{
		ID:               models.UserStateID,
		TelemetryNoticed: true,
	}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"telemetry_noticed", "updated_at"}),
	}).Create(&state).Error
}

// RecordCacheVersion stores the version of the build writing the cache.
func (db *DB) RecordCacheVersion(v string) error {
	state := models.UserState{
		ID:           models.UserStateID,
		CacheVersion: v,
	}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"cache_version", "updated_at"}),
	}).Create(&state).Error
}

// GetOrCreateTrackingID returns the persistent tracking ID, creating one if it doesn't exist.
// On any error, it falls back to generating a per-session ID.
func (db *DB) GetOrCreateTrackingID() string {
	state, err := db.GetUserState()
	if err != nil {
		return generateSessionID()
	}

	if state.TrackingID != "" {
		return state.TrackingID
	}

	trackingID := generateSessionID()

	state.TrackingID = trackingID
	err = db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"tracking_id", "updated_at"}),
	}).Create(state).Error
	if err != nil {
		// Even if save fails, return the generated ID for this session
		return trackingID
	}

	return trackingID
}

// generateSessionID creates a new UUID for session-based tracking.
func generateSessionID() string {
	return uuid.New().String()
}
