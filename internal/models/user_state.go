package models

import (
	"time"
)

// UserStateID is the primary key of the single user_state row.
const UserStateID = "default"

// UserState holds per-installation application state.
// Note: The table name is "user_state" to avoid conflicts with reserved keywords.
type UserState struct {
	ID               string    `gorm:"primaryKey;size:64" json:"id"`
	TrackingID       string    `gorm:"size:64" json:"tracking_id"`
	LastCategoryID   string    `gorm:"size:50" json:"last_category_id"`
	TelemetryNoticed bool      `gorm:"default:false" json:"telemetry_noticed"`
	CacheVersion     string    `gorm:"size:64" json:"cache_version"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (UserState) TableName() string {
	return "user_state"
}

// Selection returns the persisted category selection.
func (s *UserState) Selection() Selection {
	return Selection{CategoryID: s.LastCategoryID}
}
