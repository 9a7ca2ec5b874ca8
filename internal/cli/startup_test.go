package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asteroid-belt/pantry/internal/db"
	"github.com/asteroid-belt/pantry/internal/telemetry"
)

// setupTestDB creates a temporary test database for startup tests.
func setupTestDB(t *testing.T) *db.DB {
	t.Helper()

	database, err := db.New(db.DefaultConfig(filepath.Join(t.TempDir(), "test.db")))
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}

	t.Cleanup(func() {
		if err := database.Close(); err != nil {
			t.Logf("Failed to close test database: %v", err)
		}
	})

	return database
}

func enableTelemetry(t *testing.T) {
	t.Helper()
	orig := telemetry.PostHogAPIKey
	telemetry.PostHogAPIKey = "phc_test"
	t.Cleanup(func() { telemetry.PostHogAPIKey = orig })
	t.Setenv(telemetry.EnvEnabled, "")
}

func TestShowStartupNotification_ShownOnce(t *testing.T) {
	enableTelemetry(t)
	database := setupTestDB(t)

	var buf bytes.Buffer
	assert.True(t, showStartupNotification(database, &buf))
	assert.Contains(t, buf.String(), telemetry.EnvEnabled)

	state, err := database.GetUserState()
	require.NoError(t, err)
	assert.True(t, state.TelemetryNoticed)

	buf.Reset()
	assert.False(t, showStartupNotification(database, &buf))
	assert.Empty(t, buf.String())
}

func TestShowStartupNotification_TelemetryDisabled(t *testing.T) {
	enableTelemetry(t)
	t.Setenv(telemetry.EnvEnabled, "false")
	database := setupTestDB(t)

	var buf bytes.Buffer
	assert.False(t, showStartupNotification(database, &buf))
	assert.Empty(t, buf.String())
}

func TestShowStartupNotification_NilDB(t *testing.T) {
	var buf bytes.Buffer
	assert.False(t, showStartupNotification(nil, &buf))
}
