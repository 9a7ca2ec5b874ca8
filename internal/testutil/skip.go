// Package testutil provides testing utilities.
package testutil

import (
	"os"
	"testing"
)

// LiveAPIKey returns the Spoonacular key for live API tests, skipping the
// test unless PANTRY_LIVE_TESTS is set and a key is available.
//
// Run live tests with: PANTRY_LIVE_TESTS=1 SPOONACULAR_API_KEY=... go test ./...
func LiveAPIKey(t *testing.T) string {
	t.Helper()
	if os.Getenv("PANTRY_LIVE_TESTS") == "" {
		t.Skip("Skipping live API test (set PANTRY_LIVE_TESTS=1 to run)")
	}
	key := os.Getenv("SPOONACULAR_API_KEY")
	if key == "" {
		t.Skip("Skipping live API test (SPOONACULAR_API_KEY not set)")
	}
	return key
}
