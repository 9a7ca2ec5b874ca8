package spoonacular

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/asteroid-belt/pantry/internal/testutil"
)

func TestClient_Search_Live(t *testing.T) {
	key := testutil.LiveAPIKey(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	resp, err := NewClient(key).Search(ctx, SearchParams{Query: "pasta", Number: 2})
	require.NoError(t, err)
	require.LessOrEqual(t, len(resp.Results), 2)
	for _, r := range resp.Results {
		require.NotZero(t, r.ID)
	}
}
