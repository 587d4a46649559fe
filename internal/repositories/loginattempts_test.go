package repositories_test

import (
	"context"
	"io"
	"testing"

	"github.com/detachd/portal/internal/repositories"
	"github.com/detachd/portal/internal/testhelpers"
	"github.com/stretchr/testify/require"
)

func TestLoginAttemptRepository(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := repositories.NewLoginAttemptRepository(newTestDB(t), testhelpers.NewLogger(io.Discard))

	key := "maria@example.com|127.0.0.1"

	allowed, err := repo.Allowed(ctx, key)
	require.NoError(t, err)
	require.True(t, allowed, "fresh key is allowed")

	for range 5 {
		require.NoError(t, repo.Record(ctx, key))
	}

	allowed, err = repo.Allowed(ctx, key)
	require.NoError(t, err)
	require.False(t, allowed, "key is throttled after hitting the limit")

	other, err := repo.Allowed(ctx, "other@example.com|127.0.0.1")
	require.NoError(t, err)
	require.True(t, other, "throttling is per key")

	require.NoError(t, repo.Reset(ctx, key))
	allowed, err = repo.Allowed(ctx, key)
	require.NoError(t, err)
	require.True(t, allowed, "reset clears the window")
}
