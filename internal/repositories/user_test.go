package repositories_test

import (
	"context"
	"io"
	"testing"

	"github.com/detachd/portal/internal/models"
	"github.com/detachd/portal/internal/repositories"
	"github.com/detachd/portal/internal/testhelpers"
	"github.com/stretchr/testify/require"
)

func TestUserRepository(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := repositories.NewUserRepository(newTestDB(t), testhelpers.NewLogger(io.Discard))

	user, err := repo.Register(ctx, "Maria@Example.com", "correct horse battery", "Maria Santos", models.RolePolicyholder)
	require.NoError(t, err, "failed to register user")
	require.NotEmpty(t, user.ID)
	require.Equal(t, "maria@example.com", user.Email, "email is normalized")
	require.Equal(t, models.RolePolicyholder, user.Role)
	require.NotEmpty(t, user.PasswordHash)

	t.Run("duplicate email", func(t *testing.T) {
		_, err := repo.Register(ctx, "maria@example.com", "other password", "Other Maria", models.RoleInsurer)
		require.ErrorIs(t, err, repositories.ErrEmailTaken)
	})

	t.Run("authenticate success", func(t *testing.T) {
		got, err := repo.Authenticate(ctx, "maria@example.com", "correct horse battery")
		require.NoError(t, err)
		require.Equal(t, user.ID, got.ID)
	})

	t.Run("authenticate wrong password", func(t *testing.T) {
		_, err := repo.Authenticate(ctx, "maria@example.com", "wrong")
		require.ErrorIs(t, err, repositories.ErrInvalidCredentials)
	})

	t.Run("authenticate unknown email", func(t *testing.T) {
		_, err := repo.Authenticate(ctx, "nobody@example.com", "whatever")
		require.ErrorIs(t, err, repositories.ErrInvalidCredentials)
	})

	t.Run("get", func(t *testing.T) {
		got, err := repo.Get(ctx, user.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		require.Equal(t, "Maria Santos", got.DisplayName)

		missing, err := repo.Get(ctx, "nonexistent")
		require.NoError(t, err)
		require.Nil(t, missing)
	})

	t.Run("exists", func(t *testing.T) {
		exists, err := repo.Exists(ctx, user.ID)
		require.NoError(t, err)
		require.True(t, exists)

		exists, err = repo.Exists(ctx, "nonexistent")
		require.NoError(t, err)
		require.False(t, exists)
	})
}
