package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckpointRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("starts at zero", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewCheckpointRepository(db)

		last, err := repo.LastProcessedID(ctx)
		require.NoError(t, err)
		assert.Zero(t, last)
	})

	t.Run("advances forward", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewCheckpointRepository(db)

		require.NoError(t, repo.Advance(ctx, 1500))

		last, err := repo.LastProcessedID(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1500), last)
	})

	t.Run("never moves backwards", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewCheckpointRepository(db)

		require.NoError(t, repo.Advance(ctx, 1500))
		require.NoError(t, repo.Advance(ctx, 900))
		require.NoError(t, repo.Advance(ctx, 1500))

		last, err := repo.LastProcessedID(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1500), last)
	})
}
