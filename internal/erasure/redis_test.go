package erasure_test

import (
	"context"
	"testing"
	"time"

	"github.com/database-playground/account-eraser/internal/erasure"
	"github.com/database-playground/account-eraser/internal/testhelper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisProgress(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping Redis container test in short mode")
	}

	client := testhelper.NewRedisClient(t)
	progress := erasure.NewRedisProgress(client, time.Hour)
	ctx := context.Background()

	startedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("missing checkpoint", func(t *testing.T) {
		_, err := progress.Get(ctx, "nobody")
		require.ErrorIs(t, err, erasure.ErrNoCheckpoint)
	})

	t.Run("save and get", func(t *testing.T) {
		checkpoint := erasure.Checkpoint{
			UserID:           "abc123",
			Phase:            erasure.PhaseDependents,
			Completed:        2,
			FailedCollection: "insights_counts",
			Error:            "500: relation is locked",
			StartedAt:        startedAt,
			UpdatedAt:        startedAt.Add(time.Second),
		}
		require.NoError(t, progress.Save(ctx, checkpoint))

		got, err := progress.Get(ctx, "abc123")
		require.NoError(t, err)
		assert.Equal(t, checkpoint.UserID, got.UserID)
		assert.Equal(t, checkpoint.Phase, got.Phase)
		assert.Equal(t, checkpoint.Completed, got.Completed)
		assert.Equal(t, checkpoint.FailedCollection, got.FailedCollection)
		assert.True(t, checkpoint.StartedAt.Equal(got.StartedAt))
		assert.True(t, got.Failed())

		ttl, err := client.Do(ctx, client.B().Ttl().Key("erasure:progress:abc123").Build()).AsInt64()
		require.NoError(t, err)
		assert.Positive(t, ttl)
	})

	t.Run("list and count", func(t *testing.T) {
		require.NoError(t, progress.Save(ctx, erasure.Checkpoint{UserID: "u1", Phase: erasure.PhaseDependents, StartedAt: startedAt}))
		require.NoError(t, progress.Save(ctx, erasure.Checkpoint{UserID: "u2", Phase: erasure.PhaseIdentity, StartedAt: startedAt}))

		checkpoints, err := progress.List(ctx)
		require.NoError(t, err)

		userIDs := make([]string, 0, len(checkpoints))
		for _, checkpoint := range checkpoints {
			userIDs = append(userIDs, checkpoint.UserID)
		}
		assert.ElementsMatch(t, []string{"abc123", "u1", "u2"}, userIDs)

		counts, err := progress.CountPending(ctx)
		require.NoError(t, err)
		assert.Equal(t, map[string]int{
			erasure.PhaseDependents: 2,
			erasure.PhaseIdentity:   1,
		}, counts)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, progress.Delete(ctx, "abc123"))
		require.NoError(t, progress.Delete(ctx, "abc123"), "deleting twice is not an error")

		_, err := progress.Get(ctx, "abc123")
		require.ErrorIs(t, err, erasure.ErrNoCheckpoint)
	})
}

func TestRedisProgress_WithEraser(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping Redis container test in short mode")
	}

	client := testhelper.NewRedisClient(t)
	progress := erasure.NewRedisProgress(client, 0)
	ctx := context.Background()

	m := newMemoryBackend()
	seedAccount(m, "token-a", "abc123")
	m.failCollection = "insights_weekly"

	eraser := erasure.New(memoryClients{backend: m}, fiveTargets, erasure.WithProgress(progress))

	_, err := eraser.Erase(ctx, "token-a")
	require.Error(t, err)

	checkpoint, err := progress.Get(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, 3, checkpoint.Completed)
	assert.Equal(t, "insights_weekly", checkpoint.FailedCollection)

	ttl, err := client.Do(ctx, client.B().Ttl().Key("erasure:progress:abc123").Build()).AsInt64()
	require.NoError(t, err)
	assert.Equal(t, int64(-1), ttl, "a zero ttl keeps the checkpoint")

	m.failCollection = ""
	_, err = eraser.EraseAccount(ctx, checkpoint.UserID)
	require.NoError(t, err)

	_, err = progress.Get(ctx, "abc123")
	require.ErrorIs(t, err, erasure.ErrNoCheckpoint)
}
