package cli

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/database-playground/account-eraser/internal/erasure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEraser struct {
	mu      sync.Mutex
	targets []erasure.Target
	failFor map[string]error
	erased  []string
}

func (f *fakeEraser) Targets() []erasure.Target {
	return f.targets
}

func (f *fakeEraser) EraseAccount(ctx context.Context, userID string) (erasure.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.erased = append(f.erased, userID)
	if err := f.failFor[userID]; err != nil {
		return erasure.Result{}, err
	}

	return erasure.Result{UserID: userID}, nil
}

type memoryProgress struct {
	checkpoints map[string]erasure.Checkpoint
	listErr     error
}

func (m *memoryProgress) Save(ctx context.Context, checkpoint erasure.Checkpoint) error {
	m.checkpoints[checkpoint.UserID] = checkpoint
	return nil
}

func (m *memoryProgress) Get(ctx context.Context, userID string) (erasure.Checkpoint, error) {
	checkpoint, ok := m.checkpoints[userID]
	if !ok {
		return erasure.Checkpoint{}, erasure.ErrNoCheckpoint
	}
	return checkpoint, nil
}

func (m *memoryProgress) Delete(ctx context.Context, userID string) error {
	delete(m.checkpoints, userID)
	return nil
}

func (m *memoryProgress) List(ctx context.Context) ([]erasure.Checkpoint, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}

	var checkpoints []erasure.Checkpoint
	for _, checkpoint := range m.checkpoints {
		checkpoints = append(checkpoints, checkpoint)
	}
	return checkpoints, nil
}

func TestListTargets(t *testing.T) {
	targets := []erasure.Target{
		{Collection: "orders", KeyColumn: "user_id"},
		{Collection: "profiles", KeyColumn: "id"},
	}
	c := NewContext(&fakeEraser{targets: targets}, nil)

	assert.Equal(t, targets, c.ListTargets())
}

func TestPending(t *testing.T) {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("oldest first", func(t *testing.T) {
		progress := &memoryProgress{checkpoints: map[string]erasure.Checkpoint{
			"b": {UserID: "b", Phase: erasure.PhaseIdentity, StartedAt: base.Add(time.Minute)},
			"a": {UserID: "a", Phase: erasure.PhaseDependents, StartedAt: base.Add(time.Hour)},
			"c": {UserID: "c", Phase: erasure.PhaseDependents, StartedAt: base},
		}}
		c := NewContext(&fakeEraser{}, progress)

		checkpoints, err := c.Pending(context.Background())
		require.NoError(t, err)

		var userIDs []string
		for _, checkpoint := range checkpoints {
			userIDs = append(userIDs, checkpoint.UserID)
		}
		assert.Equal(t, []string{"c", "b", "a"}, userIDs)
	})

	t.Run("nothing recorded", func(t *testing.T) {
		c := NewContext(&fakeEraser{}, nil)

		checkpoints, err := c.Pending(context.Background())
		require.NoError(t, err)
		assert.Empty(t, checkpoints)
	})

	t.Run("list error", func(t *testing.T) {
		c := NewContext(&fakeEraser{}, &memoryProgress{listErr: errors.New("connection refused")})

		_, err := c.Pending(context.Background())
		assert.ErrorContains(t, err, "connection refused")
	})
}

func TestErase(t *testing.T) {
	t.Run("requires a user id", func(t *testing.T) {
		eraser := &fakeEraser{}
		c := NewContext(eraser, nil)

		_, err := c.Erase(context.Background(), "")
		assert.EqualError(t, err, "user id is required")
		assert.Empty(t, eraser.erased)
	})

	t.Run("erases the given account", func(t *testing.T) {
		eraser := &fakeEraser{}
		c := NewContext(eraser, nil)

		result, err := c.Erase(context.Background(), "abc123")
		require.NoError(t, err)
		assert.Equal(t, "abc123", result.UserID)
		assert.Equal(t, []string{"abc123"}, eraser.erased)
	})
}

func TestResume_NothingPending(t *testing.T) {
	eraser := &fakeEraser{}
	c := NewContext(eraser, &memoryProgress{checkpoints: map[string]erasure.Checkpoint{}})

	require.NoError(t, c.Resume(context.Background(), false))
	assert.Empty(t, eraser.erased)
}

func TestResume_DryRun(t *testing.T) {
	eraser := &fakeEraser{}
	c := NewContext(eraser, &memoryProgress{checkpoints: map[string]erasure.Checkpoint{
		"abc123": {UserID: "abc123", Phase: erasure.PhaseDependents, Error: "relation is locked"},
	}})

	require.NoError(t, c.Resume(context.Background(), true))
	assert.Empty(t, eraser.erased)
}

func TestResumeModel_ProcessNext(t *testing.T) {
	eraser := &fakeEraser{failFor: map[string]error{"b": errors.New("backend unavailable")}}
	checkpoints := []erasure.Checkpoint{{UserID: "a"}, {UserID: "b"}, {UserID: "c"}}
	model := newResumeModel(context.Background(), eraser, checkpoints)

	for range checkpoints {
		msg, ok := model.processNext()().(resumeProgressMsg)
		require.True(t, ok)
		require.False(t, msg.Done)

		model.Update(msg)
	}

	msg, ok := model.processNext()().(resumeProgressMsg)
	require.True(t, ok)
	assert.True(t, msg.Done)
	assert.Equal(t, 2, msg.Completed)
	assert.Equal(t, 1, msg.Failed)

	model.Update(msg)
	assert.True(t, model.done)
	assert.EqualError(t, model.err, "backend unavailable")
	assert.Contains(t, model.View(), "Failed: 1")
	assert.Equal(t, []string{"a", "b", "c"}, eraser.erased)
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "short", truncateString("short", 10))
	assert.Equal(t, "abc...", truncateString("abcdef", 3))
}
