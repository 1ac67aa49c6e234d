package history

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trapwatch/trapwatch/pkg/logger"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "history.db"), logger.NewTestLogger())
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})

	return store
}

func TestRecordAndRecent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)

	for i := 0; i < 3; i++ {
		require.NoError(t, store.Record(ctx, Detection{
			ID:        uuid.New().String(),
			File:      fmt.Sprintf("/data/captures/img_%03d.jpg", i+1),
			Score:     0.3 * float64(i+1),
			Duration:  1500 * time.Millisecond,
			Triggered: i == 2,
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	recent, err := store.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)

	// Most recent first.
	assert.True(t, recent[0].Timestamp.After(recent[1].Timestamp))
	assert.True(t, recent[0].Triggered)
	assert.InDelta(t, 0.9, recent[0].Score, 1e-9)
	assert.Equal(t, 1500*time.Millisecond, recent[0].Duration)
}

func TestRecentEmpty(t *testing.T) {
	store := openTestStore(t)

	recent, err := store.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, recent)
}

func TestPrune(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	old := Detection{
		ID:        uuid.New().String(),
		File:      "/data/captures/old.jpg",
		Score:     0.1,
		Timestamp: time.Now().UTC().Add(-48 * time.Hour),
	}
	fresh := Detection{
		ID:        uuid.New().String(),
		File:      "/data/captures/fresh.jpg",
		Score:     0.8,
		Timestamp: time.Now().UTC(),
	}

	require.NoError(t, store.Record(ctx, old))
	require.NoError(t, store.Record(ctx, fresh))

	deleted, err := store.Prune(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	recent, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "/data/captures/fresh.jpg", recent[0].File)
}

func TestRecordUpsertsByID(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	id := uuid.New().String()

	require.NoError(t, store.Record(ctx, Detection{ID: id, File: "/a.jpg", Score: 0.2, Timestamp: time.Now().UTC()}))
	require.NoError(t, store.Record(ctx, Detection{ID: id, File: "/a.jpg", Score: 0.7, Timestamp: time.Now().UTC()}))

	recent, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.InDelta(t, 0.7, recent[0].Score, 1e-9)
}
