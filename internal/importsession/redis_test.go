package importsession

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/qbank/internal/entities"
)

// newTestRedisStore connects to REDIS_ADDR or skips the test.
func newTestRedisStore(t *testing.T) *RedisStore {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	prefix := "qbank:test:" + NewID() + ":"
	store, err := NewRedisStore(context.Background(), addr, prefix, time.Minute)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRedisStore_Lifecycle(t *testing.T) {
	store := newTestRedisStore(t)
	ctx := context.Background()
	p := NewPublisher(store, 3, nil)

	require.NoError(t, p.Start(ctx, "s1", "start"))
	assert.ErrorIs(t, p.Start(ctx, "s1", ""), ErrExists)

	for i := 0; i < 5; i++ {
		require.NoError(t, p.Update(ctx, "s1", float64(i*10), entities.ImportPhaseImporting, "step", "step"))
	}
	s, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, float64(40), s.Progress)
	assert.Len(t, s.Logs, 3)

	require.NoError(t, p.Complete(ctx, "s1", "done", entities.ImportStats{Total: 2, Imported: 2}))
	removed, err := store.Sweep(ctx, time.Now().Add(time.Second), time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = store.Get(ctx, "s1")
	assert.ErrorIs(t, err, ErrNotFound)
}
