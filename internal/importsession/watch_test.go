package importsession

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mrlokans/qbank/internal/entities"
)

func TestWatch_UnknownSessionEmitsNothing(t *testing.T) {
	var events []Event
	err := Watch(context.Background(), NewMemoryStore(), "nope", time.Millisecond, func(e Event) error {
		events = append(events, e)
		return nil
	})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, events)
}

func TestWatch_EmitsChangesUntilComplete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	p := NewPublisher(store, DefaultMaxLogs, zap.NewNop())
	require.NoError(t, p.Start(ctx, "s1", "start"))

	var (
		mu     sync.Mutex
		events []Event
	)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, store, "s1", 2*time.Millisecond, func(e Event) error {
			mu.Lock()
			events = append(events, e)
			mu.Unlock()
			return nil
		})
	}()

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, p.Update(ctx, "s1", 20, entities.ImportPhaseImporting, "Loaded taxonomy", "Loaded taxonomy"))
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, p.Complete(ctx, "s1", "done", entities.ImportStats{Total: 1, Imported: 1}))

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop after completion")
	}

	mu.Lock()
	defer mu.Unlock()
	require.GreaterOrEqual(t, len(events), 2)
	for i := 1; i < len(events); i++ {
		assert.GreaterOrEqual(t, events[i].Progress, events[i-1].Progress)
		assert.NotEqual(t, events[i], events[i-1], "identical snapshots are not re-sent")
	}
	last := events[len(events)-1]
	assert.Equal(t, entities.ImportPhaseComplete, last.Phase)
	assert.Equal(t, float64(100), last.Progress)
	require.NotNil(t, last.Stats)
	assert.Equal(t, 1, last.Stats.Imported)
}

func TestWatch_StopsWhenSessionEvicted(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Create(ctx, newSession("s1")))

	emitted := 0
	go func() {
		time.Sleep(10 * time.Millisecond)
		_ = store.Delete(ctx, "s1")
	}()
	err := Watch(ctx, store, "s1", time.Millisecond, func(Event) error {
		emitted++
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 1, emitted)
}

func TestWatch_ContextCancel(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Create(context.Background(), newSession("s1")))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := Watch(ctx, store, "s1", time.Millisecond, func(Event) error { return nil })
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestEventChanged(t *testing.T) {
	base := Event{Progress: 10, Phase: entities.ImportPhaseImporting, Message: "m", Logs: []string{"a", "b"}}

	assert.True(t, base.changed(nil))
	assert.False(t, base.changed(&Event{Progress: 10, Phase: entities.ImportPhaseImporting, Message: "m", Logs: []string{"a", "b"}}))

	rotated := base
	rotated.Logs = []string{"b", "c"}
	assert.True(t, rotated.changed(&base), "a capped log that rotated counts as a change")
}

func TestEvictCompleted(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	p := NewPublisher(store, DefaultMaxLogs, nil)

	require.NoError(t, p.Start(ctx, "running", ""))
	evicted, err := EvictCompleted(ctx, store, "running", time.Now())
	require.NoError(t, err)
	assert.False(t, evicted)

	require.NoError(t, p.Start(ctx, "done", ""))
	require.NoError(t, p.Complete(ctx, "done", "ok", entities.ImportStats{}))

	evicted, err = EvictCompleted(ctx, store, "done", time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.False(t, evicted, "completed after cutoff")

	evicted, err = EvictCompleted(ctx, store, "done", time.Now().Add(time.Second))
	require.NoError(t, err)
	assert.True(t, evicted)

	evicted, err = EvictCompleted(ctx, store, "missing", time.Now())
	require.NoError(t, err)
	assert.False(t, evicted)
}

func TestTimerEvictor(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	p := NewPublisher(store, DefaultMaxLogs, nil)
	require.NoError(t, p.Start(ctx, "s1", ""))
	require.NoError(t, p.Complete(ctx, "s1", "ok", entities.ImportStats{}))

	require.NoError(t, NewTimerEvictor(store, nil).ScheduleEviction(ctx, "s1", 5*time.Millisecond))

	assert.Eventually(t, func() bool {
		_, err := store.Get(ctx, "s1")
		return err == ErrNotFound
	}, time.Second, 5*time.Millisecond)
}
