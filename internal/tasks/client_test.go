package tasks

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mrlokans/qbank/internal/config"
	"github.com/mrlokans/qbank/internal/entities"
	"github.com/mrlokans/qbank/internal/importsession"
)

func TestNewClient(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	cfg := DefaultConfig()
	cfg.Workers = 1

	client, err := NewClient(dbPath, cfg, zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, client)

	// Verify tasks database was created
	tasksDBPath := filepath.Join(tmpDir, "test-tasks.db")
	_, err = os.Stat(tasksDBPath)
	assert.NoError(t, err, "tasks database should be created")

	err = client.Close()
	assert.NoError(t, err)
}

func TestClientStartStop(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	cfg := DefaultConfig()
	cfg.Workers = 1

	client, err := NewClient(dbPath, cfg, zap.NewNop())
	require.NoError(t, err)
	defer client.Close()

	// Start client in background
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go client.Start(ctx)

	// Give it time to start
	time.Sleep(50 * time.Millisecond)

	// Stop should complete successfully
	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()

	success := client.Stop(stopCtx)
	assert.True(t, success, "stop should succeed gracefully")
}

// TestTask is a simple task for testing
type TestTask struct {
	Value string `json:"value"`
}

func (t TestTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "test_task",
		MaxAttempts: 1,
		Backoff:     time.Second,
		Timeout:     5 * time.Second,
	}
}

func TestTaskEnqueue(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	cfg := DefaultConfig()
	cfg.Workers = 1

	client, err := NewClient(dbPath, cfg, zap.NewNop())
	require.NoError(t, err)
	defer client.Close()

	// Create and register a test queue
	executed := make(chan string, 1)
	queue := backlite.NewQueue(func(ctx context.Context, task TestTask) error {
		executed <- task.Value
		return nil
	})
	client.Register(queue)

	// Start client
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Start(ctx)

	// Enqueue a task
	ids, err := client.Add(TestTask{Value: "hello"}).Save()
	require.NoError(t, err)
	assert.Len(t, ids, 1)

	// Wait for task to be executed
	select {
	case val := <-executed:
		assert.Equal(t, "hello", val)
	case <-time.After(5 * time.Second):
		t.Fatal("task was not executed within timeout")
	}
}

func TestEvictImportSessionTaskConfig(t *testing.T) {
	cfg := EvictImportSessionTask{SessionID: "s1"}.Config()

	assert.Equal(t, "evict_import_session", cfg.Name)
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.NotNil(t, cfg.Retention)
}

func TestCleanupAuditEventsTaskConfig(t *testing.T) {
	cfg := CleanupAuditEventsTask{RetentionDays: 7}.Config()

	assert.Equal(t, "cleanup_audit_events", cfg.Name)
	assert.Equal(t, 2*time.Minute, cfg.Timeout)
}

func TestEvictImportSessionProcessor(t *testing.T) {
	ctx := context.Background()
	store := importsession.NewMemoryStore()
	publisher := importsession.NewPublisher(store, 0, nil)
	require.NoError(t, publisher.Start(ctx, "s1", ""))
	require.NoError(t, publisher.Complete(ctx, "s1", "done", entities.ImportStats{}))

	process := EvictImportSessionProcessor(store, zap.NewNop())
	require.NoError(t, process(ctx, EvictImportSessionTask{SessionID: "s1", CompletedBy: time.Now().Add(time.Second)}))

	_, err := store.Get(ctx, "s1")
	assert.ErrorIs(t, err, importsession.ErrNotFound)

	// Unknown sessions are not an error
	assert.NoError(t, process(ctx, EvictImportSessionTask{SessionID: "gone", CompletedBy: time.Now()}))
}

type fakeCleaner struct {
	retention time.Duration
}

func (f *fakeCleaner) DeleteOldEvents(retention time.Duration) (int64, error) {
	f.retention = retention
	return 4, nil
}

func TestCleanupAuditEventsProcessor(t *testing.T) {
	cleaner := &fakeCleaner{}
	process := CleanupAuditEventsProcessor(cleaner, zap.NewNop())

	require.NoError(t, process(context.Background(), CleanupAuditEventsTask{}))
	assert.Equal(t, 30*24*time.Hour, cleaner.retention, "defaults to 30 days")

	require.NoError(t, process(context.Background(), CleanupAuditEventsTask{RetentionDays: 2}))
	assert.Equal(t, 48*time.Hour, cleaner.retention)
}

func TestSessionEvictor(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Workers = 1

	client, err := NewClient(filepath.Join(tmpDir, "test.db"), cfg, zap.NewNop())
	require.NoError(t, err)
	defer client.Close()

	ctx := context.Background()
	store := importsession.NewMemoryStore()
	publisher := importsession.NewPublisher(store, 0, nil)
	require.NoError(t, publisher.Start(ctx, "s1", ""))
	require.NoError(t, publisher.Complete(ctx, "s1", "done", entities.ImportStats{}))

	client.Register(NewEvictImportSessionQueue(store, zap.NewNop()))
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go client.Start(runCtx)

	require.NoError(t, NewSessionEvictor(client).ScheduleEviction(ctx, "s1", 0))

	assert.Eventually(t, func() bool {
		_, err := store.Get(ctx, "s1")
		return err == importsession.ErrNotFound
	}, 5*time.Second, 20*time.Millisecond)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, 15*time.Minute, cfg.ReleaseAfter)
	assert.Equal(t, time.Hour, cfg.CleanupInterval)
}

func TestConfigFromSettings(t *testing.T) {
	cfg := ConfigFromSettings(config.Tasks{Workers: 4, CleanupInterval: 10 * time.Minute})

	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 15*time.Minute, cfg.ReleaseAfter, "unset values keep the default")
	assert.Equal(t, 10*time.Minute, cfg.CleanupInterval)
}
