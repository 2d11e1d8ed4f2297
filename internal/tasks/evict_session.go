package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"
	"go.uber.org/zap"

	"github.com/mrlokans/qbank/internal/importsession"
)

// EvictImportSessionTask deletes a completed import session once its
// retention period is over.
type EvictImportSessionTask struct {
	SessionID string `json:"session_id"`
	// CompletedBy guards against deleting a newer session that reused the id.
	CompletedBy time.Time `json:"completed_by"`
}

// Config returns the queue configuration for session eviction tasks.
func (t EvictImportSessionTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "evict_import_session",
		MaxAttempts: 3,
		Backoff:     5 * time.Second,
		Timeout:     10 * time.Second,
		Retention: &backlite.Retention{
			Duration:   time.Hour,
			OnlyFailed: true,
		},
	}
}

// EvictImportSessionProcessor creates a processor function for EvictImportSessionTask.
func EvictImportSessionProcessor(store importsession.Store, log *zap.Logger) backlite.QueueProcessor[EvictImportSessionTask] {
	return func(ctx context.Context, task EvictImportSessionTask) error {
		if store == nil {
			return fmt.Errorf("import session store not configured")
		}

		evicted, err := importsession.EvictCompleted(ctx, store, task.SessionID, task.CompletedBy)
		if err != nil {
			return fmt.Errorf("evict import session %s: %w", task.SessionID, err)
		}
		if evicted {
			log.Debug("evicted import session", zap.String("session_id", task.SessionID))
		}
		return nil
	}
}

// NewEvictImportSessionQueue creates a backlite queue for session eviction tasks.
func NewEvictImportSessionQueue(store importsession.Store, log *zap.Logger) backlite.Queue {
	if log == nil {
		log = zap.NewNop()
	}
	return backlite.NewQueue(EvictImportSessionProcessor(store, log))
}

// Enqueuer adds tasks to the queue. *Client implements it.
type Enqueuer interface {
	Add(tasks ...backlite.Task) *backlite.TaskAddOp
}

// SessionEvictor schedules session eviction through the task queue.
type SessionEvictor struct {
	queue Enqueuer
}

// NewSessionEvictor creates an importsession.Evictor backed by the task queue.
func NewSessionEvictor(queue Enqueuer) *SessionEvictor {
	return &SessionEvictor{queue: queue}
}

func (e *SessionEvictor) ScheduleEviction(ctx context.Context, id string, after time.Duration) error {
	task := EvictImportSessionTask{SessionID: id, CompletedBy: time.Now()}
	_, err := e.queue.Add(task).Ctx(ctx).Wait(after).Save()
	return err
}
