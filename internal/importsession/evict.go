package importsession

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// DefaultRetention is how long a completed session stays readable.
const DefaultRetention = 30 * time.Second

// Evictor schedules deletion of a completed session.
type Evictor interface {
	ScheduleEviction(ctx context.Context, id string, after time.Duration) error
}

// EvictCompleted deletes the session if it completed at or before cutoff. A
// session recreated under the same id after cutoff is left alone.
func EvictCompleted(ctx context.Context, store Store, id string, cutoff time.Time) (bool, error) {
	session, err := store.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if !session.IsComplete() || session.CompletedAt == nil || session.CompletedAt.After(cutoff) {
		return false, nil
	}
	return true, store.Delete(ctx, id)
}

// TimerEvictor evicts sessions from an in-process timer.
type TimerEvictor struct {
	store Store
	log   *zap.Logger
}

func NewTimerEvictor(store Store, log *zap.Logger) *TimerEvictor {
	if log == nil {
		log = zap.NewNop()
	}
	return &TimerEvictor{store: store, log: log}
}

func (e *TimerEvictor) ScheduleEviction(_ context.Context, id string, after time.Duration) error {
	cutoff := time.Now()
	time.AfterFunc(after, func() {
		evicted, err := EvictCompleted(context.Background(), e.store, id, cutoff)
		if err != nil {
			e.log.Warn("failed to evict import session", zap.String("session_id", id), zap.Error(err))
			return
		}
		if evicted {
			e.log.Debug("evicted import session", zap.String("session_id", id))
		}
	})
	return nil
}
