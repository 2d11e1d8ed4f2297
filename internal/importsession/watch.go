package importsession

import (
	"context"
	"errors"
	"time"

	"github.com/mrlokans/qbank/internal/entities"
)

// DefaultPollInterval is how often Watch re-reads a session.
const DefaultPollInterval = 500 * time.Millisecond

// Event is one progress stream message.
type Event struct {
	Progress float64               `json:"progress"`
	Phase    entities.ImportPhase  `json:"phase"`
	Message  string                `json:"message"`
	Logs     []string              `json:"logs"`
	Stats    *entities.ImportStats `json:"stats,omitempty"`
}

// NewEvent builds the stream message for a session snapshot.
func NewEvent(s *entities.ImportSession) Event {
	logs := s.Logs
	if logs == nil {
		logs = []string{}
	}
	return Event{
		Progress: s.Progress,
		Phase:    s.Phase,
		Message:  s.Message,
		Logs:     logs,
		Stats:    s.Stats,
	}
}

// changed reports whether a snapshot differs from the last emitted one in a
// way readers care about.
func (e Event) changed(prev *Event) bool {
	if prev == nil {
		return true
	}
	if e.Progress != prev.Progress || e.Phase != prev.Phase || e.Message != prev.Message {
		return true
	}
	if len(e.Logs) != len(prev.Logs) {
		return true
	}
	// The log is capped, so a full log can change without growing.
	return len(e.Logs) > 0 && e.Logs[len(e.Logs)-1] != prev.Logs[len(prev.Logs)-1]
}

// Watch polls the session every interval and calls emit whenever it changed.
// It returns nil after emitting the complete snapshot, or when the session
// disappears mid-stream. An unknown id returns ErrNotFound without emitting.
// Watch only reads the session.
func Watch(ctx context.Context, store Store, id string, interval time.Duration, emit func(Event) error) error {
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	session, err := store.Get(ctx, id)
	if err != nil {
		return err
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var last *Event
	for {
		evt := NewEvent(session)
		if evt.changed(last) {
			if err := emit(evt); err != nil {
				return err
			}
			last = &evt
		}
		if session.IsComplete() {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		session, err = store.Get(ctx, id)
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
