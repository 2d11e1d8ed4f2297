package importsession

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/mrlokans/qbank/internal/entities"
)

// DefaultMaxLogs is how many log lines a session keeps.
const DefaultMaxLogs = 50

// Publisher is the write side of a session. Progress never decreases and the
// phase only moves forward; updates that would do otherwise are clamped.
type Publisher struct {
	store   Store
	maxLogs int
	log     *zap.Logger
	now     func() time.Time
}

// NewPublisher creates a publisher writing to store. A maxLogs below one
// falls back to DefaultMaxLogs.
func NewPublisher(store Store, maxLogs int, log *zap.Logger) *Publisher {
	if maxLogs < 1 {
		maxLogs = DefaultMaxLogs
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Publisher{store: store, maxLogs: maxLogs, log: log, now: time.Now}
}

// Start creates the session in the validating phase with zero progress.
func (p *Publisher) Start(ctx context.Context, id, message string) error {
	now := p.now()
	session := &entities.ImportSession{
		ID:        id,
		Phase:     entities.ImportPhaseValidating,
		Message:   message,
		Logs:      []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if message != "" {
		session.Logs = append(session.Logs, p.stamp(now, message))
	}
	if err := p.store.Create(ctx, session); err != nil {
		return err
	}
	p.log.Debug("import session started", zap.String("session_id", id))
	return nil
}

// Update records progress. logLine is appended to the session log when not
// empty; the log keeps only the most recent lines.
func (p *Publisher) Update(ctx context.Context, id string, progress float64, phase entities.ImportPhase, message, logLine string) error {
	return p.store.Update(ctx, id, func(s *entities.ImportSession) error {
		if s.IsComplete() {
			return ErrCompleted
		}
		p.apply(s, progress, phase, message, logLine)
		return nil
	})
}

// Log appends a log line without touching progress, phase or message.
func (p *Publisher) Log(ctx context.Context, id, line string) error {
	return p.store.Update(ctx, id, func(s *entities.ImportSession) error {
		if s.IsComplete() {
			return ErrCompleted
		}
		now := p.now()
		p.appendLog(s, now, line)
		s.UpdatedAt = now
		return nil
	})
}

// Complete moves the session to its terminal phase at 100% with stats.
func (p *Publisher) Complete(ctx context.Context, id, message string, stats entities.ImportStats) error {
	return p.finish(ctx, id, 100, message, stats)
}

// Reject ends the session after a terminal validation failure. Progress is
// left where it was, which is zero before any row is processed.
func (p *Publisher) Reject(ctx context.Context, id, message string) error {
	return p.finish(ctx, id, 0, message, entities.ImportStats{Errors: []string{message}})
}

func (p *Publisher) finish(ctx context.Context, id string, progress float64, message string, stats entities.ImportStats) error {
	err := p.store.Update(ctx, id, func(s *entities.ImportSession) error {
		if s.IsComplete() {
			return ErrCompleted
		}
		p.apply(s, progress, entities.ImportPhaseComplete, message, message)
		st := stats
		s.Stats = &st
		completed := s.UpdatedAt
		s.CompletedAt = &completed
		return nil
	})
	if err != nil {
		return err
	}
	p.log.Info("import session complete",
		zap.String("session_id", id),
		zap.String("message", message),
		zap.Int("imported", stats.Imported),
		zap.Int("failed", stats.Failed),
	)
	return nil
}

func (p *Publisher) apply(s *entities.ImportSession, progress float64, phase entities.ImportPhase, message, logLine string) {
	now := p.now()
	s.Progress = clampProgress(s.Progress, progress)
	if s.Phase.Before(phase) {
		s.Phase = phase
	}
	if message != "" {
		s.Message = message
	}
	if logLine != "" {
		p.appendLog(s, now, logLine)
	}
	s.UpdatedAt = now
}

func (p *Publisher) appendLog(s *entities.ImportSession, at time.Time, line string) {
	s.Logs = append(s.Logs, p.stamp(at, line))
	if over := len(s.Logs) - p.maxLogs; over > 0 {
		s.Logs = append([]string(nil), s.Logs[over:]...)
	}
}

func (p *Publisher) stamp(at time.Time, line string) string {
	return fmt.Sprintf("[%s] %s", at.Format("15:04:05"), line)
}

// clampProgress keeps progress within [current, 100].
func clampProgress(current, next float64) float64 {
	if math.IsNaN(next) {
		return current
	}
	next = math.Min(next, 100)
	return math.Max(current, next)
}
