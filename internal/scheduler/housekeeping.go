package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mrlokans/qbank/internal/importsession"
	"github.com/mrlokans/qbank/internal/tasks"
)

// AuditCleanupSchedule is when old audit events are purged.
const AuditCleanupSchedule = "@daily"

// HousekeepingConfig configures the Housekeeper.
type HousekeepingConfig struct {
	SweepSchedule      string        // cron spec for the session sweep
	Retention          time.Duration // completed sessions older than this are dropped
	MaxSessionAge      time.Duration // unfinished sessions idle for longer are dropped
	AuditRetentionDays int
}

// Housekeeper periodically drops expired import sessions and queues audit
// cleanup. Session eviction after a stream ends is best effort; the sweep
// catches sessions whose stream was never opened.
type Housekeeper struct {
	sweeper importsession.Sweeper
	queue   tasks.Enqueuer // optional
	config  HousekeepingConfig
	log     *zap.Logger
	now     func() time.Time

	cron       *cron.Cron
	mu         sync.Mutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

// NewHousekeeper creates a housekeeper. queue may be nil when the task queue
// is disabled; audit cleanup is then skipped.
func NewHousekeeper(sweeper importsession.Sweeper, queue tasks.Enqueuer, cfg HousekeepingConfig, log *zap.Logger) *Housekeeper {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Retention <= 0 {
		cfg.Retention = importsession.DefaultRetention
	}
	if cfg.MaxSessionAge <= 0 {
		cfg.MaxSessionAge = 2 * time.Hour
	}
	return &Housekeeper{
		sweeper: sweeper,
		queue:   queue,
		config:  cfg,
		log:     log.Named("housekeeping"),
		now:     time.Now,
		cron:    cron.New(),
	}
}

// Start schedules the jobs and returns immediately.
func (h *Housekeeper) Start(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.isRunning {
		return nil
	}

	if _, err := h.cron.AddFunc(h.config.SweepSchedule, func() { h.Sweep(context.Background()) }); err != nil {
		return fmt.Errorf("invalid sweep schedule '%s': %w", h.config.SweepSchedule, err)
	}
	if h.queue != nil {
		if _, err := h.cron.AddFunc(AuditCleanupSchedule, h.enqueueAuditCleanup); err != nil {
			return fmt.Errorf("failed to schedule audit cleanup: %w", err)
		}
	}

	var cancelCtx context.Context
	cancelCtx, h.cancelFunc = context.WithCancel(ctx)

	h.cron.Start()
	h.isRunning = true
	h.log.Info("housekeeping started", zap.String("sweep_schedule", h.config.SweepSchedule))

	go func() {
		<-cancelCtx.Done()
		h.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler
func (h *Housekeeper) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.isRunning {
		return
	}

	// Stop accepting new jobs and wait for running jobs to complete
	ctx := h.cron.Stop()
	<-ctx.Done()

	h.isRunning = false
	if h.cancelFunc != nil {
		h.cancelFunc()
		h.cancelFunc = nil
	}
	h.log.Info("housekeeping stopped")
}

// Sweep drops expired sessions once and returns how many were removed.
func (h *Housekeeper) Sweep(ctx context.Context) int {
	now := h.now()
	removed, err := h.sweeper.Sweep(ctx, now.Add(-h.config.Retention), now.Add(-h.config.MaxSessionAge))
	if err != nil {
		h.log.Warn("session sweep failed", zap.Error(err))
	}
	if removed > 0 {
		h.log.Debug("swept import sessions", zap.Int("removed", removed))
	}
	return removed
}

func (h *Housekeeper) enqueueAuditCleanup() {
	task := tasks.CleanupAuditEventsTask{RetentionDays: h.config.AuditRetentionDays}
	if _, err := h.queue.Add(task).Save(); err != nil {
		h.log.Warn("failed to enqueue audit cleanup", zap.Error(err))
	}
}
