package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrlokans/qbank/internal/entities"
	"github.com/mrlokans/qbank/internal/importsession"
)

type ProgressController struct {
	store     importsession.Store
	evictor   importsession.Evictor
	interval  time.Duration
	retention time.Duration
}

func NewProgressController(store importsession.Store, evictor importsession.Evictor, interval, retention time.Duration) *ProgressController {
	if retention <= 0 {
		retention = importsession.DefaultRetention
	}
	return &ProgressController{
		store:     store,
		evictor:   evictor,
		interval:  interval,
		retention: retention,
	}
}

// Stream handles GET /api/admin/questions/import/progress?session_id=
//
// Each server-sent event carries a progress snapshot. The stream ends after
// the complete snapshot, and the session is then scheduled for deletion. An
// unknown session closes the stream without events.
func (pc *ProgressController) Stream(c *gin.Context) {
	id := c.Query("session_id")
	if id == "" {
		respondBadRequest(c, "session_id is required")
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	completed := false
	err := importsession.Watch(c.Request.Context(), pc.store, id, pc.interval, func(evt importsession.Event) error {
		c.SSEvent("message", evt)
		c.Writer.Flush()
		completed = evt.Phase == entities.ImportPhaseComplete
		return nil
	})
	if err != nil && !errors.Is(err, importsession.ErrNotFound) && !errors.Is(err, context.Canceled) {
		zap.L().Warn("progress stream ended", zap.String("session_id", id), zap.Error(err))
	}

	if completed && pc.evictor != nil {
		if err := pc.evictor.ScheduleEviction(context.WithoutCancel(c.Request.Context()), id, pc.retention); err != nil {
			zap.L().Warn("failed to schedule session eviction", zap.String("session_id", id), zap.Error(err))
		}
	}
}
