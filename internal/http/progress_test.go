package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/qbank/internal/entities"
	"github.com/mrlokans/qbank/internal/importsession"
)

type recordingEvictor struct {
	mu    sync.Mutex
	ids   []string
	after []time.Duration
}

func (e *recordingEvictor) ScheduleEviction(_ context.Context, id string, after time.Duration) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ids = append(e.ids, id)
	e.after = append(e.after, after)
	return nil
}

func streamProgress(store importsession.Store, evictor importsession.Evictor, target string) *httptest.ResponseRecorder {
	router := gin.New()
	router.GET("/progress", NewProgressController(store, evictor, 5*time.Millisecond, 30*time.Second).Stream)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	router.ServeHTTP(w, req)
	return w
}

func TestProgressController_Stream(t *testing.T) {
	ctx := context.Background()

	t.Run("streams until complete and schedules eviction", func(t *testing.T) {
		store := importsession.NewMemoryStore()
		publisher := importsession.NewPublisher(store, 0, nil)
		require.NoError(t, publisher.Start(ctx, "s-1", "Validating file"))

		go func() {
			time.Sleep(20 * time.Millisecond)
			_ = publisher.Update(ctx, "s-1", 50, entities.ImportPhaseImporting, "Half way", "batch 1 done")
			time.Sleep(20 * time.Millisecond)
			_ = publisher.Complete(ctx, "s-1", "Imported 2 questions", entities.ImportStats{Total: 2, Imported: 2})
		}()

		evictor := &recordingEvictor{}
		w := streamProgress(store, evictor, "/progress?session_id=s-1")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))

		body := w.Body.String()
		assert.Contains(t, body, "event:message")
		assert.Contains(t, body, `"phase":"validating"`)
		assert.Contains(t, body, `"phase":"complete"`)
		assert.Contains(t, body, `"imported":2`)
		assert.Equal(t, 1, strings.Count(body, `"phase":"complete"`), "stream ends after the complete event")

		assert.Equal(t, []string{"s-1"}, evictor.ids)
		assert.Equal(t, []time.Duration{30 * time.Second}, evictor.after)
	})

	t.Run("unknown session closes without events", func(t *testing.T) {
		evictor := &recordingEvictor{}
		w := streamProgress(importsession.NewMemoryStore(), evictor, "/progress?session_id=nope")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotContains(t, w.Body.String(), "event:")
		assert.Empty(t, evictor.ids)
	})

	t.Run("requires a session id", func(t *testing.T) {
		w := streamProgress(importsession.NewMemoryStore(), nil, "/progress")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
