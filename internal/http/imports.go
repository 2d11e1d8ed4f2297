package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mrlokans/qbank/internal/entities"
)

// RunLister reads the import history.
type RunLister interface {
	ListRecent(ctx context.Context, limit int) ([]entities.ImportRun, error)
	GetRun(ctx context.Context, sessionID string) (*entities.ImportRun, error)
}

type ImportHistoryController struct {
	runs RunLister
}

func NewImportHistoryController(runs RunLister) *ImportHistoryController {
	return &ImportHistoryController{runs: runs}
}

// List handles GET /api/admin/imports
func (hc *ImportHistoryController) List(c *gin.Context) {
	limit, _ := parsePagination(c, 20, 100)

	runs, err := hc.runs.ListRecent(c.Request.Context(), limit)
	if err != nil {
		respondInternalError(c, err, "list import runs")
		return
	}
	if runs == nil {
		runs = []entities.ImportRun{}
	}

	c.JSON(http.StatusOK, gin.H{"imports": runs})
}

// Get handles GET /api/admin/imports/:session_id
func (hc *ImportHistoryController) Get(c *gin.Context) {
	run, err := hc.runs.GetRun(c.Request.Context(), c.Param("session_id"))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondNotFound(c, "import")
		return
	}
	if err != nil {
		respondInternalError(c, err, "get import run")
		return
	}

	c.JSON(http.StatusOK, run)
}
