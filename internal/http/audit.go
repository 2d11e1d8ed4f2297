package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/qbank/internal/entities"
)

// AuditReader reads the audit trail. *audit.Service implements it.
type AuditReader interface {
	GetEvents(limit, offset int) ([]entities.AuditEvent, int64, error)
	GetEventsBySession(sessionID string, limit, offset int) ([]entities.AuditEvent, int64, error)
}

type AuditController struct {
	auditService AuditReader
}

func NewAuditController(auditService AuditReader) *AuditController {
	return &AuditController{
		auditService: auditService,
	}
}

// ListEvents returns audit events, newest first
// GET /api/admin/audit?session_id=&limit=&offset=
func (ac *AuditController) ListEvents(c *gin.Context) {
	limit, offset := parsePagination(c, 25, 200)

	var events []entities.AuditEvent
	var total int64
	var err error

	if sessionID := c.Query("session_id"); sessionID != "" {
		events, total, err = ac.auditService.GetEventsBySession(sessionID, limit, offset)
	} else {
		events, total, err = ac.auditService.GetEvents(limit, offset)
	}
	if err != nil {
		respondInternalError(c, err, "list audit events")
		return
	}
	if events == nil {
		events = []entities.AuditEvent{}
	}

	c.JSON(http.StatusOK, PaginatedResponse{
		Data:    events,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: int64(offset+len(events)) < total,
	})
}
