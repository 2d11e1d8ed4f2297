package audit

import (
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mrlokans/qbank/internal/database/audit"
	"github.com/mrlokans/qbank/internal/entities"
)

// Service provides high-level audit logging functionality.
type Service struct {
	repo    *audit.Repository
	log     *zap.Logger
	pending sync.WaitGroup
}

// NewService creates a new audit service.
func NewService(repo *audit.Repository, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{repo: repo, log: log}
}

// Log records a generic audit event.
func (s *Service) Log(event *entities.AuditEvent) error {
	return s.repo.LogEvent(event)
}

// LogAsync records an audit event in the background (non-blocking).
func (s *Service) LogAsync(event *entities.AuditEvent) {
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		if err := s.repo.LogEvent(event); err != nil {
			s.log.Warn("failed to log audit event", zap.String("action", event.Action), zap.Error(err))
		}
	}()
}

// Wait blocks until every pending LogAsync write finished.
func (s *Service) Wait() {
	s.pending.Wait()
}

// LogImport records the outcome of a workbook import.
func (s *Service) LogImport(sessionID, filename string, status entities.ImportRunStatus, stats entities.ImportStats, message string) {
	event := &entities.AuditEvent{
		EventType:   entities.AuditEventImport,
		Action:      "workbook_import",
		Description: truncate(message, 500),
		EntityType:  "question",
		SessionID:   sessionID,
		Status:      entities.AuditStatusSuccess,
	}

	metadata := map[string]any{
		"filename":             filename,
		"total":                stats.Total,
		"imported":             stats.Imported,
		"failed":               stats.Failed,
		"created_subjects":     stats.CreatedSpecialties,
		"created_lectures":     stats.CreatedLectures,
		"questions_with_media": stats.QuestionsWithImages,
	}
	if mdBytes, e := json.Marshal(metadata); e == nil {
		event.Metadata = string(mdBytes)
	}

	switch status {
	case entities.ImportRunStatusPartial:
		event.Status = entities.AuditStatusPartial
	case entities.ImportRunStatusRejected:
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(message, 500)
	}

	s.LogAsync(event)
}

// LogTaxonomyCreate records a subject or lecture created by an import.
func (s *Service) LogTaxonomyCreate(sessionID, entityType string, entityID uint, name string) {
	event := &entities.AuditEvent{
		EventType:   entities.AuditEventTaxonomyCreate,
		Action:      entityType + "_create",
		Description: truncate("Created "+entityType+": "+name, 500),
		EntityType:  entityType,
		EntityID:    &entityID,
		SessionID:   sessionID,
		Status:      entities.AuditStatusSuccess,
	}

	s.LogAsync(event)
}

// LogAuth records an admin authentication attempt.
func (s *Service) LogAuth(action, ipAddr string, success bool) {
	event := &entities.AuditEvent{
		EventType: entities.AuditEventAuth,
		Action:    action,
		IPAddress: ipAddr,
		Status:    entities.AuditStatusSuccess,
	}

	if !success {
		event.Status = entities.AuditStatusFailed
	}

	s.LogAsync(event)
}

// GetEvents retrieves paginated audit events.
func (s *Service) GetEvents(limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEvents(limit, offset)
}

// GetEventsBySession retrieves the audit trail of one import session.
func (s *Service) GetEventsBySession(sessionID string, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEventsBySession(sessionID, limit, offset)
}

// DeleteOldEvents removes events older than the specified duration.
func (s *Service) DeleteOldEvents(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	return s.repo.DeleteOldEvents(cutoff)
}

// truncate shortens a string to max length.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
