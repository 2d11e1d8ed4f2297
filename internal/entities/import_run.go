package entities

import (
	"time"
)

type ImportRunStatus string

const (
	ImportRunStatusRunning   ImportRunStatus = "running"
	ImportRunStatusCompleted ImportRunStatus = "completed"
	ImportRunStatusPartial   ImportRunStatus = "partial"  // Finished with failed rows or batches
	ImportRunStatusRejected  ImportRunStatus = "rejected" // Terminal validation failure
)

// ImportRun is the persisted history record of an import session.
type ImportRun struct {
	ID                 uint            `gorm:"primaryKey" json:"id"`
	SessionID          string          `gorm:"size:64;uniqueIndex" json:"session_id"`
	Filename           string          `gorm:"size:512" json:"filename"`
	Status             ImportRunStatus `gorm:"size:20;index" json:"status"`
	Total              int             `json:"total"`
	Imported           int             `json:"imported"`
	Failed             int             `json:"failed"`
	CreatedSpecialties int             `json:"created_specialties"`
	CreatedLectures    int             `json:"created_lectures"`
	WithImages         int             `json:"with_images"`
	Message            string          `gorm:"size:512" json:"message,omitempty"`
	Errors             []string        `gorm:"serializer:json" json:"errors,omitempty"`
	StartedAt          time.Time       `json:"started_at"`
	CompletedAt        *time.Time      `json:"completed_at,omitempty"`
}

func (ImportRun) TableName() string {
	return "import_runs"
}
