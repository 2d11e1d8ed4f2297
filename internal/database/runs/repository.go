// Package runs provides database operations for import run history.
//
// # Usage
//
//	repo := runs.NewRepository(db)
//	err := repo.StartRun(ctx, sessionID, "questions.xlsx")
//	err = repo.CompleteRun(ctx, sessionID, status, stats, "Import complete")
package runs

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/qbank/internal/entities"
)

// maxStoredErrors bounds the error list persisted with a run.
const maxStoredErrors = 100

// Repository handles import run persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new runs repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// StartRun creates or resets the run record for a session.
func (r *Repository) StartRun(ctx context.Context, sessionID, filename string) error {
	var run entities.ImportRun
	result := r.db.WithContext(ctx).Where("session_id = ?", sessionID).First(&run)

	now := time.Now()
	if result.Error == gorm.ErrRecordNotFound {
		run = entities.ImportRun{
			SessionID: sessionID,
			Filename:  filename,
			Status:    entities.ImportRunStatusRunning,
			StartedAt: now,
		}
		return r.db.WithContext(ctx).Create(&run).Error
	} else if result.Error != nil {
		return result.Error
	}

	// Session ids may be reused once the previous run was evicted
	run = entities.ImportRun{
		ID:        run.ID,
		SessionID: sessionID,
		Filename:  filename,
		Status:    entities.ImportRunStatusRunning,
		StartedAt: now,
	}
	return r.db.WithContext(ctx).Save(&run).Error
}

// CompleteRun stores the terminal state of a run.
func (r *Repository) CompleteRun(ctx context.Context, sessionID string, status entities.ImportRunStatus, stats entities.ImportStats, message string) error {
	now := time.Now()
	errs := stats.Errors
	if len(errs) > maxStoredErrors {
		errs = errs[:maxStoredErrors]
	}
	run := entities.ImportRun{
		Status:             status,
		Total:              stats.Total,
		Imported:           stats.Imported,
		Failed:             stats.Failed,
		CreatedSpecialties: stats.CreatedSpecialties,
		CreatedLectures:    stats.CreatedLectures,
		WithImages:         stats.QuestionsWithImages,
		Message:            message,
		Errors:             errs,
		CompletedAt:        &now,
	}
	return r.db.WithContext(ctx).Model(&entities.ImportRun{}).
		Where("session_id = ?", sessionID).
		Select("status", "total", "imported", "failed", "created_specialties", "created_lectures", "with_images", "message", "errors", "completed_at").
		Updates(&run).Error
}

// GetRun retrieves the run for a session.
func (r *Repository) GetRun(ctx context.Context, sessionID string) (*entities.ImportRun, error) {
	var run entities.ImportRun
	if err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).First(&run).Error; err != nil {
		return nil, err
	}
	return &run, nil
}

// ListRecent returns the most recent runs, newest first.
func (r *Repository) ListRecent(ctx context.Context, limit int) ([]entities.ImportRun, error) {
	if limit <= 0 {
		limit = 20
	}
	var list []entities.ImportRun
	err := r.db.WithContext(ctx).Order("started_at DESC").Limit(limit).Find(&list).Error
	return list, err
}
