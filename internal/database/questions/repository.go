// Package questions provides database operations for imported questions.
package questions

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/qbank/internal/entities"
)

// Repository handles question persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new questions repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// BulkInsert inserts the questions in one statement, silently skipping rows
// whose fingerprint already exists. Returns the number of rows written.
func (r *Repository) BulkInsert(ctx context.Context, questions []entities.Question) (int64, error) {
	if len(questions) == 0 {
		return 0, nil
	}
	for i := range questions {
		if questions[i].Fingerprint == "" {
			questions[i].Fingerprint = questions[i].ComputeFingerprint()
		}
	}
	result := r.db.WithContext(ctx).
		Omit("Lecture").
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "fingerprint"}}, DoNothing: true}).
		Create(&questions)
	return result.RowsAffected, result.Error
}

// ListByLecture returns the questions of a lecture ordered for display.
func (r *Repository) ListByLecture(ctx context.Context, lectureID uint) ([]entities.Question, error) {
	var questions []entities.Question
	err := r.db.WithContext(ctx).
		Where("lecture_id = ?", lectureID).
		Order("case_number ASC, case_question_number ASC, number ASC, id ASC").
		Find(&questions).Error
	return questions, err
}

// CountByLecture returns question counts keyed by lecture ID.
func (r *Repository) CountByLecture(ctx context.Context) (map[uint]int64, error) {
	type row struct {
		LectureID uint
		Count     int64
	}
	var rows []row
	err := r.db.WithContext(ctx).Model(&entities.Question{}).
		Select("lecture_id, COUNT(*) AS count").
		Group("lecture_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[uint]int64, len(rows))
	for _, r := range rows {
		counts[r.LectureID] = r.Count
	}
	return counts, nil
}
