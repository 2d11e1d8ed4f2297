// Package taxonomy provides database operations for subjects and lectures.
//
// # Usage
//
//	repo := taxonomy.NewRepository(db)
//	subjects, err := repo.ListSubjects(ctx)
package taxonomy

import (
	"context"

	"gorm.io/gorm"

	"github.com/mrlokans/qbank/internal/entities"
)

// Repository handles subject and lecture persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new taxonomy repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListSubjects returns all subjects in insertion order.
func (r *Repository) ListSubjects(ctx context.Context) ([]entities.Subject, error) {
	var subjects []entities.Subject
	err := r.db.WithContext(ctx).Order("id ASC").Find(&subjects).Error
	return subjects, err
}

// ListLectures returns all lectures in insertion order.
func (r *Repository) ListLectures(ctx context.Context) ([]entities.Lecture, error) {
	var lectures []entities.Lecture
	err := r.db.WithContext(ctx).Order("id ASC").Find(&lectures).Error
	return lectures, err
}

// ListSubjectsWithLectures returns subjects with their lectures preloaded.
func (r *Repository) ListSubjectsWithLectures(ctx context.Context) ([]entities.Subject, error) {
	var subjects []entities.Subject
	err := r.db.WithContext(ctx).Preload("Lectures", func(db *gorm.DB) *gorm.DB {
		return db.Order("title ASC")
	}).Order("name ASC").Find(&subjects).Error
	return subjects, err
}

// CreateSubject inserts a subject and fills in its generated ID.
func (r *Repository) CreateSubject(ctx context.Context, subject *entities.Subject) error {
	return r.db.WithContext(ctx).Create(subject).Error
}

// CreateLecture inserts a lecture and fills in its generated ID.
func (r *Repository) CreateLecture(ctx context.Context, lecture *entities.Lecture) error {
	return r.db.WithContext(ctx).Omit("Subject").Create(lecture).Error
}

// GetSubjectByID retrieves a subject.
func (r *Repository) GetSubjectByID(ctx context.Context, id uint) (*entities.Subject, error) {
	var subject entities.Subject
	if err := r.db.WithContext(ctx).First(&subject, id).Error; err != nil {
		return nil, err
	}
	return &subject, nil
}

// GetLectureByID retrieves a lecture.
func (r *Repository) GetLectureByID(ctx context.Context, id uint) (*entities.Lecture, error) {
	var lecture entities.Lecture
	if err := r.db.WithContext(ctx).First(&lecture, id).Error; err != nil {
		return nil, err
	}
	return &lecture, nil
}
