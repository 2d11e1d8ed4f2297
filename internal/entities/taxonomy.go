package entities

import (
	"time"
)

// Subject is a top-level curriculum grouping (a medical specialty).
type Subject struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"index;size:255;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	Lectures    []Lecture `gorm:"foreignKey:SubjectID" json:"lectures,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Lecture is a teaching unit under a Subject. Questions attach to lectures.
type Lecture struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	SubjectID   uint       `gorm:"index;not null" json:"subject_id"`
	Title       string     `gorm:"index;size:255;not null" json:"title"`
	Description string     `gorm:"type:text" json:"description,omitempty"`
	Subject     Subject    `gorm:"foreignKey:SubjectID" json:"-"`
	Questions   []Question `gorm:"foreignKey:LectureID" json:"-"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
