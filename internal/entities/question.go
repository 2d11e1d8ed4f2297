package entities

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"gorm.io/gorm"
)

type QuestionType string

const (
	QuestionTypeSingleChoice         QuestionType = "single_choice"
	QuestionTypeOpenResponse         QuestionType = "open_response"
	QuestionTypeClinicalSingleChoice QuestionType = "clinical_single_choice"
	QuestionTypeClinicalOpenResponse QuestionType = "clinical_open_response"
)

// IsClinical reports whether questions of this type belong to a clinical case.
func (t QuestionType) IsClinical() bool {
	return t == QuestionTypeClinicalSingleChoice || t == QuestionTypeClinicalOpenResponse
}

type Question struct {
	ID             uint         `gorm:"primaryKey" json:"id"`
	LectureID      uint         `gorm:"index;not null" json:"lecture_id"`
	Type           QuestionType `gorm:"size:32;not null" json:"type"`
	Text           string       `gorm:"type:text;not null" json:"text"`
	Options        []string     `gorm:"serializer:json" json:"options,omitempty"`
	CorrectAnswers []string     `gorm:"serializer:json" json:"correct_answers,omitempty"`
	Explanation    string       `gorm:"type:text" json:"explanation,omitempty"`
	Number         *int         `json:"number,omitempty"`
	Session        string       `gorm:"size:255" json:"session,omitempty"` // Exam sitting tag, e.g. "Session 2022"

	MediaURL  string `gorm:"size:2048" json:"media_url,omitempty"`
	MediaType string `gorm:"size:64" json:"media_type,omitempty"`

	// Clinical case fields
	CaseNumber         *int   `gorm:"index" json:"case_number,omitempty"`
	CaseText           string `gorm:"type:text" json:"case_text,omitempty"`
	CaseQuestionNumber *int   `json:"case_question_number,omitempty"`

	// Fingerprint identifies a question within its lecture; bulk inserts skip
	// rows that collide on it.
	Fingerprint string `gorm:"uniqueIndex;size:64;not null" json:"-"`

	Lecture   Lecture   `gorm:"foreignKey:LectureID" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ComputeFingerprint derives the uniqueness key from the lecture, type, case
// position and text of the question.
func (q *Question) ComputeFingerprint() string {
	h := sha256.New()
	fmt.Fprintf(h, "%d|%s|%s|%s|%s|%s", q.LectureID, q.Type, intKey(q.Number), intKey(q.CaseNumber), intKey(q.CaseQuestionNumber), q.Text)
	return hex.EncodeToString(h.Sum(nil))
}

// BeforeCreate fills in the fingerprint when the caller did not.
func (q *Question) BeforeCreate(tx *gorm.DB) error {
	if q.Fingerprint == "" {
		q.Fingerprint = q.ComputeFingerprint()
	}
	return nil
}

func intKey(v *int) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *v)
}
