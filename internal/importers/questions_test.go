package importers

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mrlokans/qbank/internal/entities"
	"github.com/mrlokans/qbank/internal/sheets"
)

func intPtr(n int) *int { return &n }

func TestBuildQuestion_SingleChoiceWithMedia(t *testing.T) {
	row := sheets.Row{
		Kind:           sheets.KindSingleChoice,
		Text:           "Identify the rhythm. https://img.test/ecg.png",
		Options:        []string{"AF", "Flutter"},
		CorrectAnswers: []string{"A"},
		Number:         intPtr(3),
		Source:         "Session 2023",
		Explanation:    "Irregularly irregular",
	}

	q := BuildQuestion(row, 7)

	assert.Equal(t, uint(7), q.LectureID)
	assert.Equal(t, entities.QuestionTypeSingleChoice, q.Type)
	assert.Equal(t, "Identify the rhythm.", q.Text)
	assert.Equal(t, "https://img.test/ecg.png", q.MediaURL)
	assert.Equal(t, "image/png", q.MediaType)
	assert.Equal(t, []string{"AF", "Flutter"}, q.Options)
	assert.Equal(t, 3, *q.Number)
	assert.Nil(t, q.CaseQuestionNumber)
	assert.Equal(t, "Session 2023", q.Session)
	assert.NotEmpty(t, q.Fingerprint)
}

func TestBuildQuestion_Clinical(t *testing.T) {
	row := sheets.Row{
		Kind:           sheets.KindClinicalOpenResponse,
		Text:           "Diagnosis?",
		CorrectAnswers: []string{"Pneumonia"},
		Number:         intPtr(2),
		CaseNumber:     intPtr(5),
		CaseText:       "A 60 year old smoker...",
	}

	q := BuildQuestion(row, 1)

	assert.Equal(t, entities.QuestionTypeClinicalOpenResponse, q.Type)
	assert.Nil(t, q.Number)
	assert.Equal(t, 2, *q.CaseQuestionNumber)
	assert.Equal(t, 5, *q.CaseNumber)
	assert.Nil(t, q.Options)
	assert.Empty(t, q.MediaURL)
}
