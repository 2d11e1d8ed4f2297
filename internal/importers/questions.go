package importers

import (
	"github.com/mrlokans/qbank/internal/entities"
	"github.com/mrlokans/qbank/internal/media"
	"github.com/mrlokans/qbank/internal/sheets"
)

// BuildQuestion converts a validated row into a question under lectureID.
// An image link in the question text is moved into the media fields.
func BuildQuestion(row sheets.Row, lectureID uint) entities.Question {
	extracted := media.Extract(row.Text)

	q := entities.Question{
		LectureID:      lectureID,
		Type:           row.Kind.QuestionType(),
		Text:           extracted.Text,
		Explanation:    row.Explanation,
		Session:        row.Source,
		MediaURL:       extracted.URL,
		MediaType:      extracted.MIMEType,
		CorrectAnswers: row.CorrectAnswers,
	}
	if len(row.Options) > 0 {
		q.Options = row.Options
	}

	if row.Kind.IsClinical() {
		q.CaseNumber = row.CaseNumber
		q.CaseText = row.CaseText
		q.CaseQuestionNumber = row.Number
	} else {
		q.Number = row.Number
	}

	q.Fingerprint = q.ComputeFingerprint()
	return q
}
