// Package taxonomy resolves spreadsheet subject and lecture names onto the
// stored curriculum, creating missing entries during an import run.
package taxonomy

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/mrlokans/qbank/internal/entities"
)

// Snapshot is the in-memory view of subjects and lectures used for one import
// run. Order is insertion order and is never re-sorted, so the first match
// is deterministic.
type Snapshot struct {
	subjects []entities.Subject
	lectures []entities.Lecture
}

// NewSnapshot copies the given subjects and lectures into a snapshot.
func NewSnapshot(subjects []entities.Subject, lectures []entities.Lecture) *Snapshot {
	return &Snapshot{
		subjects: append([]entities.Subject(nil), subjects...),
		lectures: append([]entities.Lecture(nil), lectures...),
	}
}

// Subjects returns the subjects in snapshot order.
func (s *Snapshot) Subjects() []entities.Subject { return s.subjects }

// Lectures returns the lectures in snapshot order.
func (s *Snapshot) Lectures() []entities.Lecture { return s.lectures }

// AddSubject appends a subject created during the run.
func (s *Snapshot) AddSubject(subject entities.Subject) {
	s.subjects = append(s.subjects, subject)
}

// AddLecture appends a lecture created during the run.
func (s *Snapshot) AddLecture(lecture entities.Lecture) {
	s.lectures = append(s.lectures, lecture)
}

// MatchSubject returns the first subject whose name contains, or is contained
// by, name. Comparison is case-insensitive.
func (s *Snapshot) MatchSubject(name string) (entities.Subject, bool) {
	needle := fold(name)
	for _, subject := range s.subjects {
		if overlaps(fold(subject.Name), needle) {
			return subject, true
		}
	}
	return entities.Subject{}, false
}

// MatchLecture returns the first lecture of subjectID whose title contains, or
// is contained by, title. Comparison is case-insensitive.
func (s *Snapshot) MatchLecture(subjectID uint, title string) (entities.Lecture, bool) {
	needle := fold(title)
	for _, lecture := range s.lectures {
		if lecture.SubjectID != subjectID {
			continue
		}
		if overlaps(fold(lecture.Title), needle) {
			return lecture, true
		}
	}
	return entities.Lecture{}, false
}

// Match resolves a subject/lecture pair. The lecture is only searched under
// the first matching subject.
func (s *Snapshot) Match(subjectName, lectureTitle string) (entities.Lecture, bool) {
	subject, ok := s.MatchSubject(subjectName)
	if !ok {
		return entities.Lecture{}, false
	}
	return s.MatchLecture(subject.ID, lectureTitle)
}

// SubjectNamed returns the subject whose name equals name ignoring case.
func (s *Snapshot) SubjectNamed(name string) (entities.Subject, bool) {
	needle := fold(strings.TrimSpace(name))
	for _, subject := range s.subjects {
		if fold(strings.TrimSpace(subject.Name)) == needle {
			return subject, true
		}
	}
	return entities.Subject{}, false
}

func overlaps(a, b string) bool {
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// fold applies Unicode case folding. A fresh Caser is used per call since
// Casers keep state.
func fold(s string) string {
	return cases.Fold().String(s)
}
