package taxonomy

import (
	"context"
	"fmt"

	"github.com/mrlokans/qbank/internal/entities"
)

const (
	DefaultSubjectDescription = "Created automatically during question import"
	DefaultLectureDescription = "Created automatically during question import"
)

// Store persists taxonomy entries created during a run.
type Store interface {
	CreateSubject(ctx context.Context, subject *entities.Subject) error
	CreateLecture(ctx context.Context, lecture *entities.Lecture) error
}

// Resolution describes how a row's subject/lecture pair was resolved.
type Resolution struct {
	Lecture        entities.Lecture
	Subject        entities.Subject
	Matched        bool // found in the snapshot by the matcher
	Reused         bool // created earlier in this run for the same pair
	CreatedSubject bool
	CreatedLecture bool
}

type pairKey struct {
	subject string
	lecture string
}

// Resolver matches rows against a snapshot and creates missing subjects and
// lectures. A Resolver belongs to a single import run and is not safe for
// concurrent use.
type Resolver struct {
	store    Store
	snapshot *Snapshot
	created  map[pairKey]Resolution

	createdSubjects int
	createdLectures int
}

// NewResolver creates a resolver over snapshot. Created entries are appended
// to the snapshot.
func NewResolver(store Store, snapshot *Snapshot) *Resolver {
	return &Resolver{
		store:    store,
		snapshot: snapshot,
		created:  make(map[pairKey]Resolution),
	}
}

// Resolve returns the lecture for the pair, creating it (and its subject if
// needed) when the matcher finds nothing. A pair created earlier in the run
// is reused without touching the store. On a persistence error the pair is
// not recorded, so a later row retries the creation. When the subject was
// created but the lecture write failed, the returned Resolution still reports
// the subject alongside the error.
func (r *Resolver) Resolve(ctx context.Context, subjectName, lectureTitle string) (Resolution, error) {
	if lecture, ok := r.snapshot.Match(subjectName, lectureTitle); ok {
		subject, _ := r.subjectByID(lecture.SubjectID)
		return Resolution{Lecture: lecture, Subject: subject, Matched: true}, nil
	}

	key := pairKey{subject: subjectName, lecture: lectureTitle}
	if res, ok := r.created[key]; ok {
		return Resolution{Lecture: res.Lecture, Subject: res.Subject, Reused: true}, nil
	}

	res := Resolution{}
	subject, ok := r.snapshot.SubjectNamed(subjectName)
	if !ok {
		subject = entities.Subject{Name: subjectName, Description: DefaultSubjectDescription}
		if err := r.store.CreateSubject(ctx, &subject); err != nil {
			return Resolution{}, fmt.Errorf("create subject %q: %w", subjectName, err)
		}
		r.snapshot.AddSubject(subject)
		r.createdSubjects++
		res.CreatedSubject = true
	}

	lecture := entities.Lecture{SubjectID: subject.ID, Title: lectureTitle, Description: DefaultLectureDescription}
	if err := r.store.CreateLecture(ctx, &lecture); err != nil {
		res.Subject = subject
		return res, fmt.Errorf("create lecture %q under %q: %w", lectureTitle, subject.Name, err)
	}
	r.snapshot.AddLecture(lecture)
	r.createdLectures++
	res.CreatedLecture = true

	res.Subject = subject
	res.Lecture = lecture
	r.created[key] = res
	return res, nil
}

// CreatedSubjects is the number of subjects created by this resolver.
func (r *Resolver) CreatedSubjects() int { return r.createdSubjects }

// CreatedLectures is the number of lectures created by this resolver.
func (r *Resolver) CreatedLectures() int { return r.createdLectures }

func (r *Resolver) subjectByID(id uint) (entities.Subject, bool) {
	for _, s := range r.snapshot.subjects {
		if s.ID == id {
			return s, true
		}
	}
	return entities.Subject{}, false
}
