// Package importsession keeps the live progress state of question imports
// and exposes it to progress stream readers.
//
// One writer (the import pipeline) mutates a session through a Publisher
// while any number of readers poll it with Watch. Sessions are short-lived:
// a completed session is evicted shortly after its stream ends.
package importsession

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/mrlokans/qbank/internal/entities"
)

var (
	ErrNotFound  = errors.New("import session not found")
	ErrExists    = errors.New("import session is already active")
	ErrCompleted = errors.New("import session is already complete")
)

// Store holds import sessions keyed by id. Implementations must make each
// operation atomic for a single session; operations on different sessions
// must not block each other.
type Store interface {
	// Create stores a new session. It fails with ErrExists when a session
	// with the same id is still running; a completed one is replaced.
	Create(ctx context.Context, session *entities.ImportSession) error
	// Get returns a copy of the session or ErrNotFound.
	Get(ctx context.Context, id string) (*entities.ImportSession, error)
	// Update applies fn to a copy of the session and stores the result
	// unless fn returns an error.
	Update(ctx context.Context, id string, fn func(*entities.ImportSession) error) error
	// Delete removes the session. Deleting an unknown id is not an error.
	Delete(ctx context.Context, id string) error
}

// Sweeper is implemented by stores that can drop expired sessions in bulk.
type Sweeper interface {
	// Sweep removes sessions completed before completedBefore and sessions
	// not updated since staleBefore. It returns the number removed.
	Sweep(ctx context.Context, completedBefore, staleBefore time.Time) (int, error)
}

// NewID returns a fresh session id.
func NewID() string {
	return uuid.NewString()
}

func expired(s *entities.ImportSession, completedBefore, staleBefore time.Time) bool {
	if s.IsComplete() && s.CompletedAt != nil {
		return s.CompletedAt.Before(completedBefore)
	}
	return s.UpdatedAt.Before(staleBefore)
}
