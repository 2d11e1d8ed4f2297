package importsession

import (
	"context"
	"sync"
	"time"

	"github.com/mrlokans/qbank/internal/entities"
)

type memoryEntry struct {
	mu      sync.Mutex
	session *entities.ImportSession
}

// MemoryStore is a process-local Store. Contents are lost on restart.
type MemoryStore struct {
	entries sync.Map // id -> *memoryEntry
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Create(_ context.Context, session *entities.ImportSession) error {
	fresh := &memoryEntry{session: session.Clone()}
	for {
		actual, loaded := m.entries.LoadOrStore(session.ID, fresh)
		if !loaded {
			return nil
		}
		old := actual.(*memoryEntry)
		old.mu.Lock()
		complete := old.session.IsComplete()
		old.mu.Unlock()
		if !complete {
			return ErrExists
		}
		if m.entries.CompareAndSwap(session.ID, old, fresh) {
			return nil
		}
	}
}

func (m *MemoryStore) Get(_ context.Context, id string) (*entities.ImportSession, error) {
	e, ok := m.load(id)
	if !ok {
		return nil, ErrNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.Clone(), nil
}

func (m *MemoryStore) Update(_ context.Context, id string, fn func(*entities.ImportSession) error) error {
	e, ok := m.load(id)
	if !ok {
		return ErrNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	next := e.session.Clone()
	if err := fn(next); err != nil {
		return err
	}
	e.session = next
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.entries.Delete(id)
	return nil
}

func (m *MemoryStore) Sweep(_ context.Context, completedBefore, staleBefore time.Time) (int, error) {
	removed := 0
	m.entries.Range(func(key, value any) bool {
		e := value.(*memoryEntry)
		e.mu.Lock()
		drop := expired(e.session, completedBefore, staleBefore)
		e.mu.Unlock()
		if drop && m.entries.CompareAndDelete(key, e) {
			removed++
		}
		return true
	})
	return removed, nil
}

// Len returns the number of stored sessions.
func (m *MemoryStore) Len() int {
	n := 0
	m.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

func (m *MemoryStore) load(id string) (*memoryEntry, bool) {
	v, ok := m.entries.Load(id)
	if !ok {
		return nil, false
	}
	return v.(*memoryEntry), true
}
