package entities

import "time"

// ImportPhase is the state of an import session. Phases only move forward:
// validating -> importing -> complete.
type ImportPhase string

const (
	ImportPhaseValidating ImportPhase = "validating"
	ImportPhaseImporting  ImportPhase = "importing"
	ImportPhaseComplete   ImportPhase = "complete"
)

var phaseOrder = map[ImportPhase]int{
	ImportPhaseValidating: 0,
	ImportPhaseImporting:  1,
	ImportPhaseComplete:   2,
}

// Before reports whether p comes strictly before other in the lifecycle.
func (p ImportPhase) Before(other ImportPhase) bool {
	return phaseOrder[p] < phaseOrder[other]
}

// ImportStats is the terminal summary of an import run.
type ImportStats struct {
	Total               int      `json:"total"`
	Imported            int      `json:"imported"`
	Failed              int      `json:"failed"`
	CreatedSpecialties  int      `json:"createdSpecialties"`
	CreatedLectures     int      `json:"createdLectures"`
	QuestionsWithImages int      `json:"questionsWithImages"`
	Errors              []string `json:"errors,omitempty"`
}

// ImportSession is the live progress record of one upload. It is kept in the
// session store only, never in the database.
type ImportSession struct {
	ID          string       `json:"id"`
	Progress    float64      `json:"progress"`
	Phase       ImportPhase  `json:"phase"`
	Message     string       `json:"message"`
	Logs        []string     `json:"logs"`
	Stats       *ImportStats `json:"stats,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`
}

// Clone returns a deep copy safe to hand to readers.
func (s *ImportSession) Clone() *ImportSession {
	if s == nil {
		return nil
	}
	c := *s
	c.Logs = make([]string, len(s.Logs))
	copy(c.Logs, s.Logs)
	if s.Stats != nil {
		st := *s.Stats
		st.Errors = append([]string(nil), s.Stats.Errors...)
		c.Stats = &st
	}
	if s.CompletedAt != nil {
		t := *s.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}

// IsComplete reports whether the session reached its terminal phase.
func (s *ImportSession) IsComplete() bool {
	return s.Phase == ImportPhaseComplete
}
