package comparison

import (
	"strings"

	"github.com/google/uuid"
)

// MaxCompetitors per active run
const MaxCompetitors = 2

// MaxNameLength for a competitor display name
const MaxNameLength = 200

// Status enum for the competitor analysis lifecycle
type Status string

const (
	StatusPending   Status = "pending"
	StatusAnalyzing Status = "analyzing"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Competitor is one named rival within an active analysis run.
type Competitor struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Status      Status `json:"status"`
	Score       int    `json:"score"` // compliance percentage, set once completed
}

// Roster holds the competitors of the active run. Not safe for concurrent
// use; callers serialize access (the application service holds the lock).
type Roster struct {
	competitors []*Competitor
}

// Add registers a new competitor. Names are compared case-insensitively and
// are NOT trimmed: "Acme" and "acme " are distinct entries. At most
// MaxCompetitors may coexist.
func (r *Roster) Add(name, description string) (*Competitor, error) {
	if name == "" || len(name) > MaxNameLength {
		return nil, ErrInvalidCompetitorName
	}
	if len(r.competitors) >= MaxCompetitors {
		return nil, ErrCompetitorLimit
	}
	for _, c := range r.competitors {
		if strings.EqualFold(c.Name, name) {
			return nil, ErrDuplicateCompetitor
		}
	}
	c := &Competitor{
		ID:          uuid.New().String(),
		Name:        name,
		Description: description,
		Status:      StatusPending,
	}
	r.competitors = append(r.competitors, c)
	return c, nil
}

// Remove deletes a competitor by id.
func (r *Roster) Remove(id string) error {
	for i, c := range r.competitors {
		if c.ID == id {
			r.competitors = append(r.competitors[:i], r.competitors[i+1:]...)
			return nil
		}
	}
	return ErrCompetitorNotFound
}

// Clear empties the roster (analysis cleared or replaced).
func (r *Roster) Clear() {
	r.competitors = nil
}

// List returns a snapshot copy of the roster.
func (r *Roster) List() []Competitor {
	out := make([]Competitor, 0, len(r.competitors))
	for _, c := range r.competitors {
		out = append(out, *c)
	}
	return out
}

// Get returns the live entry for id, or ErrCompetitorNotFound.
func (r *Roster) Get(id string) (*Competitor, error) {
	for _, c := range r.competitors {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, ErrCompetitorNotFound
}

// Len reports the roster size.
func (r *Roster) Len() int { return len(r.competitors) }
