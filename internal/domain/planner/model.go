package planner

import (
	"github.com/datametrics/matchdesk/internal/domain/assignment"
	"github.com/datametrics/matchdesk/internal/domain/fixture"
	"github.com/datametrics/matchdesk/internal/domain/player"
)

// Session is one user's planning state: the selected players, the loaded
// fixture aggregate, and the assignment matrix over it. A new fixture load
// replaces the whole session; assignments and overrides against the old
// fixture set are abandoned, not migrated.
type Session struct {
	UserID            string
	Players           []player.Player
	Fixtures          []fixture.Aggregated
	Assignments       map[string]assignment.Assignment
	DeliveryOverrides map[int64]string // matchID -> YYYY-MM-DD
}

func NewSession(userID string) Session {
	return Session{
		UserID:            userID,
		Assignments:       make(map[string]assignment.Assignment),
		DeliveryOverrides: make(map[int64]string),
	}
}

// Assignment returns the stored entry or a zero default; never fails.
func (s Session) Assignment(key assignment.Key) assignment.Assignment {
	if s.Assignments == nil {
		return assignment.Assignment{}
	}
	return s.Assignments[key.String()]
}
