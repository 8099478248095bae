package memory

import (
	"context"
	"sync"

	"github.com/datametrics/matchdesk/internal/domain/assignment"
	"github.com/datametrics/matchdesk/internal/domain/fixture"
	"github.com/datametrics/matchdesk/internal/domain/planner"
	"github.com/datametrics/matchdesk/internal/domain/player"
)

// SessionRepository keeps one planning session per user in memory.
type SessionRepository struct {
	mu    sync.RWMutex
	items map[string]planner.Session
}

func NewSessionRepository() *SessionRepository {
	return &SessionRepository{items: make(map[string]planner.Session)}
}

func (r *SessionRepository) Get(_ context.Context, userID string) (planner.Session, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[userID]
	if !ok {
		return planner.Session{}, false, nil
	}
	return cloneSession(item), true, nil
}

func (r *SessionRepository) Save(_ context.Context, session planner.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[session.UserID] = cloneSession(session)
	return nil
}

func (r *SessionRepository) Delete(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.items, userID)
	return nil
}

func cloneSession(item planner.Session) planner.Session {
	copied := item
	copied.Players = append([]player.Player(nil), item.Players...)

	copied.Fixtures = make([]fixture.Aggregated, len(item.Fixtures))
	for i, f := range item.Fixtures {
		cloned := f
		cloned.ParticipantNames = append([]string(nil), f.ParticipantNames...)
		cloned.Participants = append([]player.Player(nil), f.Participants...)
		cloned.RoundMatches = append([]fixture.Sibling(nil), f.RoundMatches...)
		cloned.GameweekMatches = append([]fixture.Sibling(nil), f.GameweekMatches...)
		cloned.SeasonMatches = append([]fixture.Sibling(nil), f.SeasonMatches...)
		copied.Fixtures[i] = cloned
	}

	copied.Assignments = make(map[string]assignment.Assignment, len(item.Assignments))
	for key, entry := range item.Assignments {
		copied.Assignments[key] = entry
	}
	copied.DeliveryOverrides = make(map[int64]string, len(item.DeliveryOverrides))
	for matchID, date := range item.DeliveryOverrides {
		copied.DeliveryOverrides[matchID] = date
	}
	return copied
}
