package usecase

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/datametrics/matchdesk/internal/domain/fixture"
	"github.com/datametrics/matchdesk/internal/domain/player"
	"github.com/datametrics/matchdesk/internal/domain/staff"
)

// stubProvider implements FixtureProvider with per-method hooks. Calling a
// method without a hook fails loudly, and calls counts every provider hit so
// tests can assert a method was never reached.
type stubProvider struct {
	calls int64

	searchPlayers   func(ctx context.Context, query string) ([]player.Player, error)
	playerDetail    func(ctx context.Context, playerID int64, details string) (player.Player, error)
	teamDetail      func(ctx context.Context, teamID int64) (string, string, error)
	playerFixtures  func(ctx context.Context, playerID int64, from, to time.Time) ([]fixture.Fixture, error)
	areas           func(ctx context.Context) (map[int64]string, error)
	competitionName func(ctx context.Context, competitionID int64) (string, error)
	seasonName      func(ctx context.Context, seasonID int64) (string, error)
	roundName       func(ctx context.Context, roundID int64) (string, error)
	seasonFixtures  func(ctx context.Context, seasonID int64) ([]fixture.Fixture, error)
}

func (s *stubProvider) callCount() int64 { return atomic.LoadInt64(&s.calls) }

func (s *stubProvider) SearchPlayers(ctx context.Context, query string) ([]player.Player, error) {
	atomic.AddInt64(&s.calls, 1)
	if s.searchPlayers == nil {
		return nil, fmt.Errorf("unexpected SearchPlayers call")
	}
	return s.searchPlayers(ctx, query)
}

func (s *stubProvider) PlayerDetail(ctx context.Context, playerID int64, details string) (player.Player, error) {
	atomic.AddInt64(&s.calls, 1)
	if s.playerDetail == nil {
		return player.Player{}, fmt.Errorf("unexpected PlayerDetail call")
	}
	return s.playerDetail(ctx, playerID, details)
}

func (s *stubProvider) TeamDetail(ctx context.Context, teamID int64) (string, string, error) {
	atomic.AddInt64(&s.calls, 1)
	if s.teamDetail == nil {
		return "", "", fmt.Errorf("unexpected TeamDetail call")
	}
	return s.teamDetail(ctx, teamID)
}

func (s *stubProvider) PlayerFixtures(ctx context.Context, playerID int64, from, to time.Time) ([]fixture.Fixture, error) {
	atomic.AddInt64(&s.calls, 1)
	if s.playerFixtures == nil {
		return nil, fmt.Errorf("unexpected PlayerFixtures call")
	}
	return s.playerFixtures(ctx, playerID, from, to)
}

func (s *stubProvider) Areas(ctx context.Context) (map[int64]string, error) {
	atomic.AddInt64(&s.calls, 1)
	if s.areas == nil {
		return nil, fmt.Errorf("unexpected Areas call")
	}
	return s.areas(ctx)
}

func (s *stubProvider) CompetitionName(ctx context.Context, competitionID int64) (string, error) {
	atomic.AddInt64(&s.calls, 1)
	if s.competitionName == nil {
		return "", fmt.Errorf("unexpected CompetitionName call")
	}
	return s.competitionName(ctx, competitionID)
}

func (s *stubProvider) SeasonName(ctx context.Context, seasonID int64) (string, error) {
	atomic.AddInt64(&s.calls, 1)
	if s.seasonName == nil {
		return "", fmt.Errorf("unexpected SeasonName call")
	}
	return s.seasonName(ctx, seasonID)
}

func (s *stubProvider) RoundName(ctx context.Context, roundID int64) (string, error) {
	atomic.AddInt64(&s.calls, 1)
	if s.roundName == nil {
		return "", fmt.Errorf("unexpected RoundName call")
	}
	return s.roundName(ctx, roundID)
}

func (s *stubProvider) SeasonFixtures(ctx context.Context, seasonID int64) ([]fixture.Fixture, error) {
	atomic.AddInt64(&s.calls, 1)
	if s.seasonFixtures == nil {
		return nil, fmt.Errorf("unexpected SeasonFixtures call")
	}
	return s.seasonFixtures(ctx, seasonID)
}

// stubDirectory implements StaffDirectory for assignment and export tests.
type stubDirectory struct {
	users []staff.User
	err   error
}

func (s *stubDirectory) ListAssignableUsers(context.Context) ([]staff.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	return append([]staff.User(nil), s.users...), nil
}
