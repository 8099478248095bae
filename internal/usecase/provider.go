package usecase

import (
	"context"
	"time"

	"github.com/datametrics/matchdesk/internal/domain/fixture"
	"github.com/datametrics/matchdesk/internal/domain/player"
)

// FixtureProvider is the slice of the sports-data gateway the services need.
type FixtureProvider interface {
	SearchPlayers(ctx context.Context, query string) ([]player.Player, error)
	PlayerDetail(ctx context.Context, playerID int64, details string) (player.Player, error)
	TeamDetail(ctx context.Context, teamID int64) (string, string, error)
	PlayerFixtures(ctx context.Context, playerID int64, from, to time.Time) ([]fixture.Fixture, error)
	Areas(ctx context.Context) (map[int64]string, error)
	CompetitionName(ctx context.Context, competitionID int64) (string, error)
	SeasonName(ctx context.Context, seasonID int64) (string, error)
	RoundName(ctx context.Context, roundID int64) (string, error)
	SeasonFixtures(ctx context.Context, seasonID int64) ([]fixture.Fixture, error)
}
