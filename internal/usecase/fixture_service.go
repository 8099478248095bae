package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/datametrics/matchdesk/internal/domain/fixture"
	"github.com/datametrics/matchdesk/internal/domain/planner"
	"github.com/datametrics/matchdesk/internal/domain/player"
	"github.com/datametrics/matchdesk/internal/platform/logging"
)

const maxSelectedPlayers = 12

// FixtureService loads, enriches, and aggregates fixtures for a user's
// selected players, and owns the resulting planning session.
type FixtureService struct {
	provider   FixtureProvider
	enrichment *EnrichmentService
	sessions   planner.Repository
	logger     *logging.Logger
}

func NewFixtureService(
	provider FixtureProvider,
	enrichment *EnrichmentService,
	sessions planner.Repository,
	logger *logging.Logger,
) *FixtureService {
	if logger == nil {
		logger = logging.Default()
	}
	return &FixtureService{
		provider:   provider,
		enrichment: enrichment,
		sessions:   sessions,
		logger:     logger,
	}
}

// LoadFixtures fans out one fetch per selected player and joins before
// aggregating. Any single player's failure fails the whole load: partial
// aggregates are never stored or returned. A successful load replaces the
// user's planning session, abandoning assignments made against the previous
// fixture set.
func (s *FixtureService) LoadFixtures(ctx context.Context, userID string, playerIDs []int64, from, to time.Time) ([]fixture.Aggregated, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FixtureService.LoadFixtures")
	defer span.End()

	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrUnauthorized)
	}
	if len(playerIDs) == 0 {
		return nil, fmt.Errorf("%w: select at least one player", ErrInvalidInput)
	}
	if len(playerIDs) > maxSelectedPlayers {
		return nil, fmt.Errorf("%w: at most %d players per load", ErrInvalidInput, maxSelectedPlayers)
	}
	if from.IsZero() || to.IsZero() || to.Before(from) {
		return nil, fmt.Errorf("%w: from/to window is invalid", ErrInvalidInput)
	}

	players := make([]player.Player, len(playerIDs))
	lists := make([][]fixture.Fixture, len(playerIDs))
	var mu sync.Mutex

	p := pool.New().WithErrors().WithContext(ctx).WithCancelOnError().WithMaxGoroutines(len(playerIDs))
	for i, playerID := range playerIDs {
		i, playerID := i, playerID
		p.Go(func(ctx context.Context) error {
			if playerID <= 0 {
				return fmt.Errorf("%w: player id must be greater than zero", ErrInvalidInput)
			}

			record, err := s.provider.PlayerDetail(ctx, playerID, "currentTeam")
			if err != nil {
				return fmt.Errorf("resolve player player_id=%d: %w", playerID, err)
			}

			fixtures, err := s.provider.PlayerFixtures(ctx, playerID, from, to)
			if err != nil {
				return fmt.Errorf("load fixtures player_id=%d: %w", playerID, err)
			}
			enriched := s.enrichment.Enrich(ctx, fixtures)

			mu.Lock()
			players[i] = record
			lists[i] = enriched
			mu.Unlock()
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}

	aggregated, skipped := mergeFixtureLists(lists, players)
	if skipped > 0 {
		s.logger.WarnContext(ctx, "fixtures without match id skipped during aggregation", "count", skipped)
	}

	session := planner.NewSession(userID)
	session.Players = players
	session.Fixtures = aggregated
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save planning session: %w", err)
	}

	return aggregated, nil
}

// Fixtures returns the current session aggregate without touching the
// provider.
func (s *FixtureService) Fixtures(ctx context.Context, userID string) ([]fixture.Aggregated, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FixtureService.Fixtures")
	defer span.End()

	session, ok, err := s.sessions.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get planning session: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: no fixtures loaded yet", ErrNotFound)
	}
	return session.Fixtures, nil
}

// mergeFixtureLists deduplicates per-player fixture lists on match id. The
// first occurrence seeds the aggregate; later occurrences only append the
// owner's display name and record when that name is absent (a player can
// appear twice through duplicate provider entries). Output is sorted by
// kickoff ascending with unparseable dates (zero time) first. The second
// return value counts entries skipped for having no match id.
func mergeFixtureLists(lists [][]fixture.Fixture, owners []player.Player) ([]fixture.Aggregated, int) {
	byMatchID := make(map[int64]*fixture.Aggregated)
	order := make([]int64, 0, 32)
	skipped := 0

	for listIdx, list := range lists {
		var owner player.Player
		if listIdx < len(owners) {
			owner = owners[listIdx]
		}
		ownerName := owner.DisplayName()

		for _, f := range list {
			if f.MatchID == 0 {
				skipped++
				continue
			}

			existing, ok := byMatchID[f.MatchID]
			if !ok {
				byMatchID[f.MatchID] = &fixture.Aggregated{
					Fixture:          f,
					ParticipantNames: []string{ownerName},
					Participants:     []player.Player{owner},
				}
				order = append(order, f.MatchID)
				continue
			}

			if !containsString(existing.ParticipantNames, ownerName) {
				existing.ParticipantNames = append(existing.ParticipantNames, ownerName)
				existing.Participants = append(existing.Participants, owner)
			}
		}
	}

	out := make([]fixture.Aggregated, 0, len(order))
	for _, matchID := range order {
		out = append(out, *byMatchID[matchID])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].KickoffAt.Before(out[j].KickoffAt)
	})
	return out, skipped
}

func containsString(items []string, target string) bool {
	for _, item := range items {
		if item == target {
			return true
		}
	}
	return false
}
