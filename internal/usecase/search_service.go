package usecase

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/datametrics/matchdesk/internal/domain/player"
	"github.com/datametrics/matchdesk/internal/platform/logging"
)

// MinSearchQueryLength is the shortest free-text query forwarded upstream.
// Anything shorter is rejected locally without a provider call.
const MinSearchQueryLength = 3

type SearchService struct {
	provider FixtureProvider
	logger   *logging.Logger
}

func NewSearchService(provider FixtureProvider, logger *logging.Logger) *SearchService {
	if logger == nil {
		logger = logging.Default()
	}
	return &SearchService{
		provider: provider,
		logger:   logger,
	}
}

func (s *SearchService) SearchPlayers(ctx context.Context, query string) ([]player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SearchService.SearchPlayers")
	defer span.End()

	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < MinSearchQueryLength {
		return nil, fmt.Errorf("%w: query must be at least %d characters", ErrInvalidInput, MinSearchQueryLength)
	}

	players, err := s.provider.SearchPlayers(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search players: %w", err)
	}
	return players, nil
}

// GetPlayer resolves a player with current-team expansion. Image and team
// enrichment failures degrade to empty fields instead of failing the call;
// the caller falls back to initials.
func (s *SearchService) GetPlayer(ctx context.Context, playerID int64) (player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SearchService.GetPlayer")
	defer span.End()

	if playerID <= 0 {
		return player.Player{}, fmt.Errorf("%w: player id is required", ErrInvalidInput)
	}

	item, err := s.provider.PlayerDetail(ctx, playerID, "currentTeam")
	if err != nil {
		return player.Player{}, fmt.Errorf("get player: %w", err)
	}

	if item.TeamID != 0 && (item.TeamName == "" || item.TeamImageDataURL == "") {
		name, image, teamErr := s.provider.TeamDetail(ctx, item.TeamID)
		if teamErr != nil {
			s.logger.WarnContext(ctx, "team enrichment failed, continuing without it",
				"player_id", playerID, "team_id", item.TeamID, "error", teamErr)
		} else {
			if item.TeamName == "" {
				item.TeamName = name
			}
			if item.TeamImageDataURL == "" {
				item.TeamImageDataURL = image
			}
		}
	}

	return item, nil
}

func (s *SearchService) GetTeam(ctx context.Context, teamID int64) (string, string, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SearchService.GetTeam")
	defer span.End()

	if teamID <= 0 {
		return "", "", fmt.Errorf("%w: team id is required", ErrInvalidInput)
	}

	name, image, err := s.provider.TeamDetail(ctx, teamID)
	if err != nil {
		return "", "", fmt.Errorf("get team: %w", err)
	}
	return name, image, nil
}
