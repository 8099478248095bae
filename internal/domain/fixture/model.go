package fixture

import (
	"fmt"
	"strings"
	"time"

	"github.com/datametrics/matchdesk/internal/domain/player"
)

// Fixture is one scheduled match for a tracked player. Identity is MatchID;
// enrichment only adds descriptive fields, never changes identity.
type Fixture struct {
	MatchID       int64
	KickoffAt     time.Time // zero when the provider date is unparseable
	RawKickoff    string
	Label         string
	HomeTeamID    int64
	AwayTeamID    int64
	CompetitionID int64
	SeasonID      int64
	RoundID       int64
	AreaID        int64
	Gameweek      int

	// Resolved by enrichment; empty when the lookup failed or never ran.
	AreaName        string
	CompetitionName string
	SeasonName      string
	RoundName       string

	GameweekStart time.Time
	GameweekEnd   time.Time

	// DeliveryDate is the explicit provider value when present, otherwise
	// gameweek end + 1 calendar day.
	DeliveryDate time.Time

	RoundMatches    []Sibling
	GameweekMatches []Sibling
	SeasonMatches   []Sibling
}

// Sibling is a lightweight reference to another match in the same round,
// gameweek, or season.
type Sibling struct {
	MatchID   int64
	KickoffAt time.Time
	Label     string
}

// Aggregated is a fixture merged across several players' fixture lists.
type Aggregated struct {
	Fixture
	ParticipantNames []string
	Participants     []player.Player
}

// DescriptivePath joins the resolved names for display and export, skipping
// unresolved parts.
func (f Fixture) DescriptivePath() string {
	parts := make([]string, 0, 4)
	for _, part := range []string{f.AreaName, f.CompetitionName, f.SeasonName, f.RoundName} {
		if strings.TrimSpace(part) != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, " / ")
}

// DisplayLabel falls back from the provider label to team ids.
func (f Fixture) DisplayLabel() string {
	if strings.TrimSpace(f.Label) != "" {
		return f.Label
	}
	if f.HomeTeamID != 0 || f.AwayTeamID != 0 {
		return fmt.Sprintf("Team %d – Team %d", f.HomeTeamID, f.AwayTeamID)
	}
	return fmt.Sprintf("Match %d", f.MatchID)
}
