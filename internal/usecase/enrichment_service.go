package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/datametrics/matchdesk/internal/domain/fixture"
	"github.com/datametrics/matchdesk/internal/platform/logging"
)

const defaultEnrichmentWorkers = 8

// EnrichmentService resolves descriptive names and gameweek windows for raw
// fixture lists. Every lookup failure is isolated: a failed name lookup
// leaves that name empty, a failed season schedule contributes nothing, and
// neither fails the fixture load.
type EnrichmentService struct {
	provider   FixtureProvider
	logger     *logging.Logger
	maxWorkers int
}

func NewEnrichmentService(provider FixtureProvider, logger *logging.Logger) *EnrichmentService {
	if logger == nil {
		logger = logging.Default()
	}
	return &EnrichmentService{
		provider:   provider,
		logger:     logger,
		maxWorkers: defaultEnrichmentWorkers,
	}
}

type nameKind string

const (
	nameKindCompetition nameKind = "competition"
	nameKindSeason      nameKind = "season"
	nameKindRound       nameKind = "round"
)

type nameLookup struct {
	kind nameKind
	id   int64
}

// seasonIndexes are the derived views over one season's full schedule.
type seasonIndexes struct {
	byRound    map[int64][]fixture.Sibling
	byGameweek map[gameweekKey][]fixture.Sibling
	all        []fixture.Sibling
}

type gameweekKey struct {
	roundID  int64
	gameweek int
}

// Enrich attaches resolved names, gameweek ranges, sibling match lists, and
// delivery dates to the given fixtures. Identity fields are never touched.
func (s *EnrichmentService) Enrich(ctx context.Context, fixtures []fixture.Fixture) []fixture.Fixture {
	ctx, span := startUsecaseSpan(ctx, "usecase.EnrichmentService.Enrich")
	defer span.End()

	if len(fixtures) == 0 {
		return fixtures
	}

	lookups, seasonIDs, wantAreas := collectEnrichmentTargets(fixtures)

	var areaNames map[int64]string
	if wantAreas {
		names, err := s.provider.Areas(ctx)
		if err != nil {
			s.logger.WarnContext(ctx, "area lookup failed, leaving area names unresolved", "error", err)
		} else {
			areaNames = names
		}
	}

	names := s.resolveNames(ctx, lookups)
	schedules := s.fetchSeasonSchedules(ctx, seasonIDs)

	indexes := make(map[int64]seasonIndexes, len(schedules))
	for seasonID, schedule := range schedules {
		indexes[seasonID] = buildSeasonIndexes(schedule)
	}

	out := make([]fixture.Fixture, len(fixtures))
	for i, f := range fixtures {
		out[i] = applyEnrichment(f, areaNames, names, indexes)
	}
	return out
}

func collectEnrichmentTargets(fixtures []fixture.Fixture) ([]nameLookup, []int64, bool) {
	seenLookups := make(map[nameLookup]struct{})
	seenSeasons := make(map[int64]struct{})
	wantAreas := false

	lookups := make([]nameLookup, 0, len(fixtures))
	seasonIDs := make([]int64, 0, 4)
	add := func(kind nameKind, id int64) {
		if id == 0 {
			return
		}
		key := nameLookup{kind: kind, id: id}
		if _, ok := seenLookups[key]; ok {
			return
		}
		seenLookups[key] = struct{}{}
		lookups = append(lookups, key)
	}

	for _, f := range fixtures {
		add(nameKindCompetition, f.CompetitionID)
		add(nameKindSeason, f.SeasonID)
		add(nameKindRound, f.RoundID)
		if f.AreaID != 0 {
			wantAreas = true
		}
		if f.SeasonID != 0 {
			if _, ok := seenSeasons[f.SeasonID]; !ok {
				seenSeasons[f.SeasonID] = struct{}{}
				seasonIDs = append(seasonIDs, f.SeasonID)
			}
		}
	}
	return lookups, seasonIDs, wantAreas
}

// resolveNames fans the per-id lookups out on a worker pool. Failures only
// log; the name stays empty.
func (s *EnrichmentService) resolveNames(ctx context.Context, lookups []nameLookup) map[nameLookup]string {
	out := make(map[nameLookup]string, len(lookups))
	if len(lookups) == 0 {
		return out
	}

	pool, err := ants.NewPool(minInt(s.maxWorkers, len(lookups)))
	if err != nil {
		s.logger.WarnContext(ctx, "create name lookup pool failed, resolving sequentially", "error", err)
		for _, lookup := range lookups {
			if name, lookupErr := s.lookupName(ctx, lookup); lookupErr == nil {
				out[lookup] = name
			}
		}
		return out
	}
	defer pool.Release()

	var mu sync.Mutex
	var workers sync.WaitGroup
	for _, lookup := range lookups {
		lookup := lookup
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			name, lookupErr := s.lookupName(ctx, lookup)
			if lookupErr != nil {
				s.logger.WarnContext(ctx, "name lookup failed, leaving it unresolved",
					"kind", string(lookup.kind), "id", lookup.id, "error", lookupErr)
				return
			}
			mu.Lock()
			out[lookup] = name
			mu.Unlock()
		}); err != nil {
			workers.Done()
			s.logger.WarnContext(ctx, "submit name lookup failed", "kind", string(lookup.kind), "id", lookup.id, "error", err)
		}
	}
	workers.Wait()

	return out
}

func (s *EnrichmentService) lookupName(ctx context.Context, lookup nameLookup) (string, error) {
	switch lookup.kind {
	case nameKindCompetition:
		return s.provider.CompetitionName(ctx, lookup.id)
	case nameKindSeason:
		return s.provider.SeasonName(ctx, lookup.id)
	default:
		return s.provider.RoundName(ctx, lookup.id)
	}
}

// fetchSeasonSchedules loads each distinct season's full schedule in
// parallel. A season whose fetch fails is simply absent from the result.
func (s *EnrichmentService) fetchSeasonSchedules(ctx context.Context, seasonIDs []int64) map[int64][]fixture.Fixture {
	out := make(map[int64][]fixture.Fixture, len(seasonIDs))
	if len(seasonIDs) == 0 {
		return out
	}

	pool, err := ants.NewPool(minInt(s.maxWorkers, len(seasonIDs)))
	if err != nil {
		s.logger.WarnContext(ctx, "create schedule pool failed, fetching sequentially", "error", err)
		for _, seasonID := range seasonIDs {
			if schedule, fetchErr := s.provider.SeasonFixtures(ctx, seasonID); fetchErr == nil {
				out[seasonID] = schedule
			}
		}
		return out
	}
	defer pool.Release()

	var mu sync.Mutex
	var workers sync.WaitGroup
	for _, seasonID := range seasonIDs {
		seasonID := seasonID
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			schedule, fetchErr := s.provider.SeasonFixtures(ctx, seasonID)
			if fetchErr != nil {
				s.logger.WarnContext(ctx, "season schedule fetch failed, skipping its enrichment",
					"season_id", seasonID, "error", fetchErr)
				return
			}
			mu.Lock()
			out[seasonID] = schedule
			mu.Unlock()
		}); err != nil {
			workers.Done()
			s.logger.WarnContext(ctx, "submit schedule fetch failed", "season_id", seasonID, "error", err)
		}
	}
	workers.Wait()

	return out
}

// buildSeasonIndexes derives the three views the enrichment step attaches:
// matches per round, matches per (round, gameweek), and the full list.
// Entries missing a round id, gameweek, or parseable date are excluded from
// the gameweek index without erroring.
func buildSeasonIndexes(schedule []fixture.Fixture) seasonIndexes {
	idx := seasonIndexes{
		byRound:    make(map[int64][]fixture.Sibling),
		byGameweek: make(map[gameweekKey][]fixture.Sibling),
		all:        make([]fixture.Sibling, 0, len(schedule)),
	}

	for _, match := range schedule {
		sibling := fixture.Sibling{
			MatchID:   match.MatchID,
			KickoffAt: match.KickoffAt,
			Label:     match.DisplayLabel(),
		}
		idx.all = append(idx.all, sibling)

		if match.RoundID != 0 {
			idx.byRound[match.RoundID] = append(idx.byRound[match.RoundID], sibling)
		}
		if match.RoundID != 0 && match.Gameweek > 0 && !match.KickoffAt.IsZero() {
			key := gameweekKey{roundID: match.RoundID, gameweek: match.Gameweek}
			idx.byGameweek[key] = append(idx.byGameweek[key], sibling)
		}
	}

	for key := range idx.byGameweek {
		siblings := idx.byGameweek[key]
		sort.SliceStable(siblings, func(i, j int) bool {
			return siblings[i].KickoffAt.Before(siblings[j].KickoffAt)
		})
		idx.byGameweek[key] = siblings
	}

	return idx
}

func applyEnrichment(
	f fixture.Fixture,
	areaNames map[int64]string,
	names map[nameLookup]string,
	indexes map[int64]seasonIndexes,
) fixture.Fixture {
	if f.AreaID != 0 {
		f.AreaName = areaNames[f.AreaID]
	}
	f.CompetitionName = names[nameLookup{kind: nameKindCompetition, id: f.CompetitionID}]
	f.SeasonName = names[nameLookup{kind: nameKindSeason, id: f.SeasonID}]
	f.RoundName = names[nameLookup{kind: nameKindRound, id: f.RoundID}]

	idx, ok := indexes[f.SeasonID]
	if !ok {
		return f
	}

	f.SeasonMatches = idx.all
	if f.RoundID != 0 {
		f.RoundMatches = idx.byRound[f.RoundID]
	}
	if f.RoundID != 0 && f.Gameweek > 0 {
		siblings := idx.byGameweek[gameweekKey{roundID: f.RoundID, gameweek: f.Gameweek}]
		f.GameweekMatches = siblings
		if len(siblings) > 0 {
			f.GameweekStart = siblings[0].KickoffAt
			f.GameweekEnd = siblings[len(siblings)-1].KickoffAt
		}
	}

	if f.DeliveryDate.IsZero() && !f.GameweekEnd.IsZero() {
		f.DeliveryDate = deliveryDateFromGameweekEnd(f.GameweekEnd)
	}
	return f
}

// deliveryDateFromGameweekEnd is the default deadline: the calendar day
// after the gameweek's last match.
func deliveryDateFromGameweekEnd(end time.Time) time.Time {
	day := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, end.Location())
	return day.AddDate(0, 0, 1)
}

func minInt(left, right int) int {
	if left < right {
		return left
	}
	return right
}
