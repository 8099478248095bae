package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/datametrics/matchdesk/internal/domain/fixture"
	"github.com/datametrics/matchdesk/internal/domain/planner"
)

// CalendarMonth is one month's Monday-start week grid. Every week has
// exactly seven cells; cells outside the month carry the adjacent month's
// date with InMonth false.
type CalendarMonth struct {
	Year  int
	Month time.Month
	Weeks [][]CalendarCell
}

type CalendarCell struct {
	Date     time.Time
	InMonth  bool
	Fixtures []fixture.Aggregated
}

// CalendarService lays the session aggregate out as day buckets and month
// grids. The layout functions are pure; the service only binds them to the
// session.
type CalendarService struct {
	sessions planner.Repository
}

func NewCalendarService(sessions planner.Repository) *CalendarService {
	return &CalendarService{sessions: sessions}
}

func (s *CalendarService) Calendar(ctx context.Context, userID string, loc *time.Location) ([]CalendarMonth, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CalendarService.Calendar")
	defer span.End()

	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrUnauthorized)
	}

	session, ok, err := s.sessions.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get planning session: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: no fixtures loaded yet", ErrNotFound)
	}

	return BuildMonthGrids(GroupByDay(session.Fixtures, loc), loc), nil
}

// GroupByDay buckets fixtures by their local calendar date in loc. Slicing
// the UTC timestamp instead would shift evening fixtures across midnight
// for non-UTC viewers. Fixtures with an unparseable (zero) kickoff are
// dropped from the calendar view. Within a day, fixtures sort by kickoff.
func GroupByDay(fixtures []fixture.Aggregated, loc *time.Location) map[string][]fixture.Aggregated {
	if loc == nil {
		loc = time.Local
	}

	byDay := make(map[string][]fixture.Aggregated)
	for _, f := range fixtures {
		if f.KickoffAt.IsZero() {
			continue
		}
		day := f.KickoffAt.In(loc).Format("2006-01-02")
		byDay[day] = append(byDay[day], f)
	}

	for day := range byDay {
		bucket := byDay[day]
		sort.SliceStable(bucket, func(i, j int) bool {
			return bucket[i].KickoffAt.Before(bucket[j].KickoffAt)
		})
		byDay[day] = bucket
	}
	return byDay
}

// BuildMonthGrids builds one grid per month touched by a day bucket. Each
// grid spans from the Monday on or before the 1st to the Sunday on or
// after the month's last day, so week rows always hold seven cells and
// month-boundary weeks show the neighboring month's dates.
func BuildMonthGrids(byDay map[string][]fixture.Aggregated, loc *time.Location) []CalendarMonth {
	if loc == nil {
		loc = time.Local
	}

	type monthKey struct {
		year  int
		month time.Month
	}
	seen := make(map[monthKey]struct{})
	keys := make([]monthKey, 0, 2)
	for day := range byDay {
		parsed, err := time.ParseInLocation("2006-01-02", day, loc)
		if err != nil {
			continue
		}
		key := monthKey{year: parsed.Year(), month: parsed.Month()}
		if _, ok := seen[key]; !ok {
			seen[key] = struct{}{}
			keys = append(keys, key)
		}
	}
	sort.SliceStable(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year < keys[j].year
		}
		return keys[i].month < keys[j].month
	})

	out := make([]CalendarMonth, 0, len(keys))
	for _, key := range keys {
		first := time.Date(key.year, key.month, 1, 0, 0, 0, 0, loc)
		last := first.AddDate(0, 1, -1)
		start := mondayOnOrBefore(first)
		end := sundayOnOrAfter(last)

		month := CalendarMonth{Year: key.year, Month: key.month}
		for cursor := start; !cursor.After(end); cursor = cursor.AddDate(0, 0, 7) {
			week := make([]CalendarCell, 0, 7)
			for offset := 0; offset < 7; offset++ {
				date := cursor.AddDate(0, 0, offset)
				week = append(week, CalendarCell{
					Date:     date,
					InMonth:  date.Month() == key.month && date.Year() == key.year,
					Fixtures: byDay[date.Format("2006-01-02")],
				})
			}
			month.Weeks = append(month.Weeks, week)
		}
		out = append(out, month)
	}
	return out
}

func mondayOnOrBefore(day time.Time) time.Time {
	// time.Weekday counts Sunday as 0; shift so Monday is 0.
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

func sundayOnOrAfter(day time.Time) time.Time {
	offset := (7 - int(day.Weekday())) % 7
	return day.AddDate(0, 0, offset)
}
