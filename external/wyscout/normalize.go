package wyscout

import (
	"strconv"
	"strings"
	"time"

	"github.com/datametrics/matchdesk/internal/domain/fixture"
	"github.com/datametrics/matchdesk/internal/domain/player"
)

// The provider wraps list payloads inconsistently across endpoints and API
// generations. These are the recognized wrapper fields, probed in order.
var wrapperFields = []string{"fixtures", "matches", "elements", "players", "items", "results", "data"}

type shapeKind int

const (
	shapeUnknown shapeKind = iota
	shapeArray
	shapeWrapped
)

type listShape struct {
	kind  shapeKind
	field string
}

// detectShape classifies a decoded payload without unwrapping it.
func detectShape(decoded any) listShape {
	switch typed := decoded.(type) {
	case []any:
		return listShape{kind: shapeArray}
	case map[string]any:
		for _, field := range wrapperFields {
			if _, ok := typed[field]; ok {
				return listShape{kind: shapeWrapped, field: field}
			}
		}
	}
	return listShape{kind: shapeUnknown}
}

// NormalizeList flattens a decoded provider payload into a list of objects.
// A raw array passes through; a wrapped object is unwrapped through its
// recognized field, with at most one further nesting level below it. Any
// unrecognized shape yields an empty list: callers cannot distinguish
// "nothing found" from "shape not understood", and must not try.
func NormalizeList(decoded any) []map[string]any {
	shape := detectShape(decoded)
	switch shape.kind {
	case shapeArray:
		return objectItems(decoded.([]any))
	case shapeWrapped:
		inner := decoded.(map[string]any)[shape.field]
		if items, ok := inner.([]any); ok {
			return objectItems(items)
		}
		// One nesting level is allowed: {"matches": {"matches": [...]}}.
		if nested := detectShape(inner); nested.kind == shapeWrapped {
			if items, ok := inner.(map[string]any)[nested.field].([]any); ok {
				return objectItems(items)
			}
		}
	}
	return []map[string]any{}
}

func objectItems(items []any) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if obj, ok := item.(map[string]any); ok {
			out = append(out, obj)
		}
	}
	return out
}

// kickoffLayouts are tried in order against both provider date fields.
var kickoffLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02",
}

func parseKickoff(raw string) time.Time {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}
	}
	for _, layout := range kickoffLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.UTC()
		}
	}
	return time.Time{}
}

// mapFixture translates one raw match object into the domain fixture. Each
// identifier is resolved through a fixed priority order of field names;
// the first present wins.
func mapFixture(item map[string]any) fixture.Fixture {
	rawKickoff := firstNonEmpty(getString(item, "dateutc"), getString(item, "date"))

	round := objectField(item, "round")
	competition := objectField(item, "competition")
	area := objectField(item, "area")

	roundID := getInt64(item, "roundId")
	if roundID == 0 {
		roundID = getInt64Any(round, "roundId", "wyId")
	}
	areaID := getInt64(item, "areaId")
	if areaID == 0 {
		areaID = getInt64(area, "id")
	}
	if areaID == 0 {
		areaID = getInt64(competition, "areaId")
	}

	f := fixture.Fixture{
		MatchID:       getInt64Any(item, "matchId", "wyId"),
		KickoffAt:     parseKickoff(rawKickoff),
		RawKickoff:    rawKickoff,
		HomeTeamID:    getInt64(item, "homeTeamId"),
		AwayTeamID:    getInt64(item, "awayTeamId"),
		CompetitionID: getInt64Any(item, "competitionId", "compId"),
		SeasonID:      getInt64(item, "seasonId"),
		RoundID:       roundID,
		AreaID:        areaID,
		Gameweek:      int(getInt64(item, "gameweek")),
	}
	f.Label = fixtureLabel(item, f.HomeTeamID, f.AwayTeamID)
	if explicit := parseKickoff(getString(item, "deliveryDate")); !explicit.IsZero() {
		f.DeliveryDate = explicit
	}
	return f
}

func fixtureLabel(item map[string]any, homeTeamID, awayTeamID int64) string {
	if label := getString(item, "label"); label != "" {
		return label
	}
	home := firstNonEmpty(getString(objectField(item, "homeTeam"), "name"), getString(item, "homeTeamName"))
	away := firstNonEmpty(getString(objectField(item, "awayTeam"), "name"), getString(item, "awayTeamName"))
	if home != "" && away != "" {
		return home + " – " + away
	}
	if homeTeamID != 0 || awayTeamID != 0 {
		return "Team " + strconv.FormatInt(homeTeamID, 10) + " – Team " + strconv.FormatInt(awayTeamID, 10)
	}
	return ""
}

func mapPlayer(item map[string]any) player.Player {
	team := objectField(item, "currentTeam")
	teamID := getInt64Any(item, "currentTeamId")
	if teamID == 0 {
		teamID = getInt64Any(team, "wyId", "id")
	}

	return player.Player{
		ID:               getInt64Any(item, "wyId", "id"),
		FirstName:        getString(item, "firstName"),
		LastName:         getString(item, "lastName"),
		ShortName:        getString(item, "shortName"),
		TeamID:           teamID,
		TeamName:         firstNonEmpty(getString(team, "officialName"), getString(team, "name")),
		ImageDataURL:     getString(item, "imageDataURL"),
		TeamImageDataURL: getString(team, "imageDataURL"),
	}
}

func objectField(src map[string]any, key string) map[string]any {
	if src == nil {
		return nil
	}
	obj, ok := src[key].(map[string]any)
	if !ok {
		return nil
	}
	return obj
}

func getString(src map[string]any, key string) string {
	if src == nil {
		return ""
	}
	raw, ok := src[key]
	if !ok || raw == nil {
		return ""
	}
	value, ok := raw.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(value)
}

func getInt64(src map[string]any, key string) int64 {
	if src == nil {
		return 0
	}
	raw, ok := src[key]
	if !ok || raw == nil {
		return 0
	}
	switch typed := raw.(type) {
	case float64:
		return int64(typed)
	case float32:
		return int64(typed)
	case int:
		return int64(typed)
	case int64:
		return typed
	case string:
		v, err := strconv.ParseInt(strings.TrimSpace(typed), 10, 64)
		if err != nil {
			return 0
		}
		return v
	default:
		return 0
	}
}

func getInt64Any(src map[string]any, keys ...string) int64 {
	for _, key := range keys {
		if value := getInt64(src, key); value != 0 {
			return value
		}
	}
	return 0
}

func firstNonEmpty(values ...string) string {
	for _, item := range values {
		if strings.TrimSpace(item) != "" {
			return strings.TrimSpace(item)
		}
	}
	return ""
}
