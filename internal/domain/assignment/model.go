package assignment

import (
	"fmt"
	"strconv"
	"strings"
)

// TaskKind distinguishes the two deliverables attached to an assignment.
type TaskKind string

const (
	TaskReport TaskKind = "report"
	TaskVideo  TaskKind = "video"
)

func ParseTaskKind(value string) (TaskKind, error) {
	switch TaskKind(strings.ToLower(strings.TrimSpace(value))) {
	case TaskReport:
		return TaskReport, nil
	case TaskVideo:
		return TaskVideo, nil
	default:
		return "", fmt.Errorf("unknown task kind %q", value)
	}
}

// Key identifies an assignment slot. Fixtures with tracked participants use
// ParticipantKey; fixtures without use FixtureKey. The two shapes never
// collide because the canonical forms differ.
type Key interface {
	String() string
	isKey()
}

type FixtureKey struct {
	MatchID int64
}

func (k FixtureKey) String() string { return fmt.Sprintf("%d", k.MatchID) }
func (FixtureKey) isKey()           {}

type ParticipantKey struct {
	MatchID  int64
	PlayerID int64
}

func (k ParticipantKey) String() string { return fmt.Sprintf("%d-%d", k.MatchID, k.PlayerID) }
func (ParticipantKey) isKey()           {}

// NewKey picks the key shape from the presence of a player id.
func NewKey(matchID, playerID int64) Key {
	if playerID != 0 {
		return ParticipantKey{MatchID: matchID, PlayerID: playerID}
	}
	return FixtureKey{MatchID: matchID}
}

// SplitKey parses a canonical key string back into its ids. PlayerID is
// zero for fixture-level keys.
func SplitKey(raw string) (matchID, playerID int64, ok bool) {
	head, tail, found := strings.Cut(raw, "-")
	matchID, err := strconv.ParseInt(head, 10, 64)
	if err != nil || matchID <= 0 {
		return 0, 0, false
	}
	if !found {
		return matchID, 0, true
	}
	playerID, err = strconv.ParseInt(tail, 10, 64)
	if err != nil || playerID <= 0 {
		return 0, 0, false
	}
	return matchID, playerID, true
}

// Assignment is the (report owner, video owner) pair for one key.
// Invariant: video fields are only active while ReportOwner is non-empty.
type Assignment struct {
	ReportOwner  string
	VideoEnabled bool
	VideoOwner   string
}

func (a Assignment) IsZero() bool {
	return a.ReportOwner == "" && !a.VideoEnabled && a.VideoOwner == ""
}
