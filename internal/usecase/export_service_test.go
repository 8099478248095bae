package usecase

import (
	"strings"
	"testing"
	"time"

	"github.com/datametrics/matchdesk/internal/domain/assignment"
	"github.com/datametrics/matchdesk/internal/domain/fixture"
	"github.com/datametrics/matchdesk/internal/domain/planner"
	"github.com/datametrics/matchdesk/internal/domain/player"
	"github.com/datametrics/matchdesk/internal/domain/staff"
)

func TestStripScoreSuffix(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Milan – Inter, 2-1", "Milan – Inter"},
		{"Milan – Inter, 0:0", "Milan – Inter"},
		{"Milan – Inter, 10–2 ", "Milan – Inter"},
		{"Milan – Inter", "Milan – Inter"},
		{"Team 4, Group B", "Team 4, Group B"},
	}
	for _, tc := range cases {
		if got := StripScoreSuffix(tc.in); got != tc.want {
			t.Fatalf("strip %q: got=%q want=%q", tc.in, got, tc.want)
		}
	}
}

func TestFilename(t *testing.T) {
	now := time.Date(2024, time.May, 10, 16, 30, 0, 0, time.UTC)
	if got := Filename("schedule", now); got != "schedule-2024-05-10.csv" {
		t.Fatalf("filename: got=%q", got)
	}
	if got := Filename("", now); got != "fixtures-2024-05-10.csv" {
		t.Fatalf("default prefix: got=%q", got)
	}
}

func TestBuildCSV_StartsWithBOMAndHeader(t *testing.T) {
	session := planner.NewSession("user-1")
	got := string(BuildCSV(session, []staff.User{
		{ID: "u-1", FullName: "Adam Scout", Role: "admin"},
	}))

	if !strings.HasPrefix(got, "\xEF\xBB\xBF") {
		t.Fatalf("output must start with a UTF-8 BOM")
	}
	header := strings.SplitN(strings.TrimPrefix(got, "\xEF\xBB\xBF"), "\r\n", 2)[0]
	if header != "Player,Date,Match,Competition path,Gameweek,Gameweek start,Gameweek end,Delivery,Match ID" {
		t.Fatalf("unexpected header: %q", header)
	}
}

func TestBuildCSV_RowPerParticipantWithTaskColumns(t *testing.T) {
	session := planner.NewSession("user-1")
	session.Fixtures = []fixture.Aggregated{{
		Fixture: fixture.Fixture{
			MatchID:         1,
			KickoffAt:       time.Date(2024, time.May, 10, 18, 0, 0, 0, time.UTC),
			Label:           "Alpha – Beta, 3-1",
			CompetitionName: "Serie A",
			Gameweek:        36,
			GameweekStart:   time.Date(2024, time.May, 6, 0, 0, 0, 0, time.UTC),
			GameweekEnd:     time.Date(2024, time.May, 12, 0, 0, 0, 0, time.UTC),
			DeliveryDate:    time.Date(2024, time.May, 13, 0, 0, 0, 0, time.UTC),
		},
		ParticipantNames: []string{"A. Striker", "B. Keeper"},
		Participants: []player.Player{
			{ID: 100, ShortName: "A. Striker"},
			{ID: 200, ShortName: "B. Keeper"},
		},
	}}
	session.Assignments["1-100"] = assignment.Assignment{ReportOwner: "u-1", VideoEnabled: true, VideoOwner: "u-1"}
	session.Assignments["1-200"] = assignment.Assignment{ReportOwner: "u-2", VideoEnabled: true, VideoOwner: "u-1"}

	users := []staff.User{
		{ID: "u-2", FullName: "Bea Analyst", Role: "datametrics"},
		{ID: "u-1", FullName: "Adam Scout", Role: "admin"},
		{ID: "u-9", FullName: "Zed Visitor", Role: "viewer"},
	}

	lines := strings.Split(strings.TrimSuffix(strings.TrimPrefix(string(BuildCSV(session, users)), "\xEF\xBB\xBF"), "\r\n"), "\r\n")
	if len(lines) != 3 {
		t.Fatalf("line count: got=%d want=3 (header + 2 participants)", len(lines))
	}

	// Assignee columns come from the assignment set sorted by owner id;
	// u-9 holds no task and gets no column.
	if lines[0] != "Player,Date,Match,Competition path,Gameweek,Gameweek start,Gameweek end,Delivery,Match ID,Adam Scout,Bea Analyst" {
		t.Fatalf("header row: %q", lines[0])
	}
	if lines[1] != "A. Striker,2024-05-10 18:00,Alpha – Beta,Serie A,36,2024-05-06,2024-05-12,2024-05-13,1,report," {
		t.Fatalf("first participant row: %q", lines[1])
	}
	if lines[2] != "B. Keeper,2024-05-10 18:00,Alpha – Beta,Serie A,36,2024-05-06,2024-05-12,2024-05-13,1,video,report" {
		t.Fatalf("second participant row: %q", lines[2])
	}
}

func TestTaskCell_OwnerWithBothTasksShowsReport(t *testing.T) {
	entry := assignment.Assignment{ReportOwner: "u-1", VideoEnabled: true, VideoOwner: "u-1"}

	if got := taskCell(entry, "u-1"); got != "report" {
		t.Fatalf("dual-task owner cell: got=%q want=%q", got, "report")
	}
	if got := taskCell(entry, "u-2"); got != "" {
		t.Fatalf("uninvolved owner cell: got=%q want empty", got)
	}
}

func TestBuildCSV_QuotesFieldsContainingCommas(t *testing.T) {
	session := planner.NewSession("user-1")
	session.Fixtures = []fixture.Aggregated{{
		Fixture: fixture.Fixture{
			MatchID:         1,
			KickoffAt:       time.Date(2024, time.May, 10, 18, 0, 0, 0, time.UTC),
			Label:           "Alpha – Beta",
			CompetitionName: `Cup, "Final" Stage`,
		},
	}}

	got := string(BuildCSV(session, nil))
	if !strings.Contains(got, `"Cup, ""Final"" Stage"`) {
		t.Fatalf("field with comma and quotes not escaped: %q", got)
	}
}

func TestBuildCSV_FixtureWithoutParticipantsGetsOneRow(t *testing.T) {
	session := planner.NewSession("user-1")
	session.Fixtures = []fixture.Aggregated{{
		Fixture: fixture.Fixture{
			MatchID:   1,
			KickoffAt: time.Date(2024, time.May, 10, 18, 0, 0, 0, time.UTC),
			Label:     "Alpha – Beta",
		},
	}}
	session.Assignments["1"] = assignment.Assignment{ReportOwner: "u-1"}
	session.DeliveryOverrides[1] = "2024-05-15"

	// No directory roster: the assignee column header falls back to the id.
	lines := strings.Split(strings.TrimSuffix(strings.TrimPrefix(string(BuildCSV(session, nil)), "\xEF\xBB\xBF"), "\r\n"), "\r\n")
	if len(lines) != 2 {
		t.Fatalf("line count: got=%d want=2", len(lines))
	}
	if !strings.HasSuffix(lines[0], ",u-1") {
		t.Fatalf("header should end with the owner id column: %q", lines[0])
	}
	if lines[1] != ",2024-05-10 18:00,Alpha – Beta,,,,,2024-05-15,1,report" {
		t.Fatalf("fixture-level row: %q", lines[1])
	}
}
