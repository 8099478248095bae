package usecase

import (
	"errors"
	"testing"
	"time"

	"github.com/datametrics/matchdesk/internal/domain/assignment"
	"github.com/datametrics/matchdesk/internal/domain/fixture"
	"github.com/datametrics/matchdesk/internal/domain/planner"
	"github.com/datametrics/matchdesk/internal/infrastructure/repository/memory"
	"github.com/datametrics/matchdesk/internal/platform/logging"
)

func ganttSession(t *testing.T) planner.Session {
	t.Helper()

	session := planner.NewSession("user-1")
	session.Fixtures = []fixture.Aggregated{
		{Fixture: fixture.Fixture{
			MatchID:      1,
			KickoffAt:    time.Date(2024, time.May, 10, 18, 0, 0, 0, time.UTC),
			DeliveryDate: time.Date(2024, time.May, 13, 0, 0, 0, 0, time.UTC),
			Label:        "Alpha – Beta",
		}},
		{Fixture: fixture.Fixture{
			MatchID:      2,
			KickoffAt:    time.Date(2024, time.May, 18, 20, 0, 0, 0, time.UTC),
			DeliveryDate: time.Date(2024, time.May, 20, 0, 0, 0, 0, time.UTC),
			Label:        "Gamma – Delta",
		}},
	}
	session.Assignments["1"] = assignment.Assignment{ReportOwner: "u-1", VideoEnabled: true, VideoOwner: "u-2"}
	session.Assignments["2-200"] = assignment.Assignment{ReportOwner: "u-2", VideoEnabled: true, VideoOwner: "u-2"}
	return session
}

func TestBuildGantt_RowsPerOwnerWithSeparateVideoTask(t *testing.T) {
	chart := BuildGantt(ganttSession(t))

	if len(chart.Rows) != 2 {
		t.Fatalf("row count: got=%d want=2", len(chart.Rows))
	}
	if chart.Rows[0].OwnerID != "u-1" || chart.Rows[1].OwnerID != "u-2" {
		t.Fatalf("rows not sorted by owner: %s, %s", chart.Rows[0].OwnerID, chart.Rows[1].OwnerID)
	}

	// u-1 holds one report; u-2 holds match 1's video plus match 2's
	// report+video collapsed into a single report bar.
	if len(chart.Rows[0].Tasks) != 1 || chart.Rows[0].Tasks[0].Kind != assignment.TaskReport {
		t.Fatalf("u-1 tasks wrong: %+v", chart.Rows[0].Tasks)
	}
	if len(chart.Rows[1].Tasks) != 2 {
		t.Fatalf("u-2 task count: got=%d want=2", len(chart.Rows[1].Tasks))
	}
	if chart.Rows[1].Tasks[0].Kind != assignment.TaskVideo {
		t.Fatalf("match 1 video must appear on u-2's row: %+v", chart.Rows[1].Tasks[0])
	}
	if chart.Rows[1].Tasks[1].Kind != assignment.TaskReport {
		t.Fatalf("same-owner video must not get its own bar: %+v", chart.Rows[1].Tasks[1])
	}
}

func TestBuildGantt_TasksEndAtLastSecondOfDeliveryDay(t *testing.T) {
	chart := BuildGantt(ganttSession(t))

	task := chart.Rows[0].Tasks[0]
	wantEnd := time.Date(2024, time.May, 13, 23, 59, 59, 0, time.UTC)
	if !task.End.Equal(wantEnd) {
		t.Fatalf("task end: got=%v want=%v", task.End, wantEnd)
	}
	if !chart.AxisStart.Equal(time.Date(2024, time.May, 10, 18, 0, 0, 0, time.UTC)) {
		t.Fatalf("axis start: got=%v", chart.AxisStart)
	}
}

func TestBuildGantt_DeliveryOverrideStretchesTask(t *testing.T) {
	session := ganttSession(t)
	session.DeliveryOverrides[1] = "2024-05-16"

	chart := BuildGantt(session)
	task := chart.Rows[0].Tasks[0]
	wantEnd := time.Date(2024, time.May, 16, 23, 59, 59, 0, time.UTC)
	if !task.End.Equal(wantEnd) {
		t.Fatalf("override end: got=%v want=%v", task.End, wantEnd)
	}
}

func TestBuildGantt_FractionsWithinAxisAndMinWidthFloor(t *testing.T) {
	session := planner.NewSession("user-1")
	session.Fixtures = []fixture.Aggregated{
		{Fixture: fixture.Fixture{
			MatchID:      1,
			KickoffAt:    time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC),
			DeliveryDate: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		}},
		{Fixture: fixture.Fixture{
			MatchID:      2,
			KickoffAt:    time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC),
			DeliveryDate: time.Date(2024, time.June, 3, 0, 0, 0, 0, time.UTC),
		}},
	}
	session.Assignments["1"] = assignment.Assignment{ReportOwner: "u-1"}
	session.Assignments["2"] = assignment.Assignment{ReportOwner: "u-1"}

	chart := BuildGantt(session)
	tasks := chart.Rows[0].Tasks
	if len(tasks) != 2 {
		t.Fatalf("task count: got=%d want=2", len(tasks))
	}

	// The January task spans half a day on a five-month axis; without the
	// floor it would be invisible.
	if tasks[0].Width < minTaskWidth {
		t.Fatalf("width below floor: %f", tasks[0].Width)
	}
	for _, task := range tasks {
		if task.Left < 0 || task.Left+task.Width > 1.0000001 {
			t.Fatalf("task outside axis: left=%f width=%f", task.Left, task.Width)
		}
	}
}

func TestGanttService_Reassign_MovesReportAndFollowingVideo(t *testing.T) {
	sessions := memory.NewSessionRepository()
	if err := sessions.Save(t.Context(), ganttSession(t)); err != nil {
		t.Fatalf("seed session: %v", err)
	}
	svc := NewGanttService(sessions, logging.NewNop())

	got, err := svc.Reassign(t.Context(), "user-1", ReassignPayload{
		MatchID: 2, PlayerID: 200, Kind: "report", SourceOwner: "u-2", TargetOwner: "u-3",
	})
	if err != nil {
		t.Fatalf("reassign failed: %v", err)
	}
	if got.ReportOwner != "u-3" || got.VideoOwner != "u-3" {
		t.Fatalf("video following the report owner must move with it: %+v", got)
	}
}

func TestGanttService_Reassign_ReportMoveKeepsIndependentVideoOwner(t *testing.T) {
	sessions := memory.NewSessionRepository()
	if err := sessions.Save(t.Context(), ganttSession(t)); err != nil {
		t.Fatalf("seed session: %v", err)
	}
	svc := NewGanttService(sessions, logging.NewNop())

	got, err := svc.Reassign(t.Context(), "user-1", ReassignPayload{
		MatchID: 1, Kind: "report", SourceOwner: "u-1", TargetOwner: "u-3",
	})
	if err != nil {
		t.Fatalf("reassign failed: %v", err)
	}
	if got.ReportOwner != "u-3" || got.VideoOwner != "u-2" {
		t.Fatalf("independent video owner must stay put: %+v", got)
	}
}

func TestGanttService_Reassign_RejectsStaleSource(t *testing.T) {
	sessions := memory.NewSessionRepository()
	if err := sessions.Save(t.Context(), ganttSession(t)); err != nil {
		t.Fatalf("seed session: %v", err)
	}
	svc := NewGanttService(sessions, logging.NewNop())

	_, err := svc.Reassign(t.Context(), "user-1", ReassignPayload{
		MatchID: 1, Kind: "report", SourceOwner: "someone-else", TargetOwner: "u-3",
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for stale source, got %v", err)
	}

	session, _, _ := sessions.Get(t.Context(), "user-1")
	if session.Assignments["1"].ReportOwner != "u-1" {
		t.Fatalf("rejected drop must not mutate the session")
	}
}

func TestGanttService_Reassign_SameOwnerIsNoOp(t *testing.T) {
	sessions := memory.NewSessionRepository()
	if err := sessions.Save(t.Context(), ganttSession(t)); err != nil {
		t.Fatalf("seed session: %v", err)
	}
	svc := NewGanttService(sessions, logging.NewNop())

	got, err := svc.Reassign(t.Context(), "user-1", ReassignPayload{
		MatchID: 1, Kind: "report", SourceOwner: "u-1", TargetOwner: "u-1",
	})
	if err != nil {
		t.Fatalf("same-owner drop must succeed: %v", err)
	}
	if got.ReportOwner != "u-1" {
		t.Fatalf("unexpected entry: %+v", got)
	}
}

func TestGanttService_Reassign_UnknownKeyIsNotFound(t *testing.T) {
	sessions := memory.NewSessionRepository()
	if err := sessions.Save(t.Context(), ganttSession(t)); err != nil {
		t.Fatalf("seed session: %v", err)
	}
	svc := NewGanttService(sessions, logging.NewNop())

	_, err := svc.Reassign(t.Context(), "user-1", ReassignPayload{
		MatchID: 99, Kind: "video", SourceOwner: "u-1", TargetOwner: "u-2",
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
