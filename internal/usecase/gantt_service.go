package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/datametrics/matchdesk/internal/domain/assignment"
	"github.com/datametrics/matchdesk/internal/domain/fixture"
	"github.com/datametrics/matchdesk/internal/domain/planner"
	"github.com/datametrics/matchdesk/internal/platform/logging"
)

// minTaskWidth keeps very short tasks clickable on the timeline.
const minTaskWidth = 0.015

// GanttChart is the timeline view model. Left/Width on each task are
// fractions of the axis span, ready for percentage-based rendering.
type GanttChart struct {
	AxisStart time.Time
	AxisEnd   time.Time
	Rows      []GanttRow
}

type GanttRow struct {
	OwnerID string
	Tasks   []GanttTask
}

type GanttTask struct {
	Key      string
	Kind     assignment.TaskKind
	Label    string
	MatchID  int64
	PlayerID int64
	Start    time.Time
	End      time.Time
	Left     float64
	Width    float64
}

// ReassignPayload is the drag-drop envelope, decoded and validated by the
// HTTP layer. SourceOwner is the owner the client believed held the task
// when the drag started; a mismatch means the board changed underneath and
// the drop is rejected.
type ReassignPayload struct {
	MatchID     int64
	PlayerID    int64
	Kind        string
	SourceOwner string
	TargetOwner string
}

// GanttService projects a session's assignments onto a per-owner timeline
// and applies drag-drop reassignments against it.
type GanttService struct {
	sessions planner.Repository
	logger   *logging.Logger
}

func NewGanttService(sessions planner.Repository, logger *logging.Logger) *GanttService {
	if logger == nil {
		logger = logging.Default()
	}
	return &GanttService{
		sessions: sessions,
		logger:   logger,
	}
}

func (s *GanttService) Gantt(ctx context.Context, userID string) (GanttChart, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GanttService.Gantt")
	defer span.End()

	if userID == "" {
		return GanttChart{}, fmt.Errorf("%w: user id is required", ErrUnauthorized)
	}

	session, ok, err := s.sessions.Get(ctx, userID)
	if err != nil {
		return GanttChart{}, fmt.Errorf("get planning session: %w", err)
	}
	if !ok {
		return GanttChart{}, fmt.Errorf("%w: no fixtures loaded yet", ErrNotFound)
	}

	return BuildGantt(session), nil
}

// Reassign moves one task to another owner. Moving a report keeps its video
// task with the previous video owner untouched unless video followed the
// report owner, in which case both move together.
func (s *GanttService) Reassign(ctx context.Context, userID string, payload ReassignPayload) (assignment.Assignment, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GanttService.Reassign")
	defer span.End()

	if userID == "" {
		return assignment.Assignment{}, fmt.Errorf("%w: user id is required", ErrUnauthorized)
	}

	kind, err := assignment.ParseTaskKind(payload.Kind)
	if err != nil {
		return assignment.Assignment{}, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}
	if payload.TargetOwner == "" {
		return assignment.Assignment{}, fmt.Errorf("%w: target owner is required", ErrInvalidInput)
	}

	session, ok, err := s.sessions.Get(ctx, userID)
	if err != nil {
		return assignment.Assignment{}, fmt.Errorf("get planning session: %w", err)
	}
	if !ok {
		return assignment.Assignment{}, fmt.Errorf("%w: no fixtures loaded yet", ErrNotFound)
	}

	key := assignment.NewKey(payload.MatchID, payload.PlayerID)
	entry, exists := session.Assignments[key.String()]
	if !exists {
		return assignment.Assignment{}, fmt.Errorf("%w: no assignment for key %s", ErrNotFound, key.String())
	}

	currentOwner := entry.ReportOwner
	if kind == assignment.TaskVideo {
		currentOwner = entry.VideoOwner
	}
	if currentOwner != payload.SourceOwner {
		return assignment.Assignment{}, fmt.Errorf("%w: assignment changed since the drag started", ErrInvalidInput)
	}
	if currentOwner == payload.TargetOwner {
		// No-op drop back onto the same row.
		return entry, nil
	}

	switch kind {
	case assignment.TaskReport:
		videoFollowed := entry.VideoEnabled && entry.VideoOwner == entry.ReportOwner
		entry.ReportOwner = payload.TargetOwner
		if videoFollowed {
			entry.VideoOwner = payload.TargetOwner
		}
	case assignment.TaskVideo:
		if entry.ReportOwner == "" {
			return assignment.Assignment{}, fmt.Errorf("%w: video owner requires a report owner", ErrInvalidInput)
		}
		entry.VideoEnabled = true
		entry.VideoOwner = payload.TargetOwner
	}

	session.Assignments[key.String()] = entry
	if err := s.sessions.Save(ctx, session); err != nil {
		return assignment.Assignment{}, fmt.Errorf("save planning session: %w", err)
	}

	s.logger.InfoContext(ctx, "task reassigned",
		"key", key.String(), "kind", string(kind),
		"from", payload.SourceOwner, "to", payload.TargetOwner)
	return entry, nil
}

// BuildGantt lays the session's assigned tasks out per owner. Each task
// spans from its fixture's kickoff to the end of the delivery day; a video
// task only gets its own bar when its owner differs from the report owner.
// Fixtures without a kickoff or without any assignment contribute nothing.
func BuildGantt(session planner.Session) GanttChart {
	fixturesByMatchID := make(map[int64]fixture.Aggregated, len(session.Fixtures))
	for _, f := range session.Fixtures {
		fixturesByMatchID[f.MatchID] = f
	}

	rowIndex := make(map[string]int)
	var rows []GanttRow
	addTask := func(ownerID string, task GanttTask) {
		idx, ok := rowIndex[ownerID]
		if !ok {
			idx = len(rows)
			rowIndex[ownerID] = idx
			rows = append(rows, GanttRow{OwnerID: ownerID})
		}
		rows[idx].Tasks = append(rows[idx].Tasks, task)
	}

	for rawKey, entry := range session.Assignments {
		if entry.ReportOwner == "" {
			continue
		}
		matchID, playerID, ok := assignment.SplitKey(rawKey)
		if !ok {
			continue
		}
		f, found := fixturesByMatchID[matchID]
		if !found || f.KickoffAt.IsZero() {
			continue
		}

		start := f.KickoffAt
		end := endOfDeliveryDay(f, session.DeliveryOverrides[matchID])
		if end.Before(start) {
			end = start
		}

		base := GanttTask{
			Key:      rawKey,
			Label:    f.DisplayLabel(),
			MatchID:  matchID,
			PlayerID: playerID,
			Start:    start,
			End:      end,
		}

		report := base
		report.Kind = assignment.TaskReport
		addTask(entry.ReportOwner, report)

		if entry.VideoEnabled && entry.VideoOwner != "" && entry.VideoOwner != entry.ReportOwner {
			video := base
			video.Kind = assignment.TaskVideo
			addTask(entry.VideoOwner, video)
		}
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].OwnerID < rows[j].OwnerID })

	chart := GanttChart{Rows: rows}
	for i := range chart.Rows {
		tasks := chart.Rows[i].Tasks
		sort.SliceStable(tasks, func(a, b int) bool {
			if !tasks[a].Start.Equal(tasks[b].Start) {
				return tasks[a].Start.Before(tasks[b].Start)
			}
			return tasks[a].Key < tasks[b].Key
		})
		chart.Rows[i].Tasks = tasks

		for _, task := range tasks {
			if chart.AxisStart.IsZero() || task.Start.Before(chart.AxisStart) {
				chart.AxisStart = task.Start
			}
			if task.End.After(chart.AxisEnd) {
				chart.AxisEnd = task.End
			}
		}
	}

	placeTasks(&chart)
	return chart
}

// placeTasks converts absolute times into axis fractions and applies the
// minimum width floor so short tasks stay visible.
func placeTasks(chart *GanttChart) {
	span := chart.AxisEnd.Sub(chart.AxisStart)
	if span <= 0 {
		for i := range chart.Rows {
			for j := range chart.Rows[i].Tasks {
				chart.Rows[i].Tasks[j].Left = 0
				chart.Rows[i].Tasks[j].Width = 1
			}
		}
		return
	}

	for i := range chart.Rows {
		for j := range chart.Rows[i].Tasks {
			task := &chart.Rows[i].Tasks[j]
			task.Left = float64(task.Start.Sub(chart.AxisStart)) / float64(span)
			task.Width = float64(task.End.Sub(task.Start)) / float64(span)
			if task.Width < minTaskWidth {
				task.Width = minTaskWidth
			}
			if task.Left+task.Width > 1 {
				task.Left = 1 - task.Width
			}
			if task.Left < 0 {
				task.Left = 0
			}
		}
	}
}

// endOfDeliveryDay resolves the task deadline: an explicit per-match
// override wins over the fixture's computed delivery date, and either way
// the task runs to the last second of that day. Without a delivery date the
// task ends one day after kickoff.
func endOfDeliveryDay(f fixture.Aggregated, override string) time.Time {
	day := f.DeliveryDate
	if override != "" {
		if parsed, err := time.Parse("2006-01-02", override); err == nil {
			day = parsed
		}
	}
	if day.IsZero() {
		day = f.KickoffAt.AddDate(0, 0, 1)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), 23, 59, 59, 0, day.Location())
}
