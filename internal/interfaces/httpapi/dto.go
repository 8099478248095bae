package httpapi

import (
	"context"
	"time"

	"github.com/datametrics/matchdesk/internal/domain/assignment"
	"github.com/datametrics/matchdesk/internal/domain/fixture"
	"github.com/datametrics/matchdesk/internal/domain/player"
	"github.com/datametrics/matchdesk/internal/domain/staff"
	"github.com/datametrics/matchdesk/internal/usecase"
)

type playerDTO struct {
	ID               int64  `json:"id"`
	DisplayName      string `json:"displayName"`
	FirstName        string `json:"firstName,omitempty"`
	LastName         string `json:"lastName,omitempty"`
	TeamID           int64  `json:"teamId,omitempty"`
	TeamName         string `json:"teamName,omitempty"`
	ImageDataURL     string `json:"imageDataUrl,omitempty"`
	TeamImageDataURL string `json:"teamImageDataUrl,omitempty"`
}

type siblingDTO struct {
	MatchID int64  `json:"matchId"`
	Kickoff string `json:"kickoff,omitempty"`
	Label   string `json:"label"`
}

type fixtureDTO struct {
	MatchID          int64        `json:"matchId"`
	Kickoff          string       `json:"kickoff,omitempty"`
	RawKickoff       string       `json:"rawKickoff,omitempty"`
	Label            string       `json:"label"`
	CompetitionPath  string       `json:"competitionPath,omitempty"`
	Gameweek         int          `json:"gameweek,omitempty"`
	GameweekStart    string       `json:"gameweekStart,omitempty"`
	GameweekEnd      string       `json:"gameweekEnd,omitempty"`
	DeliveryDate     string       `json:"deliveryDate,omitempty"`
	ParticipantNames []string     `json:"participantNames"`
	Participants     []playerDTO  `json:"participants"`
	GameweekMatches  []siblingDTO `json:"gameweekMatches,omitempty"`
}

type assignmentDTO struct {
	ReportOwner  string `json:"reportOwner,omitempty"`
	VideoEnabled bool   `json:"videoEnabled"`
	VideoOwner   string `json:"videoOwner,omitempty"`
}

type staffUserDTO struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

type calendarCellDTO struct {
	Date     string       `json:"date"`
	InMonth  bool         `json:"inMonth"`
	Fixtures []fixtureDTO `json:"fixtures,omitempty"`
}

type calendarMonthDTO struct {
	Year  int                 `json:"year"`
	Month int                 `json:"month"`
	Weeks [][]calendarCellDTO `json:"weeks"`
}

type ganttTaskDTO struct {
	Key      string  `json:"key"`
	Kind     string  `json:"kind"`
	Label    string  `json:"label"`
	MatchID  int64   `json:"matchId"`
	PlayerID int64   `json:"playerId,omitempty"`
	Start    string  `json:"start"`
	End      string  `json:"end"`
	Left     float64 `json:"left"`
	Width    float64 `json:"width"`
}

type ganttRowDTO struct {
	OwnerID string         `json:"ownerId"`
	Tasks   []ganttTaskDTO `json:"tasks"`
}

type ganttChartDTO struct {
	AxisStart string        `json:"axisStart,omitempty"`
	AxisEnd   string        `json:"axisEnd,omitempty"`
	Rows      []ganttRowDTO `json:"rows"`
}

func formatTime(v time.Time) string {
	if v.IsZero() {
		return ""
	}
	return v.UTC().Format(time.RFC3339)
}

func formatDate(v time.Time) string {
	if v.IsZero() {
		return ""
	}
	return v.Format("2006-01-02")
}

func playerToDTO(ctx context.Context, v player.Player) playerDTO {
	ctx, span := startSpan(ctx, "httpapi.playerToDTO")
	defer span.End()

	return playerDTO{
		ID:               v.ID,
		DisplayName:      v.DisplayName(),
		FirstName:        v.FirstName,
		LastName:         v.LastName,
		TeamID:           v.TeamID,
		TeamName:         v.TeamName,
		ImageDataURL:     v.ImageDataURL,
		TeamImageDataURL: v.TeamImageDataURL,
	}
}

func siblingToDTO(v fixture.Sibling) siblingDTO {
	return siblingDTO{
		MatchID: v.MatchID,
		Kickoff: formatTime(v.KickoffAt),
		Label:   v.Label,
	}
}

func aggregatedToDTO(ctx context.Context, v fixture.Aggregated) fixtureDTO {
	ctx, span := startSpan(ctx, "httpapi.aggregatedToDTO")
	defer span.End()

	participants := make([]playerDTO, 0, len(v.Participants))
	for _, p := range v.Participants {
		participants = append(participants, playerToDTO(ctx, p))
	}
	siblings := make([]siblingDTO, 0, len(v.GameweekMatches))
	for _, s := range v.GameweekMatches {
		siblings = append(siblings, siblingToDTO(s))
	}

	return fixtureDTO{
		MatchID:          v.MatchID,
		Kickoff:          formatTime(v.KickoffAt),
		RawKickoff:       v.RawKickoff,
		Label:            v.DisplayLabel(),
		CompetitionPath:  v.DescriptivePath(),
		Gameweek:         v.Gameweek,
		GameweekStart:    formatTime(v.GameweekStart),
		GameweekEnd:      formatTime(v.GameweekEnd),
		DeliveryDate:     formatDate(v.DeliveryDate),
		ParticipantNames: append([]string(nil), v.ParticipantNames...),
		Participants:     participants,
		GameweekMatches:  siblings,
	}
}

func assignmentToDTO(v assignment.Assignment) assignmentDTO {
	return assignmentDTO{
		ReportOwner:  v.ReportOwner,
		VideoEnabled: v.VideoEnabled,
		VideoOwner:   v.VideoOwner,
	}
}

func staffUserToDTO(v staff.User) staffUserDTO {
	return staffUserDTO{
		ID:       v.ID,
		Email:    v.Email,
		FullName: v.FullName,
		Role:     v.Role,
	}
}

func calendarToDTO(ctx context.Context, months []usecase.CalendarMonth) []calendarMonthDTO {
	ctx, span := startSpan(ctx, "httpapi.calendarToDTO")
	defer span.End()

	out := make([]calendarMonthDTO, 0, len(months))
	for _, month := range months {
		dto := calendarMonthDTO{
			Year:  month.Year,
			Month: int(month.Month),
			Weeks: make([][]calendarCellDTO, 0, len(month.Weeks)),
		}
		for _, week := range month.Weeks {
			cells := make([]calendarCellDTO, 0, len(week))
			for _, cell := range week {
				cellDTO := calendarCellDTO{
					Date:    cell.Date.Format("2006-01-02"),
					InMonth: cell.InMonth,
				}
				for _, f := range cell.Fixtures {
					cellDTO.Fixtures = append(cellDTO.Fixtures, aggregatedToDTO(ctx, f))
				}
				cells = append(cells, cellDTO)
			}
			dto.Weeks = append(dto.Weeks, cells)
		}
		out = append(out, dto)
	}
	return out
}

func ganttToDTO(ctx context.Context, chart usecase.GanttChart) ganttChartDTO {
	ctx, span := startSpan(ctx, "httpapi.ganttToDTO")
	defer span.End()

	out := ganttChartDTO{
		AxisStart: formatTime(chart.AxisStart),
		AxisEnd:   formatTime(chart.AxisEnd),
		Rows:      make([]ganttRowDTO, 0, len(chart.Rows)),
	}
	for _, row := range chart.Rows {
		rowDTO := ganttRowDTO{OwnerID: row.OwnerID, Tasks: make([]ganttTaskDTO, 0, len(row.Tasks))}
		for _, task := range row.Tasks {
			rowDTO.Tasks = append(rowDTO.Tasks, ganttTaskDTO{
				Key:      task.Key,
				Kind:     string(task.Kind),
				Label:    task.Label,
				MatchID:  task.MatchID,
				PlayerID: task.PlayerID,
				Start:    formatTime(task.Start),
				End:      formatTime(task.End),
				Left:     task.Left,
				Width:    task.Width,
			})
		}
		out.Rows = append(out.Rows, rowDTO)
	}
	return out
}
