package usecase

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/valyala/bytebufferpool"

	"github.com/datametrics/matchdesk/internal/domain/assignment"
	"github.com/datametrics/matchdesk/internal/domain/fixture"
	"github.com/datametrics/matchdesk/internal/domain/planner"
	"github.com/datametrics/matchdesk/internal/domain/staff"
)

// utf8BOM makes spreadsheet tools detect the encoding instead of guessing.
const utf8BOM = "\xEF\xBB\xBF"

// scoreSuffixPattern matches a trailing ", 2-1" / ", 0:0" style score so
// exported labels read as pure pairings.
var scoreSuffixPattern = regexp.MustCompile(`,\s*\d+[-–:]\d+\s*$`)

// ExportService renders the planning session as a CSV workbook: one row per
// fixture participant (or per fixture when none are tracked), with one
// column per assignee appearing in the assignment set marking their tasks.
type ExportService struct {
	sessions  planner.Repository
	directory StaffDirectory
}

func NewExportService(sessions planner.Repository, directory StaffDirectory) *ExportService {
	return &ExportService{
		sessions:  sessions,
		directory: directory,
	}
}

func (s *ExportService) ExportCSV(ctx context.Context, userID string) ([]byte, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ExportService.ExportCSV")
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

	users, err := s.directory.ListAssignableUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list assignable users: %w", err)
	}

	return BuildCSV(session, users), nil
}

// Filename returns "<prefix>-<YYYY-MM-DD>.csv" for the given day.
func Filename(prefix string, now time.Time) string {
	if prefix == "" {
		prefix = "fixtures"
	}
	return fmt.Sprintf("%s-%s.csv", prefix, now.Format("2006-01-02"))
}

// BuildCSV assembles the export on a pooled buffer. The output starts with
// a UTF-8 BOM, then a header row, then one row per fixture participant.
// Assignee columns cover the distinct owners appearing in the session's
// assignment set, not the whole directory roster.
func BuildCSV(session planner.Session, users []staff.User) []byte {
	assignees := collectAssignees(session, users)

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	buf.WriteString(utf8BOM)

	header := []string{
		"Player",
		"Date",
		"Match",
		"Competition path",
		"Gameweek",
		"Gameweek start",
		"Gameweek end",
		"Delivery",
		"Match ID",
	}
	for _, a := range assignees {
		header = append(header, a.label)
	}
	writeCSVRow(buf, header)

	for _, f := range session.Fixtures {
		if len(f.Participants) == 0 {
			writeCSVRow(buf, exportRow(session, f, 0, "", assignees))
			continue
		}
		for idx, participant := range f.Participants {
			name := participant.DisplayName()
			if idx < len(f.ParticipantNames) {
				name = f.ParticipantNames[idx]
			}
			writeCSVRow(buf, exportRow(session, f, participant.ID, name, assignees))
		}
	}

	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out
}

// exportAssignee is one assignee column: the owning user id plus the
// directory name shown in the header (the raw id when unknown there).
type exportAssignee struct {
	id    string
	label string
}

// collectAssignees returns the distinct owner ids appearing anywhere in
// the assignment set, sorted by id, labeled from the directory roster.
func collectAssignees(session planner.Session, users []staff.User) []exportAssignee {
	ids := make(map[string]struct{})
	for _, entry := range session.Assignments {
		if entry.ReportOwner != "" {
			ids[entry.ReportOwner] = struct{}{}
		}
		if entry.VideoEnabled && entry.VideoOwner != "" {
			ids[entry.VideoOwner] = struct{}{}
		}
	}

	names := make(map[string]string, len(users))
	for _, user := range users {
		names[user.ID] = user.FullName
	}

	out := make([]exportAssignee, 0, len(ids))
	for id := range ids {
		label := names[id]
		if label == "" {
			label = id
		}
		out = append(out, exportAssignee{id: id, label: label})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

func exportRow(session planner.Session, f fixture.Aggregated, playerID int64, participant string, assignees []exportAssignee) []string {
	key := assignment.NewKey(f.MatchID, playerID)
	entry := session.Assignment(key)

	row := []string{
		participant,
		exportDate(f.KickoffAt),
		StripScoreSuffix(f.DisplayLabel()),
		f.DescriptivePath(),
		exportGameweek(f.Gameweek),
		exportDay(f.GameweekStart),
		exportDay(f.GameweekEnd),
		exportDeliveryDate(session, f),
		strconv.FormatInt(f.MatchID, 10),
	}
	for _, a := range assignees {
		row = append(row, taskCell(entry, a.id))
	}
	return row
}

// taskCell holds exactly one of "report", "video", or blank. An owner who
// carries both tasks shows as the report owner; "video" marks a distinct
// video owner only.
func taskCell(entry assignment.Assignment, ownerID string) string {
	if entry.ReportOwner != "" && entry.ReportOwner == ownerID {
		return string(assignment.TaskReport)
	}
	if entry.VideoEnabled && entry.VideoOwner == ownerID {
		return string(assignment.TaskVideo)
	}
	return ""
}

func exportDate(kickoff time.Time) string {
	if kickoff.IsZero() {
		return ""
	}
	return kickoff.Format("2006-01-02 15:04")
}

func exportDay(day time.Time) string {
	if day.IsZero() {
		return ""
	}
	return day.Format("2006-01-02")
}

func exportGameweek(gw int) string {
	if gw == 0 {
		return ""
	}
	return strconv.Itoa(gw)
}

func exportDeliveryDate(session planner.Session, f fixture.Aggregated) string {
	if override, ok := session.DeliveryOverrides[f.MatchID]; ok && override != "" {
		return override
	}
	if f.DeliveryDate.IsZero() {
		return ""
	}
	return f.DeliveryDate.Format("2006-01-02")
}

// StripScoreSuffix removes a trailing score from a match label, so
// "Milan – Inter, 2-1" exports as "Milan – Inter".
func StripScoreSuffix(label string) string {
	return strings.TrimSpace(scoreSuffixPattern.ReplaceAllString(label, ""))
}

// writeCSVRow appends one comma-separated line. Fields containing commas,
// quotes, or line breaks are quote-wrapped with embedded quotes doubled.
func writeCSVRow(buf *bytebufferpool.ByteBuffer, fields []string) {
	for i, field := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		if strings.ContainsAny(field, ",\"\n\r") {
			buf.WriteByte('"')
			buf.WriteString(strings.ReplaceAll(field, `"`, `""`))
			buf.WriteByte('"')
		} else {
			buf.WriteString(field)
		}
	}
	buf.WriteString("\r\n")
}
