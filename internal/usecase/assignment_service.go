package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/datametrics/matchdesk/internal/domain/assignment"
	"github.com/datametrics/matchdesk/internal/domain/planner"
	"github.com/datametrics/matchdesk/internal/domain/staff"
	"github.com/datametrics/matchdesk/internal/platform/logging"
)

// StaffDirectory lists assignable team members.
type StaffDirectory interface {
	ListAssignableUsers(ctx context.Context) ([]staff.User, error)
}

// AssignmentService edits the assignment matrix inside a planning session.
// The video-requires-report rule is enforced here: setting a video owner
// without a report owner is rejected, and clearing the report owner resets
// the video fields.
type AssignmentService struct {
	sessions  planner.Repository
	directory StaffDirectory
	logger    *logging.Logger
}

func NewAssignmentService(sessions planner.Repository, directory StaffDirectory, logger *logging.Logger) *AssignmentService {
	if logger == nil {
		logger = logging.Default()
	}
	return &AssignmentService{
		sessions:  sessions,
		directory: directory,
		logger:    logger,
	}
}

func (s *AssignmentService) SetReportOwner(ctx context.Context, userID string, key assignment.Key, ownerID string) (assignment.Assignment, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AssignmentService.SetReportOwner")
	defer span.End()

	session, err := s.session(ctx, userID)
	if err != nil {
		return assignment.Assignment{}, err
	}

	ownerID = strings.TrimSpace(ownerID)
	entry := session.Assignment(key)
	if ownerID == "" {
		// Clearing the report resets the whole entry.
		entry = assignment.Assignment{}
	} else {
		entry.ReportOwner = ownerID
		// Convenience default: a fresh report assignment enables video with
		// the same owner.
		entry.VideoEnabled = true
		entry.VideoOwner = ownerID
	}

	return s.store(ctx, session, key, entry)
}

func (s *AssignmentService) SetVideoOwner(ctx context.Context, userID string, key assignment.Key, ownerID string) (assignment.Assignment, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AssignmentService.SetVideoOwner")
	defer span.End()

	session, err := s.session(ctx, userID)
	if err != nil {
		return assignment.Assignment{}, err
	}

	entry := session.Assignment(key)
	if entry.ReportOwner == "" {
		return assignment.Assignment{}, fmt.Errorf("%w: video owner requires a report owner", ErrInvalidInput)
	}

	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		entry.VideoEnabled = false
		entry.VideoOwner = ""
	} else {
		entry.VideoEnabled = true
		entry.VideoOwner = ownerID
	}

	return s.store(ctx, session, key, entry)
}

// Assignment returns the stored entry or a zero default; missing entries
// are not an error.
func (s *AssignmentService) Assignment(ctx context.Context, userID string, key assignment.Key) (assignment.Assignment, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AssignmentService.Assignment")
	defer span.End()

	session, ok, err := s.sessions.Get(ctx, userID)
	if err != nil {
		return assignment.Assignment{}, fmt.Errorf("get planning session: %w", err)
	}
	if !ok {
		return assignment.Assignment{}, nil
	}
	return session.Assignment(key), nil
}

// SetDeliveryOverride pins an explicit delivery date for a match. A blank
// date clears the override and falls back to the computed default.
func (s *AssignmentService) SetDeliveryOverride(ctx context.Context, userID string, matchID int64, date string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.AssignmentService.SetDeliveryOverride")
	defer span.End()

	if matchID <= 0 {
		return fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}

	session, err := s.session(ctx, userID)
	if err != nil {
		return err
	}

	date = strings.TrimSpace(date)
	if date == "" {
		delete(session.DeliveryOverrides, matchID)
	} else {
		if _, parseErr := time.Parse("2006-01-02", date); parseErr != nil {
			return fmt.Errorf("%w: delivery date must be YYYY-MM-DD", ErrInvalidInput)
		}
		session.DeliveryOverrides[matchID] = date
	}

	if err := s.sessions.Save(ctx, session); err != nil {
		return fmt.Errorf("save planning session: %w", err)
	}
	return nil
}

// AssignableUsers returns the staff directory entries eligible as owners,
// sorted by full name for stable selectors.
func (s *AssignmentService) AssignableUsers(ctx context.Context) ([]staff.User, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AssignmentService.AssignableUsers")
	defer span.End()

	users, err := s.directory.ListAssignableUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list assignable users: %w", err)
	}

	out := make([]staff.User, 0, len(users))
	for _, user := range users {
		if staff.IsAssignableRole(user.Role) {
			out = append(out, user)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return out, nil
}

func (s *AssignmentService) session(ctx context.Context, userID string) (planner.Session, error) {
	if userID == "" {
		return planner.Session{}, fmt.Errorf("%w: user id is required", ErrUnauthorized)
	}

	session, ok, err := s.sessions.Get(ctx, userID)
	if err != nil {
		return planner.Session{}, fmt.Errorf("get planning session: %w", err)
	}
	if !ok {
		return planner.Session{}, fmt.Errorf("%w: no fixtures loaded yet", ErrNotFound)
	}
	return session, nil
}

func (s *AssignmentService) store(ctx context.Context, session planner.Session, key assignment.Key, entry assignment.Assignment) (assignment.Assignment, error) {
	if entry.IsZero() {
		delete(session.Assignments, key.String())
	} else {
		session.Assignments[key.String()] = entry
	}

	if err := s.sessions.Save(ctx, session); err != nil {
		return assignment.Assignment{}, fmt.Errorf("save planning session: %w", err)
	}
	return entry, nil
}
