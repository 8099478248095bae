package httpapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/datametrics/matchdesk/internal/usecase"
)

func (h *Handler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetCalendar")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	loc := time.UTC
	if tz := strings.TrimSpace(r.URL.Query().Get("tz")); tz != "" {
		parsed, err := time.LoadLocation(tz)
		if err != nil {
			writeError(ctx, w, fmt.Errorf("%w: unknown timezone %q", usecase.ErrInvalidInput, tz))
			return
		}
		loc = parsed
	}

	months, err := h.calendarService.Calendar(ctx, principal.UserID, loc)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, calendarToDTO(ctx, months))
}

func (h *Handler) GetGantt(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetGantt")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	chart, err := h.ganttService.Gantt(ctx, principal.UserID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, ganttToDTO(ctx, chart))
}

func (h *Handler) ReassignTask(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ReassignTask")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req reassignTaskRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	entry, err := h.ganttService.Reassign(ctx, principal.UserID, usecase.ReassignPayload{
		MatchID:     req.MatchID,
		PlayerID:    req.PlayerID,
		Kind:        req.Kind,
		SourceOwner: req.SourceOwner,
		TargetOwner: req.TargetOwner,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "reassign task failed",
			"match_id", req.MatchID, "kind", req.Kind, "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, assignmentToDTO(entry))
}
