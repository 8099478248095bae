package httpapi

import (
	"fmt"
	"net/http"

	"github.com/datametrics/matchdesk/internal/domain/assignment"
	"github.com/datametrics/matchdesk/internal/usecase"
)

func (h *Handler) SetReportOwner(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SetReportOwner")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req setReportOwnerRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	key := assignment.NewKey(req.MatchID, req.PlayerID)
	entry, err := h.assignmentService.SetReportOwner(ctx, principal.UserID, key, req.OwnerID)
	if err != nil {
		h.logger.WarnContext(ctx, "set report owner failed", "key", key.String(), "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, assignmentToDTO(entry))
}

func (h *Handler) SetVideoOwner(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SetVideoOwner")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req setVideoOwnerRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	key := assignment.NewKey(req.MatchID, req.PlayerID)
	entry, err := h.assignmentService.SetVideoOwner(ctx, principal.UserID, key, req.OwnerID)
	if err != nil {
		h.logger.WarnContext(ctx, "set video owner failed", "key", key.String(), "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, assignmentToDTO(entry))
}

func (h *Handler) ListAssignableStaff(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListAssignableStaff")
	defer span.End()

	users, err := h.assignmentService.AssignableUsers(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "list assignable staff failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]staffUserDTO, 0, len(users))
	for _, user := range users {
		out = append(out, staffUserToDTO(user))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}
