package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/datametrics/matchdesk/internal/usecase"
)

func (h *Handler) LoadFixtures(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.LoadFixtures")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req loadFixturesRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	from, _ := time.Parse("2006-01-02", req.From)
	to, _ := time.Parse("2006-01-02", req.To)

	fixtures, err := h.fixtureService.LoadFixtures(ctx, principal.UserID, req.PlayerIDs, from, to)
	if err != nil {
		h.logger.WarnContext(ctx, "load fixtures failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]fixtureDTO, 0, len(fixtures))
	for _, f := range fixtures {
		out = append(out, aggregatedToDTO(ctx, f))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) ListFixtures(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListFixtures")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	fixtures, err := h.fixtureService.Fixtures(ctx, principal.UserID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	out := make([]fixtureDTO, 0, len(fixtures))
	for _, f := range fixtures {
		out = append(out, aggregatedToDTO(ctx, f))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) SetDeliveryDate(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SetDeliveryDate")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	matchID, err := parseIDPathValue(r, "matchID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req setDeliveryDateRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.assignmentService.SetDeliveryOverride(ctx, principal.UserID, matchID, req.Date); err != nil {
		h.logger.WarnContext(ctx, "set delivery date failed", "match_id", matchID, "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]any{
		"matchId": matchID,
		"date":    req.Date,
	})
}
