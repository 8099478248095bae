package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/datametrics/matchdesk/internal/usecase"
)

func (h *Handler) SearchPlayers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SearchPlayers")
	defer span.End()

	query := strings.TrimSpace(r.URL.Query().Get("query"))
	players, err := h.searchService.SearchPlayers(ctx, query)
	if err != nil {
		h.logger.WarnContext(ctx, "player search failed", "query", query, "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]playerDTO, 0, len(players))
	for _, p := range players {
		out = append(out, playerToDTO(ctx, p))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPlayer")
	defer span.End()

	playerID, err := parseIDPathValue(r, "playerID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.searchService.GetPlayer(ctx, playerID)
	if err != nil {
		h.logger.WarnContext(ctx, "get player failed", "player_id", playerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, playerToDTO(ctx, item))
}

func (h *Handler) GetTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetTeam")
	defer span.End()

	teamID, err := parseIDPathValue(r, "teamID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	name, image, err := h.searchService.GetTeam(ctx, teamID)
	if err != nil {
		h.logger.WarnContext(ctx, "get team failed", "team_id", teamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]any{
		"id":           teamID,
		"name":         name,
		"imageDataUrl": image,
	})
}

func parseIDPathValue(r *http.Request, name string) (int64, error) {
	raw := strings.TrimSpace(r.PathValue(name))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", usecase.ErrInvalidInput, name)
	}
	return id, nil
}
