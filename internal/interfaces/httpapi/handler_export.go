package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/datametrics/matchdesk/internal/usecase"
)

func (h *Handler) ExportFixturesCSV(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ExportFixturesCSV")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	payload, err := h.exportService.ExportCSV(ctx, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "export fixtures failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	filename := usecase.Filename(h.exportPrefix, time.Now())
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}
