package httpapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"

	"github.com/datametrics/matchdesk/internal/platform/logging"
	"github.com/datametrics/matchdesk/internal/usecase"
)

type Handler struct {
	searchService     *usecase.SearchService
	fixtureService    *usecase.FixtureService
	assignmentService *usecase.AssignmentService
	calendarService   *usecase.CalendarService
	ganttService      *usecase.GanttService
	exportService     *usecase.ExportService
	exportPrefix      string
	logger            *logging.Logger
	validator         *validator.Validate
}

func NewHandler(
	searchService *usecase.SearchService,
	fixtureService *usecase.FixtureService,
	assignmentService *usecase.AssignmentService,
	calendarService *usecase.CalendarService,
	ganttService *usecase.GanttService,
	exportService *usecase.ExportService,
	exportPrefix string,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		searchService:     searchService,
		fixtureService:    fixtureService,
		assignmentService: assignmentService,
		calendarService:   calendarService,
		ganttService:      ganttService,
		exportService:     exportService,
		exportPrefix:      exportPrefix,
		logger:            logger,
		validator:         validator.New(),
	}
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

func decodeJSONBody(r *http.Request, target any) error {
	decoder := jsoniter.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

type loadFixturesRequest struct {
	PlayerIDs []int64 `json:"player_ids" validate:"required,min=1,max=12,dive,gt=0"`
	From      string  `json:"from" validate:"required,datetime=2006-01-02"`
	To        string  `json:"to" validate:"required,datetime=2006-01-02"`
}

type setReportOwnerRequest struct {
	MatchID  int64  `json:"match_id" validate:"required,gt=0"`
	PlayerID int64  `json:"player_id" validate:"gte=0"`
	OwnerID  string `json:"owner_id"`
}

type setVideoOwnerRequest struct {
	MatchID  int64  `json:"match_id" validate:"required,gt=0"`
	PlayerID int64  `json:"player_id" validate:"gte=0"`
	OwnerID  string `json:"owner_id"`
}

type setDeliveryDateRequest struct {
	Date string `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

type reassignTaskRequest struct {
	MatchID     int64  `json:"match_id" validate:"required,gt=0"`
	PlayerID    int64  `json:"player_id" validate:"gte=0"`
	Kind        string `json:"kind" validate:"required,oneof=report video"`
	SourceOwner string `json:"source_owner" validate:"required"`
	TargetOwner string `json:"target_owner" validate:"required"`
}
