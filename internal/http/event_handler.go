package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/example/hacktown-ops/internal/application"
	"github.com/example/hacktown-ops/internal/event"
)

type eventService interface {
	SetSelectedDays(ctx context.Context, days []event.WeekDay) (event.EventConfig, error)
	SetEventDates(ctx context.Context, startDate, endDate *string) (event.EventConfig, error)
	UpdateVenueDayActivity(ctx context.Context, venueID string, day event.WeekDay, activityType event.ActivityType) (event.VenueDayActivity, error)
}

type configReader interface {
	EventConfig() (event.EventConfig, bool)
}

// EventHandler serves the event configuration and the per-day activity type
// of each venue.
type EventHandler struct {
	service   eventService
	config    configReader
	responder responder
	logger    *slog.Logger
}

func NewEventHandler(service eventService, config configReader, logger *slog.Logger) *EventHandler {
	base := defaultLogger(logger)
	return &EventHandler{service: service, config: config, responder: newResponder(base), logger: base}
}

func (h *EventHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "EventHandler", operation, attrs...)
}

func (h *EventHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.config == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	cfg, ok := h.config.EventConfig()
	if !ok {
		h.responder.handleServiceError(r.Context(), w, application.ErrNotReady)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toEventConfigDTO(cfg))
}

func (h *EventHandler) SetDays(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req selectedDaysRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "SetDays", "days", len(req.SelectedDays))
	cfg, err := h.service.SetSelectedDays(r.Context(), rawDays(req.SelectedDays))
	if err != nil {
		logger.ErrorContext(r.Context(), "selected days update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "selected days updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toEventConfigDTO(cfg))
}

func (h *EventHandler) SetDates(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req eventDatesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "SetDates")
	cfg, err := h.service.SetEventDates(r.Context(), req.StartDate, req.EndDate)
	if err != nil {
		logger.ErrorContext(r.Context(), "event dates update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toEventConfigDTO(cfg))
}

func (h *EventHandler) PutVenueDayActivity(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	vars := mux.Vars(r)
	day, err := event.ParseWeekDay(vars["day"])
	if err != nil {
		h.responder.writeFieldError(r.Context(), w, "day", "Dia inválido")
		return
	}

	var req struct {
		ActivityType string `json:"activityType"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	venueID := vars["venueId"]
	activityType := event.ActivityType(strings.ToLower(strings.TrimSpace(req.ActivityType)))
	logger := h.log(r.Context(), "PutVenueDayActivity", "venue_id", venueID, "day", string(day), "activity_type", string(activityType))
	vda, err := h.service.UpdateVenueDayActivity(r.Context(), venueID, day, activityType)
	if err != nil {
		logger.ErrorContext(r.Context(), "venue day activity update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toVenueDayActivityDTO(vda))
}
