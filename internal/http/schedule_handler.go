package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/example/hacktown-ops/internal/application"
	"github.com/example/hacktown-ops/internal/event"
)

type scheduleService interface {
	CreateSlotTemplate(ctx context.Context, input application.SlotTemplateInput) (application.SlotTemplateResult, error)
	UpdateSlotTemplate(ctx context.Context, id string, input application.SlotTemplateInput) (application.SlotTemplateResult, error)
	DeleteSlotTemplate(ctx context.Context, id string, force bool) error
	ApplyDays(ctx context.Context, input application.BatchDaysInput) (application.BatchResult, error)

	AddActivityToSlot(ctx context.Context, templateID string, day event.WeekDay, input application.ActivityInput) (event.DaySlotActivity, error)
	UpdateActivityInSlot(ctx context.Context, templateID string, day event.WeekDay, input application.ActivityInput) (event.Activity, error)
	RemoveActivityFromSlot(ctx context.Context, templateID string, day event.WeekDay) error
}

// ScheduleHandler serves slot templates and the activities bound to slot
// instances.
type ScheduleHandler struct {
	service   scheduleService
	responder responder
	logger    *slog.Logger
}

func NewScheduleHandler(service scheduleService, logger *slog.Logger) *ScheduleHandler {
	base := defaultLogger(logger)
	return &ScheduleHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *ScheduleHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "ScheduleHandler", operation, attrs...)
}

func (h *ScheduleHandler) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req slotTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "CreateTemplate", "venue_id", req.VenueID)
	result, err := h.service.CreateSlotTemplate(r.Context(), req.toInput())
	if err != nil {
		logger.ErrorContext(r.Context(), "slot template creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.renderTemplate(r.Context(), w, result, http.StatusCreated)
}

func (h *ScheduleHandler) UpdateTemplate(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	templateID := mux.Vars(r)["id"]
	var req slotTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "UpdateTemplate", "template_id", templateID)
	result, err := h.service.UpdateSlotTemplate(r.Context(), templateID, req.toInput())
	if err != nil {
		logger.ErrorContext(r.Context(), "slot template update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.renderTemplate(r.Context(), w, result, http.StatusOK)
}

// DeleteTemplate refuses templates with bound activities unless ?force=true.
func (h *ScheduleHandler) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	templateID := mux.Vars(r)["id"]
	force := false
	if raw := r.URL.Query().Get("force"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			h.responder.writeFieldError(r.Context(), w, "force", "Valor inválido")
			return
		}
		force = parsed
	}

	logger := h.log(r.Context(), "DeleteTemplate", "template_id", templateID, "force", force)
	if err := h.service.DeleteSlotTemplate(r.Context(), templateID, force); err != nil {
		logger.ErrorContext(r.Context(), "slot template delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "slot template deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *ScheduleHandler) BatchDays(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req batchDaysRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "BatchDays", "templates", len(req.TemplateIDs), "mode", req.Mode)
	result, err := h.service.ApplyDays(r.Context(), req.toInput())
	if err != nil {
		logger.ErrorContext(r.Context(), "batch days failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toBatchResultDTO(result))
}

// slotPath resolves the {templateId} and {day} path variables.
func (h *ScheduleHandler) slotPath(w http.ResponseWriter, r *http.Request) (string, event.WeekDay, bool) {
	vars := mux.Vars(r)
	day, err := event.ParseWeekDay(vars["day"])
	if err != nil {
		h.responder.writeFieldError(r.Context(), w, "day", "Dia inválido")
		return "", "", false
	}
	return vars["templateId"], day, true
}

func (h *ScheduleHandler) AddActivity(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	templateID, day, ok := h.slotPath(w, r)
	if !ok {
		return
	}

	var req activityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "AddActivity", "template_id", templateID, "day", string(day))
	dsa, err := h.service.AddActivityToSlot(r.Context(), templateID, day, req.toInput())
	if err != nil {
		logger.ErrorContext(r.Context(), "activity assignment failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("activity_id", dsa.ActivityID).InfoContext(r.Context(), "activity assigned")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toDaySlotActivityDTO(dsa))
}

func (h *ScheduleHandler) UpdateActivity(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	templateID, day, ok := h.slotPath(w, r)
	if !ok {
		return
	}

	var req activityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "UpdateActivity", "template_id", templateID, "day", string(day))
	activity, err := h.service.UpdateActivityInSlot(r.Context(), templateID, day, req.toInput())
	if err != nil {
		logger.ErrorContext(r.Context(), "activity update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toActivityDTO(&activity))
}

func (h *ScheduleHandler) RemoveActivity(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	templateID, day, ok := h.slotPath(w, r)
	if !ok {
		return
	}

	logger := h.log(r.Context(), "RemoveActivity", "template_id", templateID, "day", string(day))
	if err := h.service.RemoveActivityFromSlot(r.Context(), templateID, day); err != nil {
		logger.ErrorContext(r.Context(), "activity removal failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *ScheduleHandler) renderTemplate(ctx context.Context, w http.ResponseWriter, result application.SlotTemplateResult, status int) {
	h.responder.writeJSON(ctx, w, status, slotTemplateResponse{
		Template: toSlotTemplateDTO(result.Template),
		Warnings: toOverlapDTOs(result.Overlaps),
	})
}
