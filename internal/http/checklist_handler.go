package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/example/hacktown-ops/internal/application"
	"github.com/example/hacktown-ops/internal/event"
)

type checklistService interface {
	ListInfrastructure(ctx context.Context) ([]event.Infrastructure, error)
	GetInfrastructure(ctx context.Context, venueID string) (event.Infrastructure, error)
	UpsertInfrastructure(ctx context.Context, item event.Infrastructure) (event.Infrastructure, error)
	BatchUpsertInfrastructure(ctx context.Context, items []event.Infrastructure) ([]event.Infrastructure, error)
	DeleteInfrastructure(ctx context.Context, venueID string) error

	ListAudiovisual(ctx context.Context) ([]event.Audiovisual, error)
	GetAudiovisual(ctx context.Context, venueID string) (event.Audiovisual, error)
	UpsertAudiovisual(ctx context.Context, item event.Audiovisual) (event.Audiovisual, error)
	BatchUpsertAudiovisual(ctx context.Context, items []event.Audiovisual) ([]event.Audiovisual, error)
	DeleteAudiovisual(ctx context.Context, venueID string) error
}

// ChecklistHandler serves the infrastructure and audiovisual checklists of
// each venue. The venue in the path wins over any venueId in the body.
type ChecklistHandler struct {
	service   checklistService
	responder responder
	logger    *slog.Logger
}

func NewChecklistHandler(service checklistService, logger *slog.Logger) *ChecklistHandler {
	base := defaultLogger(logger)
	return &ChecklistHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *ChecklistHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "ChecklistHandler", operation, attrs...)
}

func (h *ChecklistHandler) fail(ctx context.Context, w http.ResponseWriter, logger *slog.Logger, msg string, err error) {
	logger.ErrorContext(ctx, msg, "error", err, "error_kind", application.ErrorKind(err))
	h.responder.handleServiceError(ctx, w, err)
}

func (h *ChecklistHandler) ListInfrastructure(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListInfrastructure(r.Context())
	if err != nil {
		h.fail(r.Context(), w, h.log(r.Context(), "ListInfrastructure"), "infrastructure list failed", err)
		return
	}
	out := make([]infrastructureDTO, 0, len(items))
	for _, item := range items {
		out = append(out, infrastructureDTO(item))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, out)
}

func (h *ChecklistHandler) GetInfrastructure(w http.ResponseWriter, r *http.Request) {
	venueID := mux.Vars(r)["id"]
	item, err := h.service.GetInfrastructure(r.Context(), venueID)
	if err != nil {
		h.fail(r.Context(), w, h.log(r.Context(), "GetInfrastructure", "venue_id", venueID), "infrastructure lookup failed", err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, infrastructureDTO(item))
}

func (h *ChecklistHandler) PutInfrastructure(w http.ResponseWriter, r *http.Request) {
	venueID := mux.Vars(r)["id"]
	var req infrastructureDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	req.VenueID = venueID

	logger := h.log(r.Context(), "PutInfrastructure", "venue_id", venueID)
	item, err := h.service.UpsertInfrastructure(r.Context(), event.Infrastructure(req))
	if err != nil {
		h.fail(r.Context(), w, logger, "infrastructure upsert failed", err)
		return
	}
	logger.InfoContext(r.Context(), "infrastructure saved")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, infrastructureDTO(item))
}

func (h *ChecklistHandler) BatchInfrastructure(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Updates []infrastructureDTO `json:"updates"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	items := make([]event.Infrastructure, 0, len(req.Updates))
	for _, dto := range req.Updates {
		items = append(items, event.Infrastructure(dto))
	}

	logger := h.log(r.Context(), "BatchInfrastructure", "items", len(items))
	saved, err := h.service.BatchUpsertInfrastructure(r.Context(), items)
	if err != nil {
		h.fail(r.Context(), w, logger, "infrastructure batch failed", err)
		return
	}
	out := make([]infrastructureDTO, 0, len(saved))
	for _, item := range saved {
		out = append(out, infrastructureDTO(item))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, out)
}

func (h *ChecklistHandler) DeleteInfrastructure(w http.ResponseWriter, r *http.Request) {
	venueID := mux.Vars(r)["id"]
	if err := h.service.DeleteInfrastructure(r.Context(), venueID); err != nil {
		h.fail(r.Context(), w, h.log(r.Context(), "DeleteInfrastructure", "venue_id", venueID), "infrastructure delete failed", err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *ChecklistHandler) ListAudiovisual(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListAudiovisual(r.Context())
	if err != nil {
		h.fail(r.Context(), w, h.log(r.Context(), "ListAudiovisual"), "audiovisual list failed", err)
		return
	}
	out := make([]audiovisualDTO, 0, len(items))
	for _, item := range items {
		out = append(out, audiovisualDTO(item))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, out)
}

func (h *ChecklistHandler) GetAudiovisual(w http.ResponseWriter, r *http.Request) {
	venueID := mux.Vars(r)["id"]
	item, err := h.service.GetAudiovisual(r.Context(), venueID)
	if err != nil {
		h.fail(r.Context(), w, h.log(r.Context(), "GetAudiovisual", "venue_id", venueID), "audiovisual lookup failed", err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, audiovisualDTO(item))
}

func (h *ChecklistHandler) PutAudiovisual(w http.ResponseWriter, r *http.Request) {
	venueID := mux.Vars(r)["id"]
	var req audiovisualDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	req.VenueID = venueID

	logger := h.log(r.Context(), "PutAudiovisual", "venue_id", venueID)
	item, err := h.service.UpsertAudiovisual(r.Context(), event.Audiovisual(req))
	if err != nil {
		h.fail(r.Context(), w, logger, "audiovisual upsert failed", err)
		return
	}
	logger.InfoContext(r.Context(), "audiovisual saved")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, audiovisualDTO(item))
}

func (h *ChecklistHandler) BatchAudiovisual(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Updates []audiovisualDTO `json:"updates"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	items := make([]event.Audiovisual, 0, len(req.Updates))
	for _, dto := range req.Updates {
		items = append(items, event.Audiovisual(dto))
	}

	logger := h.log(r.Context(), "BatchAudiovisual", "items", len(items))
	saved, err := h.service.BatchUpsertAudiovisual(r.Context(), items)
	if err != nil {
		h.fail(r.Context(), w, logger, "audiovisual batch failed", err)
		return
	}
	out := make([]audiovisualDTO, 0, len(saved))
	for _, item := range saved {
		out = append(out, audiovisualDTO(item))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, out)
}

func (h *ChecklistHandler) DeleteAudiovisual(w http.ResponseWriter, r *http.Request) {
	venueID := mux.Vars(r)["id"]
	if err := h.service.DeleteAudiovisual(r.Context(), venueID); err != nil {
		h.fail(r.Context(), w, h.log(r.Context(), "DeleteAudiovisual", "venue_id", venueID), "audiovisual delete failed", err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}
