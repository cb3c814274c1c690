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

type venueService interface {
	CreateVenue(ctx context.Context, input application.VenueInput) (event.Venue, error)
	UpdateVenue(ctx context.Context, id string, input application.VenueInput) (event.Venue, error)
	DeleteVenue(ctx context.Context, id string) error
	BulkUpsertVenues(ctx context.Context, inputs []application.VenueInput) ([]event.Venue, error)
	NextVenueCode(ctx context.Context, structureType event.StructureType) (string, error)
	ApplyDefaultSlots(ctx context.Context, venueID string) (application.DefaultSlotsResult, error)
}

type venueLister interface {
	Venues() []event.Venue
}

type VenueHandler struct {
	service   venueService
	venues    venueLister
	responder responder
	logger    *slog.Logger
}

func NewVenueHandler(service venueService, venues venueLister, logger *slog.Logger) *VenueHandler {
	base := defaultLogger(logger)
	return &VenueHandler{service: service, venues: venues, responder: newResponder(base), logger: base}
}

func (h *VenueHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "VenueHandler", operation, attrs...)
}

func (h *VenueHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.venues == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toVenueDTOs(h.venues.Venues()))
}

func (h *VenueHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req venueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode venue request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "code", req.Code)
	venue, err := h.service.CreateVenue(r.Context(), req.toInput())
	if err != nil {
		logger.ErrorContext(r.Context(), "venue creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("venue_id", venue.ID).InfoContext(r.Context(), "venue created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toVenueDTO(venue))
}

func (h *VenueHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	venueID := mux.Vars(r)["id"]
	var req venueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "venue_id", venueID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode venue update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Update", "venue_id", venueID)
	venue, err := h.service.UpdateVenue(r.Context(), venueID, req.toInput())
	if err != nil {
		logger.ErrorContext(r.Context(), "venue update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "venue updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toVenueDTO(venue))
}

func (h *VenueHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	venueID := mux.Vars(r)["id"]
	logger := h.log(r.Context(), "Delete", "venue_id", venueID)
	if err := h.service.DeleteVenue(r.Context(), venueID); err != nil {
		logger.ErrorContext(r.Context(), "venue delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "venue deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *VenueHandler) Bulk(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req []venueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Bulk", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode bulk venues", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	inputs := make([]application.VenueInput, 0, len(req))
	for _, item := range req {
		inputs = append(inputs, item.toInput())
	}

	logger := h.log(r.Context(), "Bulk", "venues", len(inputs))
	venues, err := h.service.BulkUpsertVenues(r.Context(), inputs)
	if err != nil {
		logger.ErrorContext(r.Context(), "bulk venue upsert failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(venues)).InfoContext(r.Context(), "venues upserted")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toVenueDTOs(venues))
}

// NextCode accepts "none" for venues without a structure type.
func (h *VenueHandler) NextCode(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	raw := strings.ToLower(strings.TrimSpace(mux.Vars(r)["type"]))
	var structureType event.StructureType
	if raw != "" && raw != "none" {
		structureType = event.StructureType(raw)
		if !structureType.Valid() {
			h.responder.writeFieldError(r.Context(), w, "structureType", "Tipo de estrutura inválido")
			return
		}
	}

	code, err := h.service.NextVenueCode(r.Context(), structureType)
	if err != nil {
		h.log(r.Context(), "NextCode", "structure_type", raw).ErrorContext(r.Context(), "next venue code failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, nextCodeResponse{Code: code})
}

func (h *VenueHandler) ApplyDefaultSlots(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	venueID := mux.Vars(r)["id"]
	logger := h.log(r.Context(), "ApplyDefaultSlots", "venue_id", venueID)
	result, err := h.service.ApplyDefaultSlots(r.Context(), venueID)
	if err != nil {
		logger.ErrorContext(r.Context(), "default slots failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("slots_created", result.SlotsCreated).InfoContext(r.Context(), "default slots applied")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, defaultSlotsResponse{Message: result.Message, SlotsCreated: result.SlotsCreated})
}

type nextCodeResponse struct {
	Code string `json:"code"`
}

type defaultSlotsResponse struct {
	Message      string `json:"message"`
	SlotsCreated int    `json:"slotsCreated"`
}
