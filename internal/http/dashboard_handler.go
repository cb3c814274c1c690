package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/example/hacktown-ops/internal/aggregate"
	"github.com/example/hacktown-ops/internal/application"
	"github.com/example/hacktown-ops/internal/capacity"
	"github.com/example/hacktown-ops/internal/event"
)

// dashboardViews is the read side of the entity store.
type dashboardViews interface {
	State() application.LoadState
	Snapshot() (*application.Snapshot, bool)
	EventConfig() (event.EventConfig, bool)
	SlotTemplates() []event.SlotTemplate
	ComputedSlots(day *event.WeekDay) []event.ComputedSlot
	VenuesWithSlots(day *event.WeekDay) []event.VenueWithSlots
	Overview(filter aggregate.Filter) aggregate.Overview
	Charts(filter aggregate.Filter) []aggregate.Chart
	Chart(id aggregate.ChartID, filter aggregate.Filter) (aggregate.Chart, bool)
	ActivityTypeGroups(filter aggregate.Filter) []aggregate.ActivityTypeGroup
	FilterOptions() aggregate.FilterOptions
	Capacity(window capacity.Window) capacity.Result
}

type checklistSummarizer interface {
	Summary(ctx context.Context) (application.ChecklistSummary, error)
}

// DashboardHandler serves the computed views. Views are empty until the
// store finishes its first load.
type DashboardHandler struct {
	views     dashboardViews
	summary   checklistSummarizer
	responder responder
	logger    *slog.Logger
}

func NewDashboardHandler(views dashboardViews, summary checklistSummarizer, logger *slog.Logger) *DashboardHandler {
	base := defaultLogger(logger)
	return &DashboardHandler{views: views, summary: summary, responder: newResponder(base), logger: base}
}

func (h *DashboardHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return handlerLogger(ctx, h.logger, "DashboardHandler", operation, attrs...)
}

// parseFilter reads the day, nucleo and structure query parameters.
func (h *DashboardHandler) parseFilter(w http.ResponseWriter, r *http.Request) (aggregate.Filter, bool) {
	query := r.URL.Query()
	var filter aggregate.Filter
	day, ok := h.parseDayQuery(w, r)
	if !ok {
		return filter, false
	}
	filter.Day = day
	filter.Nucleo = strings.TrimSpace(query.Get("nucleo"))
	if structure := strings.TrimSpace(query.Get("structure")); structure != "" {
		st := event.StructureType(strings.ToLower(structure))
		if !st.Valid() {
			h.responder.writeFieldError(r.Context(), w, "structure", "Tipo de estrutura inválido")
			return filter, false
		}
		filter.Structure = st
	}
	return filter, true
}

func (h *DashboardHandler) parseDayQuery(w http.ResponseWriter, r *http.Request) (*event.WeekDay, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get("day"))
	if raw == "" || strings.EqualFold(raw, "all") {
		return nil, true
	}
	day, err := event.ParseWeekDay(raw)
	if err != nil {
		h.responder.writeFieldError(r.Context(), w, "day", "Dia inválido")
		return nil, false
	}
	return &day, true
}

func (h *DashboardHandler) Overview(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.parseFilter(w, r)
	if !ok {
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, h.views.Overview(filter))
}

func (h *DashboardHandler) Charts(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.parseFilter(w, r)
	if !ok {
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, chartsResponse{Charts: h.views.Charts(filter)})
}

func (h *DashboardHandler) Chart(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.parseFilter(w, r)
	if !ok {
		return
	}
	id := aggregate.ChartID(mux.Vars(r)["chart"])
	chart, found := h.views.Chart(id, filter)
	if !found {
		h.log(r.Context(), "Chart", "chart", string(id)).WarnContext(r.Context(), "unknown chart requested")
		h.responder.writeJSON(r.Context(), w, http.StatusNotFound, errorResponse{Message: msgNotFound})
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, chart)
}

func (h *DashboardHandler) ActivityTypes(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.parseFilter(w, r)
	if !ok {
		return
	}
	groups := h.views.ActivityTypeGroups(filter)
	out := make([]activityTypeGroupDTO, 0, len(groups))
	for _, group := range groups {
		dto := activityTypeGroupDTO{Type: string(group.Type), Label: group.Label, Venues: make([]venueDaysDTO, 0, len(group.Venues))}
		for _, vd := range group.Venues {
			dto.Venues = append(dto.Venues, venueDaysDTO{Venue: toVenueDTO(vd.Venue), Days: dayStrings(vd.Days)})
		}
		out = append(out, dto)
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, activityTypesResponse{Groups: out})
}

func (h *DashboardHandler) Filters(w http.ResponseWriter, r *http.Request) {
	options := h.views.FilterOptions()
	structures := make([]labelledValue, 0, len(options.Structures))
	for _, st := range options.Structures {
		structures = append(structures, labelledValue{Value: string(st), Label: st.Label()})
	}
	cfg, _ := h.views.EventConfig()
	days := make([]labelledValue, 0, len(cfg.SelectedDays))
	for _, day := range cfg.SelectedDays {
		days = append(days, labelledValue{Value: string(day), Label: day.Label()})
	}
	nucleos := options.Nucleos
	if nucleos == nil {
		nucleos = []string{}
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, filtersResponse{
		Days:       days,
		Nucleos:    nucleos,
		Structures: structures,
	})
}

func (h *DashboardHandler) Checklists(w http.ResponseWriter, r *http.Request) {
	if h.summary == nil {
		h.responder.writeJSON(r.Context(), w, http.StatusNotFound, errorResponse{Message: msgNotFound})
		return
	}
	summary, err := h.summary.Summary(r.Context())
	if err != nil {
		h.log(r.Context(), "Checklists").ErrorContext(r.Context(), "checklist summary failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, checklistSummaryResponse{
		Infrastructure: toRequirementSummaryDTOs(summary.Infrastructure),
		Audiovisual:    toRequirementSummaryDTOs(summary.Audiovisual),
	})
}

func (h *DashboardHandler) VenuesWithSlots(w http.ResponseWriter, r *http.Request) {
	day, ok := h.parseDayQuery(w, r)
	if !ok {
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toVenueWithSlotsDTOs(h.views.VenuesWithSlots(day)))
}

func (h *DashboardHandler) ComputedSlots(w http.ResponseWriter, r *http.Request) {
	day, ok := h.parseDayQuery(w, r)
	if !ok {
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toComputedSlotDTOs(h.views.ComputedSlots(day)))
}

func (h *DashboardHandler) SlotTemplates(w http.ResponseWriter, r *http.Request) {
	templates := h.views.SlotTemplates()
	out := make([]slotTemplateDTO, 0, len(templates))
	for _, t := range templates {
		out = append(out, toSlotTemplateDTO(t))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, out)
}

// Capacity analyses the window given as start and end "HH:MM" query
// parameters, defaulting to 10:00-18:00.
func (h *DashboardHandler) Capacity(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	window := capacity.DefaultWindow
	start, end := window.Start, window.End
	if raw := strings.TrimSpace(query.Get("start")); raw != "" {
		minutes, err := event.ParseClock(raw)
		if err != nil {
			h.responder.writeFieldError(r.Context(), w, "start", "Horário inválido")
			return
		}
		start = minutes
	}
	if raw := strings.TrimSpace(query.Get("end")); raw != "" {
		minutes, err := event.ParseClock(raw)
		if err != nil {
			h.responder.writeFieldError(r.Context(), w, "end", "Horário inválido")
			return
		}
		end = minutes
	}
	window, err := capacity.NewWindow(start, end)
	if err != nil {
		h.responder.writeFieldError(r.Context(), w, "window", err.Error())
		return
	}
	result := h.views.Capacity(window)
	if result.PerTimeKey == nil {
		result.PerTimeKey = []capacity.TimeKeyCapacity{}
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, capacityResponse{
		Start:  capacity.FormatMinutes(window.Start),
		End:    capacity.FormatMinutes(window.End),
		Result: result,
	})
}

// Store reports the load state and the size of every collection.
func (h *DashboardHandler) Store(w http.ResponseWriter, r *http.Request) {
	resp := storeResponse{State: h.views.State().String()}
	if snap, ok := h.views.Snapshot(); ok {
		resp.Seq = snap.Seq()
		resp.BackgroundLoaded = snap.BackgroundLoaded
		if !snap.LoadedAt.IsZero() {
			resp.LoadedAt = snap.LoadedAt.UTC().Format(time.RFC3339Nano)
		}
		cfg := toEventConfigDTO(snap.Config)
		resp.Config = &cfg
		resp.Counts = map[string]int{
			"venues":             len(snap.Venues),
			"slotTemplates":      len(snap.SlotTemplates),
			"daySlotActivities":  len(snap.DaySlotActivities),
			"venueDayActivities": len(snap.VenueDayActivities),
		}
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, resp)
}

type chartsResponse struct {
	Charts []aggregate.Chart `json:"charts"`
}

type venueDaysDTO struct {
	Venue venueDTO `json:"venue"`
	Days  []string `json:"days"`
}

type activityTypeGroupDTO struct {
	Type   string         `json:"type"`
	Label  string         `json:"label"`
	Venues []venueDaysDTO `json:"venues"`
}

type activityTypesResponse struct {
	Groups []activityTypeGroupDTO `json:"groups"`
}

type labelledValue struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type filtersResponse struct {
	Days       []labelledValue `json:"days"`
	Nucleos    []string        `json:"nucleos"`
	Structures []labelledValue `json:"structures"`
}

type checklistSummaryResponse struct {
	Infrastructure []requirementSummaryDTO `json:"infrastructure"`
	Audiovisual    []requirementSummaryDTO `json:"audiovisual"`
}

type capacityResponse struct {
	Start string `json:"start"`
	End   string `json:"end"`
	capacity.Result
}

type storeResponse struct {
	State            string          `json:"state"`
	Seq              uint64          `json:"seq"`
	BackgroundLoaded bool            `json:"backgroundLoaded"`
	LoadedAt         string          `json:"loadedAt,omitempty"`
	Config           *eventConfigDTO `json:"config,omitempty"`
	Counts           map[string]int  `json:"counts,omitempty"`
}
