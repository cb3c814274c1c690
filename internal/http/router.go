package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
)

type RouterConfig struct {
	Auth       *AuthHandler
	Dashboard  *DashboardHandler
	Venues     *VenueHandler
	Schedules  *ScheduleHandler
	Events     *EventHandler
	Checklists *ChecklistHandler
	Reports    *ReportHandler

	// Session guards every route except login, health and metrics.
	Session SessionValidator
	// Realtime serves the websocket upgrade on /ws.
	Realtime http.Handler
	// Metrics serves the Prometheus exposition on /metrics.
	Metrics http.Handler
	// Readiness backs /readyz; nil reports ready once the process serves.
	Readiness func(context.Context) error

	// Middleware wraps the whole router, outermost first.
	Middleware []func(http.Handler) http.Handler

	// RouteMiddleware runs after route matching so mux.CurrentRoute is set.
	RouteMiddleware []func(http.Handler) http.Handler

	Logger *slog.Logger
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(notFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)
	for _, mw := range cfg.RouteMiddleware {
		if mw != nil {
			r.Use(mw)
		}
	}

	r.HandleFunc("/healthz", healthz).Methods(http.MethodGet)
	r.HandleFunc("/readyz", readyz(cfg.Readiness, cfg.Logger)).Methods(http.MethodGet)
	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics).Methods(http.MethodGet)
	}
	if cfg.Auth != nil {
		r.HandleFunc("/auth/login", cfg.Auth.Login).Methods(http.MethodPost)
	}

	api := r.PathPrefix("/").Subrouter()
	if cfg.Session != nil {
		api.Use(RequireSession(cfg.Session, cfg.Logger))
	}

	if cfg.Auth != nil {
		api.HandleFunc("/auth/refresh", cfg.Auth.Refresh).Methods(http.MethodPost)
		api.HandleFunc("/auth/logout", cfg.Auth.Logout).Methods(http.MethodPost)
		api.HandleFunc("/auth/sessions/{token}", cfg.Auth.RevokeSession).Methods(http.MethodDelete)
	}

	if d := cfg.Dashboard; d != nil {
		api.HandleFunc("/dashboard/overview", d.Overview).Methods(http.MethodGet)
		api.HandleFunc("/dashboard/charts", d.Charts).Methods(http.MethodGet)
		api.HandleFunc("/dashboard/charts/{chart}", d.Chart).Methods(http.MethodGet)
		api.HandleFunc("/dashboard/activity-types", d.ActivityTypes).Methods(http.MethodGet)
		api.HandleFunc("/dashboard/filters", d.Filters).Methods(http.MethodGet)
		api.HandleFunc("/dashboard/checklists", d.Checklists).Methods(http.MethodGet)
		api.HandleFunc("/venues-with-slots", d.VenuesWithSlots).Methods(http.MethodGet)
		api.HandleFunc("/computed-slots", d.ComputedSlots).Methods(http.MethodGet)
		api.HandleFunc("/capacity", d.Capacity).Methods(http.MethodGet)
		api.HandleFunc("/store", d.Store).Methods(http.MethodGet)
		api.HandleFunc("/slot-templates", d.SlotTemplates).Methods(http.MethodGet)
	}

	if v := cfg.Venues; v != nil {
		api.HandleFunc("/venues", v.List).Methods(http.MethodGet)
		api.HandleFunc("/venues", v.Create).Methods(http.MethodPost)
		api.HandleFunc("/venues/bulk", v.Bulk).Methods(http.MethodPost)
		api.HandleFunc("/venues/next-code/{type}", v.NextCode).Methods(http.MethodGet)
		api.HandleFunc("/venues/{id}/apply-default-slots", v.ApplyDefaultSlots).Methods(http.MethodPost)
		api.HandleFunc("/venues/{id}", v.Update).Methods(http.MethodPut)
		api.HandleFunc("/venues/{id}", v.Delete).Methods(http.MethodDelete)
	}

	if s := cfg.Schedules; s != nil {
		api.HandleFunc("/slot-templates", s.CreateTemplate).Methods(http.MethodPost)
		api.HandleFunc("/slot-templates/batch-days", s.BatchDays).Methods(http.MethodPost)
		api.HandleFunc("/slot-templates/{id}", s.UpdateTemplate).Methods(http.MethodPut)
		api.HandleFunc("/slot-templates/{id}", s.DeleteTemplate).Methods(http.MethodDelete)
		api.HandleFunc("/slots/{templateId}/days/{day}/activity", s.AddActivity).Methods(http.MethodPost)
		api.HandleFunc("/slots/{templateId}/days/{day}/activity", s.UpdateActivity).Methods(http.MethodPut)
		api.HandleFunc("/slots/{templateId}/days/{day}/activity", s.RemoveActivity).Methods(http.MethodDelete)
	}

	if e := cfg.Events; e != nil {
		api.HandleFunc("/event-config", e.GetConfig).Methods(http.MethodGet)
		api.HandleFunc("/event-config/days", e.SetDays).Methods(http.MethodPut)
		api.HandleFunc("/event-config/dates", e.SetDates).Methods(http.MethodPut)
		api.HandleFunc("/venue-day-activities/{venueId}/{day}", e.PutVenueDayActivity).Methods(http.MethodPut)
	}

	if c := cfg.Checklists; c != nil {
		api.HandleFunc("/infrastructure", c.ListInfrastructure).Methods(http.MethodGet)
		api.HandleFunc("/infrastructure/batch", c.BatchInfrastructure).Methods(http.MethodPost)
		api.HandleFunc("/venues/{id}/infrastructure", c.GetInfrastructure).Methods(http.MethodGet)
		api.HandleFunc("/venues/{id}/infrastructure", c.PutInfrastructure).Methods(http.MethodPut)
		api.HandleFunc("/venues/{id}/infrastructure", c.DeleteInfrastructure).Methods(http.MethodDelete)
		api.HandleFunc("/audiovisual", c.ListAudiovisual).Methods(http.MethodGet)
		api.HandleFunc("/audiovisual/batch", c.BatchAudiovisual).Methods(http.MethodPost)
		api.HandleFunc("/venues/{id}/audiovisual", c.GetAudiovisual).Methods(http.MethodGet)
		api.HandleFunc("/venues/{id}/audiovisual", c.PutAudiovisual).Methods(http.MethodPut)
		api.HandleFunc("/venues/{id}/audiovisual", c.DeleteAudiovisual).Methods(http.MethodDelete)
	}

	if cfg.Reports != nil {
		api.HandleFunc("/reports", cfg.Reports.Create).Methods(http.MethodPost)
	}
	if cfg.Realtime != nil {
		api.Handle("/ws", cfg.Realtime).Methods(http.MethodGet)
	}

	var handler http.Handler = r
	for i := len(cfg.Middleware) - 1; i >= 0; i-- {
		if cfg.Middleware[i] != nil {
			handler = cfg.Middleware[i](handler)
		}
	}
	return handler
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func readyz(check func(context.Context) error, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			if err := check(r.Context()); err != nil {
				handlerLogger(r.Context(), logger, "Router", "Readiness").WarnContext(r.Context(), "not ready", "error", err)
				newResponder(logger).writeJSON(r.Context(), w, http.StatusServiceUnavailable, errorResponse{Message: msgNotReady})
				return
			}
		}
		healthz(w, r)
	}
}

func notFound(w http.ResponseWriter, r *http.Request) {
	newResponder(nil).writeJSON(r.Context(), w, http.StatusNotFound, errorResponse{Message: msgNotFound})
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	newResponder(nil).writeJSON(r.Context(), w, http.StatusMethodNotAllowed, errorResponse{Message: localizedStatusMessage(http.StatusMethodNotAllowed)})
}
