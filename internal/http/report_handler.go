package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/hacktown-ops/internal/application"
	"github.com/example/hacktown-ops/internal/report"
)

type reportExporter interface {
	Export(ctx context.Context) (report.Result, error)
}

type ReportHandler struct {
	exporter  reportExporter
	responder responder
	logger    *slog.Logger
}

func NewReportHandler(exporter reportExporter, logger *slog.Logger) *ReportHandler {
	base := defaultLogger(logger)
	return &ReportHandler{exporter: exporter, responder: newResponder(base), logger: base}
}

// Create exports a dashboard report on demand.
func (h *ReportHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.exporter == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	logger := handlerLogger(r.Context(), h.logger, "ReportHandler", "Create")
	result, err := h.exporter.Export(r.Context())
	if err != nil {
		logger.ErrorContext(r.Context(), "report export failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, reportResponse{
		GeneratedAt: result.GeneratedAt.UTC().Format(time.RFC3339),
		Seq:         result.Seq,
		Locations:   result.Locations,
	})
}

type reportResponse struct {
	GeneratedAt string   `json:"generatedAt"`
	Seq         uint64   `json:"seq"`
	Locations   []string `json:"locations"`
}
