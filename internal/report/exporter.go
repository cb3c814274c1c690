package report

import (
	"context"
	"log/slog"
	"time"

	"github.com/example/hacktown-ops/internal/application"
	"github.com/example/hacktown-ops/internal/logging"
)

const (
	contentTypeJSON = "application/json"
	contentTypeCSV  = "text/csv"
)

// Result describes one finished export.
type Result struct {
	GeneratedAt time.Time `json:"generatedAt"`
	Seq         uint64    `json:"seq"`
	Locations   []string  `json:"locations"`
}

// Exporter renders a report as JSON plus a venue CSV and hands both to a Sink.
type Exporter struct {
	builder *Builder
	sink    Sink
	logger  *slog.Logger
}

func NewExporter(builder *Builder, sink Sink) *Exporter {
	return NewExporterWithLogger(builder, sink, nil)
}

func NewExporterWithLogger(builder *Builder, sink Sink, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{builder: builder, sink: sink, logger: logger}
}

// objectKeys groups exports by UTC date.
func objectKeys(at time.Time) (jsonKey, csvKey string) {
	base := at.UTC().Format("2006/01/02") + "/dashboard-" + at.UTC().Format("20060102T150405Z")
	return base + ".json", base + "-venues.csv"
}

// Export builds and stores one report.
func (e *Exporter) Export(ctx context.Context) (result Result, err error) {
	logger := logging.Scoped(ctx, e.logger, "component", "report", "operation", "Export")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "report export failed", "error", err, "error_kind", application.ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "report exported", "seq", result.Seq, "locations", result.Locations)
	}()

	report, err := e.builder.Build(ctx)
	if err != nil {
		return Result{}, err
	}
	payload, err := report.Encode()
	if err != nil {
		return Result{}, err
	}
	venues, err := EncodeVenuesCSV(report.Venues)
	if err != nil {
		return Result{}, err
	}

	jsonKey, csvKey := objectKeys(report.GeneratedAt)
	result = Result{GeneratedAt: report.GeneratedAt, Seq: report.Seq}
	location, err := e.sink.Put(ctx, jsonKey, contentTypeJSON, payload)
	if err != nil {
		return Result{}, err
	}
	result.Locations = append(result.Locations, location)
	location, err = e.sink.Put(ctx, csvKey, contentTypeCSV, venues)
	if err != nil {
		return Result{}, err
	}
	result.Locations = append(result.Locations, location)
	return result, nil
}
