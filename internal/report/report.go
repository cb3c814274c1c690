// Package report builds dashboard snapshots from the entity store and exports
// them to the filesystem or an S3 compatible bucket.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/example/hacktown-ops/internal/aggregate"
	"github.com/example/hacktown-ops/internal/application"
	"github.com/example/hacktown-ops/internal/capacity"
	"github.com/example/hacktown-ops/internal/event"
)

// Source is the read side of the entity store used to build a report.
type Source interface {
	Snapshot() (*application.Snapshot, bool)
	Overview(filter aggregate.Filter) aggregate.Overview
	Charts(filter aggregate.Filter) []aggregate.Chart
	VenuesWithSlots(day *event.WeekDay) []event.VenueWithSlots
	Capacity(window capacity.Window) capacity.Result
}

// VenueRow summarises the slots of one venue across every selected day.
type VenueRow struct {
	Code      string `json:"code"`
	Name      string `json:"name"`
	Nucleo    string `json:"nucleo"`
	Structure string `json:"structure"`
	Capacity  int    `json:"capacity"`
	Slots     int    `json:"slots"`
	Filled    int    `json:"filled"`
}

// Report is one dashboard export.
type Report struct {
	GeneratedAt  time.Time          `json:"generatedAt"`
	Seq          uint64             `json:"seq"`
	SelectedDays []string           `json:"selectedDays"`
	Overview     aggregate.Overview `json:"overview"`
	Charts       []aggregate.Chart  `json:"charts"`
	Window       string             `json:"window"`
	Capacity     capacity.Result    `json:"capacity"`
	Venues       []VenueRow         `json:"venues"`
}

// Builder assembles reports from a Source.
type Builder struct {
	source Source
	window capacity.Window
	now    func() time.Time
}

// BuilderOption customises a Builder.
type BuilderOption func(*Builder)

// WithWindow sets the capacity window analysed by the report.
func WithWindow(window capacity.Window) BuilderOption {
	return func(b *Builder) {
		b.window = window
	}
}

// WithClock overrides the report timestamp source.
func WithClock(now func() time.Time) BuilderOption {
	return func(b *Builder) {
		if now != nil {
			b.now = now
		}
	}
}

func NewBuilder(source Source, opts ...BuilderOption) *Builder {
	b := &Builder{source: source, window: capacity.DefaultWindow, now: time.Now}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build captures the current snapshot. It fails with application.ErrNotReady
// before the first load.
func (b *Builder) Build(ctx context.Context) (Report, error) {
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}
	snap, ok := b.source.Snapshot()
	if !ok {
		return Report{}, application.ErrNotReady
	}

	all := aggregate.Filter{}
	result := b.source.Capacity(b.window)
	if result.PerTimeKey == nil {
		result.PerTimeKey = []capacity.TimeKeyCapacity{}
	}
	charts := b.source.Charts(all)
	if charts == nil {
		charts = []aggregate.Chart{}
	}

	report := Report{
		GeneratedAt:  b.now().UTC(),
		Seq:          snap.Seq(),
		SelectedDays: make([]string, 0, len(snap.Config.SelectedDays)),
		Overview:     b.source.Overview(all),
		Charts:       charts,
		Window:       fmt.Sprintf("%s-%s", capacity.FormatMinutes(b.window.Start), capacity.FormatMinutes(b.window.End)),
		Capacity:     result,
		Venues:       venueRows(b.source.VenuesWithSlots(nil)),
	}
	for _, day := range snap.Config.SelectedDays {
		report.SelectedDays = append(report.SelectedDays, string(day))
	}
	return report, nil
}

func venueRows(venues []event.VenueWithSlots) []VenueRow {
	rows := make([]VenueRow, 0, len(venues))
	for _, v := range venues {
		row := VenueRow{
			Code:      v.Code,
			Name:      v.Name,
			Structure: string(v.StructureType),
			Capacity:  v.Capacity,
			Slots:     len(v.Slots),
		}
		if v.Nucleo != nil {
			row.Nucleo = *v.Nucleo
		}
		for _, slot := range v.Slots {
			if slot.Activity != nil {
				row.Filled++
			}
		}
		rows = append(rows, row)
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Code < rows[j].Code })
	return rows
}

// Encode renders the report as indented JSON.
func (r Report) Encode() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}
