package expansion

import (
	"reflect"
	"testing"

	"github.com/example/hacktown-ops/internal/event"
)

func TestDetectOverlaps(t *testing.T) {
	t.Parallel()

	selected := []event.WeekDay{event.Segunda, event.Terca}

	tests := []struct {
		name      string
		templates []event.SlotTemplate
		want      []Overlap
	}{
		{
			name: "same venue overlapping on shared day",
			templates: []event.SlotTemplate{
				template("b", "v1", "09:30", "10:30", event.Explicit(event.Terca)),
				template("a", "v1", "09:00", "10:00", event.AllSelected()),
			},
			want: []Overlap{{VenueID: "v1", TemplateID: "a", WithTemplate: "b", Days: []event.WeekDay{event.Terca}}},
		},
		{
			name: "touching ranges do not overlap",
			templates: []event.SlotTemplate{
				template("a", "v1", "09:00", "10:00", event.AllSelected()),
				template("b", "v1", "10:00", "11:00", event.AllSelected()),
			},
		},
		{
			name: "different days do not overlap",
			templates: []event.SlotTemplate{
				template("a", "v1", "09:00", "10:00", event.Explicit(event.Segunda)),
				template("b", "v1", "09:00", "10:00", event.Explicit(event.Terca)),
			},
		},
		{
			name: "different venues do not overlap",
			templates: []event.SlotTemplate{
				template("a", "v1", "09:00", "10:00", event.AllSelected()),
				template("b", "v2", "09:00", "10:00", event.AllSelected()),
			},
		},
		{
			name: "invalid times are ignored",
			templates: []event.SlotTemplate{
				template("a", "v1", "9h", "10:00", event.AllSelected()),
				template("b", "v1", "09:00", "10:00", event.AllSelected()),
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := DetectOverlaps(tt.templates, selected)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestOverlapsFor(t *testing.T) {
	t.Parallel()

	overlaps := []Overlap{
		{VenueID: "v1", TemplateID: "a", WithTemplate: "b"},
		{VenueID: "v1", TemplateID: "c", WithTemplate: "d"},
	}
	if got := OverlapsFor(overlaps, "b"); len(got) != 1 || got[0].TemplateID != "a" {
		t.Fatalf("expected overlap a-b, got %+v", got)
	}
	if got := OverlapsFor(overlaps, "z"); len(got) != 0 {
		t.Fatalf("expected no overlaps, got %+v", got)
	}
}
