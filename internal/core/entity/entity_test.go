package entity

import (
	"testing"
	"time"

	"vassist/internal/core/skillpack"
)

// fixed anchor: Wednesday 2026-03-04 10:00 UTC
var anchor = time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)

func newExtractor(t *testing.T) *Extractor {
	t.Helper()
	p, err := skillpack.Load()
	if err != nil {
		t.Fatalf("skillpack.Load: %v", err)
	}
	return New(p)
}

func find(ents []Entity, typ skillpack.SlotType) (Entity, bool) {
	for _, e := range ents {
		if e.Type == typ {
			return e, true
		}
	}
	return Entity{}, false
}

func TestExtract_Datetime(t *testing.T) {
	e := newExtractor(t)

	tests := []struct {
		name string
		in   string
		want time.Time
	}{
		{
			name: "tomorrow at 5pm",
			in:   "remind me to call mom tomorrow at 5pm",
			want: time.Date(2026, 3, 5, 17, 0, 0, 0, time.UTC),
		},
		{
			name: "clock with minutes",
			in:   "remind me to stretch at 17:30",
			want: time.Date(2026, 3, 4, 17, 30, 0, 0, time.UTC),
		},
		{
			name: "bare past clock rolls to next day",
			in:   "remind me to hydrate at 9am",
			want: time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC),
		},
		{
			name: "relative minutes",
			in:   "remind me to check the oven in 20 minutes",
			want: anchor.Add(20 * time.Minute),
		},
		{
			name: "weekday rolls forward",
			in:   "remind me to file the report on friday",
			want: time.Date(2026, 3, 6, 10, 0, 0, 0, time.UTC),
		},
		{
			name: "same weekday means next week",
			in:   "remind me to water plants on wednesday",
			want: time.Date(2026, 3, 11, 10, 0, 0, 0, time.UTC),
		},
		{
			name: "noon",
			in:   "remind me to eat at noon",
			want: time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC),
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			ents, err := e.Extract(tc.in, "set_reminder", anchor)
			if err != nil {
				t.Fatalf("Extract: %v", err)
			}
			dt, ok := find(ents, skillpack.SlotDatetime)
			if !ok {
				t.Fatalf("no datetime entity in %v", ents)
			}
			got, err := time.Parse(time.RFC3339, dt.Value)
			if err != nil {
				t.Fatalf("datetime value %q: %v", dt.Value, err)
			}
			if !got.Equal(tc.want) {
				t.Fatalf("datetime = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestExtract_MessageStripsDatetime(t *testing.T) {
	e := newExtractor(t)
	ents, err := e.Extract("remind me to call mom tomorrow at 5pm", "set_reminder", anchor)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	msg, ok := find(ents, skillpack.SlotMessage)
	if !ok {
		t.Fatalf("no message entity in %v", ents)
	}
	if msg.Value != "call mom" {
		t.Fatalf("message = %q, want %q", msg.Value, "call mom")
	}
}

func TestExtract_LocationTrimsDayWords(t *testing.T) {
	e := newExtractor(t)
	ents, err := e.Extract("what's the weather in paris tomorrow", "get_weather", anchor)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	loc, ok := find(ents, skillpack.SlotLocation)
	if !ok {
		t.Fatalf("no location entity in %v", ents)
	}
	if loc.Value != "paris" {
		t.Fatalf("location = %q, want %q", loc.Value, "paris")
	}
	if _, ok := find(ents, skillpack.SlotDatetime); !ok {
		t.Fatal("expected the datetime entity to survive alongside location")
	}
}

func TestExtract_Duration(t *testing.T) {
	e := newExtractor(t)
	ents, err := e.Extract("set a timer for 2 hours 30 minutes", "set_timer", anchor)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	d, ok := find(ents, skillpack.SlotDuration)
	if !ok {
		t.Fatalf("no duration entity in %v", ents)
	}
	if d.Value != "2h30m0s" {
		t.Fatalf("duration = %q, want 2h30m0s", d.Value)
	}
}

func TestExtract_Query(t *testing.T) {
	e := newExtractor(t)
	ents, err := e.Extract("search for decent coffee nearby", "web_search", anchor)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	q, ok := find(ents, skillpack.SlotQuery)
	if !ok {
		t.Fatalf("no query entity in %v", ents)
	}
	if q.Value != "decent coffee nearby" {
		t.Fatalf("query = %q", q.Value)
	}
}

func TestExtract_EmptyIsFine(t *testing.T) {
	e := newExtractor(t)
	ents, err := e.Extract("hello there", "greeting", anchor)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(ents) != 0 {
		t.Fatalf("expected no entities, got %v", ents)
	}
}

func TestResolveOverlaps(t *testing.T) {
	a := Entity{Type: skillpack.SlotDatetime, Start: 0, End: 10}
	b := Entity{Type: skillpack.SlotLocation, Start: 5, End: 12}
	c := Entity{Type: skillpack.SlotDuration, Start: 20, End: 25}

	got := resolveOverlaps([]Entity{b, a, c})
	if len(got) != 2 {
		t.Fatalf("kept %d entities, want 2: %v", len(got), got)
	}
	// a and b tie on nothing: a is longer (10 vs 7) so it wins the overlap
	if got[0].Type != skillpack.SlotDatetime || got[1].Type != skillpack.SlotDuration {
		t.Fatalf("kept wrong entities: %v", got)
	}
}
