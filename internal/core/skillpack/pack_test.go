package skillpack

import (
	"strings"
	"testing"
)

func TestLoad_EmbeddedPack(t *testing.T) {
	p, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.Version != 1 {
		t.Fatalf("Version = %d, want 1", p.Version)
	}

	in := p.ByName("set_reminder")
	if in == nil {
		t.Fatal("set_reminder missing from pack")
	}
	if in.Skill != "reminder_manager" {
		t.Fatalf("set_reminder skill = %q", in.Skill)
	}
	want := []string{"datetime", "message"}
	got := p.RequiredSlots("set_reminder")
	if len(got) != len(want) {
		t.Fatalf("RequiredSlots = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("RequiredSlots order = %v, want %v", got, want)
		}
	}

	if p.ByName(UnknownIntent) != nil {
		t.Fatal("UNKNOWN must not resolve to a schema")
	}
	if pr := p.Prompt("set_reminder", "datetime"); pr == "" {
		t.Fatal("expected a prompt for set_reminder.datetime")
	}
	if pr := p.Prompt("set_reminder", "nope"); !strings.Contains(pr, "nope") {
		t.Fatalf("generic prompt should name the slot, got %q", pr)
	}
}

func TestParse_Validation(t *testing.T) {
	cases := []struct {
		name string
		json string
		want string
	}{
		{
			name: "bad version",
			json: `{"version":9,"intents":[]}`,
			want: "unsupported",
		},
		{
			name: "duplicate intent",
			json: `{"version":1,"intents":[
				{"name":"a","skill":"s","triggers":["x"],"slots":[]},
				{"name":"a","skill":"s","triggers":["y"],"slots":[]}]}`,
			want: "duplicate intent",
		},
		{
			name: "reserved name",
			json: `{"version":1,"intents":[{"name":"unknown","skill":"s","triggers":["x"],"slots":[]}]}`,
			want: "reserved",
		},
		{
			name: "no matchers",
			json: `{"version":1,"intents":[{"name":"a","skill":"s","slots":[]}]}`,
			want: "no triggers",
		},
		{
			name: "unknown slot type",
			json: `{"version":1,"intents":[{"name":"a","skill":"s","triggers":["x"],
				"slots":[{"name":"z","type":"zodiac","required":true,"prompt":"?"}]}]}`,
			want: "unknown type",
		},
		{
			name: "required slot without prompt",
			json: `{"version":1,"intents":[{"name":"a","skill":"s","triggers":["x"],
				"slots":[{"name":"z","type":"query","required":true}]}]}`,
			want: "no prompt",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.json))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}
