package intent

import (
	"testing"

	"vassist/internal/core/skillpack"
)

func mustPack(t *testing.T) *skillpack.Pack {
	t.Helper()
	p, err := skillpack.Load()
	if err != nil {
		t.Fatalf("skillpack.Load: %v", err)
	}
	return p
}

func TestClassify_Table(t *testing.T) {
	c := New(mustPack(t))

	tests := []struct {
		name    string
		in      string
		intent  string
		minConf float64
		maxConf float64
	}{
		{
			name:    "trigger phrase",
			in:      "remind me to call mom tomorrow at 5pm",
			intent:  "set_reminder",
			minConf: 0.9, maxConf: 1,
		},
		{
			name:    "trigger with boundary not substring",
			in:      "the grinder reminded nobody", // "remind me" must not match inside "reminded"
			intent:  skillpack.UnknownIntent,
			minConf: 0, maxConf: 0,
		},
		{
			name:    "weather trigger",
			in:      "what's the weather in paris",
			intent:  "get_weather",
			minConf: 0.9, maxConf: 1,
		},
		{
			name:    "keyword scoring",
			in:      "any forecast for rain today",
			intent:  "get_weather",
			minConf: 0.7, maxConf: 0.9,
		},
		{
			name:    "greeting",
			in:      "hey there",
			intent:  "greeting",
			minConf: 0.9, maxConf: 1,
		},
		{
			name:   "no match is unknown",
			in:     "quantum flux capacitor polarity",
			intent: skillpack.UnknownIntent,
			minConf: 0, maxConf: 0,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got, err := c.Classify(tc.in, "en")
			if err != nil {
				t.Fatalf("Classify(%q) error: %v", tc.in, err)
			}
			if got.Name != tc.intent {
				t.Fatalf("Classify(%q) intent = %q, want %q", tc.in, got.Name, tc.intent)
			}
			if got.Confidence < tc.minConf || got.Confidence > tc.maxConf {
				t.Fatalf("Classify(%q) confidence = %v, want [%v,%v]", tc.in, got.Confidence, tc.minConf, tc.maxConf)
			}
		})
	}
}

func TestClassify_Deterministic(t *testing.T) {
	c := New(mustPack(t))
	in := "schedule a meeting with the team tomorrow"
	first, err := c.Classify(in, "en")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	for i := 0; i < 50; i++ {
		got, err := c.Classify(in, "en")
		if err != nil {
			t.Fatalf("Classify: %v", err)
		}
		if got != first {
			t.Fatalf("run %d: %+v != %+v", i, got, first)
		}
	}
}

func TestContainsPhrase(t *testing.T) {
	cases := []struct {
		s, phrase string
		want      bool
	}{
		{"remind me later", "remind me", true},
		{"reminded me later", "remind me", false},
		{"say hi now", "hi", true},
		{"hippo", "hi", false},
		{"hi", "hi", true},
	}
	for _, tc := range cases {
		if got := containsPhrase(tc.s, tc.phrase); got != tc.want {
			t.Fatalf("containsPhrase(%q, %q) = %v, want %v", tc.s, tc.phrase, got, tc.want)
		}
	}
}
