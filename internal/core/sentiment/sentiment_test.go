package sentiment

import "testing"

func TestAnalyze_Table(t *testing.T) {
	a := New()

	tests := []struct {
		name   string
		in     string
		minPol float64
		maxPol float64
		minMag float64
	}{
		{"positive", "this is great thanks", 0.3, 1, 0.3},
		{"negative", "this is terrible and useless", -1, -0.3, 0.3},
		{"negation flips positive", "this is not good", -1, -0.1, 0.1},
		{"negation flips negative", "that wasn't bad", 0.1, 1, 0.1},
		{"intensifier scales", "really awesome", 0.9, 1, 0.9},
		{"neutral", "remind me tomorrow at noon", 0, 0, 0},
		{"empty", "", 0, 0, 0},
		{"non-sentiment word breaks negation window", "not the weather but good", 0.3, 1, 0.3},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := a.Analyze(tc.in)
			if got.Polarity < tc.minPol || got.Polarity > tc.maxPol {
				t.Fatalf("Analyze(%q) polarity = %v, want [%v,%v]", tc.in, got.Polarity, tc.minPol, tc.maxPol)
			}
			if got.Magnitude < tc.minMag {
				t.Fatalf("Analyze(%q) magnitude = %v, want >= %v", tc.in, got.Magnitude, tc.minMag)
			}
			if got.Polarity < -1 || got.Polarity > 1 || got.Magnitude < 0 || got.Magnitude > 1 {
				t.Fatalf("Analyze(%q) out of range: %+v", tc.in, got)
			}
		})
	}
}

func TestAnalyze_Pure(t *testing.T) {
	a := New()
	in := "really not great but not awful either"
	first := a.Analyze(in)
	for i := 0; i < 10; i++ {
		if got := a.Analyze(in); got != first {
			t.Fatalf("Analyze not pure: %+v != %+v", got, first)
		}
	}
}
