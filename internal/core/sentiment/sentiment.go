// Package sentiment scores affect for normalized utterances.
// Pure lexicon scoring with negation flips and intensifiers; the result only
// annotates response tone and never gates dispatch
package sentiment

import (
	"strings"
	"unicode"
)

// Score is the analyzer output: polarity in [-1,1], magnitude in [0,1]
type Score struct {
	Polarity  float64
	Magnitude float64
}

// signed word weights; values in [-1,1]
var lexicon = map[string]float64{
	"good": 0.6, "great": 0.8, "awesome": 0.9, "excellent": 0.9, "nice": 0.5,
	"love": 0.8, "like": 0.4, "happy": 0.7, "thanks": 0.6, "thank": 0.6,
	"perfect": 0.9, "wonderful": 0.8, "helpful": 0.5, "please": 0.2,
	"bad": -0.6, "terrible": -0.9, "awful": -0.9, "horrible": -0.9,
	"hate": -0.8, "angry": -0.7, "annoying": -0.6, "useless": -0.7,
	"wrong": -0.5, "broken": -0.5, "stupid": -0.7, "worst": -0.9,
}

var negators = map[string]struct{}{
	"not": {}, "never": {}, "no": {}, "don't": {}, "doesn't": {}, "didn't": {},
	"can't": {}, "won't": {}, "isn't": {}, "wasn't": {},
}

var intensifiers = map[string]float64{
	"very": 1.5, "really": 1.5, "so": 1.3, "extremely": 1.8, "totally": 1.4,
	"slightly": 0.5, "somewhat": 0.6, "kinda": 0.6,
}

// Analyzer is stateless; the zero value is usable but New keeps call sites uniform
type Analyzer struct{}

// New constructs an Analyzer
func New() *Analyzer { return &Analyzer{} }

// Analyze scores normalized text. Negators flip the sign of the next sentiment
// word; intensifiers scale it. Empty or neutral text scores (0, 0)
func (a *Analyzer) Analyze(normalized string) Score {
	tokens := strings.Fields(normalized)

	var sum, weight float64
	var hits int
	negate := false
	boost := 1.0

	for _, tok := range tokens {
		tok = strings.TrimFunc(tok, func(r rune) bool {
			return !unicode.IsLetter(r) && r != '\''
		})
		if tok == "" {
			continue
		}
		if _, ok := negators[tok]; ok {
			negate = true
			continue
		}
		if b, ok := intensifiers[tok]; ok {
			boost *= b
			continue
		}
		v, ok := lexicon[tok]
		if !ok {
			// a non-sentiment word breaks the negation/boost window
			negate = false
			boost = 1.0
			continue
		}
		v *= boost
		if negate {
			v = -v
		}
		sum += v
		weight += abs(v)
		hits++
		negate = false
		boost = 1.0
	}

	if hits == 0 {
		return Score{}
	}
	pol := sum / float64(hits)
	pol = clamp(pol, -1, 1)
	mag := weight / float64(hits)
	mag = clamp(mag, 0, 1)
	return Score{Polarity: pol, Magnitude: mag}
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

func clamp(f, lo, hi float64) float64 {
	if f < lo {
		return lo
	}
	if f > hi {
		return hi
	}
	return f
}
