// Package intent implements the rule and keyword classifier backend over the compiled skill pack.
// Deterministic for a fixed pack: same normalized input always yields the same result
package intent

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"vassist/internal/core/skillpack"
)

// Result is a classified intent with its confidence in [0,1]
type Result struct {
	Name       string
	Confidence float64
}

// confidence levels for the two match paths; triggers always dominate keywords
const (
	triggerConfidence = 0.95
	keywordUnit       = 0.25 // each weight point is worth this much confidence
	keywordCeiling    = 0.90
)

// Classifier matches trigger phrases on word boundaries first and falls back
// to keyword weight accumulation
type Classifier struct {
	pack *skillpack.Pack
}

// New constructs a Classifier over a compiled pack
func New(pack *skillpack.Pack) *Classifier { return &Classifier{pack: pack} }

// Classify maps normalized text to an intent name and confidence.
// No match maps to the reserved UNKNOWN intent with confidence 0, never an error.
// lang is accepted for backend parity; the rule backend is language-agnostic
// beyond what normalization already did
func (c *Classifier) Classify(normalized, lang string) (Result, error) {
	_ = lang

	// Trigger phrases: longest match wins, ties go to the first intent in
	// pack order (sorted by name, so deterministic)
	var (
		bestTrigger   string
		bestTriggerIn string
		bestScore     int
		bestScoreIn   string
		tokens        = fieldsSet(normalized)
	)
	for i := range c.pack.Intents {
		in := &c.pack.Intents[i]
		for _, tr := range in.Triggers {
			if len(tr) > len(bestTrigger) && containsPhrase(normalized, tr) {
				bestTrigger = tr
				bestTriggerIn = in.Name
			}
		}
		score := 0
		for kw, w := range in.Keywords {
			if _, ok := tokens[kw]; ok {
				score += w
			}
		}
		if score > bestScore {
			bestScore = score
			bestScoreIn = in.Name
		}
	}

	if bestTriggerIn != "" {
		return Result{Name: bestTriggerIn, Confidence: triggerConfidence}, nil
	}
	if bestScore > 0 {
		conf := float64(bestScore) * keywordUnit
		if conf > keywordCeiling {
			conf = keywordCeiling
		}
		return Result{Name: bestScoreIn, Confidence: conf}, nil
	}
	return Result{Name: skillpack.UnknownIntent, Confidence: 0}, nil
}

// fieldsSet splits normalized text into a token set, trimming edge punctuation
func fieldsSet(s string) map[string]struct{} {
	fields := strings.Fields(s)
	out := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		f = strings.TrimFunc(f, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if f != "" {
			out[f] = struct{}{}
		}
	}
	return out
}

// containsPhrase reports whether phrase occurs in s on word boundaries
func containsPhrase(s, phrase string) bool {
	for i := 0; i <= len(s)-len(phrase); {
		j := strings.Index(s[i:], phrase)
		if j < 0 {
			return false
		}
		j += i
		if boundaryBefore(s, j) && boundaryAfter(s, j+len(phrase)) {
			return true
		}
		i = j + 1
	}
	return false
}

func boundaryBefore(s string, idx int) bool {
	if idx == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:idx])
	return !isWordRune(r)
}

func boundaryAfter(s string, idx int) bool {
	if idx >= len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[idx:])
	return !isWordRune(r)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
