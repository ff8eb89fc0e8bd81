// Package langhint provides best-effort language tagging for normalized utterances.
// It never errors; callers substitute a configured default when ok is false
package langhint

import (
	"strings"
	"unicode"
)

// stopwords for Latin-script languages the builtin skills care about.
// Scoring is a plain hit count over whitespace tokens
var latinStopwords = map[string][]string{
	"en": {"the", "and", "to", "me", "my", "is", "at", "in", "on", "what", "remind", "please"},
	"es": {"el", "la", "los", "que", "de", "por", "una", "para", "hola", "mañana"},
	"de": {"der", "die", "das", "und", "ich", "nicht", "ein", "bitte", "morgen"},
	"fr": {"le", "la", "les", "je", "ne", "pas", "une", "pour", "demain"},
}

// Detect returns a BCP-47 language code for s when the script or stopword
// evidence is low-ambiguity. ok=false means the caller should fall back to
// its configured default language
func Detect(s string) (code string, ok bool) {
	var (
		latin, cyrillic, greek, han, hira, kata, hangul int
		arabic, hebrew, thai                            int
		totalLetters                                    int
	)

	for _, r := range s {
		if !unicode.IsLetter(r) {
			continue
		}
		totalLetters++

		switch {
		case unicode.In(r, unicode.Hangul):
			hangul++
		case unicode.In(r, unicode.Hiragana):
			hira++
		case unicode.In(r, unicode.Katakana):
			kata++
		case unicode.In(r, unicode.Han):
			han++
		case unicode.In(r, unicode.Arabic):
			arabic++
		case unicode.In(r, unicode.Hebrew):
			hebrew++
		case unicode.In(r, unicode.Thai):
			thai++
		case unicode.In(r, unicode.Greek):
			greek++
		case unicode.In(r, unicode.Cyrillic):
			cyrillic++
		default:
			if unicode.In(r, unicode.Latin) {
				latin++
			}
		}
	}
	if totalLetters == 0 {
		return "", false
	}

	// Non-Latin scripts with a strong script -> language mapping are decisive
	switch {
	// Japanese: presence of kana is decisive even mixed with Han
	case hira > 0 || kata > 0:
		return "ja", true
	case hangul > 0:
		return "ko", true
	case han > 0:
		return "zh", true
	case arabic > 0:
		return "ar", true
	case hebrew > 0:
		return "he", true
	case thai > 0:
		return "th", true
	case greek > 0:
		return "el", true
	case cyrillic > 0:
		return "ru", true
	}

	if latin == 0 {
		return "", false
	}

	// Latin needs a stopword probe; ties and zero hits stay undetected
	tokens := strings.Fields(s)
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[strings.Trim(t, ".,!?;:'\"")] = struct{}{}
	}
	best, bestHits, tie := "", 0, false
	for lang, words := range latinStopwords {
		hits := 0
		for _, w := range words {
			if _, ok := set[w]; ok {
				hits++
			}
		}
		switch {
		case hits > bestHits:
			best, bestHits, tie = lang, hits, false
		case hits == bestHits && hits > 0:
			tie = true
		}
	}
	if bestHits == 0 || tie {
		return "", false
	}
	return best, true
}
