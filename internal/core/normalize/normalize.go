// Package normalize provides the deterministic utterance normalizer at the head of the NLU pipeline
// Pipeline order
// 1 UTF-8 repair drop invalid bytes
// 2 Unicode NFKC normalization
// 3 Lower-case per locale casing rules
// 4 Remove zero-width and other format chars
// 5 Width fold fullwidth to ASCII
// 6 Strip remaining control characters
// 7 Collapse whitespace to single spaces and trim
package normalize

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"

	perr "vassist/internal/platform/errors"
)

// Normalizer is concurrency safe; transformer chains are pooled per locale
type Normalizer struct {
	def language.Tag

	mu    sync.Mutex
	pools map[language.Tag]*sync.Pool
}

// New constructs a Normalizer with a default locale used when the caller passes none.
// An unparsable defaultLocale falls back to English
func New(defaultLocale string) *Normalizer {
	tag, err := language.Parse(defaultLocale)
	if err != nil {
		tag = language.English
	}
	return &Normalizer{
		def:   tag,
		pools: make(map[language.Tag]*sync.Pool, 4),
	}
}

// Normalize returns the normalized form of raw following the pipeline described above.
// It fails with an invalid-input error on empty utterances and on payloads that are
// not mostly printable text (binary garbage guard)
func (n *Normalizer) Normalize(raw, locale string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", perr.InvalidInputf("empty utterance")
	}

	// 1 repair UTF-8 drop invalid bytes
	s := strings.ToValidUTF8(raw, "")
	if !mostlyText(s) {
		return "", perr.InvalidInputf("utterance is not text")
	}

	// 2-5 transform via pooled per-locale chain then reset and return it
	tag := n.def
	if locale != "" {
		if t, err := language.Parse(locale); err == nil {
			tag = t
		}
	}
	pool := n.poolFor(tag)
	tr := pool.Get().(transform.Transformer)
	ns, _, err := transform.String(tr, s)
	tr.Reset()
	pool.Put(tr)
	if err != nil {
		return "", perr.Wrap(err, perr.ErrorCodeInvalidInput, "normalize utterance")
	}

	// 6 strip any control runes the chain left behind
	ns = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			return -1
		}
		return r
	}, ns)

	// 7 collapse whitespace and trim
	ns = collapseSpaces(ns)
	if ns == "" {
		return "", perr.InvalidInputf("utterance empty after normalization")
	}
	return ns, nil
}

func (n *Normalizer) poolFor(tag language.Tag) *sync.Pool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if p, ok := n.pools[tag]; ok {
		return p
	}
	p := &sync.Pool{
		New: func() any {
			// order matters and mirrors the documented pipeline
			return transform.Chain(
				norm.NFKC,
				cases.Lower(tag),                   // locale-aware lower casing
				runes.Remove(runes.In(unicode.Cf)), // strip format chars ZWJ ZWNJ FEFF etc
				width.Fold,                         // map fullwidth forms to ASCII
			)
		},
	}
	n.pools[tag] = p
	return p
}

// mostlyText reports whether at least three quarters of the runes are printable or whitespace
func mostlyText(s string) bool {
	var total, printable int
	for _, r := range s {
		total++
		if unicode.IsPrint(r) || unicode.IsSpace(r) {
			printable++
		}
	}
	if total == 0 {
		return false
	}
	return printable*4 >= total*3
}

// collapseSpaces converts whitespace runs to a single ASCII space and trims the edges
func collapseSpaces(s string) string {
	if s == "" {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	inWS := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			inWS = true
			continue
		}
		if inWS && b.Len() > 0 {
			b.WriteByte(' ')
		}
		inWS = false
		b.WriteRune(r)
	}
	return b.String()
}
