// Package entity implements the rule-based slot extractor.
// Extraction is schema-aware: the classified intent narrows which slot types
// are even attempted. Overlapping spans are resolved longest-match-wins with
// ties broken by a fixed type priority order
package entity

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"vassist/internal/core/skillpack"
)

// Entity is one extracted slot candidate
type Entity struct {
	Type       skillpack.SlotType
	Raw        string // the matched span text
	Start      int    // byte offsets into the normalized utterance
	End        int
	Value      string // normalized value: RFC3339 for datetime, Duration string for duration
	Confidence float64
}

// type priority for overlap ties, highest first
var typePriority = map[skillpack.SlotType]int{
	skillpack.SlotDatetime: 0,
	skillpack.SlotDuration: 1,
	skillpack.SlotLocation: 2,
	skillpack.SlotMessage:  3,
	skillpack.SlotQuery:    4,
}

var (
	reRelative = regexp.MustCompile(`\bin (\d+) (minutes?|mins?|hours?|hrs?|days?|weeks?)\b`)
	reClock    = regexp.MustCompile(`\b(?:at )?(\d{1,2}):(\d{2}) ?(am|pm)?\b`)
	reHourAmPm = regexp.MustCompile(`\b(?:at )?(\d{1,2}) ?(am|pm)\b`)
	reDayWord  = regexp.MustCompile(`\b(today|tomorrow|tonight|noon|midnight)\b`)
	reWeekday  = regexp.MustCompile(`\b(?:on )?(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`)
	reDuration = regexp.MustCompile(`\b(\d+) ?(hours?|hrs?|minutes?|mins?|seconds?|secs?|days?)\b`)
	reLocation = regexp.MustCompile(`\b(?:in|at) ([\p{L}][\p{L}']*(?: [\p{L}][\p{L}']*){0,2})`)
	reMessage  = regexp.MustCompile(`\b(?:to|that|about) (.+)$`)
	reQuery    = regexp.MustCompile(`\b(?:search for|look up|google|find) (.+)$`)
)

var weekdays = map[string]time.Weekday{
	"monday": time.Monday, "tuesday": time.Tuesday, "wednesday": time.Wednesday,
	"thursday": time.Thursday, "friday": time.Friday, "saturday": time.Saturday,
	"sunday": time.Sunday,
}

// Extractor pulls structured slot values out of normalized text
type Extractor struct {
	pack *skillpack.Pack
}

// New constructs an Extractor over a compiled pack
func New(pack *skillpack.Pack) *Extractor { return &Extractor{pack: pack} }

// Extract returns the slot candidates found in normalized, narrowed to the
// slot types the intent's schema declares (all types for UNKNOWN). now anchors
// relative datetime resolution so results are deterministic in tests.
// The result is ordered by span start and may be empty; it never errors on
// input the normalizer accepted
func (e *Extractor) Extract(normalized, intentName string, now time.Time) ([]Entity, error) {
	wanted := e.wantedTypes(intentName)

	var cands []Entity
	var dtSpans []span
	if _, ok := wanted[skillpack.SlotDatetime]; ok {
		dts := datetimeSpans(normalized)
		dtSpans = dts
		for _, sp := range dts {
			if v, ok := resolveDatetime(normalized[sp.start:sp.end], now); ok {
				cands = append(cands, Entity{
					Type:       skillpack.SlotDatetime,
					Raw:        normalized[sp.start:sp.end],
					Start:      sp.start,
					End:        sp.end,
					Value:      v.Format(time.RFC3339),
					Confidence: 0.9,
				})
			}
		}
	}
	if _, ok := wanted[skillpack.SlotDuration]; ok {
		cands = append(cands, durations(normalized)...)
	}
	if _, ok := wanted[skillpack.SlotLocation]; ok {
		cands = append(cands, locations(normalized)...)
	}
	if _, ok := wanted[skillpack.SlotMessage]; ok {
		if m, ok := freeText(normalized, reMessage, dtSpans); ok {
			m.Type = skillpack.SlotMessage
			m.Confidence = 0.6
			cands = append(cands, m)
		}
	}
	if _, ok := wanted[skillpack.SlotQuery]; ok {
		if q, ok := freeText(normalized, reQuery, dtSpans); ok {
			q.Type = skillpack.SlotQuery
			q.Confidence = 0.6
			cands = append(cands, q)
		}
	}

	return resolveOverlaps(cands), nil
}

func (e *Extractor) wantedTypes(intentName string) map[skillpack.SlotType]struct{} {
	out := make(map[skillpack.SlotType]struct{}, 5)
	if in := e.pack.ByName(intentName); in != nil {
		for _, s := range in.Slots {
			out[s.Type] = struct{}{}
		}
		return out
	}
	// no schema to narrow by: attempt every type; the free-text extractors
	// only fire on their marker phrases so this stays quiet on plain chatter
	for _, t := range []skillpack.SlotType{
		skillpack.SlotDatetime, skillpack.SlotDuration, skillpack.SlotLocation,
		skillpack.SlotMessage, skillpack.SlotQuery,
	} {
		out[t] = struct{}{}
	}
	return out
}

type span struct{ start, end int }

// datetimeSpans finds all datetime fragments and merges adjacent ones
// ("tomorrow" + "at 5pm" -> "tomorrow at 5pm")
func datetimeSpans(s string) []span {
	var frags []span
	for _, re := range []*regexp.Regexp{reRelative, reClock, reHourAmPm, reDayWord, reWeekday} {
		for _, m := range re.FindAllStringIndex(s, -1) {
			frags = append(frags, span{m[0], m[1]})
		}
	}
	if len(frags) == 0 {
		return nil
	}
	sort.Slice(frags, func(i, j int) bool { return frags[i].start < frags[j].start })

	merged := []span{frags[0]}
	for _, f := range frags[1:] {
		last := &merged[len(merged)-1]
		if f.start <= last.end {
			if f.end > last.end {
				last.end = f.end
			}
			continue
		}
		gap := s[last.end:f.start]
		if strings.TrimSpace(gap) == "" || isFiller(gap) {
			last.end = f.end
			continue
		}
		merged = append(merged, f)
	}
	return merged
}

func isFiller(gap string) bool {
	switch strings.TrimSpace(gap) {
	case "at", "on", "in", "the":
		return true
	}
	return false
}

// resolveDatetime turns a merged datetime fragment into an absolute time.
// Relative "in N units" wins outright; otherwise day references and clock
// times compose. A bare clock time already past today rolls to tomorrow
func resolveDatetime(frag string, now time.Time) (time.Time, bool) {
	if m := reRelative.FindStringSubmatch(frag); m != nil {
		n := atoi(m[1])
		switch {
		case strings.HasPrefix(m[2], "min"):
			return now.Add(time.Duration(n) * time.Minute), true
		case strings.HasPrefix(m[2], "h"):
			return now.Add(time.Duration(n) * time.Hour), true
		case strings.HasPrefix(m[2], "day"):
			return now.AddDate(0, 0, n), true
		case strings.HasPrefix(m[2], "week"):
			return now.AddDate(0, 0, 7*n), true
		}
	}

	base := now
	dayExplicit := false
	hour, minute, hasClock := -1, 0, false

	if m := reWeekday.FindStringSubmatch(frag); m != nil {
		target := weekdays[m[1]]
		ahead := (int(target) - int(now.Weekday()) + 7) % 7
		if ahead == 0 {
			ahead = 7
		}
		base = now.AddDate(0, 0, ahead)
		dayExplicit = true
	} else if m := reDayWord.FindStringSubmatch(frag); m != nil {
		switch m[1] {
		case "tomorrow":
			base = now.AddDate(0, 0, 1)
			dayExplicit = true
		case "today":
			dayExplicit = true
		case "tonight":
			dayExplicit = true
			hour, minute, hasClock = 20, 0, true
		case "noon":
			hour, minute, hasClock = 12, 0, true
		case "midnight":
			hour, minute, hasClock = 0, 0, true
		}
	}

	if m := reClock.FindStringSubmatch(frag); m != nil {
		hour, minute, hasClock = clockFrom(m[1], m[2], m[3]), atoi(m[2]), true
	} else if m := reHourAmPm.FindStringSubmatch(frag); m != nil {
		hour, minute, hasClock = clockFrom(m[1], "", m[2]), 0, true
	}

	if !dayExplicit && !hasClock {
		return time.Time{}, false
	}
	out := base
	if hasClock {
		out = time.Date(base.Year(), base.Month(), base.Day(), hour, minute, 0, 0, base.Location())
	}
	if !dayExplicit && out.Before(now) {
		out = out.AddDate(0, 0, 1)
	}
	return out, true
}

// clockFrom applies the am/pm convention: pm adds 12 except at 12, 12am is 0
func clockFrom(hh, _ string, ampm string) int {
	h := atoi(hh)
	switch ampm {
	case "pm":
		if h != 12 {
			h += 12
		}
	case "am":
		if h == 12 {
			h = 0
		}
	}
	return h
}

func atoi(s string) int {
	n := 0
	for _, r := range s {
		n = n*10 + int(r-'0')
	}
	return n
}

// durations sums every "N unit" fragment into one Duration per contiguous run
func durations(s string) []Entity {
	idx := reDuration.FindAllStringSubmatchIndex(s, -1)
	if len(idx) == 0 {
		return nil
	}
	var out []Entity
	cur := span{idx[0][0], idx[0][1]}
	total := durOf(s, idx[0])
	flush := func() {
		out = append(out, Entity{
			Type:       skillpack.SlotDuration,
			Raw:        s[cur.start:cur.end],
			Start:      cur.start,
			End:        cur.end,
			Value:      total.String(),
			Confidence: 0.9,
		})
	}
	for _, m := range idx[1:] {
		gap := s[cur.end:m[0]]
		if strings.TrimSpace(gap) == "" || strings.TrimSpace(gap) == "and" {
			cur.end = m[1]
			total += durOf(s, m)
			continue
		}
		flush()
		cur = span{m[0], m[1]}
		total = durOf(s, m)
	}
	flush()
	return out
}

func durOf(s string, m []int) time.Duration {
	n := atoi(s[m[2]:m[3]])
	unit := s[m[4]:m[5]]
	switch {
	case strings.HasPrefix(unit, "h"):
		return time.Duration(n) * time.Hour
	case strings.HasPrefix(unit, "min"):
		return time.Duration(n) * time.Minute
	case strings.HasPrefix(unit, "sec"):
		return time.Duration(n) * time.Second
	case strings.HasPrefix(unit, "day"):
		return time.Duration(n) * 24 * time.Hour
	}
	return 0
}

// locations captures "in <place>" / "at <place>" spans, trimming trailing
// datetime words out of the capture ("in paris tomorrow" -> "paris")
func locations(s string) []Entity {
	var out []Entity
	for _, m := range reLocation.FindAllStringSubmatchIndex(s, -1) {
		capStart, capEnd := m[2], m[3]
		words := strings.Fields(s[capStart:capEnd])
		kept := words[:0]
		for _, w := range words {
			if reDayWord.MatchString(w) || reWeekday.MatchString(w) {
				break
			}
			kept = append(kept, w)
		}
		if len(kept) == 0 {
			continue
		}
		val := strings.Join(kept, " ")
		end := capStart + len(val)
		out = append(out, Entity{
			Type:       skillpack.SlotLocation,
			Raw:        s[m[0]:end],
			Start:      m[0],
			End:        end,
			Value:      val,
			Confidence: 0.7,
		})
	}
	return out
}

// freeText captures a marker-introduced tail span with datetime fragments cut out
// ("to call mom tomorrow at 5pm" -> "call mom")
func freeText(s string, re *regexp.Regexp, dtSpans []span) (Entity, bool) {
	m := re.FindStringSubmatchIndex(s)
	if m == nil {
		return Entity{}, false
	}
	capStart, capEnd := m[2], m[3]
	val := cutSpans(s, capStart, capEnd, dtSpans)
	val = strings.Trim(val, " ,.")
	// drop dangling connectives left behind by the cut
	for _, suf := range []string{" at", " on", " in", " by"} {
		val = strings.TrimSuffix(val, suf)
	}
	if val == "" {
		return Entity{}, false
	}
	return Entity{
		Raw:   s[capStart:capEnd],
		Start: capStart,
		End:   capStart + len(val),
		Value: val,
	}, true
}

func cutSpans(s string, start, end int, cuts []span) string {
	var b strings.Builder
	pos := start
	for _, c := range cuts {
		if c.end <= start || c.start >= end {
			continue
		}
		if c.start > pos {
			b.WriteString(s[pos:c.start])
		}
		pos = c.end
		if pos > end {
			pos = end
		}
	}
	if pos < end {
		b.WriteString(s[pos:end])
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// resolveOverlaps keeps the longest span when two candidates overlap,
// breaking ties by type priority, and returns the survivors ordered by start
func resolveOverlaps(cands []Entity) []Entity {
	if len(cands) < 2 {
		return cands
	}
	sort.Slice(cands, func(i, j int) bool {
		li, lj := cands[i].End-cands[i].Start, cands[j].End-cands[j].Start
		if li != lj {
			return li > lj
		}
		return typePriority[cands[i].Type] < typePriority[cands[j].Type]
	})
	var kept []Entity
	for _, c := range cands {
		clash := false
		for _, k := range kept {
			if c.Start < k.End && k.Start < c.End {
				clash = true
				break
			}
		}
		if !clash {
			kept = append(kept, c)
		}
	}
	sort.Slice(kept, func(i, j int) bool { return kept[i].Start < kept[j].Start })
	return kept
}
