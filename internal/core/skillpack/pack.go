// Package skillpack loads and compiles the intent and slot schemas from the embedded skills.json.
// The classifier, extractor, and dialogue manager all read the same compiled pack
package skillpack

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

//go:embed skills.json
var embedded []byte

// UnknownIntent is the reserved name for utterances no intent matched.
// It never appears in skills.json and always maps to confidence 0
const UnknownIntent = "UNKNOWN"

// SlotType enumerates the extractor-understood slot value kinds
type SlotType string

const (
	SlotDatetime SlotType = "datetime"
	SlotDuration SlotType = "duration"
	SlotLocation SlotType = "location"
	SlotMessage  SlotType = "message"
	SlotQuery    SlotType = "query"
)

type rawSlot struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Required bool   `json:"required"`
	Prompt   string `json:"prompt"`
}

type rawIntent struct {
	Name     string         `json:"name"`
	Skill    string         `json:"skill"`
	Triggers []string       `json:"triggers"`
	Keywords map[string]int `json:"keywords"`
	Slots    []rawSlot      `json:"slots"`
}

type rawPack struct {
	Version int         `json:"version"`
	Intents []rawIntent `json:"intents"`
}

// Slot is one schema entry for an intent, in declared order
type Slot struct {
	Name     string
	Type     SlotType
	Required bool
	Prompt   string
}

// Intent is a compiled intent schema
type Intent struct {
	Name     string
	Skill    string
	Triggers []string       // lowercased exact phrases, matched on word boundaries
	Keywords map[string]int // lowercased token -> weight
	Slots    []Slot         // declared order drives clarification order
}

// Pack is the compiled skill pack
type Pack struct {
	Version int
	Intents []Intent // sorted by name for deterministic iteration

	byName map[string]*Intent
}

// Load returns the compiled pack from the embedded skills.json
func Load() (*Pack, error) {
	return Parse(embedded)
}

// Parse compiles a pack from raw JSON; split out from Load for tests
func Parse(data []byte) (*Pack, error) {
	var rp rawPack
	if err := json.Unmarshal(data, &rp); err != nil {
		return nil, fmt.Errorf("skillpack: parse skills.json: %w", err)
	}
	if rp.Version != 1 {
		return nil, fmt.Errorf("skillpack: unsupported skills.json version %d (want 1)", rp.Version)
	}

	p := &Pack{
		Version: rp.Version,
		byName:  make(map[string]*Intent, len(rp.Intents)),
	}

	seen := make(map[string]struct{}, len(rp.Intents))
	for _, ri := range rp.Intents {
		name := strings.TrimSpace(ri.Name)
		if name == "" {
			return nil, fmt.Errorf("skillpack: intent with empty name")
		}
		if strings.EqualFold(name, UnknownIntent) {
			return nil, fmt.Errorf("skillpack: intent name %q is reserved", name)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("skillpack: duplicate intent %q", name)
		}
		seen[name] = struct{}{}
		if strings.TrimSpace(ri.Skill) == "" {
			return nil, fmt.Errorf("skillpack: intent %q has no skill", name)
		}
		if len(ri.Triggers) == 0 && len(ri.Keywords) == 0 {
			return nil, fmt.Errorf("skillpack: intent %q has no triggers and no keywords", name)
		}

		in := Intent{
			Name:     name,
			Skill:    ri.Skill,
			Keywords: make(map[string]int, len(ri.Keywords)),
		}
		for _, tr := range ri.Triggers {
			tr = strings.ToLower(strings.TrimSpace(tr))
			if tr == "" {
				return nil, fmt.Errorf("skillpack: intent %q has an empty trigger", name)
			}
			in.Triggers = append(in.Triggers, tr)
		}
		for kw, w := range ri.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw == "" || w <= 0 {
				return nil, fmt.Errorf("skillpack: intent %q has invalid keyword %q weight %d", name, kw, w)
			}
			in.Keywords[kw] = w
		}

		seenSlots := make(map[string]struct{}, len(ri.Slots))
		for _, rs := range ri.Slots {
			st := SlotType(rs.Type)
			switch st {
			case SlotDatetime, SlotDuration, SlotLocation, SlotMessage, SlotQuery:
			default:
				return nil, fmt.Errorf("skillpack: intent %q slot %q has unknown type %q", name, rs.Name, rs.Type)
			}
			if rs.Name == "" {
				return nil, fmt.Errorf("skillpack: intent %q has a slot with no name", name)
			}
			if _, dup := seenSlots[rs.Name]; dup {
				return nil, fmt.Errorf("skillpack: intent %q has duplicate slot %q", name, rs.Name)
			}
			seenSlots[rs.Name] = struct{}{}
			if rs.Required && strings.TrimSpace(rs.Prompt) == "" {
				return nil, fmt.Errorf("skillpack: intent %q required slot %q has no prompt", name, rs.Name)
			}
			in.Slots = append(in.Slots, Slot{
				Name:     rs.Name,
				Type:     st,
				Required: rs.Required,
				Prompt:   rs.Prompt,
			})
		}

		p.Intents = append(p.Intents, in)
	}

	sort.Slice(p.Intents, func(i, j int) bool { return p.Intents[i].Name < p.Intents[j].Name })
	for i := range p.Intents {
		p.byName[p.Intents[i].Name] = &p.Intents[i]
	}
	return p, nil
}

// ByName returns the compiled intent schema, or nil for UNKNOWN and unregistered names
func (p *Pack) ByName(name string) *Intent {
	return p.byName[name]
}

// RequiredSlots returns the required slot names for intent name in declared order.
// Unknown intents have no required slots
func (p *Pack) RequiredSlots(name string) []string {
	in := p.byName[name]
	if in == nil {
		return nil
	}
	var out []string
	for _, s := range in.Slots {
		if s.Required {
			out = append(out, s.Name)
		}
	}
	return out
}

// Prompt returns the clarification prompt for a slot of an intent, with a generic fallback
func (p *Pack) Prompt(intentName, slotName string) string {
	if in := p.byName[intentName]; in != nil {
		for _, s := range in.Slots {
			if s.Name == slotName && s.Prompt != "" {
				return s.Prompt
			}
		}
	}
	return fmt.Sprintf("Could you tell me the %s?", slotName)
}
