// Package skills defines the capability contract the dialogue manager
// dispatches through, and an in-process registry of builtin skills.
// The dispatcher never inspects concrete skill types
package skills

import (
	"context"
	"sort"
	"sync"

	perr "vassist/internal/platform/errors"
)

// Result is what every skill invocation returns
type Result struct {
	Success     bool           `json:"success"`
	Payload     map[string]any `json:"payload,omitempty"`
	UserMessage string         `json:"user_message"`
}

// Skill is the uniform capability contract
type Skill interface {
	Name() string
	RequiredSlots() []string
	Invoke(ctx context.Context, slots map[string]string) (Result, error)
}

// Registry maps skill name to implementation
type Registry struct {
	mu     sync.RWMutex
	skills map[string]Skill
}

// NewRegistry constructs an empty registry
func NewRegistry() *Registry {
	return &Registry{skills: make(map[string]Skill, 8)}
}

// Register adds or replaces a skill by its name
func (r *Registry) Register(s Skill) {
	r.mu.Lock()
	r.skills[s.Name()] = s
	r.mu.Unlock()
}

// Get returns the named skill
func (r *Registry) Get(name string) (Skill, bool) {
	r.mu.RLock()
	s, ok := r.skills[name]
	r.mu.RUnlock()
	return s, ok
}

// Names lists registered skills, sorted
func (r *Registry) Names() []string {
	r.mu.RLock()
	out := make([]string, 0, len(r.skills))
	for n := range r.skills {
		out = append(out, n)
	}
	r.mu.RUnlock()
	sort.Strings(out)
	return out
}

// Invoke dispatches to the named skill after checking its required slots are
// all present. An unregistered name or a missing slot is an error the caller
// turns into an escalation, never a crash
func (r *Registry) Invoke(ctx context.Context, name string, slots map[string]string) (Result, error) {
	s, ok := r.Get(name)
	if !ok {
		return Result{}, perr.NotFoundf("skill %s is not registered", name)
	}
	for _, req := range s.RequiredSlots() {
		if _, ok := slots[req]; !ok {
			return Result{}, perr.SlotConflictf("skill %s missing required slot %s", name, req)
		}
	}
	return s.Invoke(ctx, slots)
}
