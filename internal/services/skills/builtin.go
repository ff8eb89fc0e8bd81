package skills

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// IntentSlot is the reserved slot the dispatcher injects so skills serving
// several intents can branch without a second contract
const IntentSlot = "intent"

// BuiltinOptions gates the optional skills, mirroring the assistant's
// enable flags
type BuiltinOptions struct {
	EnableReminders bool
	EnableCalendar  bool
	EnableWeather   bool
	EnableSearch    bool
}

// RegisterBuiltins populates r with the in-process skills the gateway ships.
// Smalltalk is always on; the rest honor their flags
func RegisterBuiltins(r *Registry, opts BuiltinOptions) {
	r.Register(&smalltalk{})
	if opts.EnableReminders {
		r.Register(newReminders())
	}
	if opts.EnableCalendar {
		r.Register(newCalendar())
	}
	if opts.EnableWeather {
		r.Register(&weather{})
	}
	if opts.EnableSearch {
		r.Register(&search{})
	}
}

// reminders keeps an in-memory list; durable storage is a front-end concern.
// It serves set_reminder, set_timer, and list_reminders, so the per-intent
// slot requirements live in the skill pack rather than here
type reminders struct {
	mu    sync.Mutex
	items []reminderItem
}

type reminderItem struct {
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

func newReminders() *reminders { return &reminders{} }

func (*reminders) Name() string            { return "reminder_manager" }
func (*reminders) RequiredSlots() []string { return nil }

func (s *reminders) Invoke(_ context.Context, slots map[string]string) (Result, error) {
	switch slots[IntentSlot] {
	case "list_reminders":
		s.mu.Lock()
		n := len(s.items)
		s.mu.Unlock()
		return Result{
			Success:     true,
			Payload:     map[string]any{"count": n},
			UserMessage: fmt.Sprintf("You have %d reminders.", n),
		}, nil

	case "set_timer":
		d, err := time.ParseDuration(slots["duration"])
		if err != nil {
			return Result{Success: false, UserMessage: "I couldn't work out that duration."}, nil
		}
		at := time.Now().Add(d)
		s.store(reminderItem{Message: "timer", At: at})
		return Result{
			Success:     true,
			Payload:     map[string]any{"duration": d.String(), "at": at.Format(time.RFC3339)},
			UserMessage: fmt.Sprintf("Timer set for %s.", d),
		}, nil

	default: // set_reminder
		at, err := time.Parse(time.RFC3339, slots["datetime"])
		if err != nil {
			return Result{Success: false, UserMessage: "I couldn't work out that time."}, nil
		}
		item := reminderItem{Message: slots["message"], At: at}
		s.store(item)
		return Result{
			Success:     true,
			Payload:     map[string]any{"message": item.Message, "at": at.Format(time.RFC3339)},
			UserMessage: fmt.Sprintf("Okay, I'll remind you to %s.", item.Message),
		}, nil
	}
}

func (s *reminders) store(it reminderItem) {
	s.mu.Lock()
	s.items = append(s.items, it)
	s.mu.Unlock()
}

// calendar serves add_event and list_events
type calendar struct {
	mu     sync.Mutex
	events []reminderItem
}

func newCalendar() *calendar { return &calendar{} }

func (*calendar) Name() string            { return "calendar" }
func (*calendar) RequiredSlots() []string { return nil }

func (s *calendar) Invoke(_ context.Context, slots map[string]string) (Result, error) {
	if slots[IntentSlot] == "list_events" {
		s.mu.Lock()
		n := len(s.events)
		s.mu.Unlock()
		return Result{
			Success:     true,
			Payload:     map[string]any{"count": n},
			UserMessage: fmt.Sprintf("You have %d events.", n),
		}, nil
	}

	at, err := time.Parse(time.RFC3339, slots["datetime"])
	if err != nil {
		return Result{Success: false, UserMessage: "I couldn't work out when that is."}, nil
	}
	s.mu.Lock()
	s.events = append(s.events, reminderItem{Message: slots["message"], At: at})
	s.mu.Unlock()
	return Result{
		Success:     true,
		Payload:     map[string]any{"title": slots["message"], "at": at.Format(time.RFC3339)},
		UserMessage: fmt.Sprintf("Added %q to your calendar.", slots["message"]),
	}, nil
}

// weather is a stand-in for the external provider; it answers deterministically
type weather struct{}

func (*weather) Name() string            { return "weather" }
func (*weather) RequiredSlots() []string { return []string{"location"} }

func (*weather) Invoke(_ context.Context, slots map[string]string) (Result, error) {
	loc := slots["location"]
	return Result{
		Success:     true,
		Payload:     map[string]any{"location": loc},
		UserMessage: fmt.Sprintf("I don't have a live forecast for %s yet.", loc),
	}, nil
}

type search struct{}

func (*search) Name() string            { return "search" }
func (*search) RequiredSlots() []string { return []string{"query"} }

func (*search) Invoke(_ context.Context, slots map[string]string) (Result, error) {
	q := slots["query"]
	return Result{
		Success:     true,
		Payload:     map[string]any{"query": q},
		UserMessage: fmt.Sprintf("Searching for %q.", q),
	}, nil
}

type smalltalk struct{}

func (*smalltalk) Name() string            { return "smalltalk" }
func (*smalltalk) RequiredSlots() []string { return nil }

func (*smalltalk) Invoke(_ context.Context, slots map[string]string) (Result, error) {
	msg := "Hello! How can I help?"
	switch slots[IntentSlot] {
	case "goodbye":
		msg = "Goodbye! Talk soon."
	case "thanks":
		msg = "You're welcome!"
	}
	return Result{Success: true, UserMessage: msg}, nil
}
