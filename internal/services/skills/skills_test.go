package skills

import (
	"context"
	"strings"
	"testing"
	"time"

	perr "vassist/internal/platform/errors"
)

func fullRegistry() *Registry {
	r := NewRegistry()
	RegisterBuiltins(r, BuiltinOptions{
		EnableReminders: true,
		EnableCalendar:  true,
		EnableWeather:   true,
		EnableSearch:    true,
	})
	return r
}

func TestRegisterBuiltins_FlagsGateSkills(t *testing.T) {
	r := NewRegistry()
	RegisterBuiltins(r, BuiltinOptions{EnableReminders: true})

	if _, ok := r.Get("reminder_manager"); !ok {
		t.Fatal("reminder_manager should be registered")
	}
	if _, ok := r.Get("weather"); ok {
		t.Fatal("weather should be gated off")
	}
	if _, ok := r.Get("smalltalk"); !ok {
		t.Fatal("smalltalk is always on")
	}
}

func TestInvoke_UnknownSkill(t *testing.T) {
	r := NewRegistry()
	_, err := r.Invoke(context.Background(), "teleporter", nil)
	if !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("unknown skill error = %v", err)
	}
}

func TestInvoke_MissingRequiredSlot(t *testing.T) {
	r := fullRegistry()
	_, err := r.Invoke(context.Background(), "weather", map[string]string{})
	if !perr.IsCode(err, perr.ErrorCodeSlotConflict) {
		t.Fatalf("missing slot error = %v", err)
	}
}

func TestReminders_Lifecycle(t *testing.T) {
	r := fullRegistry()
	ctx := context.Background()
	at := time.Now().Add(24 * time.Hour).Format(time.RFC3339)

	res, err := r.Invoke(ctx, "reminder_manager", map[string]string{
		IntentSlot: "set_reminder",
		"datetime": at,
		"message":  "call mom",
	})
	if err != nil {
		t.Fatalf("set_reminder: %v", err)
	}
	if !res.Success || res.UserMessage == "" {
		t.Fatalf("set_reminder result = %+v", res)
	}

	res, err = r.Invoke(ctx, "reminder_manager", map[string]string{IntentSlot: "list_reminders"})
	if err != nil {
		t.Fatalf("list_reminders: %v", err)
	}
	if got := res.Payload["count"]; got != 1 {
		t.Fatalf("count = %v, want 1", got)
	}
}

func TestReminders_Timer(t *testing.T) {
	r := fullRegistry()
	res, err := r.Invoke(context.Background(), "reminder_manager", map[string]string{
		IntentSlot: "set_timer",
		"duration": "2h30m0s",
	})
	if err != nil {
		t.Fatalf("set_timer: %v", err)
	}
	if !res.Success {
		t.Fatalf("set_timer result = %+v", res)
	}
}

func TestSmalltalk_Variants(t *testing.T) {
	r := fullRegistry()
	ctx := context.Background()
	for intentName, want := range map[string]string{
		"goodbye": "Goodbye",
		"thanks":  "welcome",
	} {
		res, err := r.Invoke(ctx, "smalltalk", map[string]string{IntentSlot: intentName})
		if err != nil {
			t.Fatalf("smalltalk %s: %v", intentName, err)
		}
		if !strings.Contains(res.UserMessage, want) {
			t.Fatalf("smalltalk %s = %q", intentName, res.UserMessage)
		}
	}
}
