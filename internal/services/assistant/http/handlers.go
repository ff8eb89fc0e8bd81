// Package http provides the turn and session transport for the assistant
package http

import (
	stdhttp "net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"vassist/internal/modkit/httpkit"
	perr "vassist/internal/platform/errors"

	"vassist/internal/services/assistant/domain"
	sdom "vassist/internal/services/sessions/domain"
)

// TurnRequest is the wire form of one utterance
type TurnRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Text      string `json:"text" validate:"required,max=2000"`
	Locale    string `json:"locale,omitempty" validate:"omitempty,bcp47_language_tag"`
	Timestamp string `json:"timestamp,omitempty"` // RFC3339; empty means now
}

// SweepResponse reports one eviction pass
type SweepResponse struct {
	Evicted int `json:"evicted"`
}

// HealthResponse is the health payload
type HealthResponse struct {
	OK      bool   `json:"ok"`
	Service string `json:"service"`
	Started string `json:"started"`
	Now     string `json:"now"`
}

// Deps are the handler dependencies
type Deps struct {
	ServiceName string
	StartedAt   time.Time
	Turns       domain.TurnPort
	Sessions    sdom.CommandPort
}

type handlers struct {
	deps Deps
}

// Register mounts the assistant routes
func Register(r httpkit.Router, d Deps) {
	h := &handlers{deps: d}

	httpkit.PostJSON[TurnRequest](r, "/turn", h.turn)
	httpkit.Get(r, "/sessions/{id}", h.session)
	httpkit.Post(r, "/sessions/sweep", h.sweep)
	httpkit.Get(r, "/healthz", h.health)
}

func (h *handlers) turn(r *stdhttp.Request, in TurnRequest) (any, error) {
	var at time.Time
	if in.Timestamp != "" {
		t, err := time.Parse(time.RFC3339, in.Timestamp)
		if err != nil {
			return nil, perr.WithField(perr.Newf(perr.ErrorCodeValidation, "timestamp must be RFC3339"), "timestamp")
		}
		at = t
	}
	return h.deps.Turns.Turn(r.Context(), domain.TurnInput{
		SessionID: in.SessionID,
		Text:      in.Text,
		Locale:    in.Locale,
		At:        at,
	})
}

func (h *handlers) session(r *stdhttp.Request) (any, error) {
	return h.deps.Sessions.Get(r.Context(), chi.URLParam(r, "id"))
}

func (h *handlers) sweep(r *stdhttp.Request) (any, error) {
	n, err := h.deps.Sessions.SweepExpired(r.Context(), time.Now())
	if err != nil {
		return nil, err
	}
	return SweepResponse{Evicted: n}, nil
}

func (h *handlers) health(_ *stdhttp.Request) (any, error) {
	return HealthResponse{
		OK:      true,
		Service: h.deps.ServiceName,
		Started: h.deps.StartedAt.UTC().Format(time.RFC3339),
		Now:     time.Now().UTC().Format(time.RFC3339),
	}, nil
}
