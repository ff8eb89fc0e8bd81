// Package module wires the turn orchestrator and the HTTP surface
package module

import (
	"time"

	modkit "vassist/internal/modkit"
	"vassist/internal/modkit/httpkit"
	"vassist/internal/platform/config"

	ahttp "vassist/internal/services/assistant/http"
	svc "vassist/internal/services/assistant/service"
	dlgdom "vassist/internal/services/dialogue/domain"
	nludom "vassist/internal/services/nlu/domain"
	sdom "vassist/internal/services/sessions/domain"
	"vassist/internal/services/skills"

	"vassist/internal/services/assistant/domain"
	tldom "vassist/internal/services/turnlog/domain"
)

// Options gates the built-in skills
type Options struct {
	ServiceName     string
	EnableReminders bool
	EnableCalendar  bool
	EnableWeather   bool
	EnableSearch    bool
}

// FromConfig reads CORE_SKILLS_* values from process config/env
func FromConfig(cfg config.Conf) Options {
	sc := cfg.Prefix("CORE_SKILLS_")
	return Options{
		ServiceName:     cfg.MayString("CORE_SERVICE_NAME", "vassist-gateway"),
		EnableReminders: sc.MayBool("ENABLE_REMINDERS", true),
		EnableCalendar:  sc.MayBool("ENABLE_CALENDAR", true),
		EnableWeather:   sc.MayBool("ENABLE_WEATHER", true),
		EnableSearch:    sc.MayBool("ENABLE_SEARCH", true),
	}
}

// PortsIn names the cross-module seams the orchestrator consumes
type PortsIn struct {
	Sessions sdom.CommandPort
	Pipeline nludom.PipelinePort
	Decider  dlgdom.DeciderPort
	Writer   tldom.WriterPort
}

// Module owns the orchestrator and the /v1 surface
type Module struct {
	name      string
	opts      Options
	svc       *svc.Service
	sessions  sdom.CommandPort
	startedAt time.Time
}

// New constructs the assistant module from the other modules' ports
func New(deps modkit.Deps, in PortsIn, mopts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("assistant")}, mopts...)...)
	opts := FromConfig(deps.Cfg)

	reg := skills.NewRegistry()
	skills.RegisterBuiltins(reg, skills.BuiltinOptions{
		EnableReminders: opts.EnableReminders,
		EnableCalendar:  opts.EnableCalendar,
		EnableWeather:   opts.EnableWeather,
		EnableSearch:    opts.EnableSearch,
	})

	return &Module{
		name:      b.Name,
		opts:      opts,
		svc:       svc.New(in.Sessions, in.Pipeline, in.Decider, reg, in.Writer),
		sessions:  in.Sessions,
		startedAt: time.Now(),
	}
}

// MountRoutes mounts the versioned assistant surface
func (m *Module) MountRoutes(r httpkit.Router) {
	httpkit.MountUnder(r, "/v1", func(v1 httpkit.Router) {
		ahttp.Register(v1, ahttp.Deps{
			ServiceName: m.opts.ServiceName,
			StartedAt:   m.startedAt,
			Turns:       m.svc,
			Sessions:    m.sessions,
		})
	})
}

// Ports exposes the turn seam
func (m *Module) Ports() any { return Ports{Turns: m.svc} }

// Name returns the module name
func (m *Module) Name() string { return m.name }

// Ports bundles what other modules may depend on
type Ports struct {
	Turns domain.TurnPort
}
