// Package module wires the session manager from config
package module

import (
	"time"

	modkit "vassist/internal/modkit"
	"vassist/internal/modkit/httpkit"
	"vassist/internal/platform/config"
	"vassist/internal/services/sessions/domain"
	"vassist/internal/services/sessions/repo"
	svc "vassist/internal/services/sessions/service"
)

// Options selects the backend and lifecycle tuning
type Options struct {
	Backend      string // "memory" | "redis"
	IdleTimeout  time.Duration
	HistoryLimit int
	SweepEvery   time.Duration
}

// FromConfig reads CORE_SESSIONS_* values from process config/env
func FromConfig(cfg config.Conf) Options {
	sc := cfg.Prefix("CORE_SESSIONS_")
	return Options{
		Backend:      sc.MayEnum("BACKEND", "memory", "memory", "redis"),
		IdleTimeout:  sc.MayDuration("IDLE_TIMEOUT", 30*time.Minute),
		HistoryLimit: sc.MayInt("HISTORY", 20),
		SweepEvery:   sc.MayDuration("SWEEP_EVERY", time.Minute),
	}
}

// Module owns the session service and exposes it as ports
type Module struct {
	name string
	opts Options
	svc  *svc.Service
}

// New constructs the sessions module.
// The redis backend requires deps.RD; missing it is a wiring bug worth a panic
func New(deps modkit.Deps, mopts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("sessions")}, mopts...)...)
	opts := FromConfig(deps.Cfg)

	var store domain.StorePort
	switch opts.Backend {
	case "redis":
		if deps.RD == nil {
			panic("sessions module: redis backend configured but no redis connection")
		}
		store = repo.NewRedis(deps.RD, opts.IdleTimeout)
	default:
		store = repo.NewMemory()
	}

	return &Module{
		name: b.Name,
		opts: opts,
		svc: svc.New(store, svc.Options{
			IdleTimeout:  opts.IdleTimeout,
			HistoryLimit: opts.HistoryLimit,
		}),
	}
}

// MountRoutes is a no-op; the assistant module owns the HTTP surface
func (m *Module) MountRoutes(httpkit.Router) {}

// Ports exposes the session command surface for other modules
func (m *Module) Ports() any { return Ports{Commands: m.svc} }

// Name returns the module name
func (m *Module) Name() string { return m.name }

// SweepEvery exposes the configured background sweep interval
func (m *Module) SweepEvery() time.Duration { return m.opts.SweepEvery }

// Ports bundles what other modules may depend on
type Ports struct {
	Commands domain.CommandPort
}
