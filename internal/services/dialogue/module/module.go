// Package module wires the dialogue state machine from config
package module

import (
	modkit "vassist/internal/modkit"
	"vassist/internal/modkit/httpkit"
	"vassist/internal/platform/config"

	"vassist/internal/core/skillpack"
	"vassist/internal/services/dialogue/domain"
	svc "vassist/internal/services/dialogue/service"
)

// Options mirrors the dialogue service knobs
type Options struct {
	MinConfidence float64
	Policy        domain.Policy
	Fallback      string
}

// FromConfig reads CORE_DIALOGUE_* values from process config/env
func FromConfig(cfg config.Conf) Options {
	dc := cfg.Prefix("CORE_DIALOGUE_")
	return Options{
		MinConfidence: dc.MayFloat64("MIN_CONFIDENCE", 0.7),
		Policy:        domain.Policy(dc.MayEnum("INTERRUPT_POLICY", "abandon", "abandon", "stack")),
		Fallback:      dc.MayString("FALLBACK", "Sorry, I didn't catch that. Could you rephrase?"),
	}
}

// Module owns the decider and exposes it as ports
type Module struct {
	name string
	svc  *svc.Service
}

// New constructs the dialogue module over a compiled pack
func New(deps modkit.Deps, pack *skillpack.Pack, mopts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("dialogue")}, mopts...)...)
	opts := FromConfig(deps.Cfg)
	return &Module{
		name: b.Name,
		svc: svc.New(pack, svc.Options{
			MinConfidence: opts.MinConfidence,
			Policy:        opts.Policy,
			Fallback:      opts.Fallback,
		}),
	}
}

// MountRoutes is a no-op; the dialogue manager has no transport surface
func (m *Module) MountRoutes(httpkit.Router) {}

// Ports exposes the decision seam
func (m *Module) Ports() any { return Ports{Decider: m.svc} }

// Name returns the module name
func (m *Module) Name() string { return m.name }

// Ports bundles what other modules may depend on
type Ports struct {
	Decider domain.DeciderPort
}
