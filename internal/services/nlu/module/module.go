// Package module wires the NLU pipeline from config
package module

import (
	"time"

	modkit "vassist/internal/modkit"
	"vassist/internal/modkit/httpkit"
	"vassist/internal/platform/config"

	"vassist/internal/core/entity"
	"vassist/internal/core/intent"
	"vassist/internal/core/normalize"
	"vassist/internal/core/sentiment"
	"vassist/internal/core/skillpack"
	"vassist/internal/services/nlu/domain"
	svc "vassist/internal/services/nlu/service"
)

// Options mirrors the pipeline knobs
type Options struct {
	DefaultLang  string
	RetryTimeout time.Duration
}

// FromConfig reads CORE_NLU_* values from process config/env
func FromConfig(cfg config.Conf) Options {
	nc := cfg.Prefix("CORE_NLU_")
	return Options{
		DefaultLang:  nc.MayString("DEFAULT_LANG", "en"),
		RetryTimeout: nc.MayDuration("RETRY_TIMEOUT", 2*time.Second),
	}
}

// Module owns the pipeline and exposes it as ports
type Module struct {
	name string
	svc  *svc.Service
}

// New constructs the NLU module with the in-process rule backends
func New(deps modkit.Deps, pack *skillpack.Pack, mopts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("nlu")}, mopts...)...)
	opts := FromConfig(deps.Cfg)

	return &Module{
		name: b.Name,
		svc: svc.New(
			normalize.New(opts.DefaultLang),
			pack,
			svc.RuleClassifier{C: intent.New(pack)},
			svc.RuleExtractor{E: entity.New(pack)},
			svc.LexiconAnalyzer{A: sentiment.New()},
			svc.Options{DefaultLang: opts.DefaultLang, RetryTimeout: opts.RetryTimeout},
		),
	}
}

// MountRoutes is a no-op; the pipeline has no transport surface
func (m *Module) MountRoutes(httpkit.Router) {}

// Ports exposes the pipeline seam
func (m *Module) Ports() any { return Ports{Pipeline: m.svc} }

// Name returns the module name
func (m *Module) Name() string { return m.name }

// Ports bundles what other modules may depend on
type Ports struct {
	Pipeline domain.PipelinePort
}
