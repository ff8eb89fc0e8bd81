// Package module wires the turn log writer from config
package module

import (
	"context"

	modkit "vassist/internal/modkit"
	"vassist/internal/modkit/httpkit"
	"vassist/internal/platform/config"
	"vassist/internal/platform/logger"

	"vassist/internal/services/turnlog/domain"
	"vassist/internal/services/turnlog/repo"
)

// Options controls the writer
type Options struct {
	Enabled bool
}

// FromConfig reads CORE_TURNLOG_* values from process config/env
func FromConfig(cfg config.Conf) Options {
	tc := cfg.Prefix("CORE_TURNLOG_")
	return Options{
		Enabled: tc.MayBool("ENABLED", true),
	}
}

// Module owns the writer and exposes it as ports
type Module struct {
	name   string
	writer domain.WriterPort
}

// New constructs the turn log module. Without Postgres (or when disabled) the
// writer degrades to a logging no-op so the orchestrator stays unconditional
func New(deps modkit.Deps, mopts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("turnlog")}, mopts...)...)
	opts := FromConfig(deps.Cfg)

	var w domain.WriterPort = noopWriter{}
	if opts.Enabled && deps.PG != nil {
		// repo.Storage's Write satisfies WriterPort as-is
		w = repo.NewPG().Bind(deps.PG)
	}
	return &Module{name: b.Name, writer: w}
}

// MountRoutes is a no-op; the turn log has no transport surface
func (m *Module) MountRoutes(httpkit.Router) {}

// Ports exposes the writer seam
func (m *Module) Ports() any { return Ports{Writer: m.writer} }

// Name returns the module name
func (m *Module) Name() string { return m.name }

// Ports bundles what other modules may depend on
type Ports struct {
	Writer domain.WriterPort
}

type noopWriter struct{}

// Write drops the record at debug level; learning-loop capture is optional
func (noopWriter) Write(ctx context.Context, rec domain.Record) error {
	logger.C(ctx).Debug().Str("intent", rec.Intent).Msg("turn log disabled, dropping record")
	return nil
}
