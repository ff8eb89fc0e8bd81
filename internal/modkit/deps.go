// Package modkit provides module wiring and core deps
package modkit

import (
	"vassist/internal/modkit/repokit"
	"vassist/internal/platform/config"
	"vassist/internal/platform/logger"
	"vassist/internal/platform/store"
)

// Deps holds core dependencies passed to modules
// this is wiring only and does not introduce new abstractions
type Deps struct {
	Log logger.Logger
	Cfg config.Conf
	PG  repokit.TxRunner
	RD  store.Redis
}
