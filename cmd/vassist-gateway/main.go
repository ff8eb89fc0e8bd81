package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"vassist/internal/platform/config"
	"vassist/internal/platform/logger"
	phttp "vassist/internal/platform/net/http"
	"vassist/internal/platform/net/middleware"
	"vassist/internal/platform/store"

	modkit "vassist/internal/modkit"
	"vassist/internal/modkit/module"

	"vassist/internal/core/skillpack"
	assistmod "vassist/internal/services/assistant/module"
	dlgmod "vassist/internal/services/dialogue/module"
	nlumod "vassist/internal/services/nlu/module"
	sessmod "vassist/internal/services/sessions/module"
	tlmod "vassist/internal/services/turnlog/module"
)

func main() {
	logger.Init(logger.FromEnv())
	l := logger.Get()

	root := config.New()
	gwCfg := root.Prefix("CORE_GATEWAY_")
	pgCfg := root.Prefix("SERVICE_PGSQL_") // turn log storage, optional
	rdCfg := root.Prefix("SERVICE_REDIS_") // session storage, optional

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sessOpts := sessmod.FromConfig(root)

	pgURL := pgCfg.MayString("DBURL", "")
	st, err := store.Open(ctx, store.Config{
		AppName: "vassist-gateway",
		PG: store.PGConfig{
			Enabled:     pgURL != "",
			URL:         pgURL,
			MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 4)),
			SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
			LogSQL:      pgCfg.MayBool("LOG_SQL", false),
		},
		RD: store.RedisConfig{
			Enabled:  sessOpts.Backend == "redis",
			Addr:     rdCfg.MayString("ADDR", "localhost:6379"),
			Password: rdCfg.MayString("PASSWORD", ""),
			DB:       rdCfg.MayInt("DB", 0),
		},
	}, store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	pack, err := skillpack.Load()
	if err != nil {
		l.Panic().Err(err).Msg("skill pack failed to compile")
	}

	deps := modkit.Deps{Log: *l, Cfg: root, PG: st.PG, RD: st.RD}

	sessions := sessmod.New(deps)
	dialogue := dlgmod.New(deps, pack)
	nlu := nlumod.New(deps, pack)
	turnlog := tlmod.New(deps)
	for _, m := range []module.Module{sessions, dialogue, nlu, turnlog} {
		module.Register(m.Name(), m.Ports())
	}

	sessPorts, ok := module.PortsAs[sessmod.Ports]("sessions")
	if !ok {
		l.Panic().Msg("sessions ports missing")
	}
	dlgPorts, ok := module.PortsAs[dlgmod.Ports]("dialogue")
	if !ok {
		l.Panic().Msg("dialogue ports missing")
	}
	nluPorts, ok := module.PortsAs[nlumod.Ports]("nlu")
	if !ok {
		l.Panic().Msg("nlu ports missing")
	}
	tlPorts, ok := module.PortsAs[tlmod.Ports]("turnlog")
	if !ok {
		l.Panic().Msg("turnlog ports missing")
	}

	assistant := assistmod.New(deps, assistmod.PortsIn{
		Sessions: sessPorts.Commands,
		Pipeline: nluPorts.Pipeline,
		Decider:  dlgPorts.Decider,
		Writer:   tlPorts.Writer,
	})
	module.Register(assistant.Name(), assistant.Ports())

	srv := phttp.NewServer(gwCfg)
	r := srv.Router()
	r.Use(middleware.Defaults()...)
	r.Use(middleware.AccessLogZerolog(middleware.AccessLogOptions{Slow: 2 * time.Second}))
	r.Use(middleware.CORS(middleware.CORSOptions{
		AllowedOrigins: []string{gwCfg.MayString("CORS_ORIGIN", "*")},
	}))
	assistant.MountRoutes(r)

	// background eviction of idle sessions
	go func() {
		tick := time.NewTicker(sessions.SweepEvery())
		defer tick.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-tick.C:
				if n, err := sessPorts.Commands.SweepExpired(ctx, now); err != nil {
					l.Warn().Err(err).Msg("session sweep failed")
				} else if n > 0 {
					l.Info().Int("evicted", n).Msg("session sweep")
				}
			}
		}
	}()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run(ctx) }()

	select {
	case err := <-errCh:
		if err != nil {
			l.Panic().Err(err).Msg("http server stopped")
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			l.Error().Err(err).Msg("graceful shutdown failed")
		}
	}
}
