package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"herald/internal/modkit"
	"herald/internal/modkit/module"
	"herald/internal/platform/config"
	"herald/internal/platform/logger"
	"herald/internal/platform/store"

	feedmod "herald/internal/services/feed/module"
)

func mustSetEnv(key, val string) {
	if val != "" {
		_ = os.Setenv(key, val)
	}
}

func main() {
	var (
		fMode      = flag.String("mode", "worker", "worker runs cycles forever, once runs a single cycle")
		fDirection = flag.String("direction", "", "traversal direction: forward | backward")
		fCursor    = flag.String("cursor", "", "cursor file path override")
		fNotifier  = flag.String("notifier", "", "delivery surface: console | webhook")
		fVerbose   = flag.Bool("verbose", false, "debug logging")
	)
	flag.Parse()

	if *fVerbose {
		mustSetEnv("LOG_LEVEL", "debug")
	}
	l := logger.Get()

	// flags override the HERALD_FEED_* env the module reads
	mustSetEnv("HERALD_FEED_DIRECTION", *fDirection)
	mustSetEnv("HERALD_FEED_CURSOR_PATH", *fCursor)
	mustSetEnv("HERALD_FEED_NOTIFIER", *fNotifier)

	root := config.New()
	pgCfg := root.Prefix("SERVICE_PGSQL_")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps := modkit.Deps{Cfg: root.Prefix("HERALD_"), Log: *l}

	// the delivery archive is optional; the poller runs fine without a db
	if pgCfg.MayBool("ENABLED", false) {
		st, err := store.Open(ctx, store.Config{
			AppName: "herald-poller",
			PG: store.PGConfig{
				Enabled:     true,
				URL:         pgCfg.MustString("DBURL"),
				MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 4)),
				SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
				LogSQL:      pgCfg.MayBool("LOG_SQL", false),
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
		deps.PG = st.PG
	}

	fm := feedmod.New(deps)
	module.Register(fm.Name(), fm.Ports())
	syncer := module.MustPortsOf[feedmod.Ports](fm).Syncer

	switch *fMode {
	case "once":
		rep, err := syncer.RunOnce(ctx)
		if err != nil {
			l.Panic().Err(err).Msg("cycle failed")
		}
		l.Info().
			Int("seen", rep.Seen).
			Int("emitted", rep.Emitted).
			Bool("exhausted", rep.Exhausted).
			Uint64("chronokey", uint64(rep.Cursor.Key)).
			Msg("cycle finished")
	case "worker":
		if err := syncer.RunForever(ctx); err != nil {
			l.Panic().Err(err).Msg("poll loop failed")
		}
		l.Info().Msg("poll loop stopped")
	default:
		l.Panic().Str("mode", *fMode).Msg("unknown mode")
	}
}
