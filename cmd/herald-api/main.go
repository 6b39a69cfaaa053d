package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"herald/internal/platform/config"
	"herald/internal/platform/logger"
	"herald/internal/platform/store"

	"herald/internal/services/api"

	phttp "herald/internal/platform/net/http"
)

func main() {
	root := config.New()
	apiCfg := root.Prefix("HERALD_API_")
	pgCfg := root.Prefix("SERVICE_PGSQL_")

	l := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var st *store.Store
	if pgCfg.MayBool("ENABLED", false) {
		var err error
		st, err = store.Open(ctx, store.Config{
			AppName: "herald-api",
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
	}

	srv := phttp.NewServer(apiCfg)
	api.Mount(srv.Router(), api.Options{
		Config: root.Prefix("HERALD_"),
		Store:  st,
	})

	l.Info().Str("addr", srv.Addr()).Msg("api listening")
	if err := srv.Run(ctx); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
}
