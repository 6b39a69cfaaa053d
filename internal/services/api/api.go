// Package api mounts the ops HTTP surface: health, recent notifications
// and ad-hoc mention replies
package api

import (
	"net/http"
	"time"

	"herald/internal/modkit"
	"herald/internal/modkit/module"
	"herald/internal/platform/config"
	"herald/internal/platform/net/middleware"
	"herald/internal/platform/store"

	feedmod "herald/internal/services/feed/module"
	replymod "herald/internal/services/reply/module"

	phttp "herald/internal/platform/net/http"
)

// Options are the API options
type Options struct {
	Config config.Conf
	Store  *store.Store
}

// Mount wires the middleware stack and the module routes onto r
func Mount(r phttp.Router, opt Options) {
	deps := modkit.Deps{Cfg: opt.Config}
	if opt.Store != nil {
		deps.PG = opt.Store.PG
	}

	r.Use(
		middleware.RequestID(),
		middleware.RealIP(),
		middleware.RecoverJSON,
		middleware.AccessLog(middleware.AccessLogOptions{Slow: 2 * time.Second}),
		middleware.CORS(middleware.CORSOptions{}),
		middleware.Timeout(30*time.Second),
	)

	r.Get("/v1/healthz", phttp.Handle(func(req *http.Request) phttp.Response {
		if opt.Store != nil {
			if err := opt.Store.Guard(req.Context()); err != nil {
				return phttp.Error(err)
			}
		}
		return phttp.OK(map[string]string{"status": "ok"})
	}))

	mods := []module.Module{
		feedmod.New(deps),
		replymod.New(deps),
	}
	for _, m := range mods {
		module.Register(m.Name(), m.Ports())
		m.MountRoutes(r)
	}
}
