// Package module wires the feed service: conduit client, notifier, cursor
// store, optional delivery archive and the synchronizer itself
package module

import (
	"net/http"
	"strconv"

	"herald/internal/adapters/chat"
	"herald/internal/adapters/conduit"
	"herald/internal/modkit"
	"herald/internal/services/feed/domain"
	"herald/internal/services/feed/repo"
	"herald/internal/services/feed/service"

	phttp "herald/internal/platform/net/http"
)

// Ports exposed by the feed module
type Ports struct {
	Syncer  domain.SyncerPort
	Archive domain.ArchiveReader
}

// Module implements the feed service module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs the feed module. The conduit client is built from the
// CONDUIT_ config section; the archive is wired only when a database is up
func New(deps modkit.Deps) *Module {
	opts := FromConfig(deps.Cfg)

	cc := deps.Cfg.Prefix("CONDUIT_")
	client := conduit.NewClient(conduit.Options{
		BaseURL: cc.MustString("URL"),
		Token:   cc.MustString("TOKEN"),
	})

	var notifier chat.Notifier
	if opts.Notifier == "webhook" {
		notifier = chat.NewWebhook(chat.WebhookOptions{URL: opts.WebhookURL})
	} else {
		notifier = chat.NewConsole(nil)
	}

	var st repo.Storage
	if deps.PG != nil {
		st = repo.NewTxStorage(deps.PG)
	}

	syncer := service.NewSyncer(service.Config{
		Direction:     domain.Direction(opts.Direction),
		StoryLimit:    opts.StoryLimit,
		Interval:      opts.Interval,
		EpochAfter:    opts.EpochAfter,
		EpochBefore:   opts.EpochBefore,
		AllowActors:   opts.AllowActors,
		DenyActors:    opts.DenyActors,
		NotifyCommit:  opts.NotifyCommit,
		NotifyRetitle: opts.NotifyRetitle,
		ObscureNames:  opts.ObscureNames,
		Bolding:       opts.Bolding,
		HTMLLinks:     opts.HTMLLinks,
		NewsPrefix:    opts.NewsPrefix,
		PrintDate:     opts.PrintDate,
		CursorPath:    opts.CursorPath,
	}, client, notifier, st)

	m := &Module{deps: deps}
	m.ports = Ports{
		Syncer:  syncer,
		Archive: service.NewArchive(st),
	}
	return m
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return "feed" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// MountRoutes satisfies modkit.Module
func (m *Module) MountRoutes(r phttp.Router) {
	r.Get("/v1/notifications", phttp.Handle(func(req *http.Request) phttp.Response {
		limit := 50
		if s := req.URL.Query().Get("limit"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n <= 0 {
				return phttp.Error(invalidLimit(s))
			}
			limit = n
		}
		notes, err := m.ports.Archive.RecentNotifications(req.Context(), limit)
		if err != nil {
			return phttp.Error(err)
		}
		if notes == nil {
			notes = []domain.Notification{}
		}
		return phttp.OK(notes)
	}))
}
