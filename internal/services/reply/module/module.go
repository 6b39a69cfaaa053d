// Package module wires the reply service and its HTTP surface
package module

import (
	"net/http"

	"herald/internal/adapters/conduit"
	"herald/internal/core/render"
	"herald/internal/modkit"
	"herald/internal/platform/net/http/bind"
	"herald/internal/services/reply/domain"
	"herald/internal/services/reply/service"

	phttp "herald/internal/platform/net/http"
)

// Ports exposed by the reply module
type Ports struct {
	Replier domain.ReplierPort
}

// Module implements the reply service module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs the reply module. It builds its own Conduit client from
// the same CONDUIT_ section the feed module uses; the underlying HTTP
// client is safe for concurrent use by both paths
func New(deps modkit.Deps) *Module {
	cc := deps.Cfg.Prefix("CONDUIT_")
	client := conduit.NewClient(conduit.Options{
		BaseURL: cc.MustString("URL"),
		Token:   cc.MustString("TOKEN"),
	})

	ff := deps.Cfg.Prefix("FEED_")
	rend := render.Renderer{HTMLLinks: ff.MayBool("HTML_LINKS", false)}

	m := &Module{deps: deps}
	m.ports = Ports{Replier: service.New(client, rend)}
	return m
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return "reply" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

type replyRequest struct {
	Text string `json:"text" validate:"required"`
}

type replyResponse struct {
	Replies []string `json:"replies"`
}

// MountRoutes satisfies modkit.Module
func (m *Module) MountRoutes(r phttp.Router) {
	r.Post("/v1/replies", phttp.Handle(func(req *http.Request) phttp.Response {
		in, err := bind.ParseJSON[replyRequest](req)
		if err != nil {
			return phttp.Error(err)
		}
		replies, err := m.ports.Replier.RepliesFor(req.Context(), in.Text)
		if err != nil {
			return phttp.Error(err)
		}
		if replies == nil {
			replies = []string{}
		}
		return phttp.OK(replyResponse{Replies: replies})
	}))
}
