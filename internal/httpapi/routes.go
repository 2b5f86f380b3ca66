// Package httpapi is the presentation surface: it serves the rendered view
// and accepts user actions over HTTP and a websocket stream.
package httpapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/DoyleJ11/wuwa-draft-client/internal/hub"
	"github.com/DoyleJ11/wuwa-draft-client/internal/metrics"
	"github.com/DoyleJ11/wuwa-draft-client/internal/render"
	"github.com/DoyleJ11/wuwa-draft-client/internal/session"
)

// Session is the part of *session.Session the handlers use.
type Session interface {
	Do(ctx context.Context, a session.Action) error
	View(ctx context.Context) (render.View, error)
	Stats(ctx context.Context) (session.Stats, error)
}

type Deps struct {
	Session Session
	Hub     *hub.Hub
	Metrics *metrics.Manager
	Log     *zap.Logger
	// OriginPatterns is passed to websocket.Accept for /ws.
	OriginPatterns []string
}

func SetupRoutes(d Deps) http.Handler {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", Healthz(d.Session))
	r.Get("/view", GetView(d.Session))
	r.Post("/actions", PostAction(d.Session, d.Log))
	r.Get("/ws", Stream(d))
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	}
	return r
}
