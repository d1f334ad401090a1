package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/sitegraph/internal/graphservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *graphservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Graph queries.
	r.Get("/graph", h.Graph)
	r.Get("/path", h.Path)
	r.Get("/neighbors/*", h.Neighbors)
	r.Get("/positions/*", h.Position)
	r.Get("/search", h.Search)

	// Viewer state and input.
	r.Get("/scene", h.Scene)
	r.Post("/focus", h.Focus)
	r.Post("/pointer", h.Pointer)
	r.Post("/viewport", h.Viewport)
	r.Get("/pointer/ws", h.PointerSocket)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
