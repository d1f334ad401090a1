package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/sitegraph/internal/graphservice"
	"github.com/starford/sitegraph/internal/index"
)

// Handler holds API route handlers.
type Handler struct {
	svc *graphservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *graphservice.Service) *Handler {
	return &Handler{svc: svc}
}

// nodeID extracts the node id from the wildcard part of the URL.
// Supports encoded slashes (e.g. topics%2FGo).
func nodeID(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return false
	}
	return true
}

// Graph handles GET /api/graph.
//
//	@Summary		Get the resolved graph
//	@Tags			graph
//	@Produce		json
//	@Success		200	{object}	GraphResponse
//	@Security		BearerAuth
//	@Router			/graph [get]
func (h *Handler) Graph(w http.ResponseWriter, r *http.Request) {
	g, err := h.svc.Graph(r.Context())
	if err != nil {
		writeError(w, "graph", err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

// Path handles GET /api/path.
//
//	@Summary		Cheapest path between two nodes
//	@Tags			graph
//	@Produce		json
//	@Param			from	query		string	true	"Start node"
//	@Param			to		query		string	true	"End node"
//	@Success		200		{object}	PathResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/path [get]
func (h *Handler) Path(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	res, err := h.svc.Path(r.Context(), q.Get("from"), q.Get("to"))
	if err != nil {
		writeError(w, "path", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Neighbors handles GET /api/neighbors/*.
//
//	@Summary		Forward and back links of a node
//	@Tags			graph
//	@Produce		json
//	@Param			id	path		string	true	"Node id"
//	@Success		200	{object}	NeighborsResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/neighbors/{id} [get]
func (h *Handler) Neighbors(w http.ResponseWriter, r *http.Request) {
	id := nodeID(r)
	if id == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("id is required"))
		return
	}
	n, err := h.svc.Neighbors(r.Context(), id)
	if err != nil {
		writeError(w, "neighbors", err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

// Position handles GET /api/positions/*.
//
//	@Summary		Layout position of a node
//	@Tags			graph
//	@Produce		json
//	@Param			id	path		string	true	"Node id"
//	@Success		200	{object}	PositionResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/positions/{id} [get]
func (h *Handler) Position(w http.ResponseWriter, r *http.Request) {
	id := nodeID(r)
	if id == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("id is required"))
		return
	}
	p, err := h.svc.Position(r.Context(), id)
	if err != nil {
		writeError(w, "position", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Search handles GET /api/search.
//
//	@Summary		Find nodes by id or title
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		slog.Error("search failed", slog.String("query", q), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if results == nil {
		results = []index.SearchResult{}
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// Scene handles GET /api/scene.
//
//	@Summary		Current render-ready frame
//	@Tags			viewer
//	@Produce		json
//	@Success		200	{object}	SceneResponse
//	@Security		BearerAuth
//	@Router			/scene [get]
func (h *Handler) Scene(w http.ResponseWriter, r *http.Request) {
	f, err := h.svc.Scene(r.Context())
	if err != nil {
		writeError(w, "scene", err)
		return
	}
	writeJSON(w, http.StatusOK, SceneResponse{Session: h.svc.Loop().ID(), Frame: f})
}

// Focus handles POST /api/focus.
//
//	@Summary		Move the viewer's focus
//	@Tags			viewer
//	@Accept			json
//	@Param			body	body	FocusRequest	true	"Node to focus"
//	@Success		204		"Focus moved"
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/focus [post]
func (h *Handler) Focus(w http.ResponseWriter, r *http.Request) {
	var req FocusRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.ID == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("id is required"))
		return
	}
	if err := h.svc.Focus(r.Context(), req.ID); err != nil {
		writeError(w, "focus", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Pointer handles POST /api/pointer.
//
//	@Summary		Send one pointer event
//	@Tags			viewer
//	@Accept			json
//	@Param			body	body	PointerRequest	true	"Pointer event"
//	@Success		202		"Queued"
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/pointer [post]
func (h *Handler) Pointer(w http.ResponseWriter, r *http.Request) {
	var req PointerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.svc.Pointer(req); err != nil {
		writeError(w, "pointer", err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// Viewport handles POST /api/viewport.
//
//	@Summary		Resize the drawing surface
//	@Tags			viewer
//	@Accept			json
//	@Param			body	body	ViewportRequest	true	"Surface size"
//	@Success		202		"Queued"
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/viewport [post]
func (h *Handler) Viewport(w http.ResponseWriter, r *http.Request) {
	var req ViewportRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.svc.Resize(req); err != nil {
		writeError(w, "viewport", err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}
