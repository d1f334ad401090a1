// Package graphservice is the query and command surface over a running
// viewer, shared by the HTTP API and the MCP server.
package graphservice

import (
	"context"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/sitegraph/internal/apperr"
	"github.com/starford/sitegraph/internal/index"
	"github.com/starford/sitegraph/internal/scene"
	"github.com/starford/sitegraph/internal/sitegraph"
	"github.com/starford/sitegraph/internal/viewer"
)

// Searcher finds nodes by title. *index.DB implements it.
type Searcher interface {
	Search(query string, limit int) ([]index.SearchResult, error)
}

// GraphNode is a node in the graph listing.
type GraphNode struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	OutDegree int    `json:"outDegree"`
}

// GraphLink is a resolved edge.
type GraphLink struct {
	Source      string `json:"source"`
	Target      string `json:"target"`
	DisplayText string `json:"displayText,omitempty"`
}

// Graph is the resolved graph plus the viewer's home and focus.
type Graph struct {
	Home  string      `json:"home"`
	Focus string      `json:"focus"`
	Nodes []GraphNode `json:"nodes"`
	Links []GraphLink `json:"links"`
}

// PathResult is the cheapest path between two nodes.
type PathResult struct {
	From      string   `json:"from"`
	To        string   `json:"to"`
	Path      []string `json:"path"`
	Cost      float64  `json:"cost"`
	Reachable bool     `json:"reachable"`
}

// Neighbors lists the nodes one hop from a node.
type Neighbors struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Forward []string `json:"forward"`
	Back    []string `json:"back"`
}

// Position is where the layout has placed a node.
type Position struct {
	ID        string  `json:"id"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Z         float64 `json:"z"`
	ScreenX   float64 `json:"screenX"`
	ScreenY   float64 `json:"screenY"`
	Converged bool    `json:"converged"`
}

// Service runs queries on the viewer loop goroutine.
type Service struct {
	loop   *viewer.Loop
	search Searcher
}

// New creates a service. search may be nil, in which case titles are
// matched against the loaded document.
func New(loop *viewer.Loop, search Searcher) *Service {
	return &Service{loop: loop, search: search}
}

// Loop returns the viewer loop.
func (s *Service) Loop() *viewer.Loop {
	return s.loop
}

// Graph returns the resolved graph.
func (s *Service) Graph(ctx context.Context) (*Graph, error) {
	var g *Graph
	err := s.loop.Do(ctx, func(sess *scene.Session) {
		doc := sess.Document()
		g = &Graph{Home: sess.Home(), Focus: sess.Focus(), Nodes: []GraphNode{}, Links: []GraphLink{}}
		for _, id := range doc.IDs() {
			g.Nodes = append(g.Nodes, GraphNode{ID: id, Title: doc.Title(id), OutDegree: doc.OutDegree(id)})
		}
		for _, e := range doc.Edges() {
			g.Links = append(g.Links, GraphLink{Source: e.Source, Target: e.Target, DisplayText: e.DisplayText})
		}
	})
	return g, err
}

// Document returns the loaded graph document.
func (s *Service) Document(ctx context.Context) (*sitegraph.Document, error) {
	var doc *sitegraph.Document
	err := s.loop.Do(ctx, func(sess *scene.Session) { doc = sess.Document() })
	return doc, err
}

// Scene returns the current render-ready frame.
func (s *Service) Scene(ctx context.Context) (scene.Frame, error) {
	return s.loop.Frame(ctx)
}

// Path returns the cheapest path from one node to another.
func (s *Service) Path(ctx context.Context, from, to string) (*PathResult, error) {
	if from == "" || to == "" {
		return nil, fmt.Errorf("%w: from and to are required", apperr.ErrInvalidInput)
	}
	var (
		res  *PathResult
		ferr error
	)
	err := s.loop.Do(ctx, func(sess *scene.Session) {
		ids, cost, err := sess.FindPath(from, to)
		if err != nil {
			ferr = err
			return
		}
		res = &PathResult{From: from, To: to, Path: ids, Cost: cost, Reachable: len(ids) > 0}
	})
	if err != nil {
		return nil, err
	}
	return res, ferr
}

// Neighbors returns the forward and back links of id.
func (s *Service) Neighbors(ctx context.Context, id string) (*Neighbors, error) {
	var n *Neighbors
	err := s.loop.Do(ctx, func(sess *scene.Session) {
		doc := sess.Document()
		if !doc.Has(id) {
			return
		}
		fwd := append([]string{}, doc.Successors(id)...)
		back := append([]string{}, doc.Predecessors(id)...)
		n = &Neighbors{ID: id, Title: doc.Title(id), Forward: fwd, Back: back}
	})
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, apperr.ErrNotFound
	}
	return n, nil
}

// Position returns the display position of id.
func (s *Service) Position(ctx context.Context, id string) (*Position, error) {
	var p *Position
	err := s.loop.Do(ctx, func(sess *scene.Session) {
		at, ok := sess.Layout().DisplayPosition(id)
		if !ok {
			return
		}
		p = &Position{ID: id, X: at.X, Y: at.Y, Z: at.Z, Converged: sess.Converged()}
		for _, nv := range sess.Frame().Nodes {
			if nv.ID == id {
				p.ScreenX, p.ScreenY = nv.ScreenX, nv.ScreenY
				break
			}
		}
	})
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.ErrNotFound
	}
	return p, nil
}

// Focus moves the viewer's focus.
func (s *Service) Focus(ctx context.Context, id string) error {
	return s.loop.Focus(ctx, id)
}

// Pointer validates and forwards a pointer event.
func (s *Service) Pointer(ev viewer.PointerEvent) error {
	if err := ev.Validate(); err != nil {
		return err
	}
	return s.loop.Pointer(ev)
}

// Viewport is a resize request.
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Validate requires a positive size.
func (v Viewport) Validate() error {
	return validation.ValidateStruct(&v,
		validation.Field(&v.Width, validation.Required, validation.Min(1.0)),
		validation.Field(&v.Height, validation.Required, validation.Min(1.0)),
	)
}

// Resize validates and forwards a viewport change.
func (s *Service) Resize(v Viewport) error {
	if err := v.Validate(); err != nil {
		return fmt.Errorf("%w: %w", apperr.ErrInvalidInput, err)
	}
	return s.loop.Resize(v.Width, v.Height)
}

// Search finds nodes whose id or title contains query.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]index.SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	if s.search != nil {
		return s.search.Search(query, limit)
	}
	doc, err := s.Document(ctx)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(query)
	out := []index.SearchResult{}
	for _, id := range doc.IDs() {
		title := doc.Nodes[id].Title
		if strings.Contains(strings.ToLower(id), q) || strings.Contains(strings.ToLower(title), q) {
			out = append(out, index.SearchResult{ID: id, Title: title})
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}
