package api

import (
	"github.com/starford/sitegraph/internal/graphservice"
	"github.com/starford/sitegraph/internal/index"
	"github.com/starford/sitegraph/internal/scene"
	"github.com/starford/sitegraph/internal/viewer"
)

// GraphResponse is the resolved graph (aliased from the domain layer).
type GraphResponse = graphservice.Graph

// PathResponse is a cheapest-path answer (aliased from the domain layer).
type PathResponse = graphservice.PathResult

// NeighborsResponse lists one-hop neighbours (aliased from the domain layer).
type NeighborsResponse = graphservice.Neighbors

// PositionResponse is a node's layout position (aliased from the domain layer).
type PositionResponse = graphservice.Position

// SceneResponse is a render-ready frame tagged with the viewer session.
type SceneResponse struct {
	Session string `json:"session" example:"6f1c0e2a-..." validate:"required"`
	scene.Frame
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []index.SearchResult `json:"results" validate:"required"`
}

// FocusRequest is the request body for moving focus.
type FocusRequest struct {
	ID string `json:"id" example:"HomePage" validate:"required"`
}

// PointerRequest is one pointer event.
type PointerRequest = viewer.PointerEvent

// ViewportRequest is the request body for resizing the surface.
type ViewportRequest = graphservice.Viewport

// socketMessage is one inbound websocket message. Pointer kinds carry the
// same JSON as POST /pointer; "resize" carries width and height.
type socketMessage struct {
	Type      string  `json:"type"`
	PointerID int     `json:"pointerId"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
}

func (m socketMessage) pointer() viewer.PointerEvent {
	return viewer.PointerEvent{Kind: viewer.PointerKind(m.Type), PointerID: m.PointerID, X: m.X, Y: m.Y}
}
