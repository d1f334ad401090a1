package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/starford/sitegraph/internal/graphservice"
	"github.com/starford/sitegraph/internal/scene"
	"github.com/starford/sitegraph/internal/viewer"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// socketReply is one outbound websocket message. Type is "hello", "frame"
// or "error".
type socketReply struct {
	Type    string       `json:"type"`
	Session string       `json:"session"`
	Frame   *scene.Frame `json:"frame,omitempty"`
	Content string       `json:"content,omitempty"`
}

// socketConn serialises writes; gorilla allows one writer at a time.
type socketConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
	id   string
}

func (c *socketConn) send(reply socketReply) error {
	reply.Session = c.id
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(reply)
}

func (c *socketConn) sendError(msg string) {
	if err := c.send(socketReply{Type: "error", Content: msg}); err != nil {
		slog.Debug("websocket write error failed", slog.String("session", c.id), slog.String("error", err.Error()))
	}
}

// PointerSocket handles GET /api/pointer/ws. Inbound messages carry
// pointer events and resizes; outbound messages stream every frame that
// changed.
func (h *Handler) PointerSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()

	c := &socketConn{conn: conn, id: uuid.NewString()}
	log := slog.With(slog.String("session", c.id))
	log.Info("websocket connected")
	defer log.Info("websocket disconnected")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	frames, stop, err := h.svc.Loop().Watch(ctx)
	if err != nil {
		c.sendError(err.Error())
		return
	}
	defer stop()

	if err := c.send(socketReply{Type: "hello"}); err != nil {
		return
	}
	if f, err := h.svc.Scene(ctx); err == nil {
		_ = c.send(socketReply{Type: "frame", Frame: &f})
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case f, ok := <-frames:
				if !ok {
					return
				}
				if err := c.send(socketReply{Type: "frame", Frame: &f}); err != nil {
					cancel()
					return
				}
			}
		}
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("websocket read failed", slog.String("error", err.Error()))
			}
			return
		}

		var in socketMessage
		if err := json.Unmarshal(msg, &in); err != nil {
			c.sendError("invalid message format")
			continue
		}
		switch viewer.PointerKind(in.Type) {
		case viewer.PointerDown, viewer.PointerMove, viewer.PointerUp, viewer.PointerLeave:
			err = h.svc.Pointer(in.pointer())
		case "resize":
			err = h.svc.Resize(graphservice.Viewport{Width: in.Width, Height: in.Height})
		default:
			c.sendError("unknown message type: " + in.Type)
			continue
		}
		if err != nil {
			c.sendError(err.Error())
		}
	}
}
