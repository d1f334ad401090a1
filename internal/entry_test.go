package internal

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/starford/sitegraph/internal/graphservice"
	"github.com/starford/sitegraph/internal/sitegraph"
	"github.com/starford/sitegraph/internal/sse"
	"github.com/starford/sitegraph/internal/testutil"
	"github.com/starford/sitegraph/internal/viewer"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func testHandler(t *testing.T, cfg *Config) http.Handler {
	t.Helper()
	loop := viewer.New(testutil.Chain(), viewer.Options{Frames: make(chan time.Time)})
	t.Cleanup(loop.Close)
	broker := sse.NewBroker(0)
	t.Cleanup(broker.Close)
	return NewHandler(cfg, graphservice.New(loop, nil), broker)
}

func TestHandlerHealthAndMetrics(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth = AuthConfig{Mode: AuthModeToken, Token: "t"}
	h := testHandler(t, cfg)

	for _, path := range []string{"/health/live", "/health/ready", "/metrics"} {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusOK {
			t.Errorf("GET %s = %d, want 200 without auth", path, w.Code)
		}
	}

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(w.Body.String(), "sitegraph_ticks_total") {
		t.Error("metrics output lacks sitegraph_ticks_total")
	}

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/graph", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("GET /api/graph = %d, want 401", w.Code)
	}
}

func TestHandlerCORS(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.App.HTTP.AllowedOrigins = []string{"http://renderer.local"}
	h := testHandler(t, cfg)

	req := httptest.NewRequest(http.MethodOptions, "/api/scene", nil)
	req.Header.Set("Origin", "http://renderer.local")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://renderer.local" {
		t.Errorf("Allow-Origin = %q", got)
	}
}

func TestOpenSourceVault(t *testing.T) {
	vault, _ := testutil.TestVault(t, map[string]string{
		"HomePage.md":    "# Home\n[[Go|the language]]\n",
		"topics/Go.md":   "---\ntitle: Go (topic)\n---\nBack to [[HomePage]].\n",
		".obsidian/x.md": "[[ignored]]",
	})
	src, err := OpenSource(GraphConfig{
		Source: GraphSourceVault,
		Vault:  vault,
		Index:  filepath.Join(t.TempDir(), "index.db"),
	}, quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	defer src.Close()

	doc, err := src.Document()
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Nodes) != 2 {
		t.Fatalf("nodes = %v, want 2", doc.IDs())
	}
	if got := doc.Successors("HomePage"); len(got) != 1 || got[0] != "topics/Go" {
		t.Errorf("HomePage successors = %v, want [topics/Go]", got)
	}
	if src.Searcher() == nil {
		t.Error("vault source should search the index")
	}
}

func TestOpenSourceFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "graph.json")
	if err := os.WriteFile(p, []byte(`{"nodes":{"HomePage":{"links":[{"link":"A"}]},"A":{"links":[]}}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	src, err := OpenSource(GraphConfig{Source: GraphSourceFile, File: p}, quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	doc, err := src.Document()
	if err != nil {
		t.Fatal(err)
	}
	if !doc.Has("A") || src.Searcher() != nil {
		t.Errorf("doc = %v, searcher = %v", doc.IDs(), src.Searcher())
	}
}

func TestWatchFileReloads(t *testing.T) {
	p := filepath.Join(t.TempDir(), "graph.json")
	_ = os.WriteFile(p, []byte(`{"nodes":{"HomePage":{"links":[]}}}`), 0o644)
	src, _ := OpenSource(GraphConfig{Source: GraphSourceFile, File: p}, quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	reloaded := make(chan *sitegraph.Document, 1)
	done := make(chan error, 1)
	go func() {
		done <- src.Watch(ctx, nil, func(doc *sitegraph.Document) {
			select {
			case reloaded <- doc:
			default:
			}
		})
	}()

	// Give the watcher time to register.
	time.Sleep(100 * time.Millisecond)
	_ = os.WriteFile(p, []byte(`{"nodes":{"HomePage":{"links":[]},"New":{"links":[]}}}`), 0o644)

	select {
	case doc := <-reloaded:
		if !doc.Has("New") {
			t.Errorf("reloaded doc = %v, want New", doc.IDs())
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timeout waiting for reload")
	}
	cancel()
	if err := <-done; err != nil {
		t.Errorf("Watch: %v", err)
	}
}
