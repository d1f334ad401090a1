package mcpserver

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/sitegraph/internal/graphservice"
	"github.com/starford/sitegraph/internal/testutil"
	"github.com/starford/sitegraph/internal/viewer"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	loop := viewer.New(testutil.Chain(), viewer.Options{Frames: make(chan time.Time)})
	t.Cleanup(loop.Close)
	return New(graphservice.New(loop, nil))
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" helper, so the handlers are called
	// directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "find_path":
		result, err = srv.findPath(ctx, req)
	case "neighbors":
		result, err = srv.neighbors(ctx, req)
	case "node_position":
		result, err = srv.nodePosition(ctx, req)
	case "search_nodes":
		result, err = srv.searchNodes(ctx, req)
	case "get_document_format":
		result, err = srv.getDocumentFormat(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestFindPath(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "find_path", map[string]interface{}{"from": "HomePage", "to": "C"})
	if r.IsError {
		t.Fatalf("find_path error: %s", resultText(r))
	}
	var got graphservice.PathResult
	if err := json.Unmarshal([]byte(resultText(r)), &got); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"HomePage", "A", "C"}, got.Path); diff != "" {
		t.Errorf("path mismatch (-want +got):\n%s", diff)
	}
	if got.Cost != 3 {
		t.Errorf("cost = %v, want 3", got.Cost)
	}
}

func TestFindPathErrors(t *testing.T) {
	srv := testServer(t)
	if r := callTool(t, srv, "find_path", map[string]interface{}{"from": "HomePage"}); !r.IsError {
		t.Error("expected error for missing 'to'")
	}
	r := callTool(t, srv, "find_path", map[string]interface{}{"from": "HomePage", "to": "Nowhere"})
	if !r.IsError || resultText(r) != "node not found" {
		t.Errorf("unknown node result = %q", resultText(r))
	}
}

func TestNeighbors(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "neighbors", map[string]interface{}{"id": "A"})
	var got graphservice.Neighbors
	if err := json.Unmarshal([]byte(resultText(r)), &got); err != nil {
		t.Fatal(err)
	}
	want := graphservice.Neighbors{ID: "A", Title: "A", Forward: []string{"B", "C"}, Back: []string{"B", "HomePage"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("neighbors mismatch (-want +got):\n%s", diff)
	}
}

func TestNodePosition(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "node_position", map[string]interface{}{"id": "HomePage"})
	if r.IsError {
		t.Fatalf("node_position error: %s", resultText(r))
	}
	if !strings.Contains(resultText(r), `"id": "HomePage"`) {
		t.Errorf("result = %s", resultText(r))
	}
	if r := callTool(t, srv, "node_position", map[string]interface{}{"id": "Nowhere"}); !r.IsError {
		t.Error("expected error for unknown node")
	}
}

func TestSearchNodes(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "search_nodes", map[string]interface{}{"query": "home"})
	if !strings.Contains(resultText(r), `"id": "HomePage"`) {
		t.Errorf("result = %s", resultText(r))
	}
}

func TestDocumentFormat(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "get_document_format", nil)
	if resultText(r) != DocumentFormat {
		t.Error("format tool does not return the format text")
	}

	contents, err := srv.readDocumentFormatResource(context.Background(), mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatal(err)
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok || tc.URI != "sitegraph://document-format" {
		t.Errorf("resource = %+v", contents[0])
	}
}
