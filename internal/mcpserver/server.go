// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes sitegraph queries for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/sitegraph/internal/apperr"
	"github.com/starford/sitegraph/internal/graphservice"
)

const documentFormatURI = "sitegraph://document-format"

// Server wraps the MCP server with sitegraph tools.
type Server struct {
	mcp *server.MCPServer
	svc *graphservice.Service
}

// New creates a new MCP server with all tools registered.
func New(svc *graphservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Sitegraph",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("find_path",
		mcp.WithDescription("Find the cheapest chain of links from one node to another. "+
			"Returns the node ids along the path and its total cost; an empty path means unreachable."),
		mcp.WithString("from", mcp.Required(), mcp.Description("Start node id")),
		mcp.WithString("to", mcp.Required(), mcp.Description("End node id")),
	), s.findPath)

	s.mcp.AddTool(mcp.NewTool("neighbors",
		mcp.WithDescription("List the nodes a node links to and the nodes linking to it."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Node id")),
	), s.neighbors)

	s.mcp.AddTool(mcp.NewTool("node_position",
		mcp.WithDescription("Return where the force layout currently places a node, in world and screen coordinates."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Node id")),
	), s.nodePosition)

	s.mcp.AddTool(mcp.NewTool("search_nodes",
		mcp.WithDescription("Find nodes whose id or title contains the query."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchNodes)

	s.mcp.AddTool(mcp.NewTool("get_document_format",
		mcp.WithDescription("Returns the graph document JSON format accepted by the viewer."),
	), s.getDocumentFormat)

	s.mcp.AddResource(
		mcp.NewResource(documentFormatURI, "Graph Document Format",
			mcp.WithResourceDescription("JSON shape of the graph document: nodes keyed by id with ordered links."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readDocumentFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func toolError(err error) *mcp.CallToolResult {
	if errors.Is(err, apperr.ErrNotFound) {
		return mcp.NewToolResultError("node not found")
	}
	return mcp.NewToolResultError(err.Error())
}

func jsonResult(v any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode result: %v", err))
	}
	return mcp.NewToolResultText(string(out))
}

func (s *Server) findPath(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	from, err := req.RequireString("from")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	to, err := req.RequireString("to")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.svc.Path(ctx, from, to)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(res), nil
}

func (s *Server) neighbors(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	n, err := s.svc.Neighbors(ctx, id)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(n), nil
}

func (s *Server) nodePosition(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	p, err := s.svc.Position(ctx, id)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(p), nil
}

func (s *Server) searchNodes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(results), nil
}

func (s *Server) getDocumentFormat(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(DocumentFormat), nil
}

func (s *Server) readDocumentFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      documentFormatURI,
			MIMEType: "text/markdown",
			Text:     DocumentFormat,
		},
	}, nil
}
