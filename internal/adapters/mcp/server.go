// Package mcpadapter exposes article search as MCP tools.
package mcpadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/JCZoom/techpulse-blog/internal/core/domain"
	"github.com/JCZoom/techpulse-blog/internal/core/ports"
	"github.com/JCZoom/techpulse-blog/internal/presenter"
	"github.com/JCZoom/techpulse-blog/internal/syntax"
)

const (
	ServerName    = "techpulse"
	ServerVersion = "1.0.0"

	defaultToolLimit = 10
)

type Handlers struct {
	searcher ports.ArticleSearcher
	now      func() time.Time
}

func NewHandlers(searcher ports.ArticleSearcher, now func() time.Time) *Handlers {
	if now == nil {
		now = time.Now
	}
	return &Handlers{searcher: searcher, now: now}
}

// NewServer registers search_articles, list_facets and search_syntax.
func NewServer(h *Handlers) *server.MCPServer {
	s := server.NewMCPServer(ServerName, ServerVersion, server.WithToolCapabilities(false))

	s.AddTool(mcp.NewTool("search_articles",
		mcp.WithDescription("Search TechPulse articles. Supports phrases, tag:, category:, source:, date:, score: and OR syntax."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query, e.g. \"AI agents\" tag:ai score:>8")),
		mcp.WithString("sort", mcp.Description("Ordering of results"), mcp.Enum("relevance", "date", "score")),
		mcp.WithNumber("limit", mcp.Description("Maximum results to return (default 10)")),
	), h.SearchArticles)

	s.AddTool(mcp.NewTool("list_facets",
		mcp.WithDescription("List the categories and sources present in the loaded corpus."),
	), h.ListFacets)

	s.AddTool(mcp.NewTool("search_syntax",
		mcp.WithDescription("Show query syntax examples matching a partial query."),
		mcp.WithString("query", mcp.Description("Partial query typed so far")),
	), h.SearchSyntax)

	return s
}

type searchToolResult struct {
	Summary string             `json:"summary"`
	State   domain.SearchState `json:"state"`
	Count   int                `json:"count"`
	Results []presenter.Card   `json:"results"`
}

func (h *Handlers) SearchArticles(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	mode, err := domain.ParseSortMode(req.GetString("sort", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	limit := req.GetInt("limit", defaultToolLimit)
	if limit <= 0 {
		limit = defaultToolLimit
	}

	resp, err := h.searcher.Search(ctx, domain.SearchRequest{Query: query, Sort: mode, Limit: limit})
	if err != nil {
		return mcp.NewToolResultError(presenter.NoticeForError(err).Body), nil
	}
	return jsonResult(searchToolResult{
		Summary: presenter.Summary(resp),
		State:   resp.State,
		Count:   resp.Count,
		Results: presenter.NewCards(resp.Results, h.now()),
	})
}

func (h *Handlers) ListFacets(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	facets, err := h.searcher.Facets(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(facets)
}

func (h *Handlers) SearchSyntax(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, err := syntax.Catalog()
	if err != nil {
		return nil, fmt.Errorf("load syntax catalog: %w", err)
	}
	return jsonResult(syntax.Filter(items, req.GetString("query", "")))
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode tool result: %w", err)
	}
	return mcp.NewToolResultText(string(raw)), nil
}

// ServeStdio runs s over stdin/stdout until the client disconnects.
func ServeStdio(s *server.MCPServer) error {
	return server.ServeStdio(s)
}
