// Package mcp implements the Model Context Protocol server for castgraph.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/ajitpratap0/castgraph/internal/backend"
	"github.com/ajitpratap0/castgraph/internal/graphview"
	"github.com/ajitpratap0/castgraph/internal/models"
	"github.com/ajitpratap0/castgraph/internal/query"
)

// Server wraps an MCPServer with castgraph dependencies.
type Server struct {
	mcp     *mcpserver.MCPServer
	backend backend.Backend
	graph   graphview.Options
	logger  *slog.Logger
}

// NewServer creates a new MCP server. If b is nil, every tool call returns
// an error response instead of panicking.
func NewServer(b backend.Backend, graph graphview.Options, logger *slog.Logger) *Server {
	s := &Server{
		backend: b,
		graph:   graph,
		logger:  logger,
	}

	mcpSrv := mcpserver.NewMCPServer(
		"castgraph",
		"1.0.0",
		mcpserver.WithToolCapabilities(true),
	)

	mcpSrv.AddTool(buildLookupTool(), s.handleLookup)
	mcpSrv.AddTool(buildGraphTool(), s.handleGraph)
	mcpSrv.AddTool(buildSuggestTool(), s.handleSuggest)
	mcpSrv.AddTool(buildListTool(), s.handleList)
	mcpSrv.AddTool(buildRegisterTool(), s.handleRegister)
	mcpSrv.AddTool(buildPosterTool(), s.handlePoster)

	s.mcp = mcpSrv
	return s
}

// MCPServer returns the underlying mcp-go MCPServer for use with ServeStdio.
func (s *Server) MCPServer() *mcpserver.MCPServer {
	return s.mcp
}

// HandleLookup is the exported handler for the "lookup_relations" tool.
// It is exposed for direct testing without the mcp-go transport layer.
func (s *Server) HandleLookup(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return s.handleLookup(ctx, req)
}

// HandleGraph is the exported handler for the "graph_view" tool.
func (s *Server) HandleGraph(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return s.handleGraph(ctx, req)
}

// HandleSuggest is the exported handler for the "suggest" tool.
func (s *Server) HandleSuggest(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return s.handleSuggest(ctx, req)
}

// HandleList is the exported handler for the "list_all" tool.
func (s *Server) HandleList(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return s.handleList(ctx, req)
}

// HandleRegister is the exported handler for the "register_actor" tool.
func (s *Server) HandleRegister(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return s.handleRegister(ctx, req)
}

// HandlePoster is the exported handler for the "movie_poster" tool.
func (s *Server) HandlePoster(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return s.handlePoster(ctx, req)
}

// --- helpers ---

// toolResultJSON marshals v to JSON and returns it as a tool text result.
func toolResultJSON(v any) (*mcpgo.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("mcp: marshaling result: %w", err)
	}
	return mcpgo.NewToolResultText(string(b)), nil
}

// roleArg reads the "type" argument, defaulting to actor.
func roleArg(req mcpgo.CallToolRequest) (models.Role, error) {
	t := req.GetString("type", string(models.RoleSubject))
	return models.ParseRole(t)
}

const roleDescription = "Search type: actor or movie (default: actor)"

// --- tool definitions ---

func buildLookupTool() mcpgo.Tool {
	return mcpgo.NewTool("lookup_relations",
		mcpgo.WithDescription("Look up an actor's filmography or a movie's cast."),
		mcpgo.WithString("name",
			mcpgo.Required(),
			mcpgo.Description("Actor name or movie title"),
		),
		mcpgo.WithString("type",
			mcpgo.Description(roleDescription),
		),
	)
}

func buildGraphTool() mcpgo.Tool {
	return mcpgo.NewTool("graph_view",
		mcpgo.WithDescription("Build the star graph (nodes, links, layout hints) for an actor or movie."),
		mcpgo.WithString("name",
			mcpgo.Required(),
			mcpgo.Description("Actor name or movie title"),
		),
		mcpgo.WithString("type",
			mcpgo.Description(roleDescription),
		),
	)
}

func buildSuggestTool() mcpgo.Tool {
	return mcpgo.NewTool("suggest",
		mcpgo.WithDescription("Autocomplete a partial actor name or movie title."),
		mcpgo.WithString("partial",
			mcpgo.Required(),
			mcpgo.Description("The partial text typed so far"),
		),
		mcpgo.WithString("type",
			mcpgo.Description(roleDescription),
		),
	)
}

func buildListTool() mcpgo.Tool {
	return mcpgo.NewTool("list_all",
		mcpgo.WithDescription("List every actor or every movie in the catalog."),
		mcpgo.WithString("type",
			mcpgo.Description(roleDescription),
		),
	)
}

func buildRegisterTool() mcpgo.Tool {
	return mcpgo.NewTool("register_actor",
		mcpgo.WithDescription("Import an actor and their filmography from TMDB."),
		mcpgo.WithString("name",
			mcpgo.Required(),
			mcpgo.Description("The actor's name"),
		),
	)
}

func buildPosterTool() mcpgo.Tool {
	return mcpgo.NewTool("movie_poster",
		mcpgo.WithDescription("Fetch the poster artwork for a movie title."),
		mcpgo.WithString("title",
			mcpgo.Required(),
			mcpgo.Description("The movie title"),
		),
	)
}

// --- tool handlers ---

// lookup normalizes the request and fetches the relations. A non-nil third
// return is the error result to hand back to the caller.
func (s *Server) lookup(ctx context.Context, req mcpgo.CallToolRequest) (models.Query, *models.DomainResult, *mcpgo.CallToolResult) {
	if s.backend == nil {
		return models.Query{}, nil, mcpgo.NewToolResultError("backend is unavailable")
	}
	role, err := roleArg(req)
	if err != nil {
		return models.Query{}, nil, mcpgo.NewToolResultError(err.Error())
	}
	q, err := query.Normalize(req.GetString("name", ""), role)
	if err != nil {
		return models.Query{}, nil, mcpgo.NewToolResultError("name is required and must not be empty")
	}
	res, err := s.backend.LookupRelations(ctx, q.Role, q.Text)
	if err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			return q, nil, mcpgo.NewToolResultErrorf("No %s found for %q", q.Role, q.Text)
		}
		s.logger.Warn("mcp: lookup failed", "query", q.Text, "role", q.Role, "error", err)
		return q, nil, mcpgo.NewToolResultErrorf("lookup failed: %s", err.Error())
	}
	if len(res.Related) == 0 {
		return q, nil, mcpgo.NewToolResultErrorf("No %s found for %q", q.Role, q.Text)
	}
	return q, res, nil
}

func (s *Server) handleLookup(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	_, res, fail := s.lookup(ctx, req)
	if fail != nil {
		return fail, nil
	}
	return toolResultJSON(res)
}

// handleGraph returns the same star graph the explorer renders.
func (s *Server) handleGraph(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	q, res, fail := s.lookup(ctx, req)
	if fail != nil {
		return fail, nil
	}
	return toolResultJSON(graphview.Build(*res, q.Role, s.graph))
}

func (s *Server) handleSuggest(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	if s.backend == nil {
		return mcpgo.NewToolResultError("backend is unavailable"), nil
	}
	role, err := roleArg(req)
	if err != nil {
		return mcpgo.NewToolResultError(err.Error()), nil
	}
	partial := strings.TrimSpace(req.GetString("partial", ""))
	if partial == "" {
		return mcpgo.NewToolResultError("partial is required and must not be empty"), nil
	}

	list, err := s.backend.Suggest(ctx, role, partial)
	if err != nil {
		return mcpgo.NewToolResultErrorf("suggest failed: %s", err.Error()), nil
	}
	out := make([]models.Suggestion, 0, len(list))
	for _, sg := range list {
		if strings.TrimSpace(sg.Display) != "" {
			out = append(out, sg)
		}
	}
	return toolResultJSON(map[string]any{"suggestions": out})
}

func (s *Server) handleList(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	if s.backend == nil {
		return mcpgo.NewToolResultError("backend is unavailable"), nil
	}
	role, err := roleArg(req)
	if err != nil {
		return mcpgo.NewToolResultError(err.Error()), nil
	}
	list, err := s.backend.ListAll(ctx, role)
	if err != nil {
		return mcpgo.NewToolResultErrorf("list failed: %s", err.Error()), nil
	}
	return toolResultJSON(map[string]any{"entities": list, "count": len(list)})
}

func (s *Server) handleRegister(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	if s.backend == nil {
		return mcpgo.NewToolResultError("backend is unavailable"), nil
	}
	q, err := query.Normalize(req.GetString("name", ""), models.RoleSubject)
	if err != nil {
		return mcpgo.NewToolResultError("name is required and must not be empty"), nil
	}

	actor, err := s.backend.RegisterSubject(ctx, q.Text)
	if err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			return mcpgo.NewToolResultErrorf("Actor %s not found in TMDB", q.Text), nil
		}
		return mcpgo.NewToolResultErrorf("register failed: %s", err.Error()), nil
	}
	s.logger.Info("mcp: registered actor", "name", actor.Name)
	return toolResultJSON(actor)
}

func (s *Server) handlePoster(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	if s.backend == nil {
		return mcpgo.NewToolResultError("backend is unavailable"), nil
	}
	title := strings.TrimSpace(req.GetString("title", ""))
	if title == "" {
		return mcpgo.NewToolResultError("title is required and must not be empty"), nil
	}

	p, err := s.backend.FetchPoster(ctx, title)
	if err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			return mcpgo.NewToolResultErrorf("no poster for %q", title), nil
		}
		return mcpgo.NewToolResultErrorf("poster failed: %s", err.Error()), nil
	}
	return toolResultJSON(p)
}
