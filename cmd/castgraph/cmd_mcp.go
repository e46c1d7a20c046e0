package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	castmcp "github.com/ajitpratap0/castgraph/internal/mcp"
)

func mcpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start the MCP (Model Context Protocol) server over stdio",
		Long: `Starts an MCP JSON-RPC 2.0 server that reads from stdin and writes to stdout.
All diagnostic logs go to stderr so that stdout remains exclusively MCP protocol traffic.

Tools exposed:
  lookup_relations  an actor's filmography or a movie's cast
  graph_view        the star graph for an actor or movie
  suggest           autocomplete a partial name or title
  list_all          every actor or every movie
  register_actor    import an actor from TMDB
  movie_poster      poster artwork for a movie

If the backend is unavailable at startup the server still starts;
individual tool calls will return MCP error responses on failure.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := newLogger()

			b, release, err := newBackend(cmd.Context(), logger)
			if err != nil {
				logger.Error("mcp: backend unavailable; tool calls will fail", "error", err)
				b, release = nil, func() {}
			}
			defer release()

			srv := castmcp.NewServer(b, graphOptions(), logger)

			// Use a standard log.Logger pointing at stderr for the mcp-go error logger.
			errLogger := log.New(os.Stderr, "mcp: ", log.LstdFlags)

			logger.Info("mcp: castgraph MCP server starting", "transport", "stdio")

			return mcpserver.ServeStdio(
				srv.MCPServer(),
				mcpserver.WithErrorLogger(errLogger),
			)
		},
	}

	return cmd
}
