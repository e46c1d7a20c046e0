package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ajitpratap0/castgraph/internal/backend"
	"github.com/ajitpratap0/castgraph/internal/catalog"
	"github.com/ajitpratap0/castgraph/internal/config"
	"github.com/ajitpratap0/castgraph/internal/enrich"
	"github.com/ajitpratap0/castgraph/internal/graphview"
	"github.com/ajitpratap0/castgraph/internal/models"
	"github.com/ajitpratap0/castgraph/internal/store"
	"github.com/ajitpratap0/castgraph/internal/suggest"
)

var (
	cfg    *config.Config
	direct bool
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	rootCmd := &cobra.Command{
		Use:   "castgraph",
		Short: "castgraph: explore the actor/movie graph",
		Long:  "castgraph searches an actor or a movie and shows its direct connections, backed by Neo4j and enriched from TMDB.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			return nil
		},
	}
	rootCmd.PersistentFlags().BoolVar(&direct, "direct", false, "talk to Neo4j and TMDB directly instead of the HTTP API")

	rootCmd.AddCommand(
		serveCmd(),
		exploreCmd(),
		searchCmd(),
		suggestCmd(),
		listCmd(),
		registerCmd(),
		seedCmd(),
		posterCmd(),
		statsCmd(),
		healthCmd(),
		mcpCmd(),
	)

	rootCmd.SetContext(ctx)

	err := rootCmd.Execute()
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if cfg != nil && cfg.Logging.Level == "debug" {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg != nil && cfg.Logging.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func newStore(ctx context.Context, logger *slog.Logger) (*store.Neo4jStore, error) {
	return store.NewNeo4jStore(ctx, cfg.Neo4j.URI, cfg.Neo4j.Username, cfg.Neo4j.Password, cfg.Neo4j.Database, logger)
}

func newEnricher(logger *slog.Logger) *enrich.TMDBClient {
	return enrich.NewTMDBClient(enrich.Options{
		BaseURL:           cfg.TMDB.BaseURL,
		ImageBaseURL:      cfg.TMDB.ImageBaseURL,
		APIKey:            cfg.TMDB.APIKey,
		RequestsPerSecond: cfg.TMDB.RequestsPerSecond,
		Burst:             cfg.TMDB.Burst,
		Timeout:           cfg.TMDB.Timeout,
	}, logger)
}

func newCatalog(st store.Store, logger *slog.Logger) *catalog.Service {
	return catalog.NewService(st, newEnricher(logger), catalog.Options{
		SuggestLimit:    cfg.Engine.SuggestLimit,
		SeedConcurrency: cfg.Seed.Concurrency,
		SeedNames:       cfg.Seed.Names,
	}, logger)
}

// newBackend returns the backend the engine talks to: the HTTP API by
// default, or an in-process catalog over Neo4j with --direct. The returned
// func releases it.
func newBackend(ctx context.Context, logger *slog.Logger) (backend.Backend, func(), error) {
	if !direct {
		return backend.NewHTTPClient(cfg.Client.BaseURL, cfg.Client.AuthToken, cfg.Client.Timeout, logger), func() {}, nil
	}
	st, err := newStore(ctx, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to neo4j: %w", err)
	}
	return newCatalog(st, logger), func() { _ = st.Close() }, nil
}

func graphOptions() graphview.Options {
	return graphview.Options{MaxRelated: cfg.Engine.MaxRelated, LinkDistance: cfg.Engine.LinkDistance}
}

func suggestOptions() suggest.Options {
	return suggest.Options{
		Debounce:     cfg.Engine.Debounce,
		SpinnerDelay: cfg.Engine.SpinnerDelay,
		MinLength:    cfg.Engine.MinSuggestLength,
	}
}

// roleFlag parses the --type flag value.
func roleFlag(s string) (models.Role, error) {
	role, err := models.ParseRole(s)
	if err != nil {
		return "", fmt.Errorf("--type: %w", err)
	}
	return role, nil
}
