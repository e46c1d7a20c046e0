package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ajitpratap0/castgraph/internal/backend"
	"github.com/ajitpratap0/castgraph/internal/models"
)

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show catalog statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			ctx := cmd.Context()

			var stats *models.CatalogStats
			if direct {
				st, err := newStore(ctx, logger)
				if err != nil {
					return fmt.Errorf("stats: connecting to neo4j: %w", err)
				}
				defer func() { _ = st.Close() }()
				stats, err = st.Stats(ctx)
				if err != nil {
					return fmt.Errorf("stats: fetching statistics: %w", err)
				}
			} else {
				client := backend.NewHTTPClient(cfg.Client.BaseURL, cfg.Client.AuthToken, cfg.Client.Timeout, logger)
				var err error
				stats, err = client.Stats(ctx)
				if err != nil {
					return fmt.Errorf("stats: fetching statistics: %w", err)
				}
			}

			fmt.Printf("Actors: %d\n", stats.Actors)
			fmt.Printf("Movies: %d\n", stats.Movies)
			fmt.Printf("Links:  %d\n", stats.Links)
			return nil
		},
	}
}
