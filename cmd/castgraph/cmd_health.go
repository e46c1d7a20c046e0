package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ajitpratap0/castgraph/internal/backend"
)

func healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check connectivity to required services",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			ctx := cmd.Context()
			allOK := true

			// Check Neo4j
			st, err := newStore(ctx, logger)
			if err != nil {
				fmt.Printf("Neo4j: FAIL (%v)\n", err)
				allOK = false
			} else {
				defer func() { _ = st.Close() }()
				if err := st.EnsureSchema(ctx); err != nil {
					fmt.Printf("Neo4j: FAIL (%v)\n", err)
					allOK = false
				} else {
					fmt.Println("Neo4j: OK")
				}
			}

			// Check the HTTP API
			client := backend.NewHTTPClient(cfg.Client.BaseURL, cfg.Client.AuthToken, cfg.Client.Timeout, logger)
			if err := client.Health(ctx); err != nil {
				fmt.Printf("API (%s): FAIL (%v)\n", cfg.Client.BaseURL, err)
				allOK = false
			} else {
				fmt.Printf("API (%s): OK\n", cfg.Client.BaseURL)
			}

			// Check TMDB API key
			if cfg.TMDB.APIKey == "" {
				fmt.Println("TMDB API: FAIL (no API key configured)")
				allOK = false
			} else {
				fmt.Println("TMDB API: OK")
			}

			if !allOK {
				return fmt.Errorf("one or more health checks failed")
			}
			return nil
		},
	}
}
