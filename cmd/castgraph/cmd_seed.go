package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ajitpratap0/castgraph/internal/models"
)

func seedCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Populate an empty catalog with well-known actors from TMDB",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			ctx := cmd.Context()

			b, release, err := newBackend(ctx, logger)
			if err != nil {
				return fmt.Errorf("seed: %w", err)
			}
			defer release()

			if !force {
				actors, err := b.ListAll(ctx, models.RoleSubject)
				if err != nil {
					return fmt.Errorf("seed: checking catalog: %w", err)
				}
				if len(actors) > 0 {
					fmt.Printf("Catalog already has %d actors; use --force to seed anyway.\n", len(actors))
					return nil
				}
			}

			rep, err := b.SeedDefaultDataset(ctx)
			if err != nil {
				return fmt.Errorf("seed: %w", err)
			}

			fmt.Printf("Registered %d actors.\n", rep.Count)
			if len(rep.Failed) > 0 {
				fmt.Printf("Failed (%d): %s\n", len(rep.Failed), strings.Join(rep.Failed, ", "))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "seed even when the catalog is not empty")
	return cmd
}
