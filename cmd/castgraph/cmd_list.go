package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func listCmd() *cobra.Command {
	var (
		searchType string
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List every actor or every movie",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			ctx := cmd.Context()

			role, err := roleFlag(searchType)
			if err != nil {
				return err
			}

			b, release, err := newBackend(ctx, logger)
			if err != nil {
				return fmt.Errorf("list: %w", err)
			}
			defer release()

			entities, err := b.ListAll(ctx, role)
			if err != nil {
				return fmt.Errorf("list: fetching %ss: %w", role, err)
			}

			for i, e := range entities {
				if limit > 0 && i >= limit {
					fmt.Printf("... and %d more\n", len(entities)-limit)
					break
				}
				fmt.Printf("[%d] ", i+1)
				printEntity(os.Stdout, e)
			}

			if len(entities) == 0 {
				fmt.Printf("No %ss found. Run `castgraph seed` to load the default dataset.\n", role)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&searchType, "type", "actor", "entity type (actor|movie)")
	cmd.Flags().IntVar(&limit, "limit", 0, "max entries to print (0 = all)")
	return cmd
}
