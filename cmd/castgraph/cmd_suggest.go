package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func suggestCmd() *cobra.Command {
	var searchType string

	cmd := &cobra.Command{
		Use:   "suggest [partial]",
		Short: "Autocomplete a partial actor name or movie title",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			ctx := cmd.Context()

			role, err := roleFlag(searchType)
			if err != nil {
				return err
			}

			b, release, err := newBackend(ctx, logger)
			if err != nil {
				return fmt.Errorf("suggest: %w", err)
			}
			defer release()

			list, err := b.Suggest(ctx, role, strings.TrimSpace(args[0]))
			if err != nil {
				return fmt.Errorf("suggest: %w", err)
			}

			n := 0
			for _, s := range list {
				if strings.TrimSpace(s.Display) == "" {
					continue
				}
				n++
				fmt.Printf("[%d] %s\n", n, s.Display)
			}
			if n == 0 {
				fmt.Println("No suggestions.")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&searchType, "type", "actor", "search type (actor|movie)")
	return cmd
}
