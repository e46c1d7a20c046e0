package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ajitpratap0/castgraph/internal/backend"
)

func posterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "poster [movie title]",
		Short: "Print the poster URL for a movie",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			ctx := cmd.Context()
			title := strings.TrimSpace(args[0])

			b, release, err := newBackend(ctx, logger)
			if err != nil {
				return fmt.Errorf("poster: %w", err)
			}
			defer release()

			p, err := b.FetchPoster(ctx, title)
			if err != nil {
				if errors.Is(err, backend.ErrNotFound) {
					fmt.Printf("No poster for %q.\n", title)
					return nil
				}
				return fmt.Errorf("poster: %w", err)
			}

			if p.URL != "" {
				fmt.Println(p.URL)
				return nil
			}
			fmt.Println(p.PosterPath)
			return nil
		},
	}
}
