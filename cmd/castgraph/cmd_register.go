package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ajitpratap0/castgraph/internal/backend"
	"github.com/ajitpratap0/castgraph/internal/models"
	"github.com/ajitpratap0/castgraph/internal/query"
)

func registerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "register [actor name]",
		Short: "Import an actor and their filmography from TMDB",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			ctx := cmd.Context()

			q, err := query.Normalize(args[0], models.RoleSubject)
			if err != nil {
				return fmt.Errorf("register: %w", err)
			}

			b, release, err := newBackend(ctx, logger)
			if err != nil {
				return fmt.Errorf("register: %w", err)
			}
			defer release()

			actor, err := b.RegisterSubject(ctx, q.Text)
			if err != nil {
				if errors.Is(err, backend.ErrNotFound) {
					return fmt.Errorf("register: actor %s not found in TMDB", q.Text)
				}
				return fmt.Errorf("register: %w", err)
			}

			fmt.Print("Registered ")
			printEntity(os.Stdout, *actor)
			return nil
		},
	}
}
