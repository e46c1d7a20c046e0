package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/ajitpratap0/castgraph/internal/explorer"
	"github.com/ajitpratap0/castgraph/internal/session"
)

func searchCmd() *cobra.Command {
	var (
		searchType string
		register   bool
	)

	cmd := &cobra.Command{
		Use:   "search [name]",
		Short: "Show an actor's filmography or a movie's cast",
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
				return fmt.Errorf("search: %w", err)
			}
			defer release()

			e := explorer.New(b, nil, clockwork.NewRealClock(), explorer.Options{
				Suggest:  suggestOptions(),
				Graph:    graphOptions(),
				Viewport: cfg.Viewport,
			}, logger)
			defer e.Close()

			// settled holds the latest non-loading state. A new lookup
			// discards whatever the previous one left behind.
			settled := make(chan session.State, 1)
			e.Session().Subscribe(func(st session.State) {
				if st.Outcome.Status() == session.StatusLoading {
					select {
					case <-settled:
					default:
					}
					return
				}
				select {
				case settled <- st:
				default:
				}
			})

			if err := e.Search(args[0], role); err != nil {
				return fmt.Errorf("search: %w", err)
			}

			var st session.State
			select {
			case st = <-settled:
			case <-ctx.Done():
				return ctx.Err()
			}

			if st.Outcome.Status() == session.StatusNotFound && register {
				if err := e.Register(ctx); err != nil {
					var enrichErr *session.EnrichmentError
					if errors.As(err, &enrichErr) {
						printState(os.Stdout, e.State())
						return fmt.Errorf("search: %w", err)
					}
					return fmt.Errorf("search: registering: %w", err)
				}
				select {
				case st = <-settled:
				case <-ctx.Done():
					return ctx.Err()
				}
			}

			printState(os.Stdout, st)
			if f, ok := st.Outcome.(session.Failed); ok {
				return fmt.Errorf("search: %w", f.Err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&searchType, "type", "actor", "search type (actor|movie)")
	cmd.Flags().BoolVar(&register, "register", false, "import a missing actor from TMDB and retry")
	return cmd
}
