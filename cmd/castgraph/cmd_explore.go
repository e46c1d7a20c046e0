package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/ajitpratap0/castgraph/internal/explorer"
	"github.com/ajitpratap0/castgraph/internal/models"
	"github.com/ajitpratap0/castgraph/internal/session"
	"github.com/ajitpratap0/castgraph/internal/suggest"
)

const exploreHelp = `Type a name to search it under the current type. Commands:
  :type actor|movie   switch search type
  :suggest TEXT       autocomplete TEXT
  :pick N             search the Nth suggestion
  :expand NAME        re-centre the graph on a connected node
  :select NAME        show details for a node
  :register           import the missing actor from TMDB and retry
  :back, :forward     navigate history
  :query              show the Cypher query for the current type
  :list [actor|movie] browse everything
  :poster TITLE       print a movie poster URL
  :seed               load the default dataset
  :quit`

func exploreCmd() *cobra.Command {
	var location string

	cmd := &cobra.Command{
		Use:   "explore",
		Short: "Interactive graph exploration session",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			ctx := cmd.Context()

			b, release, err := newBackend(ctx, logger)
			if err != nil {
				return fmt.Errorf("explore: %w", err)
			}
			defer release()

			e := explorer.New(b, nil, clockwork.NewRealClock(), explorer.Options{
				Suggest:  suggestOptions(),
				Graph:    graphOptions(),
				Viewport: cfg.Viewport,
				Location: location,
			}, logger)
			defer e.Close()

			r := &repl{e: e, out: os.Stdout}
			e.Session().Subscribe(r.onState)
			e.Suggestions().OnChange(r.onSuggest)

			if empty, err := e.NeedsSeed(ctx); err != nil {
				logger.Warn("explore: could not check catalog", "error", err)
			} else if empty {
				r.printf("The catalog is empty. Run :seed to load the default dataset.\n")
			}
			r.printf("%s\n", exploreHelp)
			e.Start()

			return r.run(ctx, os.Stdin)
		},
	}

	cmd.Flags().StringVar(&location, "location", "", `initial location, e.g. "?q=Heat&type=movie"`)
	return cmd
}

// repl drives an Explorer from line input. Output from observers and the
// input loop is serialized by mu.
type repl struct {
	e   *explorer.Explorer
	out io.Writer

	mu          sync.Mutex
	suggestions []models.Suggestion
}

func (r *repl) printf(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.out, format, args...)
}

func (r *repl) onState(st session.State) {
	if st.Outcome.Status() == session.StatusLoading {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	printState(r.out, st)
	if n, ok := st.SelectedNode(); ok {
		fmt.Fprintf(r.out, "Selected: %s (%s)\n", n.Label, n.Role)
	}
}

func (r *repl) onSuggest(v suggest.View) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.suggestions = v.Suggestions
	if v.Spinner {
		fmt.Fprintln(r.out, "...")
		return
	}
	if !v.Open {
		return
	}
	for i, s := range v.Suggestions {
		fmt.Fprintf(r.out, "  %d) %s\n", i+1, s.Display)
	}
}

func (r *repl) run(ctx context.Context, in io.Reader) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			lines <- sc.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if quit := r.handle(ctx, strings.TrimSpace(line)); quit {
				return nil
			}
		}
	}
}

// handle executes one input line. It reports true when the user quits.
func (r *repl) handle(ctx context.Context, line string) bool {
	if line == "" {
		return false
	}
	if !strings.HasPrefix(line, ":") {
		r.report(r.e.Search(line, r.e.Suggestions().Role()))
		return false
	}

	cmd, arg, _ := strings.Cut(line[1:], " ")
	arg = strings.TrimSpace(arg)
	switch cmd {
	case "quit", "q":
		return true
	case "help":
		r.printf("%s\n", exploreHelp)
	case "type":
		role, err := models.ParseRole(arg)
		if err != nil {
			r.report(err)
			return false
		}
		r.e.SwitchRole(role)
	case "suggest":
		r.e.Type(arg)
	case "pick":
		r.pick(arg)
	case "expand":
		r.report(r.e.Expand(arg))
	case "select":
		r.report(r.e.Select(arg))
	case "register":
		r.report(r.e.Register(ctx))
	case "back":
		if !r.e.Back() {
			r.printf("No earlier entry.\n")
		}
	case "forward":
		if !r.e.Forward() {
			r.printf("No later entry.\n")
		}
	case "query":
		r.printf("%s\n", r.e.Statement())
	case "list":
		r.list(ctx, arg)
	case "poster":
		if p, ok := r.e.Poster(ctx, arg); ok && p.URL != "" {
			r.printf("%s\n", p.URL)
		} else {
			r.printf("No poster for %q.\n", arg)
		}
	case "seed":
		rep, err := r.e.Seed(ctx)
		if err != nil {
			r.report(err)
			return false
		}
		r.printf("Registered %d actors, %d failed.\n", rep.Count, len(rep.Failed))
	default:
		r.printf("Unknown command %q. Type :help.\n", cmd)
	}
	return false
}

func (r *repl) pick(arg string) {
	n, err := strconv.Atoi(arg)
	r.mu.Lock()
	list := r.suggestions
	r.mu.Unlock()
	if err != nil || n < 1 || n > len(list) {
		r.printf("No suggestion %q.\n", arg)
		return
	}
	r.report(r.e.Choose(list[n-1]))
}

func (r *repl) list(ctx context.Context, arg string) {
	role := r.e.Suggestions().Role()
	if arg != "" {
		parsed, err := models.ParseRole(arg)
		if err != nil {
			r.report(err)
			return
		}
		role = parsed
	}
	entities, err := r.e.Browse(ctx, role)
	if err != nil {
		r.report(err)
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ent := range entities {
		printEntity(r.out, ent)
	}
}

func (r *repl) report(err error) {
	if err == nil {
		return
	}
	var enrichErr *session.EnrichmentError
	if errors.As(err, &enrichErr) {
		// The session already shows the banner.
		return
	}
	r.printf("error: %v\n", err)
}
