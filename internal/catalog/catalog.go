// Package catalog implements the backend operations on top of the graph
// store and the enrichment source.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ajitpratap0/castgraph/internal/backend"
	"github.com/ajitpratap0/castgraph/internal/enrich"
	"github.com/ajitpratap0/castgraph/internal/metrics"
	"github.com/ajitpratap0/castgraph/internal/models"
	"github.com/ajitpratap0/castgraph/internal/store"
)

// Enricher fetches data the store does not have yet.
type Enricher interface {
	FetchPerson(ctx context.Context, name string) (*enrich.Person, error)
	FetchPoster(ctx context.Context, title string) (*models.Poster, error)
}

// Options tunes the service.
type Options struct {
	SuggestLimit    int
	SeedConcurrency int
	SeedNames       []string
}

// Service implements backend.Backend.
type Service struct {
	store    store.Store
	enricher Enricher
	opts     Options
	logger   *slog.Logger
}

var _ backend.Backend = (*Service)(nil)

// NewService creates a catalog service.
func NewService(st store.Store, enricher Enricher, opts Options, logger *slog.Logger) *Service {
	if opts.SuggestLimit <= 0 {
		opts.SuggestLimit = 5
	}
	if opts.SeedConcurrency <= 0 {
		opts.SeedConcurrency = 4
	}
	if len(opts.SeedNames) == 0 {
		opts.SeedNames = DefaultSeedNames
	}
	return &Service{store: st, enricher: enricher, opts: opts, logger: logger}
}

// notFound rewrites the store and enrichment not-found errors as the
// backend not-found signal.
func notFound(err error) error {
	if errors.Is(err, store.ErrNotFound) || errors.Is(err, enrich.ErrNotFound) {
		return fmt.Errorf("%w: %v", backend.ErrNotFound, err)
	}
	return err
}

func (s *Service) LookupRelations(ctx context.Context, role models.Role, name string) (*models.DomainResult, error) {
	var (
		res *models.DomainResult
		err error
	)
	switch role {
	case models.RoleSubject:
		res, err = s.store.Filmography(ctx, name)
	case models.RoleRelated:
		res, err = s.store.Cast(ctx, name)
	default:
		return nil, fmt.Errorf("catalog: invalid role %q", role)
	}
	if err != nil {
		return nil, fmt.Errorf("catalog: looking up relations: %w", notFound(err))
	}
	return res, nil
}

func (s *Service) Suggest(ctx context.Context, role models.Role, partial string) ([]models.Suggestion, error) {
	names, err := s.store.Autocomplete(ctx, role, partial, s.opts.SuggestLimit)
	if err != nil {
		return nil, fmt.Errorf("catalog: suggesting: %w", err)
	}
	out := make([]models.Suggestion, 0, len(names))
	for _, n := range names {
		out = append(out, models.Suggestion{ID: n, Display: n})
	}
	return out, nil
}

func (s *Service) RegisterSubject(ctx context.Context, name string) (*models.Entity, error) {
	person, err := s.enricher.FetchPerson(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("catalog: registering subject: %w", notFound(err))
	}
	if err := s.store.UpsertCredits(ctx, person.Actor, person.Credits); err != nil {
		return nil, fmt.Errorf("catalog: registering subject: %w", err)
	}
	s.logger.Info("registered actor with filmography", "name", person.Actor.Name, "movies", len(person.Credits))
	actor := person.Actor
	return &actor, nil
}

func (s *Service) ListAll(ctx context.Context, role models.Role) ([]models.Entity, error) {
	out, err := s.store.List(ctx, role)
	if err != nil {
		return nil, fmt.Errorf("catalog: listing: %w", err)
	}
	return out, nil
}

// SeedDefaultDataset registers every configured seed name with bounded
// concurrency. Individual failures are reported, not returned.
func (s *Service) SeedDefaultDataset(ctx context.Context) (*models.SeedReport, error) {
	var (
		mu     sync.Mutex
		report models.SeedReport
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.SeedConcurrency)
	for _, name := range s.opts.SeedNames {
		g.Go(func() error {
			_, err := s.RegisterSubject(gctx, name)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				s.logger.Warn("seed: registering actor", "name", name, "error", err)
				report.Failed = append(report.Failed, name)
				return nil
			}
			report.Count++
			metrics.SeededTotal.Inc()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return &report, fmt.Errorf("catalog: seeding: %w", err)
	}
	s.logger.Info("seed complete", "registered", report.Count, "failed", len(report.Failed))
	return &report, nil
}

// FetchPoster returns the poster for a movie title.
func (s *Service) FetchPoster(ctx context.Context, title string) (*models.Poster, error) {
	p, err := s.enricher.FetchPoster(ctx, title)
	if err != nil {
		return nil, fmt.Errorf("catalog: fetching poster: %w", notFound(err))
	}
	return p, nil
}

// Stats returns catalog counts.
func (s *Service) Stats(ctx context.Context) (*models.CatalogStats, error) {
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog: stats: %w", err)
	}
	return stats, nil
}
