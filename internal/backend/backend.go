// Package backend defines the catalog operations the exploration engine
// consumes, together with the errors they report.
package backend

import (
	"context"
	"errors"
	"fmt"

	"github.com/ajitpratap0/castgraph/internal/models"
)

// ErrNotFound is the explicit not-found signal for a well-formed lookup.
var ErrNotFound = errors.New("not found")

// Backend is the catalog service seen from the engine.
type Backend interface {
	// LookupRelations returns the focal entity named name and its related
	// entities: filmography newest first for actors, cast alphabetical for
	// movies. It returns ErrNotFound when no such entity exists.
	LookupRelations(ctx context.Context, role models.Role, name string) (*models.DomainResult, error)

	// Suggest returns autocomplete candidates for a partial name.
	Suggest(ctx context.Context, role models.Role, partial string) ([]models.Suggestion, error)

	// RegisterSubject creates an actor and their filmography from the
	// enrichment source. Registering an existing actor is a no-op merge.
	RegisterSubject(ctx context.Context, name string) (*models.Entity, error)

	// ListAll enumerates every entity of a role.
	ListAll(ctx context.Context, role models.Role) ([]models.Entity, error)

	// SeedDefaultDataset bulk-populates an empty catalog.
	SeedDefaultDataset(ctx context.Context) (*models.SeedReport, error)

	// FetchPoster returns artwork for a movie title.
	FetchPoster(ctx context.Context, title string) (*models.Poster, error)
}

// TransportError is a network failure or a non-success response other than
// the not-found signal.
type TransportError struct {
	Op     string
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err carries the not-found signal.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
