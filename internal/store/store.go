package store

import (
	"context"
	"errors"

	"github.com/ajitpratap0/castgraph/internal/models"
)

// ErrNotFound is returned when the requested actor or movie does not exist.
var ErrNotFound = errors.New("entity not found")

// Store defines the interface for actor/movie graph persistence.
type Store interface {
	// EnsureSchema creates the uniqueness constraints on the natural keys if
	// they don't exist.
	EnsureSchema(ctx context.Context) error

	// Filmography returns an actor and their movies ordered by year
	// descending, then title.
	Filmography(ctx context.Context, name string) (*models.DomainResult, error)

	// Cast returns a movie and its actors ordered by name.
	Cast(ctx context.Context, title string) (*models.DomainResult, error)

	// Autocomplete returns up to limit names of the role containing partial,
	// case-insensitively.
	Autocomplete(ctx context.Context, role models.Role, partial string, limit int) ([]string, error)

	// List returns every entity of the role ordered by name.
	List(ctx context.Context, role models.Role) ([]models.Entity, error)

	// Get retrieves a single entity by natural key.
	Get(ctx context.Context, role models.Role, name string) (*models.Entity, error)

	// UpsertCredits merges an actor, the given movies and an ACTED_IN
	// relationship to each. Existing nodes keep their identity.
	UpsertCredits(ctx context.Context, actor models.Entity, movies []models.Entity) error

	// Delete removes an entity and its relationships.
	Delete(ctx context.Context, role models.Role, name string) error

	// Stats returns node and relationship counts.
	Stats(ctx context.Context) (*models.CatalogStats, error)

	// Close cleans up resources.
	Close() error
}
