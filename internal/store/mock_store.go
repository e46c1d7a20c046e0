package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/ajitpratap0/castgraph/internal/models"
)

// MockStore is an in-memory implementation of Store for testing.
type MockStore struct {
	mu      sync.RWMutex
	actors  map[string]models.Entity
	movies  map[string]models.Entity
	actedIn map[string]map[string]struct{} // actor name -> movie titles
}

// NewMockStore creates a new mock store.
func NewMockStore() *MockStore {
	return &MockStore{
		actors:  make(map[string]models.Entity),
		movies:  make(map[string]models.Entity),
		actedIn: make(map[string]map[string]struct{}),
	}
}

// EnsureSchema is a no-op for the mock store.
func (m *MockStore) EnsureSchema(_ context.Context) error {
	return nil
}

func (m *MockStore) Filmography(_ context.Context, name string) (*models.DomainResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	actor, ok := m.actors[name]
	if !ok {
		return nil, fmt.Errorf("%w: actor %s", ErrNotFound, name)
	}
	related := make([]models.Entity, 0, len(m.actedIn[name]))
	for title := range m.actedIn[name] {
		related = append(related, m.movies[title])
	}
	// year DESC, then title
	sort.Slice(related, func(i, j int) bool {
		if related[i].Year != related[j].Year {
			return related[i].Year > related[j].Year
		}
		return related[i].Name < related[j].Name
	})
	return &models.DomainResult{Focal: actor, Related: related}, nil
}

func (m *MockStore) Cast(_ context.Context, title string) (*models.DomainResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	movie, ok := m.movies[title]
	if !ok {
		return nil, fmt.Errorf("%w: movie %s", ErrNotFound, title)
	}
	var related []models.Entity
	for name, titles := range m.actedIn {
		if _, ok := titles[title]; ok {
			related = append(related, m.actors[name])
		}
	}
	sort.Slice(related, func(i, j int) bool { return related[i].Name < related[j].Name })
	return &models.DomainResult{Focal: movie, Related: related}, nil
}

func (m *MockStore) Autocomplete(_ context.Context, role models.Role, partial string, limit int) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	src, err := m.byRole(role)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(partial)
	var names []string
	for name := range src {
		if strings.Contains(strings.ToLower(name), needle) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	if limit > 0 && len(names) > limit {
		names = names[:limit]
	}
	return names, nil
}

func (m *MockStore) List(_ context.Context, role models.Role) ([]models.Entity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	src, err := m.byRole(role)
	if err != nil {
		return nil, err
	}
	out := make([]models.Entity, 0, len(src))
	for _, e := range src {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MockStore) Get(_ context.Context, role models.Role, name string) (*models.Entity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	src, err := m.byRole(role)
	if err != nil {
		return nil, err
	}
	e, ok := src[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s %s", ErrNotFound, role, name)
	}
	return &e, nil
}

// UpsertCredits merges the actor (overwriting its details) and each movie
// (keeping an existing movie's year) and links them.
func (m *MockStore) UpsertCredits(_ context.Context, actor models.Entity, movies []models.Entity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	actor.Role = models.RoleSubject
	m.actors[actor.Name] = actor
	if m.actedIn[actor.Name] == nil {
		m.actedIn[actor.Name] = make(map[string]struct{})
	}
	for _, mv := range movies {
		if _, ok := m.movies[mv.Name]; !ok {
			m.movies[mv.Name] = models.Entity{Role: models.RoleRelated, Name: mv.Name, Year: mv.Year}
		}
		m.actedIn[actor.Name][mv.Name] = struct{}{}
	}
	return nil
}

func (m *MockStore) Delete(_ context.Context, role models.Role, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch role {
	case models.RoleSubject:
		if _, ok := m.actors[name]; !ok {
			return fmt.Errorf("%w: actor %s", ErrNotFound, name)
		}
		delete(m.actors, name)
		delete(m.actedIn, name)
	case models.RoleRelated:
		if _, ok := m.movies[name]; !ok {
			return fmt.Errorf("%w: movie %s", ErrNotFound, name)
		}
		delete(m.movies, name)
		for _, titles := range m.actedIn {
			delete(titles, name)
		}
	default:
		return fmt.Errorf("invalid role %q", role)
	}
	return nil
}

// Stats returns counts computed from the in-memory store.
func (m *MockStore) Stats(_ context.Context) (*models.CatalogStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	stats := &models.CatalogStats{
		Actors: int64(len(m.actors)),
		Movies: int64(len(m.movies)),
	}
	for _, titles := range m.actedIn {
		stats.Links += int64(len(titles))
	}
	return stats, nil
}

// Close is a no-op for the mock store.
func (m *MockStore) Close() error {
	return nil
}

func (m *MockStore) byRole(role models.Role) (map[string]models.Entity, error) {
	switch role {
	case models.RoleSubject:
		return m.actors, nil
	case models.RoleRelated:
		return m.movies, nil
	default:
		return nil, fmt.Errorf("invalid role %q", role)
	}
}
