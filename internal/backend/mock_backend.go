package backend

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/ajitpratap0/castgraph/internal/models"
)

// MockBackend is an in-memory Backend for tests and offline use. Lookups can
// be held on a per-call gate to simulate slow or out-of-order responses.
type MockBackend struct {
	mu       sync.RWMutex
	actors   map[string]models.Entity
	movies   map[string]models.Entity
	credits  map[string][]string // actor -> movie titles
	register map[string][]models.Entity
	posters  map[string]string

	// Hooks override default behaviour when set.
	LookupHook   func(ctx context.Context, role models.Role, name string) (*models.DomainResult, error)
	SuggestHook  func(ctx context.Context, role models.Role, partial string) ([]models.Suggestion, error)
	RegisterHook func(ctx context.Context, name string) (*models.Entity, error)
	RegisterErr  error
	SeedNames    []string

	calls map[string]int
}

// NewMockBackend creates an empty mock backend.
func NewMockBackend() *MockBackend {
	return &MockBackend{
		actors:   make(map[string]models.Entity),
		movies:   make(map[string]models.Entity),
		credits:  make(map[string][]string),
		register: make(map[string][]models.Entity),
		posters:  make(map[string]string),
		calls:    make(map[string]int),
	}
}

// AddCredit records that actor appeared in movie, creating both as needed.
func (m *MockBackend) AddCredit(actor models.Entity, movie models.Entity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	actor.Role = models.RoleSubject
	movie.Role = models.RoleRelated
	if _, ok := m.actors[actor.Name]; !ok {
		m.actors[actor.Name] = actor
	}
	if _, ok := m.movies[movie.Name]; !ok {
		m.movies[movie.Name] = movie
	}
	for _, t := range m.credits[actor.Name] {
		if t == movie.Name {
			return
		}
	}
	m.credits[actor.Name] = append(m.credits[actor.Name], movie.Name)
}

// AddActor records an actor with no credits.
func (m *MockBackend) AddActor(actor models.Entity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	actor.Role = models.RoleSubject
	m.actors[actor.Name] = actor
}

// AddRegistrable makes name available to RegisterSubject with the given
// filmography.
func (m *MockBackend) AddRegistrable(name string, movies ...models.Entity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.register[name] = movies
}

// SetPoster sets the poster path returned for title.
func (m *MockBackend) SetPoster(title, path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.posters[title] = path
}

// Calls returns how many times op was invoked.
func (m *MockBackend) Calls(op string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls[op]
}

func (m *MockBackend) count(op string) {
	m.mu.Lock()
	m.calls[op]++
	m.mu.Unlock()
}

func (m *MockBackend) LookupRelations(ctx context.Context, role models.Role, name string) (*models.DomainResult, error) {
	m.count("lookup")
	if m.LookupHook != nil {
		return m.LookupHook(ctx, role, name)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	switch role {
	case models.RoleSubject:
		actor, ok := m.actors[name]
		if !ok {
			return nil, fmt.Errorf("%w: actor %s", ErrNotFound, name)
		}
		res := &models.DomainResult{Focal: actor}
		for _, title := range m.credits[name] {
			res.Related = append(res.Related, m.movies[title])
		}
		sort.SliceStable(res.Related, func(i, j int) bool {
			if res.Related[i].Year != res.Related[j].Year {
				return res.Related[i].Year > res.Related[j].Year
			}
			return res.Related[i].Name < res.Related[j].Name
		})
		return res, nil
	case models.RoleRelated:
		movie, ok := m.movies[name]
		if !ok {
			return nil, fmt.Errorf("%w: movie %s", ErrNotFound, name)
		}
		res := &models.DomainResult{Focal: movie}
		for actor, titles := range m.credits {
			for _, t := range titles {
				if t == name {
					res.Related = append(res.Related, m.actors[actor])
				}
			}
		}
		sort.Slice(res.Related, func(i, j int) bool { return res.Related[i].Name < res.Related[j].Name })
		return res, nil
	default:
		return nil, fmt.Errorf("invalid role %q", role)
	}
}

func (m *MockBackend) Suggest(ctx context.Context, role models.Role, partial string) ([]models.Suggestion, error) {
	m.count("suggest")
	if m.SuggestHook != nil {
		return m.SuggestHook(ctx, role, partial)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	src := m.actors
	if role == models.RoleRelated {
		src = m.movies
	}
	needle := strings.ToLower(partial)
	var out []models.Suggestion
	for name := range src {
		if strings.Contains(strings.ToLower(name), needle) {
			out = append(out, models.Suggestion{ID: name, Display: name})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Display < out[j].Display })
	if len(out) > 5 {
		out = out[:5]
	}
	return out, nil
}

func (m *MockBackend) RegisterSubject(ctx context.Context, name string) (*models.Entity, error) {
	m.count("register")
	if m.RegisterHook != nil {
		return m.RegisterHook(ctx, name)
	}
	if m.RegisterErr != nil {
		return nil, m.RegisterErr
	}
	m.mu.RLock()
	movies, ok := m.register[name]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s not found in enrichment source", ErrNotFound, name)
	}
	actor := models.Entity{Role: models.RoleSubject, Name: name}
	m.AddActor(actor)
	for _, mv := range movies {
		m.AddCredit(actor, mv)
	}
	return &actor, nil
}

func (m *MockBackend) ListAll(_ context.Context, role models.Role) ([]models.Entity, error) {
	m.count("list")
	m.mu.RLock()
	defer m.mu.RUnlock()
	src := m.actors
	if role == models.RoleRelated {
		src = m.movies
	}
	out := make([]models.Entity, 0, len(src))
	for _, e := range src {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MockBackend) SeedDefaultDataset(ctx context.Context) (*models.SeedReport, error) {
	m.count("seed")
	report := &models.SeedReport{}
	for _, name := range m.SeedNames {
		if _, err := m.RegisterSubject(ctx, name); err != nil {
			report.Failed = append(report.Failed, name)
			continue
		}
		report.Count++
	}
	return report, nil
}

func (m *MockBackend) FetchPoster(_ context.Context, title string) (*models.Poster, error) {
	m.count("poster")
	m.mu.RLock()
	defer m.mu.RUnlock()
	path, ok := m.posters[title]
	if !ok {
		return nil, fmt.Errorf("%w: poster for %s", ErrNotFound, title)
	}
	return &models.Poster{Title: title, PosterPath: path}, nil
}
