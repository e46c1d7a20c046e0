// Package explorer wires the suggestion engine, the search session, the
// history synchronizer and the viewport controller into one value per user.
package explorer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jonboulle/clockwork"

	"github.com/ajitpratap0/castgraph/internal/backend"
	"github.com/ajitpratap0/castgraph/internal/graphview"
	"github.com/ajitpratap0/castgraph/internal/history"
	"github.com/ajitpratap0/castgraph/internal/models"
	"github.com/ajitpratap0/castgraph/internal/session"
	"github.com/ajitpratap0/castgraph/internal/store"
	"github.com/ajitpratap0/castgraph/internal/suggest"
	"github.com/ajitpratap0/castgraph/internal/viewport"
)

// Options configures an Explorer.
type Options struct {
	Suggest  suggest.Options
	Graph    graphview.Options
	Viewport viewport.Config
	// Location is the initial navigation location, e.g. "?q=Heat&type=movie".
	Location string
}

// Explorer is one user's exploration surface.
type Explorer struct {
	backend  backend.Backend
	nav      *history.MemoryNavigator
	sync     *history.Synchronizer
	session  *session.Session
	suggest  *suggest.Engine
	viewport *viewport.Controller
	logger   *slog.Logger
}

// New builds an explorer on top of b. renderer may be nil.
func New(b backend.Backend, renderer viewport.Renderer, clock clockwork.Clock, opts Options, logger *slog.Logger) *Explorer {
	nav := history.NewMemoryNavigator(opts.Location)
	sync := history.NewSynchronizer(nav, nil, logger)
	vp := viewport.NewController(opts.Viewport, renderer, logger)
	sess := session.New(b, sync, vp, session.Options{Graph: opts.Graph}, logger)
	sync.Attach(sess)
	nav.OnPop(sync.OnNavigate)

	e := &Explorer{
		backend:  b,
		nav:      nav,
		sync:     sync,
		session:  sess,
		suggest:  suggest.New(b, sess, clock, opts.Suggest, logger),
		viewport: vp,
		logger:   logger,
	}
	sess.Subscribe(e.followRole)
	return e
}

// followRole keeps the suggestion role in step with searches that switch
// role, such as expanding a movie node from an actor graph.
func (e *Explorer) followRole(st session.State) {
	if e.suggest.Role() != st.Role {
		e.suggest.SetRole(st.Role)
	}
}

// Start replays the initial location, if it carries a query.
func (e *Explorer) Start() {
	e.sync.Init()
}

// Session exposes the underlying session for subscription.
func (e *Explorer) Session() *session.Session {
	return e.session
}

// Suggestions exposes the suggestion engine for subscription.
func (e *Explorer) Suggestions() *suggest.Engine {
	return e.suggest
}

// State returns the current session snapshot.
func (e *Explorer) State() session.State {
	return e.session.Snapshot()
}

// Type feeds keystrokes to the suggestion engine.
func (e *Explorer) Type(text string) {
	e.suggest.OnInput(text)
}

// Submit searches the current input text under the current role and closes
// the suggestion list.
func (e *Explorer) Submit() error {
	v := e.suggest.View()
	role := e.suggest.Role()
	e.suggest.Blur()
	return e.session.Search(v.Text, role)
}

// Search runs a search directly, bypassing the input box.
func (e *Explorer) Search(raw string, role models.Role) error {
	return e.session.Search(raw, role)
}

// Choose commits a suggestion as a search.
func (e *Explorer) Choose(s models.Suggestion) error {
	return e.suggest.Select(s)
}

// Blur closes the suggestion list.
func (e *Explorer) Blur() {
	e.suggest.Blur()
}

// SwitchRole changes the search type, returning the session to idle.
func (e *Explorer) SwitchRole(role models.Role) {
	e.suggest.SetRole(role)
	e.session.SwitchRole(role)
}

// Expand re-centres the graph on a node.
func (e *Explorer) Expand(id string) error {
	return e.session.ExpandNode(id)
}

// Select highlights a node for the details panel.
func (e *Explorer) Select(id string) error {
	return e.session.SelectNode(id)
}

// Register imports the missing actor and retries the search.
func (e *Explorer) Register(ctx context.Context) error {
	return e.session.RegisterAndRetry(ctx)
}

// Back navigates to the previous history entry.
func (e *Explorer) Back() bool {
	return e.nav.Back()
}

// Forward navigates to the next history entry.
func (e *Explorer) Forward() bool {
	return e.nav.Forward()
}

// Location returns the current navigation location.
func (e *Explorer) Location() string {
	return e.nav.Location()
}

// LayoutSettled is called by the renderer when node positions stop moving.
func (e *Explorer) LayoutSettled(positions []models.NodePosition, size models.Size) (models.ViewportFrame, bool) {
	f, ok := e.session.Snapshot().Outcome.(session.Found)
	if !ok {
		return models.ViewportFrame{}, false
	}
	return e.viewport.OnLayoutSettled(f.GraphID, positions, size)
}

// Statement returns the Cypher query behind the current search type, for
// the "show query" panel.
func (e *Explorer) Statement() string {
	return store.LookupStatement(e.session.Snapshot().Role)
}

// NeedsSeed reports whether the catalog has no actors yet.
func (e *Explorer) NeedsSeed(ctx context.Context) (bool, error) {
	actors, err := e.backend.ListAll(ctx, models.RoleSubject)
	if err != nil {
		return false, fmt.Errorf("explorer: checking catalog: %w", err)
	}
	return len(actors) == 0, nil
}

// Seed populates an empty catalog.
func (e *Explorer) Seed(ctx context.Context) (*models.SeedReport, error) {
	rep, err := e.backend.SeedDefaultDataset(ctx)
	if err != nil {
		return rep, fmt.Errorf("explorer: seeding: %w", err)
	}
	return rep, nil
}

// Browse lists every entity of role, sorted by name.
func (e *Explorer) Browse(ctx context.Context, role models.Role) ([]models.Entity, error) {
	list, err := e.backend.ListAll(ctx, role)
	if err != nil {
		return nil, fmt.Errorf("explorer: browsing: %w", err)
	}
	return list, nil
}

// Poster returns artwork for a movie node. Failures are silent: the details
// panel simply shows no poster.
func (e *Explorer) Poster(ctx context.Context, title string) (*models.Poster, bool) {
	p, err := e.backend.FetchPoster(ctx, title)
	if err != nil {
		if !errors.Is(err, backend.ErrNotFound) {
			e.logger.Debug("explorer: poster unavailable", "title", title, "error", err)
		}
		return nil, false
	}
	return p, true
}

// Close stops timers and drops in-flight responses.
func (e *Explorer) Close() {
	e.suggest.Close()
	e.session.Close()
}
