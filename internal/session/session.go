// Package session implements the search session state machine: it turns
// committed queries into lookups, applies only the latest response and
// exposes the resulting graph.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/ajitpratap0/castgraph/internal/backend"
	"github.com/ajitpratap0/castgraph/internal/gate"
	"github.com/ajitpratap0/castgraph/internal/graphview"
	"github.com/ajitpratap0/castgraph/internal/metrics"
	"github.com/ajitpratap0/castgraph/internal/models"
	"github.com/ajitpratap0/castgraph/internal/query"
)

var (
	// ErrClosed is returned by operations on a closed session.
	ErrClosed = errors.New("session closed")
	// ErrNotRegistrable is returned by RegisterAndRetry outside a subject
	// not-found outcome.
	ErrNotRegistrable = errors.New("register is only available after an actor search found nothing")
	// ErrUnknownNode is returned for a node id absent from the current graph.
	ErrUnknownNode = errors.New("unknown node")
)

// Backend is the part of the catalog a session calls.
type Backend interface {
	LookupRelations(ctx context.Context, role models.Role, name string) (*models.DomainResult, error)
	RegisterSubject(ctx context.Context, name string) (*models.Entity, error)
}

// Recorder mirrors committed searches into navigation history.
type Recorder interface {
	Commit(q models.Query)
	Clear()
}

// Framer is told which graph to fit once its layout settles.
type Framer interface {
	Arm(graphID string)
	Disarm()
}

// State is an immutable snapshot of a session.
type State struct {
	SessionID string
	Outcome   Outcome
	Text      string
	Role      models.Role
	Selected  string
	Banner    Banner
	LastQuery models.Query
}

// Graph returns the current graph, or nil outside a Found outcome.
func (s State) Graph() *models.GraphView {
	if f, ok := s.Outcome.(Found); ok {
		return &f.View
	}
	return nil
}

// SelectedNode returns the highlighted node, if any.
func (s State) SelectedNode() (models.GraphNode, bool) {
	g := s.Graph()
	if g == nil || s.Selected == "" {
		return models.GraphNode{}, false
	}
	return g.Node(s.Selected)
}

// Options tunes the session.
type Options struct {
	Graph graphview.Options
}

// Session is one user's search session. It is safe for concurrent use;
// observers are called with the session lock held and must not call back
// into the session.
type Session struct {
	mu       sync.Mutex
	id       string
	backend  Backend
	gate     *gate.Gate
	recorder Recorder
	framer   Framer
	opts     Options
	logger   *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	outcome   Outcome
	text      string
	role      models.Role
	selected  string
	banner    Banner
	last      models.Query
	ticket    gate.Ticket
	graphs    int
	observers []func(State)
	closed    bool
}

// New creates an idle session for the subject role. recorder and framer
// may be nil.
func New(b Backend, recorder Recorder, framer Framer, opts Options, logger *slog.Logger) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	id := uuid.NewString()
	return &Session{
		id:       id,
		backend:  b,
		gate:     gate.New(nil, 0),
		recorder: recorder,
		framer:   framer,
		opts:     opts,
		logger:   logger.With("session", id),
		ctx:      ctx,
		cancel:   cancel,
		outcome:  Idle{},
		role:     models.RoleSubject,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Subscribe registers fn to receive a snapshot after every transition.
func (s *Session) Subscribe(fn func(State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

// Snapshot returns the current state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() State {
	return State{
		SessionID: s.id,
		Outcome:   s.outcome,
		Text:      s.text,
		Role:      s.role,
		Selected:  s.selected,
		Banner:    s.banner,
		LastQuery: s.last,
	}
}

func (s *Session) notifyLocked() {
	if len(s.observers) == 0 {
		return
	}
	st := s.snapshotLocked()
	for _, fn := range s.observers {
		fn(st)
	}
}

// Search commits a search for raw under role. An empty query returns
// query.ErrEmptyQuery and changes nothing. The location is pushed into
// history before the lookup resolves.
func (s *Session) Search(raw string, role models.Role) error {
	q, err := query.Normalize(raw, role)
	if err != nil {
		return err
	}
	return s.run(q, true)
}

// Restore replays q from navigation history without pushing a new entry.
// A query that does not normalize resets the session.
func (s *Session) Restore(q models.Query) {
	nq, err := query.Normalize(q.Text, q.Role)
	if err != nil {
		s.Reset()
		return
	}
	if err := s.run(nq, false); err != nil {
		s.logger.Debug("session: restore ignored", "error", err)
	}
}

func (s *Session) run(q models.Query, push bool) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	t, _ := s.gate.Issue(query.Key(q))
	s.ticket = t
	s.outcome = Loading{Query: q}
	s.text = q.Text
	s.role = q.Role
	s.selected = ""
	s.last = q
	s.banner = Banner{}
	if s.framer != nil {
		s.framer.Disarm()
	}
	if push && s.recorder != nil {
		s.recorder.Commit(q)
	}
	ctx := s.ctx
	s.notifyLocked()
	s.mu.Unlock()

	metrics.Inc(metrics.SearchTotal, string(q.Role))
	s.logger.Debug("session: searching", "role", q.Role, "query", q.Text, "seq", t.Seq)

	go func() {
		res, err := s.backend.LookupRelations(ctx, q.Role, q.Text)
		s.apply(t, q, res, err)
	}()
	return nil
}

// apply classifies a lookup response. Responses to superseded tickets are
// dropped.
func (s *Session) apply(t gate.Ticket, q models.Query, res *models.DomainResult, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || !s.gate.Current(t) {
		metrics.Inc(metrics.StaleDropped, "search")
		s.logger.Debug("session: dropping stale response", "query", q.Text, "seq", t.Seq)
		return
	}

	switch {
	case err != nil && backend.IsNotFound(err):
		s.outcome = NotFound{Query: q}
		s.banner = notFoundBanner(q)
	case err != nil:
		s.logger.Warn("session: lookup failed", "role", q.Role, "query", q.Text, "error", err)
		s.outcome = Failed{Query: q, Reason: failedMessage, Err: err}
		s.banner = Banner{Kind: BannerError, Message: failedMessage}
	case res == nil || len(res.Related) == 0:
		s.outcome = NotFound{Query: q}
		s.banner = notFoundBanner(q)
	default:
		view := graphview.Build(*res, q.Role, s.opts.Graph)
		s.graphs++
		id := fmt.Sprintf("%s/%d", s.id, s.graphs)
		s.outcome = Found{Query: q, Result: *res, View: view, GraphID: id}
		s.banner = Banner{}
		if view.Truncated {
			metrics.GraphTruncated.Inc()
			s.banner = Banner{
				Kind:    BannerInfo,
				Message: fmt.Sprintf("Showing %d of %d connections.", len(view.Nodes)-1, view.Total),
			}
		}
		if s.framer != nil {
			s.framer.Arm(id)
		}
	}
	metrics.Inc(metrics.SearchOutcomeTotal, string(s.outcome.Status()))
	s.notifyLocked()
}

// SwitchRole returns to Idle under role, clearing the text, graph,
// selection, banner and the history query parameters.
func (s *Session) SwitchRole(role models.Role) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.clearLocked()
	s.role = role
	if s.recorder != nil {
		s.recorder.Clear()
	}
	s.notifyLocked()
}

// Reset returns to Idle keeping the role. History is left as is.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.clearLocked()
	s.notifyLocked()
}

func (s *Session) clearLocked() {
	s.gate.Invalidate()
	s.outcome = Idle{}
	s.text = ""
	s.selected = ""
	s.banner = Banner{}
	s.last = models.Query{}
	if s.framer != nil {
		s.framer.Disarm()
	}
}

// RegisterAndRetry registers the subject of a not-found actor search from
// the enrichment source and re-runs the same search. On failure the outcome
// stays NotFound and an *EnrichmentError is returned and shown.
func (s *Session) RegisterAndRetry(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	nf, ok := s.outcome.(NotFound)
	if !ok || nf.Query.Role != models.RoleSubject {
		s.mu.Unlock()
		return ErrNotRegistrable
	}
	q := nf.Query
	t := s.ticket
	s.banner = Banner{Kind: BannerInfo, Message: fmt.Sprintf("Adding %s from TMDB...", q.Text)}
	s.notifyLocked()
	s.mu.Unlock()

	actor, err := s.backend.RegisterSubject(ctx, q.Text)

	s.mu.Lock()
	if s.closed || !s.gate.Current(t) {
		s.mu.Unlock()
		return nil
	}
	if err != nil {
		eerr := &EnrichmentError{Name: q.Text, Err: err}
		s.logger.Warn("session: registration failed", "query", q.Text, "error", err)
		s.banner = Banner{Kind: BannerError, Message: fmt.Sprintf("Could not add %s: %v", q.Text, err)}
		s.notifyLocked()
		s.mu.Unlock()
		return eerr
	}
	s.mu.Unlock()

	s.logger.Info("session: registered subject", "query", q.Text)
	if actor != nil && actor.Name != "" && actor.Name != q.Text {
		s.logger.Warn("session: registered name differs from query, retry may not find it",
			"query", q.Text, "registered", actor.Name)
	}
	return s.run(q, false)
}

// ExpandNode searches for the node's label under the node's role, which
// re-centres the graph on it.
func (s *Session) ExpandNode(id string) error {
	s.mu.Lock()
	node, ok := s.nodeLocked(id)
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("expanding %q: %w", id, ErrUnknownNode)
	}
	return s.Search(node.Label, node.Role)
}

// SelectNode highlights a node of the current graph. An empty id clears the
// selection.
func (s *Session) SelectNode(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if id != "" {
		if _, ok := s.nodeLocked(id); !ok {
			return fmt.Errorf("selecting %q: %w", id, ErrUnknownNode)
		}
	}
	s.selected = id
	s.notifyLocked()
	return nil
}

func (s *Session) nodeLocked(id string) (models.GraphNode, bool) {
	f, ok := s.outcome.(Found)
	if !ok {
		return models.GraphNode{}, false
	}
	return f.View.Node(id)
}

// Close drops pending responses and cancels in-flight requests.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.gate.Close()
	s.cancel()
	if s.framer != nil {
		s.framer.Disarm()
	}
}
