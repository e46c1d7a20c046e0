// Package suggest implements debounced, latest-wins autocomplete for the
// search input.
package suggest

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/jonboulle/clockwork"

	"github.com/ajitpratap0/castgraph/internal/gate"
	"github.com/ajitpratap0/castgraph/internal/metrics"
	"github.com/ajitpratap0/castgraph/internal/models"
)

const (
	DefaultDebounce     = 300 * time.Millisecond
	DefaultSpinnerDelay = 100 * time.Millisecond
	DefaultMinLength    = 2
)

// Suggester fetches autocomplete candidates.
type Suggester interface {
	Suggest(ctx context.Context, role models.Role, partial string) ([]models.Suggestion, error)
}

// Committer receives a selected suggestion as a committed search.
type Committer interface {
	Search(raw string, role models.Role) error
}

// Options tunes the engine timing.
type Options struct {
	Debounce     time.Duration
	SpinnerDelay time.Duration
	MinLength    int
}

func (o Options) withDefaults() Options {
	if o.Debounce <= 0 {
		o.Debounce = DefaultDebounce
	}
	if o.SpinnerDelay <= 0 {
		o.SpinnerDelay = DefaultSpinnerDelay
	}
	if o.MinLength <= 0 {
		o.MinLength = DefaultMinLength
	}
	return o
}

// View is what the suggestion surface renders.
type View struct {
	Text        string              `json:"text"`
	Suggestions []models.Suggestion `json:"suggestions"`
	Open        bool                `json:"open"`
	Spinner     bool                `json:"spinner"`
}

// Engine turns keystrokes into at most one suggestion request per quiet
// period and applies only the response to the latest request.
type Engine struct {
	mu        sync.Mutex
	backend   Suggester
	committer Committer
	clock     clockwork.Clock
	gate      *gate.Gate
	opts      Options
	logger    *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	role      models.Role
	text      string
	set       models.SuggestionSet
	open      bool
	spinner   bool
	spinTimer clockwork.Timer
	observer  func(View)
	closed    bool
}

// New creates an engine for the subject role.
func New(backend Suggester, committer Committer, clock clockwork.Clock, opts Options, logger *slog.Logger) *Engine {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	opts = opts.withDefaults()
	ctx, cancel := context.WithCancel(context.Background())
	return &Engine{
		backend:   backend,
		committer: committer,
		clock:     clock,
		gate:      gate.New(clock, opts.Debounce),
		opts:      opts,
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
		role:      models.RoleSubject,
	}
}

// OnChange registers the observer notified after every visible change. It is
// called with the engine lock held and must not call back into the engine.
func (e *Engine) OnChange(fn func(View)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observer = fn
}

// View returns the current surface state.
func (e *Engine) View() View {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.viewLocked()
}

func (e *Engine) viewLocked() View {
	items := make([]models.Suggestion, len(e.set.Items))
	copy(items, e.set.Items)
	return View{Text: e.text, Suggestions: items, Open: e.open, Spinner: e.spinner}
}

func (e *Engine) notifyLocked() {
	if e.observer != nil {
		e.observer(e.viewLocked())
	}
}

// OnInput records a keystroke. Text shorter than the minimum length clears
// the list, cancels any pending request and drops any in-flight response.
func (e *Engine) OnInput(text string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.text = text

	partial := strings.TrimSpace(text)
	if utf8.RuneCountInString(partial) < e.opts.MinLength {
		e.gate.Invalidate()
		e.clearLocked()
		e.notifyLocked()
		return
	}

	role := e.role
	e.gate.Debounce(string(role)+"|"+partial, func(t gate.Ticket) {
		e.fire(t, role, partial)
	})
}

// fire runs when the debounce period elapses with a new key.
func (e *Engine) fire(t gate.Ticket, role models.Role, partial string) {
	e.mu.Lock()
	if e.closed || !e.gate.Current(t) {
		e.mu.Unlock()
		return
	}
	e.stopSpinnerLocked()
	e.spinTimer = e.clock.AfterFunc(e.opts.SpinnerDelay, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if e.closed || !e.gate.Current(t) {
			return
		}
		e.spinner = true
		e.notifyLocked()
	})
	ctx := e.ctx
	e.mu.Unlock()

	metrics.SuggestTotal.Inc()
	go func() {
		items, err := e.backend.Suggest(ctx, role, partial)
		e.apply(t, partial, items, err)
	}()
}

func (e *Engine) apply(t gate.Ticket, partial string, items []models.Suggestion, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || !e.gate.Current(t) {
		metrics.Inc(metrics.StaleDropped, "suggest")
		return
	}
	e.stopSpinnerLocked()
	if err != nil {
		e.logger.Warn("suggest: fetching suggestions", "query", partial, "error", err)
		items = nil
	}

	kept := make([]models.Suggestion, 0, len(items))
	for _, s := range items {
		if strings.TrimSpace(s.Display) == "" {
			continue
		}
		kept = append(kept, s)
	}
	e.set = models.SuggestionSet{Text: partial, Items: kept}
	e.open = len(kept) > 0
	e.notifyLocked()
}

// Select clears the list, closes the surface and forwards the suggestion's
// display text to the committer as a search.
func (e *Engine) Select(s models.Suggestion) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.gate.Invalidate()
	e.clearLocked()
	e.text = s.Display
	role := e.role
	committer := e.committer
	e.notifyLocked()
	e.mu.Unlock()

	if committer == nil {
		return nil
	}
	return committer.Search(s.Display, role)
}

// Blur closes the surface and discards the list.
func (e *Engine) Blur() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.gate.Invalidate()
	e.clearLocked()
	e.notifyLocked()
}

// SetRole switches the role suggestions are fetched for and clears the input.
func (e *Engine) SetRole(role models.Role) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.role = role
	e.text = ""
	e.gate.Invalidate()
	e.clearLocked()
	e.notifyLocked()
}

// Role returns the role suggestions are fetched for.
func (e *Engine) Role() models.Role {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.role
}

// Close stops both timers and drops any in-flight response.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.closed = true
	e.gate.Close()
	e.stopSpinnerLocked()
	e.cancel()
}

func (e *Engine) clearLocked() {
	e.stopSpinnerLocked()
	e.set = models.SuggestionSet{}
	e.open = false
}

func (e *Engine) stopSpinnerLocked() {
	if e.spinTimer != nil {
		e.spinTimer.Stop()
		e.spinTimer = nil
	}
	e.spinner = false
}
