// Package history mirrors committed searches into a location bar and replays
// location changes back into the session.
package history

import (
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"github.com/ajitpratap0/castgraph/internal/models"
)

const (
	paramQuery = "q"
	paramType  = "type"
	paramRole  = "role" // accepted on read only
)

// Encode renders q as a location query string ("?q=...&type=..."). A zero
// query encodes to the empty location.
func Encode(q models.Query) string {
	if q.IsZero() {
		return ""
	}
	v := url.Values{}
	v.Set(paramQuery, q.Text)
	v.Set(paramType, string(q.Role))
	return "?" + v.Encode()
}

// Decode parses a location produced by Encode. It accepts a leading "?" or a
// full URL. A missing or unknown type defaults to the subject role; ok is
// false when no query text is present.
func Decode(location string) (models.Query, bool) {
	raw := location
	if i := strings.IndexByte(raw, '?'); i >= 0 {
		raw = raw[i+1:]
	}
	v, err := url.ParseQuery(raw)
	if err != nil {
		return models.Query{}, false
	}

	text := strings.TrimSpace(v.Get(paramQuery))
	if text == "" {
		return models.Query{}, false
	}

	role := models.Role(v.Get(paramType))
	if role == "" {
		role = models.Role(v.Get(paramRole))
	}
	if !role.IsValid() {
		role = models.RoleSubject
	}
	return models.Query{Text: text, Role: role}, true
}

// Navigator is the location bar.
type Navigator interface {
	// Push appends a new history entry.
	Push(location string)
	// Replace overwrites the current entry.
	Replace(location string)
	// Location returns the current entry.
	Location() string
}

// Restorer is the session surface the synchronizer drives.
type Restorer interface {
	Restore(q models.Query)
	Reset()
}

// Synchronizer keeps a Navigator and a session in step.
type Synchronizer struct {
	nav    Navigator
	target Restorer
	logger *slog.Logger
}

// NewSynchronizer creates a synchronizer. The target may be attached later
// with Attach when the session itself depends on the synchronizer.
func NewSynchronizer(nav Navigator, target Restorer, logger *slog.Logger) *Synchronizer {
	return &Synchronizer{nav: nav, target: target, logger: logger}
}

// Attach sets the session replayed on navigation.
func (s *Synchronizer) Attach(target Restorer) {
	s.target = target
}

// Commit pushes exactly one entry for a committed search.
func (s *Synchronizer) Commit(q models.Query) {
	s.nav.Push(Encode(q))
}

// Clear drops the query parameters without adding an entry.
func (s *Synchronizer) Clear() {
	s.nav.Replace("")
}

// OnNavigate replays location into the session: a search when it carries
// a query, a reset to idle otherwise.
func (s *Synchronizer) OnNavigate(location string) {
	if s.target == nil {
		return
	}
	q, ok := Decode(location)
	if !ok {
		s.logger.Debug("history: navigated to empty location")
		s.target.Reset()
		return
	}
	s.logger.Debug("history: restoring", "query", q.Text, "role", q.Role)
	s.target.Restore(q)
}

// Init performs the initial read-and-replay once at startup. An empty
// location leaves the session untouched.
func (s *Synchronizer) Init() {
	if _, ok := Decode(s.nav.Location()); !ok {
		return
	}
	s.OnNavigate(s.nav.Location())
}

// MemoryNavigator is an in-memory Navigator with back/forward. Listener is
// invoked with the new location after Back and Forward, which mirrors a
// browser popstate.
type MemoryNavigator struct {
	mu       sync.Mutex
	entries  []string
	index    int
	listener func(location string)
}

// NewMemoryNavigator creates a navigator whose single entry is initial.
func NewMemoryNavigator(initial string) *MemoryNavigator {
	return &MemoryNavigator{entries: []string{initial}}
}

// OnPop registers the listener called after Back and Forward.
func (m *MemoryNavigator) OnPop(fn func(location string)) {
	m.mu.Lock()
	m.listener = fn
	m.mu.Unlock()
}

func (m *MemoryNavigator) Push(location string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries[:m.index+1], location)
	m.index = len(m.entries) - 1
}

func (m *MemoryNavigator) Replace(location string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[m.index] = location
}

func (m *MemoryNavigator) Location() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries[m.index]
}

// Len returns the number of entries.
func (m *MemoryNavigator) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Back moves one entry back. It reports false at the first entry.
func (m *MemoryNavigator) Back() bool {
	return m.move(-1)
}

// Forward moves one entry forward. It reports false at the last entry.
func (m *MemoryNavigator) Forward() bool {
	return m.move(1)
}

func (m *MemoryNavigator) move(delta int) bool {
	m.mu.Lock()
	next := m.index + delta
	if next < 0 || next >= len(m.entries) {
		m.mu.Unlock()
		return false
	}
	m.index = next
	loc := m.entries[next]
	fn := m.listener
	m.mu.Unlock()

	if fn != nil {
		fn(loc)
	}
	return true
}
