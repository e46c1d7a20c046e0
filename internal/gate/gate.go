// Package gate implements the latest-wins request gate shared by the
// suggestion stream and the search stream.
//
// A Gate hands out monotonically increasing tickets. A response is applied
// only while its ticket is still Current; issuing a newer ticket silently
// makes every older one stale. Optionally the gate debounces issuance and
// suppresses a request whose key equals the last issued key.
package gate

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Ticket identifies one issued request.
type Ticket struct {
	Seq uint64
	Key string
}

// Gate is safe for concurrent use. Callers that combine a Current check with
// their own state write must hold their own lock across both.
type Gate struct {
	mu      sync.Mutex
	clock   clockwork.Clock
	quiet   time.Duration
	seq     uint64
	lastKey string
	timer   clockwork.Timer
	pending uint64
	closed  bool
}

// New creates a gate. quiet is the debounce period used by Debounce; it may be
// zero for streams that are never debounced.
func New(clock clockwork.Clock, quiet time.Duration) *Gate {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Gate{clock: clock, quiet: quiet}
}

// Issue issues a new ticket for key regardless of what was issued before.
// It returns false once the gate is closed.
func (g *Gate) Issue(key string) (Ticket, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.issueLocked(key, false)
}

// IssueIfChanged issues a ticket only when key differs from the most recently
// issued key.
func (g *Gate) IssueIfChanged(key string) (Ticket, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.issueLocked(key, true)
}

func (g *Gate) issueLocked(key string, dedup bool) (Ticket, bool) {
	if g.closed {
		return Ticket{}, false
	}
	if dedup && g.seq > 0 && key == g.lastKey {
		return Ticket{}, false
	}
	g.seq++
	g.lastKey = key
	return Ticket{Seq: g.seq, Key: key}, true
}

// Debounce schedules fire to run after the quiet period, replacing any pending
// schedule. When the period elapses the key goes through IssueIfChanged; fire
// runs only when a ticket was issued. fire is called without the gate lock.
func (g *Gate) Debounce(key string, fire func(Ticket)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return
	}
	if g.timer != nil {
		g.timer.Stop()
	}
	g.pending++
	gen := g.pending
	g.timer = g.clock.AfterFunc(g.quiet, func() {
		g.mu.Lock()
		if gen != g.pending {
			g.mu.Unlock()
			return
		}
		g.timer = nil
		t, ok := g.issueLocked(key, true)
		g.mu.Unlock()
		if ok {
			fire(t)
		}
	})
}

// Cancel drops the pending debounce schedule, if any. It reports whether a
// schedule was pending.
func (g *Gate) Cancel() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.cancelLocked()
}

func (g *Gate) cancelLocked() bool {
	g.pending++
	if g.timer == nil {
		return false
	}
	g.timer.Stop()
	g.timer = nil
	return true
}

// Invalidate makes every outstanding ticket stale and forgets the last issued
// key, so the next IssueIfChanged always issues.
func (g *Gate) Invalidate() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cancelLocked()
	g.seq++
	g.lastKey = ""
}

// Current reports whether t is the most recently issued ticket.
func (g *Gate) Current(t Ticket) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return !g.closed && t.Seq != 0 && t.Seq == g.seq
}

// LastKey returns the key of the most recently issued ticket.
func (g *Gate) LastKey() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastKey
}

// Pending reports whether a debounce schedule is waiting to fire.
func (g *Gate) Pending() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.timer != nil
}

// Close cancels any pending schedule. After Close no ticket is Current and
// nothing new is issued.
func (g *Gate) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cancelLocked()
	g.closed = true
}
