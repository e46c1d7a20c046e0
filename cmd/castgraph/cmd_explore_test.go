package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/castgraph/internal/backend"
	"github.com/ajitpratap0/castgraph/internal/explorer"
	"github.com/ajitpratap0/castgraph/internal/models"
	"github.com/ajitpratap0/castgraph/internal/session"
	"github.com/ajitpratap0/castgraph/internal/store"
	"github.com/ajitpratap0/castgraph/internal/viewport"
)

// syncBuffer is a bytes.Buffer safe for the observer goroutines.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newTestREPL(t *testing.T) (*repl, *syncBuffer) {
	t.Helper()
	b := backend.NewMockBackend()
	hanks := models.Entity{Name: "Tom Hanks"}
	b.AddCredit(hanks, models.Entity{Name: "Cast Away", Year: "2000"})
	b.AddCredit(hanks, models.Entity{Name: "Big", Year: "1988"})
	b.AddRegistrable("Zendaya", models.Entity{Name: "Dune", Year: "2021"})

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	e := explorer.New(b, nil, clockwork.NewFakeClock(), explorer.Options{Viewport: viewport.DefaultConfig()}, logger)
	t.Cleanup(e.Close)

	out := &syncBuffer{}
	r := &repl{e: e, out: out}
	e.Session().Subscribe(r.onState)
	e.Suggestions().OnChange(r.onSuggest)
	return r, out
}

func TestREPL_SearchPrintsGraph(t *testing.T) {
	r, out := newTestREPL(t)
	ctx := context.Background()

	assert.False(t, r.handle(ctx, "tom hanks"))
	require.Eventually(t, func() bool { return strings.Contains(out.String(), "Tom Hanks (actor)") }, time.Second, 5*time.Millisecond)
	assert.Contains(t, out.String(), "Cast Away (2000)")
	assert.Contains(t, out.String(), "Big (1988)")
}

func TestREPL_NotFoundThenRegister(t *testing.T) {
	r, out := newTestREPL(t)
	ctx := context.Background()

	r.handle(ctx, "zendaya")
	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), `No actor found for "Zendaya"`)
	}, time.Second, 5*time.Millisecond)

	r.handle(ctx, ":register")
	require.Eventually(t, func() bool { return strings.Contains(out.String(), "Dune (2021)") }, time.Second, 5*time.Millisecond)
}

func TestREPL_TypeAndQuery(t *testing.T) {
	r, out := newTestREPL(t)
	ctx := context.Background()

	r.handle(ctx, ":type movie")
	assert.Equal(t, models.RoleRelated, r.e.State().Role)
	r.handle(ctx, ":query")
	assert.Contains(t, out.String(), store.LookupStatement(models.RoleRelated))

	r.handle(ctx, ":type director")
	assert.Contains(t, out.String(), "error: invalid role")
}

func TestREPL_SelectAndBack(t *testing.T) {
	r, out := newTestREPL(t)
	ctx := context.Background()

	r.handle(ctx, "Tom Hanks")
	require.Eventually(t, func() bool { return r.e.State().Outcome.Status() == session.StatusFound }, time.Second, 5*time.Millisecond)

	r.handle(ctx, ":select Big")
	assert.Contains(t, out.String(), "Selected: Big (movie)")

	r.handle(ctx, ":select Heat")
	assert.Contains(t, out.String(), "error:")

	r.handle(ctx, ":back")
	require.Eventually(t, func() bool { return r.e.State().Outcome.Status() == session.StatusIdle }, time.Second, 5*time.Millisecond)
	r.handle(ctx, ":back")
	assert.Contains(t, out.String(), "No earlier entry.")
}

func TestREPL_QuitAndUnknown(t *testing.T) {
	r, out := newTestREPL(t)
	ctx := context.Background()

	assert.False(t, r.handle(ctx, ":bogus"))
	assert.Contains(t, out.String(), `Unknown command "bogus"`)
	assert.False(t, r.handle(ctx, ":pick 3"))
	assert.Contains(t, out.String(), `No suggestion "3"`)
	assert.True(t, r.handle(ctx, ":quit"))
}

func TestREPL_RunStopsAtEOF(t *testing.T) {
	r, _ := newTestREPL(t)
	err := r.run(context.Background(), strings.NewReader(":help\n"))
	require.NoError(t, err)
}
