package suggest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/castgraph/internal/models"
)

type reply struct {
	items []models.Suggestion
	err   error
}

// fakeSuggester records calls and, when hold is set, blocks each call until
// a reply is sent on the channel registered for its partial text.
type fakeSuggester struct {
	mu      sync.Mutex
	calls   []string
	roles   []models.Role
	hold    bool
	replies map[string]chan reply
	fixed   []models.Suggestion
}

func newFakeSuggester(hold bool) *fakeSuggester {
	return &fakeSuggester{hold: hold, replies: make(map[string]chan reply)}
}

func (f *fakeSuggester) ch(partial string) chan reply {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.replies[partial]
	if !ok {
		c = make(chan reply, 1)
		f.replies[partial] = c
	}
	return c
}

func (f *fakeSuggester) Suggest(ctx context.Context, role models.Role, partial string) ([]models.Suggestion, error) {
	f.mu.Lock()
	f.calls = append(f.calls, partial)
	f.roles = append(f.roles, role)
	hold := f.hold
	fixed := f.fixed
	f.mu.Unlock()
	if !hold {
		return fixed, nil
	}
	select {
	case r := <-f.ch(partial):
		return r.items, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (f *fakeSuggester) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

type fakeCommitter struct {
	mu       sync.Mutex
	searches []models.Query
}

func (f *fakeCommitter) Search(raw string, role models.Role) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searches = append(f.searches, models.Query{Text: raw, Role: role})
	return nil
}

func waitTimers(t *testing.T, fc *clockwork.FakeClock, n int) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, fc.BlockUntilContext(ctx, n))
}

func newTestEngine(b Suggester, c Committer) (*Engine, *clockwork.FakeClock) {
	fc := clockwork.NewFakeClock()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(b, c, fc, Options{}, logger), fc
}

func sugg(names ...string) []models.Suggestion {
	out := make([]models.Suggestion, 0, len(names))
	for _, n := range names {
		out = append(out, models.Suggestion{ID: n, Display: n})
	}
	return out
}

func TestEngine_DebounceCollapsesKeystrokes(t *testing.T) {
	b := newFakeSuggester(false)
	b.fixed = sugg("Tom Hanks")
	e, fc := newTestEngine(b, nil)
	defer e.Close()

	for _, s := range []string{"to", "tom", "tom ", "tom h"} {
		e.OnInput(s)
		fc.Advance(100 * time.Millisecond)
	}
	waitTimers(t, fc, 1)
	fc.Advance(DefaultDebounce)

	require.Eventually(t, func() bool { return len(b.Calls()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"tom h"}, b.Calls())
	require.Eventually(t, func() bool { return e.View().Open }, time.Second, 5*time.Millisecond)
	assert.Equal(t, sugg("Tom Hanks"), e.View().Suggestions)
}

func TestEngine_ShortInputIssuesNothing(t *testing.T) {
	b := newFakeSuggester(false)
	e, fc := newTestEngine(b, nil)
	defer e.Close()

	e.OnInput(" a ")
	fc.Advance(time.Second)
	assert.Never(t, func() bool { return len(b.Calls()) > 0 }, 50*time.Millisecond, 5*time.Millisecond)
	assert.False(t, e.View().Open)
}

func TestEngine_ShortInputCancelsPending(t *testing.T) {
	b := newFakeSuggester(false)
	e, fc := newTestEngine(b, nil)
	defer e.Close()

	e.OnInput("tom")
	waitTimers(t, fc, 1)
	e.OnInput("t")
	fc.Advance(time.Second)
	assert.Never(t, func() bool { return len(b.Calls()) > 0 }, 50*time.Millisecond, 5*time.Millisecond)
}

func TestEngine_SkipsRepeatOfLastIssuedText(t *testing.T) {
	b := newFakeSuggester(false)
	e, fc := newTestEngine(b, nil)
	defer e.Close()

	e.OnInput("tom")
	waitTimers(t, fc, 1)
	fc.Advance(DefaultDebounce)
	require.Eventually(t, func() bool { return len(b.Calls()) == 1 }, time.Second, 5*time.Millisecond)

	e.OnInput("tomm")
	e.OnInput("tom")
	waitTimers(t, fc, 1)
	fc.Advance(DefaultDebounce)
	assert.Never(t, func() bool { return len(b.Calls()) > 1 }, 50*time.Millisecond, 5*time.Millisecond)
}

func TestEngine_StaleResponseDropped(t *testing.T) {
	b := newFakeSuggester(true)
	e, fc := newTestEngine(b, nil)
	defer e.Close()

	e.OnInput("ab")
	waitTimers(t, fc, 1)
	fc.Advance(DefaultDebounce)
	require.Eventually(t, func() bool { return len(b.Calls()) == 1 }, time.Second, 5*time.Millisecond)

	e.OnInput("abc")
	waitTimers(t, fc, 2) // debounce + spinner of the first request
	fc.Advance(DefaultDebounce)
	require.Eventually(t, func() bool { return len(b.Calls()) == 2 }, time.Second, 5*time.Millisecond)

	b.ch("abc") <- reply{items: sugg("Abc Newer")}
	require.Eventually(t, func() bool { return e.View().Open }, time.Second, 5*time.Millisecond)

	b.ch("ab") <- reply{items: sugg("Ab Older")}
	assert.Never(t, func() bool {
		v := e.View()
		return len(v.Suggestions) != 1 || v.Suggestions[0].Display != "Abc Newer"
	}, 50*time.Millisecond, 5*time.Millisecond)
}

func TestEngine_FiltersBlankDisplays(t *testing.T) {
	b := newFakeSuggester(false)
	b.fixed = []models.Suggestion{{ID: "1", Display: "  "}, {ID: "2", Display: "Heat"}, {ID: "3", Display: ""}}
	e, fc := newTestEngine(b, nil)
	defer e.Close()

	e.OnInput("he")
	waitTimers(t, fc, 1)
	fc.Advance(DefaultDebounce)
	require.Eventually(t, func() bool { return e.View().Open }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []models.Suggestion{{ID: "2", Display: "Heat"}}, e.View().Suggestions)
}

func TestEngine_FailureYieldsEmptySet(t *testing.T) {
	b := newFakeSuggester(true)
	e, fc := newTestEngine(b, nil)
	defer e.Close()

	var views []View
	var mu sync.Mutex
	e.OnChange(func(v View) {
		mu.Lock()
		views = append(views, v)
		mu.Unlock()
	})

	e.OnInput("he")
	waitTimers(t, fc, 1)
	fc.Advance(DefaultDebounce)
	require.Eventually(t, func() bool { return len(b.Calls()) == 1 }, time.Second, 5*time.Millisecond)
	b.ch("he") <- reply{err: errors.New("connection refused")}

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(views) > 0
	}, time.Second, 5*time.Millisecond)
	v := e.View()
	assert.False(t, v.Open)
	assert.Empty(t, v.Suggestions)
	assert.False(t, v.Spinner)
}

func TestEngine_SpinnerAfterDelay(t *testing.T) {
	b := newFakeSuggester(true)
	e, fc := newTestEngine(b, nil)
	defer e.Close()

	e.OnInput("he")
	waitTimers(t, fc, 1)
	fc.Advance(DefaultDebounce)
	require.Eventually(t, func() bool { return len(b.Calls()) == 1 }, time.Second, 5*time.Millisecond)
	assert.False(t, e.View().Spinner)

	fc.Advance(DefaultSpinnerDelay)
	require.Eventually(t, func() bool { return e.View().Spinner }, time.Second, 5*time.Millisecond)

	b.ch("he") <- reply{items: sugg("Heat")}
	require.Eventually(t, func() bool { return !e.View().Spinner && e.View().Open }, time.Second, 5*time.Millisecond)
}

func TestEngine_SelectForwardsAndCloses(t *testing.T) {
	b := newFakeSuggester(false)
	b.fixed = sugg("Heat")
	c := &fakeCommitter{}
	e, fc := newTestEngine(b, c)
	defer e.Close()

	e.SetRole(models.RoleRelated)
	e.OnInput("he")
	waitTimers(t, fc, 1)
	fc.Advance(DefaultDebounce)
	require.Eventually(t, func() bool { return e.View().Open }, time.Second, 5*time.Millisecond)

	require.NoError(t, e.Select(models.Suggestion{ID: "Heat", Display: "Heat"}))
	v := e.View()
	assert.False(t, v.Open)
	assert.Empty(t, v.Suggestions)
	assert.Equal(t, "Heat", v.Text)
	require.Len(t, c.searches, 1)
	assert.Equal(t, models.Query{Text: "Heat", Role: models.RoleRelated}, c.searches[0])
}

func TestEngine_SelectDropsInFlightResponse(t *testing.T) {
	b := newFakeSuggester(true)
	e, fc := newTestEngine(b, &fakeCommitter{})
	defer e.Close()

	e.OnInput("he")
	waitTimers(t, fc, 1)
	fc.Advance(DefaultDebounce)
	require.Eventually(t, func() bool { return len(b.Calls()) == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, e.Select(models.Suggestion{Display: "Heat"}))
	b.ch("he") <- reply{items: sugg("Heat")}
	assert.Never(t, func() bool { return e.View().Open }, 50*time.Millisecond, 5*time.Millisecond)
}

func TestEngine_BlurClosesSurface(t *testing.T) {
	b := newFakeSuggester(false)
	b.fixed = sugg("Heat")
	e, fc := newTestEngine(b, nil)
	defer e.Close()

	e.OnInput("he")
	waitTimers(t, fc, 1)
	fc.Advance(DefaultDebounce)
	require.Eventually(t, func() bool { return e.View().Open }, time.Second, 5*time.Millisecond)

	e.Blur()
	assert.False(t, e.View().Open)
	assert.Empty(t, e.View().Suggestions)

	// The same text is issued again after blur.
	e.OnInput("he")
	waitTimers(t, fc, 1)
	fc.Advance(DefaultDebounce)
	require.Eventually(t, func() bool { return len(b.Calls()) == 2 }, time.Second, 5*time.Millisecond)
}

func TestEngine_SetRoleUsesNewRole(t *testing.T) {
	b := newFakeSuggester(false)
	e, fc := newTestEngine(b, nil)
	defer e.Close()

	e.SetRole(models.RoleRelated)
	assert.Equal(t, models.RoleRelated, e.Role())
	assert.Equal(t, "", e.View().Text)

	e.OnInput("he")
	waitTimers(t, fc, 1)
	fc.Advance(DefaultDebounce)
	require.Eventually(t, func() bool { return len(b.Calls()) == 1 }, time.Second, 5*time.Millisecond)
	b.mu.Lock()
	defer b.mu.Unlock()
	assert.Equal(t, models.RoleRelated, b.roles[0])
}

func TestEngine_CloseStopsTimers(t *testing.T) {
	b := newFakeSuggester(false)
	e, fc := newTestEngine(b, nil)

	e.OnInput("he")
	waitTimers(t, fc, 1)
	e.Close()
	fc.Advance(time.Second)
	assert.Never(t, func() bool { return len(b.Calls()) > 0 }, 50*time.Millisecond, 5*time.Millisecond)

	e.OnInput("heat")
	assert.Equal(t, "he", e.View().Text, "input after close is ignored")
}

func TestEngine_ClearingInputDropsInFlightResponse(t *testing.T) {
	b := newFakeSuggester(true)
	e, fc := newTestEngine(b, nil)
	defer e.Close()

	e.OnInput("heat")
	waitTimers(t, fc, 1)
	fc.Advance(DefaultDebounce)
	require.Eventually(t, func() bool { return len(b.Calls()) == 1 }, time.Second, 5*time.Millisecond)

	e.OnInput("")
	b.ch("heat") <- reply{items: sugg("Heat")}
	assert.Never(t, func() bool { return e.View().Open }, 50*time.Millisecond, 5*time.Millisecond)
	assert.Empty(t, e.View().Suggestions)

	// Retyping the cleared text fetches again.
	e.OnInput("heat")
	waitTimers(t, fc, 1)
	fc.Advance(DefaultDebounce)
	require.Eventually(t, func() bool { return len(b.Calls()) == 2 }, time.Second, 5*time.Millisecond)
	b.ch("heat") <- reply{items: sugg("Heat")}
	require.Eventually(t, func() bool { return e.View().Open }, time.Second, 5*time.Millisecond)
	assert.Equal(t, sugg("Heat"), e.View().Suggestions)
}
