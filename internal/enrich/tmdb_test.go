package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *TMDBClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewTMDBClient(Options{
		BaseURL:           srv.URL,
		ImageBaseURL:      "https://image.tmdb.org/t/p/w500",
		APIKey:            "test-key",
		RequestsPerSecond: 1000,
		Burst:             10,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestFetchPerson(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("api_key"))
		switch r.URL.Path {
		case "/search/person":
			assert.Equal(t, "Tom Hanks", r.URL.Query().Get("query"))
			writeJSON(w, map[string]any{"results": []map[string]any{{"id": 31, "name": "Tom Hanks"}, {"id": 99}}})
		case "/person/31":
			assert.Equal(t, "movie_credits", r.URL.Query().Get("append_to_response"))
			writeJSON(w, map[string]any{
				"name":     "Tom Hanks",
				"birthday": "1956-07-09",
				"gender":   2,
				"movie_credits": map[string]any{"cast": []map[string]any{
					{"title": "Cast Away", "release_date": "2000-12-22"},
					{"title": "Untitled Project", "release_date": ""},
					{"title": "Big", "release_date": "1988-06-03"},
				}},
			})
		default:
			http.NotFound(w, r)
		}
	})

	p, err := c.FetchPerson(context.Background(), "Tom Hanks")
	require.NoError(t, err)
	assert.Equal(t, "Tom Hanks", p.Actor.Name)
	assert.Equal(t, "Male", p.Actor.Gender)
	assert.Equal(t, "1956-07-09", p.Actor.DateOfBirth)
	require.Len(t, p.Credits, 2, "credits without a release date are skipped")
	assert.Equal(t, "Cast Away", p.Credits[0].Name)
	assert.Equal(t, "2000", p.Credits[0].Year)
	assert.Equal(t, "1988", p.Credits[1].Year)
}

func TestFetchPerson_NoResults(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"results": []any{}})
	})
	_, err := c.FetchPerson(context.Background(), "Nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGenderLabel(t *testing.T) {
	assert.Equal(t, "Male", genderLabel(2))
	assert.Equal(t, "Female", genderLabel(1))
	assert.Equal(t, "Female", genderLabel(0))
}

func TestFetchPoster(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/movie", r.URL.Path)
		if r.URL.Query().Get("query") == "Heat" {
			writeJSON(w, map[string]any{"results": []map[string]any{{"title": "Heat", "poster_path": "/heat.jpg"}}})
			return
		}
		writeJSON(w, map[string]any{"results": []map[string]any{{"title": "Other", "poster_path": ""}}})
	})

	p, err := c.FetchPoster(context.Background(), "Heat")
	require.NoError(t, err)
	assert.Equal(t, "/heat.jpg", p.PosterPath)
	assert.Equal(t, "https://image.tmdb.org/t/p/w500/heat.jpg", p.URL)

	_, err = c.FetchPoster(context.Background(), "Obscure")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMissingAPIKey(t *testing.T) {
	c := NewTMDBClient(Options{BaseURL: "http://127.0.0.1:1"}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	_, err := c.FetchPerson(context.Background(), "Tom Hanks")
	assert.ErrorIs(t, err, ErrNoAPIKey)
}

func TestCircuitBreakerOpensAfterFailures(t *testing.T) {
	var hits atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "upstream down", http.StatusBadGateway)
	})

	for i := 0; i < 5; i++ {
		_, err := c.FetchPoster(context.Background(), "Heat")
		require.Error(t, err)
	}
	assert.Equal(t, int32(5), hits.Load())

	_, err := c.FetchPoster(context.Background(), "Heat")
	require.Error(t, err)
	assert.True(t, errors.Is(err, gobreaker.ErrOpenState), "breaker should reject: %v", err)
	assert.Equal(t, int32(5), hits.Load(), "open breaker does not reach the server")
}

func TestNotFoundDoesNotTripBreaker(t *testing.T) {
	var hits atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		writeJSON(w, map[string]any{"results": []any{}})
	})
	for i := 0; i < 8; i++ {
		_, err := c.FetchPoster(context.Background(), "Nothing")
		assert.ErrorIs(t, err, ErrNotFound)
	}
	assert.Equal(t, int32(8), hits.Load())
}

func TestRateLimiterHonoursContext(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"results": []any{}})
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.FetchPoster(ctx, "Heat")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}
