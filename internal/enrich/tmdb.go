// Package enrich fetches actor filmographies and movie artwork from The
// Movie Database (TMDB).
package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/ajitpratap0/castgraph/internal/metrics"
	"github.com/ajitpratap0/castgraph/internal/models"
)

// ErrNotFound is returned when TMDB has no match for a search.
var ErrNotFound = errors.New("not found in TMDB")

// ErrNoAPIKey is returned when the client was built without an API key.
var ErrNoAPIKey = errors.New("TMDB API key is not configured")

// Person is an actor with the filmography TMDB knows for them.
type Person struct {
	Actor   models.Entity
	Credits []models.Entity
}

// Options configures a TMDBClient.
type Options struct {
	BaseURL           string
	ImageBaseURL      string
	APIKey            string
	RequestsPerSecond float64
	Burst             int
	Timeout           time.Duration
}

// TMDBClient calls the TMDB v3 API. Outbound requests are rate limited and
// pass through a circuit breaker so a failing upstream is not hammered during
// a seed run.
type TMDBClient struct {
	baseURL   string
	imageBase string
	apiKey    string
	client    *http.Client
	limiter   *rate.Limiter
	breaker   *gobreaker.CircuitBreaker
	logger    *slog.Logger
}

type searchResponse struct {
	Results []struct {
		ID         int64  `json:"id"`
		Name       string `json:"name"`
		Title      string `json:"title"`
		PosterPath string `json:"poster_path"`
	} `json:"results"`
}

type personResponse struct {
	Name     string `json:"name"`
	Birthday string `json:"birthday"`
	Deathday string `json:"deathday"`
	Gender   int    `json:"gender"`
	Credits  struct {
		Cast []struct {
			Title       string `json:"title"`
			ReleaseDate string `json:"release_date"`
		} `json:"cast"`
	} `json:"movie_credits"`
}

// NewTMDBClient creates a new TMDB client.
func NewTMDBClient(opts Options, logger *slog.Logger) *TMDBClient {
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = 20
	}
	if opts.Burst <= 0 {
		opts.Burst = 1
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	c := &TMDBClient{
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		imageBase: strings.TrimRight(opts.ImageBaseURL, "/"),
		apiKey:    opts.APIKey,
		client:    &http.Client{Timeout: opts.Timeout},
		limiter:   rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), opts.Burst),
		logger:    logger,
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "tmdb",
		MaxRequests: 1,
		Interval:    30 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound) || errors.Is(err, context.Canceled)
		},
	})
	return c
}

// get performs one rate-limited, breaker-guarded GET and decodes the JSON
// response into out.
func (c *TMDBClient) get(ctx context.Context, path string, params url.Values, out any) error {
	if c.apiKey == "" {
		return ErrNoAPIKey
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("waiting for rate limiter: %w", err)
	}

	_, err := c.breaker.Execute(func() (interface{}, error) {
		params.Set("api_key", c.apiKey)
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("calling TMDB API: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusNotFound {
			return nil, ErrNotFound
		}
		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
			return nil, fmt.Errorf("TMDB API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return nil, fmt.Errorf("decoding response: %w", err)
		}
		return nil, nil
	})
	switch {
	case err == nil:
		metrics.Inc(metrics.EnrichTotal, "ok")
	case errors.Is(err, ErrNotFound):
		metrics.Inc(metrics.EnrichTotal, "not_found")
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.Inc(metrics.EnrichTotal, "rejected")
	default:
		metrics.Inc(metrics.EnrichTotal, "error")
	}
	return err
}

// FetchPerson searches for name, takes the first hit and returns the
// person's details with their movie credits. Credits without a release date
// are skipped; the year is the first four characters of the release date.
func (c *TMDBClient) FetchPerson(ctx context.Context, name string) (*Person, error) {
	var search searchResponse
	if err := c.get(ctx, "/search/person", url.Values{"query": {name}}, &search); err != nil {
		return nil, fmt.Errorf("searching person %q: %w", name, err)
	}
	if len(search.Results) == 0 {
		return nil, fmt.Errorf("person %q: %w", name, ErrNotFound)
	}

	id := search.Results[0].ID
	var details personResponse
	params := url.Values{"append_to_response": {"movie_credits"}}
	if err := c.get(ctx, fmt.Sprintf("/person/%d", id), params, &details); err != nil {
		return nil, fmt.Errorf("fetching person %d: %w", id, err)
	}

	p := &Person{
		Actor: models.Entity{
			Role:        models.RoleSubject,
			Name:        details.Name,
			DateOfBirth: details.Birthday,
			DateOfDeath: details.Deathday,
			Gender:      genderLabel(details.Gender),
		},
	}
	for _, credit := range details.Credits.Cast {
		if credit.ReleaseDate == "" || strings.TrimSpace(credit.Title) == "" {
			continue
		}
		year := credit.ReleaseDate
		if len(year) > 4 {
			year = year[:4]
		}
		p.Credits = append(p.Credits, models.Entity{Role: models.RoleRelated, Name: credit.Title, Year: year})
	}

	c.logger.Debug("fetched person from TMDB", "name", p.Actor.Name, "credits", len(p.Credits))
	return p, nil
}

// FetchPoster searches for a movie title and returns the first hit's poster.
func (c *TMDBClient) FetchPoster(ctx context.Context, title string) (*models.Poster, error) {
	var search searchResponse
	if err := c.get(ctx, "/search/movie", url.Values{"query": {title}}, &search); err != nil {
		return nil, fmt.Errorf("searching movie %q: %w", title, err)
	}
	if len(search.Results) == 0 || search.Results[0].PosterPath == "" {
		return nil, fmt.Errorf("poster for %q: %w", title, ErrNotFound)
	}
	path := search.Results[0].PosterPath
	return &models.Poster{Title: title, PosterPath: path, URL: c.imageBase + path}, nil
}

// genderLabel maps TMDB's gender code: 2 is male, anything else is recorded
// as female.
func genderLabel(code int) string {
	if code == 2 {
		return "Male"
	}
	return "Female"
}
