package backend

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

	"golang.org/x/sync/singleflight"

	"github.com/ajitpratap0/castgraph/internal/models"
)

// HTTPClient implements Backend against the castgraph HTTP API.
// Concurrent identical lookups share one request.
type HTTPClient struct {
	baseURL   string
	authToken string
	client    *http.Client
	logger    *slog.Logger
	lookups   singleflight.Group
}

// NewHTTPClient creates a client for the API rooted at baseURL.
func NewHTTPClient(baseURL, authToken string, timeout time.Duration, logger *slog.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL:   strings.TrimRight(baseURL, "/"),
		authToken: authToken,
		client:    &http.Client{Timeout: timeout},
		logger:    logger,
	}
}

type errorBody struct {
	Error string `json:"error"`
}

// do issues one request and decodes a JSON response into out. A 404 is
// reported as ErrNotFound; any other failure is a *TransportError.
func (c *HTTPClient) do(ctx context.Context, op, method, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		var eb errorBody
		_ = json.NewDecoder(resp.Body).Decode(&eb)
		if eb.Error == "" {
			eb.Error = path
		}
		return fmt.Errorf("%s: %w: %s", op, ErrNotFound, eb.Error)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &TransportError{Op: op, Status: resp.StatusCode, Err: errors.New(strings.TrimSpace(string(body)))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &TransportError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("decoding response: %w", err)}
	}
	return nil
}

func (c *HTTPClient) LookupRelations(ctx context.Context, role models.Role, name string) (*models.DomainResult, error) {
	var path string
	switch role {
	case models.RoleSubject:
		path = "/actors/" + url.PathEscape(name) + "/filmography"
	case models.RoleRelated:
		path = "/movies/" + url.PathEscape(name) + "/cast"
	default:
		return nil, fmt.Errorf("lookup relations: invalid role %q", role)
	}

	v, err, shared := c.lookups.Do(string(role)+"|"+name, func() (any, error) {
		var res models.DomainResult
		if err := c.do(ctx, "lookup relations", http.MethodGet, path, &res); err != nil {
			return nil, err
		}
		return &res, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		c.logger.Debug("lookup shared with in-flight request", "role", role, "name", name)
	}
	return v.(*models.DomainResult), nil
}

func (c *HTTPClient) Suggest(ctx context.Context, role models.Role, partial string) ([]models.Suggestion, error) {
	path := "/autocomplete/" + url.PathEscape(string(role)) + "?query=" + url.QueryEscape(partial)
	var out []models.Suggestion
	if err := c.do(ctx, "suggest", http.MethodGet, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) RegisterSubject(ctx context.Context, name string) (*models.Entity, error) {
	var out models.Entity
	if err := c.do(ctx, "register subject", http.MethodPost, "/add_actor_from_tmdb/"+url.PathEscape(name), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) ListAll(ctx context.Context, role models.Role) ([]models.Entity, error) {
	var path string
	switch role {
	case models.RoleSubject:
		path = "/actors"
	case models.RoleRelated:
		path = "/movies"
	default:
		return nil, fmt.Errorf("list all: invalid role %q", role)
	}
	var out []models.Entity
	if err := c.do(ctx, "list all", http.MethodGet, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) SeedDefaultDataset(ctx context.Context) (*models.SeedReport, error) {
	var out models.SeedReport
	if err := c.do(ctx, "seed", http.MethodPost, "/seed", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) FetchPoster(ctx context.Context, title string) (*models.Poster, error) {
	var out models.Poster
	if err := c.do(ctx, "fetch poster", http.MethodGet, "/movie/poster/"+url.PathEscape(title), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health checks the API liveness endpoint.
func (c *HTTPClient) Health(ctx context.Context) error {
	return c.do(ctx, "health", http.MethodGet, "/healthz", nil)
}

// Stats returns catalog counts.
func (c *HTTPClient) Stats(ctx context.Context) (*models.CatalogStats, error) {
	var out models.CatalogStats
	if err := c.do(ctx, "stats", http.MethodGet, "/stats", &out); err != nil {
		return nil, err
	}
	return &out, nil
}
