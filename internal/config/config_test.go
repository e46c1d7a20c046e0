package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/castgraph/internal/viewport"
)

// validCfg returns a fully-valid Config for mutation testing.
func validCfg() *Config {
	return &Config{
		Neo4j:  Neo4jConfig{URI: "neo4j://localhost:7687", Username: "neo4j"},
		TMDB:   TMDBConfig{BaseURL: "https://api.themoviedb.org/3", RequestsPerSecond: 20, Burst: 5},
		Client: ClientConfig{BaseURL: "http://localhost:10000"},
		Engine: EngineConfig{
			Debounce:         DefaultDebounce,
			SpinnerDelay:     DefaultSpinnerDelay,
			MinSuggestLength: 2,
			SuggestLimit:     5,
			MaxRelated:       DefaultMaxRelated,
			LinkDistance:     100,
		},
		Viewport: viewport.DefaultConfig(),
		Seed:     SeedConfig{Concurrency: 4},
		Logging:  LoggingConfig{Level: "info", Format: "text"},
	}
}

// chdirTemp moves into an empty directory so no config.yaml is picked up.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("HOME", dir)
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "neo4j://localhost:7687", cfg.Neo4j.URI)
	assert.Equal(t, ":10000", cfg.API.ListenAddr)
	assert.Equal(t, 300*time.Millisecond, cfg.Engine.Debounce)
	assert.Equal(t, 100*time.Millisecond, cfg.Engine.SpinnerDelay)
	assert.Equal(t, 29, cfg.Engine.MaxRelated)
	assert.Equal(t, 5, cfg.Engine.SuggestLimit)
	assert.Equal(t, "https://image.tmdb.org/t/p/w500", cfg.TMDB.ImageBaseURL)
	assert.Equal(t, viewport.DefaultConfig(), cfg.Viewport)
}

func TestLoad_EnvOverrides(t *testing.T) {
	chdirTemp(t)
	t.Setenv("TMDB_API_KEY", "tmdb-secret-key")
	t.Setenv("NEO4J_PASSWORD", "pw")
	t.Setenv("CASTGRAPH_API_LISTEN_ADDR", ":9999")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "tmdb-secret-key", cfg.TMDB.APIKey)
	assert.Equal(t, "pw", cfg.Neo4j.Password)
	assert.Equal(t, ":9999", cfg.API.ListenAddr)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := chdirTemp(t)
	yaml := `
engine:
  debounce: 150ms
  max_related: 10
viewport:
  horizontal_bias: 0
logging:
  format: json
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 150*time.Millisecond, cfg.Engine.Debounce)
	assert.Equal(t, 10, cfg.Engine.MaxRelated)
	assert.Equal(t, 0.0, cfg.Viewport.HorizontalBias)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_InvalidFile(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("engine: [unclosed"), 0o600))
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config")
}

func TestValidate(t *testing.T) {
	require.NoError(t, validCfg().Validate())

	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"empty neo4j uri", func(c *Config) { c.Neo4j.URI = "" }, "neo4j.uri"},
		{"zero rate", func(c *Config) { c.TMDB.RequestsPerSecond = 0 }, "requests_per_second"},
		{"zero burst", func(c *Config) { c.TMDB.Burst = 0 }, "tmdb.burst"},
		{"empty client url", func(c *Config) { c.Client.BaseURL = "" }, "client.base_url"},
		{"zero min length", func(c *Config) { c.Engine.MinSuggestLength = 0 }, "min_suggest_length"},
		{"zero cap", func(c *Config) { c.Engine.MaxRelated = 0 }, "max_related"},
		{"zero link distance", func(c *Config) { c.Engine.LinkDistance = 0 }, "link_distance"},
		{"margin above one", func(c *Config) { c.Viewport.Margin = 1.5 }, "viewport.margin"},
		{"min above max", func(c *Config) { c.Viewport.MinZoom = 10 }, "min_zoom"},
		{"neutral out of range", func(c *Config) { c.Viewport.NeutralZoom = 100 }, "neutral_zoom"},
		{"zero concurrency", func(c *Config) { c.Seed.Concurrency = 0 }, "seed.concurrency"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validCfg()
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestSecretsMasked(t *testing.T) {
	tm := TMDBConfig{APIKey: "abcd1234efgh5678"}
	assert.NotContains(t, tm.String(), "1234efgh")
	assert.Contains(t, tm.String(), "abcd****5678")

	n := Neo4jConfig{Password: "short"}
	assert.Contains(t, n.String(), "***")
	assert.NotContains(t, n.String(), "short")
}
