package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/ajitpratap0/castgraph/internal/viewport"
)

const (
	// DefaultDebounce is the quiet period before a suggestion request is sent.
	DefaultDebounce = 300 * time.Millisecond

	// DefaultSpinnerDelay is how long a suggestion request runs before the
	// spinner shows.
	DefaultSpinnerDelay = 100 * time.Millisecond

	// DefaultMaxRelated is the related-node cap of a graph view.
	DefaultMaxRelated = 29
)

// Config holds all configuration for castgraph.
type Config struct {
	Neo4j    Neo4jConfig     `mapstructure:"neo4j"`
	TMDB     TMDBConfig      `mapstructure:"tmdb"`
	API      APIConfig       `mapstructure:"api"`
	Client   ClientConfig    `mapstructure:"client"`
	Engine   EngineConfig    `mapstructure:"engine"`
	Viewport viewport.Config `mapstructure:"viewport"`
	Seed     SeedConfig      `mapstructure:"seed"`
	Logging  LoggingConfig   `mapstructure:"logging"`
}

// Neo4jConfig holds graph database connection settings.
type Neo4jConfig struct {
	URI      string `mapstructure:"uri"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
}

// String returns a safe representation of Neo4jConfig with the password masked.
func (c Neo4jConfig) String() string {
	return fmt.Sprintf("Neo4jConfig{URI:%s, Username:%s, Password:%s, Database:%s}", c.URI, c.Username, maskAPIKey(c.Password), c.Database)
}

// TMDBConfig holds The Movie Database enrichment settings.
type TMDBConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	ImageBaseURL      string        `mapstructure:"image_base_url"`
	APIKey            string        `mapstructure:"api_key"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
	Timeout           time.Duration `mapstructure:"timeout"`
}

// String returns a safe representation of TMDBConfig with the API key masked.
func (c TMDBConfig) String() string {
	return fmt.Sprintf("TMDBConfig{BaseURL:%s, APIKey:%s, RequestsPerSecond:%g}", c.BaseURL, maskAPIKey(c.APIKey), c.RequestsPerSecond)
}

// maskAPIKey shows first 4 + last 4 chars, replacing the middle with asterisks.
func maskAPIKey(key string) string {
	const visible = 4
	if len(key) <= visible*2 {
		return "***"
	}
	return key[:visible] + "****" + key[len(key)-visible:]
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	ListenAddr string `mapstructure:"listen_addr"`
	AuthToken  string `mapstructure:"auth_token"`
}

// ClientConfig holds the settings the engine uses to reach the API.
type ClientConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	AuthToken string        `mapstructure:"auth_token"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// EngineConfig holds exploration engine tuning.
type EngineConfig struct {
	Debounce         time.Duration `mapstructure:"debounce"`
	SpinnerDelay     time.Duration `mapstructure:"spinner_delay"`
	MinSuggestLength int           `mapstructure:"min_suggest_length"`
	SuggestLimit     int           `mapstructure:"suggest_limit"`
	MaxRelated       int           `mapstructure:"max_related"`
	LinkDistance     float64       `mapstructure:"link_distance"`
}

// SeedConfig holds bulk seeding settings. An empty Names list uses the
// built-in list of well-known actors.
type SeedConfig struct {
	Concurrency int      `mapstructure:"concurrency"`
	Names       []string `mapstructure:"names"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables.
func Load() (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("neo4j.uri", "neo4j://localhost:7687")
	v.SetDefault("neo4j.username", "neo4j")
	v.SetDefault("neo4j.database", "")

	v.SetDefault("tmdb.base_url", "https://api.themoviedb.org/3")
	v.SetDefault("tmdb.image_base_url", "https://image.tmdb.org/t/p/w500")
	v.SetDefault("tmdb.requests_per_second", 20.0)
	v.SetDefault("tmdb.burst", 5)
	v.SetDefault("tmdb.timeout", 10*time.Second)

	v.SetDefault("api.listen_addr", ":10000")
	v.SetDefault("api.auth_token", "")

	v.SetDefault("client.base_url", "http://localhost:10000")
	v.SetDefault("client.timeout", 15*time.Second)

	v.SetDefault("engine.debounce", DefaultDebounce)
	v.SetDefault("engine.spinner_delay", DefaultSpinnerDelay)
	v.SetDefault("engine.min_suggest_length", 2)
	v.SetDefault("engine.suggest_limit", 5)
	v.SetDefault("engine.max_related", DefaultMaxRelated)
	v.SetDefault("engine.link_distance", 100.0)

	vp := viewport.DefaultConfig()
	v.SetDefault("viewport.horizontal_bias", vp.HorizontalBias)
	v.SetDefault("viewport.margin", vp.Margin)
	v.SetDefault("viewport.neutral_zoom", vp.NeutralZoom)
	v.SetDefault("viewport.min_zoom", vp.MinZoom)
	v.SetDefault("viewport.max_zoom", vp.MaxZoom)
	v.SetDefault("viewport.animation", vp.Animation)

	v.SetDefault("seed.concurrency", 4)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(filepath.Join(homeDir(), ".castgraph"))
	v.AddConfigPath(".")

	// Environment variables
	v.SetEnvPrefix("CASTGRAPH")
	v.AutomaticEnv()

	// Map specific env vars
	_ = v.BindEnv("tmdb.api_key", "TMDB_API_KEY")
	_ = v.BindEnv("neo4j.password", "NEO4J_PASSWORD")
	_ = v.BindEnv("neo4j.uri", "CASTGRAPH_NEO4J_URI")
	_ = v.BindEnv("api.listen_addr", "CASTGRAPH_API_LISTEN_ADDR")
	_ = v.BindEnv("api.auth_token", "CASTGRAPH_API_AUTH_TOKEN")
	_ = v.BindEnv("client.base_url", "CASTGRAPH_CLIENT_BASE_URL")
	_ = v.BindEnv("client.auth_token", "CASTGRAPH_API_AUTH_TOKEN")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		// Config file not found is OK: use defaults + env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are set and consistent.
// The TMDB API key is not required here; registration fails without it.
func (c *Config) Validate() error {
	if c.Neo4j.URI == "" {
		return fmt.Errorf("neo4j.uri must not be empty")
	}
	if c.TMDB.BaseURL == "" {
		return fmt.Errorf("tmdb.base_url must not be empty")
	}
	if c.TMDB.RequestsPerSecond <= 0 {
		return fmt.Errorf("tmdb.requests_per_second must be greater than 0")
	}
	if c.TMDB.Burst <= 0 {
		return fmt.Errorf("tmdb.burst must be greater than 0")
	}
	if c.Client.BaseURL == "" {
		return fmt.Errorf("client.base_url must not be empty")
	}
	if c.Engine.Debounce < 0 {
		return fmt.Errorf("engine.debounce must be >= 0")
	}
	if c.Engine.MinSuggestLength < 1 {
		return fmt.Errorf("engine.min_suggest_length must be at least 1")
	}
	if c.Engine.SuggestLimit < 1 {
		return fmt.Errorf("engine.suggest_limit must be at least 1")
	}
	if c.Engine.MaxRelated < 1 {
		return fmt.Errorf("engine.max_related must be at least 1")
	}
	if c.Engine.LinkDistance <= 0 {
		return fmt.Errorf("engine.link_distance must be greater than 0")
	}
	if c.Viewport.Margin <= 0 || c.Viewport.Margin > 1 {
		return fmt.Errorf("viewport.margin must be in (0, 1]")
	}
	if c.Viewport.MinZoom <= 0 || c.Viewport.MinZoom > c.Viewport.MaxZoom {
		return fmt.Errorf("viewport.min_zoom (%g) must be positive and not exceed viewport.max_zoom (%g)", c.Viewport.MinZoom, c.Viewport.MaxZoom)
	}
	if c.Viewport.NeutralZoom < c.Viewport.MinZoom || c.Viewport.NeutralZoom > c.Viewport.MaxZoom {
		return fmt.Errorf("viewport.neutral_zoom must be within [min_zoom, max_zoom]")
	}
	if c.Seed.Concurrency < 1 {
		return fmt.Errorf("seed.concurrency must be at least 1")
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}
	return nil
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
