package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/chroma/v2/styles"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix for environment overrides. Nested keys are
// separated by a double underscore: BLOG_COUNTER__BACKEND -> counter.backend.
const EnvPrefix = "BLOG_"

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (BLOG_*). Variables from a .env file in
// the working directory are loaded first and never override the real
// environment.
func Load(path string) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// envKey maps BLOG_SERVER__PORT to server.port.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(key, "__", ".")
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// validBackends is the set of recognized counter backends.
var validBackends = map[CounterBackend]bool{
	BackendSQLite:   true,
	BackendPostgres: true,
	BackendNone:     true,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.Site.Title == "" {
		return fmt.Errorf("site.title is required")
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d", c.Server.Port)
	}

	if c.Markdown.Style == "" {
		return fmt.Errorf("markdown.style is required")
	}
	if _, ok := styles.Registry[c.Markdown.Style]; !ok {
		return fmt.Errorf("unknown markdown.style %q", c.Markdown.Style)
	}

	if !validBackends[c.Counter.Backend] {
		return fmt.Errorf("invalid counter.backend %q: must be one of sqlite, postgres, none", c.Counter.Backend)
	}
	switch c.Counter.Backend {
	case BackendSQLite:
		if c.Counter.SQLitePath == "" {
			return fmt.Errorf("counter.sqlite_path is required for the sqlite backend")
		}
	case BackendPostgres:
		if c.Counter.PostgresDSN == "" {
			return fmt.Errorf("counter.postgres_dsn is required for the postgres backend")
		}
	}

	if c.Counter.RatePerSecond < 0 {
		return fmt.Errorf("counter.rate_per_second must be non-negative")
	}
	if c.Counter.RatePerSecond > 0 && c.Counter.Burst < 1 {
		return fmt.Errorf("counter.burst must be at least 1 when rate limiting is enabled")
	}

	return nil
}
