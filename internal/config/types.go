package config

// CounterBackend selects where the click counter is persisted.
type CounterBackend string

const (
	BackendSQLite   CounterBackend = "sqlite"
	BackendPostgres CounterBackend = "postgres"
	BackendNone     CounterBackend = "none"
)

// Config is the top-level blog configuration, corresponding to .blog.yml.
type Config struct {
	Site     SiteConfig     `yaml:"site" koanf:"site"`
	Server   ServerConfig   `yaml:"server" koanf:"server"`
	Content  ContentConfig  `yaml:"content" koanf:"content"`
	Markdown MarkdownConfig `yaml:"markdown" koanf:"markdown"`
	Counter  CounterConfig  `yaml:"counter" koanf:"counter"`
}

// SiteConfig holds the navigation shell settings.
type SiteConfig struct {
	Title     string `yaml:"title" koanf:"title"`
	Tagline   string `yaml:"tagline" koanf:"tagline"`
	GithubURL string `yaml:"github_url" koanf:"github_url"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port           int      `yaml:"port" koanf:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" koanf:"allowed_origins"`
	TrustProxy     bool     `yaml:"trust_proxy" koanf:"trust_proxy"`
}

// ContentConfig controls where articles are loaded from. An empty Dir means
// the articles bundled into the binary.
type ContentConfig struct {
	Dir     string   `yaml:"dir" koanf:"dir"`
	Include []string `yaml:"include" koanf:"include"`
}

// MarkdownConfig controls article rendering.
type MarkdownConfig struct {
	Style    string `yaml:"style" koanf:"style"`
	Sanitize bool   `yaml:"sanitize" koanf:"sanitize"`
}

// CounterConfig holds settings for both the counter service and the
// counter widget client.
type CounterConfig struct {
	Backend       CounterBackend `yaml:"backend" koanf:"backend"`
	SQLitePath    string         `yaml:"sqlite_path" koanf:"sqlite_path"`
	PostgresDSN   string         `yaml:"postgres_dsn" koanf:"postgres_dsn"`
	RatePerSecond float64        `yaml:"rate_per_second" koanf:"rate_per_second"`
	Burst         int            `yaml:"burst" koanf:"burst"`
	RemoteURL     string         `yaml:"remote_url" koanf:"remote_url"`
}
