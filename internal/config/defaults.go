package config

// DefaultInclude is the content glob used when none is configured.
var DefaultInclude = []string{"posts/**/*.md"}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Site: SiteConfig{
			Title:     "Barely Functional",
			Tagline:   "Thoughts and musings from a functional programmer who drinks too much coffee.",
			GithubURL: "https://github.com/barelyfunctional",
		},
		Server: ServerConfig{
			Port:           3000,
			AllowedOrigins: []string{"http://localhost:*", "http://127.0.0.1:*"},
		},
		Content: ContentConfig{
			Include: DefaultInclude,
		},
		Markdown: MarkdownConfig{
			Style: "monokai",
		},
		Counter: CounterConfig{
			Backend:       BackendSQLite,
			SQLitePath:    "data/blog.db",
			RatePerSecond: 2,
			Burst:         5,
			RemoteURL:     "http://localhost:3000",
		},
	}
}
