package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
)

// DefaultPath is where the wizard writes the configuration.
const DefaultPath = ".blog.yml"

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to path.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Let's configure your blog.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Site title.
	titlePrompt := promptui.Prompt{
		Label:   "Site title",
		Default: cfg.Site.Title,
	}
	title, err := titlePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("site title: %w", err)
	}
	cfg.Site.Title = strings.TrimSpace(title)

	// 2. Content directory.
	contentPrompt := promptui.Prompt{
		Label:   "Content directory (leave blank for the bundled articles)",
		Default: detectContentDir(),
	}
	contentDir, err := contentPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("content dir: %w", err)
	}
	cfg.Content.Dir = strings.TrimSpace(contentDir)

	// 3. Include patterns.
	includePrompt := promptui.Prompt{
		Label:   "Article patterns (comma-separated globs)",
		Default: strings.Join(DefaultInclude, ","),
	}
	includeStr, err := includePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("include patterns: %w", err)
	}
	if include := splitAndTrim(includeStr); len(include) > 0 {
		cfg.Content.Include = include
	}

	// 4. Counter backend.
	backendPrompt := promptui.Select{
		Label: "Where should the click counter be stored?",
		Items: []string{
			"sqlite: local file",
			"postgres: DATABASE_URL style DSN",
			"none: disable the counter service",
		},
	}
	backendIdx, _, err := backendPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("counter backend: %w", err)
	}
	backends := []CounterBackend{BackendSQLite, BackendPostgres, BackendNone}
	cfg.Counter.Backend = backends[backendIdx]

	if cfg.Counter.Backend == BackendPostgres {
		dsnPrompt := promptui.Prompt{
			Label:   "Postgres DSN",
			Default: os.Getenv("DATABASE_URL"),
		}
		dsn, err := dsnPrompt.Run()
		if err != nil {
			return nil, fmt.Errorf("postgres dsn: %w", err)
		}
		cfg.Counter.PostgresDSN = strings.TrimSpace(dsn)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}

// detectContentDir suggests ./content when it looks like an article tree.
func detectContentDir() string {
	if info, err := os.Stat("content/posts"); err == nil && info.IsDir() {
		return "content"
	}
	return ""
}

// splitAndTrim splits a comma-separated string and trims whitespace.
func splitAndTrim(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if token := strings.TrimSpace(part); token != "" {
			result = append(result, token)
		}
	}
	return result
}
