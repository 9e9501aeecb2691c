package articles

import (
	"bytes"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	"github.com/goliatone/go-slug"
)

// Article is one Markdown source addressable by its slug.
type Article struct {
	Slug    string
	Path    string // path inside the content filesystem
	Title   string
	Summary string
	Topic   string
	Date    time.Time
	Recent  bool
	Weight  int
	Source  []byte // Markdown body, front matter removed
}

// frontMatter is the optional YAML header of an article file.
type frontMatter struct {
	Title   string    `yaml:"title"`
	Slug    string    `yaml:"slug"`
	Summary string    `yaml:"summary"`
	Topic   string    `yaml:"topic"`
	Date    time.Time `yaml:"date"`
	Recent  bool      `yaml:"recent"`
	Weight  int       `yaml:"weight"`
}

// Parse builds an Article from a file's path and raw contents.
func Parse(filePath string, raw []byte) (*Article, error) {
	var meta frontMatter
	body, err := frontmatter.Parse(bytes.NewReader(raw), &meta)
	if err != nil {
		return nil, fmt.Errorf("parsing front matter of %s: %w", filePath, err)
	}

	name := meta.Slug
	if name == "" {
		name = strings.TrimSuffix(path.Base(filePath), path.Ext(filePath))
	}
	s, err := slug.Normalize(name)
	if err != nil || s == "" {
		return nil, fmt.Errorf("%w: %q (%s)", ErrInvalidSlug, name, filePath)
	}

	title := meta.Title
	if title == "" {
		title = extractTitle(body, s)
	}

	return &Article{
		Slug:    s,
		Path:    filePath,
		Title:   title,
		Summary: meta.Summary,
		Topic:   meta.Topic,
		Date:    meta.Date,
		Recent:  meta.Recent,
		Weight:  meta.Weight,
		Source:  body,
	}, nil
}

// extractTitle pulls the first # heading from markdown content, or falls back to the slug.
func extractTitle(content []byte, fallback string) string {
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "# "))
		}
	}
	return fallback
}
