// Package site resolves request paths to pages and renders them inside the
// navigation shell.
//
// Articles come from an articles.Registry held behind an atomic pointer, so
// Reload can replace the whole content set while requests are in flight.
package site

import (
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"sync/atomic"

	"gopkg.in/yaml.v3"

	"github.com/barelyfunctional/site/internal/articles"
	"github.com/barelyfunctional/site/internal/config"
	"github.com/barelyfunctional/site/internal/markdown"
	"github.com/barelyfunctional/site/internal/metrics"
)

// Options configures a Site.
type Options struct {
	Config   config.SiteConfig
	Renderer *markdown.Renderer
	// Content holds posts matched by Include, pages/*.md and an optional
	// topics.yml with archive descriptions.
	Content fs.FS
	Include []string
	// LiveReload injects the reload script into served pages and enables
	// the /livereload endpoint.
	LiveReload bool
	Logger     *slog.Logger
}

// contentSet is everything loaded from the content filesystem in one pass.
type contentSet struct {
	registry *articles.Registry
	pages    map[string]*articles.Article
	topics   map[string]string
}

// Site serves the blog.
type Site struct {
	cfg      config.SiteConfig
	renderer *markdown.Renderer
	fsys     fs.FS
	include  []string
	logger   *slog.Logger
	tmpl     *template.Template
	hub      *LiveReload

	current atomic.Pointer[contentSet]
}

// New loads the content and builds a Site. Content errors such as duplicate
// slugs are returned here; a site never starts with a broken registry.
func New(opts Options) (*Site, error) {
	if opts.Renderer == nil {
		return nil, errors.New("site: renderer is required")
	}
	if opts.Content == nil {
		return nil, errors.New("site: content filesystem is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	include := opts.Include
	if len(include) == 0 {
		include = config.DefaultInclude
	}

	tmpl, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	s := &Site{
		cfg:      opts.Config,
		renderer: opts.Renderer,
		fsys:     opts.Content,
		include:  include,
		logger:   logger,
		tmpl:     tmpl,
	}
	if opts.LiveReload {
		s.hub = NewLiveReload(logger)
	}

	c, err := s.load()
	if err != nil {
		return nil, err
	}
	s.current.Store(c)
	return s, nil
}

// Registry returns the article registry currently being served.
func (s *Site) Registry() *articles.Registry {
	return s.current.Load().registry
}

// LiveReload returns the reload hub, or nil when live reload is disabled.
func (s *Site) LiveReload() *LiveReload { return s.hub }

// Reload re-reads the content filesystem. On failure the previous content
// keeps being served and the error is returned. On success connected
// live-reload clients are told to refresh.
func (s *Site) Reload() error {
	c, err := s.load()
	if err != nil {
		metrics.RegistryReloads.WithLabelValues("error").Inc()
		s.logger.Error("site: reload failed, keeping previous content", "error", err)
		return err
	}
	s.current.Store(c)
	metrics.RegistryReloads.WithLabelValues("ok").Inc()
	s.logger.Info("site: content reloaded", "articles", c.registry.Len())

	if s.hub != nil {
		s.hub.Broadcast()
	}
	return nil
}

func (s *Site) load() (*contentSet, error) {
	reg, err := articles.Load(s.fsys, s.include)
	if err != nil {
		return nil, fmt.Errorf("loading articles: %w", err)
	}

	pages := make(map[string]*articles.Article)
	for _, name := range pageNames {
		raw, err := fs.ReadFile(s.fsys, "pages/"+name+".md")
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading page %s: %w", name, err)
		}
		p, err := articles.Parse("pages/"+name+".md", raw)
		if err != nil {
			return nil, err
		}
		pages[name] = p
	}

	topics, err := loadTopics(s.fsys)
	if err != nil {
		return nil, err
	}

	return &contentSet{registry: reg, pages: pages, topics: topics}, nil
}

// pageNames are the shell pages whose prose lives in pages/<name>.md.
var pageNames = []string{"home", "about", "contact", "resume"}

// loadTopics reads topics.yml, a map of topic name to archive description.
// The file is optional.
func loadTopics(fsys fs.FS) (map[string]string, error) {
	raw, err := fs.ReadFile(fsys, "topics.yml")
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading topics.yml: %w", err)
	}
	topics := make(map[string]string)
	if err := yaml.Unmarshal(raw, &topics); err != nil {
		return nil, fmt.Errorf("parsing topics.yml: %w", err)
	}
	return topics, nil
}
