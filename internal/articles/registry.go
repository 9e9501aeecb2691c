// Package articles holds the fixed mapping from route slug to Markdown
// source. A Registry is immutable once built; reloading content produces a
// new Registry.
package articles

import (
	"errors"
	"fmt"
	"io/fs"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

var (
	// ErrDuplicateSlug is returned when two sources resolve to one slug.
	ErrDuplicateSlug = errors.New("duplicate article slug")
	// ErrReservedSlug is returned when an article would shadow a site route.
	ErrReservedSlug = errors.New("article slug is reserved")
	// ErrInvalidSlug is returned when a file name cannot form a slug.
	ErrInvalidSlug = errors.New("invalid article slug")
)

// Reserved lists the slugs owned by the navigation shell and server.
var Reserved = map[string]bool{
	"about":      true,
	"archive":    true,
	"contact":    true,
	"resume":     true,
	"counting":   true,
	"count":      true,
	"static":     true,
	"metrics":    true,
	"healthz":    true,
	"livereload": true,
}

// Topic groups articles for the archive page.
type Topic struct {
	Name     string
	Articles []*Article
}

// Registry maps slugs to articles.
type Registry struct {
	bySlug  map[string]*Article
	ordered []*Article // newest first
}

// Load reads every file in fsys matching one of patterns.
func Load(fsys fs.FS, patterns []string) (*Registry, error) {
	seen := make(map[string]bool)
	var paths []string
	for _, pattern := range patterns {
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("matching %q: %w", pattern, err)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				paths = append(paths, m)
			}
		}
	}
	sort.Strings(paths)

	list := make([]*Article, 0, len(paths))
	for _, p := range paths {
		raw, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}
		a, err := Parse(p, raw)
		if err != nil {
			return nil, err
		}
		list = append(list, a)
	}

	return New(list...)
}

// New builds a Registry from already parsed articles.
func New(list ...*Article) (*Registry, error) {
	r := &Registry{bySlug: make(map[string]*Article, len(list))}
	for _, a := range list {
		if Reserved[a.Slug] {
			return nil, fmt.Errorf("%w: %q (%s)", ErrReservedSlug, a.Slug, a.Path)
		}
		if prev, ok := r.bySlug[a.Slug]; ok {
			return nil, fmt.Errorf("%w: %q (%s and %s)", ErrDuplicateSlug, a.Slug, prev.Path, a.Path)
		}
		r.bySlug[a.Slug] = a
		r.ordered = append(r.ordered, a)
	}

	sort.SliceStable(r.ordered, func(i, j int) bool {
		if !r.ordered[i].Date.Equal(r.ordered[j].Date) {
			return r.ordered[i].Date.After(r.ordered[j].Date)
		}
		return r.ordered[i].Slug < r.ordered[j].Slug
	})
	return r, nil
}

// Lookup returns the article registered under slug.
func (r *Registry) Lookup(slug string) (*Article, bool) {
	a, ok := r.bySlug[slug]
	return a, ok
}

// Len returns the number of registered articles.
func (r *Registry) Len() int { return len(r.ordered) }

// All returns every article, newest first.
func (r *Registry) All() []*Article {
	out := make([]*Article, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// Recent returns the articles flagged for the home page, newest first.
func (r *Registry) Recent() []*Article {
	var out []*Article
	for _, a := range r.ordered {
		if a.Recent {
			out = append(out, a)
		}
	}
	return out
}

// Topics groups articles by topic for the archive. Topics appear in order
// of their newest article; within a topic, articles are ordered by weight
// and then oldest first so series read in sequence. Articles without a
// topic are grouped under "Other".
func (r *Registry) Topics() []Topic {
	index := make(map[string]int)
	var topics []Topic
	for _, a := range r.ordered {
		name := a.Topic
		if name == "" {
			name = "Other"
		}
		i, ok := index[name]
		if !ok {
			i = len(topics)
			index[name] = i
			topics = append(topics, Topic{Name: name})
		}
		topics[i].Articles = append(topics[i].Articles, a)
	}

	for _, t := range topics {
		sort.SliceStable(t.Articles, func(i, j int) bool {
			if t.Articles[i].Weight != t.Articles[j].Weight {
				return t.Articles[i].Weight < t.Articles[j].Weight
			}
			return t.Articles[i].Date.Before(t.Articles[j].Date)
		})
	}
	return topics
}
