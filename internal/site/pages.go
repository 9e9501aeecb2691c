package site

import (
	"html/template"
	"net/http"
	"strings"

	"github.com/barelyfunctional/site/internal/articles"
	"github.com/barelyfunctional/site/internal/widget"
)

// Page kinds, also used as the metrics label.
const (
	KindHome     = "home"
	KindPage     = "page"
	KindArchive  = "archive"
	KindCount    = "count"
	KindArticle  = "article"
	KindNotFound = "not_found"
)

// Page is a resolved route, ready to be placed in the shell.
type Page struct {
	Route  string
	Kind   string
	Title  string
	Status int
	// Active is the route of the nav item to highlight, if any.
	Active string
	Body   template.HTML

	Article *articles.Article
	Recent  []*articles.Article
	Topics  []ArchiveTopic
	Counter template.HTML
}

// ArchiveTopic is one section of the archive page.
type ArchiveTopic struct {
	Name        string
	Description string
	Articles    []*articles.Article
}

// NavItem is one link in the navigation shell.
type NavItem struct {
	Label    string
	Href     string
	Icon     string
	External bool
}

func (s *Site) navItems() []NavItem {
	items := []NavItem{
		{Label: "About", Href: "/about", Icon: "user"},
		{Label: "Archive", Href: "/archive", Icon: "pencil"},
		{Label: "Contact", Href: "/contact", Icon: "envelope"},
		{Label: "Resume", Href: "/resume", Icon: "list"},
		{Label: "Count", Href: "/counting", Icon: "plus"},
	}
	if s.cfg.GithubURL != "" {
		items = append(items, NavItem{Label: "Github", Href: s.cfg.GithubURL, Icon: "console", External: true})
	}
	return items
}

// normalizePath strips trailing slashes; the empty path is the home page.
func normalizePath(p string) string {
	p = strings.TrimRight(p, "/")
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

// Resolve maps a request path to a page. Every registered slug resolves to
// its article; anything else that is not a shell route is not found.
func (s *Site) Resolve(path string) Page {
	c := s.current.Load()
	route := normalizePath(path)

	switch route {
	case "/":
		return Page{
			Route:  route,
			Kind:   KindHome,
			Title:  s.cfg.Title,
			Status: http.StatusOK,
			Body:   s.renderPage(c, "home"),
			Recent: c.registry.Recent(),
		}
	case "/about", "/contact", "/resume":
		name := route[1:]
		return Page{
			Route:  route,
			Kind:   KindPage,
			Title:  s.pageTitle(c, name),
			Status: http.StatusOK,
			Active: route,
			Body:   s.renderPage(c, name),
		}
	case "/archive":
		return Page{
			Route:  route,
			Kind:   KindArchive,
			Title:  "Archive",
			Status: http.StatusOK,
			Active: route,
			Topics: archiveTopics(c),
		}
	case "/counting":
		return Page{
			Route:   route,
			Kind:    KindCount,
			Title:   "Count",
			Status:  http.StatusOK,
			Active:  route,
			Counter: widget.RenderSnapshot(widget.Snapshot{State: widget.Idle}),
		}
	}

	slug := route[1:]
	if !strings.Contains(slug, "/") {
		if a, ok := c.registry.Lookup(slug); ok {
			return Page{
				Route:   route,
				Kind:    KindArticle,
				Title:   a.Title,
				Status:  http.StatusOK,
				Article: a,
				Body:    template.HTML(s.renderer.Render(a.Source)),
			}
		}
	}
	return s.notFound(route)
}

func (s *Site) notFound(route string) Page {
	return Page{
		Route:  route,
		Kind:   KindNotFound,
		Title:  "Not Found",
		Status: http.StatusNotFound,
	}
}

// Routes lists every path that resolves to a page, shell pages first and
// then articles newest first.
func (s *Site) Routes() []string {
	routes := []string{"/", "/about", "/archive", "/contact", "/resume", "/counting"}
	for _, a := range s.Registry().All() {
		routes = append(routes, "/"+a.Slug)
	}
	return routes
}

func (s *Site) renderPage(c *contentSet, name string) template.HTML {
	p, ok := c.pages[name]
	if !ok {
		return ""
	}
	return template.HTML(s.renderer.Render(p.Source))
}

func (s *Site) pageTitle(c *contentSet, name string) string {
	if p, ok := c.pages[name]; ok && p.Title != name {
		return p.Title
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

func archiveTopics(c *contentSet) []ArchiveTopic {
	groups := c.registry.Topics()
	out := make([]ArchiveTopic, 0, len(groups))
	for _, g := range groups {
		out = append(out, ArchiveTopic{
			Name:        g.Name,
			Description: c.topics[g.Name],
			Articles:    g.Articles,
		})
	}
	return out
}
