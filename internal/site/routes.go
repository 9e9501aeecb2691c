package site

import (
	"bytes"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/barelyfunctional/site/internal/metrics"
)

// RegisterRoutes mounts the static assets, the live-reload socket when
// enabled, and a catch-all page handler. Register API routes such as /count
// on the same router; chi prefers them over the catch-all.
func (s *Site) RegisterRoutes(r chi.Router) {
	r.Get("/static/site.css", handleSiteCSS)
	r.Get("/static/highlight.css", s.handleHighlightCSS)
	if s.hub != nil {
		r.Get("/livereload", s.hub.ServeHTTP)
	}
	r.Get("/", s.handlePage)
	r.Get("/*", s.handlePage)
	r.NotFound(s.handlePage)
}

func (s *Site) handlePage(w http.ResponseWriter, r *http.Request) {
	page := s.Resolve(r.URL.Path)
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		page = s.notFound(page.Route)
	}

	var buf bytes.Buffer
	if err := s.WritePage(&buf, page); err != nil {
		s.logger.Error("site: rendering page", "route", page.Route, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	metrics.PageRenders.WithLabelValues(page.Kind).Inc()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(page.Status)
	w.Write(buf.Bytes())
}

func handleSiteCSS(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Write([]byte(siteCSS))
}

func (s *Site) handleHighlightCSS(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := s.renderer.WriteCSS(&buf); err != nil {
		s.logger.Error("site: writing highlight css", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Write(buf.Bytes())
}
