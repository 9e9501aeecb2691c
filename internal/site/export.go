package site

import (
	"bytes"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/barelyfunctional/site/internal/progress"
)

// ExportOptions configures a static export.
type ExportOptions struct {
	OutputDir string
	// CounterURL is where the exported count page sends its requests,
	// since the export is not served by the counter service itself.
	CounterURL string
}

// Export writes every route to <OutputDir>/<route>/index.html, plus
// 404.html and the stylesheets under static/. It returns the number of
// pages written. A nil reporter is allowed.
func (s *Site) Export(opts ExportOptions, reporter progress.Reporter) (n int, err error) {
	if opts.OutputDir == "" {
		return 0, fmt.Errorf("export: output directory is required")
	}
	if reporter == nil {
		reporter = progress.NewLog(s.logger)
	}
	if err := os.MkdirAll(filepath.Join(opts.OutputDir, "static"), 0o755); err != nil {
		return 0, err
	}
	if err := s.exportAssets(opts.OutputDir); err != nil {
		return 0, err
	}

	render := renderOptions{counterURL: strings.TrimRight(opts.CounterURL, "/")}
	routes := s.Routes()

	reporter.Begin(len(routes) + 1)
	defer func() { reporter.End(err) }()

	for _, route := range routes {
		file := routeFile(route)
		size, err := s.exportPage(opts.OutputDir, file, s.Resolve(route), render)
		if err != nil {
			return n, fmt.Errorf("exporting %s: %w", route, err)
		}
		n++
		reporter.Wrote(route, file, size)
	}

	size, err := s.exportPage(opts.OutputDir, "404.html", s.notFound("/404"), render)
	if err != nil {
		return n, fmt.Errorf("exporting 404 page: %w", err)
	}
	n++
	reporter.Wrote("404", "404.html", size)

	return n, nil
}

// routeFile maps "/" to index.html and "/x" to x/index.html, relative to
// the output directory.
func routeFile(route string) string {
	return path.Join(strings.Trim(route, "/"), "index.html")
}

func (s *Site) exportPage(outDir, file string, page Page, opts renderOptions) (int, error) {
	var buf bytes.Buffer
	if err := s.writePage(&buf, page, opts); err != nil {
		return 0, err
	}
	outPath := filepath.Join(outDir, filepath.FromSlash(file))
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return 0, err
	}
	return buf.Len(), os.WriteFile(outPath, buf.Bytes(), 0o644)
}

func (s *Site) exportAssets(outDir string) error {
	if err := os.WriteFile(filepath.Join(outDir, "static", "site.css"), []byte(siteCSS), 0o644); err != nil {
		return err
	}
	var css bytes.Buffer
	if err := s.renderer.WriteCSS(&css); err != nil {
		return fmt.Errorf("writing highlight css: %w", err)
	}
	return os.WriteFile(filepath.Join(outDir, "static", "highlight.css"), css.Bytes(), 0o644)
}
