// Package markdown renders article sources to HTML with syntax-highlighted
// code blocks.
//
// Rendering never fails: malformed input degrades to escaped text rather
// than an error, so callers can always place the result on a page.
package markdown

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"log/slog"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/barelyfunctional/site/internal/metrics"
)

// DefaultStyle is the chroma style used when none is configured.
const DefaultStyle = "monokai"

// Options configures a Renderer.
type Options struct {
	// Style is a chroma style name, e.g. "monokai" or "github".
	Style string
	// Sanitize runs the rendered HTML through a bluemonday policy. Article
	// sources are author-controlled, so this is off unless configured.
	Sanitize bool
	Logger   *slog.Logger
}

// Renderer converts Markdown to HTML.
type Renderer struct {
	md        goldmark.Markdown
	style     string
	sanitizer *Sanitizer
	logger    *slog.Logger
}

// New builds a Renderer. It returns an error only for an unknown style.
func New(opts Options) (*Renderer, error) {
	style := opts.Style
	if style == "" {
		style = DefaultStyle
	}
	if _, ok := styles.Registry[style]; !ok {
		return nil, fmt.Errorf("unknown highlight style %q", style)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle(style),
				highlighting.WithGuessLanguage(true),
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true),
				),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			gmhtml.WithUnsafe(),
		),
	)

	r := &Renderer{md: md, style: style, logger: logger}
	if opts.Sanitize {
		r.sanitizer = NewSanitizer()
	}
	return r, nil
}

// Style returns the chroma style name in use.
func (r *Renderer) Style() string { return r.style }

// Render converts src to HTML.
func (r *Renderer) Render(src []byte) (out string) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("markdown: render panicked", "panic", p)
			metrics.RenderFallbacks.Inc()
			out = fallbackHTML(src)
		}
	}()

	var buf bytes.Buffer
	if err := r.md.Convert(src, &buf); err != nil {
		r.logger.Warn("markdown: conversion failed, emitting plain text", "error", err)
		metrics.RenderFallbacks.Inc()
		return fallbackHTML(src)
	}

	if r.sanitizer != nil {
		return r.sanitizer.Sanitize(buf.String())
	}
	return buf.String()
}

// WriteCSS writes the stylesheet for the renderer's highlight classes.
func (r *Renderer) WriteCSS(w io.Writer) error {
	formatter := chromahtml.New(chromahtml.WithClasses(true))
	return formatter.WriteCSS(w, styles.Get(r.style))
}

// fallbackHTML emits the whole source as escaped preformatted text.
func fallbackHTML(src []byte) string {
	return "<pre>" + html.EscapeString(string(src)) + "</pre>\n"
}
