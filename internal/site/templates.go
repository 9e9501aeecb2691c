package site

import (
	"fmt"
	"html/template"
	"io"
)

// shellData is passed to the layout template for every page.
type shellData struct {
	Title      string
	Tagline    string
	Nav        []NavItem
	Page       Page
	LiveReload bool
	// CounterURL is the counter service base URL for the count page; empty
	// means the page's own origin.
	CounterURL string
}

func parseTemplates() (*template.Template, error) {
	tmpl, err := template.New("layout").Parse(layoutTemplate)
	if err != nil {
		return nil, fmt.Errorf("parsing layout template: %w", err)
	}
	if _, err := tmpl.New("body").Parse(bodyTemplates); err != nil {
		return nil, fmt.Errorf("parsing page templates: %w", err)
	}
	return tmpl, nil
}

// renderOptions vary between served and exported pages.
type renderOptions struct {
	liveReload bool
	counterURL string
}

// WritePage renders p inside the navigation shell.
func (s *Site) WritePage(w io.Writer, p Page) error {
	return s.writePage(w, p, renderOptions{liveReload: s.hub != nil})
}

func (s *Site) writePage(w io.Writer, p Page, opts renderOptions) error {
	return s.tmpl.ExecuteTemplate(w, "layout", shellData{
		Title:      s.cfg.Title,
		Tagline:    s.cfg.Tagline,
		Nav:        s.navItems(),
		Page:       p,
		LiveReload: opts.liveReload,
		CounterURL: opts.counterURL,
	})
}

const layoutTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{if eq .Page.Kind "home"}}{{.Title}}{{else}}{{.Page.Title}} | {{.Title}}{{end}}</title>
  <link rel="stylesheet" href="/static/site.css">
  <link rel="stylesheet" href="/static/highlight.css">
</head>
<body>
  <nav class="navbar">
    <div class="navbar-inner">
      <a href="/" class="navbar-brand">{{.Title}}</a>
      <ul class="nav">
        {{- $active := .Page.Active}}
        {{- range .Nav}}
        <li{{if eq .Href $active}} class="active"{{end}}><a href="{{.Href}}" class="icon icon-{{.Icon}}"{{if .External}} rel="noopener"{{end}}>{{.Label}}</a></li>
        {{- end}}
      </ul>
    </div>
  </nav>
  <main class="container">
    {{template "page" .}}
  </main>
  {{- if .LiveReload}}
  <script>
  (function() {
    var proto = location.protocol === "https:" ? "wss://" : "ws://";
    var ws = new WebSocket(proto + location.host + "/livereload");
    ws.onmessage = function(ev) {
      var msg = JSON.parse(ev.data);
      if (msg.type === "reload") { location.reload(); }
    };
  })();
  </script>
  {{- end}}
</body>
</html>
`

const bodyTemplates = `
{{define "page"}}
{{- if eq .Page.Kind "home"}}{{template "home" .}}
{{- else if eq .Page.Kind "archive"}}{{template "archive" .}}
{{- else if eq .Page.Kind "count"}}{{template "count" .}}
{{- else if eq .Page.Kind "not_found"}}{{template "not_found" .}}
{{- else}}<article class="{{.Page.Kind}}">
{{.Page.Body}}
</article>{{end}}
{{- end}}

{{define "home"}}
<p class="tagline">{{.Tagline}}</p>
{{.Page.Body}}
{{- if .Page.Recent}}
<div class="recent">
  <h2>Recent Articles</h2>
  <ul>
    {{- range .Page.Recent}}
    <li><a href="/{{.Slug}}">{{.Title}}</a></li>
    {{- end}}
  </ul>
</div>
{{- end}}
{{end}}

{{define "archive"}}
<h1>Archive</h1>
<p>You'll find collections of articles here, grouped together by topic.</p>
{{- range .Page.Topics}}
<section class="topic">
  <h2>{{.Name}}</h2>
  {{- with .Description}}
  <p>{{.}}</p>
  {{- end}}
  <ul>
    {{- range .Articles}}
    <li><a href="/{{.Slug}}">{{.Title}}</a>{{with .Summary}} <span class="summary">{{.}}</span>{{end}}</li>
    {{- end}}
  </ul>
</section>
{{- end}}
{{end}}

{{define "count"}}
{{.Page.Counter}}
<script>
(function() {
  var base = {{.CounterURL}};
  var countEl = document.getElementById("count");
  var button = document.getElementById("count-button");
  var applied = 0;

  function getJSON(res) {
    if (!res.ok) { throw new Error("counter service returned " + res.status); }
    return res.json();
  }

  var seen = applied;
  fetch(base + "/count")
    .then(getJSON)
    .then(function(data) {
      if (applied === seen) { countEl.textContent = data.count; applied++; }
    })
    .catch(function(err) { console.error(err); });

  button.addEventListener("click", function() {
    if (button.disabled) { return; }
    button.disabled = true;
    fetch(base + "/count/", {method: "PUT"})
      .then(getJSON)
      .then(function(data) { countEl.textContent = data.count; applied++; })
      .catch(function(err) { console.error(err); })
      .then(function() { button.disabled = false; });
  });
})();
</script>
{{end}}

{{define "not_found"}}
<h1>Not Found</h1>
<p>There is nothing at <code>{{.Page.Route}}</code>. Try the <a href="/archive">archive</a>.</p>
{{end}}
`

const siteCSS = `/* ============ Base ============ */
*, *::before, *::after {
  box-sizing: border-box;
}

body {
  margin: 0;
  color: #333;
  background: #fff;
}

a {
  color: #337ab7;
  text-decoration: none;
}

a:hover {
  text-decoration: underline;
}

/* ============ Navigation ============ */
.navbar {
  background: #f8f8f8;
  border-bottom: 1px solid #e7e7e7;
  font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, "Helvetica Neue", Arial, sans-serif;
}

.navbar-inner {
  display: flex;
  flex-wrap: wrap;
  align-items: center;
  padding: 0 15px;
}

.navbar-brand {
  font-size: 18px;
  padding: 15px 15px 15px 0;
  color: #777;
}

.nav {
  display: flex;
  flex-wrap: wrap;
  list-style: none;
  margin: 0;
  padding: 0;
}

.nav a {
  display: block;
  padding: 15px;
  color: #777;
}

.nav .active a {
  color: #555;
  background: #e7e7e7;
}

/* ============ Content ============ */
.container {
  font-family: Georgia, serif;
  font-size: 16px;
  line-height: 1.5;
  max-width: 42em;
  margin: 0 auto;
  padding: 0 15px 40px;
  hyphens: auto;
  -webkit-hyphens: auto;
}

.tagline {
  font-style: italic;
}

.summary {
  color: #777;
  font-size: 14px;
}

pre {
  overflow-x: auto;
  padding: 9.5px;
  font-size: 13px;
  border-radius: 4px;
}

table {
  border-collapse: collapse;
}

th, td {
  border: 1px solid #ddd;
  padding: 4px 8px;
}

img {
  max-width: 100%;
  height: auto;
}

/* ============ Counter ============ */
.panel {
  border: 1px solid #337ab7;
  border-radius: 4px;
  margin: 20px 0;
}

.panel-heading {
  color: #fff;
  background: #337ab7;
  padding: 10px 15px;
}

.panel-body {
  padding: 15px;
  font-size: 32px;
  text-align: center;
}

.btn {
  display: block;
  margin: 0 auto;
  padding: 10px 16px;
  font-size: 18px;
  color: #fff;
  background: #d9534f;
  border: 1px solid #d43f3a;
  border-radius: 6px;
  cursor: pointer;
}

.btn[disabled] {
  opacity: 0.65;
  cursor: not-allowed;
}
`
