// Package metrics provides Prometheus metrics for the blog server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PageRenders counts pages served, by kind (article, page, not_found).
	PageRenders = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "blog",
			Name:      "page_renders_total",
			Help:      "Total number of pages rendered",
		},
		[]string{"kind"},
	)

	// RenderFallbacks counts Markdown conversions that degraded to plain text.
	RenderFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "blog",
			Name:      "render_fallbacks_total",
			Help:      "Total number of Markdown renders that fell back to escaped text",
		},
	)

	// CounterRequests counts counter API calls by operation and status.
	CounterRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "blog",
			Name:      "counter_requests_total",
			Help:      "Total number of counter API requests",
		},
		[]string{"operation", "status"},
	)

	// RegistryReloads counts article registry reloads by outcome.
	RegistryReloads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "blog",
			Name:      "registry_reloads_total",
			Help:      "Total number of article registry reloads",
		},
		[]string{"status"},
	)

	// LiveReloadClients tracks connected live-reload websockets.
	LiveReloadClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "blog",
			Name:      "livereload_clients",
			Help:      "Number of connected live-reload clients",
		},
	)
)
