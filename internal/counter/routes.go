package counter

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/barelyfunctional/site/internal/metrics"
)

// Response is the JSON body of both counter endpoints.
type Response struct {
	Count int64 `json:"count"`
}

// RegisterRoutes mounts GET /count and PUT /count (with or without the
// trailing slash). limiter may be nil to disable rate limiting.
func RegisterRoutes(r chi.Router, store Store, limiter *RateLimiter, logger *slog.Logger) {
	get := handleGet(store, logger)
	put := http.Handler(handleIncrement(store, logger))
	if limiter != nil {
		put = limiter.Middleware(put)
	}

	r.Get("/count", get)
	r.Get("/count/", get)
	r.Method(http.MethodPut, "/count", put)
	r.Method(http.MethodPut, "/count/", put)
}

func handleGet(store Store, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := store.Get(r.Context())
		if err != nil {
			logger.Error("counter: get failed", "error", err)
			metrics.CounterRequests.WithLabelValues("get", "error").Inc()
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		metrics.CounterRequests.WithLabelValues("get", "ok").Inc()
		writeJSON(w, http.StatusOK, Response{Count: n})
	}
}

func handleIncrement(store Store, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := store.Increment(r.Context())
		if err != nil {
			logger.Error("counter: increment failed", "error", err)
			metrics.CounterRequests.WithLabelValues("increment", "error").Inc()
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		metrics.CounterRequests.WithLabelValues("increment", "ok").Inc()
		logger.Debug("counter: incremented", "count", n)
		writeJSON(w, http.StatusOK, Response{Count: n})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
