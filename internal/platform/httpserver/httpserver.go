// Package httpserver builds the admin HTTP server exposing health and
// metrics endpoints, following the teacher's httpserver.New(addr, handler)
// shape, with a chi router providing the routes it used to leave to the
// caller.
package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ReadinessCheck reports whether the engine is ready to serve traffic.
type ReadinessCheck func() bool

// NewRouter builds the chi router for /healthz, /readyz, and /metrics.
// ready is polled on every /readyz request.
func NewRouter(ready ReadinessCheck) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if ready != nil && !ready() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}

// New builds an HTTP server with sane defaults for this project.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
