package query

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router builds the chi mux: this package's request-ID middleware first,
// then chi's own real IP, panic recovery, and timeout middleware, then the
// teacher's CORS/logging pair, then the route groups themselves.
func (s *Service) Router() *chi.Mux {
	r := chi.NewRouter()

	r.Use(requestIDMiddleware)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(s.corsMiddleware)
	r.Use(s.loggingMiddleware)

	r.Get("/healthz", s.handleHealth)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)
			r.Get("/stats", s.handleStats)
			r.Get("/containers", s.handleContainers)
		})

		if s.config.HTTPServer.WebSocketEnabled {
			r.With(s.authMiddleware).Get("/stats/stream", s.handleStatsStream)
		}
	})

	return r
}

// Serve starts the HTTP listener and blocks until the server fails; it
// takes no context and has no shutdown path of its own. Callers run it in
// its own goroutine, the same as the teacher's api.Create(...).Run() shape.
func (s *Service) Serve(addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return srv.ListenAndServe()
}
