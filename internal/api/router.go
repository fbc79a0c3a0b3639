package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler returns the HTTP handler with all routes and middleware.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	// Global middleware. CORS runs inside recovery so a panic response still carries the headers.
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.NotFound(handleNotFound)
	r.MethodNotAllowed(handleMethodNotAllowed)

	r.Get("/", handleIndex)
	r.Get("/health", s.handleHealth)

	if s.metricsCfg.Enabled && s.gatherer != nil {
		path := s.metricsCfg.Path
		if path == "" {
			path = "/metrics"
		}
		r.Method(http.MethodGet, path, promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	for _, route := range switchRoutes {
		r.Post(route.Path, s.handleSwitch(route))
	}
	for _, route := range speedRoutes {
		r.Post(route.Path, s.handleSpeed(route))
	}

	return r
}
