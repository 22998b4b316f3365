// Package api binds the case seam to HTTP+JSON. NewHandler serves any
// types.CaseGateway; the remote store is its client.
package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/schema"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/cors"

	"github.com/mesh-intelligence/caseseam/pkg/types"
)

// Server handles case requests against one store.
type Server struct {
	store    types.CaseGateway
	logger   *slog.Logger
	decoder  *schema.Decoder
	origins  []string
	registry *prometheus.Registry
	metrics  *metrics
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the access and error logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithCORSOrigins sets the origins allowed to call the API from a browser.
func WithCORSOrigins(origins []string) Option {
	return func(s *Server) { s.origins = origins }
}

// WithRegistry sets the registry that request metrics are registered in
// and /metrics exposes. Each handler gets a fresh registry by default.
func WithRegistry(r *prometheus.Registry) Option {
	return func(s *Server) { s.registry = r }
}

// NewServer returns a Server for store.
func NewServer(store types.CaseGateway, opts ...Option) *Server {
	s := &Server{
		store:   store,
		logger:  slog.Default(),
		decoder: schema.NewDecoder(),
		origins: []string{"*"},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.decoder.IgnoreUnknownKeys(true)
	if s.registry == nil {
		s.registry = prometheus.NewRegistry()
	}
	s.metrics = newMetrics(s.registry)
	return s
}

// Handler returns the routed handler wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)

	var h http.Handler = mux
	h = s.instrument(h)
	h = s.accessLog(h)
	h = requestID(h)
	return cors.New(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPut, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{requestIDHeader},
	}).Handler(h)
}

// NewHandler is shorthand for NewServer(store, opts...).Handler().
func NewHandler(store types.CaseGateway, opts ...Option) http.Handler {
	return NewServer(store, opts...).Handler()
}
