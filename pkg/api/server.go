package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/platinummonkey/warren/pkg/httputil"
	"github.com/platinummonkey/warren/pkg/middleware"
	"github.com/platinummonkey/warren/pkg/observability"
	"github.com/platinummonkey/warren/pkg/tenants"
)

// Options configures the API server
type Options struct {
	Service tenants.Service
	Auth    *middleware.Authenticator
	Logger  *observability.Logger
	Health  *observability.HealthChecker

	// Metrics, with its Registry, enables the /metrics endpoint and
	// request instrumentation when non-nil.
	Metrics  *observability.Metrics
	Registry *prometheus.Registry

	// StoreTimeout bounds each request's store work. Zero disables the
	// per-request deadline.
	StoreTimeout time.Duration
}

// Server represents the API server
type Server struct {
	router       *mux.Router
	service      tenants.Service
	auth         *middleware.Authenticator
	logger       *observability.Logger
	storeTimeout time.Duration
}

// NewServer creates a new API server
func NewServer(opts Options) *Server {
	s := &Server{
		router:       mux.NewRouter(),
		service:      opts.Service,
		auth:         opts.Auth,
		logger:       opts.Logger,
		storeTimeout: opts.StoreTimeout,
	}

	s.router.Use(httputil.RequestIDMiddleware)
	s.router.Use(httputil.LoggingMiddleware(opts.Logger))
	s.router.Use(httputil.RecoveryMiddleware(opts.Logger))
	if opts.Metrics != nil {
		s.router.Use(observability.HTTPMetricsMiddleware(opts.Metrics))
	}

	s.setupRoutes(opts)
	return s
}

// setupRoutes configures all the API routes
func (s *Server) setupRoutes(opts Options) {
	s.router.HandleFunc("/org/create", s.createOrganization).Methods("POST")
	s.router.HandleFunc("/org/get", s.getOrganization).Methods("GET")
	s.router.Handle("/org/update", s.auth.Handler(http.HandlerFunc(s.updateOrganization))).Methods("PUT")
	s.router.Handle("/org/delete", s.auth.Handler(http.HandlerFunc(s.deleteOrganization))).Methods("DELETE")
	s.router.HandleFunc("/admin/login", s.adminLogin).Methods("POST")

	if opts.Health != nil {
		s.router.HandleFunc("/healthz", opts.Health.Liveness).Methods("GET")
		s.router.HandleFunc("/readyz", opts.Health.Readiness).Methods("GET")
	}
	if opts.Metrics != nil && opts.Registry != nil {
		s.router.Handle("/metrics", observability.MetricsHandler(opts.Registry)).Methods("GET")
	}
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// requestContext bounds a request's store work with the configured timeout
func (s *Server) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	if s.storeTimeout <= 0 {
		return r.Context(), func() {}
	}
	return context.WithTimeout(r.Context(), s.storeTimeout)
}
