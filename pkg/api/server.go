package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/crocdb/crocdb-api/pkg/infrastructure/config"
	"github.com/crocdb/crocdb-api/pkg/infrastructure/logging"
	"github.com/crocdb/crocdb-api/pkg/query"
)

// Server wires the query engine to the HTTP surface.
type Server struct {
	engine  *query.Engine
	config  *config.Config
	log     *logging.Logger
	limiter *RateLimiter
	http    *http.Server
}

// NewServer builds a Server with all routes and middleware configured.
func NewServer(cfg *config.Config, engine *query.Engine, log *logging.Logger) *Server {
	s := &Server{
		engine: engine,
		config: cfg,
		log:    log.WithComponent("api"),
	}

	if cfg.RateLimit.Enabled {
		s.limiter = NewRateLimiter(RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
			CleanupInterval:   5 * time.Minute,
		})
	}

	s.http = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      s.Router(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	return s
}

// Router builds the route table. Exposed separately so tests can drive the
// full middleware chain through httptest without opening a socket.
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/search", s.handleSearch).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/entry", s.handleEntry).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/entry/random", s.handleRandomEntry).Methods(http.MethodGet, http.MethodPost, http.MethodOptions)
	r.HandleFunc("/platforms", s.handlePlatforms).Methods(http.MethodGet, http.MethodPost, http.MethodOptions)
	r.HandleFunc("/regions", s.handleRegions).Methods(http.MethodGet, http.MethodPost, http.MethodOptions)
	r.HandleFunc("/info", s.handleInfo).Methods(http.MethodGet, http.MethodPost, http.MethodOptions)

	r.NotFoundHandler = http.HandlerFunc(s.handleNotFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(s.handleMethodNotAllowed)

	var handler http.Handler = r
	if s.limiter != nil {
		handler = s.limiter.Middleware(handler)
	}
	handler = corsMiddleware(handler)
	handler = loggingMiddleware(s.log)(handler)
	handler = recoveryMiddleware(s.log)(handler)
	return handler
}

// Start runs the HTTP server until it is shut down or fails.
func (s *Server) Start() error {
	s.log.Info("server listening", map[string]interface{}{
		"addr": s.http.Addr,
	})
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests and stops background workers.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.limiter != nil {
		s.limiter.Shutdown()
	}
	return s.http.Shutdown(ctx)
}
