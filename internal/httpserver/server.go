package httpserver

import (
	"context"
	"net/http"
	"strings"
	"time"

	"backoffice/catalog/internal/config"
	authdomain "backoffice/catalog/internal/domain/auth"
	"backoffice/catalog/internal/obs"
	productusecase "backoffice/catalog/internal/usecase/product"
	"backoffice/catalog/internal/usecase/session"
)

// Server wraps the HTTP server lifecycle.
type Server struct {
	httpServer *http.Server
	router     *http.ServeMux
	handler    http.Handler
	auth       authdomain.Provider
	tracker    *session.Tracker
	catalog    *productusecase.Catalog
	metrics    *obs.Metrics
	health     func(context.Context) error
	addr       string
}

// NewServer constructs a new Server with configured dependencies. The catalog
// is dropped whenever the tracked session signs out.
func NewServer(cfg config.Config, auth authdomain.Provider, tracker *session.Tracker, catalog *productusecase.Catalog, metrics *obs.Metrics) *Server {
	mux := http.NewServeMux()
	addr := cfg.HTTPPort
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	handler := withRequestID(withLogging(withCORS(mux, cfg.AllowedOrigins)))

	srv := &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       time.Duration(cfg.ReadTimeoutSec) * time.Second,
			WriteTimeout:      time.Duration(cfg.WriteTimeoutSec) * time.Second,
			IdleTimeout:       time.Duration(cfg.IdleTimeoutSec) * time.Second,
		},
		router:  mux,
		handler: handler,
		auth:    auth,
		tracker: tracker,
		catalog: catalog,
		metrics: metrics,
		addr:    addr,
	}
	tracker.OnChange(srv.onSessionChange)
	srv.registerRoutes()
	return srv
}

func (s *Server) onSessionChange(identity *authdomain.Identity) {
	state := session.Decide(identity, true)
	s.metrics.ObserveSession(state.String())
	if identity == nil {
		s.catalog.Reset()
		obs.Logger.Info("session_signed_out")
		return
	}
	obs.Logger.Info("session_signed_in", "email", identity.Email)
}

// UseHealthCheck makes /health report the result of check.
func (s *Server) UseHealthCheck(check func(context.Context) error) {
	s.health = check
}

// Start bootstraps the HTTP server on the configured address.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Addr returns the configured network address for the HTTP server.
func (s *Server) Addr() string {
	return s.addr
}
