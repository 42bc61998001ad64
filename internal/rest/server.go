// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-kvgateway.
//
// go-kvgateway is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package rest

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jeremyhahn/go-kvgateway/pkg/health"
	"github.com/jeremyhahn/go-kvgateway/pkg/kvpb"
	"github.com/jeremyhahn/go-kvgateway/pkg/logging"
	"github.com/jeremyhahn/go-kvgateway/pkg/metrics"
	"github.com/jeremyhahn/go-kvgateway/pkg/ratelimit"
)

// ErrNotListening is returned by Serve before Listen succeeded.
var ErrNotListening = errors.New("rest: server is not listening")

// Server is the HTTP gateway.
type Server struct {
	server    *http.Server
	handlers  *Handlers
	health    *health.Checker
	limiter   *ratelimit.Limiter
	altSvc    string
	tlsConfig *tls.Config
	logger    logging.Logger

	mu       sync.Mutex
	listener net.Listener
}

// Config holds the gateway configuration.
type Config struct {
	Host string

	// Port 0 picks an ephemeral port.
	Port int

	// Backend is the storage service channel. Required.
	Backend kvpb.KeyValueStorageClient

	// TLSConfig is the server identity. Nil serves plaintext HTTP.
	TLSConfig *tls.Config

	Logger        logging.Logger
	HealthChecker *health.Checker
	RateLimiter   *ratelimit.Limiter

	// MaxBodyBytes defaults to DefaultMaxBodyBytes.
	MaxBodyBytes int64

	// AltSvc, when set, is sent as the Alt-Svc header on HTTP/1 and HTTP/2
	// responses.
	AltSvc string

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// NewServer creates a new gateway server.
func NewServer(cfg *Config) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if cfg.Backend == nil {
		return nil, fmt.Errorf("backend client is required")
	}

	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 15 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 15 * time.Second
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = 60 * time.Second
	}

	log := cfg.Logger
	if log == nil {
		log = logging.NewNop()
	}

	s := &Server{
		handlers:  NewHandlers(cfg.Backend, log, cfg.MaxBodyBytes),
		health:    cfg.HealthChecker,
		limiter:   cfg.RateLimiter,
		altSvc:    cfg.AltSvc,
		tlsConfig: cfg.TLSConfig,
		logger:    log,
	}

	s.server = &http.Server{
		Addr:         net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Handler:      s.setupRouter(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
		TLSConfig:    cfg.TLSConfig,
	}

	return s, nil
}

// setupRouter configures the chi router with all routes and middleware.
func (s *Server) setupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(s.RecoveryMiddleware())
	r.Use(s.CorrelationMiddleware())
	r.Use(s.LoggingMiddleware())
	r.Use(metrics.HTTPMiddleware)
	if s.altSvc != "" {
		r.Use(AltSvcMiddleware(s.altSvc))
	}

	r.Get("/health", s.HealthHandler)
	r.Head("/health", s.HealthHandler)
	r.Get("/health/live", s.LivenessHandler)
	r.Get("/health/ready", s.ReadinessHandler)
	r.Get("/health/startup", s.StartupHandler)

	r.Group(func(r chi.Router) {
		if s.limiter.Enabled() {
			r.Use(ratelimit.Middleware(s.limiter))
		}
		r.Post("/store", s.handlers.StoreHandler)
		r.Get("/load", s.handlers.LoadHandler)
	})

	return r
}

// Handler returns the routed handler, for serving over other transports.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Listen binds the configured address without serving.
func (s *Server) Listen() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.server.Addr, err)
	}
	s.listener = listener
	return nil
}

// Serve accepts connections until Stop. It returns nil after a clean
// shutdown.
func (s *Server) Serve() error {
	s.mu.Lock()
	listener := s.listener
	s.mu.Unlock()

	if listener == nil {
		return ErrNotListening
	}

	var err error
	if s.tlsConfig != nil {
		s.logger.Info("Starting HTTPS gateway", logging.String("address", listener.Addr().String()))
		err = s.server.ServeTLS(listener, "", "")
	} else {
		s.logger.Info("Starting HTTP gateway", logging.String("address", listener.Addr().String()))
		err = s.server.Serve(listener)
	}
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to serve gateway: %w", err)
	}
	return nil
}

// Start binds and serves, blocking until Stop.
func (s *Server) Start() error {
	if err := s.Listen(); err != nil {
		return err
	}
	return s.Serve()
}

// Stop gracefully stops the gateway.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down gateway")

	if err := s.server.Shutdown(ctx); err != nil {
		s.logger.Error("Failed to shutdown gateway", logging.Error(err))
		return fmt.Errorf("failed to shutdown gateway: %w", err)
	}

	s.logger.Info("Gateway stopped")
	return nil
}

// Addr returns the bound address, or the configured one before Listen.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.server.Addr
}

// Port returns the bound port, or 0 before Listen.
func (s *Server) Port() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		if tcpAddr, ok := s.listener.Addr().(*net.TCPAddr); ok {
			return tcpAddr.Port
		}
	}
	return 0
}
