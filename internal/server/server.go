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

package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/looplab/fsm"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/jeremyhahn/go-kvgateway/internal/config"
	"github.com/jeremyhahn/go-kvgateway/internal/grpc"
	"github.com/jeremyhahn/go-kvgateway/internal/quic"
	"github.com/jeremyhahn/go-kvgateway/internal/rest"
	"github.com/jeremyhahn/go-kvgateway/pkg/client"
	"github.com/jeremyhahn/go-kvgateway/pkg/health"
	"github.com/jeremyhahn/go-kvgateway/pkg/logging"
	"github.com/jeremyhahn/go-kvgateway/pkg/metrics"
	"github.com/jeremyhahn/go-kvgateway/pkg/ratelimit"
	"github.com/jeremyhahn/go-kvgateway/pkg/store"
)

const defaultShutdownTimeout = 30 * time.Second

// Server runs the storage service, the gateway, or both, plus the metrics
// endpoint, under one lifecycle.
type Server struct {
	mu        sync.Mutex
	config    *config.Config
	logger    *swapLogger
	logOutput io.Writer
	version   string
	lifecycle *fsm.FSM

	store         store.Store
	limiter       *ratelimit.Limiter
	healthChecker *health.Checker

	grpcServer *grpc.Server
	backend    *client.Backend
	restServer *rest.Server
	quicServer *quic.Server

	gatewayTLS *tls.Config
	backendTLS *tls.Config

	metricsServer    *http.Server
	metricsListener  net.Listener
	metricsCollector *metrics.Collector

	ctx      context.Context
	cancel   context.CancelFunc
	group    *errgroup.Group
	groupCtx context.Context
	started  bool
	done     chan struct{}
	serveErr error
	stopOnce sync.Once
	stopErr  error
}

// Option customizes a Server.
type Option func(*Server)

// WithLogOutput sends log output to w instead of stdout.
func WithLogOutput(w io.Writer) Option {
	return func(s *Server) { s.logOutput = w }
}

// WithVersion sets the version reported at startup.
func WithVersion(v string) Option {
	return func(s *Server) { s.version = v }
}

// New builds every component the configuration enables. Listeners are not
// bound until Start.
func New(cfg *config.Config, opts ...Option) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("server: config is required")
	}

	s := &Server{
		config:  cfg,
		version: "dev",
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	base, err := s.buildLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("server: failed to configure logging: %w", err)
	}
	s.logger = newSwapLogger(base)
	s.lifecycle = s.newLifecycle()
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.group, s.groupCtx = errgroup.WithContext(context.Background())

	s.limiter = ratelimit.New(&ratelimit.Config{
		Enabled:           cfg.RateLimit.Enabled,
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		Burst:             cfg.RateLimit.Burst,
	})

	if cfg.Protocols.GRPC {
		if err := s.initializeStorage(); err != nil {
			s.release()
			return nil, err
		}
	}

	if cfg.Protocols.REST {
		if err := s.initializeGatewayTLS(); err != nil {
			s.release()
			return nil, err
		}
		if cfg.Health.Enabled {
			s.healthChecker = health.NewChecker()
		}
	}

	return s, nil
}

func (s *Server) buildLogger(cfg config.LoggingConfig) (logging.Logger, error) {
	return logging.New(&logging.Config{
		Level:   cfg.Level,
		Format:  cfg.Format,
		Backend: cfg.Backend,
		Output:  s.logOutput,
	})
}

// initializeStorage creates the store and the storage service.
func (s *Server) initializeStorage() error {
	s.store = store.New(s.config.Storage.Shards)
	metrics.SetEntriesSource(s.store.Len)

	tlsConfig, err := s.config.Storage.TLS.LoadTLSConfig()
	if err != nil {
		return fmt.Errorf("server: storage TLS: %w", err)
	}

	s.grpcServer, err = grpc.NewServer(&grpc.ServerConfig{
		Host:          s.config.Server.StorageHost,
		Port:          s.config.Server.GRPCPort,
		TLSConfig:     tlsConfig,
		Store:         s.store,
		Logger:        s.logger,
		RateLimiter:   s.limiter,
		EnableLogging: true,
	})
	if err != nil {
		return fmt.Errorf("server: failed to create storage service: %w", err)
	}
	return nil
}

func (s *Server) initializeGatewayTLS() error {
	var err error
	if s.gatewayTLS, err = s.config.Gateway.TLS.LoadTLSConfig(); err != nil {
		return fmt.Errorf("server: gateway TLS: %w", err)
	}
	if s.backendTLS, err = s.config.Gateway.Backend.LoadClientTLSConfig(); err != nil {
		return fmt.Errorf("server: backend TLS: %w", err)
	}
	return nil
}

// Start binds every enabled listener, serves them in the background and,
// for the gateway, waits for the backend channel. It returns once the
// server is running or startup has failed.
func (s *Server) Start() error {
	if err := s.transition(eventStart); err != nil {
		return fmt.Errorf("server: cannot start from state %s: %w", s.State(), err)
	}

	s.logger.Info("Starting kvgateway server",
		logging.String("version", s.version),
		logging.Bool("storage", s.config.Protocols.GRPC),
		logging.Bool("gateway", s.config.Protocols.REST),
		logging.Bool("http3", s.config.Protocols.HTTP3))

	s.mu.Lock()
	s.started = true
	s.mu.Unlock()

	err := s.start()
	go s.watch()

	if err != nil {
		s.logger.Error("Server startup failed", logging.Error(err))
		_ = s.transition(eventFail)
		ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout())
		defer cancel()
		_ = s.stop(ctx)
		return err
	}

	if err := s.transition(eventStarted); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	s.logger.Info("All servers started successfully")
	return nil
}

func (s *Server) start() error {
	if s.config.Metrics.Enabled {
		if err := s.startMetrics(); err != nil {
			return err
		}
	}

	if s.grpcServer != nil {
		if err := s.grpcServer.Listen(); err != nil {
			return fmt.Errorf("storage service: %w", err)
		}
		s.serve("storage service", s.grpcServer.Serve)
	}

	if s.config.Protocols.REST {
		if err := s.initializeGateway(); err != nil {
			return err
		}
		if err := s.restServer.Listen(); err != nil {
			return fmt.Errorf("gateway: %w", err)
		}
		if s.quicServer != nil {
			if err := s.quicServer.Listen(); err != nil {
				return fmt.Errorf("http3 gateway: %w", err)
			}
			s.serve("http3 gateway", s.quicServer.Serve)
		}
		s.serve("gateway", s.restServer.Serve)

		if err := s.connectBackend(); err != nil {
			return err
		}
	}

	if s.config.Metrics.Enabled {
		var opts []metrics.CollectorOption
		if s.backend != nil {
			opts = append(opts, metrics.WithBackendProbe(s.backend.Check, s.config.Health.CheckTimeout))
		}
		s.metricsCollector = metrics.StartCollector(s.ctx, 30*time.Second, opts...)
	}
	return nil
}

// initializeGateway opens the backend channel and builds the HTTPS and
// HTTP/3 listeners around it. An empty backend address dials the storage
// service running in this process.
func (s *Server) initializeGateway() error {
	cfg := s.config.Gateway

	address := cfg.Backend.Address
	if address == "" {
		if s.grpcServer == nil {
			return fmt.Errorf("gateway: backend address is required")
		}
		address = net.JoinHostPort(loopbackHost(s.config.Server.StorageHost), strconv.Itoa(s.grpcServer.Port()))
	}

	backend, err := client.NewBackend(&client.BackendConfig{
		Address:     address,
		TLSConfig:   s.backendTLS,
		CallTimeout: cfg.Backend.CallTimeout,
		Logger:      s.logger,
	})
	if err != nil {
		return fmt.Errorf("gateway: %w", err)
	}
	s.backend = backend

	if s.healthChecker != nil {
		s.healthChecker.RegisterCheck("backend",
			health.ProbeCheck("backend", s.config.Health.CheckTimeout, backend.Check))
	}

	var altSvc string
	if s.config.Protocols.HTTP3 && s.config.Server.HTTP3Port > 0 {
		altSvc = quic.AltSvc(s.config.Server.HTTP3Port)
	}

	s.restServer, err = rest.NewServer(&rest.Config{
		Host:          s.config.Server.GatewayHost,
		Port:          s.config.Server.RESTPort,
		Backend:       backend,
		TLSConfig:     s.gatewayTLS,
		Logger:        s.logger,
		HealthChecker: s.healthChecker,
		RateLimiter:   s.limiter,
		MaxBodyBytes:  cfg.MaxBodyBytes,
		AltSvc:        altSvc,
		ReadTimeout:   cfg.ReadTimeout,
		WriteTimeout:  cfg.WriteTimeout,
		IdleTimeout:   cfg.IdleTimeout,
	})
	if err != nil {
		return fmt.Errorf("gateway: %w", err)
	}

	if s.config.Protocols.HTTP3 {
		s.quicServer, err = quic.NewServer(&quic.Config{
			Host:      s.config.Server.GatewayHost,
			Port:      s.config.Server.HTTP3Port,
			TLSConfig: s.gatewayTLS,
			Handler:   s.restServer.Handler(),
			Logger:    s.logger,
		})
		if err != nil {
			return fmt.Errorf("http3 gateway: %w", err)
		}
	}
	return nil
}

// loopbackHost turns a listen host into one that can be dialled.
func loopbackHost(host string) string {
	if ip := net.ParseIP(host); host == "" || (ip != nil && ip.IsUnspecified()) {
		return "localhost"
	}
	return host
}

// connectBackend waits for the backend channel to become ready. Failure is
// fatal only when require_ready is set.
func (s *Server) connectBackend() error {
	cfg := s.config.Gateway.Backend
	if cfg.ConnectTimeout <= 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(s.ctx, cfg.ConnectTimeout)
	defer cancel()

	if err := s.backend.WaitForReady(ctx); err != nil {
		if cfg.RequireReady {
			return fmt.Errorf("gateway: backend %s: %w", s.backend.Target(), err)
		}
		s.logger.Warn("Backend not ready, continuing",
			logging.String("target", s.backend.Target()),
			logging.Error(err))
		return nil
	}

	s.logger.Info("Backend channel ready", logging.String("target", s.backend.Target()))
	return nil
}

// startMetrics binds the Prometheus endpoint.
func (s *Server) startMetrics() error {
	metrics.Enable()

	addr := net.JoinHostPort(s.config.Server.GatewayHost, strconv.Itoa(s.config.Metrics.Port))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("metrics: failed to listen on %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle(s.config.Metrics.Path, promhttp.Handler())

	s.metricsListener = listener
	s.metricsServer = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second, // Prevent Slowloris attacks
	}

	s.logger.Info("Starting metrics server",
		logging.String("address", listener.Addr().String()),
		logging.String("path", s.config.Metrics.Path))

	srv := s.metricsServer
	s.serve("metrics", func() error {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	return nil
}

// serve runs fn in the server's group. A listener that exits with an error
// moves the server to failed.
func (s *Server) serve(name string, fn func() error) {
	s.group.Go(func() error {
		if err := fn(); err != nil {
			s.logger.Error("Listener exited", logging.String("listener", name), logging.Error(err))
			if s.lifecycle.Can(eventFail) {
				_ = s.transition(eventFail)
			}
			return fmt.Errorf("%s: %w", name, err)
		}
		return nil
	})
}

func (s *Server) watch() {
	err := s.group.Wait()
	s.mu.Lock()
	s.serveErr = err
	s.mu.Unlock()
	close(s.done)
}

// Done is closed once every listener has returned.
func (s *Server) Done() <-chan struct{} {
	return s.done
}

// Failed is closed when a listener exits with an error, and once every
// listener has returned.
func (s *Server) Failed() <-chan struct{} {
	return s.groupCtx.Done()
}

// Err returns the first listener error after Done is closed.
func (s *Server) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.serveErr
}

// Shutdown stops every listener, draining in-flight requests until the
// configured shutdown timeout.
func (s *Server) Shutdown() error {
	if err := s.transition(eventStop); err != nil {
		return fmt.Errorf("server: cannot stop from state %s: %w", s.State(), err)
	}
	s.logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout())
	defer cancel()

	err := s.stop(ctx)

	s.mu.Lock()
	started := s.started
	s.mu.Unlock()
	if started {
		select {
		case <-s.done:
			s.logger.Info("All servers stopped")
		case <-ctx.Done():
			s.logger.Warn("Shutdown timeout exceeded, forcing stop")
		}
	}

	_ = s.transition(eventStopped)
	s.logger.Info("Server shutdown complete")
	return err
}

func (s *Server) shutdownTimeout() time.Duration {
	if s.config.Server.ShutdownTimeout > 0 {
		return s.config.Server.ShutdownTimeout
	}
	return defaultShutdownTimeout
}

// stop tears components down once: gateway listeners first so no request
// reaches a closed backend channel, then the storage service.
func (s *Server) stop(ctx context.Context) error {
	s.stopOnce.Do(func() {
		var errs []error

		if s.quicServer != nil {
			errs = append(errs, s.quicServer.Stop(ctx))
		}
		if s.restServer != nil {
			errs = append(errs, s.restServer.Stop(ctx))
		}
		if s.grpcServer != nil {
			errs = append(errs, s.grpcServer.Stop(ctx))
		}
		if s.metricsServer != nil {
			errs = append(errs, s.metricsServer.Shutdown(ctx))
		}
		s.release()

		s.stopErr = errors.Join(errs...)
	})
	return s.stopErr
}

// release frees resources that need no draining.
func (s *Server) release() {
	if s.backend != nil {
		if err := s.backend.Close(); err != nil {
			s.logger.Error("Error closing backend channel", logging.Error(err))
		}
	}
	if s.metricsCollector != nil {
		s.metricsCollector.Stop()
	}
	if s.limiter != nil {
		s.limiter.Stop()
	}
	if s.cancel != nil {
		s.cancel()
	}
}

// Run starts a server for cfg and blocks until ctx is cancelled or a
// listener fails, then shuts it down.
func Run(ctx context.Context, cfg *config.Config, opts ...Option) error {
	srv, err := New(cfg, opts...)
	if err != nil {
		return err
	}
	if err := srv.Start(); err != nil {
		_ = srv.Shutdown()
		return err
	}

	select {
	case <-ctx.Done():
		srv.logger.Info("Shutdown requested")
	case <-srv.Failed():
	}

	shutdownErr := srv.Shutdown()
	if err := srv.Err(); err != nil {
		return err
	}
	return shutdownErr
}

// SetupSignalHandler returns a context cancelled on SIGINT or SIGTERM.
func SetupSignalHandler() context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-signalCh
		slog.Info("Received shutdown signal", slog.String("signal", sig.String()))
		cancel()
	}()

	return ctx
}

// Store returns the storage service's store, nil when it is disabled.
func (s *Server) Store() store.Store {
	return s.store
}

// GRPCServer returns the storage service, nil when it is disabled.
func (s *Server) GRPCServer() *grpc.Server {
	return s.grpcServer
}

// RESTServer returns the gateway once Start has built it.
func (s *Server) RESTServer() *rest.Server {
	return s.restServer
}

// QUICServer returns the HTTP/3 gateway once Start has built it.
func (s *Server) QUICServer() *quic.Server {
	return s.quicServer
}

// HealthChecker returns the gateway's health checker, nil when disabled.
func (s *Server) HealthChecker() *health.Checker {
	return s.healthChecker
}

// MetricsAddr returns the bound metrics address, empty when disabled.
func (s *Server) MetricsAddr() string {
	if s.metricsListener == nil {
		return ""
	}
	return s.metricsListener.Addr().String()
}
