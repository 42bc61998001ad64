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

package grpc

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/jeremyhahn/go-kvgateway/pkg/kvpb"
	"github.com/jeremyhahn/go-kvgateway/pkg/logging"
	"github.com/jeremyhahn/go-kvgateway/pkg/metrics"
	"github.com/jeremyhahn/go-kvgateway/pkg/ratelimit"
	"github.com/jeremyhahn/go-kvgateway/pkg/store"
)

// ErrNotListening is returned by Serve before Listen succeeded.
var ErrNotListening = errors.New("grpc: server is not listening")

// Server wraps the gRPC server with lifecycle management
type Server struct {
	service   *Service
	grpcSrv   *grpc.Server
	health    *health.Server
	tlsConfig *tls.Config
	logger    logging.Logger
	addr      string

	mu       sync.Mutex
	listener net.Listener
}

// ServerConfig contains configuration for the gRPC server
type ServerConfig struct {
	Host string

	// Port 0 picks an ephemeral port.
	Port int

	// TLSConfig is the server identity. Nil serves plaintext.
	TLSConfig *tls.Config

	// Store defaults to a single-lock in-memory store.
	Store store.Store

	Logger      logging.Logger
	RateLimiter *ratelimit.Limiter

	EnableLogging bool

	// DisableRecovery lets handler panics crash the process. Recovery is
	// installed by default.
	DisableRecovery bool
}

// NewServer creates a new gRPC server
func NewServer(cfg *ServerConfig) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("grpc: server config is required")
	}

	log := cfg.Logger
	if log == nil {
		log = logging.NewNop()
	}

	server := &Server{
		service:   NewService(cfg.Store, log),
		health:    health.NewServer(),
		tlsConfig: cfg.TLSConfig,
		logger:    log,
		addr:      net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
	}

	// Correlation first so every later interceptor and the handler see the ID
	unaryInterceptors := []grpc.UnaryServerInterceptor{
		server.correlationUnaryInterceptor,
		metrics.GRPCUnaryServerInterceptor(),
	}
	streamInterceptors := []grpc.StreamServerInterceptor{
		server.correlationStreamInterceptor,
		metrics.GRPCStreamServerInterceptor(),
	}

	if cfg.RateLimiter.Enabled() {
		unaryInterceptors = append(unaryInterceptors, ratelimit.UnaryServerInterceptor(cfg.RateLimiter))
	}

	if cfg.EnableLogging {
		unaryInterceptors = append(unaryInterceptors, server.loggingUnaryInterceptor)
	}

	if !cfg.DisableRecovery {
		unaryInterceptors = append(unaryInterceptors, server.recoveryUnaryInterceptor)
		streamInterceptors = append(streamInterceptors, server.recoveryStreamInterceptor)
	}

	unaryInterceptors = append(unaryInterceptors, errorHandlingUnaryInterceptor)

	opts := []grpc.ServerOption{
		grpc.ChainUnaryInterceptor(unaryInterceptors...),
		grpc.ChainStreamInterceptor(streamInterceptors...),
	}

	if cfg.TLSConfig != nil {
		opts = append(opts, grpc.Creds(credentials.NewTLS(cfg.TLSConfig)))
	}

	server.grpcSrv = grpc.NewServer(opts...)
	kvpb.RegisterKeyValueStorageServer(server.grpcSrv, server.service)
	healthpb.RegisterHealthServer(server.grpcSrv, server.health)

	return server, nil
}

// Listen binds the configured address without serving.
func (s *Server) Listen() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	s.listener = listener
	return nil
}

// Serve accepts connections on the bound listener until Stop.
func (s *Server) Serve() error {
	s.mu.Lock()
	listener := s.listener
	s.mu.Unlock()

	if listener == nil {
		return ErrNotListening
	}

	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	s.health.SetServingStatus(kvpb.KeyValueStorage_ServiceDesc.ServiceName, healthpb.HealthCheckResponse_SERVING)

	s.logger.Info("Starting storage service",
		logging.String("address", listener.Addr().String()),
		logging.Bool("tls", s.tlsConfig != nil))

	if err := s.grpcSrv.Serve(listener); err != nil {
		return fmt.Errorf("failed to serve: %w", err)
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

// Stop reports NOT_SERVING, drains in-flight RPCs and forces the stop when
// ctx ends first.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping storage service")
	s.health.Shutdown()

	stopped := make(chan struct{})
	go func() {
		s.grpcSrv.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopped:
		s.logger.Info("Storage service stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Forcing storage service stop after timeout")
		s.grpcSrv.Stop()
		return ctx.Err()
	}
}

// Addr returns the bound address, or the configured one before Listen.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// Port returns the port the server is listening on
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

// Service returns the RPC implementation.
func (s *Server) Service() *Service {
	return s.service
}

// loggingUnaryInterceptor logs unary RPC calls
func (s *Server) loggingUnaryInterceptor(
	ctx context.Context,
	req any,
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (any, error) {
	start := time.Now()

	s.logger.DebugContext(ctx, "RPC started", logging.String("method", info.FullMethod))

	resp, err := handler(ctx, req)

	s.logger.InfoContext(ctx, "RPC completed",
		logging.String("method", info.FullMethod),
		logging.Duration("duration", time.Since(start)),
		logging.String("code", status.Code(err).String()))

	return resp, err
}

// recoveryUnaryInterceptor recovers from panics in unary RPC handlers
func (s *Server) recoveryUnaryInterceptor(
	ctx context.Context,
	req any,
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (resp any, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.ErrorContext(ctx, "Recovered from panic",
				logging.String("method", info.FullMethod),
				logging.Any("panic", r))
			err = status.Error(codes.Internal, "internal server error")
		}
	}()

	return handler(ctx, req)
}

// recoveryStreamInterceptor recovers from panics in streaming RPC handlers
func (s *Server) recoveryStreamInterceptor(
	srv any,
	ss grpc.ServerStream,
	info *grpc.StreamServerInfo,
	handler grpc.StreamHandler,
) (err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.ErrorContext(ss.Context(), "Recovered from panic in stream",
				logging.String("method", info.FullMethod),
				logging.Any("panic", r))
			err = status.Error(codes.Internal, "internal server error")
		}
	}()

	return handler(srv, ss)
}

// errorHandlingUnaryInterceptor converts non-status errors to Internal
func errorHandlingUnaryInterceptor(
	ctx context.Context,
	req any,
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (any, error) {
	resp, err := handler(ctx, req)
	if err != nil {
		if _, ok := status.FromError(err); !ok {
			err = status.Errorf(codes.Internal, "internal error: %v", err)
		}
	}
	return resp, err
}
