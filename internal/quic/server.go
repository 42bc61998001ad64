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

// Package quic serves the gateway's HTTP handler over HTTP/3.
package quic

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"

	"github.com/quic-go/quic-go/http3"

	"github.com/jeremyhahn/go-kvgateway/pkg/logging"
)

// ErrNotListening is returned by Serve before Listen succeeded.
var ErrNotListening = errors.New("quic: server is not listening")

// Server represents a QUIC/HTTP3 server
type Server struct {
	addr   string
	logger logging.Logger
	server *http3.Server

	mu   sync.Mutex
	conn net.PacketConn
}

// Config holds the QUIC server configuration
type Config struct {
	Host string
	Port int

	// TLSConfig is required; HTTP/3 has no plaintext mode.
	TLSConfig *tls.Config

	// Handler is usually the gateway router.
	Handler http.Handler

	Logger logging.Logger
}

// NewServer creates a new QUIC/HTTP3 server
func NewServer(cfg *Config) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("quic: config is required")
	}
	if cfg.TLSConfig == nil {
		return nil, fmt.Errorf("quic: TLS configuration is required for HTTP/3")
	}
	if cfg.Handler == nil {
		return nil, fmt.Errorf("quic: handler is required")
	}

	log := cfg.Logger
	if log == nil {
		log = logging.NewNop()
	}

	tlsConfig := http3.ConfigureTLSConfig(cfg.TLSConfig.Clone())
	if tlsConfig.MinVersion < tls.VersionTLS13 {
		tlsConfig.MinVersion = tls.VersionTLS13
	}

	s := &Server{
		addr:   net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		logger: log,
	}
	s.server = &http3.Server{
		Handler:   cfg.Handler,
		TLSConfig: tlsConfig,
	}
	return s, nil
}

// Listen binds the UDP socket without serving.
func (s *Server) Listen() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn != nil {
		return nil
	}
	conn, err := net.ListenPacket("udp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on udp %s: %w", s.addr, err)
	}
	s.conn = conn
	return nil
}

// Serve handles HTTP/3 requests until Stop.
func (s *Server) Serve() error {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()

	if conn == nil {
		return ErrNotListening
	}

	s.logger.Info("Starting HTTP/3 gateway", logging.String("address", conn.LocalAddr().String()))

	if err := s.server.Serve(conn); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to serve HTTP/3: %w", err)
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

// Stop closes the server and its socket.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping HTTP/3 gateway")

	done := make(chan error, 1)
	go func() { done <- s.server.Close() }()

	var err error
	select {
	case err = <-done:
	case <-ctx.Done():
		err = ctx.Err()
	}

	s.mu.Lock()
	if s.conn != nil {
		_ = s.conn.Close()
	}
	s.mu.Unlock()

	if err != nil {
		return fmt.Errorf("failed to stop HTTP/3 gateway: %w", err)
	}
	return nil
}

// Addr returns the bound address, or the configured one before Listen.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		return s.conn.LocalAddr().String()
	}
	return s.addr
}

// Port returns the bound UDP port, or 0 before Listen.
func (s *Server) Port() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		if udpAddr, ok := s.conn.LocalAddr().(*net.UDPAddr); ok {
			return udpAddr.Port
		}
	}
	return 0
}

// AltSvc returns the Alt-Svc header value advertising port.
func AltSvc(port int) string {
	return fmt.Sprintf(`h3=":%d"; ma=2592000`, port)
}
