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

// Package client holds the two client sides of the system: Backend, the
// gateway's long-lived channel to the storage service, and Gateway, the
// HTTP client kvctl uses against the public API.
package client

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/connectivity"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/jeremyhahn/go-kvgateway/pkg/correlation"
	"github.com/jeremyhahn/go-kvgateway/pkg/kvpb"
	"github.com/jeremyhahn/go-kvgateway/pkg/logging"
	"github.com/jeremyhahn/go-kvgateway/pkg/metrics"
)

// ErrNotReady is returned when the storage service cannot be reached or
// does not report SERVING.
var ErrNotReady = errors.New("client: backend not ready")

var _ kvpb.KeyValueStorageClient = (*Backend)(nil)

// BackendConfig configures the channel to the storage service.
type BackendConfig struct {
	// Address is host:port of the storage service.
	Address string

	// TLSConfig carries the trusted roots and server name. Nil dials
	// without TLS.
	TLSConfig *tls.Config

	// CallTimeout is applied to calls whose context has no deadline.
	CallTimeout time.Duration

	Logger logging.Logger

	// DialOptions are appended after the transport options.
	DialOptions []grpc.DialOption
}

// Backend is a shared handle on one gRPC channel. It is safe for
// concurrent use and never reconnects per call.
type Backend struct {
	conn        *grpc.ClientConn
	client      kvpb.KeyValueStorageClient
	health      healthpb.HealthClient
	callTimeout time.Duration
	logger      logging.Logger
}

// NewBackend creates the channel. Connection establishment is lazy; use
// WaitForReady to block until the storage service is reachable.
func NewBackend(cfg *BackendConfig) (*Backend, error) {
	if cfg == nil || cfg.Address == "" {
		return nil, fmt.Errorf("client: backend address is required")
	}

	log := cfg.Logger
	if log == nil {
		log = logging.NewNop()
	}

	b := &Backend{
		callTimeout: cfg.CallTimeout,
		logger:      log,
	}

	creds := insecure.NewCredentials()
	if cfg.TLSConfig != nil {
		creds = credentials.NewTLS(cfg.TLSConfig)
	}

	opts := []grpc.DialOption{
		grpc.WithTransportCredentials(creds),
		grpc.WithChainUnaryInterceptor(
			correlationUnaryClientInterceptor,
			b.timeoutUnaryClientInterceptor,
			metrics.GRPCUnaryClientInterceptor(),
		),
	}
	opts = append(opts, cfg.DialOptions...)

	conn, err := grpc.NewClient(cfg.Address, opts...)
	if err != nil {
		return nil, fmt.Errorf("client: failed to create backend channel: %w", err)
	}

	b.conn = conn
	b.client = kvpb.NewKeyValueStorageClient(conn)
	b.health = healthpb.NewHealthClient(conn)
	return b, nil
}

// StoreKeyValue forwards to the storage service.
func (b *Backend) StoreKeyValue(ctx context.Context, in *kvpb.StoreRequest, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	return b.client.StoreKeyValue(ctx, in, opts...)
}

// LoadKeyValue forwards to the storage service.
func (b *Backend) LoadKeyValue(ctx context.Context, in *kvpb.LoadRequest, opts ...grpc.CallOption) (*kvpb.LoadReply, error) {
	return b.client.LoadKeyValue(ctx, in, opts...)
}

// Check asks the storage service's health endpoint whether the key-value
// service is SERVING.
func (b *Backend) Check(ctx context.Context) error {
	resp, err := b.health.Check(ctx, &healthpb.HealthCheckRequest{Service: kvpb.KeyValueStorage_ServiceDesc.ServiceName})
	if err != nil {
		metrics.SetBackendHealth(false)
		return fmt.Errorf("%w: %v", ErrNotReady, err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		metrics.SetBackendHealth(false)
		return fmt.Errorf("%w: status %s", ErrNotReady, resp.GetStatus())
	}
	metrics.SetBackendHealth(true)
	return nil
}

// WaitForReady blocks until the channel is connected or ctx ends.
func (b *Backend) WaitForReady(ctx context.Context) error {
	b.conn.Connect()
	for {
		state := b.conn.GetState()
		if state == connectivity.Ready {
			return nil
		}
		if state == connectivity.Shutdown {
			return fmt.Errorf("%w: channel closed", ErrNotReady)
		}
		if !b.conn.WaitForStateChange(ctx, state) {
			return fmt.Errorf("%w: %s after %v", ErrNotReady, state, ctx.Err())
		}
		if b.conn.GetState() == connectivity.Idle {
			b.conn.Connect()
		}
	}
}

// State reports the channel's connectivity state.
func (b *Backend) State() connectivity.State {
	return b.conn.GetState()
}

// Target returns the dialled address.
func (b *Backend) Target() string {
	return b.conn.Target()
}

// Close tears down the channel.
func (b *Backend) Close() error {
	return b.conn.Close()
}

func correlationUnaryClientInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	return invoker(correlation.AppendToOutgoingContext(ctx), method, req, reply, cc, opts...)
}

func (b *Backend) timeoutUnaryClientInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if b.callTimeout > 0 {
		if _, ok := ctx.Deadline(); !ok {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, b.callTimeout)
			defer cancel()
		}
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}
