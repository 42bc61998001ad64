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

package testutil

import (
	"context"
	"net"
	"sync"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/jeremyhahn/go-kvgateway/pkg/kvpb"
)

const bufSize = 1 << 20

// MockBackend is a scripted storage service. Handlers default to
// returning an empty ack and echoing the requested key with an empty value.
type MockBackend struct {
	kvpb.UnimplementedKeyValueStorageServer

	mu         sync.Mutex
	storeFunc  func(context.Context, *kvpb.StoreRequest) (*emptypb.Empty, error)
	loadFunc   func(context.Context, *kvpb.LoadRequest) (*kvpb.LoadReply, error)
	storeCalls []*kvpb.StoreRequest
	loadCalls  []*kvpb.LoadRequest
	contexts   []context.Context

	listener *bufconn.Listener
	server   *grpc.Server
}

// NewMockBackend serves a MockBackend over an in-memory listener and
// stops it when the test ends.
func NewMockBackend(t testing.TB) *MockBackend {
	t.Helper()

	m := &MockBackend{
		listener: bufconn.Listen(bufSize),
		server:   grpc.NewServer(),
	}
	kvpb.RegisterKeyValueStorageServer(m.server, m)

	go func() {
		_ = m.server.Serve(m.listener)
	}()

	t.Cleanup(m.server.Stop)
	return m
}

// OnStore replaces the StoreKeyValue behavior.
func (m *MockBackend) OnStore(fn func(context.Context, *kvpb.StoreRequest) (*emptypb.Empty, error)) {
	m.mu.Lock()
	m.storeFunc = fn
	m.mu.Unlock()
}

// OnLoad replaces the LoadKeyValue behavior.
func (m *MockBackend) OnLoad(fn func(context.Context, *kvpb.LoadRequest) (*kvpb.LoadReply, error)) {
	m.mu.Lock()
	m.loadFunc = fn
	m.mu.Unlock()
}

// FailWith makes both RPCs return err.
func (m *MockBackend) FailWith(err error) {
	m.OnStore(func(context.Context, *kvpb.StoreRequest) (*emptypb.Empty, error) { return nil, err })
	m.OnLoad(func(context.Context, *kvpb.LoadRequest) (*kvpb.LoadReply, error) { return nil, err })
}

func (m *MockBackend) StoreKeyValue(ctx context.Context, req *kvpb.StoreRequest) (*emptypb.Empty, error) {
	m.mu.Lock()
	m.storeCalls = append(m.storeCalls, req)
	m.contexts = append(m.contexts, ctx)
	fn := m.storeFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, req)
	}
	return &emptypb.Empty{}, nil
}

func (m *MockBackend) LoadKeyValue(ctx context.Context, req *kvpb.LoadRequest) (*kvpb.LoadReply, error) {
	m.mu.Lock()
	m.loadCalls = append(m.loadCalls, req)
	m.contexts = append(m.contexts, ctx)
	fn := m.loadFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, req)
	}
	return &kvpb.LoadReply{Key: req.GetKey()}, nil
}

// StoreCalls returns the StoreKeyValue requests received so far.
func (m *MockBackend) StoreCalls() []*kvpb.StoreRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*kvpb.StoreRequest(nil), m.storeCalls...)
}

// LoadCalls returns the LoadKeyValue requests received so far.
func (m *MockBackend) LoadCalls() []*kvpb.LoadRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*kvpb.LoadRequest(nil), m.loadCalls...)
}

// Contexts returns the server-side contexts of every call, in order.
func (m *MockBackend) Contexts() []context.Context {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]context.Context(nil), m.contexts...)
}

// Calls returns the total number of RPCs received.
func (m *MockBackend) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.storeCalls) + len(m.loadCalls)
}

// Dialer returns a context dialer for grpc.WithContextDialer.
func (m *MockBackend) Dialer() func(context.Context, string) (net.Conn, error) {
	return func(ctx context.Context, _ string) (net.Conn, error) {
		return m.listener.DialContext(ctx)
	}
}

// DialOptions are the options a client needs to reach the mock.
func (m *MockBackend) DialOptions() []grpc.DialOption {
	return []grpc.DialOption{
		grpc.WithContextDialer(m.Dialer()),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}
}

// Conn opens a plaintext connection to the mock, closed when the test ends.
func (m *MockBackend) Conn(t testing.TB) *grpc.ClientConn {
	t.Helper()
	conn, err := grpc.NewClient("passthrough:///bufnet", m.DialOptions()...)
	if err != nil {
		t.Fatalf("failed to dial mock backend: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}
