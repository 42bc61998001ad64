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

package client

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/connectivity"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"

	grpcserver "github.com/jeremyhahn/go-kvgateway/internal/grpc"
	"github.com/jeremyhahn/go-kvgateway/internal/testutil"
	"github.com/jeremyhahn/go-kvgateway/pkg/correlation"
	"github.com/jeremyhahn/go-kvgateway/pkg/kvpb"
)

func newMockBackend(t *testing.T, callTimeout time.Duration) (*testutil.MockBackend, *Backend) {
	t.Helper()
	mock := testutil.NewMockBackend(t)
	b, err := NewBackend(&BackendConfig{
		Address:     "passthrough:///bufnet",
		CallTimeout: callTimeout,
		DialOptions: []grpc.DialOption{grpc.WithContextDialer(mock.Dialer())},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	return mock, b
}

func TestNewBackend_RequiresAddress(t *testing.T) {
	_, err := NewBackend(nil)
	assert.Error(t, err)
	_, err = NewBackend(&BackendConfig{})
	assert.Error(t, err)
}

func TestBackend_ForwardsCalls(t *testing.T) {
	mock, b := newMockBackend(t, 0)
	mock.OnLoad(func(_ context.Context, req *kvpb.LoadRequest) (*kvpb.LoadReply, error) {
		return &kvpb.LoadReply{Key: req.GetKey(), Value: "stored"}, nil
	})

	_, err := b.StoreKeyValue(context.Background(), &kvpb.StoreRequest{Key: "k", Value: "v"})
	require.NoError(t, err)

	reply, err := b.LoadKeyValue(context.Background(), &kvpb.LoadRequest{Key: "k"})
	require.NoError(t, err)
	assert.Equal(t, "stored", reply.GetValue())

	require.Len(t, mock.StoreCalls(), 1)
	assert.Equal(t, "k", mock.StoreCalls()[0].GetKey())
	assert.Equal(t, "v", mock.StoreCalls()[0].GetValue())
}

func TestBackend_PreservesStatus(t *testing.T) {
	mock, b := newMockBackend(t, 0)
	mock.FailWith(status.Error(codes.PermissionDenied, "nope"))

	_, err := b.LoadKeyValue(context.Background(), &kvpb.LoadRequest{Key: "k"})
	assert.Equal(t, codes.PermissionDenied, status.Code(err))
}

func TestBackend_PropagatesCorrelationID(t *testing.T) {
	mock, b := newMockBackend(t, 0)

	ctx := correlation.WithCorrelationID(context.Background(), "corr-42")
	_, err := b.StoreKeyValue(ctx, &kvpb.StoreRequest{Key: "k"})
	require.NoError(t, err)

	ctxs := mock.Contexts()
	require.Len(t, ctxs, 1)
	md, _ := metadata.FromIncomingContext(ctxs[0])
	assert.Equal(t, []string{"corr-42"}, md.Get(correlation.MetadataKey))
}

func blockUntilDone(ctx context.Context, _ *kvpb.StoreRequest) (*emptypb.Empty, error) {
	<-ctx.Done()
	return nil, status.FromContextError(ctx.Err()).Err()
}

func TestBackend_CallTimeout(t *testing.T) {
	mock, b := newMockBackend(t, 50*time.Millisecond)
	mock.OnStore(blockUntilDone)

	start := time.Now()
	_, err := b.StoreKeyValue(context.Background(), &kvpb.StoreRequest{Key: "k"})
	assert.Equal(t, codes.DeadlineExceeded, status.Code(err))
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestBackend_CallerDeadlineWins(t *testing.T) {
	mock, b := newMockBackend(t, time.Hour)
	mock.OnStore(blockUntilDone)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := b.StoreKeyValue(ctx, &kvpb.StoreRequest{Key: "k"})
	assert.Equal(t, codes.DeadlineExceeded, status.Code(err))
}

func TestBackend_CheckWithoutHealthService(t *testing.T) {
	_, b := newMockBackend(t, 0)

	err := b.Check(context.Background())
	assert.True(t, errors.Is(err, ErrNotReady))
}

func TestBackend_CheckAndWaitForReady(t *testing.T) {
	srv, err := grpcserver.NewServer(&grpcserver.ServerConfig{Host: "127.0.0.1"})
	require.NoError(t, err)
	require.NoError(t, srv.Listen())
	go func() { _ = srv.Serve() }()
	t.Cleanup(func() { _ = srv.Stop(context.Background()) })

	b, err := NewBackend(&BackendConfig{Address: srv.Addr()})
	require.NoError(t, err)
	defer b.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, b.WaitForReady(ctx))
	assert.Equal(t, connectivity.Ready, b.State())
	assert.NoError(t, b.Check(ctx))
	assert.Equal(t, srv.Addr(), b.Target())
}

func TestBackend_WaitForReadyTimesOut(t *testing.T) {
	// Nothing listens on port 1.
	b, err := NewBackend(&BackendConfig{Address: "127.0.0.1:1"})
	require.NoError(t, err)
	defer b.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	err = b.WaitForReady(ctx)
	assert.ErrorIs(t, err, ErrNotReady)
}

func TestBackend_WaitForReadyAfterClose(t *testing.T) {
	b, err := NewBackend(&BackendConfig{Address: "127.0.0.1:1"})
	require.NoError(t, err)
	require.NoError(t, b.Close())

	err = b.WaitForReady(context.Background())
	assert.ErrorIs(t, err, ErrNotReady)
}
