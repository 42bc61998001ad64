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
	"bytes"
	"context"
	"crypto/tls"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/quic-go/quic-go/http3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeremyhahn/go-kvgateway/internal/config"
	"github.com/jeremyhahn/go-kvgateway/internal/testutil"
	"github.com/jeremyhahn/go-kvgateway/pkg/client"
	"github.com/jeremyhahn/go-kvgateway/pkg/kvpb"
	"github.com/jeremyhahn/go-kvgateway/pkg/logging"
)

// testConfig returns a loopback config on ephemeral ports with one
// certificate serving both tiers.
func testConfig(t *testing.T) (*config.Config, *testutil.TestCA) {
	t.Helper()

	ca, err := testutil.GenerateTestCA()
	require.NoError(t, err)
	files, err := testutil.WriteCertFiles(ca, t.TempDir(), "grpc-store", "rest-api")
	require.NoError(t, err)

	cfg := config.Default()
	cfg.Server.StorageHost = "127.0.0.1"
	cfg.Server.GatewayHost = "127.0.0.1"
	cfg.Server.GRPCPort = 0
	cfg.Server.RESTPort = 0
	cfg.Server.HTTP3Port = 0
	cfg.Server.ShutdownTimeout = 5 * time.Second
	cfg.Storage.TLS.CertFile = files.CertFile
	cfg.Storage.TLS.KeyFile = files.KeyFile
	cfg.Gateway.TLS.CertFile = files.CertFile
	cfg.Gateway.TLS.KeyFile = files.KeyFile
	cfg.Gateway.Backend.Address = ""
	cfg.Gateway.Backend.CAFile = files.CAFile
	cfg.Gateway.Backend.ConnectTimeout = 5 * time.Second
	cfg.Metrics.Port = 0
	return cfg, ca
}

func startServer(t *testing.T, cfg *config.Config, opts ...Option) *Server {
	t.Helper()
	opts = append([]Option{WithLogOutput(io.Discard)}, opts...)
	srv, err := New(cfg, opts...)
	require.NoError(t, err)
	require.NoError(t, srv.Start())
	t.Cleanup(func() {
		if srv.State() != StateStopped {
			_ = srv.Shutdown()
		}
	})
	return srv
}

func gatewayClient(ca *testutil.TestCA) *http.Client {
	return &http.Client{
		Transport: &http.Transport{TLSClientConfig: &tls.Config{
			RootCAs:    ca.CertPool(),
			ServerName: "rest-api",
			MinVersion: tls.VersionTLS12,
		}},
		Timeout: 10 * time.Second,
	}
}

func do(t *testing.T, c *http.Client, method, url, body string) (int, string) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	resp, err := c.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(data)
}

func TestNew_RequiresConfig(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}

func TestNew_MissingCertificate(t *testing.T) {
	cfg, _ := testConfig(t)
	cfg.Storage.TLS.CertFile = "/nonexistent/cert.pem"

	_, err := New(cfg, WithLogOutput(io.Discard))
	assert.Error(t, err)
}

func TestServer_UnifiedRoundTrip(t *testing.T) {
	cfg, ca := testConfig(t)
	srv := startServer(t, cfg)

	assert.Equal(t, StateRunning, srv.State())
	require.NotNil(t, srv.RESTServer())
	require.NotNil(t, srv.GRPCServer())

	base := "https://" + srv.RESTServer().Addr()
	c := gatewayClient(ca)

	code, body := do(t, c, http.MethodPost, base+"/store", `{"key":"k1","value":"v1"}`)
	assert.Equal(t, http.StatusOK, code)
	assert.Empty(t, body)

	code, body = do(t, c, http.MethodGet, base+"/load", `{"key":"k1"}`)
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"key":"k1","value":"v1"}`, body)

	code, _ = do(t, c, http.MethodGet, base+"/load", `{"key":"missing"}`)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = do(t, c, http.MethodGet, base+"/health/startup", "")
	assert.Equal(t, http.StatusOK, code)
	code, _ = do(t, c, http.MethodGet, base+"/health/ready", "")
	assert.Equal(t, http.StatusOK, code)

	assert.Equal(t, 1, srv.Store().Len())

	require.NoError(t, srv.Shutdown())
	assert.Equal(t, StateStopped, srv.State())

	select {
	case <-srv.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("listeners did not exit")
	}
	assert.NoError(t, srv.Err())
}

func TestServer_StorageOnly(t *testing.T) {
	cfg, ca := testConfig(t)
	cfg.Protocols.REST = false
	srv := startServer(t, cfg)

	assert.Nil(t, srv.RESTServer())
	assert.Nil(t, srv.HealthChecker())

	backend, err := client.NewBackend(&client.BackendConfig{
		Address: srv.GRPCServer().Addr(),
		TLSConfig: &tls.Config{
			RootCAs:    ca.CertPool(),
			ServerName: "grpc-store",
			MinVersion: tls.VersionTLS12,
		},
	})
	require.NoError(t, err)
	defer backend.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err = backend.StoreKeyValue(ctx, &kvpb.StoreRequest{Key: "a", Value: "1"})
	require.NoError(t, err)
	reply, err := backend.LoadKeyValue(ctx, &kvpb.LoadRequest{Key: "a"})
	require.NoError(t, err)
	assert.Equal(t, "1", reply.Value)
	require.NoError(t, backend.Check(ctx))
}

func TestServer_StartTwice(t *testing.T) {
	cfg, _ := testConfig(t)
	srv := startServer(t, cfg)

	assert.Error(t, srv.Start())
	assert.Equal(t, StateRunning, srv.State())
}

func TestServer_BackendNotReady(t *testing.T) {
	cfg, _ := testConfig(t)
	cfg.Protocols.GRPC = false
	cfg.Gateway.Backend.Address = "127.0.0.1:1"
	cfg.Gateway.Backend.ConnectTimeout = 300 * time.Millisecond

	srv, err := New(cfg, WithLogOutput(io.Discard))
	require.NoError(t, err)

	err = srv.Start()
	require.Error(t, err)
	assert.ErrorIs(t, err, client.ErrNotReady)
	assert.Equal(t, StateFailed, srv.State())

	require.NoError(t, srv.Shutdown())
	assert.Equal(t, StateStopped, srv.State())
}

func TestServer_BackendNotRequired(t *testing.T) {
	cfg, ca := testConfig(t)
	cfg.Protocols.GRPC = false
	cfg.Gateway.Backend.Address = "127.0.0.1:1"
	cfg.Gateway.Backend.ConnectTimeout = 300 * time.Millisecond
	cfg.Gateway.Backend.RequireReady = false
	srv := startServer(t, cfg)

	assert.Equal(t, StateRunning, srv.State())

	base := "https://" + srv.RESTServer().Addr()
	code, _ := do(t, gatewayClient(ca), http.MethodGet, base+"/health/ready", "")
	assert.Equal(t, http.StatusServiceUnavailable, code)

	code, _ = do(t, gatewayClient(ca), http.MethodGet, base+"/health/live", "")
	assert.Equal(t, http.StatusOK, code)
}

func TestServer_Metrics(t *testing.T) {
	cfg, _ := testConfig(t)
	cfg.Metrics.Enabled = true
	srv := startServer(t, cfg)

	require.NotEmpty(t, srv.MetricsAddr())

	resp, err := http.Get("http://" + srv.MetricsAddr() + cfg.Metrics.Path)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_HTTP3(t *testing.T) {
	cfg, ca := testConfig(t)
	cfg.Protocols.HTTP3 = true
	srv := startServer(t, cfg)

	require.NotNil(t, srv.QUICServer())

	tr := &http3.RoundTripper{TLSClientConfig: &tls.Config{
		RootCAs:    ca.CertPool(),
		ServerName: "rest-api",
	}}
	defer tr.Close()
	c := &http.Client{Transport: tr, Timeout: 10 * time.Second}

	base := "https://" + srv.QUICServer().Addr()
	code, _ := do(t, c, http.MethodPost, base+"/store", `{"key":"h3","value":"quic"}`)
	assert.Equal(t, http.StatusOK, code)

	code, body := do(t, c, http.MethodGet, base+"/load", `{"key":"h3"}`)
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"key":"h3","value":"quic"}`, body)
}

func TestServer_ShutdownBeforeStart(t *testing.T) {
	cfg, _ := testConfig(t)
	srv, err := New(cfg, WithLogOutput(io.Discard))
	require.NoError(t, err)

	require.NoError(t, srv.Shutdown())
	assert.Equal(t, StateStopped, srv.State())
	assert.Error(t, srv.Start())
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestServer_ReloadLogging(t *testing.T) {
	cfg, _ := testConfig(t)
	out := &syncBuffer{}
	srv, err := New(cfg, WithLogOutput(out))
	require.NoError(t, err)

	next := *cfg
	next.Server.GRPCPort, next.Server.RESTPort = 3001, 3000
	next.Logging.Level = "debug"
	require.NoError(t, srv.Reload(&next))
	assert.Equal(t, "debug", srv.config.Logging.Level)
	assert.NotContains(t, out.String(), "Lifecycle transition")

	require.NoError(t, srv.Shutdown())
	assert.Contains(t, out.String(), "Lifecycle transition")
}

func TestServer_ReloadRejectsInvalid(t *testing.T) {
	cfg, _ := testConfig(t)
	srv, err := New(cfg, WithLogOutput(io.Discard))
	require.NoError(t, err)

	next := *cfg
	next.Server.GRPCPort, next.Server.RESTPort = 3001, 3000
	next.Logging.Level = "loud"
	err = srv.Reload(&next)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
	assert.Equal(t, "info", srv.config.Logging.Level)
}

func TestSwapLogger_WithFollowsSwap(t *testing.T) {
	first := &syncBuffer{}
	second := &syncBuffer{}

	newLogger := func(w io.Writer) logging.Logger {
		l, err := logging.New(&logging.Config{Level: "info", Format: "json", Output: w})
		require.NoError(t, err)
		return l
	}

	root := newSwapLogger(newLogger(first))
	child := root.With(logging.String("component", "gateway"))

	child.Info("before")
	root.swap(newLogger(second))
	child.Info("after")

	assert.Contains(t, first.String(), "before")
	assert.NotContains(t, first.String(), "after")
	assert.Contains(t, second.String(), "after")
	assert.Contains(t, second.String(), `"component":"gateway"`)
}

func TestLoopbackHost(t *testing.T) {
	assert.Equal(t, "localhost", loopbackHost(""))
	assert.Equal(t, "localhost", loopbackHost("::"))
	assert.Equal(t, "localhost", loopbackHost("0.0.0.0"))
	assert.Equal(t, "127.0.0.1", loopbackHost("127.0.0.1"))
	assert.Equal(t, "grpc-store", loopbackHost("grpc-store"))
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	cfg, _ := testConfig(t)
	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() { errCh <- Run(ctx, cfg, WithLogOutput(io.Discard)) }()

	time.Sleep(200 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not return")
	}
}

func TestRun_StartupFailure(t *testing.T) {
	cfg, _ := testConfig(t)
	cfg.Protocols.GRPC = false
	cfg.Gateway.Backend.Address = "127.0.0.1:1"
	cfg.Gateway.Backend.ConnectTimeout = 200 * time.Millisecond

	err := Run(context.Background(), cfg, WithLogOutput(io.Discard))
	assert.ErrorIs(t, err, client.ErrNotReady)
}
