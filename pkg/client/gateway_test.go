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
	"encoding/json"
	"encoding/pem"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeremyhahn/go-kvgateway/pkg/correlation"
)

type recorded struct {
	method string
	path   string
	body   map[string]string
	corrID string
}

func newTestGateway(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*Gateway, chan recorded) {
	t.Helper()
	calls := make(chan recorded, 8)
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		var body map[string]string
		_ = json.Unmarshal(data, &body)
		calls <- recorded{r.Method, r.URL.Path, body, r.Header.Get(correlation.CorrelationIDHeader)}
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	caFile := filepath.Join(t.TempDir(), "ca.pem")
	caPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: srv.Certificate().Raw})
	require.NoError(t, os.WriteFile(caFile, caPEM, 0644))

	g, err := NewGateway(&GatewayConfig{
		Address:    srv.URL,
		CAFile:     caFile,
		ServerName: "example.com",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = g.Close() })
	return g, calls
}

func TestGateway_Store(t *testing.T) {
	g, calls := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	ctx := correlation.WithCorrelationID(context.Background(), "abc")
	require.NoError(t, g.Store(ctx, "key_1", "value_1"))

	call := <-calls
	assert.Equal(t, http.MethodPost, call.method)
	assert.Equal(t, "/store", call.path)
	assert.Equal(t, map[string]string{"key": "key_1", "value": "value_1"}, call.body)
	assert.Equal(t, "abc", call.corrID)
}

func TestGateway_Load(t *testing.T) {
	g, calls := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"key":"key_1","value":"value_1"}`))
	})

	reply, err := g.Load(context.Background(), "key_1")
	require.NoError(t, err)
	assert.Equal(t, "key_1", reply.GetKey())
	assert.Equal(t, "value_1", reply.GetValue())

	call := <-calls
	assert.Equal(t, http.MethodGet, call.method)
	assert.Equal(t, "/load", call.path)
	assert.Equal(t, map[string]string{"key": "key_1"}, call.body)
}

func TestGateway_Errors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		notFound bool
		message  string
	}{
		{"not found", http.StatusNotFound, "", true, ""},
		{"bad request", http.StatusBadRequest, `{"error":"Bad Request","message":"missing field key","code":400}`, false, "missing field key"},
		{"unavailable", http.StatusServiceUnavailable, "", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := g.Load(context.Background(), "k")
			require.Error(t, err)
			assert.Equal(t, tt.notFound, IsNotFound(err))

			var se *StatusError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.status, se.StatusCode)
			assert.Equal(t, tt.message, se.Message)
			assert.NotEmpty(t, se.Error())
		})
	}
}

func TestGateway_UntrustedCertificate(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	g, err := NewGateway(&GatewayConfig{Address: srv.URL})
	require.NoError(t, err)
	defer g.Close()

	assert.Error(t, g.Store(context.Background(), "k", "v"))

	insecureGW, err := NewGateway(&GatewayConfig{Address: srv.URL, InsecureSkipVerify: true})
	require.NoError(t, err)
	defer insecureGW.Close()

	assert.NoError(t, insecureGW.Store(context.Background(), "k", "v"))
}

func TestNewGateway_Config(t *testing.T) {
	_, err := NewGateway(nil)
	assert.Error(t, err)

	g, err := NewGateway(&GatewayConfig{Address: "localhost:3000/"})
	require.NoError(t, err)
	assert.Equal(t, "https://localhost:3000", g.baseURL)

	g, err = NewGateway(&GatewayConfig{Address: "http://localhost:3000", HTTP3: true})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3000", g.baseURL)
	assert.NoError(t, g.Close())

	_, err = NewGateway(&GatewayConfig{Address: "localhost:3000", CAFile: filepath.Join(t.TempDir(), "missing.pem")})
	assert.Error(t, err)
}
