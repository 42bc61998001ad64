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

package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestHTTPMiddlewareStatusCodes(t *testing.T) {
	Enable()

	tests := []struct {
		name       string
		statusCode int
		label      string
	}{
		{"200 OK", http.StatusOK, "200"},
		{"400 Bad Request", http.StatusBadRequest, "400"},
		{"404 Not Found", http.StatusNotFound, "404"},
		{"503 Service Unavailable", http.StatusServiceUnavailable, "503"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			HTTPRequestsTotal.Reset()

			handler := HTTPMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
			}))

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/store", nil))

			if rec.Code != tt.statusCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.statusCode)
			}
			if got := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues(http.MethodPost, tt.label)); got != 1 {
				t.Errorf("requests_total{%s} = %v, want 1", tt.label, got)
			}
		})
	}
}

func TestHTTPMiddlewareImplicitOK(t *testing.T) {
	Enable()
	HTTPRequestsTotal.Reset()

	handler := HTTPMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"key":"k","value":"v"}`))
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/load", nil))

	if got := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues(http.MethodGet, "200")); got != 1 {
		t.Errorf("requests_total{200} = %v, want 1", got)
	}
}

func TestHTTPMiddlewareWhenDisabled(t *testing.T) {
	HTTPRequestsTotal.Reset()
	Disable()
	defer Enable()

	called := false
	handler := HTTPMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/load", nil))

	if !called {
		t.Error("handler was not called")
	}
	if got := testutil.CollectAndCount(HTTPRequestsTotal); got != 0 {
		t.Errorf("series = %d, want 0", got)
	}
}

func TestResponseWriterFirstStatusWins(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: rec, statusCode: http.StatusOK}

	rw.WriteHeader(http.StatusNotFound)
	rw.WriteHeader(http.StatusInternalServerError)

	if rw.statusCode != http.StatusNotFound {
		t.Errorf("statusCode = %d, want 404", rw.statusCode)
	}
	if rw.Unwrap() != rec {
		t.Error("Unwrap() should return the wrapped writer")
	}
}

func TestGRPCUnaryServerInterceptor(t *testing.T) {
	Enable()
	GRPCRequestsTotal.Reset()

	interceptor := GRPCUnaryServerInterceptor()
	info := &grpc.UnaryServerInfo{FullMethod: "/kvstore.v1.KeyValueStorage/LoadKeyValue"}

	_, err := interceptor(context.Background(), nil, info, func(ctx context.Context, req any) (any, error) {
		return nil, status.Error(codes.NotFound, "missing")
	})
	if status.Code(err) != codes.NotFound {
		t.Fatalf("error code = %v, want NotFound", status.Code(err))
	}

	resp, err := interceptor(context.Background(), nil, info, func(ctx context.Context, req any) (any, error) {
		return "ok", nil
	})
	if err != nil || resp != "ok" {
		t.Fatalf("resp = %v, err = %v", resp, err)
	}

	if got := testutil.ToFloat64(GRPCRequestsTotal.WithLabelValues(info.FullMethod, "NotFound")); got != 1 {
		t.Errorf("NotFound count = %v, want 1", got)
	}
	if got := testutil.ToFloat64(GRPCRequestsTotal.WithLabelValues(info.FullMethod, "OK")); got != 1 {
		t.Errorf("OK count = %v, want 1", got)
	}
}

func TestGRPCStreamServerInterceptor(t *testing.T) {
	Enable()
	GRPCRequestsTotal.Reset()

	interceptor := GRPCStreamServerInterceptor()
	info := &grpc.StreamServerInfo{FullMethod: "/grpc.health.v1.Health/Watch"}

	err := interceptor(nil, nil, info, func(srv any, stream grpc.ServerStream) error {
		return errors.New("plain error")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if got := testutil.ToFloat64(GRPCRequestsTotal.WithLabelValues(info.FullMethod, "Unknown")); got != 1 {
		t.Errorf("Unknown count = %v, want 1", got)
	}
}

func TestGRPCUnaryClientInterceptor(t *testing.T) {
	Enable()
	BackendCallsTotal.Reset()

	interceptor := GRPCUnaryClientInterceptor()
	method := "/kvstore.v1.KeyValueStorage/StoreKeyValue"

	err := interceptor(context.Background(), method, nil, nil, nil,
		func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
			return status.Error(codes.Unavailable, "connection refused")
		})
	if status.Code(err) != codes.Unavailable {
		t.Fatalf("code = %v, want Unavailable", status.Code(err))
	}
	if got := testutil.ToFloat64(BackendCallsTotal.WithLabelValues(method, "Unavailable")); got != 1 {
		t.Errorf("backend calls = %v, want 1", got)
	}
}
