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
	"net/http"
	"strconv"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

const (
	ProtocolHTTP  = "http"
	ProtocolHTTP3 = "http3"
	ProtocolGRPC  = "grpc"
)

// HTTPMiddleware records request count, duration and in-flight requests.
//
//	router := chi.NewRouter()
//	router.Use(metrics.HTTPMiddleware)
func HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !IsEnabled() {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		protocol := ProtocolHTTP
		if r.ProtoMajor == 3 {
			protocol = ProtocolHTTP3
		}
		IncrementActiveRequests(protocol)
		defer DecrementActiveRequests(protocol)

		wrapper := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapper, r)

		RecordHTTPRequest(r.Method, strconv.Itoa(wrapper.statusCode), time.Since(start).Seconds())
	})
}

// responseWriter captures the status code written by the handler.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	if !rw.written {
		rw.statusCode = statusCode
		rw.written = true
	}
	rw.ResponseWriter.WriteHeader(statusCode)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// GRPCUnaryServerInterceptor records served RPCs.
func GRPCUnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		if !IsEnabled() {
			return handler(ctx, req)
		}

		start := time.Now()
		IncrementActiveRequests(ProtocolGRPC)
		defer DecrementActiveRequests(ProtocolGRPC)

		resp, err := handler(ctx, req)

		RecordGRPCRequest(info.FullMethod, status.Code(err).String(), time.Since(start).Seconds())
		return resp, err
	}
}

// GRPCStreamServerInterceptor records streaming RPCs such as health Watch.
func GRPCStreamServerInterceptor() grpc.StreamServerInterceptor {
	return func(
		srv any,
		ss grpc.ServerStream,
		info *grpc.StreamServerInfo,
		handler grpc.StreamHandler,
	) error {
		if !IsEnabled() {
			return handler(srv, ss)
		}

		start := time.Now()
		IncrementActiveRequests(ProtocolGRPC)
		defer DecrementActiveRequests(ProtocolGRPC)

		err := handler(srv, ss)

		RecordGRPCRequest(info.FullMethod, status.Code(err).String(), time.Since(start).Seconds())
		return err
	}
}

// GRPCUnaryClientInterceptor records calls made over a client channel.
func GRPCUnaryClientInterceptor() grpc.UnaryClientInterceptor {
	return func(
		ctx context.Context,
		method string,
		req, reply any,
		cc *grpc.ClientConn,
		invoker grpc.UnaryInvoker,
		opts ...grpc.CallOption,
	) error {
		if !IsEnabled() {
			return invoker(ctx, method, req, reply, cc, opts...)
		}

		start := time.Now()
		err := invoker(ctx, method, req, reply, cc, opts...)
		RecordBackendCall(method, status.Code(err).String(), time.Since(start).Seconds())
		return err
	}
}
