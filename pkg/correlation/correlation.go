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

// Package correlation carries a per-request identifier from the gateway's
// HTTP edge through the backend RPC so log lines on both tiers can be joined.
package correlation

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"google.golang.org/grpc/metadata"
)

type contextKey struct{}

const (
	// RequestIDHeader is the alternate HTTP header accepted on input.
	RequestIDHeader = "X-Request-ID"

	// CorrelationIDHeader is the HTTP header read and echoed by the gateway.
	CorrelationIDHeader = "X-Correlation-ID"

	// MetadataKey is the gRPC metadata key carrying the ID between tiers.
	MetadataKey = "x-correlation-id"

	// RequestIDMetadataKey is the alternate gRPC metadata key accepted on input.
	RequestIDMetadataKey = "x-request-id"

	// MaxIDLength bounds a caller-supplied ID.
	MaxIDLength = 128
)

// Valid reports whether id can be forwarded as gRPC metadata: non-empty,
// at most MaxIDLength bytes, printable ASCII only.
func Valid(id string) bool {
	if id == "" || len(id) > MaxIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x20 || id[i] > 0x7e {
			return false
		}
	}
	return true
}

// WithCorrelationID returns a copy of ctx carrying id.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, contextKey{}, id)
}

// GetCorrelationID returns the ID stored in ctx, or "".
func GetCorrelationID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(contextKey{}).(string); ok {
		return id
	}
	return ""
}

// NewID generates a random UUID v4.
func NewID() string {
	return uuid.New().String()
}

// FromHeader returns the ID supplied by an HTTP client, preferring
// X-Correlation-ID over X-Request-ID, or generates a new one. Values that
// fail Valid are ignored.
func FromHeader(h http.Header) string {
	if id := h.Get(CorrelationIDHeader); Valid(id) {
		return id
	}
	if id := h.Get(RequestIDHeader); Valid(id) {
		return id
	}
	return NewID()
}

// FromIncomingContext returns the ID sent by an RPC caller, or generates one.
func FromIncomingContext(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		for _, key := range []string{MetadataKey, RequestIDMetadataKey} {
			if values := md.Get(key); len(values) > 0 && Valid(values[0]) {
				return values[0]
			}
		}
	}
	return NewID()
}

// AppendToOutgoingContext forwards the ID stored in ctx, if any, as gRPC
// metadata on outbound calls.
func AppendToOutgoingContext(ctx context.Context) context.Context {
	id := GetCorrelationID(ctx)
	if id == "" {
		return ctx
	}
	return metadata.AppendToOutgoingContext(ctx, MetadataKey, id)
}
