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

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	"github.com/jeremyhahn/go-kvgateway/pkg/correlation"
	"github.com/jeremyhahn/go-kvgateway/pkg/logging"
)

// correlationUnaryInterceptor takes the caller's x-correlation-id (or
// x-request-id), generating one when absent, stores it in the handler
// context and echoes it in the response header.
func (s *Server) correlationUnaryInterceptor(
	ctx context.Context,
	req any,
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (any, error) {
	id := correlation.FromIncomingContext(ctx)
	ctx = correlation.WithCorrelationID(ctx, id)

	if err := grpc.SetHeader(ctx, metadata.Pairs(correlation.MetadataKey, id)); err != nil {
		s.logger.Warn("Failed to set correlation ID in response metadata",
			logging.String("method", info.FullMethod),
			logging.Error(err))
	}

	return handler(ctx, req)
}

func (s *Server) correlationStreamInterceptor(
	srv any,
	ss grpc.ServerStream,
	info *grpc.StreamServerInfo,
	handler grpc.StreamHandler,
) error {
	id := correlation.FromIncomingContext(ss.Context())

	if err := ss.SetHeader(metadata.Pairs(correlation.MetadataKey, id)); err != nil {
		s.logger.Warn("Failed to set correlation ID in stream response metadata",
			logging.String("method", info.FullMethod),
			logging.Error(err))
	}

	return handler(srv, &correlatedServerStream{
		ServerStream: ss,
		ctx:          correlation.WithCorrelationID(ss.Context(), id),
	})
}

// correlatedServerStream wraps ServerStream with a correlation-enabled context
type correlatedServerStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *correlatedServerStream) Context() context.Context {
	return s.ctx
}
