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
	"errors"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/jeremyhahn/go-kvgateway/pkg/kvpb"
	"github.com/jeremyhahn/go-kvgateway/pkg/logging"
	"github.com/jeremyhahn/go-kvgateway/pkg/metrics"
	"github.com/jeremyhahn/go-kvgateway/pkg/store"
)

// NotFoundMessage is the status message returned for a missing key.
const NotFoundMessage = "There is no entry under provided key"

// Service implements kvpb.KeyValueStorageServer on top of a store.Store.
type Service struct {
	kvpb.UnimplementedKeyValueStorageServer

	store  store.Store
	logger logging.Logger
}

// NewService creates a storage service. A nil store gets a fresh
// single-lock in-memory store.
func NewService(s store.Store, log logging.Logger) *Service {
	if s == nil {
		s = store.NewMemory()
	}
	if log == nil {
		log = logging.NewNop()
	}
	return &Service{store: s, logger: log}
}

// Store returns the backing store.
func (s *Service) Store() store.Store {
	return s.store
}

// StoreKeyValue inserts or overwrites the entry for the request key.
func (s *Service) StoreKeyValue(ctx context.Context, req *kvpb.StoreRequest) (*emptypb.Empty, error) {
	if err := ctx.Err(); err != nil {
		return nil, status.FromContextError(err).Err()
	}

	start := time.Now()
	s.store.Put(req.GetKey(), req.GetValue())
	metrics.RecordOperation(metrics.OpStore, metrics.StatusSuccess, time.Since(start).Seconds())

	return &emptypb.Empty{}, nil
}

// LoadKeyValue returns the entry for the request key, or codes.NotFound.
func (s *Service) LoadKeyValue(ctx context.Context, req *kvpb.LoadRequest) (*kvpb.LoadReply, error) {
	if err := ctx.Err(); err != nil {
		return nil, status.FromContextError(err).Err()
	}

	start := time.Now()
	key := req.GetKey()
	value, err := s.store.Get(key)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			metrics.RecordOperation(metrics.OpLoad, metrics.StatusNotFound, time.Since(start).Seconds())
			s.logger.DebugContext(ctx, "Key not found", logging.String("key", key))
			return nil, status.Error(codes.NotFound, NotFoundMessage)
		}
		metrics.RecordOperation(metrics.OpLoad, metrics.StatusError, time.Since(start).Seconds())
		metrics.RecordError(metrics.OpLoad, "store")
		return nil, status.Errorf(codes.Internal, "failed to load key: %v", err)
	}

	metrics.RecordOperation(metrics.OpLoad, metrics.StatusSuccess, time.Since(start).Seconds())
	return &kvpb.LoadReply{Key: key, Value: value}, nil
}
