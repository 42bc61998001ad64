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

package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"google.golang.org/grpc/status"

	"github.com/jeremyhahn/go-kvgateway/pkg/kvpb"
	"github.com/jeremyhahn/go-kvgateway/pkg/logging"
	"github.com/jeremyhahn/go-kvgateway/pkg/metrics"
)

// DefaultMaxBodyBytes bounds request bodies when no limit is configured.
const DefaultMaxBodyBytes int64 = 1 << 20

var errTrailingData = errors.New("unexpected data after JSON body")

// Handlers serves the key-value routes against a storage backend.
type Handlers struct {
	backend      kvpb.KeyValueStorageClient
	logger       logging.Logger
	maxBodyBytes int64
}

// NewHandlers creates the route handlers.
func NewHandlers(backend kvpb.KeyValueStorageClient, log logging.Logger, maxBodyBytes int64) *Handlers {
	if log == nil {
		log = logging.NewNop()
	}
	if maxBodyBytes <= 0 {
		maxBodyBytes = DefaultMaxBodyBytes
	}
	return &Handlers{
		backend:      backend,
		logger:       log,
		maxBodyBytes: maxBodyBytes,
	}
}

// StoreHandler handles POST /store.
func (h *Handlers) StoreHandler(w http.ResponseWriter, r *http.Request) {
	var req StoreRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Key == nil {
		writeErrorWithMessage(w, ErrInvalidRequest, "missing field `key`", http.StatusBadRequest)
		return
	}
	if req.Value == nil {
		writeErrorWithMessage(w, ErrInvalidRequest, "missing field `value`", http.StatusBadRequest)
		return
	}

	_, err := h.backend.StoreKeyValue(r.Context(), &kvpb.StoreRequest{Key: *req.Key, Value: *req.Value})
	if err != nil {
		h.writeRPCError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// LoadHandler handles GET /load. The key is read from the JSON body.
func (h *Handlers) LoadHandler(w http.ResponseWriter, r *http.Request) {
	var req LoadRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Key == nil {
		writeErrorWithMessage(w, ErrInvalidRequest, "missing field `key`", http.StatusBadRequest)
		return
	}

	reply, err := h.backend.LoadKeyValue(r.Context(), &kvpb.LoadRequest{Key: *req.Key})
	if err != nil {
		h.writeRPCError(w, r, err)
		return
	}

	writeJSON(w, LoadResponse{Key: reply.GetKey(), Value: reply.GetValue()}, http.StatusOK)
}

// decode reads exactly one JSON value from the body into v. It writes the
// error response itself and reports whether the handler may continue.
func (h *Handlers) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))

	err := dec.Decode(v)
	if err == nil {
		_, tokErr := dec.Token()
		switch {
		case tokErr == io.EOF:
			return true
		case tokErr == nil:
			err = errTrailingData
		default:
			err = tokErr
		}
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeErrorWithMessage(w, ErrBodyTooLarge,
			fmt.Sprintf("body exceeds %d bytes", tooLarge.Limit), http.StatusRequestEntityTooLarge)
		return false
	}

	h.logger.DebugContext(r.Context(), "Rejected request body",
		logging.String("path", r.URL.Path),
		logging.Error(err))
	writeErrorWithMessage(w, ErrInvalidRequest, decodeMessage(err), http.StatusBadRequest)
	return false
}

func decodeMessage(err error) string {
	if errors.Is(err, io.EOF) {
		return "request body is empty"
	}
	return err.Error()
}

// writeRPCError translates a backend failure to its HTTP status with an
// empty body.
func (h *Handlers) writeRPCError(w http.ResponseWriter, r *http.Request, err error) {
	st := status.Convert(err)
	code := HTTPStatusFromCode(st.Code())

	metrics.RecordMappedError(st.Code().String(), strconv.Itoa(code))
	h.logger.WarnContext(r.Context(), "Backend call failed",
		logging.String("path", r.URL.Path),
		logging.String("rpc_code", st.Code().String()),
		logging.String("rpc_message", st.Message()),
		logging.Int("status", code))

	w.WriteHeader(code)
}
