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

// Package metrics provides Prometheus instrumentation for the storage service
// and the gateway: store operations, HTTP and gRPC request traffic, calls
// from the gateway to its backend, and process resource gauges.
package metrics

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	// Namespace is the Prometheus namespace for all metrics
	Namespace = "kvgateway"

	// Label names
	LabelOperation  = "operation"
	LabelStatus     = "status"
	LabelErrorType  = "error_type"
	LabelProtocol   = "protocol"
	LabelMethod     = "method"
	LabelStatusCode = "status_code"
	LabelRPCCode    = "rpc_code"

	// Status values
	StatusSuccess  = "success"
	StatusError    = "error"
	StatusNotFound = "not_found"

	// Operation names
	OpStore = "store"
	OpLoad  = "load"
)

var (
	// OperationsTotal counts store engine operations by type and status.
	OperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "operations_total",
			Help:      "Total number of store operations by type and status",
		},
		[]string{LabelOperation, LabelStatus},
	)

	// OperationDuration tracks store engine operation latency. The engine is
	// in memory, so buckets start in the microseconds.
	OperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "operation_duration_seconds",
			Help:      "Duration of store operations in seconds",
			Buckets:   []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05, .1},
		},
		[]string{LabelOperation},
	)

	// ErrorsTotal counts failed operations by error type (e.g. "not_found").
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "errors_total",
			Help:      "Total number of errors by operation and error type",
		},
		[]string{LabelOperation, LabelErrorType},
	)

	// ActiveRequests tracks in-flight requests by protocol.
	ActiveRequests = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "active_requests",
			Help:      "Number of in-flight requests by protocol",
		},
		[]string{LabelProtocol},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by method and status code",
		},
		[]string{LabelMethod, LabelStatusCode},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{LabelMethod},
	)

	GRPCRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "grpc",
			Name:      "requests_total",
			Help:      "Total number of gRPC requests by method and status code",
		},
		[]string{LabelMethod, LabelStatusCode},
	)

	GRPCRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "grpc",
			Name:      "request_duration_seconds",
			Help:      "Duration of gRPC requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{LabelMethod},
	)

	// BackendCallsTotal counts RPCs issued by the gateway to the storage service.
	BackendCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "backend",
			Name:      "calls_total",
			Help:      "Total number of calls from the gateway to the storage service by method and status code",
		},
		[]string{LabelMethod, LabelStatusCode},
	)

	BackendCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "backend",
			Name:      "call_duration_seconds",
			Help:      "Duration of calls from the gateway to the storage service in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{LabelMethod},
	)

	// MappedErrorsTotal counts backend failures translated to HTTP responses.
	MappedErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "gateway",
			Name:      "mapped_errors_total",
			Help:      "Backend RPC failures translated to HTTP status codes",
		},
		[]string{LabelRPCCode, LabelStatusCode},
	)

	// BackendHealthy is 1 while the gateway's backend channel passes health checks.
	BackendHealthy = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: "backend",
			Name:      "healthy",
			Help:      "Indicates whether the storage backend is healthy (1) or unhealthy (0)",
		},
	)

	// StoreEntries reports the entry count of the store registered with
	// SetEntriesSource.
	StoreEntries = promauto.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "store_entries",
			Help:      "Number of entries held by the in-memory store",
		},
		func() float64 {
			if fn := entriesSource.Load(); fn != nil {
				return float64((*fn)())
			}
			return 0
		},
	)

	// Goroutines is updated periodically by the resource collector.
	Goroutines = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "goroutines",
			Help:      "Current number of goroutines",
		},
	)

	MemoryAllocBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "memory_alloc_bytes",
			Help:      "Current bytes of allocated heap objects",
		},
	)

	MemorySysBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "memory_sys_bytes",
			Help:      "Total bytes of memory obtained from the OS",
		},
	)

	GCPauseTotalSeconds = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "gc_pause_total_seconds",
			Help:      "Cumulative time spent in GC stop-the-world pauses",
		},
	)

	ServerUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "server_uptime_seconds",
			Help:      "Server uptime in seconds since startup",
		},
	)

	enabled       atomic.Bool
	entriesSource atomic.Pointer[func() int]
)

func init() {
	enabled.Store(true)
}

// RecordOperation records a store operation with its duration in seconds.
//
//	start := time.Now()
//	value, err := s.Get(key)
//	RecordOperation(OpLoad, statusOf(err), time.Since(start).Seconds())
func RecordOperation(operation, status string, duration float64) {
	if !enabled.Load() {
		return
	}
	OperationsTotal.WithLabelValues(operation, status).Inc()
	OperationDuration.WithLabelValues(operation).Observe(duration)
}

// RecordError records an error of errorType during operation.
func RecordError(operation, errorType string) {
	if !enabled.Load() {
		return
	}
	ErrorsTotal.WithLabelValues(operation, errorType).Inc()
}

// RecordHTTPRequest records an HTTP request with its duration and status.
func RecordHTTPRequest(method, statusCode string, duration float64) {
	if !enabled.Load() {
		return
	}
	HTTPRequestsTotal.WithLabelValues(method, statusCode).Inc()
	HTTPRequestDuration.WithLabelValues(method).Observe(duration)
}

// RecordGRPCRequest records a served gRPC request with its duration and status.
func RecordGRPCRequest(method, statusCode string, duration float64) {
	if !enabled.Load() {
		return
	}
	GRPCRequestsTotal.WithLabelValues(method, statusCode).Inc()
	GRPCRequestDuration.WithLabelValues(method).Observe(duration)
}

// RecordBackendCall records an RPC issued by the gateway.
func RecordBackendCall(method, statusCode string, duration float64) {
	if !enabled.Load() {
		return
	}
	BackendCallsTotal.WithLabelValues(method, statusCode).Inc()
	BackendCallDuration.WithLabelValues(method).Observe(duration)
}

// RecordMappedError records a backend failure that the gateway translated
// into httpStatus.
func RecordMappedError(rpcCode, httpStatus string) {
	if !enabled.Load() {
		return
	}
	MappedErrorsTotal.WithLabelValues(rpcCode, httpStatus).Inc()
}

func IncrementActiveRequests(protocol string) {
	if !enabled.Load() {
		return
	}
	ActiveRequests.WithLabelValues(protocol).Inc()
}

func DecrementActiveRequests(protocol string) {
	if !enabled.Load() {
		return
	}
	ActiveRequests.WithLabelValues(protocol).Dec()
}

// SetBackendHealth sets BackendHealthy to 1 or 0.
func SetBackendHealth(healthy bool) {
	if !enabled.Load() {
		return
	}
	value := 0.0
	if healthy {
		value = 1.0
	}
	BackendHealthy.Set(value)
}

// SetEntriesSource registers the function StoreEntries reads at scrape time.
// Passing nil unregisters it.
func SetEntriesSource(fn func() int) {
	if fn == nil {
		entriesSource.Store(nil)
		return
	}
	entriesSource.Store(&fn)
}

// Enable enables metrics collection.
func Enable() {
	enabled.Store(true)
}

// Disable disables metrics collection.
func Disable() {
	enabled.Store(false)
}

// IsEnabled returns whether metrics collection is currently enabled.
func IsEnabled() bool {
	return enabled.Load()
}
