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
	"net/http"

	"github.com/jeremyhahn/go-kvgateway/pkg/health"
)

// HealthHandler handles GET /health: liveness plus every readiness check.
func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if s.health == nil {
		writeJSON(w, HealthCheckResponse{Status: health.StatusHealthy}, http.StatusOK)
		return
	}

	results := append([]health.CheckResult{s.health.Live(r.Context())}, s.health.Ready(r.Context())...)
	overall := health.AggregateStatus(results)
	writeJSON(w, HealthCheckResponse{Status: overall, Checks: results}, statusCodeFor(overall))
}

// LivenessHandler handles GET /health/live requests.
//
// Liveness only fails if the process is in an unrecoverable state; a lost
// backend does not make the gateway dead.
func (s *Server) LivenessHandler(w http.ResponseWriter, r *http.Request) {
	if s.health == nil {
		writeJSON(w, HealthCheckResponse{Status: health.StatusHealthy, Message: "Service is alive"}, http.StatusOK)
		return
	}

	result := s.health.Live(r.Context())
	writeJSON(w, HealthCheckResponse{Status: result.Status, Message: result.Message}, statusCodeFor(result.Status))
}

// ReadinessHandler handles GET /health/ready requests. It fails while the
// storage service is unreachable.
func (s *Server) ReadinessHandler(w http.ResponseWriter, r *http.Request) {
	if s.health == nil {
		writeJSON(w, HealthCheckResponse{Status: health.StatusHealthy, Message: "Service is ready"}, http.StatusOK)
		return
	}

	results := s.health.Ready(r.Context())
	overall := health.AggregateStatus(results)

	resp := HealthCheckResponse{Status: overall, Checks: results}
	switch overall {
	case health.StatusHealthy:
		resp.Message = "All checks passed"
	case health.StatusDegraded:
		resp.Message = "Service is degraded"
	case health.StatusUnhealthy:
		resp.Message = "One or more checks failed"
	}

	writeJSON(w, resp, statusCodeFor(overall))
}

// StartupHandler handles GET /health/startup requests.
func (s *Server) StartupHandler(w http.ResponseWriter, r *http.Request) {
	if s.health == nil {
		writeJSON(w, HealthCheckResponse{Status: health.StatusHealthy, Message: "Service has started"}, http.StatusOK)
		return
	}

	result := s.health.Startup(r.Context())
	writeJSON(w, HealthCheckResponse{Status: result.Status, Message: result.Message}, statusCodeFor(result.Status))
}

// statusCodeFor serves degraded components with 200.
func statusCodeFor(s health.Status) int {
	if s == health.StatusUnhealthy {
		return http.StatusServiceUnavailable
	}
	return http.StatusOK
}
