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
	"github.com/jeremyhahn/go-kvgateway/pkg/health"
)

// StoreRequest is the POST /store body. Pointer fields tell an absent
// field apart from an empty string.
type StoreRequest struct {
	Key   *string `json:"key"`
	Value *string `json:"value"`
}

// LoadRequest is the GET /load body.
type LoadRequest struct {
	Key *string `json:"key"`
}

// LoadResponse is the GET /load reply.
type LoadResponse struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// ErrorResponse is written for requests rejected by the gateway itself.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code"`
}

// HealthCheckResponse represents the response for health check endpoints.
type HealthCheckResponse struct {
	Status  health.Status        `json:"status"`
	Message string               `json:"message,omitempty"`
	Checks  []health.CheckResult `json:"checks,omitempty"`
}
