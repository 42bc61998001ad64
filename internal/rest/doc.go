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

// Package rest implements the HTTP gateway in front of the storage service.
//
// Routes:
//
//	POST /store    body {"key": string, "value": string}
//	GET  /load     body {"key": string}, replies {"key": string, "value": string}
//	GET  /health   aggregate health
//	GET  /health/live, /health/ready, /health/startup
//
// /load reads its key from the JSON body, not the query string. Bodies that
// fail to decode, or lack a field, are rejected with 400 before the backend
// is called. Backend failures are translated with HTTPStatusFromCode and
// carry no body.
package rest
