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
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// statusTable maps every gRPC code to the HTTP status the gateway returns.
var statusTable = [...]int{
	codes.OK:                 200,
	codes.Canceled:           408,
	codes.Unknown:            500,
	codes.InvalidArgument:    400,
	codes.DeadlineExceeded:   504,
	codes.NotFound:           404,
	codes.AlreadyExists:      409,
	codes.PermissionDenied:   403,
	codes.ResourceExhausted:  429,
	codes.FailedPrecondition: 412,
	codes.Aborted:            409,
	codes.OutOfRange:         400,
	codes.Unimplemented:      501,
	codes.Internal:           500,
	codes.Unavailable:        503,
	codes.DataLoss:           500,
	codes.Unauthenticated:    401,
}

// HTTPStatusFromCode returns the HTTP status for c. Codes outside the
// table map to 500.
func HTTPStatusFromCode(c codes.Code) int {
	if int(c) < len(statusTable) {
		return statusTable[c]
	}
	return 500
}

// HTTPStatusFromError maps an RPC error. Errors that carry no gRPC status
// are treated as codes.Unknown.
func HTTPStatusFromError(err error) int {
	return HTTPStatusFromCode(status.Code(err))
}
