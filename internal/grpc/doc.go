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

// Package grpc implements the storage service: the KeyValueStorage RPCs
// over the in-memory store, served on a TLS listener.
//
// Each RPC runs on its own goroutine. StoreKeyValue never fails once it
// reaches the store; LoadKeyValue fails with codes.NotFound when the key
// has no entry. The server also registers grpc.health.v1.Health and
// reports SERVING for kvstore.v1.KeyValueStorage until it is stopped.
//
// Example usage:
//
//	srv, err := grpc.NewServer(&grpc.ServerConfig{
//	    Host:          "::",
//	    Port:          3001,
//	    TLSConfig:     tlsConfig,
//	    Store:         store.NewMemory(),
//	    EnableLogging: true,
//	})
//	if err := srv.Start(); err != nil {
//	    log.Fatal(err)
//	}
package grpc
