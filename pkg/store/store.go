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

// Package store provides the in-memory key-value engine behind the storage
// service. Entries are flat string pairs, last writer wins, and nothing is
// persisted across restarts.
package store

import "errors"

// ErrNotFound is returned by Get when no entry exists under the key.
var ErrNotFound = errors.New("store: no entry under provided key")

// Store is a concurrent mapping from string keys to string values.
//
// A Put that has returned is visible to every Get that starts after it.
// A Get racing a Put on the same key observes either the old or the new
// value, never a partial one.
type Store interface {
	// Put inserts or overwrites the entry for key. It never fails.
	Put(key, value string)

	// Get returns the current value for key or ErrNotFound.
	Get(key string) (string, error)

	// Len returns the number of entries.
	Len() int
}

// New returns a single-lock Memory store when shards is 1 or less and a
// Sharded store otherwise.
func New(shards int) Store {
	if shards <= 1 {
		return NewMemory()
	}
	return NewSharded(shards)
}
