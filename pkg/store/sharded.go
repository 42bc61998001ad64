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

package store

import "github.com/cespare/xxhash/v2"

// Sharded partitions the key space across independent Memory stores so
// writers to different shards do not contend on one lock. Each shard keeps
// the single-writer discipline, so per-key guarantees are unchanged.
type Sharded struct {
	shards []*Memory
}

// NewSharded creates a store with n shards. n below 1 is treated as 1.
func NewSharded(n int) *Sharded {
	if n < 1 {
		n = 1
	}
	shards := make([]*Memory, n)
	for i := range shards {
		shards[i] = NewMemory()
	}
	return &Sharded{shards: shards}
}

func (s *Sharded) shard(key string) *Memory {
	return s.shards[xxhash.Sum64String(key)%uint64(len(s.shards))]
}

// Put stores value under key in the shard owning key.
func (s *Sharded) Put(key, value string) {
	s.shard(key).Put(key, value)
}

// Get retrieves the value for key from the shard owning it.
func (s *Sharded) Get(key string) (string, error) {
	return s.shard(key).Get(key)
}

// Len sums the entry counts of all shards. The result is not a consistent
// snapshot while writers are active.
func (s *Sharded) Len() int {
	total := 0
	for _, m := range s.shards {
		total += m.Len()
	}
	return total
}

// ShardCount returns the number of shards.
func (s *Sharded) ShardCount() int {
	return len(s.shards)
}
