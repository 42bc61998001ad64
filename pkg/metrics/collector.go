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

package metrics

import (
	"context"
	"runtime"
	"sync"
	"time"
)

// Collector refreshes the gauges nothing else updates: runtime statistics,
// uptime and, when a backend probe is configured, BackendHealthy.
type Collector struct {
	interval     time.Duration
	probe        func(ctx context.Context) error
	probeTimeout time.Duration
	started      time.Time

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// CollectorOption configures a Collector.
type CollectorOption func(*Collector)

// WithBackendProbe makes every tick run probe and record the result in
// BackendHealthy. A positive timeout bounds each probe.
func WithBackendProbe(probe func(ctx context.Context) error, timeout time.Duration) CollectorOption {
	return func(c *Collector) {
		c.probe = probe
		if timeout > 0 {
			c.probeTimeout = timeout
		}
	}
}

// NewCollector creates a collector sampling every interval.
func NewCollector(interval time.Duration, opts ...CollectorOption) *Collector {
	c := &Collector{
		interval:     interval,
		probeTimeout: 2 * time.Second,
		started:      time.Now(),
		stop:         make(chan struct{}),
		done:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run samples immediately and then on every tick until ctx ends or Stop
// is called.
func (c *Collector) Run(ctx context.Context) {
	defer close(c.done)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.sample(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.stop:
			return
		case <-ticker.C:
			c.sample(ctx)
		}
	}
}

// Stop ends Run and waits for it to return. Safe to call more than once.
func (c *Collector) Stop() {
	c.stopOnce.Do(func() { close(c.stop) })
	<-c.done
}

func (c *Collector) sample(ctx context.Context) {
	if !IsEnabled() {
		return
	}
	sampleRuntime()
	ServerUptime.Set(time.Since(c.started).Seconds())

	if c.probe != nil {
		probeCtx, cancel := context.WithTimeout(ctx, c.probeTimeout)
		SetBackendHealth(c.probe(probeCtx) == nil)
		cancel()
	}
}

func sampleRuntime() {
	Goroutines.Set(float64(runtime.NumGoroutine()))

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	MemoryAllocBytes.Set(float64(ms.Alloc))
	MemorySysBytes.Set(float64(ms.Sys))
	GCPauseTotalSeconds.Set(float64(ms.PauseTotalNs) / float64(time.Second))
}

// StartCollector creates a collector and runs it in a goroutine.
func StartCollector(ctx context.Context, interval time.Duration, opts ...CollectorOption) *Collector {
	c := NewCollector(interval, opts...)
	go c.Run(ctx)
	return c
}
