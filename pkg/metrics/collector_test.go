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
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollector_SamplesRuntime(t *testing.T) {
	Enable()
	Goroutines.Set(0)
	MemorySysBytes.Set(0)

	NewCollector(time.Hour).sample(context.Background())

	if got := testutil.ToFloat64(Goroutines); got < 1 {
		t.Errorf("goroutines = %v, want >= 1", got)
	}
	if got := testutil.ToFloat64(MemorySysBytes); got <= 0 {
		t.Errorf("memory_sys_bytes = %v, want > 0", got)
	}
}

func TestCollector_Uptime(t *testing.T) {
	Enable()
	c := NewCollector(time.Hour)
	c.started = time.Now().Add(-5 * time.Second)
	c.sample(context.Background())

	if got := testutil.ToFloat64(ServerUptime); got < 5 {
		t.Errorf("uptime = %v, want >= 5", got)
	}
}

func TestCollector_BackendProbe(t *testing.T) {
	Enable()

	var healthy atomic.Bool
	probe := func(ctx context.Context) error {
		if _, ok := ctx.Deadline(); !ok {
			t.Error("probe called without a deadline")
		}
		if healthy.Load() {
			return nil
		}
		return errors.New("unreachable")
	}
	c := NewCollector(time.Hour, WithBackendProbe(probe, time.Second))

	c.sample(context.Background())
	if got := testutil.ToFloat64(BackendHealthy); got != 0 {
		t.Errorf("backend_healthy = %v, want 0", got)
	}

	healthy.Store(true)
	c.sample(context.Background())
	if got := testutil.ToFloat64(BackendHealthy); got != 1 {
		t.Errorf("backend_healthy = %v, want 1", got)
	}
}

func TestCollector_Stop(t *testing.T) {
	c := StartCollector(context.Background(), 10*time.Millisecond)

	stopped := make(chan struct{})
	go func() {
		c.Stop()
		c.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("collector did not stop")
	}
}

func TestCollector_ParentCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	c := StartCollector(ctx, 10*time.Millisecond)
	cancel()

	select {
	case <-c.done:
	case <-time.After(time.Second):
		t.Fatal("collector did not exit after cancel")
	}
}

func TestCollector_Disabled(t *testing.T) {
	Goroutines.Set(-1)
	Disable()
	defer Enable()

	NewCollector(time.Hour).sample(context.Background())
	if got := testutil.ToFloat64(Goroutines); got != -1 {
		t.Errorf("goroutines = %v, want unchanged -1", got)
	}
}
