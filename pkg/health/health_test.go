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

package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLive(t *testing.T) {
	c := NewChecker()
	result := c.Live(context.Background())
	assert.Equal(t, StatusHealthy, result.Status)
	assert.Equal(t, "liveness", result.Name)
}

func TestReady_NoChecks(t *testing.T) {
	results := NewChecker().Ready(context.Background())
	require.Len(t, results, 1)
	assert.Equal(t, "default", results[0].Name)
	assert.Equal(t, StatusHealthy, results[0].Status)
}

func TestReady_RunsChecksSorted(t *testing.T) {
	c := NewChecker()
	c.RegisterCheck("store", func(ctx context.Context) CheckResult {
		return CheckResult{Status: StatusHealthy}
	})
	c.RegisterCheck("backend", func(ctx context.Context) CheckResult {
		return CheckResult{Status: StatusUnhealthy, Error: "connection refused"}
	})
	c.RegisterCheck("ignored", nil)

	results := c.Ready(context.Background())
	require.Len(t, results, 2)
	assert.Equal(t, "backend", results[0].Name)
	assert.Equal(t, StatusUnhealthy, results[0].Status)
	assert.Equal(t, "store", results[1].Name)
	assert.Equal(t, StatusUnhealthy, AggregateStatus(results))
	assert.Equal(t, []string{"backend", "store"}, c.CheckNames())

	c.UnregisterCheck("backend")
	assert.Equal(t, StatusHealthy, AggregateStatus(c.Ready(context.Background())))
}

func TestStartup(t *testing.T) {
	c := NewChecker()
	assert.Equal(t, StatusUnhealthy, c.Startup(context.Background()).Status)
	assert.False(t, c.IsStarted())

	c.MarkStarted()
	assert.Equal(t, StatusHealthy, c.Startup(context.Background()).Status)
	assert.True(t, c.IsStarted())

	c.MarkNotStarted()
	assert.Equal(t, StatusUnhealthy, c.Startup(context.Background()).Status)
}

func TestProbeCheck(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		check := ProbeCheck("backend", time.Second, func(ctx context.Context) error { return nil })
		result := check(context.Background())
		assert.Equal(t, StatusHealthy, result.Status)
		assert.Equal(t, "backend", result.Name)
	})

	t.Run("error", func(t *testing.T) {
		check := ProbeCheck("backend", time.Second, func(ctx context.Context) error {
			return errors.New("unavailable")
		})
		result := check(context.Background())
		assert.Equal(t, StatusUnhealthy, result.Status)
		assert.Equal(t, "unavailable", result.Error)
	})

	t.Run("timeout", func(t *testing.T) {
		check := ProbeCheck("slow", 10*time.Millisecond, func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		})
		result := check(context.Background())
		assert.Equal(t, StatusUnhealthy, result.Status)
		assert.Contains(t, result.Error, "deadline exceeded")
	})
}

func TestAggregateStatus(t *testing.T) {
	tests := []struct {
		name    string
		results []CheckResult
		want    Status
	}{
		{"empty", nil, StatusHealthy},
		{"all healthy", []CheckResult{{Status: StatusHealthy}, {Status: StatusHealthy}}, StatusHealthy},
		{"degraded", []CheckResult{{Status: StatusHealthy}, {Status: StatusDegraded}}, StatusDegraded},
		{"unhealthy wins", []CheckResult{{Status: StatusDegraded}, {Status: StatusUnhealthy}}, StatusUnhealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AggregateStatus(tt.results))
		})
	}
}
