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

package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeremyhahn/go-kvgateway/pkg/correlation"
)

func TestLevel_String(t *testing.T) {
	tests := []struct {
		level    Level
		expected string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{Level(99), "UNKNOWN"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, tt.level.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"", LevelInfo, false},
		{"warn", LevelWarn, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{"fatal", LevelError, false},
		{"verbose", LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFieldHelpers(t *testing.T) {
	err := errors.New("boom")
	assert.Equal(t, Field{Key: "k", Value: "v"}, String("k", "v"))
	assert.Equal(t, Field{Key: "n", Value: 3}, Int("n", 3))
	assert.Equal(t, Field{Key: "n", Value: int64(3)}, Int64("n", 3))
	assert.Equal(t, Field{Key: "b", Value: true}, Bool("b", true))
	assert.Equal(t, Field{Key: "d", Value: time.Second}, Duration("d", time.Second))
	assert.Equal(t, Field{Key: "error", Value: err}, Error(err))
	assert.Equal(t, Field{Key: "a", Value: []int{1}}, Any("a", []int{1}))
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry), line)
		entries = append(entries, entry)
	}
	return entries
}

func TestNew_Backends(t *testing.T) {
	for _, backend := range []string{BackendSlog, BackendZap} {
		t.Run(backend, func(t *testing.T) {
			var buf bytes.Buffer
			log, err := New(&Config{Level: "info", Format: "json", Backend: backend, Output: &buf})
			require.NoError(t, err)

			log.Debug("hidden")
			log.Info("stored", String("key", "key_1"), Int("size", 7))
			log.With(String("component", "gateway")).Warn("mapped", Error(errors.New("unavailable")))

			entries := decodeLines(t, &buf)
			require.Len(t, entries, 2)

			assert.Equal(t, "stored", entries[0]["msg"])
			assert.Equal(t, "key_1", entries[0]["key"])
			assert.EqualValues(t, 7, entries[0]["size"])

			assert.Equal(t, "mapped", entries[1]["msg"])
			assert.Equal(t, "gateway", entries[1]["component"])
			assert.Equal(t, "unavailable", entries[1]["error"])
		})
	}
}

func TestNew_Errors(t *testing.T) {
	_, err := New(&Config{Level: "loud"})
	assert.Error(t, err)

	_, err = New(&Config{Backend: "logrus"})
	assert.Error(t, err)
}

func TestNew_NilConfig(t *testing.T) {
	log, err := New(nil)
	require.NoError(t, err)
	assert.IsType(t, &SlogAdapter{}, log)
}

func TestContextVariants_AddCorrelationID(t *testing.T) {
	ctx := correlation.WithCorrelationID(context.Background(), "corr-123")

	for _, backend := range []string{BackendSlog, BackendZap} {
		t.Run(backend, func(t *testing.T) {
			var buf bytes.Buffer
			log, err := New(&Config{Level: "debug", Format: "json", Backend: backend, Output: &buf})
			require.NoError(t, err)

			log.DebugContext(ctx, "d")
			log.InfoContext(ctx, "i")
			log.WarnContext(ctx, "w")
			log.ErrorContext(ctx, "e")
			log.InfoContext(context.Background(), "no id")

			entries := decodeLines(t, &buf)
			require.Len(t, entries, 5)
			for _, e := range entries[:4] {
				assert.Equal(t, "corr-123", e["correlation_id"])
			}
			_, present := entries[4]["correlation_id"]
			assert.False(t, present)
		})
	}
}

func TestSlogAdapter_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	log := NewSlogAdapter(&SlogConfig{Level: LevelInfo, Output: &buf})
	log.Info("hello", String("key", "value"))

	assert.Contains(t, buf.String(), "msg=hello")
	assert.Contains(t, buf.String(), "key=value")
}

func TestZapAdapter_ConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	log := NewZapAdapter(&ZapConfig{Level: LevelInfo, Format: "console", Output: &buf})
	log.Info("hello", String("key", "value"))
	require.NoError(t, log.Sync())

	assert.Contains(t, buf.String(), "hello")
	assert.Contains(t, buf.String(), `"key": "value"`)
}

func TestNop(t *testing.T) {
	log := NewNop()
	log.Info("ignored")
	log.ErrorContext(context.Background(), "ignored")
	assert.NotNil(t, log.With(String("k", "v")))
}
