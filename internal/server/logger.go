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

package server

import (
	"context"
	"sync/atomic"

	"github.com/jeremyhahn/go-kvgateway/pkg/logging"
)

// swapLogger forwards to a logger that Reload can replace while protocol
// servers keep their reference.
type swapLogger struct {
	cur    *atomic.Pointer[logging.Logger]
	fields []logging.Field
}

func newSwapLogger(l logging.Logger) *swapLogger {
	p := &atomic.Pointer[logging.Logger]{}
	p.Store(&l)
	return &swapLogger{cur: p}
}

func (l *swapLogger) swap(next logging.Logger) {
	l.cur.Store(&next)
}

func (l *swapLogger) get() logging.Logger {
	lg := *l.cur.Load()
	if len(l.fields) > 0 {
		return lg.With(l.fields...)
	}
	return lg
}

func (l *swapLogger) Debug(msg string, fields ...logging.Field) { l.get().Debug(msg, fields...) }
func (l *swapLogger) Info(msg string, fields ...logging.Field)  { l.get().Info(msg, fields...) }
func (l *swapLogger) Warn(msg string, fields ...logging.Field)  { l.get().Warn(msg, fields...) }
func (l *swapLogger) Error(msg string, fields ...logging.Field) { l.get().Error(msg, fields...) }

func (l *swapLogger) DebugContext(ctx context.Context, msg string, fields ...logging.Field) {
	l.get().DebugContext(ctx, msg, fields...)
}

func (l *swapLogger) InfoContext(ctx context.Context, msg string, fields ...logging.Field) {
	l.get().InfoContext(ctx, msg, fields...)
}

func (l *swapLogger) WarnContext(ctx context.Context, msg string, fields ...logging.Field) {
	l.get().WarnContext(ctx, msg, fields...)
}

func (l *swapLogger) ErrorContext(ctx context.Context, msg string, fields ...logging.Field) {
	l.get().ErrorContext(ctx, msg, fields...)
}

// With keeps following swaps; the fields are applied on every call.
func (l *swapLogger) With(fields ...logging.Field) logging.Logger {
	merged := make([]logging.Field, 0, len(l.fields)+len(fields))
	merged = append(merged, l.fields...)
	merged = append(merged, fields...)
	return &swapLogger{cur: l.cur, fields: merged}
}
