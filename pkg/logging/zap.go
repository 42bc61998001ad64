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
	"context"
	"io"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapAdapter wraps a zap.Logger to implement the Logger interface
type ZapAdapter struct {
	logger *zap.Logger
}

// ZapConfig configures the zap adapter
type ZapConfig struct {
	// Logger is used as is when set; the remaining fields are ignored.
	Logger *zap.Logger

	Level Level

	// Format is console or text for the console encoder; anything else is JSON.
	Format string

	// Output defaults to os.Stderr.
	Output io.Writer
}

// NewZapAdapter creates a new zap adapter
func NewZapAdapter(config *ZapConfig) *ZapAdapter {
	if config == nil {
		config = &ZapConfig{}
	}
	if config.Logger != nil {
		return &ZapAdapter{logger: config.Logger}
	}

	out := config.Output
	if out == nil {
		out = os.Stderr
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	switch config.Format {
	case "console", "text":
		encoder = zapcore.NewConsoleEncoder(encCfg)
	default:
		encoder = zapcore.NewJSONEncoder(encCfg)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(out), zap.NewAtomicLevelAt(levelToZapLevel(config.Level)))
	return &ZapAdapter{logger: zap.New(core)}
}

// Zap returns the underlying zap.Logger.
func (l *ZapAdapter) Zap() *zap.Logger {
	return l.logger
}

// Sync flushes buffered log entries.
func (l *ZapAdapter) Sync() error {
	return l.logger.Sync()
}

func (l *ZapAdapter) Debug(msg string, fields ...Field) {
	l.logger.Debug(msg, toZapFields(fields)...)
}

func (l *ZapAdapter) Info(msg string, fields ...Field) {
	l.logger.Info(msg, toZapFields(fields)...)
}

func (l *ZapAdapter) Warn(msg string, fields ...Field) {
	l.logger.Warn(msg, toZapFields(fields)...)
}

func (l *ZapAdapter) Error(msg string, fields ...Field) {
	l.logger.Error(msg, toZapFields(fields)...)
}

func (l *ZapAdapter) DebugContext(ctx context.Context, msg string, fields ...Field) {
	l.logger.Debug(msg, toZapFields(withCorrelationID(ctx, fields))...)
}

func (l *ZapAdapter) InfoContext(ctx context.Context, msg string, fields ...Field) {
	l.logger.Info(msg, toZapFields(withCorrelationID(ctx, fields))...)
}

func (l *ZapAdapter) WarnContext(ctx context.Context, msg string, fields ...Field) {
	l.logger.Warn(msg, toZapFields(withCorrelationID(ctx, fields))...)
}

func (l *ZapAdapter) ErrorContext(ctx context.Context, msg string, fields ...Field) {
	l.logger.Error(msg, toZapFields(withCorrelationID(ctx, fields))...)
}

// With creates a child logger with the given fields
func (l *ZapAdapter) With(fields ...Field) Logger {
	return &ZapAdapter{logger: l.logger.With(toZapFields(fields)...)}
}

func toZapFields(fields []Field) []zap.Field {
	out := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		switch v := f.Value.(type) {
		case string:
			out = append(out, zap.String(f.Key, v))
		case int:
			out = append(out, zap.Int(f.Key, v))
		case int64:
			out = append(out, zap.Int64(f.Key, v))
		case bool:
			out = append(out, zap.Bool(f.Key, v))
		case time.Duration:
			out = append(out, zap.Duration(f.Key, v))
		case error:
			out = append(out, zap.NamedError(f.Key, v))
		default:
			out = append(out, zap.Any(f.Key, v))
		}
	}
	return out
}

func levelToZapLevel(level Level) zapcore.Level {
	switch level {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
