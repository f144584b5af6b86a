// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package texupload

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler is a slog.Handler that silently discards all log records.
// The Enabled method returns false so the caller skips message formatting
// entirely, making disabled logging effectively zero-cost.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// newNopLogger creates a logger that silently discards all output.
func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the package-level default logger. Accessed atomically
// so that SetLogger can be called concurrently with logging from any
// goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	l := newNopLogger()
	loggerPtr.Store(l)
}

// SetLogger configures the default logger used by sessions that were not
// given their own via WithLogger. By default texupload produces no log
// output. Pass nil to restore the silent default.
//
// Log levels used by texupload:
//   - [slog.LevelDebug]: negotiation diagnostics (strategy attempts, rejections)
//   - [slog.LevelInfo]: lifecycle events (strategy selected, format fixed)
//   - [slog.LevelWarn]: non-fatal issues (fallback to raw copy, upload retry)
//
// SetLogger is safe for concurrent use.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the current default logger.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
