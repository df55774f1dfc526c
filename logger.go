package raydemo

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled returns false so callers skip message formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called while a frame loop is running.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for raydemo.
// By default, raydemo produces no log output. Pass nil to restore the
// silent default.
//
// Log levels used by raydemo:
//   - [slog.LevelDebug]: per-frame diagnostics (ray redraws, buffer uploads)
//   - [slog.LevelInfo]: lifecycle events (surface configured, scene built)
//   - [slog.LevelWarn]: non-fatal issues (draw failures, resize clamping)
//
// The gpu package keeps its own logger; hosts that use it call
// gpu.SetLogger with the same value.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the current logger used by raydemo.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
