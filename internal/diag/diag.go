// Package diag is corevm's structured-logging and diagnostics surface,
// built the same way the teacher's cmd/hiveexplorer/logger wraps log/slog:
// a package-level *slog.Logger defaulting to a discarding handler so a
// library embedder never sees output unless it opts in, and an Init that
// swaps in a real handler.
package diag

import (
	"io"
	"log/slog"
)

// L is the global diagnostics logger. It discards everything until Init
// is called, the same "silent unless asked" default logger/logger.go
// ships.
var L *slog.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))

// Options configures Init. A nil Output means io.Discard (see Init);
// tests pass a buffer.
type Options struct {
	Enabled bool
	Level   slog.Level
	Output  io.Writer
}

// Init installs a real logger when opts.Enabled, mirroring --log-level/
// --log-file (spec.md §6). A nil Output defaults to io.Discard even when
// Enabled is true, since an embedder that enables logging without naming
// a sink has asked for level-gated no-ops, not a panic.
func Init(opts Options) {
	if !opts.Enabled {
		L = slog.New(slog.NewTextHandler(io.Discard, nil))
		return
	}
	out := opts.Output
	if out == nil {
		out = io.Discard
	}
	L = slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: opts.Level}))
}

// GC logs one collection pass at Debug level, the trace point
// SPEC_FULL.md's ambient-stack section names explicitly.
func GC(freed, collections int) {
	L.Debug("gc collect", slog.Int("freed", freed), slog.Int("collections", collections))
}

// VMTrace logs one opcode dispatch at Debug level, gated by the caller
// (vm's dispatch loop does not call this unconditionally — only a --show-
// opcodes-driven wrapper would, to avoid a per-opcode slog call on the hot
// path when diagnostics are off).
func VMTrace(op string, ip uint32) {
	L.Debug("vm step", slog.String("op", op), slog.Int("ip", int(ip)))
}

// Exception logs an uncaught exception escaping to the embedder boundary.
func Exception(kind string, message string) {
	L.Debug("uncaught exception", slog.String("kind", kind), slog.String("message", message))
}
