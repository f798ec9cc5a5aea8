package logging

import (
	"context"
	"log/slog"

	"github.com/jsamuelsen/go-mdc"
)

// DiagnosticHandler is an slog.Handler that attaches the current mapped
// diagnostic context to every record it handles. At emit time it snapshots
// the local store carried by the record's context and the process-wide
// global store, and appends their pairs as string attributes.
//
// When a key exists in both stores the local value wins: a request-scoped
// override is more specific than a process-wide default.
type DiagnosticHandler struct {
	next slog.Handler
}

// NewDiagnosticHandler wraps next so its records carry diagnostic context.
func NewDiagnosticHandler(next slog.Handler) *DiagnosticHandler {
	return &DiagnosticHandler{next: next}
}

// Enabled reports whether the wrapped handler handles records at the level.
func (h *DiagnosticHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

// Handle appends the diagnostic context pairs to the record and passes it
// on. The snapshots are taken here, at the moment the record is emitted,
// so guards and mutations earlier in the request are already reflected.
func (h *DiagnosticHandler) Handle(ctx context.Context, r slog.Record) error { //nolint:gocritic // slog.Handler interface requires value
	local := mdc.Entries(ctx)
	global := mdc.Global().Entries()

	if len(local) == 0 && len(global) == 0 {
		return h.next.Handle(ctx, r)
	}

	r = r.Clone()

	seen := make(map[string]struct{}, len(local))
	for _, e := range local {
		r.AddAttrs(slog.String(e.Key, e.Value))
		seen[e.Key] = struct{}{}
	}
	for _, e := range global {
		if _, shadowed := seen[e.Key]; shadowed {
			continue
		}
		r.AddAttrs(slog.String(e.Key, e.Value))
	}

	return h.next.Handle(ctx, r)
}

// WithAttrs returns a new DiagnosticHandler whose wrapped handler carries
// the given attributes.
func (h *DiagnosticHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return NewDiagnosticHandler(h.next.WithAttrs(attrs))
}

// WithGroup returns a new DiagnosticHandler with the given group opened on
// the wrapped handler. Diagnostic pairs added after this point land inside
// the group.
func (h *DiagnosticHandler) WithGroup(name string) slog.Handler {
	return NewDiagnosticHandler(h.next.WithGroup(name))
}
