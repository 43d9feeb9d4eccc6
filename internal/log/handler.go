package log

import (
	"context"
	"log/slog"
)

// NewDualHandler sends every record to primary and mirrors records at or above
// mirrorLevel to secondary. A nil secondary disables mirroring.
func NewDualHandler(primary, secondary slog.Handler, mirrorLevel slog.Level) slog.Handler {
	return &dualHandler{primary: primary, secondary: secondary, mirrorLevel: mirrorLevel}
}

type dualHandler struct {
	primary     slog.Handler
	secondary   slog.Handler
	mirrorLevel slog.Level
}

func (h *dualHandler) mirrors(ctx context.Context, level slog.Level) bool {
	return h.secondary != nil && level >= h.mirrorLevel && h.secondary.Enabled(ctx, level)
}

func (h *dualHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return (h.primary != nil && h.primary.Enabled(ctx, level)) || h.mirrors(ctx, level)
}

func (h *dualHandler) Handle(ctx context.Context, record slog.Record) error {
	if h.primary != nil && h.primary.Enabled(ctx, record.Level) {
		if err := h.primary.Handle(ctx, record); err != nil {
			return err
		}
	}
	if h.mirrors(ctx, record.Level) {
		return h.secondary.Handle(ctx, record.Clone())
	}
	return nil
}

func (h *dualHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h.derive(func(inner slog.Handler) slog.Handler { return inner.WithAttrs(attrs) })
}

func (h *dualHandler) WithGroup(name string) slog.Handler {
	return h.derive(func(inner slog.Handler) slog.Handler { return inner.WithGroup(name) })
}

func (h *dualHandler) derive(f func(slog.Handler) slog.Handler) slog.Handler {
	next := *h
	if h.primary != nil {
		next.primary = f(h.primary)
	}
	if h.secondary != nil {
		next.secondary = f(h.secondary)
	}
	return &next
}
