package logger

import (
	"context"
	"log/slog"
)

// ksqlHandler wraps a slog.Handler and gates records on a level shared with the owning rawLogger.
type ksqlHandler struct {
	inner    slog.Handler
	levelVar *slog.LevelVar
}

func newKsqlHandler(inner slog.Handler, levelVar *slog.LevelVar) *ksqlHandler {
	return &ksqlHandler{
		inner:    inner,
		levelVar: levelVar,
	}
}

func (h *ksqlHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.levelVar.Level() && h.inner.Enabled(ctx, level)
}

// Handle does not extract context fields; WithContext already attached them through With.
func (h *ksqlHandler) Handle(ctx context.Context, r slog.Record) error {
	return h.inner.Handle(ctx, r)
}

func (h *ksqlHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ksqlHandler{
		inner:    h.inner.WithAttrs(attrs),
		levelVar: h.levelVar,
	}
}

func (h *ksqlHandler) WithGroup(name string) slog.Handler {
	return &ksqlHandler{
		inner:    h.inner.WithGroup(name),
		levelVar: h.levelVar,
	}
}
