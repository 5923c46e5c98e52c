package x_log

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type ctxKey struct{}

// WithLogger stores l in ctx.
func WithLogger(ctx context.Context, l *zerolog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// From returns the logger stored in ctx, or the global logger.
func From(ctx context.Context) *zerolog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxKey{}).(*zerolog.Logger); ok && l != nil {
			return l
		}
	}
	return &log.Logger
}
