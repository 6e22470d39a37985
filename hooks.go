package plugparam

import (
	"context"
	"log/slog"
	"time"
)

// OnDispatchFunc is called after the plugin is looked up and before its
// param is bound.
type OnDispatchFunc func(ctx context.Context, typeName string)

// OnSuccessFunc is called after the plugin's Parse succeeds.
type OnSuccessFunc func(ctx context.Context, typeName string, duration time.Duration)

// OnFailureFunc is called when any dispatch stage fails, including lookup.
// Use KindOf(err) to tell the stages apart.
type OnFailureFunc func(ctx context.Context, typeName string, err error, duration time.Duration)

// hooks holds all configured hook functions.
type hooks struct {
	onDispatch []OnDispatchFunc
	onSuccess  []OnSuccessFunc
	onFailure  []OnFailureFunc
}

// config collects registry options.
type config struct {
	typeKey string
	hooks   hooks
}

// Option configures a Registry.
type Option func(*config)

// WithTypeKey sets the document key holding the type name for
// DispatchDocument and DispatchJSON. Defaults to "type".
func WithTypeKey(key string) Option {
	return func(c *config) {
		c.typeKey = key
	}
}

// WithOnDispatch adds a hook called just before binding starts.
// Multiple hooks are called in order.
//
// Example:
//
//	plugparam.WithOnDispatch(func(ctx context.Context, typeName string) {
//	    metrics.Incr("layer.dispatch", "type:"+typeName)
//	})
func WithOnDispatch(fn OnDispatchFunc) Option {
	return func(c *config) {
		c.hooks.onDispatch = append(c.hooks.onDispatch, fn)
	}
}

// WithOnSuccess adds a hook called after the plugin completes successfully.
// Multiple hooks are called in order.
//
// Example:
//
//	plugparam.WithOnSuccess(func(ctx context.Context, typeName string, d time.Duration) {
//	    metrics.Timing("layer.parse", d, "type:"+typeName)
//	})
func WithOnSuccess(fn OnSuccessFunc) Option {
	return func(c *config) {
		c.hooks.onSuccess = append(c.hooks.onSuccess, fn)
	}
}

// WithOnFailure adds a hook called after any stage fails.
// Multiple hooks are called in order. Hooks observe the error; they cannot
// change it.
//
// Example:
//
//	plugparam.WithOnFailure(func(ctx context.Context, typeName string, err error, d time.Duration) {
//	    if errors.Is(err, plugparam.ErrParseFailure) {
//	        metrics.Incr("layer.parse_failure", "type:"+typeName)
//	    }
//	})
func WithOnFailure(fn OnFailureFunc) Option {
	return func(c *config) {
		c.hooks.onFailure = append(c.hooks.onFailure, fn)
	}
}

// WithLogger logs each dispatch outcome: successes at debug level, failures
// at warn level with the error kind and field path.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.hooks.onSuccess = append(c.hooks.onSuccess, func(ctx context.Context, typeName string, d time.Duration) {
			logger.DebugContext(ctx, "dispatch succeeded",
				slog.String("type", typeName),
				slog.Duration("duration", d),
			)
		})
		c.hooks.onFailure = append(c.hooks.onFailure, func(ctx context.Context, typeName string, err error, d time.Duration) {
			attrs := []slog.Attr{
				slog.String("type", typeName),
				slog.Duration("duration", d),
				slog.String("error", err.Error()),
			}
			if kind := KindOf(err); kind != 0 {
				attrs = append(attrs, slog.String("kind", kind.String()))
			}
			if path := pathOf(err); len(path) > 0 {
				attrs = append(attrs, slog.String("path", path.String()))
			}
			logger.LogAttrs(ctx, slog.LevelWarn, "dispatch failed", attrs...)
		})
	}
}

func (h *hooks) callOnDispatch(ctx context.Context, typeName string) {
	for _, fn := range h.onDispatch {
		fn(ctx, typeName)
	}
}

func (h *hooks) callOnSuccess(ctx context.Context, typeName string, d time.Duration) {
	for _, fn := range h.onSuccess {
		fn(ctx, typeName, d)
	}
}

func (h *hooks) callOnFailure(ctx context.Context, typeName string, err error, d time.Duration) {
	for _, fn := range h.onFailure {
		fn(ctx, typeName, err, d)
	}
}
