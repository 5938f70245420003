package cache

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
)

// Provider is the tagged key-value cache the factory memoizes through.
// Implementations decide eviction and consistency; the factory only
// requires that InvalidateTag makes every entry carrying the tag
// unreadable (union semantics).
type Provider interface {
	Get(ctx context.Context, key string) (interface{}, bool)
	Set(ctx context.Context, key string, value interface{}, tags []string, ttl time.Duration) error
	InvalidateTag(ctx context.Context, tag string) int
}

// Options configure a single cached entry.
type Options struct {
	Tags []string
	TTL  time.Duration
}

// NewCachedFn wraps a no-argument fetch with memoization under the key
// name. Errors are never cached; the next call retries from scratch. A
// failed cache write is logged and the computed value is still returned,
// since caching is a performance optimization and never a correctness
// dependency.
//
// Concurrent callers racing at the instant of expiry may each recompute;
// single-flight is not guaranteed, which is acceptable for this read-heavy
// workload.
func NewCachedFn[T any](p Provider, logger *zap.Logger, name string, fn func(context.Context) (T, error), opts Options) func(context.Context) (T, error) {
	return func(ctx context.Context) (T, error) {
		if v, ok := p.Get(ctx, name); ok {
			if cached, ok := v.(T); ok {
				return cached, nil
			}
		}

		value, err := fn(ctx)
		if err != nil {
			var zero T
			return zero, err
		}

		if err := p.Set(ctx, name, value, opts.Tags, opts.TTL); err != nil {
			logger.Warn("cache write failed",
				zap.String("key", name),
				zap.Error(err),
			)
		}
		return value, nil
	}
}

// NewDynamicCachedFn is NewCachedFn for a one-argument fetch whose tags and
// TTL depend on the argument (e.g. the TTL for year 2020 differs from year
// 2026). The cache key includes a stable JSON encoding of the argument so
// distinct argument values never collide.
func NewDynamicCachedFn[A, T any](p Provider, logger *zap.Logger, name string, fn func(context.Context, A) (T, error), optsFor func(A) Options) func(context.Context, A) (T, error) {
	return func(ctx context.Context, arg A) (T, error) {
		key, err := argKey(name, arg)
		if err != nil {
			// Unkeyable argument: skip the cache rather than fail the read.
			logger.Warn("cache key encoding failed",
				zap.String("name", name),
				zap.Error(err),
			)
			return fn(ctx, arg)
		}

		if v, ok := p.Get(ctx, key); ok {
			if cached, ok := v.(T); ok {
				return cached, nil
			}
		}

		value, err := fn(ctx, arg)
		if err != nil {
			var zero T
			return zero, err
		}

		opts := optsFor(arg)
		if err := p.Set(ctx, key, value, opts.Tags, opts.TTL); err != nil {
			logger.Warn("cache write failed",
				zap.String("key", key),
				zap.Error(err),
			)
		}
		return value, nil
	}
}

// argKey derives the cache key from the function name and its argument.
// encoding/json writes map keys in sorted order, so the encoding is stable
// for equal values.
func argKey(name string, arg interface{}) (string, error) {
	b, err := json.Marshal(arg)
	if err != nil {
		return "", err
	}
	return name + ":" + string(b), nil
}
