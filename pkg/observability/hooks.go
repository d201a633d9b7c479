// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Components that emit events accept a
// hook implementation in their options and fall back to a no-op when none
// is given.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Let callers pass implementations explicitly, per run
//
// There is no global registry: two executor runs in the same process can
// report to different hooks.
//
// # Usage
//
//	res := executor.Run(ctx, plan.All(), executor.Options{
//	    Concurrency: 4,
//	    Hooks:       observability.NewLogExecutorHooks(logger),
//	}, action)
//
// Components call hooks to emit events:
//
//	hooks.OnActionStart(ctx, runID, node.Name())
//	err := action(ctx, node)
//	hooks.OnActionComplete(ctx, runID, node.Name(), time.Since(start), err)
package observability

import (
	"context"
	"time"
)

// =============================================================================
// Executor Hooks
// =============================================================================

// ExecutorHooks receives events from batch execution.
type ExecutorHooks interface {
	// Run events
	OnRunStart(ctx context.Context, runID string, batches, nodes int)
	OnRunComplete(ctx context.Context, runID string, completed, failed, skipped int, duration time.Duration)

	// Batch events
	OnBatchStart(ctx context.Context, runID string, index, size int)
	OnBatchComplete(ctx context.Context, runID string, index int, duration time.Duration)

	// Action events
	OnActionStart(ctx context.Context, runID, pkg string)
	OnActionComplete(ctx context.Context, runID, pkg string, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from HTTP client operations.
type HTTPHooks interface {
	// OnRequest records an outgoing HTTP request.
	OnRequest(ctx context.Context, method, host, path string)

	// OnResponse records an HTTP response.
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)

	// OnError records an HTTP error (network failure, timeout).
	OnError(ctx context.Context, method, host, path string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopExecutorHooks is a no-op implementation of ExecutorHooks.
type NoopExecutorHooks struct{}

func (NoopExecutorHooks) OnRunStart(context.Context, string, int, int) {}
func (NoopExecutorHooks) OnRunComplete(context.Context, string, int, int, int, time.Duration) {
}
func (NoopExecutorHooks) OnBatchStart(context.Context, string, int, int)                       {}
func (NoopExecutorHooks) OnBatchComplete(context.Context, string, int, time.Duration)          {}
func (NoopExecutorHooks) OnActionStart(context.Context, string, string)                        {}
func (NoopExecutorHooks) OnActionComplete(context.Context, string, string, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// =============================================================================
// Defaults
// =============================================================================

// Executor returns h, or a no-op implementation when h is nil.
func Executor(h ExecutorHooks) ExecutorHooks {
	if h == nil {
		return NoopExecutorHooks{}
	}
	return h
}

// Cache returns h, or a no-op implementation when h is nil.
func Cache(h CacheHooks) CacheHooks {
	if h == nil {
		return NoopCacheHooks{}
	}
	return h
}

// HTTP returns h, or a no-op implementation when h is nil.
func HTTP(h HTTPHooks) HTTPHooks {
	if h == nil {
		return NoopHTTPHooks{}
	}
	return h
}
