package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogExecutorHooks reports executor events to a charmbracelet logger at
// debug level. Failed actions are logged at warn level.
type LogExecutorHooks struct {
	logger *log.Logger
}

// NewLogExecutorHooks returns executor hooks writing to logger.
func NewLogExecutorHooks(logger *log.Logger) *LogExecutorHooks {
	return &LogExecutorHooks{logger: logger}
}

func (h *LogExecutorHooks) OnRunStart(_ context.Context, runID string, batches, nodes int) {
	h.logger.Debug("run started", "run", runID, "batches", batches, "packages", nodes)
}

func (h *LogExecutorHooks) OnRunComplete(_ context.Context, runID string, completed, failed, skipped int, d time.Duration) {
	h.logger.Debug("run finished", "run", runID, "completed", completed, "failed", failed, "skipped", skipped, "took", d.Round(time.Millisecond))
}

func (h *LogExecutorHooks) OnBatchStart(_ context.Context, runID string, index, size int) {
	h.logger.Debug("batch started", "run", runID, "batch", index, "size", size)
}

func (h *LogExecutorHooks) OnBatchComplete(_ context.Context, runID string, index int, d time.Duration) {
	h.logger.Debug("batch finished", "run", runID, "batch", index, "took", d.Round(time.Millisecond))
}

func (h *LogExecutorHooks) OnActionStart(_ context.Context, runID, pkg string) {
	h.logger.Debug("action started", "run", runID, "package", pkg)
}

func (h *LogExecutorHooks) OnActionComplete(_ context.Context, runID, pkg string, d time.Duration, err error) {
	if err != nil {
		h.logger.Warn("action failed", "run", runID, "package", pkg, "took", d.Round(time.Millisecond), "error", err)
		return
	}
	h.logger.Debug("action finished", "run", runID, "package", pkg, "took", d.Round(time.Millisecond))
}

// LogCacheHooks reports cache events to a charmbracelet logger at debug
// level.
type LogCacheHooks struct {
	logger *log.Logger
}

// NewLogCacheHooks returns cache hooks writing to logger.
func NewLogCacheHooks(logger *log.Logger) *LogCacheHooks {
	return &LogCacheHooks{logger: logger}
}

func (h *LogCacheHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *LogCacheHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *LogCacheHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

// LogHTTPHooks reports registry requests to a charmbracelet logger at
// debug level. Transport errors are logged at warn level.
type LogHTTPHooks struct {
	logger *log.Logger
}

// NewLogHTTPHooks returns HTTP hooks writing to logger.
func NewLogHTTPHooks(logger *log.Logger) *LogHTTPHooks {
	return &LogHTTPHooks{logger: logger}
}

func (h *LogHTTPHooks) OnRequest(_ context.Context, method, host, path string) {
	h.logger.Debug("http request", "method", method, "host", host, "path", path)
}

func (h *LogHTTPHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.logger.Debug("http response", "method", method, "host", host, "path", path, "status", status, "took", d.Round(time.Millisecond))
}

func (h *LogHTTPHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Warn("http error", "method", method, "host", host, "path", path, "error", err)
}
