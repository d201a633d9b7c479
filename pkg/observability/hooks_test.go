package observability

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Executor hooks
	e := NoopExecutorHooks{}
	e.OnRunStart(ctx, "run", 2, 3)
	e.OnBatchStart(ctx, "run", 0, 2)
	e.OnActionStart(ctx, "run", "pkg-a")
	e.OnActionComplete(ctx, "run", "pkg-a", time.Second, nil)
	e.OnBatchComplete(ctx, "run", 0, time.Second)
	e.OnRunComplete(ctx, "run", 3, 0, 0, time.Second)

	// Cache hooks
	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "packument")
	c.OnCacheMiss(ctx, "packument")
	c.OnCacheSet(ctx, "packument", 1024)

	// HTTP hooks
	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "registry.npmjs.org", "/left-pad")
	h.OnResponse(ctx, "GET", "registry.npmjs.org", "/left-pad", 200, time.Second)
	h.OnError(ctx, "GET", "registry.npmjs.org", "/left-pad", nil)
}

func TestDefaults(t *testing.T) {
	if _, ok := Executor(nil).(NoopExecutorHooks); !ok {
		t.Error("Executor(nil) should return NoopExecutorHooks")
	}
	if _, ok := Cache(nil).(NoopCacheHooks); !ok {
		t.Error("Cache(nil) should return NoopCacheHooks")
	}
	if _, ok := HTTP(nil).(NoopHTTPHooks); !ok {
		t.Error("HTTP(nil) should return NoopHTTPHooks")
	}

	custom := &testExecutorHooks{}
	if Executor(custom) != custom {
		t.Error("Executor() should return the given hooks")
	}
}

func TestLogExecutorHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	h := NewLogExecutorHooks(logger)
	ctx := context.Background()

	h.OnActionStart(ctx, "r1", "pkg-a")
	h.OnActionComplete(ctx, "r1", "pkg-a", time.Millisecond, errors.New("exit status 1"))

	out := buf.String()
	for _, want := range []string{"action started", "pkg-a", "action failed", "exit status 1"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestLogCacheHooksRespectLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.InfoLevel})
	h := NewLogCacheHooks(logger)
	h.OnCacheHit(context.Background(), "packument")
	if buf.Len() != 0 {
		t.Errorf("debug event written at info level: %q", buf.String())
	}
}

// Test implementations
type testExecutorHooks struct{ NoopExecutorHooks }

func TestLogHTTPHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	h := NewLogHTTPHooks(logger)
	ctx := context.Background()

	h.OnRequest(ctx, "GET", "registry.npmjs.org", "/left-pad")
	h.OnResponse(ctx, "GET", "registry.npmjs.org", "/left-pad", 404, time.Millisecond)
	h.OnError(ctx, "GET", "registry.npmjs.org", "/left-pad", errors.New("connection reset"))

	out := buf.String()
	for _, want := range []string{"http request", "404", "connection reset"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}
