package executor

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/monorail/pkg/errors"
	"github.com/matzehuels/monorail/pkg/graph"
	"github.com/matzehuels/monorail/pkg/observability"
)

// Action is the work performed for one package. It is called at most once
// per node and run. The context passed to it is never canceled by the
// executor.
type Action func(ctx context.Context, n *graph.Node) error

// Options configures [Run].
type Options struct {
	// Concurrency is the number of actions allowed to run at the same time
	// within a batch. Zero and one both mean sequential.
	Concurrency int

	// Hooks receives run, batch and action events. Nil means no-op.
	Hooks observability.ExecutorHooks

	// Logger receives progress messages. Nil discards them.
	Logger *log.Logger
}

// ActionFailure records a failed action.
type ActionFailure struct {
	Name string
	Err  error
}

func (f *ActionFailure) Error() string { return fmt.Sprintf("%s: %v", f.Name, f.Err) }

func (f *ActionFailure) Unwrap() error { return f.Err }

// Result aggregates the outcome of a run.
type Result struct {
	RunID string

	// Completed lists the packages whose action succeeded, in completion
	// order.
	Completed []string

	// Failures lists every failed action, in completion order.
	Failures []*ActionFailure

	// Skipped lists the packages whose action never started.
	Skipped []string

	// Aborted is set when the run stopped early because of a failure or
	// because the context was canceled.
	Aborted bool

	Duration time.Duration
}

// Err returns nil when every started action succeeded. Otherwise it returns
// an ACTION_FAILED error joining all failures.
func (r *Result) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	errs := make([]error, len(r.Failures))
	for i, f := range r.Failures {
		errs[i] = f
	}
	noun := "package"
	if len(r.Failures) > 1 {
		noun = "packages"
	}
	return errors.Wrap(errors.ErrCodeActionFailed, stderrors.Join(errs...), "%d %s failed", len(r.Failures), noun)
}

// Failed reports whether the named package's action failed.
func (r *Result) Failed(name string) bool {
	for _, f := range r.Failures {
		if f.Name == name {
			return true
		}
	}
	return false
}

// Run executes action for every node, one batch at a time.
//
// Batches run strictly in sequence: no action of batch i+1 starts before
// every action of batch i has returned. Within a batch up to
// Options.Concurrency actions run at once and the rest wait for a free
// slot.
//
// A failing action does not stop its batch: the nodes already queued in
// the same batch still run, and all failures are collected. Once a batch
// with a failure has finished no further batch is started. Canceling ctx
// stops new actions from starting; actions already running are left to
// finish. The executor never retries a failed action.
func Run(ctx context.Context, batches [][]*graph.Node, opts Options, action Action) *Result {
	hooks := observability.Executor(opts.Hooks)
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	limit := max(opts.Concurrency, 1)

	total := 0
	for _, b := range batches {
		total += len(b)
	}

	res := &Result{RunID: uuid.NewString()}
	start := time.Now()
	hooks.OnRunStart(ctx, res.RunID, len(batches), total)
	defer func() {
		res.Duration = time.Since(start)
		hooks.OnRunComplete(ctx, res.RunID, len(res.Completed), len(res.Failures), len(res.Skipped), res.Duration)
	}()

	// Actions outlive cancellation of the run.
	actionCtx := context.WithoutCancel(ctx)

	for i, batch := range batches {
		if ctx.Err() != nil || len(res.Failures) > 0 {
			res.Aborted = true
			res.skip(batches[i:]...)
			break
		}

		logger.Debug("starting batch", "batch", i, "size", len(batch))
		hooks.OnBatchStart(ctx, res.RunID, i, len(batch))
		batchStart := time.Now()

		runBatch(ctx, actionCtx, batch, limit, res, hooks, action)

		hooks.OnBatchComplete(ctx, res.RunID, i, time.Since(batchStart))
	}

	if ctx.Err() != nil && len(res.Skipped) > 0 {
		res.Aborted = true
	}
	return res
}

func runBatch(ctx, actionCtx context.Context, batch []*graph.Node, limit int, res *Result, hooks observability.ExecutorHooks, action Action) {
	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(limit)

	for _, n := range batch {
		// Go blocks until a slot is free, so the cancellation check happens
		// right before each start.
		if ctx.Err() != nil {
			mu.Lock()
			res.Skipped = append(res.Skipped, n.Name())
			mu.Unlock()
			continue
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				mu.Lock()
				res.Skipped = append(res.Skipped, n.Name())
				mu.Unlock()
				return nil
			}

			hooks.OnActionStart(ctx, res.RunID, n.Name())
			started := time.Now()
			err := runAction(actionCtx, n, action)
			hooks.OnActionComplete(ctx, res.RunID, n.Name(), time.Since(started), err)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				res.Failures = append(res.Failures, &ActionFailure{Name: n.Name(), Err: err})
				return nil
			}
			res.Completed = append(res.Completed, n.Name())
			return nil
		})
	}
	_ = g.Wait()
}

// runAction converts a panicking action into a failure.
func runAction(ctx context.Context, n *graph.Node, action Action) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.New(errors.ErrCodeInternal, "action panicked: %v", r)
		}
	}()
	return action(ctx, n)
}

func (r *Result) skip(batches ...[]*graph.Node) {
	for _, b := range batches {
		for _, n := range b {
			r.Skipped = append(r.Skipped, n.Name())
		}
	}
}
