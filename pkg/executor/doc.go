// Package executor runs an action for every package of a schedule.
//
// [Run] consumes the batches produced by the schedule package. Batches run
// one after another; inside a batch a bounded errgroup runs up to
// Options.Concurrency actions at a time. Per-package failures never cancel
// siblings that are already queued in the same batch, but they do prevent
// the next batch from starting. The [Result] lists what completed, what
// failed and what was never started.
//
//	plan, err := schedule.Graph(g, schedule.Options{})
//	if err != nil {
//	    return err
//	}
//	res := executor.Run(ctx, plan.All(), executor.Options{Concurrency: 4}, func(ctx context.Context, n *graph.Node) error {
//	    cmd := process.NpmScript("build")
//	    cmd.Label, cmd.Dir = n.Name(), n.Location()
//	    _, err := runner.Run(ctx, cmd)
//	    return err
//	})
//	return res.Err()
package executor
