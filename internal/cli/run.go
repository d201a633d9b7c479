package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/monorail/pkg/executor"
	"github.com/matzehuels/monorail/pkg/graph"
	"github.com/matzehuels/monorail/pkg/observability"
	"github.com/matzehuels/monorail/pkg/process"
)

// execFlags are shared by run and exec.
type execFlags struct {
	filters     filterFlags
	sched       scheduleFlags
	concurrency int
	stream      bool
	noPrefix    bool
	parallel    bool
}

func (f *execFlags) register(cmd *cobra.Command) {
	f.filters.register(cmd)
	f.sched.register(cmd)
	cmd.Flags().IntVar(&f.concurrency, "concurrency", 4, "maximum number of packages processed at once")
	cmd.Flags().BoolVar(&f.stream, "stream", false, "stream output line by line, prefixed with the package name")
	cmd.Flags().BoolVar(&f.noPrefix, "no-prefix", false, "do not prefix streamed output")
	cmd.Flags().BoolVar(&f.parallel, "parallel", false, "ignore dependency order and run every package at once (implies --stream)")
}

// runCommand creates the run command.
func (c *CLI) runCommand() *cobra.Command {
	var flags execFlags

	cmd := &cobra.Command{
		Use:   "run <script> [-- <args>...]",
		Short: "Run an npm script in every package that defines it",
		Long: `Run an npm script in each selected package that defines it, in dependency
order. Packages whose dependencies have finished run in parallel, up to
--concurrency at a time.

When a package fails, the packages already running or queued in the same
batch still finish, but no later batch is started.`,
		Example: `  monorail run build
  monorail run test --scope '@acme/*' --include-dependencies
  monorail run lint --stream --concurrency 8
  monorail run test -- --coverage`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			script, extra := args[0], args[1:]
			ws, err := c.loadWorkspace()
			if err != nil {
				return err
			}
			nodes, err := c.selectNodes(cmd.Context(), ws, &flags.filters)
			if err != nil {
				return err
			}

			var withScript []*graph.Node
			for _, n := range nodes {
				if n.Record().HasScript(script) {
					withScript = append(withScript, n)
				}
			}
			if len(withScript) == 0 {
				printWarning("No selected package defines the %q script", script)
				return nil
			}
			c.Logger.Info("running script", "script", script, "packages", len(withScript))

			return c.execute(cmd, ws, withScript, &flags, func(n *graph.Node) process.Command {
				return process.NpmScript(script, extra...)
			}, "Ran npm run "+script+" in")
		},
	}

	flags.register(cmd)
	return cmd
}

// execCommand creates the exec command.
func (c *CLI) execCommand() *cobra.Command {
	var flags execFlags

	cmd := &cobra.Command{
		Use:   "exec [flags] -- <command> [args...]",
		Short: "Run a command in every package",
		Long: `Run an arbitrary command in each selected package, in dependency order.

The command runs with the package directory as working directory.
MONORAIL_PACKAGE_NAME and MONORAIL_ROOT_PATH are set in its environment.`,
		Example: `  monorail exec -- rm -rf dist
  monorail exec --parallel -- npm pack
  monorail exec --scope '@acme/ui' -- sh -c 'echo $MONORAIL_PACKAGE_NAME'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := c.loadWorkspace()
			if err != nil {
				return err
			}
			nodes, err := c.selectNodes(cmd.Context(), ws, &flags.filters)
			if err != nil {
				return err
			}
			if len(nodes) == 0 {
				printWarning("No packages selected")
				return nil
			}

			return c.execute(cmd, ws, nodes, &flags, func(n *graph.Node) process.Command {
				return process.Command{Name: args[0], Args: args[1:]}
			}, "Executed in")
		},
	}

	flags.register(cmd)
	// Flags after the command name belong to the command.
	cmd.Flags().SetInterspersed(false)
	return cmd
}

// execute schedules nodes and runs the command built by mk in each one.
func (c *CLI) execute(cmd *cobra.Command, ws *workspace, nodes []*graph.Node, flags *execFlags, mk func(*graph.Node) process.Command, verb string) error {
	ctx := cmd.Context()

	var batches [][]*graph.Node
	if flags.parallel {
		batches = [][]*graph.Node{nodes}
	} else {
		opts, err := flags.sched.options(cmd, ws)
		if err != nil {
			return err
		}
		plan, err := c.plan(nodes, opts)
		if err != nil {
			return err
		}
		batches = plan.All()
	}

	conc := concurrency(cmd, flags.concurrency, ws)
	if flags.parallel {
		conc = len(nodes)
	}
	runner := &process.Runner{
		Stdout:   cmd.OutOrStdout(),
		Stderr:   cmd.ErrOrStderr(),
		Stream:   flags.stream || flags.parallel,
		NoPrefix: flags.noPrefix,
		Logger:   c.Logger,
	}

	res := executor.Run(ctx, batches, executor.Options{
		Concurrency: conc,
		Hooks:       observability.NewLogExecutorHooks(c.Logger),
		Logger:      c.Logger,
	}, func(ctx context.Context, n *graph.Node) error {
		pc := mk(n)
		pc.Label = n.Name()
		pc.Dir = n.Location()
		pc.Env = append(pc.Env, process.PackageEnv(n.Name(), ws.root)...)
		_, err := runner.Run(ctx, pc)
		return err
	})
	return report(ctx, res, verb)
}
