package cli

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/monorail/pkg/errors"
	"github.com/matzehuels/monorail/pkg/executor"
	"github.com/matzehuels/monorail/pkg/graph"
	"github.com/matzehuels/monorail/pkg/observability"
)

// cleanCommand creates the clean command, which removes node_modules from
// every selected package.
func (c *CLI) cleanCommand() *cobra.Command {
	var (
		filters filterFlags
		yes     bool
		conc    int
	)

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove node_modules from every package",
		Long: `Remove the node_modules directory of each selected package. The workspace
root's own node_modules is left alone.`,
		Example: `  monorail clean
  monorail clean --yes --scope '@acme/*'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ws, err := c.loadWorkspace()
			if err != nil {
				return err
			}
			nodes, err := c.selectNodes(ctx, ws, &filters)
			if err != nil {
				return err
			}

			var targets []*graph.Node
			for _, n := range nodes {
				if info, err := os.Stat(nodeModules(n)); err == nil && info.IsDir() {
					targets = append(targets, n)
				}
			}
			if len(targets) == 0 {
				printInfo("Nothing to clean")
				return nil
			}

			printInfo("Removing node_modules from %d %s:", len(targets), plural(len(targets), "package", "packages"))
			for _, n := range targets {
				printDetail("%s", nodeModules(n))
			}
			ok, err := confirm(ctx, "Proceed?", yes)
			if err != nil {
				return err
			}
			if !ok {
				printInfo("Aborted")
				return nil
			}

			// Removal order does not matter, so everything is one batch.
			res := executor.Run(ctx, [][]*graph.Node{targets}, executor.Options{
				Concurrency: concurrency(cmd, conc, ws),
				Hooks:       observability.NewLogExecutorHooks(c.Logger),
				Logger:      c.Logger,
			}, func(_ context.Context, n *graph.Node) error {
				if err := os.RemoveAll(nodeModules(n)); err != nil {
					return errors.Wrap(errors.ErrCodeInvalidPath, err, "remove %s", nodeModules(n))
				}
				return nil
			})
			return report(ctx, res, "Cleaned")
		},
	}

	filters.register(cmd)
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	cmd.Flags().IntVar(&conc, "concurrency", 4, "maximum number of directories removed at once")

	return cmd
}

func nodeModules(n *graph.Node) string {
	return filepath.Join(n.Location(), "node_modules")
}
