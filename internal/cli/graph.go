package cli

import (
	"os"

	"github.com/spf13/cobra"

	mio "github.com/matzehuels/monorail/pkg/io"
	"github.com/matzehuels/monorail/pkg/render"
	"github.com/matzehuels/monorail/pkg/schedule"
)

// graphCommand creates the graph command, which exports the dependency
// graph of the selected packages.
func (c *CLI) graphCommand() *cobra.Command {
	var (
		filters  filterFlags
		format   string
		output   string
		kinds    []string
		detailed bool
		ranked   bool
	)

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Export the package dependency graph",
		Long: `Export the dependency graph of the selected packages.

Formats:
  dot   Graphviz source (default)
  svg   rendered in-process with Graphviz
  png   rendered in-process with Graphviz
  json  nodes and edges, readable by "monorail order --from"

Packages taking part in a dependency cycle are outlined in red.`,
		Example: `  monorail graph > deps.dot
  monorail graph --format svg -o deps.svg --detailed
  monorail graph --format json -o graph.json
  monorail graph --kinds dependencies --batches --format png -o order.png`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := c.loadWorkspace()
			if err != nil {
				return err
			}
			nodes, err := c.selectNodes(cmd.Context(), ws, &filters)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}

			if format == "json" {
				if err := mio.WriteJSON(mio.FromNodes(nodes), out); err != nil {
					return err
				}
				c.wrote(output)
				return nil
			}

			f, err := render.ParseFormat(format)
			if err != nil {
				return err
			}
			ks, err := parseKinds(kinds)
			if err != nil {
				return err
			}

			// Cycles never fail the export; they are highlighted instead.
			plan, err := schedule.Batches(nodes, schedule.Options{AllowCycles: true, Kinds: ks})
			if err != nil {
				return err
			}
			opts := render.Options{Detailed: detailed, Kinds: ks}
			for _, cycle := range plan.Cycles {
				opts.Highlight = append(opts.Highlight, cycle...)
			}
			if ranked {
				opts.Batches = plan.All()
			}

			data, err := render.Render(cmd.Context(), render.ToDOT(nodes, opts), f)
			if err != nil {
				return err
			}
			if _, err := out.Write(data); err != nil {
				return err
			}
			c.wrote(output)
			return nil
		},
	}

	filters.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", "dot", "output format: dot, svg, png or json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	cmd.Flags().StringSliceVar(&kinds, "kinds", nil, "dependency kinds to draw (default: all)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "show versions and mark private packages")
	cmd.Flags().BoolVar(&ranked, "batches", false, "align packages of the same batch on one row")

	return cmd
}

// wrote reports a written output file; stdout output is left alone.
func (c *CLI) wrote(path string) {
	if path != "" {
		printFile(path)
	}
}
