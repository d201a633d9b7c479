package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/monorail/pkg/graph"
	mio "github.com/matzehuels/monorail/pkg/io"
	"github.com/matzehuels/monorail/pkg/schedule"
)

// orderCommand creates the order command, which prints the batch plan
// without running anything.
func (c *CLI) orderCommand() *cobra.Command {
	var (
		filters  filterFlags
		sched    scheduleFlags
		asJSON   bool
		fromFile string
	)

	cmd := &cobra.Command{
		Use:   "order",
		Short: "Print the order packages would be processed in",
		Long: `Print the batches a run would use. Packages in the same batch have no
dependencies on each other and run in parallel; each batch starts only after
the previous one has finished.

With --from, the graph is read from a file written by "monorail graph
--format json" instead of the workspace.`,
		Example: `  monorail order
  monorail order --json --scope '@acme/*' --include-dependencies
  monorail order --reject-cycles=false
  monorail order --from graph.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				nodes []*graph.Node
				opts  schedule.Options
			)
			if fromFile != "" {
				g, err := mio.ImportJSON(fromFile, graph.Options{})
				if err != nil {
					return err
				}
				kinds, err := parseKinds(sched.kinds)
				if err != nil {
					return err
				}
				nodes = g.Nodes()
				opts = schedule.Options{AllowCycles: !sched.rejectCycles, Kinds: kinds}
			} else {
				ws, err := c.loadWorkspace()
				if err != nil {
					return err
				}
				if nodes, err = c.selectNodes(cmd.Context(), ws, &filters); err != nil {
					return err
				}
				if opts, err = sched.options(cmd, ws); err != nil {
					return err
				}
			}

			plan, err := c.plan(nodes, opts)
			if err != nil {
				return err
			}
			if asJSON {
				return mio.WriteJSON(mio.FromPlan(plan), cmd.OutOrStdout())
			}
			writePlan(cmd.OutOrStdout(), plan)
			return nil
		},
	}

	filters.register(cmd)
	sched.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the plan as JSON")
	cmd.Flags().StringVar(&fromFile, "from", "", "read the graph from a JSON export instead of the workspace")

	return cmd
}

// writePlan renders the plan as a table with one row per batch.
func writePlan(w io.Writer, plan *schedule.Plan) {
	if plan.Len() == 0 {
		fmt.Fprintln(w, StyleDim.Render("no packages selected"))
		return
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	rows := make([][]string, 0, len(plan.Batches)+1)
	for i, batch := range plan.Batches {
		rows = append(rows, []string{strconv.Itoa(i), nodeNames(batch)})
	}
	unordered := -2
	if !plan.Ordered() {
		unordered = len(rows)
		rows = append(rows, []string{"cycle", nodeNames(plan.Unordered)})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Batch", "Packages").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case row == unordered:
				return lipgloss.NewStyle().Foreground(colorYellow)
			case col == 0:
				return lipgloss.NewStyle().Foreground(colorCyan)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})

	fmt.Fprintln(w, t.Render())
	fmt.Fprintln(w, StyleDim.Render(fmt.Sprintf("%d packages in %d batches", plan.Len(), len(plan.All()))))
}

func nodeNames(nodes []*graph.Node) string {
	names := make([]string, len(nodes))
	for i, n := range nodes {
		names[i] = n.Name()
	}
	return strings.Join(names, ", ")
}
