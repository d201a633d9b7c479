package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/monorail/pkg/graph"
	mio "github.com/matzehuels/monorail/pkg/io"
)

type listOptions struct {
	filters filterFlags
	json    bool
	graph   bool
	all     bool
	long    bool
}

// packageInfo is the JSON form of a listed package.
type packageInfo struct {
	Name     string `json:"name"`
	Version  string `json:"version,omitempty"`
	Private  bool   `json:"private"`
	Location string `json:"location"`
}

// listCommand creates the list command.
func (c *CLI) listCommand() *cobra.Command {
	var opts listOptions

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the packages of the workspace",
		Long: `List the packages of the workspace in discovery order.

Private packages are hidden unless --all is given.`,
		Example: `  monorail ls
  monorail ls --all --long
  monorail ls --json --scope '@acme/*'
  monorail ls --graph`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := c.loadWorkspace()
			if err != nil {
				return err
			}
			nodes, err := c.selectNodes(cmd.Context(), ws, &opts.filters)
			if err != nil {
				return err
			}
			if !opts.all {
				nodes = withoutPrivate(nodes)
			}
			return writeList(cmd.OutOrStdout(), nodes, opts)
		},
	}

	opts.filters.register(cmd)
	cmd.Flags().BoolVar(&opts.json, "json", false, "print JSON")
	cmd.Flags().BoolVar(&opts.graph, "graph", false, "print each package with its local dependencies as JSON")
	cmd.Flags().BoolVarP(&opts.all, "all", "a", false, "include private packages")
	cmd.Flags().BoolVarP(&opts.long, "long", "l", false, "show versions and locations")

	return cmd
}

func writeList(w io.Writer, nodes []*graph.Node, opts listOptions) error {
	switch {
	case opts.graph:
		adjacency := make(map[string][]string, len(nodes))
		in := make(map[string]bool, len(nodes))
		for _, n := range nodes {
			in[n.Name()] = true
		}
		for _, n := range nodes {
			deps := []string{}
			for _, d := range n.LocalDependencyNames() {
				if in[d] {
					deps = append(deps, d)
				}
			}
			adjacency[n.Name()] = deps
		}
		return mio.WriteJSON(adjacency, w)

	case opts.json:
		out := make([]packageInfo, len(nodes))
		for i, n := range nodes {
			out[i] = packageInfo{Name: n.Name(), Version: n.Version(), Private: n.Private(), Location: n.Location()}
		}
		return mio.WriteJSON(out, w)
	}

	for _, n := range nodes {
		line := StyleValue.Render(n.Name())
		if opts.long {
			line += " " + StyleNumber.Render(versionLabel(n))
			if n.Private() {
				line += " " + StyleWarning.Render("(private)")
			}
			line += " " + StyleDim.Render(n.Location())
		} else if n.Private() {
			line += " " + StyleWarning.Render("(private)")
		}
		fmt.Fprintln(w, line)
	}
	return nil
}

func versionLabel(n *graph.Node) string {
	if n.Version() == "" {
		return "-"
	}
	return "v" + n.Version()
}

func withoutPrivate(nodes []*graph.Node) []*graph.Node {
	out := make([]*graph.Node, 0, len(nodes))
	for _, n := range nodes {
		if !n.Private() {
			out = append(out, n)
		}
	}
	return out
}
