package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/monorail/pkg/filter"
	mio "github.com/matzehuels/monorail/pkg/io"
)

// changedCommand creates the changed command. It lists the public packages
// with changes since the last release, plus everything depending on them.
func (c *CLI) changedCommand() *cobra.Command {
	var (
		asJSON bool
		since  string
	)

	cmd := &cobra.Command{
		Use:     "changed",
		Aliases: []string{"updated"},
		Short:   "List packages changed since the last release",
		Long: `List the packages that changed since the most recent git tag (or the first
commit when the repository has no tags), together with every package that
depends on a changed one. Private packages are never listed.`,
		Example: `  monorail changed
  monorail changed --since main --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := c.loadWorkspace()
			if err != nil {
				return err
			}
			changed, ref, err := c.changedSince(cmd.Context(), ws, since)
			if err != nil {
				return err
			}
			nodes, err := filter.Select(ws.graph, filter.Options{
				Since:             changed,
				IncludeDependents: true,
				NoPrivate:         true,
			})
			if err != nil {
				return err
			}
			c.Logger.Debug("changed packages", "since", ref, "direct", len(changed), "with dependents", len(nodes))

			if asJSON {
				out := make([]packageInfo, len(nodes))
				for i, n := range nodes {
					out[i] = packageInfo{Name: n.Name(), Version: n.Version(), Private: n.Private(), Location: n.Location()}
				}
				return mio.WriteJSON(out, cmd.OutOrStdout())
			}

			w := cmd.OutOrStdout()
			if len(nodes) == 0 {
				fmt.Fprintln(w, StyleDim.Render("no changed packages since "+ref))
				return nil
			}
			for _, n := range nodes {
				line := StyleValue.Render(n.Name()) + " " + StyleNumber.Render(versionLabel(n))
				if !changed[n.Name()] {
					line += " " + StyleDim.Render("(dependent)")
				}
				fmt.Fprintln(w, line)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	cmd.Flags().StringVar(&since, "since", sinceLastTag, "git ref to compare against")

	return cmd
}
