package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/monorail/pkg/config"
	"github.com/matzehuels/monorail/pkg/errors"
	"github.com/matzehuels/monorail/pkg/executor"
	"github.com/matzehuels/monorail/pkg/filter"
	"github.com/matzehuels/monorail/pkg/git"
	"github.com/matzehuels/monorail/pkg/graph"
	"github.com/matzehuels/monorail/pkg/manifest"
	"github.com/matzehuels/monorail/pkg/schedule"
)

// sinceLastTag is the --since value naming the most recent tag, or the
// root commit of an untagged repository.
const sinceLastTag = "last-tag"

// workspace is a loaded repository: its configuration and package graph.
type workspace struct {
	root   string
	config *config.Config
	graph  *graph.Graph
}

// loadWorkspace finds the workspace root from the start directory, loads
// its configuration and builds the package graph.
func (c *CLI) loadWorkspace() (*workspace, error) {
	prog := newProgress(c.Logger)
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	kinds, err := cfg.Kinds()
	if err != nil {
		return nil, err
	}

	records, err := manifest.Discover(cfg.Root, cfg.Packages)
	if err != nil {
		return nil, err
	}
	g, err := graph.Build(records, graph.Options{Kinds: kinds})
	if err != nil {
		return nil, err
	}

	c.Logger.Debug("workspace loaded", "root", cfg.Root, "packages", g.Len(), "edges", g.EdgeCount(), "took", prog.elapsed())
	return &workspace{root: cfg.Root, config: cfg, graph: g}, nil
}

// filterFlags are the selection flags shared by package-iterating commands.
type filterFlags struct {
	scope               []string
	ignore              []string
	since               string
	includeDependents   bool
	includeDependencies bool
	noPrivate           bool
}

func (f *filterFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringSliceVar(&f.scope, "scope", nil, "only include packages whose name matches the glob (repeatable)")
	fl.StringSliceVar(&f.ignore, "ignore", nil, "exclude packages whose name matches the glob (repeatable)")
	fl.StringVar(&f.since, "since", "", `only include packages changed since the git ref ("`+sinceLastTag+`": the last tag)`)
	fl.BoolVar(&f.includeDependents, "include-dependents", false, "also include packages that depend on the selected ones")
	fl.BoolVar(&f.includeDependencies, "include-dependencies", false, "also include packages the selected ones depend on")
	fl.BoolVar(&f.noPrivate, "no-private", false, "exclude private packages")
}

// selectNodes applies the filter flags to the workspace graph.
func (c *CLI) selectNodes(ctx context.Context, ws *workspace, f *filterFlags) ([]*graph.Node, error) {
	opts := filter.Options{
		Scope:               f.scope,
		Ignore:              f.ignore,
		IncludeDependents:   f.includeDependents,
		IncludeDependencies: f.includeDependencies,
		NoPrivate:           f.noPrivate,
	}
	if f.since != "" {
		changed, ref, err := c.changedSince(ctx, ws, f.since)
		if err != nil {
			return nil, err
		}
		c.Logger.Debug("filtering by changes", "since", ref, "changed", len(changed))
		opts.Since = changed
	}

	nodes, err := filter.Select(ws.graph, opts)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("packages selected", "count", len(nodes), "of", ws.graph.Len())
	return nodes, nil
}

// changedSince returns the names of packages with files changed since ref.
// sinceLastTag resolves to the most recent tag, or the root commit.
func (c *CLI) changedSince(ctx context.Context, ws *workspace, ref string) (map[string]bool, string, error) {
	if !git.Available() {
		return nil, "", errors.New(errors.ErrCodeGit, "git is not installed; --since needs a git repository")
	}
	gc := git.New(ws.root, c.Logger)
	if ref == sinceLastTag {
		last, err := gc.LastTagOrFirstCommit(ctx)
		if err != nil {
			return nil, "", err
		}
		ref = last
	}
	paths, err := gc.ChangedPaths(ctx, ref)
	if err != nil {
		return nil, "", err
	}
	return filter.Changed(ws.graph, paths), ref, nil
}

// scheduleFlags control how a selection is ordered.
type scheduleFlags struct {
	rejectCycles bool
	kinds        []string
}

func (s *scheduleFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&s.rejectCycles, "reject-cycles", true, "fail when the selection contains a dependency cycle")
	cmd.Flags().StringSliceVar(&s.kinds, "sort-kinds", nil, "dependency kinds that constrain ordering (default: all kinds the graph was built with)")
}

// options resolves the flags against the workspace configuration. Flags
// the user did not set fall back to monorail.toml.
func (s *scheduleFlags) options(cmd *cobra.Command, ws *workspace) (schedule.Options, error) {
	reject := ws.config.Command.RejectCycles
	if cmd.Flags().Changed("reject-cycles") {
		reject = s.rejectCycles
	}
	opts := schedule.Options{AllowCycles: !reject}
	kinds, err := parseKinds(s.kinds)
	if err != nil {
		return opts, err
	}
	opts.Kinds = kinds
	return opts, nil
}

// plan schedules nodes and warns about cycles that were allowed through.
func (c *CLI) plan(nodes []*graph.Node, opts schedule.Options) (*schedule.Plan, error) {
	plan, err := schedule.Batches(nodes, opts)
	if err != nil {
		return nil, err
	}
	if !plan.Ordered() {
		for _, cycle := range plan.Cycles {
			c.Logger.Warn("dependency cycle", "packages", strings.Join(cycle, ", "))
		}
		c.Logger.Warn("packages in cycles run last, without ordering", "count", len(plan.Unordered))
	}
	c.Logger.Debug("plan ready", "batches", len(plan.All()), "packages", plan.Len())
	return plan, nil
}

func parseKinds(names []string) (graph.DependencyKinds, error) {
	if len(names) == 0 {
		return nil, nil
	}
	kinds := make(graph.DependencyKinds, 0, len(names))
	for _, name := range names {
		k, err := manifest.ParseKind(strings.TrimSpace(name))
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}

// concurrency returns the --concurrency flag value, or the configured one
// when the flag was not set.
func concurrency(cmd *cobra.Command, flag int, ws *workspace) int {
	if cmd.Flags().Changed("concurrency") {
		return flag
	}
	return ws.config.Command.Concurrency
}

// report prints the outcome of an executor run and returns the error the
// command should exit with.
func report(ctx context.Context, res *executor.Result, verb string) error {
	for _, f := range res.Failures {
		printError("%s %s", f.Name, StyleDim.Render(errors.UserMessage(f.Err)))
	}
	if len(res.Skipped) > 0 {
		printWarning("%d %s not started: %s", len(res.Skipped), plural(len(res.Skipped), "package", "packages"), strings.Join(res.Skipped, ", "))
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err := res.Err(); err != nil {
		return err
	}
	printSuccess("%s %d %s %s", verb, len(res.Completed), plural(len(res.Completed), "package", "packages"),
		StyleDim.Render(fmt.Sprintf("(%s)", res.Duration.Round(time.Millisecond))))
	return nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
