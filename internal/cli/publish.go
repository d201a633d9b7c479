package cli

import (
	"context"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/monorail/pkg/errors"
	"github.com/matzehuels/monorail/pkg/executor"
	"github.com/matzehuels/monorail/pkg/git"
	"github.com/matzehuels/monorail/pkg/graph"
	"github.com/matzehuels/monorail/pkg/integrations/npm"
	"github.com/matzehuels/monorail/pkg/observability"
	"github.com/matzehuels/monorail/pkg/process"
	"github.com/matzehuels/monorail/pkg/schedule"
)

// registryChecks bounds concurrent registry lookups.
const registryChecks = 8

type publishOptions struct {
	filters      filterFlags
	yes          bool
	dryRun       bool
	forcePublish bool
	registry     string
	distTag      string
	concurrency  int
	noCache      bool
}

// publishCommand creates the publish command.
func (c *CLI) publishCommand() *cobra.Command {
	var opts publishOptions

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish packages whose current version is not on the registry",
		Long: `Publish every selected public package whose manifest version has not been
published yet, in dependency order, so a package is only published after the
packages it depends on.

monorail does not choose versions: bump them in package.json first. Packages
whose version is already on the registry are skipped.

A dependency cycle among the packages to publish is an error unless
--force-publish is given, in which case the cycle members are published last
in no particular order.`,
		Example: `  monorail publish
  monorail publish --dry-run
  monorail publish --yes --registry https://npm.internal.example.com --dist-tag next`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.publish(cmd, &opts)
		},
	}

	opts.filters.register(cmd)
	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "skip the confirmation prompt")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "show what would be published without publishing")
	cmd.Flags().BoolVar(&opts.forcePublish, "force-publish", false, "publish even when the packages form a dependency cycle")
	cmd.Flags().StringVar(&opts.registry, "registry", "", "registry URL (default: publish.registry from monorail.toml)")
	cmd.Flags().StringVar(&opts.distTag, "dist-tag", "", "dist-tag to publish under (npm default: latest)")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 4, "maximum number of packages published at once")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "always ask the registry instead of using cached answers")

	return cmd
}

func (c *CLI) publish(cmd *cobra.Command, opts *publishOptions) error {
	ctx := cmd.Context()
	ws, err := c.loadWorkspace()
	if err != nil {
		return err
	}
	opts.filters.noPrivate = true
	nodes, err := c.selectNodes(ctx, ws, &opts.filters)
	if err != nil {
		return err
	}

	registry := opts.registry
	if registry == "" {
		registry = ws.config.Publish.Registry
	}
	store, err := c.openCache(ctx, ws.config, opts.noCache)
	if err != nil {
		return err
	}
	defer store.Close()

	client := npm.NewClient(store, registry, ws.config.Publish.CacheTTL.Duration)
	client.SetHooks(observability.NewLogHTTPHooks(c.Logger))

	spin := newSpinner(ctx, cmd.ErrOrStderr(), "Checking "+client.Registry())
	spin.start()
	pending, docs, err := unpublished(ctx, client, nodes)
	spin.stop()
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		printInfo("Every selected package is already published")
		return nil
	}

	plan, err := c.plan(pending, schedule.Options{AllowCycles: opts.forcePublish})
	if err != nil {
		return err
	}

	printInfo("Packages to publish to %s:", StyleLink.Render(client.Registry()))
	for _, batch := range plan.All() {
		for _, n := range batch {
			printDetail("%s (%s)", n, publishNote(docs[n.Name()], opts.distTag))
		}
	}
	if opts.dryRun {
		printWarning("Dry run: nothing published")
		return nil
	}
	ok, err := confirm(ctx, "Publish these packages?", opts.yes)
	if err != nil {
		return err
	}
	if !ok {
		printInfo("Aborted")
		return nil
	}

	var head string
	if git.Available() {
		if sha, err := git.New(ws.root, c.Logger).CurrentSHA(ctx); err == nil {
			head = sha
		} else {
			c.Logger.Warn("publishing outside a git repository", "error", errors.UserMessage(err))
		}
	}

	runner := &process.Runner{Stdout: cmd.OutOrStdout(), Stderr: cmd.ErrOrStderr(), Logger: c.Logger}
	res := executor.Run(ctx, plan.All(), executor.Options{
		Concurrency: concurrency(cmd, opts.concurrency, ws),
		Hooks:       observability.NewLogExecutorHooks(c.Logger),
		Logger:      c.Logger,
	}, func(ctx context.Context, n *graph.Node) error {
		_, err := runner.Run(ctx, npmPublish(n, client.Registry(), opts.distTag, ws.root, head))
		return err
	})
	return report(ctx, res, "Published")
}

// unpublished returns the nodes whose version is missing from the
// registry, in input order, with the registry document of each. Packages
// the registry does not know have no document.
func unpublished(ctx context.Context, client *npm.Client, nodes []*graph.Node) ([]*graph.Node, map[string]*npm.Packument, error) {
	missing := make([]bool, len(nodes))
	found := make([]*npm.Packument, len(nodes))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(registryChecks)
	for i, n := range nodes {
		g.Go(func() error {
			if n.Version() == "" {
				return errors.New(errors.ErrCodeInvalidManifest, "%s has no version", n.Name())
			}
			if err := errors.ValidateNpmPackageName(n.Name()); err != nil {
				return err
			}
			p, err := client.Lookup(gctx, n.Name(), n.Version())
			if err != nil {
				return errors.Wrap(errors.ErrCodeNetwork, err, "check %s", n)
			}
			found[i] = p
			missing[i] = p == nil || !p.HasVersion(n.Version())
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var out []*graph.Node
	docs := make(map[string]*npm.Packument)
	for i, n := range nodes {
		if !missing[i] {
			continue
		}
		out = append(out, n)
		if found[i] != nil {
			docs[n.Name()] = found[i]
		}
	}
	return out, docs, nil
}

// publishNote describes what publishing moves: the version the dist-tag
// points at now, or that the package is new to the registry.
func publishNote(p *npm.Packument, distTag string) string {
	if p == nil {
		return "new package"
	}
	tag := distTag
	if tag == "" {
		tag = "latest"
	}
	if cur := p.Tag(distTag); cur != "" {
		return tag + " is " + cur
	}
	return "no " + tag + " tag yet"
}

// npmPublish builds the npm publish invocation for n. head, when known, is
// exported as MONORAIL_GIT_HEAD for prepublish scripts.
func npmPublish(n *graph.Node, registry, distTag, root, head string) process.Command {
	args := []string{"publish", "--registry", registry}
	if distTag != "" {
		args = append(args, "--tag", distTag)
	}
	env := process.PackageEnv(n.Name(), root)
	if head != "" {
		env = append(env, "MONORAIL_GIT_HEAD="+head)
	}
	return process.Command{
		Label: n.Name(),
		Dir:   n.Location(),
		Name:  "npm",
		Args:  args,
		Env:   env,
	}
}
