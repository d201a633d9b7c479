package filter

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/matzehuels/monorail/pkg/errors"
	"github.com/matzehuels/monorail/pkg/graph"
)

// Options selects a subset of a graph. The zero value selects every node.
type Options struct {
	// Scope keeps only packages whose name matches at least one glob.
	Scope []string

	// Ignore drops packages whose name matches any glob.
	Ignore []string

	// Since, when non-nil, keeps only the named packages. An empty,
	// non-nil set selects nothing before dependents and dependencies are
	// added.
	Since map[string]bool

	// IncludeDependents adds every package that transitively depends on a
	// selected one.
	IncludeDependents bool

	// IncludeDependencies adds every package a selected one transitively
	// depends on.
	IncludeDependencies bool

	// NoPrivate drops private packages. It is applied last.
	NoPrivate bool
}

// Select returns the nodes of g chosen by opts, in graph order.
//
// Scope, Ignore and Since narrow the selection first; the transitive
// expansions then add to it, so a package excluded by Ignore can come back
// as the dependency of a selected one. NoPrivate is applied at the end.
func Select(g *graph.Graph, opts Options) ([]*graph.Node, error) {
	if err := validate(opts.Scope, "scope"); err != nil {
		return nil, err
	}
	if err := validate(opts.Ignore, "ignore"); err != nil {
		return nil, err
	}

	selected := make(map[string]bool, g.Len())
	for _, n := range g.Nodes() {
		name := n.Name()
		if len(opts.Scope) > 0 && !matchAny(opts.Scope, name) {
			continue
		}
		if matchAny(opts.Ignore, name) {
			continue
		}
		if opts.Since != nil && !opts.Since[name] {
			continue
		}
		selected[name] = true
	}

	if opts.IncludeDependents {
		expand(g, keys(selected), selected, (*graph.Node).LocalDependentNames)
	}
	// Dependencies of added dependents are included too.
	if opts.IncludeDependencies {
		expand(g, keys(selected), selected, (*graph.Node).LocalDependencyNames)
	}

	out := make([]*graph.Node, 0, len(selected))
	for _, n := range g.Nodes() {
		if !selected[n.Name()] {
			continue
		}
		if opts.NoPrivate && n.Private() {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

// Match reports whether name matches the glob pattern. Scoped names such
// as "@acme/ui" contain a slash, so "@acme/*" matches every package of the
// scope.
func Match(pattern, name string) (bool, error) {
	ok, err := doublestar.Match(pattern, name)
	if err != nil {
		return false, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid glob %q", pattern)
	}
	return ok, nil
}

// Changed maps changed file paths to the packages that own them. A file
// belongs to the package with the longest location that contains it. Paths
// outside every package are ignored. Package locations are compared with
// symlinks resolved, so paths should be resolved too, as git reports them.
// The result is keyed by package name, ready for Options.Since.
func Changed(g *graph.Graph, paths []string) map[string]bool {
	type owner struct {
		dir  string
		name string
	}
	owners := make([]owner, 0, g.Len())
	for _, n := range g.Nodes() {
		owners = append(owners, owner{dir: resolve(n.Location()), name: n.Name()})
	}
	// Longest first so nested packages win over their parents.
	slices.SortFunc(owners, func(a, b owner) int { return len(b.dir) - len(a.dir) })

	changed := make(map[string]bool)
	for _, p := range paths {
		p = filepath.Clean(p)
		for _, o := range owners {
			if p == o.dir || strings.HasPrefix(p, o.dir+string(filepath.Separator)) {
				changed[o.name] = true
				break
			}
		}
	}
	return changed
}

// resolve evaluates symlinks in dir, falling back to the cleaned path when
// it does not exist.
func resolve(dir string) string {
	if r, err := filepath.EvalSymlinks(dir); err == nil {
		return r
	}
	return filepath.Clean(dir)
}

func validate(patterns []string, flag string) error {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return errors.New(errors.ErrCodeInvalidInput, "invalid %s glob %q", flag, p)
		}
	}
	return nil
}

func matchAny(patterns []string, name string) bool {
	for _, p := range patterns {
		// Patterns are validated up front.
		if ok, _ := doublestar.Match(p, name); ok {
			return true
		}
	}
	return false
}

func expand(g *graph.Graph, seeds []string, selected map[string]bool, next func(*graph.Node) []string) {
	stack := slices.Clone(seeds)
	visited := make(map[string]bool, len(seeds))
	for _, s := range seeds {
		visited[s] = true
	}
	for len(stack) > 0 {
		name := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n, ok := g.Get(name)
		if !ok {
			continue
		}
		for _, m := range next(n) {
			if visited[m] {
				continue
			}
			visited[m] = true
			selected[m] = true
			stack = append(stack, m)
		}
	}
}

func keys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
