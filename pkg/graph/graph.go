package graph

import (
	"maps"
	"slices"

	"github.com/matzehuels/monorail/pkg/errors"
	"github.com/matzehuels/monorail/pkg/manifest"
	"github.com/matzehuels/monorail/pkg/versions"
)

// DependencyKinds selects which manifest dependency maps contribute edges.
type DependencyKinds []manifest.DependencyKind

var (
	// RuntimeOnly considers only "dependencies".
	RuntimeOnly = DependencyKinds{manifest.Dependencies}

	// AllKinds considers all four dependency maps.
	AllKinds = DependencyKinds(manifest.Kinds)
)

// Contains reports whether kind is selected.
func (k DependencyKinds) Contains(kind manifest.DependencyKind) bool {
	return slices.Contains(k, kind)
}

// ordered returns the selected kinds in precedence order. An empty
// selection means every kind.
func (k DependencyKinds) ordered() []manifest.DependencyKind {
	if len(k) == 0 {
		return manifest.Kinds
	}
	out := make([]manifest.DependencyKind, 0, len(k))
	for _, kind := range manifest.Kinds {
		if k.Contains(kind) {
			out = append(out, kind)
		}
	}
	return out
}

// Options configures [Build].
type Options struct {
	// Kinds selects the dependency maps that are read. The zero value
	// selects all of them.
	Kinds DependencyKinds
}

// Graph is the package dependency graph of a workspace. It is immutable
// once built; all queries are safe for concurrent use.
type Graph struct {
	nodes  []*Node
	byName map[string]*Node
	kinds  []manifest.DependencyKind
}

// Build constructs the graph from the workspace's manifest records.
//
// Construction runs in two passes. The first creates one node per record
// and indexes it by name; a name claimed by more than one record fails the
// whole build with a [*DuplicateNameError] naming every conflicting
// location. The second pass resolves each selected dependency declaration
// with [versions.Resolve]: declarations that match a node of the graph
// become local edges (recorded on both ends), everything else is recorded
// as external. A package that declares itself is treated as external.
//
// When one name appears in several selected maps of the same manifest the
// first one in precedence order wins: dependencies, optionalDependencies,
// peerDependencies, devDependencies.
//
// Build does not look for cycles; that is left to the scheduler.
func Build(records []manifest.Record, opts Options) (*Graph, error) {
	g := &Graph{
		nodes:  make([]*Node, 0, len(records)),
		byName: make(map[string]*Node, len(records)),
		kinds:  opts.Kinds.ordered(),
	}

	locations := make(map[string][]string)
	for _, rec := range records {
		if rec.Name == "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "package at %q has no name", rec.Location)
		}
		locations[rec.Name] = append(locations[rec.Name], rec.Location)
		if _, exists := g.byName[rec.Name]; exists {
			continue
		}
		n := &Node{
			record:       cloneRecord(rec),
			prereleaseID: versions.PrereleaseID(rec.Version),
		}
		g.nodes = append(g.nodes, n)
		g.byName[rec.Name] = n
	}
	if err := duplicates(locations); err != nil {
		return nil, err
	}

	for _, n := range g.nodes {
		g.resolve(n)
	}
	return g, nil
}

func (g *Graph) resolve(n *Node) {
	for _, kind := range g.kinds {
		deps := n.record.Deps(kind)
		for _, name := range n.record.DepNames(kind) {
			if n.dependencies.has(name) || n.external.has(name) {
				continue
			}
			spec := deps[name]
			target, ok := g.byName[name]
			if ok && target != n && versions.Resolve(spec, n.Location(), target.target()) != versions.NoMatch {
				n.dependencies.add(name, Edge{Spec: spec, Kind: kind, Target: target})
				target.dependents.add(n.Name(), Edge{Spec: spec, Kind: kind, Target: n})
				continue
			}
			n.external.add(name, ExternalDependency{Spec: spec, Kind: kind})
		}
	}
}

func (n *Node) target() versions.Target {
	return versions.Target{Name: n.Name(), Version: n.Version(), Location: n.Location()}
}

func duplicates(locations map[string][]string) error {
	var dups []Duplicate
	for _, name := range slices.Sorted(maps.Keys(locations)) {
		if locs := locations[name]; len(locs) > 1 {
			dups = append(dups, Duplicate{Name: name, Locations: slices.Sorted(slices.Values(locs))})
		}
	}
	if len(dups) == 0 {
		return nil
	}
	return &DuplicateNameError{Duplicates: dups}
}

func cloneRecord(r manifest.Record) manifest.Record {
	r.Scripts = maps.Clone(r.Scripts)
	deps := make(map[manifest.DependencyKind]map[string]string, len(r.Dependencies))
	for kind, m := range r.Dependencies {
		deps[kind] = maps.Clone(m)
	}
	r.Dependencies = deps
	return r
}

// Get returns the node with the given name.
func (g *Graph) Get(name string) (*Node, bool) {
	n, ok := g.byName[name]
	return n, ok
}

// Nodes returns every node in record order. The slice is a copy.
func (g *Graph) Nodes() []*Node { return slices.Clone(g.nodes) }

// Len returns the number of packages in the graph.
func (g *Graph) Len() int { return len(g.nodes) }

// Names returns the package names in record order.
func (g *Graph) Names() []string {
	names := make([]string, len(g.nodes))
	for i, n := range g.nodes {
		names[i] = n.Name()
	}
	return names
}

// Kinds returns the dependency kinds the graph was built from, in
// precedence order.
func (g *Graph) Kinds() DependencyKinds { return slices.Clone(g.kinds) }

// EdgeCount returns the number of local edges.
func (g *Graph) EdgeCount() int {
	count := 0
	for _, n := range g.nodes {
		count += len(n.dependencies.names)
	}
	return count
}
