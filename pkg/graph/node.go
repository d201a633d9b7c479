package graph

import (
	"github.com/matzehuels/monorail/pkg/manifest"
)

// Edge is one resolved local relationship. On the dependency side Target is
// the package depended upon; on the dependent side Target is the package
// that declared the dependency. Spec and Kind are always taken from the
// declaring manifest.
type Edge struct {
	Spec   string                  // Declared value, e.g. "^1.0.0"
	Kind   manifest.DependencyKind // Map the declaration came from
	Target *Node
}

// ExternalDependency is a declared dependency that does not resolve to a
// package of the graph.
type ExternalDependency struct {
	Spec string
	Kind manifest.DependencyKind
}

// edgeList keeps name-keyed entries in insertion order.
type edgeList[T any] struct {
	names []string
	byKey map[string]T
}

func (l *edgeList[T]) add(name string, v T) {
	if l.byKey == nil {
		l.byKey = make(map[string]T)
	}
	if _, ok := l.byKey[name]; !ok {
		l.names = append(l.names, name)
	}
	l.byKey[name] = v
}

func (l *edgeList[T]) get(name string) (T, bool) {
	v, ok := l.byKey[name]
	return v, ok
}

func (l *edgeList[T]) has(name string) bool {
	_, ok := l.byKey[name]
	return ok
}

func (l *edgeList[T]) copyMap() map[string]T {
	m := make(map[string]T, len(l.names))
	for _, name := range l.names {
		m[name] = l.byKey[name]
	}
	return m
}

func (l *edgeList[T]) keys() []string {
	return append([]string(nil), l.names...)
}

// Node is a package inside a [Graph]. It is a read-only view of the
// package's manifest record plus the relationships resolved when the graph
// was built. Nodes are never modified after [Build] returns and may be
// shared between goroutines.
type Node struct {
	record       manifest.Record
	prereleaseID string

	dependencies edgeList[Edge]
	external     edgeList[ExternalDependency]
	dependents   edgeList[Edge]
}

// Name returns the package name.
func (n *Node) Name() string { return n.record.Name }

// Version returns the package version, empty for unversioned packages.
func (n *Node) Version() string { return n.record.Version }

// Location returns the absolute directory of the package.
func (n *Node) Location() string { return n.record.Location }

// Private reports whether the package is excluded from publishing.
func (n *Node) Private() bool { return n.record.Private }

// Record returns the manifest record the node was built from.
func (n *Node) Record() manifest.Record { return n.record }

// PrereleaseID returns the textual prerelease identifier of the version,
// "rc" for "1.2.3-rc.4". It is empty for release versions.
func (n *Node) PrereleaseID() string { return n.prereleaseID }

// LocalDependencies returns the dependencies that resolved to packages of
// the same graph, keyed by name. The map is a copy.
func (n *Node) LocalDependencies() map[string]Edge { return n.dependencies.copyMap() }

// LocalDependencyNames returns the names of the local dependencies in the
// order they were resolved: by dependency kind precedence, then by name.
func (n *Node) LocalDependencyNames() []string { return n.dependencies.keys() }

// LocalDependency returns the local edge to the named package.
func (n *Node) LocalDependency(name string) (Edge, bool) { return n.dependencies.get(name) }

// DependsOn reports whether the node has a local edge to the named package.
func (n *Node) DependsOn(name string) bool { return n.dependencies.has(name) }

// ExternalDependencies returns every selected declared dependency that did
// not resolve locally, keyed by name. The map is a copy.
func (n *Node) ExternalDependencies() map[string]ExternalDependency { return n.external.copyMap() }

// ExternalDependencyNames returns the external dependency names in
// resolution order.
func (n *Node) ExternalDependencyNames() []string { return n.external.keys() }

// LocalDependents returns the packages of the graph that depend on this
// node, keyed by the dependent's name. The map is a copy.
func (n *Node) LocalDependents() map[string]Edge { return n.dependents.copyMap() }

// LocalDependentNames returns the dependent names in graph order.
func (n *Node) LocalDependentNames() []string { return n.dependents.keys() }

// String returns name@version.
func (n *Node) String() string { return n.record.String() }
