// Package graph builds the package dependency graph of a workspace.
//
// # Overview
//
// A workspace is a repository holding many packages, each with its own
// manifest. [Build] turns the discovered [manifest.Record] values into a
// [Graph] with one [Node] per package. Every dependency a manifest declares
// is classified as either local (it names another package of the workspace
// and the declared value accepts that package's current version) or
// external (everything else, including name matches whose range is not
// satisfied).
//
// Local relationships are stored on both ends: a node knows its local
// dependencies and its local dependents. Both views are built once during
// construction and never patched afterwards.
//
// # Usage
//
//	records, err := manifest.Discover(root, cfg.Packages)
//	if err != nil {
//	    return err
//	}
//	g, err := graph.Build(records, graph.Options{Kinds: graph.AllKinds})
//	if err != nil {
//	    return err // *graph.DuplicateNameError for non-unique names
//	}
//	for _, n := range g.Nodes() {
//	    fmt.Println(n.Name(), n.LocalDependencyNames())
//	}
//
// # Dependency Kinds
//
// [Options.Kinds] chooses which manifest maps are read. [RuntimeOnly] reads
// only "dependencies"; [AllKinds] (the default) reads all four. A name
// declared in more than one selected map is resolved once, using the map
// with the highest precedence.
//
// # Ordering
//
// [Graph.Nodes] and [Graph.Names] return packages in the order of the input
// records. Dependency names are resolved in kind precedence order and then
// alphabetically, so the same records always produce the same graph.
//
// # Cycles
//
// The graph may contain cycles. Detecting and reporting them is the job of
// the schedule package.
package graph
