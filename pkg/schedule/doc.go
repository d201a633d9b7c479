// Package schedule turns a set of packages into dependency-ordered batches.
//
// # Overview
//
// Workspace commands operate on many packages at once, but a package must
// not be processed before the packages it depends on. [Batches] groups
// packages into levels with Kahn's algorithm: the first batch holds the
// packages with no local dependencies inside the selected set, the second
// holds those whose dependencies are all in the first batch, and so on.
// Packages inside one batch are independent of each other and may run in
// parallel.
//
//	plan, err := schedule.Graph(g, schedule.Options{})
//	if err != nil {
//	    return err // *schedule.CycleError
//	}
//	for i, batch := range plan.Batches {
//	    fmt.Println(i, batch)
//	}
//
// # Subsets
//
// Scheduling a filtered subset only considers edges between members of the
// subset. A dependency outside the subset is treated as already satisfied.
//
// # Cycles
//
// Packages that depend on each other, directly or through a chain, can
// never be ordered. Their strongly connected components are reported as a
// [*CycleError] unless [Options.AllowCycles] is set. With it, every package
// that could not be ordered is returned in [Plan.Unordered], which callers
// run as one final batch after all ordered batches have completed.
package schedule
