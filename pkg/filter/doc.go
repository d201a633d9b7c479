// Package filter narrows a package graph to the nodes a command should
// act on.
//
// The CLI's --scope, --ignore, --since, --include-dependents,
// --include-dependencies and --no-private flags all map onto [Options].
// [Select] keeps graph order, so the result can be handed straight to the
// scheduler, which orders only the selected subset.
//
// [Changed] turns a list of changed files (from git) into the set of
// packages owning them, for use as Options.Since.
package filter
