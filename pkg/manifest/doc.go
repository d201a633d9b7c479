// Package manifest reads workspace packages from disk.
//
// A workspace is a repository whose sub-directories each carry a
// package.json. [Discover] expands the configured glob patterns, parses
// every manifest it finds with [ParseFile] and returns one [Record] per
// package. Records are plain values: they hold the package name, version,
// location, scripts and the four dependency maps keyed by [DependencyKind].
//
// Records are the only input the dependency graph consumes; this package
// does not interpret version ranges or link packages together.
package manifest
