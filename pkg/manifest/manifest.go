package manifest

import (
	"fmt"
	"maps"
	"path/filepath"
	"slices"

	"github.com/matzehuels/monorail/pkg/errors"
)

// FileName is the manifest file every workspace package carries.
const FileName = "package.json"

// DependencyKind names one of the four dependency maps of a manifest.
// The string value is the manifest key it is read from.
type DependencyKind string

const (
	Dependencies         DependencyKind = "dependencies"
	DevDependencies      DependencyKind = "devDependencies"
	PeerDependencies     DependencyKind = "peerDependencies"
	OptionalDependencies DependencyKind = "optionalDependencies"
)

// Kinds lists every dependency kind in precedence order. When a name is
// declared in several maps, the earliest kind in this list wins.
var Kinds = []DependencyKind{
	Dependencies,
	OptionalDependencies,
	PeerDependencies,
	DevDependencies,
}

// ParseKind converts a manifest key into a DependencyKind.
func ParseKind(s string) (DependencyKind, error) {
	k := DependencyKind(s)
	if slices.Contains(Kinds, k) {
		return k, nil
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "unknown dependency kind %q (valid: %v)", s, Kinds)
}

// Record is the immutable view of one discovered package. Records are
// produced once per run and never modified afterwards; the graph keeps a
// copy of each.
type Record struct {
	Name     string // Unique package name
	Version  string // Semantic version, empty for unversioned roots
	Location string // Absolute directory containing the manifest
	Private  bool   // Private packages are never published

	Scripts      map[string]string
	Dependencies map[DependencyKind]map[string]string
}

// Deps returns the dependency map of the given kind. The map is nil when
// the manifest declares none and must not be modified.
func (r Record) Deps(kind DependencyKind) map[string]string {
	return r.Dependencies[kind]
}

// DepNames returns the names declared in the given map, sorted.
func (r Record) DepNames(kind DependencyKind) []string {
	return slices.Sorted(maps.Keys(r.Dependencies[kind]))
}

// HasScript reports whether the manifest defines the named script.
func (r Record) HasScript(name string) bool {
	_, ok := r.Scripts[name]
	return ok
}

// ManifestPath returns the path of the record's package.json.
func (r Record) ManifestPath() string {
	return filepath.Join(r.Location, FileName)
}

// String renders the record as name@version, or just the name when it
// carries no version.
func (r Record) String() string {
	if r.Version == "" {
		return r.Name
	}
	return fmt.Sprintf("%s@%s", r.Name, r.Version)
}
