package manifest

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/matzehuels/monorail/pkg/errors"
)

// packageFile mirrors the subset of package.json the workspace cares about.
type packageFile struct {
	Name                 string            `json:"name"`
	Version              string            `json:"version"`
	Private              bool              `json:"private"`
	Scripts              map[string]string `json:"scripts"`
	Dependencies         map[string]string `json:"dependencies"`
	DevDependencies      map[string]string `json:"devDependencies"`
	PeerDependencies     map[string]string `json:"peerDependencies"`
	OptionalDependencies map[string]string `json:"optionalDependencies"`
}

// ParseFile reads the package.json at path and returns its Record. The
// record's Location is the absolute directory of path.
func ParseFile(path string) (Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Record{}, errors.Wrap(errors.ErrCodeInvalidManifest, err, "read %s", path)
	}
	dir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return Record{}, errors.Wrap(errors.ErrCodeInvalidPath, err, "resolve %s", path)
	}
	return Parse(data, dir)
}

// Parse decodes package.json content for a package located at dir.
func Parse(data []byte, dir string) (Record, error) {
	var pkg packageFile
	if err := json.Unmarshal(data, &pkg); err != nil {
		return Record{}, errors.Wrap(errors.ErrCodeInvalidManifest, err, "parse %s", filepath.Join(dir, FileName))
	}
	if err := errors.ValidatePackageName(pkg.Name); err != nil {
		return Record{}, errors.Wrap(errors.ErrCodeInvalidManifest, err, "%s", filepath.Join(dir, FileName))
	}

	rec := Record{
		Name:         pkg.Name,
		Version:      pkg.Version,
		Location:     dir,
		Private:      pkg.Private,
		Scripts:      pkg.Scripts,
		Dependencies: make(map[DependencyKind]map[string]string, len(Kinds)),
	}
	for kind, m := range map[DependencyKind]map[string]string{
		Dependencies:         pkg.Dependencies,
		DevDependencies:      pkg.DevDependencies,
		PeerDependencies:     pkg.PeerDependencies,
		OptionalDependencies: pkg.OptionalDependencies,
	} {
		if len(m) > 0 {
			rec.Dependencies[kind] = m
		}
	}
	return rec, nil
}
