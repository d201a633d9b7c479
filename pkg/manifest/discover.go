package manifest

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/matzehuels/monorail/pkg/errors"
)

// DefaultPatterns is used when the workspace configuration lists none.
var DefaultPatterns = []string{"packages/*"}

// Discover expands the package glob patterns relative to root and parses
// the package.json of every matching directory. Patterns use doublestar
// syntax ("packages/**", "{apps,libs}/*"). Directories under node_modules
// are never considered.
//
// Records are returned sorted by location so that every run over the same
// tree sees the same order.
func Discover(root string, patterns []string) ([]Record, error) {
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "resolve %s", root)
	}

	fsys := os.DirFS(abs)
	seen := make(map[string]bool)
	var dirs []string

	for _, pattern := range patterns {
		pattern = strings.TrimSuffix(path.Clean(filepath.ToSlash(pattern)), "/"+FileName)
		if !doublestar.ValidatePattern(pattern) {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "invalid package pattern %q", pattern)
		}
		matches, err := doublestar.Glob(fsys, path.Join(pattern, FileName))
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "expand pattern %q", pattern)
		}
		for _, m := range matches {
			dir := path.Dir(m)
			if seen[dir] || inNodeModules(dir) {
				continue
			}
			if info, err := fs.Stat(fsys, m); err != nil || info.IsDir() {
				continue
			}
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}

	slices.Sort(dirs)
	records := make([]Record, 0, len(dirs))
	for _, dir := range dirs {
		rec, err := ParseFile(filepath.Join(abs, filepath.FromSlash(dir), FileName))
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func inNodeModules(dir string) bool {
	return slices.Contains(strings.Split(dir, "/"), "node_modules")
}
