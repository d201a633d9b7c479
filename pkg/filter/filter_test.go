package filter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/monorail/pkg/errors"
	"github.com/matzehuels/monorail/pkg/graph"
	"github.com/matzehuels/monorail/pkg/manifest"
)

// workspace:
//
//	@acme/app -> @acme/ui -> @acme/core
//	@acme/cli -> @acme/core
//	tools (private) -> nothing
func workspace(t *testing.T) *graph.Graph {
	t.Helper()
	rec := func(name string, private bool, deps ...string) manifest.Record {
		m := map[string]string{}
		for _, d := range deps {
			m[d] = "^1.0.0"
		}
		return manifest.Record{
			Name:         name,
			Version:      "1.0.0",
			Location:     filepath.Join(string(filepath.Separator), "ws", "packages", filepath.Base(name)),
			Private:      private,
			Dependencies: map[manifest.DependencyKind]map[string]string{manifest.Dependencies: m},
		}
	}
	g, err := graph.Build([]manifest.Record{
		rec("@acme/app", false, "@acme/ui"),
		rec("@acme/cli", false, "@acme/core"),
		rec("@acme/core", false),
		rec("@acme/ui", false, "@acme/core"),
		rec("tools", true),
	}, graph.Options{})
	require.NoError(t, err)
	return g
}

func names(nodes []*graph.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Name()
	}
	return out
}

func TestSelect(t *testing.T) {
	g := workspace(t)

	tests := []struct {
		name string
		opts Options
		want []string
	}{
		{
			name: "All",
			want: []string{"@acme/app", "@acme/cli", "@acme/core", "@acme/ui", "tools"},
		},
		{
			name: "Scope",
			opts: Options{Scope: []string{"@acme/*"}},
			want: []string{"@acme/app", "@acme/cli", "@acme/core", "@acme/ui"},
		},
		{
			name: "ScopeBraces",
			opts: Options{Scope: []string{"@acme/{ui,cli}"}},
			want: []string{"@acme/cli", "@acme/ui"},
		},
		{
			name: "Ignore",
			opts: Options{Ignore: []string{"@acme/c*"}},
			want: []string{"@acme/app", "@acme/ui", "tools"},
		},
		{
			name: "NoPrivate",
			opts: Options{NoPrivate: true},
			want: []string{"@acme/app", "@acme/cli", "@acme/core", "@acme/ui"},
		},
		{
			name: "Since",
			opts: Options{Since: map[string]bool{"@acme/ui": true}},
			want: []string{"@acme/ui"},
		},
		{
			name: "SinceEmpty",
			opts: Options{Since: map[string]bool{}},
			want: []string{},
		},
		{
			name: "IncludeDependents",
			opts: Options{Scope: []string{"@acme/core"}, IncludeDependents: true},
			want: []string{"@acme/app", "@acme/cli", "@acme/core", "@acme/ui"},
		},
		{
			name: "IncludeDependencies",
			opts: Options{Scope: []string{"@acme/app"}, IncludeDependencies: true},
			want: []string{"@acme/app", "@acme/core", "@acme/ui"},
		},
		{
			name: "DependenciesOfDependents",
			opts: Options{Scope: []string{"@acme/ui"}, IncludeDependents: true, IncludeDependencies: true},
			want: []string{"@acme/app", "@acme/core", "@acme/ui"},
		},
		{
			name: "IgnoredDependencyComesBack",
			opts: Options{Scope: []string{"@acme/app"}, Ignore: []string{"@acme/core"}, IncludeDependencies: true},
			want: []string{"@acme/app", "@acme/core", "@acme/ui"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Select(g, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(got))
		})
	}
}

func TestSelectInvalidGlob(t *testing.T) {
	g := workspace(t)

	_, err := Select(g, Options{Scope: []string{"@acme/[ui"}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput), "code = %s", errors.GetCode(err))

	_, err = Select(g, Options{Ignore: []string{"{a,b"}})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
}

func TestMatch(t *testing.T) {
	ok, err := Match("@acme/*", "@acme/ui")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Match("*", "@acme/ui")
	require.NoError(t, err)
	assert.False(t, ok, "* must not cross the scope separator")

	_, err = Match("[", "x")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
}

func TestChanged(t *testing.T) {
	sep := string(filepath.Separator)
	root := filepath.Join(sep, "ws")
	g, err := graph.Build([]manifest.Record{
		{Name: "parent", Version: "1.0.0", Location: filepath.Join(root, "packages", "parent")},
		{Name: "nested", Version: "1.0.0", Location: filepath.Join(root, "packages", "parent", "nested")},
		{Name: "core", Version: "1.0.0", Location: filepath.Join(root, "packages", "core")},
		{Name: "core-extra", Version: "1.0.0", Location: filepath.Join(root, "packages", "core-extra")},
	}, graph.Options{})
	require.NoError(t, err)

	got := Changed(g, []string{
		filepath.Join(root, "packages", "parent", "nested", "index.js"),
		filepath.Join(root, "packages", "core-extra", "package.json"),
		filepath.Join(root, "README.md"),
	})
	assert.Equal(t, map[string]bool{"nested": true, "core-extra": true}, got)
}

func TestChangedSymlinkedRoot(t *testing.T) {
	target := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(target, "packages", "core"), 0o755))
	link := filepath.Join(t.TempDir(), "ws")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	resolved, err := filepath.EvalSymlinks(target)
	require.NoError(t, err)

	g, err := graph.Build([]manifest.Record{
		{Name: "core", Version: "1.0.0", Location: filepath.Join(link, "packages", "core")},
	}, graph.Options{})
	require.NoError(t, err)

	got := Changed(g, []string{filepath.Join(resolved, "packages", "core", "index.js")})
	assert.Equal(t, map[string]bool{"core": true}, got)
}
