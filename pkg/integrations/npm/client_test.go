package npm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/monorail/pkg/cache"
)

func registry(t *testing.T, docs map[string]map[string]any) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		doc, ok := docs[r.URL.EscapedPath()]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(doc)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestFetchPackument(t *testing.T) {
	srv, _ := registry(t, map[string]map[string]any{
		"/left-pad": {
			"name":      "left-pad",
			"dist-tags": map[string]string{"latest": "1.10.0", "next": "2.0.0-rc.1"},
			"versions": map[string]any{
				"1.2.0":      map[string]any{},
				"1.10.0":     map[string]any{"repository": map[string]string{"url": "git+https://github.com/left-pad/left-pad.git"}},
				"1.9.0":      map[string]any{},
				"2.0.0-rc.1": map[string]any{},
			},
		},
	})

	c := NewClient(cache.NewNullCache(), srv.URL, time.Hour)
	p, err := c.FetchPackument(context.Background(), "left-pad", false)
	if err != nil {
		t.Fatalf("FetchPackument() error: %v", err)
	}
	if !slices.Equal(p.Versions, []string{"1.2.0", "1.9.0", "1.10.0", "2.0.0-rc.1"}) {
		t.Errorf("Versions = %v", p.Versions)
	}
	if p.Latest() != "1.10.0" {
		t.Errorf("Latest() = %q", p.Latest())
	}
	for tag, want := range map[string]string{"": "1.10.0", "latest": "1.10.0", "next": "2.0.0-rc.1", "beta": ""} {
		if got := p.Tag(tag); got != want {
			t.Errorf("Tag(%q) = %q, want %q", tag, got, want)
		}
	}
}

func TestLookupPublished(t *testing.T) {
	srv, hits := registry(t, map[string]map[string]any{
		"/@acme%2Fcore": {
			"name":      "@acme/core",
			"dist-tags": map[string]string{"latest": "1.0.0"},
			"versions":  map[string]any{"1.0.0": map[string]any{}},
		},
	})

	fc, _ := cache.NewFileCache(t.TempDir())
	c := NewClient(fc, srv.URL+"/", time.Hour)
	ctx := context.Background()

	tests := []struct {
		pkg, version string
		want         bool
	}{
		{"@acme/core", "1.0.0", true},
		{"@acme/core", "1.1.0", false},
		{"@acme/missing", "1.0.0", false},
	}
	for _, tt := range tests {
		p, err := c.Lookup(ctx, tt.pkg, tt.version)
		got := p != nil && p.HasVersion(tt.version)
		if err != nil {
			t.Fatalf("Lookup(%s@%s) error: %v", tt.pkg, tt.version, err)
		}
		if got != tt.want {
			t.Errorf("published(%s@%s) = %v, want %v", tt.pkg, tt.version, got, tt.want)
		}
	}

	// Positive answers are served from the cache.
	before := hits.Load()
	if p, _ := c.Lookup(ctx, "@acme/core", "1.0.0"); p == nil || !p.HasVersion("1.0.0") {
		t.Fatal("expected cached positive answer")
	}
	if hits.Load() != before {
		t.Errorf("positive lookup hit the registry again")
	}
}

func TestLookup(t *testing.T) {
	srv, _ := registry(t, map[string]map[string]any{
		"/core": {
			"name":      "core",
			"dist-tags": map[string]string{"latest": "1.0.0"},
			"versions":  map[string]any{"1.0.0": map[string]any{}},
		},
	})
	c := NewClient(nil, srv.URL, time.Hour)
	ctx := context.Background()

	p, err := c.Lookup(ctx, "core", "1.1.0")
	if err != nil {
		t.Fatal(err)
	}
	if p == nil || p.HasVersion("1.1.0") || p.Latest() != "1.0.0" {
		t.Errorf("Lookup(core@1.1.0) = %+v", p)
	}

	p, err = c.Lookup(ctx, "fresh", "0.1.0")
	if err != nil || p != nil {
		t.Errorf("Lookup(unknown) = %+v, %v, want nil, nil", p, err)
	}
}

func TestLookupServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewClient(nil, srv.URL, time.Hour)
	if _, err := c.Lookup(context.Background(), "pkg", "1.0.0"); err == nil {
		t.Error("expected error for 400 response")
	}
}

func TestEscapeName(t *testing.T) {
	tests := map[string]string{
		"left-pad":    "left-pad",
		"@scope/name": "@scope%2Fname",
	}
	for in, want := range tests {
		if got := EscapeName(in); got != want {
			t.Errorf("EscapeName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient(nil, "", time.Hour)
	if c.Registry() != DefaultRegistry {
		t.Errorf("Registry() = %q, want %q", c.Registry(), DefaultRegistry)
	}
}
