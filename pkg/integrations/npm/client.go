package npm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"

	"github.com/matzehuels/monorail/pkg/cache"
	"github.com/matzehuels/monorail/pkg/integrations"
)

// DefaultRegistry is the public npm registry.
const DefaultRegistry = "https://registry.npmjs.org"

// Packument is the subset of a registry package document monorail reads.
type Packument struct {
	Name     string            `json:"name"`
	DistTags map[string]string `json:"dist_tags"`
	Versions []string          `json:"versions"` // Ascending semver order
}

// HasVersion reports whether version has been published.
func (p *Packument) HasVersion(version string) bool {
	return slices.Contains(p.Versions, version)
}

// Latest returns the version tagged "latest", or "" if none.
func (p *Packument) Latest() string { return p.DistTags["latest"] }

// Tag returns the version carrying the dist-tag, or "" if none. An empty
// tag means "latest", as it does for npm publish.
func (p *Packument) Tag(tag string) string {
	if tag == "" {
		return p.Latest()
	}
	return p.DistTags[tag]
}

type Client struct {
	*integrations.Client
	registry string
}

// NewClient creates a registry client for registry (DefaultRegistry when
// empty). Packuments are cached in c for ttl.
func NewClient(c cache.Cache, registry string, ttl time.Duration) *Client {
	if registry == "" {
		registry = DefaultRegistry
	}
	registry = strings.TrimRight(registry, "/")
	return &Client{
		Client:   integrations.NewClient(c, "npm:"+registry+":", ttl, map[string]string{"Accept": "application/json"}),
		registry: registry,
	}
}

// Registry returns the registry base URL.
func (c *Client) Registry() string { return c.registry }

// FetchPackument returns the registry document of pkg. Pass refresh to
// bypass the cache. Unknown packages yield an error wrapping
// [integrations.ErrNotFound].
func (c *Client) FetchPackument(ctx context.Context, pkg string, refresh bool) (*Packument, error) {
	pkg = strings.TrimSpace(pkg)
	var p Packument
	err := c.Cached(ctx, "packument:"+pkg, refresh, &p, func() error {
		return c.fetch(ctx, pkg, &p)
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Lookup returns the registry document of pkg as it stands for version. A
// cached document without version is refetched before it is returned, so
// freshly published versions are never missed. A package the registry does
// not know yields nil and no error.
func (c *Client) Lookup(ctx context.Context, pkg, version string) (*Packument, error) {
	p, err := c.FetchPackument(ctx, pkg, false)
	if errors.Is(err, integrations.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if p.HasVersion(version) {
		return p, nil
	}

	p, err = c.FetchPackument(ctx, pkg, true)
	if errors.Is(err, integrations.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (c *Client) fetch(ctx context.Context, pkg string, p *Packument) error {
	var data registryResponse
	if err := c.Get(ctx, c.registry+"/"+EscapeName(pkg), &data); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return fmt.Errorf("%w: npm package %s", err, pkg)
		}
		return err
	}

	*p = Packument{
		Name:     data.Name,
		DistTags: data.DistTags,
		Versions: sortVersions(slices.Collect(maps.Keys(data.Versions))),
	}
	return nil
}

// EscapeName encodes a package name for use in a registry URL. Scoped
// names keep their leading "@" and have the slash escaped.
func EscapeName(pkg string) string {
	if strings.HasPrefix(pkg, "@") {
		return strings.Replace(pkg, "/", "%2F", 1)
	}
	return pkg
}

// sortVersions orders valid semver versions ascending; invalid ones are
// placed last in lexical order.
func sortVersions(vs []string) []string {
	slices.SortFunc(vs, func(a, b string) int {
		va, errA := semver.NewVersion(a)
		vb, errB := semver.NewVersion(b)
		switch {
		case errA == nil && errB == nil:
			return va.Compare(vb)
		case errA == nil:
			return -1
		case errB == nil:
			return 1
		default:
			return strings.Compare(a, b)
		}
	})
	return vs
}

type registryResponse struct {
	Name     string                     `json:"name"`
	DistTags map[string]string          `json:"dist-tags"`
	Versions map[string]json.RawMessage `json:"versions"`
}
