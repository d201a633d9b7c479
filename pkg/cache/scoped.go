package cache

import (
	"context"
	"strings"
	"time"

	"github.com/matzehuels/monorail/pkg/observability"
)

// namespaced wraps a Cache with a key prefix and cache hooks.
type namespaced struct {
	inner   Cache
	prefix  string
	keyType string
	hooks   observability.CacheHooks
}

// Namespace returns a view of c that prepends prefix to every key and
// reports hits, misses and writes to hooks. The prefix without its
// trailing separator is used as the key type passed to hooks. A nil hooks
// value disables reporting.
//
// Namespaces can be nested:
//
//	npm := cache.Namespace(c, "npm:", hooks)
//	packuments := cache.Namespace(npm, "packument:", hooks)
//
// Clear on a namespace clears the whole underlying cache.
func Namespace(c Cache, prefix string, hooks observability.CacheHooks) Cache {
	return &namespaced{
		inner:   c,
		prefix:  prefix,
		keyType: strings.TrimRight(prefix, ":/"),
		hooks:   observability.Cache(hooks),
	}
}

func (n *namespaced) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, hit, err := n.inner.Get(ctx, n.prefix+key)
	if err == nil {
		if hit {
			n.hooks.OnCacheHit(ctx, n.keyType)
		} else {
			n.hooks.OnCacheMiss(ctx, n.keyType)
		}
	}
	return data, hit, err
}

func (n *namespaced) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := n.inner.Set(ctx, n.prefix+key, data, ttl); err != nil {
		return err
	}
	n.hooks.OnCacheSet(ctx, n.keyType, len(data))
	return nil
}

func (n *namespaced) Delete(ctx context.Context, key string) error {
	return n.inner.Delete(ctx, n.prefix+key)
}

func (n *namespaced) Clear(ctx context.Context) error { return n.inner.Clear(ctx) }

func (n *namespaced) Close() error { return n.inner.Close() }
