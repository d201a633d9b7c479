// Package npm provides an HTTP client for the npm registry API.
//
// # Overview
//
// monorail only reads from the registry: the publish command asks whether
// a package version already exists so that it can skip it, and where the
// dist-tag it publishes under points today. Publishing itself is delegated
// to the npm CLI.
//
// # Usage
//
//	client := npm.NewClient(c, cfg.Publish.Registry, 24*time.Hour)
//	p, err := client.Lookup(ctx, "@acme/core", "1.4.0")
//	if err != nil {
//	    return err
//	}
//	if p != nil && p.HasVersion("1.4.0") {
//	    // already on the registry
//	}
//
// # Caching
//
// Package documents are cached under a key that includes the registry URL.
// [Client.Lookup] re-fetches before answering "no", so a stale cache can
// only cause an extra request, never a duplicate publish.
package npm
