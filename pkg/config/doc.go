// Package config loads the workspace configuration file, monorail.toml.
//
// The file lives at the repository root and is optional: [Load] falls back
// to [Default] when it is missing, and any key the file omits keeps its
// default value.
//
//	version = "independent"
//	packages = ["packages/*", "apps/*"]
//
//	[command]
//	concurrency = 8
//	dependency_kinds = ["dependencies", "peerDependencies"]
//
//	[publish]
//	registry = "https://registry.npmjs.org"
//	cache_ttl = "1h"
//
// Command-line flags override these values; the config package only
// supplies the starting point.
package config
