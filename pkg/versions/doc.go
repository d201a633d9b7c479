// Package versions decides whether a declared dependency value refers to a
// particular workspace package.
//
// Three kinds of value are understood:
//
//   - Version ranges ("^1.2.0", "~1.2", ">=1 <3", "1.x || 2.x"), checked with
//     Masterminds/semver against the target's current version.
//   - Git-host references ("github:owner/repo#v1.0.0",
//     "git+https://host/owner/repo.git#pkg@1.0.0"), which match when the
//     committish is a tag the target version would be released under, or
//     when a "#semver:<range>" suffix is satisfied.
//   - Directory references ("file:../core", "link:../core"), which match
//     when they resolve to the target's location.
//
// Anything else (dist-tags, tarball URLs, aliases) never matches and is left
// to the registry.
package versions
