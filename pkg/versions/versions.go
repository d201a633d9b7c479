package versions

import (
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Target is the package a declared dependency may resolve to.
type Target struct {
	Name     string
	Version  string
	Location string
}

// Match describes how a declared dependency value resolved against a
// target. NoMatch is the zero value.
type Match int

const (
	NoMatch Match = iota
	RangeMatch
	GitMatch
	DirectoryMatch
)

func (m Match) String() string {
	switch m {
	case RangeMatch:
		return "range"
	case GitMatch:
		return "git"
	case DirectoryMatch:
		return "directory"
	default:
		return "none"
	}
}

// Resolve decides whether spec, declared by the package at from, refers to
// target. A git-host reference matches when its committish is a tag the
// target would carry; a file: or link: spec matches when it points at the
// target's directory; anything else is treated as a version range.
//
// Values that are neither (dist-tags like "latest", URLs to tarballs,
// aliases) never match.
func Resolve(spec, from string, target Target) Match {
	spec = strings.TrimSpace(spec)

	if dir, ok := directorySpec(spec); ok {
		if from == "" || target.Location == "" {
			return NoMatch
		}
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(from, dir)
		}
		if filepath.Clean(dir) == filepath.Clean(target.Location) {
			return DirectoryMatch
		}
		return NoMatch
	}

	if ref, ok := ParseGitRef(spec); ok {
		if ref.Range != "" {
			if Satisfies(target.Version, ref.Range) {
				return GitMatch
			}
			return NoMatch
		}
		if committishMatches(ref.Committish, target) {
			return GitMatch
		}
		return NoMatch
	}

	if Satisfies(target.Version, spec) {
		return RangeMatch
	}
	return NoMatch
}

// Satisfies reports whether version falls inside the range expression.
// version must be a full major.minor.patch; a leading "v" or "=" is
// ignored. An exact textual match of a valid version always satisfies.
// An empty range is "*". Invalid versions or ranges never satisfy.
func Satisfies(version, rangeSpec string) bool {
	v, err := parseVersion(version)
	if err != nil {
		return false
	}
	if rangeSpec == version {
		return true
	}
	if rangeSpec == "" {
		rangeSpec = "*"
	}
	c, err := semver.NewConstraint(rangeSpec)
	if err != nil {
		return false
	}
	return c.Check(v)
}

// PrereleaseID returns the textual prerelease identifier of version, e.g.
// "alpha" for "1.2.3-alpha.4". It returns "" when the version has no
// prerelease component, when that component starts with a number, or when
// version is not valid semver.
func PrereleaseID(version string) string {
	v, err := parseVersion(version)
	if err != nil || v.Prerelease() == "" {
		return ""
	}
	id, _, _ := strings.Cut(v.Prerelease(), ".")
	if isNumeric(id) {
		return ""
	}
	return id
}

// parseVersion rejects partial versions such as "1.0" that
// semver.NewVersion would coerce to "1.0.0".
func parseVersion(version string) (*semver.Version, error) {
	version = strings.TrimLeft(strings.TrimSpace(version), "=v")
	return semver.StrictNewVersion(version)
}

func committishMatches(committish string, t Target) bool {
	if committish == "" || t.Version == "" {
		return false
	}
	return committish == t.Version ||
		committish == "v"+t.Version ||
		committish == t.Name+"@"+t.Version
}

func directorySpec(spec string) (string, bool) {
	for _, prefix := range []string{"file:", "link:"} {
		if rest, ok := strings.CutPrefix(spec, prefix); ok {
			return filepath.FromSlash(rest), true
		}
	}
	return "", false
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
