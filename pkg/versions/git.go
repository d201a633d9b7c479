package versions

import (
	"regexp"
	"strings"
)

// GitRef is a dependency value pointing at a git repository instead of a
// registry version.
type GitRef struct {
	Host       string // "github", "gitlab", "bitbucket", "gist" or a hostname
	Owner      string
	Repo       string
	Committish string // Tag, branch or SHA after '#', empty if none
	Range      string // Set instead of Committish for "#semver:<range>"
}

var (
	// host:owner/repo#committish
	shortcutRe = regexp.MustCompile(`^(github|gitlab|bitbucket|gist):([^/#\s]+)/([^/#\s]+?)(?:\.git)?(?:#(.*))?$`)

	// owner/repo#committish, implicitly github
	bareRe = regexp.MustCompile(`^([A-Za-z0-9][\w.-]*)/([\w.-]+?)(?:\.git)?(?:#(.*))?$`)

	// git+https://host/owner/repo.git#committish, git://..., git+ssh://git@host:owner/repo
	urlRe = regexp.MustCompile(`^(?:git\+)?(?:https?|ssh|git|git\+ssh)://(?:[^@/]+@)?([^/:]+)[/:]([^/]+)/([^/#]+?)(?:\.git)?(?:#(.*))?$`)
)

// ParseGitRef recognizes git-host dependency values. It reports false for
// anything that is not a git reference, including plain version ranges.
func ParseGitRef(spec string) (GitRef, bool) {
	var ref GitRef
	switch {
	case shortcutRe.MatchString(spec):
		m := shortcutRe.FindStringSubmatch(spec)
		ref = GitRef{Host: m[1], Owner: m[2], Repo: m[3], Committish: m[4]}
	case isGitURL(spec) && urlRe.MatchString(spec):
		m := urlRe.FindStringSubmatch(spec)
		ref = GitRef{Host: m[1], Owner: m[2], Repo: m[3], Committish: m[4]}
	case !strings.Contains(spec, ":") && !strings.HasPrefix(spec, "@") && bareRe.MatchString(spec):
		m := bareRe.FindStringSubmatch(spec)
		ref = GitRef{Host: "github", Owner: m[1], Repo: m[2], Committish: m[3]}
	default:
		return GitRef{}, false
	}
	if r, ok := strings.CutPrefix(ref.Committish, "semver:"); ok {
		ref.Committish, ref.Range = "", r
	}
	return ref, true
}

// git URLs need an explicit git scheme, or an http(s) URL ending in .git.
func isGitURL(spec string) bool {
	if strings.HasPrefix(spec, "git+") || strings.HasPrefix(spec, "git://") {
		return true
	}
	if strings.HasPrefix(spec, "http://") || strings.HasPrefix(spec, "https://") {
		base, _, _ := strings.Cut(spec, "#")
		return strings.HasSuffix(base, ".git")
	}
	return false
}
