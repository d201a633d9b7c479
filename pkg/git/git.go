// Package git reads repository state through the git command line.
//
// Only the handful of queries the changed-package detection needs are
// supported: the most recent tag (or the root commit of an untagged
// repository), the current HEAD and the files changed since a ref.
package git

import (
	"bytes"
	"context"
	"io"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/monorail/pkg/errors"
)

// Client runs git in a fixed working directory.
type Client struct {
	dir    string
	logger *log.Logger
}

// New returns a client for the repository containing dir. A nil logger
// discards output.
func New(dir string, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Client{dir: dir, logger: logger}
}

// Available reports whether a git binary is on PATH.
func Available() bool {
	_, err := exec.LookPath("git")
	return err == nil
}

// HasTags reports whether any tag exists. A failing git tag is logged and
// treated as "no tags".
func (c *Client) HasTags(ctx context.Context) bool {
	out, err := c.run(ctx, "tag")
	if err != nil {
		c.logger.Warn("no git tags were reachable from this branch", "error", err)
		return false
	}
	has := out != ""
	c.logger.Debug("checked for tags", "found", has)
	return has
}

// LastTagOrFirstCommit returns the most recent tag reachable from HEAD, or
// the repository's root commit when there are no tags.
func (c *Client) LastTagOrFirstCommit(ctx context.Context) (string, error) {
	if c.HasTags(ctx) {
		c.logger.Debug("resolving last tag")
		return c.run(ctx, "describe", "--tags", "--abbrev=0")
	}
	c.logger.Debug("no tags, using root commit")
	out, err := c.run(ctx, "rev-list", "--max-parents=0", "HEAD")
	if err != nil {
		return "", err
	}
	// Repositories with merged histories have several roots.
	if i := strings.IndexByte(out, '\n'); i >= 0 {
		out = out[:i]
	}
	return out, nil
}

// CurrentSHA returns the full hash of HEAD.
func (c *Client) CurrentSHA(ctx context.Context) (string, error) {
	sha, err := c.run(ctx, "rev-parse", "HEAD")
	if err != nil {
		return "", err
	}
	c.logger.Debug("resolved HEAD", "sha", sha)
	return sha, nil
}

// TopLevel returns the absolute path of the repository root with symlinks
// resolved.
func (c *Client) TopLevel(ctx context.Context) (string, error) {
	top, err := c.run(ctx, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(top)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeGit, err, "resolve repository root %s", top)
	}
	return resolved, nil
}

// ChangedPaths returns the absolute paths of files that differ between ref
// and the working tree. Uncommitted edits and untracked files that are not
// ignored count as changed. Paths are rooted at [Client.TopLevel], so
// callers comparing against their own paths should resolve symlinks first.
func (c *Client) ChangedPaths(ctx context.Context, ref string) ([]string, error) {
	if strings.HasPrefix(ref, "-") {
		return nil, errors.New(errors.ErrCodeInvalidInput, "invalid git ref %q", ref)
	}
	top, err := c.TopLevel(ctx)
	if err != nil {
		return nil, err
	}
	diff, err := c.run(ctx, "diff", "--name-only", ref, "--")
	if err != nil {
		return nil, err
	}
	untracked, err := c.run(ctx, "ls-files", "--others", "--exclude-standard", "--full-name", "--", ":/")
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var paths []string
	for _, out := range []string{diff, untracked} {
		for _, line := range strings.Split(out, "\n") {
			line = strings.TrimSpace(line)
			if line == "" || seen[line] {
				continue
			}
			seen[line] = true
			paths = append(paths, filepath.Join(top, filepath.FromSlash(line)))
		}
	}
	c.logger.Debug("changed files", "since", ref, "count", len(paths))
	return paths, nil
}

func (c *Client) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = c.dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	c.logger.Debug("exec", "cmd", "git "+strings.Join(args, " "), "dir", c.dir)
	out, err := cmd.Output()
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", errors.Wrap(errors.ErrCodeGit, err, "git %s: %s", args[0], msg)
	}
	return strings.TrimSpace(string(out)), nil
}
