// Package process runs external commands inside package directories.
//
// Output is either streamed line by line, each line prefixed with the
// package name, or collected and written as one block once the command
// exits. Both modes share a lock on the destination writers so concurrent
// packages never interleave within a line.
package process

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"hash/fnv"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/monorail/pkg/errors"
)

// Command describes one invocation.
type Command struct {
	Label string   // Output prefix, usually the package name
	Dir   string   // Working directory
	Name  string   // Executable
	Args  []string // Arguments
	Env   []string // Extra KEY=VALUE pairs appended to the process environment
}

func (c Command) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Result describes a finished command.
type Result struct {
	ExitCode int
	Duration time.Duration
	Output   []byte // Combined output, only set when not streaming
}

// Runner executes commands. The zero value writes to os.Stdout and
// os.Stderr with buffered output.
type Runner struct {
	Stdout io.Writer
	Stderr io.Writer

	// Stream prefixes and writes every line as soon as it is complete.
	Stream bool

	// NoPrefix drops the label in streaming mode.
	NoPrefix bool

	Logger *log.Logger

	mu sync.Mutex
}

// Run executes cmd and waits for it. A non-zero exit yields an
// ACTION_FAILED error carrying the exit code; a missing executable yields
// INVALID_INPUT.
func (r *Runner) Run(ctx context.Context, cmd Command) (*Result, error) {
	stdout, stderr := r.writers()
	logger := r.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir
	c.Env = append(os.Environ(), cmd.Env...)

	var (
		buf        bytes.Buffer
		outW, errW *lineWriter
	)
	if r.Stream {
		prefix := ""
		if !r.NoPrefix && cmd.Label != "" {
			prefix = Prefix(cmd.Label) + " "
		}
		outW = &lineWriter{mu: &r.mu, dst: stdout, prefix: prefix}
		errW = &lineWriter{mu: &r.mu, dst: stderr, prefix: prefix}
		c.Stdout, c.Stderr = outW, errW
	} else {
		// exec serializes writes when Stdout and Stderr are the same writer.
		c.Stdout, c.Stderr = &buf, &buf
	}

	logger.Debug("exec", "package", cmd.Label, "cmd", cmd.String(), "dir", cmd.Dir)
	start := time.Now()
	err := c.Run()
	res := &Result{Duration: time.Since(start)}

	if r.Stream {
		outW.Flush()
		errW.Flush()
	} else {
		res.Output = buf.Bytes()
		if buf.Len() > 0 {
			r.mu.Lock()
			dst := stdout
			if err != nil {
				dst = stderr
			}
			_, _ = dst.Write(buf.Bytes())
			if buf.Bytes()[buf.Len()-1] != '\n' {
				_, _ = io.WriteString(dst, "\n")
			}
			r.mu.Unlock()
		}
	}

	if err == nil {
		return res, nil
	}
	var exitErr *exec.ExitError
	if stderrors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		return res, errors.Wrap(errors.ErrCodeActionFailed, err, "%s exited with code %d", cmd, res.ExitCode)
	}
	if stderrors.Is(err, exec.ErrNotFound) {
		res.ExitCode = 127
		return res, errors.Wrap(errors.ErrCodeInvalidInput, err, "command not found: %s", cmd.Name)
	}
	res.ExitCode = -1
	return res, errors.Wrap(errors.ErrCodeActionFailed, err, "run %s", cmd)
}

func (r *Runner) writers() (io.Writer, io.Writer) {
	stdout, stderr := r.Stdout, r.Stderr
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	return stdout, stderr
}

// NpmScript returns the command running an npm script.
func NpmScript(script string, args ...string) Command {
	a := []string{"run", script}
	if len(args) > 0 {
		a = append(a, "--")
		a = append(a, args...)
	}
	return Command{Name: "npm", Args: a}
}

// PackageEnv returns the variables exported to every package command.
func PackageEnv(pkg, root string) []string {
	return []string{
		"MONORAIL_PACKAGE_NAME=" + pkg,
		"MONORAIL_ROOT_PATH=" + root,
	}
}

var prefixColors = []lipgloss.Color{"6", "3", "5", "2", "4", "1", "14", "13"}

// Prefix renders label in a color chosen from its hash so a package keeps
// the same color across runs.
func Prefix(label string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(label))
	color := prefixColors[h.Sum32()%uint32(len(prefixColors))]
	return lipgloss.NewStyle().Foreground(color).Render(fmt.Sprintf("%s:", label))
}

// lineWriter buffers partial lines and writes complete ones to dst with a
// prefix while holding mu.
type lineWriter struct {
	mu     *sync.Mutex
	dst    io.Writer
	prefix string
	buf    []byte
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		w.emit(w.buf[:i+1])
		w.buf = w.buf[i+1:]
	}
	return len(p), nil
}

// Flush writes a trailing unterminated line.
func (w *lineWriter) Flush() {
	if len(w.buf) == 0 {
		return
	}
	w.emit(append(w.buf, '\n'))
	w.buf = nil
}

func (w *lineWriter) emit(line []byte) {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, _ = io.WriteString(w.dst, w.prefix)
	_, _ = w.dst.Write(line)
}
