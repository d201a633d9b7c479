package process

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"sync"
	"testing"

	"github.com/matzehuels/monorail/pkg/errors"
)

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func shell(label, script string) Command {
	return Command{Label: label, Name: "sh", Args: []string{"-c", script}}
}

func TestRunBuffered(t *testing.T) {
	requireShell(t)
	var out bytes.Buffer
	r := &Runner{Stdout: &out, Stderr: &out}

	res, err := r.Run(context.Background(), shell("core", "echo one; echo two"))
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if res.ExitCode != 0 {
		t.Errorf("ExitCode = %d, want 0", res.ExitCode)
	}
	if got := out.String(); got != "one\ntwo\n" {
		t.Errorf("output = %q", got)
	}
	if string(res.Output) != "one\ntwo\n" {
		t.Errorf("Result.Output = %q", res.Output)
	}
}

func TestRunStreamPrefixesLines(t *testing.T) {
	requireShell(t)
	var out bytes.Buffer
	r := &Runner{Stdout: &out, Stderr: &out, Stream: true}

	if _, err := r.Run(context.Background(), shell("ui", "echo a; printf b")); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %q", lines)
	}
	for i, want := range []string{"a", "b"} {
		if !strings.Contains(lines[i], "ui:") || !strings.HasSuffix(lines[i], " "+want) {
			t.Errorf("line %d = %q, want prefixed %q", i, lines[i], want)
		}
	}
}

func TestRunExitCode(t *testing.T) {
	requireShell(t)
	var out bytes.Buffer
	r := &Runner{Stdout: &out, Stderr: &out}

	res, err := r.Run(context.Background(), shell("bad", "echo oops >&2; exit 3"))
	if err == nil {
		t.Fatal("Run() should fail")
	}
	if res.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", res.ExitCode)
	}
	if !errors.Is(err, errors.ErrCodeActionFailed) {
		t.Errorf("code = %q, want ACTION_FAILED", errors.GetCode(err))
	}
	if !strings.Contains(out.String(), "oops") {
		t.Errorf("stderr not forwarded: %q", out.String())
	}
}

func TestRunNotFound(t *testing.T) {
	r := &Runner{Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}}
	_, err := r.Run(context.Background(), Command{Name: "monorail-no-such-binary"})
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("code = %q, want INVALID_INPUT", errors.GetCode(err))
	}
}

func TestRunEnv(t *testing.T) {
	requireShell(t)
	var out bytes.Buffer
	r := &Runner{Stdout: &out}
	cmd := shell("core", `echo "$MONORAIL_PACKAGE_NAME@$MONORAIL_ROOT_PATH"`)
	cmd.Env = PackageEnv("core", "/ws")
	if _, err := r.Run(context.Background(), cmd); err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(out.String()); got != "core@/ws" {
		t.Errorf("output = %q, want core@/ws", got)
	}
}

func TestRunConcurrentLinesIntact(t *testing.T) {
	requireShell(t)
	var out bytes.Buffer
	r := &Runner{Stdout: &out, Stderr: &out, Stream: true, NoPrefix: true}

	var wg sync.WaitGroup
	for _, label := range []string{"a", "b", "c", "d"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = r.Run(context.Background(), shell(label, "for i in 1 2 3 4 5; do echo "+label+label+label+"; done"))
		}()
	}
	wg.Wait()

	for _, line := range strings.Split(strings.TrimSpace(out.String()), "\n") {
		if len(line) != 3 || strings.Count(line, line[:1]) != 3 {
			t.Errorf("interleaved line %q", line)
		}
	}
}

func TestNpmScript(t *testing.T) {
	tests := []struct {
		script string
		args   []string
		want   string
	}{
		{"build", nil, "npm run build"},
		{"test", []string{"--watch"}, "npm run test -- --watch"},
	}
	for _, tt := range tests {
		if got := NpmScript(tt.script, tt.args...).String(); got != tt.want {
			t.Errorf("NpmScript(%q) = %q, want %q", tt.script, got, tt.want)
		}
	}
}
