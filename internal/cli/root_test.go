package cli

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/matzehuels/monorail/pkg/errors"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"Nil", nil, ExitOK},
		{"Failure", errors.New(errors.ErrCodeActionFailed, "2 packages failed"), ExitFailure},
		{"Canceled", context.Canceled, ExitInterrupted},
		{"WrappedCanceled", fmt.Errorf("run: %w", context.Canceled), ExitInterrupted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPrintErrorStripsCode(t *testing.T) {
	var buf bytes.Buffer
	PrintError(&buf, errors.New(errors.ErrCodeDependencyCycle, "dependency cycle detected: [a, b]"))

	out := buf.String()
	if strings.Contains(out, "DEPENDENCY_CYCLE") {
		t.Errorf("output contains error code: %q", out)
	}
	if !strings.Contains(out, "[a, b]") {
		t.Errorf("output missing message: %q", out)
	}
}

func TestRootCommandRegistersCommands(t *testing.T) {
	root := New(&bytes.Buffer{}, LogInfo).RootCommand()

	for _, name := range []string{
		"init", "list", "graph", "order", "run", "exec",
		"clean", "changed", "publish", "cache", "completion",
	} {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("command %q not registered", name)
		}
	}

	for alias, name := range map[string]string{"ls": "list", "updated": "changed"} {
		if cmd, _, err := root.Find([]string{alias}); err != nil || cmd.Name() != name {
			t.Errorf("alias %q does not resolve to %q", alias, name)
		}
	}

	if root.PersistentFlags().Lookup("cwd") == nil {
		t.Error("--cwd flag not registered")
	}
}

func TestFilterFlagsRegistered(t *testing.T) {
	root := New(&bytes.Buffer{}, LogInfo).RootCommand()

	for _, name := range []string{"list", "order", "run", "exec", "graph", "clean", "publish"} {
		cmd, _, err := root.Find([]string{name})
		if err != nil {
			t.Fatalf("Find(%q): %v", name, err)
		}
		for _, flag := range []string{"scope", "ignore", "since", "include-dependents", "include-dependencies", "no-private"} {
			if cmd.Flags().Lookup(flag) == nil {
				t.Errorf("%s: missing --%s", name, flag)
			}
		}
	}
}

func TestSinceTakesSeparateValue(t *testing.T) {
	root := New(&bytes.Buffer{}, LogInfo).RootCommand()
	run, _, err := root.Find([]string{"run"})
	if err != nil {
		t.Fatal(err)
	}
	if err := run.ParseFlags([]string{"build", "--since", "main"}); err != nil {
		t.Fatal(err)
	}
	if got, _ := run.Flags().GetString("since"); got != "main" {
		t.Errorf("--since = %q, want main", got)
	}
	if got := run.Flags().Args(); len(got) != 1 || got[0] != "build" {
		t.Errorf("args = %v, want [build]", got)
	}
}
