package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/monorail/pkg/config"
)

func TestCachePath(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, ".cache")
	content := "[cache]\ndir = \"" + filepath.ToSlash(dir) + "\"\n"
	if err := os.WriteFile(filepath.Join(root, config.FileName), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := runCLI(t, root, "cache", "path")
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(out); got != filepath.ToSlash(dir) {
		t.Errorf("cache path = %q, want %q", got, dir)
	}
}

func TestCacheLocationRedactsRedisPassword(t *testing.T) {
	cfg := config.Default()
	cfg.Cache.RedisURL = "redis://:hunter2@cache.internal:6379/0"
	got := cacheLocation(&cfg)
	if strings.Contains(got, "hunter2") {
		t.Errorf("cacheLocation() leaks password: %q", got)
	}
	if !strings.Contains(got, "cache.internal:6379") {
		t.Errorf("cacheLocation() = %q", got)
	}
}

func TestCacheClearFileCache(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, ".cache")
	content := "[cache]\ndir = \"" + filepath.ToSlash(dir) + "\"\n"
	if err := os.WriteFile(filepath.Join(root, config.FileName), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := runCLI(t, root, "cache", "clear"); err != nil {
		t.Fatalf("cache clear: %v", err)
	}
}
