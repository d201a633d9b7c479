package config

import (
	"bytes"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/monorail/pkg/errors"
	"github.com/matzehuels/monorail/pkg/graph"
	"github.com/matzehuels/monorail/pkg/manifest"
)

// FileName is the workspace configuration file at the repository root.
const FileName = "monorail.toml"

// Independent is the Version value for workspaces whose packages are
// versioned separately.
const Independent = "independent"

// Config is the parsed workspace configuration.
type Config struct {
	// Root is the directory holding the configuration file. It is not read
	// from the file.
	Root string `toml:"-"`

	Version  string   `toml:"version"`
	Packages []string `toml:"packages"`

	Command CommandConfig `toml:"command"`
	Publish PublishConfig `toml:"publish"`
	Cache   CacheConfig   `toml:"cache"`
}

// CommandConfig holds defaults shared by every package-iterating command.
type CommandConfig struct {
	Concurrency     int      `toml:"concurrency"`
	RejectCycles    bool     `toml:"reject_cycles"`
	DependencyKinds []string `toml:"dependency_kinds"`
}

// PublishConfig configures the publish command.
type PublishConfig struct {
	Registry string   `toml:"registry"`
	CacheTTL Duration `toml:"cache_ttl"`
}

// CacheConfig selects the cache backend.
type CacheConfig struct {
	// RedisURL selects the Redis backend when set; otherwise the file
	// cache under Dir is used.
	RedisURL string `toml:"redis_url"`
	Dir      string `toml:"dir"`
}

// Duration is a time.Duration written as a string ("24h") in TOML.
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Version:  "0.0.0",
		Packages: slices.Clone(manifest.DefaultPatterns),
		Command: CommandConfig{
			Concurrency:     4,
			RejectCycles:    true,
			DependencyKinds: kindNames(manifest.Kinds),
		},
		Publish: PublishConfig{
			Registry: "https://registry.npmjs.org",
			CacheTTL: Duration{24 * time.Hour},
		},
	}
}

// Load reads FileName from root. A missing file yields [Default] with Root
// set. Keys missing from the file keep their default values; unknown keys
// are rejected.
func Load(root string) (*Config, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "resolve %s", root)
	}
	cfg := Default()
	cfg.Root = abs

	path := filepath.Join(abs, FileName)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &cfg, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", path)
	}
	if err := Parse(data, &cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s", path)
	}
	return &cfg, nil
}

// Parse decodes TOML data on top of cfg and validates the result.
func Parse(data []byte, cfg *Config) error {
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return errors.New(errors.ErrCodeInvalidConfig, "unknown keys: %s", strings.Join(keys, ", "))
	}
	return cfg.Validate()
}

// Find walks up from start to the nearest directory containing FileName.
func Find(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidPath, err, "resolve %s", start)
	}
	for {
		if info, err := os.Stat(filepath.Join(dir, FileName)); err == nil && !info.IsDir() {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New(errors.ErrCodeInvalidPath, "no %s found in %s or any parent directory", FileName, start)
		}
		dir = parent
	}
}

// Validate checks value ranges and dependency kind names.
func (c *Config) Validate() error {
	if c.Command.Concurrency < 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "command.concurrency must be at least 1, got %d", c.Command.Concurrency)
	}
	if _, err := c.Kinds(); err != nil {
		return err
	}
	if len(c.Packages) == 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "packages must list at least one pattern")
	}
	if c.Publish.CacheTTL.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "publish.cache_ttl must not be negative")
	}
	if c.Cache.RedisURL != "" {
		if _, err := redis.ParseURL(c.Cache.RedisURL); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "cache.redis_url")
		}
	}
	if c.Publish.Registry != "" {
		if err := errors.ValidateURL(c.Publish.Registry); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "publish.registry")
		}
	}
	return nil
}

// Kinds converts DependencyKinds into graph options. An empty list means
// every kind.
func (c *Config) Kinds() (graph.DependencyKinds, error) {
	if len(c.Command.DependencyKinds) == 0 {
		return graph.AllKinds, nil
	}
	kinds := make(graph.DependencyKinds, 0, len(c.Command.DependencyKinds))
	for _, name := range c.Command.DependencyKinds {
		k, err := manifest.ParseKind(name)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "command.dependency_kinds")
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}

// IsIndependent reports whether packages are versioned independently.
func (c *Config) IsIndependent() bool { return c.Version == Independent }

// Encode renders the configuration as TOML.
func (c *Config) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode config")
	}
	return buf.Bytes(), nil
}

// Write stores the configuration as FileName in dir.
func (c *Config) Write(dir string) error {
	data, err := c.Encode()
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, FileName), data, 0o644)
}

func kindNames(kinds []manifest.DependencyKind) []string {
	out := make([]string, len(kinds))
	for i, k := range kinds {
		out[i] = string(k)
	}
	return out
}

