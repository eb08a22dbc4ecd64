package check

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/gnolang/fparse/internal"
	tt "github.com/gnolang/fparse/internal/types"
	"github.com/gnolang/fparse/scanner"
)

const (
	DefaultConfigFile = ".fparse.yaml"
	defaultCacheDir   = ".fparse-cache"
)

// Config represents the overall configuration of a run.
type Config struct {
	Name        string                   `yaml:"name" toml:"name"`
	Extensions  []string                 `yaml:"extensions,omitempty" toml:"extensions"`
	IgnorePaths []string                 `yaml:"ignore_paths,omitempty" toml:"ignore_paths"`
	Rules       map[string]tt.ConfigRule `yaml:"rules" toml:"rules"`
	Cache       CacheConfig              `yaml:"cache" toml:"cache"`
}

type CacheConfig struct {
	Enabled bool   `yaml:"enabled" toml:"enabled"`
	Dir     string `yaml:"dir,omitempty" toml:"dir"`
	MaxAge  string `yaml:"max_age,omitempty" toml:"max_age"` // time.ParseDuration syntax
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() Config {
	return Config{
		Name:       "fparse",
		Extensions: append([]string(nil), scanner.DefaultExtensions...),
		Rules:      internal.DefaultRules(),
		Cache: CacheConfig{
			Dir:    defaultCacheDir,
			MaxAge: internal.DefaultCacheAge.String(),
		},
	}
}

// LoadConfig reads a YAML or TOML configuration file, chosen by the
// extension of path. An empty path, or a missing file at the default
// location, yields DefaultConfig. Unset fields keep their defaults.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()
	if path == "" {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) && filepath.Clean(path) == DefaultConfigFile {
		return config, nil
	}
	if err != nil {
		return config, fmt.Errorf("error reading configuration: %w", err)
	}

	var file Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		md, err := toml.Decode(string(data), &file)
		if err != nil {
			return config, fmt.Errorf("error parsing %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return config, fmt.Errorf("error parsing %s: unknown key %q", path, undecoded[0].String())
		}
	default:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
			return config, fmt.Errorf("error parsing %s: %w", path, err)
		}
	}

	config.merge(file)
	if err := config.Validate(); err != nil {
		return config, fmt.Errorf("invalid configuration %s: %w", path, err)
	}
	return config, nil
}

func (c *Config) merge(file Config) {
	if file.Name != "" {
		c.Name = file.Name
	}
	if len(file.Extensions) > 0 {
		c.Extensions = file.Extensions
	}
	c.IgnorePaths = append(c.IgnorePaths, file.IgnorePaths...)
	for name, rule := range file.Rules {
		c.Rules[name] = rule
	}
	c.Cache.Enabled = file.Cache.Enabled
	if file.Cache.Dir != "" {
		c.Cache.Dir = file.Cache.Dir
	}
	if file.Cache.MaxAge != "" {
		c.Cache.MaxAge = file.Cache.MaxAge
	}
}

// Validate rejects unknown rules, malformed extensions and cache ages.
func (c Config) Validate() error {
	known := make(map[string]bool)
	for _, name := range internal.RuleNames() {
		known[name] = true
	}
	for name := range c.Rules {
		if !known[name] {
			return fmt.Errorf("unknown rule %q", name)
		}
	}
	for _, ext := range c.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("extension %q must start with a dot", ext)
		}
	}
	if _, err := c.maxAge(); err != nil {
		return err
	}
	return nil
}

func (c Config) maxAge() (time.Duration, error) {
	if c.Cache.MaxAge == "" {
		return internal.DefaultCacheAge, nil
	}
	d, err := time.ParseDuration(c.Cache.MaxAge)
	if err != nil {
		return 0, fmt.Errorf("cache max_age: %w", err)
	}
	return d, nil
}

// WriteConfig writes config to path as YAML.
func WriteConfig(path string, config Config) error {
	d, err := yaml.Marshal(config)
	if err != nil {
		return err
	}
	return os.WriteFile(path, d, 0o644)
}
