// Package config loads mechc.yaml, the optional per-project
// configuration file that fixes defaults the CLI would otherwise need
// repeated on every invocation (the default backend target, whether the
// optimisation pass runs, and where compiled-module cache entries live).
// Grounded on funxy/internal/ext/config.go's Config/LoadConfig/
// ParseConfig split (read the file, then parse bytes separately so
// tests can exercise the parser without touching disk).
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the top-level mechc.yaml document.
type Config struct {
	// Target is the default backend a printer downstream of this core
	// selects when the CLI's -t flag is omitted. One of "cpu", "gpu",
	// "simd".
	Target string `yaml:"target,omitempty"`

	// Optimize turns on the §4.9 optimisation pass by default, as if -O
	// were always passed.
	Optimize bool `yaml:"optimize,omitempty"`

	// CacheDir is the path of the compile-result database internal/cache
	// uses; cmd/mechc turns the cache on with it when it is set and -cache
	// is not given. ResolvedCacheDir falls back to ".mechc/cache.db"
	// (relative to the working directory) when it is empty.
	CacheDir string `yaml:"cache_dir,omitempty"`

	// Sources lists mechanism source files (or glob patterns). It is
	// parsed but not read by cmd/mechc, which compiles only the files
	// named on its command line.
	Sources []string `yaml:"sources,omitempty"`
}

var validTargets = map[string]bool{"cpu": true, "gpu": true, "simd": true}

// Load reads and parses path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse parses YAML config content. path is used only in error messages.
func Parse(data []byte, path string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.validate(path); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate(path string) error {
	if c.Target != "" && !validTargets[c.Target] {
		return fmt.Errorf("%s: invalid target %q (want cpu, gpu, or simd)", path, c.Target)
	}
	return nil
}

// ResolvedCacheDir returns CacheDir, falling back to the conventional
// default when unset.
func (c *Config) ResolvedCacheDir() string {
	if c.CacheDir != "" {
		return c.CacheDir
	}
	return ".mechc/cache.db"
}
