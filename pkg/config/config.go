// Package config loads the holgraph configuration file.
//
// Configuration is a plain TOML file. Load starts from Default and overlays
// the file's values, so a partial file only overrides what it mentions. The
// resulting Config is a value; commands copy it and apply flag overrides,
// nothing mutates shared state.
package config

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/holgraph/holgraph/pkg/errors"
	"github.com/holgraph/holgraph/pkg/names"
)

// Cache backend names.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Config is the root configuration.
type Config struct {
	Discovery    Discovery    `toml:"discovery"`
	Dependencies Dependencies `toml:"dependencies"`
	Naming       Naming       `toml:"naming"`
	Render       Render       `toml:"render"`
	Cache        Cache        `toml:"cache"`
	Serve        Serve        `toml:"serve"`
}

// Discovery controls which files are treated as build artifacts.
type Discovery struct {
	// Suffixes are the artifact filename suffixes to collect.
	Suffixes []string `toml:"suffixes"`

	// Extensions are stripped from dependency lines.
	Extensions []string `toml:"extensions"`

	// Filter is an optional regular expression; only artifact paths matching
	// it are read.
	Filter string `toml:"filter"`
}

// Dependencies filters individual dependency lines. Exclude wins over
// Include.
type Dependencies struct {
	Exclude string `toml:"exclude"`
	Include string `toml:"include"`
}

// Naming holds the path markers for display-name resolution.
type Naming struct {
	RootMarker    string `toml:"root_marker"`
	RootLabel     string `toml:"root_label"`
	ProjectMarker string `toml:"project_marker"`
}

// Render controls DOT output.
type Render struct {
	// Seed fixes the edge-color generator.
	Seed int64 `toml:"seed"`
}

// Cache selects the render-cache backend.
type Cache struct {
	Backend       string `toml:"backend"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
}

// Serve configures the HTTP server.
type Serve struct {
	Addr string `toml:"addr"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Discovery: Discovery{
			Suffixes:   []string{".uo"},
			Extensions: []string{".sml", ".sig", ".ui", ".uo"},
		},
		Naming: Naming{
			RootMarker:    names.DefaultRootMarker,
			RootLabel:     names.DefaultRootLabel,
			ProjectMarker: names.DefaultProjectMarker,
		},
		Render: Render{
			Seed: 6737,
		},
		Cache: Cache{
			Backend:   BackendFile,
			RedisAddr: "localhost:6379",
		},
		Serve: Serve{
			Addr: ":8080",
		},
	}
}

// Load reads the TOML file at path on top of the defaults. A missing file is
// an error; callers that treat the file as optional should check for its
// existence first.
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks patterns and suffixes up front so a bad config fails at
// startup, not mid-scan.
func (c Config) Validate() error {
	if err := errors.ValidateSuffixes(c.Discovery.Suffixes); err != nil {
		return err
	}
	if err := errors.ValidatePattern("discovery filter", c.Discovery.Filter); err != nil {
		return err
	}
	if err := errors.ValidatePattern("dependency exclude", c.Dependencies.Exclude); err != nil {
		return err
	}
	if err := errors.ValidatePattern("dependency include", c.Dependencies.Include); err != nil {
		return err
	}
	switch c.Cache.Backend {
	case BackendFile, BackendRedis, BackendNone:
	default:
		return errors.New(errors.ErrCodeInvalidConfig,
			"unknown cache backend %q (must be file, redis, or none)", c.Cache.Backend)
	}
	return nil
}

// NamingOptions converts the naming section into resolver options.
func (c Config) NamingOptions() names.Options {
	return names.Options{
		RootMarker:    c.Naming.RootMarker,
		RootLabel:     c.Naming.RootLabel,
		ProjectMarker: c.Naming.ProjectMarker,
	}
}
