// Package config provides the configuration schema for kegadopt.
package config

import "time"

const (
	// DefaultBrewTimeout bounds every brew and probe invocation.
	DefaultBrewTimeout = 30 * time.Second

	// DefaultMinBrewVersion is the oldest Homebrew the doctor accepts.
	DefaultMinBrewVersion = "2.0.0"
)

// Config is the root configuration.
type Config struct {
	Run      *RunConfig                `json:"run,omitempty" koanf:"run" toml:"run"`
	Brew     *BrewConfig               `json:"brew,omitempty" koanf:"brew" toml:"brew"`
	Packages map[string]*PackageConfig `json:"packages,omitempty" koanf:"packages" toml:"packages"`
}

// RunConfig controls the default multi-package run.
type RunConfig struct {
	// KeepGoing reports remaining packages even after one fails.
	// Default: false (abort on first fatal error).
	KeepGoing *bool `json:"keep_going,omitempty" koanf:"keep_going" toml:"keep_going"`

	// Verbose enables debug logging.
	// Default: false
	Verbose *bool `json:"verbose,omitempty" koanf:"verbose" toml:"verbose"`
}

// BrewConfig controls how brew and the version probes are invoked.
type BrewConfig struct {
	// Prefix overrides "brew --prefix" discovery.
	Prefix string `json:"prefix,omitempty" koanf:"prefix" toml:"prefix"`

	// Cellar overrides "brew --cellar" discovery.
	Cellar string `json:"cellar,omitempty" koanf:"cellar" toml:"cellar"`

	// Timeout bounds each external command, as a Go duration string.
	// Default: "30s"
	Timeout string `json:"timeout,omitempty" koanf:"timeout" toml:"timeout"`

	// MinVersion is the minimum Homebrew version the doctor accepts.
	// Default: "2.0.0"
	MinVersion string `json:"min_version,omitempty" koanf:"min_version" toml:"min_version"`
}

// PackageConfig tunes one built-in package.
type PackageConfig struct {
	// Enabled controls whether the default run processes this package.
	// Default: true
	Enabled *bool `json:"enabled,omitempty" koanf:"enabled" toml:"enabled"`

	// Pattern overrides the built-in search pattern.
	Pattern string `json:"pattern,omitempty" koanf:"pattern" toml:"pattern"`

	// PlistPath overrides the bundle plist read by the openzfs probe.
	PlistPath string `json:"plist_path,omitempty" koanf:"plist_path" toml:"plist_path"`
}

// GetRun returns the run section, never nil.
func (c *Config) GetRun() *RunConfig {
	if c == nil || c.Run == nil {
		return &RunConfig{}
	}

	return c.Run
}

// GetBrew returns the brew section, never nil.
func (c *Config) GetBrew() *BrewConfig {
	if c == nil || c.Brew == nil {
		return &BrewConfig{}
	}

	return c.Brew
}

// GetPackage returns the section for a package name, never nil.
func (c *Config) GetPackage(name string) *PackageConfig {
	if c == nil || c.Packages == nil {
		return &PackageConfig{}
	}

	pkg, ok := c.Packages[name]
	if !ok || pkg == nil {
		return &PackageConfig{}
	}

	return pkg
}

// IsKeepGoing reports whether a failed package should not abort the run.
func (r *RunConfig) IsKeepGoing() bool {
	return r != nil && r.KeepGoing != nil && *r.KeepGoing
}

// IsVerbose reports whether debug logging is enabled.
func (r *RunConfig) IsVerbose() bool {
	return r != nil && r.Verbose != nil && *r.Verbose
}

// GetTimeout returns the external command timeout.
func (b *BrewConfig) GetTimeout() time.Duration {
	if b == nil || b.Timeout == "" {
		return DefaultBrewTimeout
	}

	d, err := time.ParseDuration(b.Timeout)
	if err != nil || d <= 0 {
		return DefaultBrewTimeout
	}

	return d
}

// GetMinVersion returns the minimum accepted Homebrew version.
func (b *BrewConfig) GetMinVersion() string {
	if b == nil || b.MinVersion == "" {
		return DefaultMinBrewVersion
	}

	return b.MinVersion
}

// IsEnabled reports whether the package participates in the default run.
func (p *PackageConfig) IsEnabled() bool {
	return p == nil || p.Enabled == nil || *p.Enabled
}
