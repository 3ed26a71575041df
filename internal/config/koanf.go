// Package config loads kegadopt configuration from its sources.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	tomlparser "github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kegadopt/kegadopt/pkg/config"
)

// ErrInvalidPermissions is returned when the config file is world-writable.
var ErrInvalidPermissions = errors.New("config file has insecure permissions")

const (
	// GlobalConfigDir is the directory name for global configuration.
	GlobalConfigDir = ".kegadopt"

	// GlobalConfigFile is the name of the global configuration file.
	GlobalConfigFile = "config.toml"

	// envPrefix namespaces kegadopt environment variables.
	envPrefix = "KEGADOPT_"

	defaultTimeoutStr = "30s"
)

// KoanfLoader loads configuration with the following precedence
// (highest to lowest):
// 1. CLI flags
// 2. Environment variables (KEGADOPT_*)
// 3. Global config (~/.kegadopt/config.toml)
// 4. Defaults
type KoanfLoader struct {
	k          *koanf.Koanf
	homeDir    string
	globalPath string
}

// NewKoanfLoader creates a KoanfLoader rooted at the user's home directory.
func NewKoanfLoader() (*KoanfLoader, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get home directory")
	}

	return NewKoanfLoaderWithHome(homeDir), nil
}

// NewKoanfLoaderWithHome creates a KoanfLoader with a custom home
// directory (for testing).
func NewKoanfLoaderWithHome(homeDir string) *KoanfLoader {
	return &KoanfLoader{
		k:       koanf.New("."),
		homeDir: homeDir,
	}
}

// Load loads configuration from all sources with precedence.
func (l *KoanfLoader) Load(flags map[string]any) (*config.Config, error) {
	// Reset koanf instance for fresh load
	l.k = koanf.New(".")

	if err := l.k.Load(confmap.Provider(defaultsToMap(), "."), nil); err != nil {
		return nil, errors.Wrap(err, "failed to load defaults")
	}

	globalPath := l.GlobalConfigPath()
	if err := l.loadTOMLFile(globalPath); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "failed to load global config")
	}

	envOpt := env.Opt{
		Prefix:        envPrefix,
		TransformFunc: envTransform,
	}

	if err := l.k.Load(env.Provider(".", envOpt), nil); err != nil {
		return nil, errors.Wrap(err, "failed to load env vars")
	}

	if len(flags) > 0 {
		if err := l.k.Load(confmap.Provider(flags, "."), nil); err != nil {
			return nil, errors.Wrap(err, "failed to load flags")
		}
	}

	var cfg config.Config

	unmarshalConf := koanf.UnmarshalConf{
		Tag:       "koanf",
		FlatPaths: false,
	}

	if err := l.k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	return &cfg, nil
}

// GlobalConfigPath returns the path to the global configuration file.
func (l *KoanfLoader) GlobalConfigPath() string {
	if l.globalPath != "" {
		return l.globalPath
	}

	return filepath.Join(l.homeDir, GlobalConfigDir, GlobalConfigFile)
}

// SetGlobalConfigPath overrides the global configuration file location.
func (l *KoanfLoader) SetGlobalConfigPath(path string) {
	l.globalPath = path
}

// loadTOMLFile loads a TOML configuration file with security checks.
func (l *KoanfLoader) loadTOMLFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	// Reject world-writable files
	if info.Mode().Perm()&0o002 != 0 {
		return errors.Wrapf(
			ErrInvalidPermissions,
			"%s is world-writable (mode: %s)",
			path,
			info.Mode().Perm(),
		)
	}

	return l.k.Load(file.Provider(path), tomlparser.Parser())
}

// envTransform transforms environment variable names to config paths.
// KEGADOPT_RUN_KEEP_GOING → run.keep_going
// Single-underscore segments map onto the nested key paths used by the
// schema; the last two segments are joined because every leaf key in
// the schema is at depth two.
func envTransform(key, value string) (string, any) {
	key = strings.TrimPrefix(key, envPrefix)
	key = strings.ToLower(key)

	parts := strings.Split(key, "_")
	if len(parts) <= 2 {
		return strings.Join(parts, "."), value
	}

	// The packages table nests one level deeper (packages.<name>.<key>).
	if parts[0] == "packages" {
		return parts[0] + "." + parts[1] + "." + strings.Join(parts[2:], "_"), value
	}

	return parts[0] + "." + strings.Join(parts[1:], "_"), value
}

// defaultsToMap returns the built-in defaults for koanf loading.
func defaultsToMap() map[string]any {
	return map[string]any{
		"run": map[string]any{
			"keep_going": false,
			"verbose":    false,
		},
		"brew": map[string]any{
			"prefix":      "",
			"cellar":      "",
			"timeout":     defaultTimeoutStr,
			"min_version": config.DefaultMinBrewVersion,
		},
		"packages": map[string]any{
			"meld":       map[string]any{"enabled": true},
			"virtualbox": map[string]any{"enabled": true},
			"openzfs":    map[string]any{"enabled": true},
		},
	}
}
