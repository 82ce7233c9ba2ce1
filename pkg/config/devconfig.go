package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// LocalConfigFile is the project-local developer config filename.
const LocalConfigFile = "srcforge.local.toml"

// DevConfig holds developer-specific settings that are NOT committed to
// version control. It is resolved with Viper precedence:
// CLI flags > srcforge.local.toml (project-local) > ~/.srcforge/config.toml
// (global).
type DevConfig struct {
	CacheRoot string `toml:"cache_root" mapstructure:"cache_root"`
	Verbose   bool   `toml:"verbose" mapstructure:"verbose"`
}

// LoadDevConfig resolves developer configuration using Viper's merge
// semantics. flagCacheRoot and flagVerbose take highest precedence when the
// corresponding flag was set on the command line.
func LoadDevConfig(flagCacheRoot string, flagVerbose, verboseSet bool) (*DevConfig, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("determining home directory: %w", err)
	}
	globalPath := filepath.Join(home, ".srcforge", "config.toml")
	return loadDevConfig(flagCacheRoot, flagVerbose, verboseSet, globalPath, LocalConfigFile)
}

// loadDevConfig is the internal implementation that accepts explicit paths,
// making it testable without touching the real home directory.
func loadDevConfig(flagCacheRoot string, flagVerbose, verboseSet bool, globalPath, localPath string) (*DevConfig, error) {
	v := viper.New()
	v.SetConfigType("toml")

	// Lowest priority: global config; ignore if missing.
	v.SetConfigFile(globalPath)
	_ = v.ReadInConfig()

	// Higher priority: project-local config.
	if _, err := os.Stat(localPath); err == nil {
		v.SetConfigFile(localPath)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("reading %s: %w", localPath, err)
		}
	}

	// Highest priority: CLI flags.
	if flagCacheRoot != "" {
		v.Set("cache_root", flagCacheRoot)
	}
	if verboseSet {
		v.Set("verbose", flagVerbose)
	}

	cfg := &DevConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling dev config: %w", err)
	}

	return cfg, nil
}

// GlobalConfigDir returns the path to ~/.srcforge, creating it if necessary.
func GlobalConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("determining home directory: %w", err)
	}
	dir := filepath.Join(home, ".srcforge")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", dir, err)
	}
	return dir, nil
}
