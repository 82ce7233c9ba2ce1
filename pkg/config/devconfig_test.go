package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDevConfigPrecedence(t *testing.T) {
	tests := map[string]struct {
		global        string
		local         string
		flagCacheRoot string
		flagVerbose   bool
		verboseSet    bool
		wantCacheRoot string
		wantVerbose   bool
	}{
		"defaults when nothing set": {
			wantCacheRoot: "",
			wantVerbose:   false,
		},
		"global config applies": {
			global:        "cache_root = \"/global/cache\"\nverbose = true\n",
			wantCacheRoot: "/global/cache",
			wantVerbose:   true,
		},
		"local overrides global": {
			global:        "cache_root = \"/global/cache\"\n",
			local:         "cache_root = \"/local/cache\"\n",
			wantCacheRoot: "/local/cache",
		},
		"local merge keeps unrelated global keys": {
			global:        "cache_root = \"/global/cache\"\nverbose = true\n",
			local:         "cache_root = \"/local/cache\"\n",
			wantCacheRoot: "/local/cache",
			wantVerbose:   true,
		},
		"flag overrides both files": {
			global:        "cache_root = \"/global/cache\"\n",
			local:         "cache_root = \"/local/cache\"\n",
			flagCacheRoot: "/flag/cache",
			wantCacheRoot: "/flag/cache",
		},
		"set verbose flag overrides file": {
			local:       "verbose = true\n",
			flagVerbose: false,
			verboseSet:  true,
			wantVerbose: false,
		},
		"unset verbose flag defers to file": {
			local:       "verbose = true\n",
			flagVerbose: false,
			verboseSet:  false,
			wantVerbose: true,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			globalPath := filepath.Join(dir, "config.toml")
			localPath := filepath.Join(dir, LocalConfigFile)
			if tc.global != "" {
				if err := os.WriteFile(globalPath, []byte(tc.global), 0o644); err != nil {
					t.Fatalf("writing global config: %v", err)
				}
			}
			if tc.local != "" {
				if err := os.WriteFile(localPath, []byte(tc.local), 0o644); err != nil {
					t.Fatalf("writing local config: %v", err)
				}
			}

			cfg, err := loadDevConfig(tc.flagCacheRoot, tc.flagVerbose, tc.verboseSet, globalPath, localPath)
			if err != nil {
				t.Fatalf("loadDevConfig() error: %v", err)
			}

			if cfg.CacheRoot != tc.wantCacheRoot {
				t.Errorf("CacheRoot = %q, want %q", cfg.CacheRoot, tc.wantCacheRoot)
			}
			if cfg.Verbose != tc.wantVerbose {
				t.Errorf("Verbose = %v, want %v", cfg.Verbose, tc.wantVerbose)
			}
		})
	}
}

func TestLoadDevConfigInvalidLocal(t *testing.T) {
	dir := t.TempDir()
	localPath := filepath.Join(dir, LocalConfigFile)
	if err := os.WriteFile(localPath, []byte("cache_root = ["), 0o644); err != nil {
		t.Fatalf("writing local config: %v", err)
	}

	if _, err := loadDevConfig("", false, false, filepath.Join(dir, "config.toml"), localPath); err == nil {
		t.Fatal("loadDevConfig() expected error for malformed local config, got nil")
	}
}
