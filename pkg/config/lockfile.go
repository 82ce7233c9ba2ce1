package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// LockFileName is the lockfile written next to the manifest after a fetch.
const LockFileName = "srcforge.lock.toml"

// LockFile records what each fetch actually resolved to. It is a record,
// not a verifier: integrity digests are captured for later comparison by
// whoever cares, fetch itself never checks them.
type LockFile struct {
	Version  int                `toml:"version"`
	Packages []PackageLockEntry `toml:"packages,omitempty"`
}

type PackageLockEntry struct {
	Name      string `toml:"name"`
	URL       string `toml:"url"`
	Ref       string `toml:"ref,omitempty"`
	CachePath string `toml:"cachePath"`
	Integrity string `toml:"integrity"`
}

// LoadLockFile reads the lockfile at path; a missing file yields an empty
// lockfile, not an error.
func LoadLockFile(path string) (*LockFile, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &LockFile{Version: 1}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	lf := &LockFile{}
	if err := toml.Unmarshal(data, lf); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return lf, nil
}

func SaveLockFile(path string, lf *LockFile) error {
	data, err := toml.Marshal(lf)
	if err != nil {
		return fmt.Errorf("marshaling lockfile: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Upsert adds or replaces the entry for its package name.
func (lf *LockFile) Upsert(entry PackageLockEntry) {
	for i, e := range lf.Packages {
		if e.Name == entry.Name {
			lf.Packages[i] = entry
			return
		}
	}
	lf.Packages = append(lf.Packages, entry)
}
