// Package fetcher orchestrates strategies over a project manifest: fetch
// every declared package into the shared cache and record what was resolved
// in the lockfile.
package fetcher

import (
	"context"
	"fmt"
	"sort"

	"github.com/srcforge/srcforge/pkg/config"
	"github.com/srcforge/srcforge/pkg/run"
	"github.com/srcforge/srcforge/pkg/store"
	"github.com/srcforge/srcforge/pkg/strategy"
)

type Fetcher struct {
	Store  store.Store
	Runner *run.Runner
}

// FetchAll fetches all packages from the config in sorted name order,
// stopping at the first failure. Fetching is sequential and synchronous:
// one external process at a time. Returns a lockfile capturing the resolved
// state, seeded from the existing one so packages absent from this run keep
// their entries.
func (f *Fetcher) FetchAll(ctx context.Context, cfg *config.Config, existing *config.LockFile) (*config.LockFile, error) {
	lf := &config.LockFile{Version: 1}
	if existing != nil {
		lf.Packages = append(lf.Packages, existing.Packages...)
	}

	names := make([]string, 0, len(cfg.Packages))
	for name := range cfg.Packages {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		ps := cfg.Packages[name]
		resolved, err := f.Fetch(ctx, ps.Origin(name), ps.Strategy)
		if err != nil {
			return nil, fmt.Errorf("fetching package %q: %w", name, err)
		}

		lf.Upsert(config.PackageLockEntry{
			Name:      name,
			URL:       ps.URL,
			Ref:       resolved.Ref,
			CachePath: resolved.CachePath,
			Integrity: resolved.Integrity,
		})
	}

	return lf, nil
}

// Fetch dispatches a strategy for the origin and populates the cache.
func (f *Fetcher) Fetch(ctx context.Context, origin strategy.Origin, kind string) (*strategy.Resolved, error) {
	strat, err := strategy.ForOrigin(origin, kind, f.Runner)
	if err != nil {
		return nil, err
	}
	return strat.Fetch(ctx, f.Store)
}

// FetchAndStage fetches the origin and stages it into the current working
// directory. The caller chdirs into an empty build directory first.
func (f *Fetcher) FetchAndStage(ctx context.Context, origin strategy.Origin, kind string) (*strategy.Resolved, error) {
	strat, err := strategy.ForOrigin(origin, kind, f.Runner)
	if err != nil {
		return nil, err
	}

	resolved, err := strat.Fetch(ctx, f.Store)
	if err != nil {
		return nil, err
	}

	if err := strat.Stage(ctx, f.Store); err != nil {
		return nil, err
	}
	return resolved, nil
}
