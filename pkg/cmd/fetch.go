package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/srcforge/srcforge/pkg/config"
	"github.com/srcforge/srcforge/pkg/fetcher"
	"github.com/srcforge/srcforge/pkg/formula"
)

func newFetchCmd() *cobra.Command {
	var formulaPath string

	fetchCmd := &cobra.Command{
		Use:   "fetch [name]",
		Short: "Fetch package sources into the cache",
		Long: `Fetches packages into the shared cache and updates srcforge.lock.toml.

With no arguments, fetches every package in srcforge.toml. With a name,
fetches only that package. With -f, fetches the package described by a
standalone formula file instead of the manifest.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(cmd, args, formulaPath)
		},
	}

	fetchCmd.Flags().StringVarP(&formulaPath, "formula", "f", "", "fetch from a formula file instead of the manifest")

	return fetchCmd
}

func runFetch(cmd *cobra.Command, args []string, formulaPath string) error {
	s, err := resolveStore()
	if err != nil {
		return err
	}
	f := &fetcher.Fetcher{Store: s, Runner: newRunner(cmd)}

	if formulaPath != "" {
		frm, err := formula.Load(formulaPath)
		if err != nil {
			return err
		}
		if err := frm.Validate(); err != nil {
			return fmt.Errorf("invalid formula %s: %w", formulaPath, err)
		}

		resolved, err := f.Fetch(cmd.Context(), frm.Origin(), frm.Strategy)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Fetched %s (%s)\n", resolved.CachePath, resolved.Integrity)
		return nil
	}

	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}
	manifestPath := filepath.Join(wd, config.ManifestFileName)
	lockPath := filepath.Join(wd, config.LockFileName)

	cfg, err := config.LoadFile(manifestPath)
	if err != nil {
		return fmt.Errorf("loading %s: %w", manifestPath, err)
	}

	if len(args) == 1 {
		name := args[0]
		ps, ok := cfg.Packages[name]
		if !ok {
			return fmt.Errorf("package %q not found in %s", name, config.ManifestFileName)
		}
		cfg = &config.Config{Packages: map[string]config.PackageSource{name: ps}}
	}

	existing, err := config.LoadLockFile(lockPath)
	if err != nil {
		return err
	}

	lf, err := f.FetchAll(cmd.Context(), cfg, existing)
	if err != nil {
		return err
	}

	if err := config.SaveLockFile(lockPath, lf); err != nil {
		return fmt.Errorf("writing lockfile: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Fetched %d package(s)\n", len(cfg.Packages))
	return nil
}
