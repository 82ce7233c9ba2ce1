package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/srcforge/srcforge/pkg/config"
	"github.com/srcforge/srcforge/pkg/strategy"
)

func newAddCmd() *cobra.Command {
	var (
		version  string
		kind     string
		branch   string
		tag      string
		revision string
	)

	addCmd := &cobra.Command{
		Use:   "add <name> <url>",
		Short: "Add a package to srcforge.toml",
		Long: `Adds a package origin to the manifest.

The strategy is inferred from the URL (git://, svn://, cvs://, hg://, .git
suffix) unless --strategy is given. At most one of --branch, --tag,
--revision may be set.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(cmd, args[0], args[1], version, kind, branch, tag, revision)
		},
	}

	addCmd.Flags().StringVar(&version, "version", "", "package version (part of the cache key)")
	addCmd.Flags().StringVar(&kind, "strategy", "", "fetch strategy: archive, noextract, git, svn, cvs, hg")
	addCmd.Flags().StringVar(&branch, "branch", "", "pin a branch")
	addCmd.Flags().StringVar(&tag, "tag", "", "pin a tag")
	addCmd.Flags().StringVar(&revision, "revision", "", "pin a revision")

	return addCmd
}

func runAdd(cmd *cobra.Command, name, url, version, kind, branch, tag, revision string) error {
	pins := 0
	for _, ref := range []string{branch, tag, revision} {
		if ref != "" {
			pins++
		}
	}
	if pins > 1 {
		return fmt.Errorf("at most one of --branch, --tag, --revision may be set")
	}

	if kind != "" && !strategy.ValidKind(kind) {
		return fmt.Errorf("unknown strategy %q", kind)
	}

	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}
	manifestPath := filepath.Join(wd, config.ManifestFileName)

	cfg, err := config.LoadFile(manifestPath)
	if err != nil {
		return fmt.Errorf("loading %s: %w", manifestPath, err)
	}

	if cfg.Packages == nil {
		cfg.Packages = make(map[string]config.PackageSource)
	}
	cfg.Packages[name] = config.PackageSource{
		URL:      url,
		Version:  version,
		Strategy: kind,
		Branch:   branch,
		Tag:      tag,
		Revision: revision,
	}

	if err := config.SaveFile(manifestPath, cfg); err != nil {
		return fmt.Errorf("saving %s: %w", manifestPath, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Added package %q\n", name)
	return nil
}
