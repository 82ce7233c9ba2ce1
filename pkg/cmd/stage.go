package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/srcforge/srcforge/pkg/config"
	"github.com/srcforge/srcforge/pkg/fetcher"
	"github.com/srcforge/srcforge/pkg/formula"
	"github.com/srcforge/srcforge/pkg/strategy"
)

func newStageCmd() *cobra.Command {
	var (
		formulaPath string
		dir         string
	)

	stageCmd := &cobra.Command{
		Use:   "stage [name]",
		Short: "Stage a package's source into a build directory",
		Long: `Fetches a package (if needed) and materializes a clean, VCS-metadata-free
copy of its source. Staging writes into the current directory unless --dir
is given, in which case the directory is created and entered first.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStage(cmd, args, formulaPath, dir)
		},
	}

	stageCmd.Flags().StringVarP(&formulaPath, "formula", "f", "", "stage from a formula file instead of the manifest")
	stageCmd.Flags().StringVar(&dir, "dir", "", "build directory to stage into (created if missing)")

	return stageCmd
}

func runStage(cmd *cobra.Command, args []string, formulaPath, dir string) error {
	var (
		origin strategy.Origin
		kind   string
	)

	switch {
	case formulaPath != "":
		frm, err := formula.Load(formulaPath)
		if err != nil {
			return err
		}
		if err := frm.Validate(); err != nil {
			return fmt.Errorf("invalid formula %s: %w", formulaPath, err)
		}
		origin = frm.Origin()
		kind = frm.Strategy
	case len(args) == 1:
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting working directory: %w", err)
		}
		manifestPath := filepath.Join(wd, config.ManifestFileName)

		cfg, err := config.LoadFile(manifestPath)
		if err != nil {
			return fmt.Errorf("loading %s: %w", manifestPath, err)
		}
		ps, ok := cfg.Packages[args[0]]
		if !ok {
			return fmt.Errorf("package %q not found in %s", args[0], config.ManifestFileName)
		}
		origin = ps.Origin(args[0])
		kind = ps.Strategy
	default:
		return fmt.Errorf("a package name or --formula is required")
	}

	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
		if err := os.Chdir(dir); err != nil {
			return fmt.Errorf("entering %s: %w", dir, err)
		}
	}

	s, err := resolveStore()
	if err != nil {
		return err
	}
	f := &fetcher.Fetcher{Store: s, Runner: newRunner(cmd)}

	if _, err := f.FetchAndStage(cmd.Context(), origin, kind); err != nil {
		return err
	}

	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Staged %s into %s\n", origin.URL, wd)
	return nil
}
