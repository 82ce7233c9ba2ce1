package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/srcforge/srcforge/pkg/config"
	"github.com/srcforge/srcforge/pkg/strategy"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List manifest packages and their lock state",
		RunE:  runList,
	}
}

func runList(cmd *cobra.Command, args []string) error {
	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}

	cfg, err := config.LoadFile(filepath.Join(wd, config.ManifestFileName))
	if err != nil {
		return fmt.Errorf("loading %s: %w", config.ManifestFileName, err)
	}

	lf, err := config.LoadLockFile(filepath.Join(wd, config.LockFileName))
	if err != nil {
		return err
	}
	locked := make(map[string]config.PackageLockEntry, len(lf.Packages))
	for _, entry := range lf.Packages {
		locked[entry.Name] = entry
	}

	names := make([]string, 0, len(cfg.Packages))
	for name := range cfg.Packages {
		names = append(names, name)
	}
	sort.Strings(names)

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSTRATEGY\tURL\tFETCHED")
	for _, name := range names {
		ps := cfg.Packages[name]
		kind := ps.Strategy
		if kind == "" {
			kind = strategy.Detect(ps.URL)
		}
		fetched := "-"
		if entry, ok := locked[name]; ok {
			fetched = entry.Integrity
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", name, kind, ps.URL, fetched)
	}
	return w.Flush()
}
