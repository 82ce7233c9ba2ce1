package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/srcforge/srcforge/pkg/config"
)

// gitignoreCandidates are files and directories srcforge produces that
// should typically not be committed.
var gitignoreCandidates = []string{
	config.LocalConfigFile,
	"build/",
}

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize a new srcforge project",
		Long:  "Creates a srcforge.toml manifest and configures .gitignore entries.",
		RunE:  runInit,
		// init does not need dev config resolution; skip the root PersistentPreRunE.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}

	manifestPath := filepath.Join(wd, config.ManifestFileName)
	if _, err := os.Stat(manifestPath); err == nil {
		return fmt.Errorf("%s already exists", config.ManifestFileName)
	}

	cfg := &config.Config{
		Project:  config.ProjectConfig{Name: filepath.Base(wd)},
		Packages: map[string]config.PackageSource{},
	}
	if err := config.SaveFile(manifestPath, cfg); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", config.ManifestFileName)

	selected, err := promptGitignoreEntries()
	if err != nil {
		return err
	}

	added, err := ensureGitignore(wd, selected)
	if err != nil {
		return err
	}
	for _, entry := range added {
		fmt.Fprintf(cmd.OutOrStdout(), "Added %s to .gitignore\n", entry)
	}

	return nil
}

// promptGitignoreEntries uses huh to present a multi-select of entries worth
// gitignoring.
func promptGitignoreEntries() ([]string, error) {
	options := make([]huh.Option[string], len(gitignoreCandidates))
	for i, entry := range gitignoreCandidates {
		options[i] = huh.NewOption(entry, entry)
	}

	var selected []string
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Add srcforge files to .gitignore?").
				Options(options...).
				Value(&selected),
		),
	).Run()
	if err != nil {
		return nil, fmt.Errorf("prompt failed: %w", err)
	}

	return selected, nil
}

// ensureGitignore appends the given entries to dir's .gitignore, skipping
// entries already present. Returns the entries actually added.
func ensureGitignore(dir string, entries []string) ([]string, error) {
	if len(entries) == 0 {
		return nil, nil
	}

	path := filepath.Join(dir, ".gitignore")
	existing := map[string]bool{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading .gitignore: %w", err)
	}
	for _, line := range strings.Split(string(data), "\n") {
		existing[strings.TrimSpace(line)] = true
	}

	var added []string
	var b strings.Builder
	b.Write(data)
	if len(data) > 0 && !strings.HasSuffix(string(data), "\n") {
		b.WriteByte('\n')
	}
	for _, entry := range entries {
		if existing[entry] {
			continue
		}
		b.WriteString(entry)
		b.WriteByte('\n')
		added = append(added, entry)
	}

	if len(added) == 0 {
		return nil, nil
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return nil, fmt.Errorf("writing .gitignore: %w", err)
	}
	return added, nil
}
