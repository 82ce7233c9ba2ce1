package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/srcforge/srcforge/pkg/config"
	"github.com/srcforge/srcforge/pkg/run"
	"github.com/srcforge/srcforge/pkg/store"
)

var (
	flagCacheRoot string
	flagVerbose   bool

	// DevCfg holds the resolved developer configuration, available to all
	// subcommands after PersistentPreRunE completes.
	DevCfg *config.DevConfig
)

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "srcforge",
		Short: "Source package fetcher",
		Long:  "srcforge fetches package sources (archives, git, svn, cvs, hg) into a shared cache and stages clean copies for building.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadDevConfig(flagCacheRoot, flagVerbose, cmd.Flags().Changed("verbose"))
			if err != nil {
				return err
			}
			DevCfg = cfg
			return nil
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flagCacheRoot, "cache-root", "", "cache directory (default ~/.srcforge/cache)")
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "show external tool output")

	root.AddCommand(newInitCmd())
	root.AddCommand(newAddCmd())
	root.AddCommand(newFetchCmd())
	root.AddCommand(newStageCmd())
	root.AddCommand(newListCmd())

	return root
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// resolveStore returns the cache store from dev config, falling back to the
// per-user default root.
func resolveStore() (store.Store, error) {
	if DevCfg != nil && DevCfg.CacheRoot != "" {
		return store.New(DevCfg.CacheRoot), nil
	}
	return store.Default()
}

// newRunner wires tool output and narration to the command's streams.
func newRunner(cmd *cobra.Command) *run.Runner {
	verbose := DevCfg != nil && DevCfg.Verbose
	return run.New(verbose, run.WithOutput(cmd.OutOrStdout(), cmd.ErrOrStderr()))
}
