// Package cmd provides the CLI commands for Beetle.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/HenryZhang-ZHY/beetle/internal/catalog"
	"github.com/HenryZhang-ZHY/beetle/internal/config"
	"github.com/HenryZhang-ZHY/beetle/internal/logging"
	"github.com/HenryZhang-ZHY/beetle/internal/storage"
	"github.com/HenryZhang-ZHY/beetle/pkg/version"
)

// NewRootCmd creates the root command for the beetle CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "beetle",
		Short: "Source code repository indexing and search",
		Long: `Beetle indexes source code repositories into full-text search
indexes and keeps them current incrementally.

Create an index with 'beetle new', refresh it with 'beetle update', and
search it with 'beetle query'.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.SetVersionTemplate("beetle version {{.Version}}\n")

	cmd.AddCommand(
		newNewCmd(),
		newUpdateCmd(),
		newQueryCmd(),
		newListCmd(),
		newRemoveCmd(),
		newResetCmd(),
		newServeCmd(),
		newWatchCmd(),
		newVersionCmd(),
	)

	return cmd
}

// env assembles the runtime pieces every command needs: resolved home,
// configuration, logging, and the catalog.
type env struct {
	home    string
	cfg     config.Config
	catalog *catalog.Catalog
	cleanup func()
}

// newEnv builds the command environment. Logging failures degrade to
// stderr-only rather than aborting the command.
func newEnv() (*env, error) {
	home, err := config.Home()
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(home)
	if err != nil {
		return nil, err
	}

	cleanup, err := logging.SetupDefault(home, cfg.Logging.Level)
	if err != nil {
		cleanup = func() {}
	}

	store := storage.NewFsStorage(config.IndexRoot(home))

	return &env{
		home:    home,
		cfg:     cfg,
		catalog: catalog.New(store, cfg),
		cleanup: cleanup,
	}, nil
}
