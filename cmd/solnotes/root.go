package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eringen/solnotes"
	"github.com/eringen/solnotes/logging"
	"github.com/eringen/solnotes/logging/gologger"
)

// env is the loaded configuration shared by every subcommand.
type env struct {
	configPath string
	cfg        solnotes.SiteConfig
	logs       logging.Provider
}

func newRootCmd(version string) *cobra.Command {
	e := &env{}
	root := &cobra.Command{
		Use:   "solnotes",
		Short: "solnotes - a personal algorithm solutions site",
		Long: `solnotes serves markdown solution write-ups from a local checkout or a
GitHub repository, with GitHub sign-in for the admin pages.

Configuration is read from solnotes.yaml (or --config) and SOLNOTES_* environment
variables.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" || cmd.Name() == "init" {
				return nil
			}
			return e.load()
		},
	}
	root.Version = version
	root.PersistentFlags().StringVarP(&e.configPath, "config", "c", "", "config file (default ./solnotes.yaml)")

	root.AddCommand(
		newServeCmd(e),
		newListCmd(e),
		newShowCmd(e),
		newNewCmd(e),
		newDeleteCmd(e),
		newRebuildCmd(e),
		newInitCmd(),
		newVersionCmd(version),
	)
	return root
}

func (e *env) load() error {
	cfg, err := loadConfig(e.configPath)
	if err != nil {
		return err
	}
	provider, err := gologger.NewProvider(gologger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	e.cfg = cfg
	e.logs = provider
	return nil
}

func newVersionCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the solnotes version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "solnotes %s\n", version)
		},
	}
}
