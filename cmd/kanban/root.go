package main

import (
	"fmt"

	"github.com/phrazzld/kanban-api/internal/config"
	"github.com/spf13/cobra"
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configFile string
	envFile    string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "kanban",
		Short:         "Kanban board API server and tools",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file (default ./config.yaml if present)")
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file loaded before the environment")

	cmd.AddCommand(
		newServeCmd(opts),
		newMigrateCmd(opts),
		newBoardCmd(opts),
	)
	return cmd
}

// loadConfig reads and validates the configuration named by the flags.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadWithOptions(config.LoadOptions{
		ConfigFile: o.configFile,
		EnvFile:    o.envFile,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}
