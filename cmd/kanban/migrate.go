package main

import (
	"fmt"
	"strings"

	"github.com/phrazzld/kanban-api/internal/config"
	"github.com/phrazzld/kanban-api/internal/platform/logger"
	"github.com/phrazzld/kanban-api/internal/platform/postgres"
	"github.com/spf13/cobra"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "migrate <" + strings.Join(postgres.MigrationCommands, "|") + ">",
		Short:     "Apply or inspect the PostgreSQL schema migrations",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: postgres.MigrationCommands,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if cfg.Database.Backend != config.BackendPostgres {
				return fmt.Errorf("migrations need the %s backend, configured backend is %s",
					config.BackendPostgres, cfg.Database.Backend)
			}
			log, err := logger.Setup(cfg.Server)
			if err != nil {
				return fmt.Errorf("failed to set up logging: %w", err)
			}

			db, err := postgres.Open(cmd.Context(), cfg.Database.URL, cfg.Database.MaxOpenConns)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			return postgres.Migrate(cmd.Context(), db, args[0], log)
		},
	}
}
