package command

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/noahbkim00/executive-ai-mvp/internal/app"
)

// NewMigrateCmd creates the migrate command.
func NewMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the intake tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config")
			cfg, err := app.LoadStoreConfig(path)
			if err != nil {
				return writeCommandError(cmd, err)
			}

			log, err := app.NewLogger(cfg)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer log.Sync()

			db, err := app.OpenDB(log, cfg)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Migrated %s database.\n", cfg.Database.Driver)
			return nil
		},
	}
}
