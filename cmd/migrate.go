package cmd

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/assetkit/assetindexer/config"
	"github.com/assetkit/assetindexer/log"
	"github.com/assetkit/assetindexer/orm"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		Long: `
Apply the database schema.

Postgres with DB_MIGRATION_DIR set applies the atlas migrations in that
directory, everything else is migrated by GORM.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.GetConfig()
			if err != nil {
				return err
			}
			logger := log.NewLogger(cfg)

			db, err := orm.OpenDB(cfg.GetDBConfig(), logger)
			if err != nil {
				return err
			}
			defer db.Close() //nolint:errcheck

			return db.ApplySchema(cmd.Context())
		},
	}

	cmd.AddCommand(migrateDiffCmd())
	return cmd
}

func migrateDiffCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Generate a new database migration file",
		Long: `
Generate a new database migration file.

This command generates a new database migration file using GORM and Atlas.

You can configure database options via environment variables.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.GetConfig()
			if err != nil {
				return err
			}
			dsn := cfg.GetDBConfig().DSN
			migrationDir := fmt.Sprintf("file://%s", cfg.GetDBConfig().MigrationDir)

			// #nosec G204
			rawCmd := exec.CommandContext(context.Background(), "atlas", "migrate", "diff",
				"migration",
				"--env", "gorm",
				"--dev-url", dsn,
				"--dir", migrationDir,
			)
			rawCmd.Stdout = os.Stdout
			rawCmd.Stderr = os.Stderr

			return rawCmd.Run()
		},
	}

	return cmd
}
