package main

import (
	"github.com/spf13/cobra"

	"github.com/dmitrymomot/subscriptions/migrations"
	"github.com/dmitrymomot/subscriptions/pkg/config"
	"github.com/dmitrymomot/subscriptions/pkg/pg"
)

var migrateStatus bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		log, err := newLogger()
		if err != nil {
			return err
		}
		var cfg pg.Config
		if err := config.Load(&cfg); err != nil {
			return err
		}

		ctx := cmd.Context()
		pool, err := pg.Connect(ctx, cfg)
		if err != nil {
			return err
		}
		defer pool.Close()

		if migrateStatus {
			return pg.MigrationStatus(ctx, pool, migrations.FS, cfg, log)
		}
		if err := pg.Migrate(ctx, pool, migrations.FS, cfg, log); err != nil {
			return err
		}
		log.InfoContext(ctx, "migrations applied")
		return nil
	},
}

func init() {
	migrateCmd.Flags().BoolVar(&migrateStatus, "status", false, "print migration status instead of applying")
}
