package main

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"
	_ "modernc.org/sqlite"

	"github.com/jbweber/homelab/gamestore/internal/logging"
	"github.com/jbweber/homelab/gamestore/internal/migrations"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations, or roll back the latest with --down",
		RunE:  runMigrate,
	}
	cmd.Flags().Bool("down", false, "Roll back the most recent migration")
	return cmd
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	entry := logging.Component(logger, "migrate")

	if err := cfg.EnsureDatabaseDir(); err != nil {
		return err
	}
	db, err := sql.Open("sqlite", cfg.DSN())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = db.Close() }()

	migrator := migrations.NewDefaultMigrator(db)
	down, _ := cmd.Flags().GetBool("down")
	if down {
		err = migrator.RollbackLast(ctx)
	} else {
		err = migrator.RunMigrations(ctx)
	}
	if err != nil {
		return err
	}

	version, err := migrator.GetCurrentVersion(ctx)
	if err != nil {
		return err
	}
	entry.WithField("version", version).Info("migrations complete")
	return nil
}
