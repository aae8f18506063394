package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sivakarthick08/kpi-insight-agent-sub001/internal/config"
	"github.com/sivakarthick08/kpi-insight-agent-sub001/internal/observability"
	"github.com/sivakarthick08/kpi-insight-agent-sub001/internal/store"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database schema migrations",
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required to run migrations")
	}

	log := observability.NewLogger(os.Stderr, cfg.LogLevel)
	if err := store.Migrate(cfg.DatabaseURL, log); err != nil {
		return err
	}
	log.Info("migrations applied")
	return nil
}
