package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pipi/internal/config"
	"pipi/internal/database"
	"pipi/internal/log"
)

var initDBCmd = &cobra.Command{
	Use:   "initdb",
	Short: "Create the images table",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return applyScript(cmd, database.SchemaScript)
	},
}

var updateDBCmd = &cobra.Command{
	Use:   "updatedb",
	Short: "Apply schema updates to an existing database",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return applyScript(cmd, database.UpdateV1Script)
	},
}

func applyScript(cmd *cobra.Command, name string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := log.New(cfg.Environment, cfg.LogLevel)

	pool, err := database.NewPostgresPool(cmd.Context(), cfg.Postgres, logger)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()

	if err := database.Apply(cmd.Context(), pool, name); err != nil {
		return err
	}

	logger.Info().Str("script", name).Msg("database script applied")
	return nil
}
