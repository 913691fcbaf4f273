package main

import (
	"github.com/spf13/cobra"

	"github.com/morpheus-mall/mall-backend/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the schema, migrate tables and seed roles",
	RunE: func(cmd *cobra.Command, _ []string) error {
		db, err := database.Connect(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		if sqlDB, err := db.DB(); err == nil {
			defer sqlDB.Close()
		}
		return database.Migrate(db, cfg.DBSchema)
	},
}
