package database

import (
	"context"
	"embed"
	"fmt"

	"github.com/assistflowpro-cyber/assistflow-backend/core/logger"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// Migrate applies the embedded schema for the connection's driver. The schema
// is written with IF NOT EXISTS so it can run on every boot.
func (d *Database) Migrate(ctx context.Context) error {
	file := "schema/postgres.sql"
	if d.driver == DriverSQLite {
		file = "schema/sqlite.sql"
	}

	ddl, err := schemaFS.ReadFile(file)
	if err != nil {
		return fmt.Errorf("failed to read schema %s: %w", file, err)
	}

	if err := d.ExecContext(ctx, string(ddl)); err != nil {
		logger.Error("Database:Migrate:Error", "file", file, "error", err)
		return fmt.Errorf("failed to apply schema %s: %w", file, err)
	}

	logger.Info("Database:Migrate:Success", "file", file)
	return nil
}
