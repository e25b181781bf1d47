package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
)

// Schema DDL is embedded so the binary carries it.
//
//go:embed schema/*.sql
var schemaFiles embed.FS

// EnsureSchema creates the tables the service needs if they are missing.
//
// Every statement is CREATE ... IF NOT EXISTS: existing tables are never
// dropped or altered, and running it again is a no-op. Files run in name
// order.
func (db *Database) EnsureSchema(ctx context.Context) error {
	names, err := fs.Glob(schemaFiles, "schema/*.sql")
	if err != nil {
		return fmt.Errorf("listing schema files: %w", err)
	}
	sort.Strings(names)

	for _, name := range names {
		ddl, err := schemaFiles.ReadFile(name)
		if err != nil {
			return fmt.Errorf("reading schema file %s: %w", name, err)
		}

		// No arguments, so pgx sends this over the simple protocol and the
		// file may hold several statements.
		if _, err := db.Pool.Exec(ctx, string(ddl)); err != nil {
			return fmt.Errorf("applying schema file %s: %w", name, err)
		}
	}

	db.log.Info().Int("files", len(names)).Msg("database schema ensured")
	return nil
}
