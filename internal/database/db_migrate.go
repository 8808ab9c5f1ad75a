package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"
)

// Migrate applies all pending embedded migrations for the configured driver
func (db *Database) Migrate(ctx context.Context) error {
	if err := db.ensureMigrationsTable(ctx); err != nil {
		return fmt.Errorf("failed to ensure migrations table: %w", err)
	}

	migrations, err := getEmbeddedMigrationFiles(db.dbconfig.Driver)
	if err != nil {
		return err
	}

	applied, err := db.getAppliedMigrations(ctx)
	if err != nil {
		return fmt.Errorf("failed to get applied migrations: %w", err)
	}

	for _, migration := range migrations {
		if applied[migration.Version] {
			continue
		}
		if err := db.applyMigration(ctx, migration); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", migration.FileName, err)
		}
		log.Printf("[DB]: Applied migration %s", migration.FileName)
	}
	return nil
}

func (db *Database) ensureMigrationsTable(ctx context.Context) error {
	_, err := retryableExec(ctx, db.mainDB, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			description VARCHAR(200) NOT NULL,
			applied_at TIMESTAMP NOT NULL
		)`)
	return err
}

// getAppliedMigrations returns the set of applied migration versions
func (db *Database) getAppliedMigrations(ctx context.Context) (map[int]bool, error) {
	rows, err := retryableQuery(ctx, db.mainDB, "SELECT version FROM schema_migrations")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, err
		}
		applied[version] = true
	}
	return applied, rows.Err()
}

// applyMigration runs one migration and records it in the same transaction
func (db *Database) applyMigration(ctx context.Context, migration *MigrationFile) error {
	content, err := readEmbeddedMigrationContent(migration)
	if err != nil {
		return err
	}
	statements := splitStatements(content)

	return retryableTransactionExec(ctx, db.mainDB, func(tx *sql.Tx) error {
		for _, stmt := range statements {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("statement failed (first 50 chars): %s...: %w", truncateString(stmt, 50), err)
			}
		}
		_, err := tx.ExecContext(ctx,
			db.rebind("INSERT INTO schema_migrations (version, description, applied_at) VALUES (?, ?, ?)"),
			migration.Version, migration.Description, time.Now().UTC())
		return err
	})
}
