package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const sqliteDriverName = "sqlite"

const schemaGatewayEvents = `
CREATE TABLE IF NOT EXISTS gateway_events (
    id TEXT PRIMARY KEY,
    occurred_at TIMESTAMP NOT NULL,
    op TEXT NOT NULL,
    reason TEXT NOT NULL,
    message TEXT NOT NULL,
    meta TEXT
);
`

const schemaAdminAccounts = `
CREATE TABLE IF NOT EXISTS admin_accounts (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    username TEXT UNIQUE NOT NULL,
    password_hash TEXT NOT NULL
);
`

// InitDB opens/creates the local SQLite file and ensures the diagnostics
// tables exist. The remote reservation service remains the system of record;
// this database only holds gateway fallback events and admin accounts.
func InitDB(path string) (*sql.DB, error) {
	d, err := sql.Open(sqliteDriverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite at %q: %w", path, err)
	}

	// Single writer keeps SQLite happy
	d.SetMaxOpenConns(1)
	d.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA foreign_keys = ON;",
		"PRAGMA busy_timeout = 5000;",
	} {
		if _, err := d.Exec(pragma); err != nil {
			_ = d.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	if err := ensureSchema(d); err != nil {
		_ = d.Close()
		return nil, err
	}

	if err := d.Ping(); err != nil {
		_ = d.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return d, nil
}

func ensureSchema(d *sql.DB) error {
	tx, err := d.Begin()
	if err != nil {
		return fmt.Errorf("begin schema transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for i, stmt := range []string{schemaGatewayEvents, schemaAdminAccounts} {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i+1, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema transaction: %w", err)
	}
	return nil
}
