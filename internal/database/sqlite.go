package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/oncodrug-server/internal/domain"
)

// OpenSQLite opens (creating if needed) a single-file annotation store with every
// cancer collection table present.
func OpenSQLite(ctx context.Context, dbPath string) (*sql.DB, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Every pooled connection would otherwise get its own empty database.
		db.SetMaxOpenConns(1)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	if err := createSQLiteSchema(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return db, nil
}

func createSQLiteSchema(ctx context.Context, db *sql.DB) error {
	for _, ct := range domain.AllCancerTypes() {
		table := ct.Table()
		schema := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %[1]s (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			gene TEXT NOT NULL DEFAULT '',
			position TEXT NOT NULL DEFAULT '',
			aa_mutation TEXT NOT NULL DEFAULT '',
			mutation TEXT NOT NULL DEFAULT '',
			nomenclature TEXT NOT NULL DEFAULT '',
			cds TEXT NOT NULL DEFAULT '',
			drug TEXT NOT NULL DEFAULT '',
			level TEXT NOT NULL DEFAULT '',
			cancer_main_type TEXT NOT NULL DEFAULT '',
			cancer_sub_type TEXT NOT NULL DEFAULT '',
			disease TEXT NOT NULL DEFAULT '',
			responsive TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			source_db TEXT NOT NULL DEFAULT '',
			articles TEXT NOT NULL DEFAULT '[]',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE INDEX IF NOT EXISTS idx_%[1]s_gene ON %[1]s(gene);
		`, table)

		if _, err := db.ExecContext(ctx, schema); err != nil {
			return fmt.Errorf("creating table %s: %w", table, err)
		}
	}
	return nil
}
