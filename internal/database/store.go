package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/oncodrug-server/internal/domain"
)

// Store is an open annotation database of either supported driver.
type Store struct {
	SQL    *sql.DB
	Driver string
	close  func()
}

// Open connects to the database selected by cfg.Driver: a pgx pool for
// "postgres", a local file for "sqlite".
func Open(ctx context.Context, cfg domain.DatabaseConfig, logger *logrus.Logger) (*Store, error) {
	switch driver := strings.ToLower(cfg.Driver); driver {
	case "", "postgres", "postgresql", "pgx":
		db, err := NewConnection(ctx, ConfigFromDomain(cfg), logger)
		if err != nil {
			return nil, err
		}
		return &Store{SQL: db.SQL, Driver: "postgres", close: db.Close}, nil
	case "sqlite", "sqlite3":
		db, err := OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		logger.WithField("path", cfg.SQLitePath).Info("SQLite annotation store opened")
		return &Store{SQL: db, Driver: "sqlite", close: func() {
			if err := db.Close(); err != nil {
				logger.WithError(err).Warn("Closing SQLite store failed")
			}
		}}, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// Close releases the underlying connections.
func (s *Store) Close() {
	if s.close != nil {
		s.close()
	}
}
