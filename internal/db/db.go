package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/AdamBeresnev/rumble-raffle/migrations"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// sqliteOptions are appended to file paths. _txlock=immediate takes the write
// lock at BEGIN so two draws of the same league serialize instead of failing
// on lock upgrade.
const sqliteOptions = "_journal_mode=WAL&_busy_timeout=5000&_txlock=immediate&_foreign_keys=on"

// DSN turns a database path into a go-sqlite3 connection string.
func DSN(path string) string {
	if strings.Contains(path, "?") {
		return path
	}
	return path + "?" + sqliteOptions
}

func Open(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to db: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// RunMigrations applies the embedded schema. The migrate instance is not
// closed because that would close db as well.
func RunMigrations(db *sql.DB) error {
	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}

	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migrate driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}
