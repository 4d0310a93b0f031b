// Package db opens the league's SQL databases.
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fadedpez/tucoleague/pkg/db/migrations"
	_ "github.com/mattn/go-sqlite3"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TimestampFormat is how timestamps are written to SQLite text columns
const TimestampFormat = "2006-01-02 15:04:05.000"

// SQLite might hand back timestamps in any of these depending on who wrote them
var timestampFormats = []string{
	TimestampFormat,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05-07:00",
	time.RFC3339Nano,
}

// OpenSQLite opens the SQLite database at path and applies pending migrations
func OpenSQLite(path string) (*sql.DB, error) {
	conn, err := ConnectSQLite(path)
	if err != nil {
		return nil, err
	}

	migrator := migrations.NewMigrator(conn, migrations.Embedded())
	if err := migrator.MigrateUp(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("error applying migrations: %w", err)
	}

	return conn, nil
}

// ConnectSQLite opens (creating if needed) the SQLite database at path without
// migrating it. Writers take the database lock when their transaction begins
// and the pool is held to one connection, so transactions serialize.
func ConnectSQLite(path string) (*sql.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("error creating database directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_txlock=immediate&_busy_timeout=5000&_foreign_keys=on", path)
	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	conn.SetMaxOpenConns(1)
	return conn, nil
}

// OpenPostgres connects gorm to the Postgres database at dsn
func OpenPostgres(dsn string) (*gorm.DB, error) {
	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return conn, nil
}

// FormatTimestamp renders t for a SQLite text column
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampFormat)
}

// ParseTimestamp parses a SQLite timestamp column
func ParseTimestamp(value string) (time.Time, error) {
	var parseErr error
	for _, format := range timestampFormats {
		t, err := time.Parse(format, value)
		if err == nil {
			return t, nil
		}
		parseErr = err
	}
	return time.Time{}, fmt.Errorf("error parsing timestamp '%s': %w", value, parseErr)
}

// ParseNullTimestamp parses an optional timestamp column
func ParseNullTimestamp(value sql.NullString) (*time.Time, error) {
	if !value.Valid || value.String == "" {
		return nil, nil
	}
	t, err := ParseTimestamp(value.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
