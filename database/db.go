package database

import (
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// DefaultPath picks where the demo store lives. On Fly.io the mounted
// volume keeps demo data across deploys.
func DefaultPath() string {
	if os.Getenv("FLY_APP_NAME") != "" {
		return filepath.Join("/data", "demo.db")
	}
	if path := os.Getenv("DEMO_DB_PATH"); path != "" {
		return path
	}
	return "./demo.db"
}

// Open opens the sqlite database backing the demo store and creates
// its schema. The caller owns the handle and closes it on shutdown.
func Open(path string) (*sql.DB, error) {
	// Connection parameters to better handle concurrency
	dsn := path + "?_journal=WAL&_timeout=10000&_busy_timeout=10000"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Minute * 5)

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000;"); err != nil {
		db.Close()
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	// One serialized list per entity kind plus the demo session marker.
	createDemoStore := `
	CREATE TABLE IF NOT EXISTS demo_store (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	if _, err := db.Exec(createDemoStore); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}
