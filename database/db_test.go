package database

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOpenCreatesSchema(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "demo.db"))
	if err != nil {
		t.Fatalf("Error opening database: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec("INSERT INTO demo_store (key, value) VALUES (?, ?)", "k", "v1"); err != nil {
		t.Fatalf("Error inserting into demo_store: %v", err)
	}

	// The key column is a primary key; upserts replace the value.
	_, err = db.Exec(`
		INSERT INTO demo_store (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, "k", "v2")
	if err != nil {
		t.Fatalf("Error upserting into demo_store: %v", err)
	}

	var value string
	if err := db.QueryRow("SELECT value FROM demo_store WHERE key = ?", "k").Scan(&value); err != nil {
		t.Fatalf("Error reading back value: %v", err)
	}
	if value != "v2" {
		t.Errorf("Expected value 'v2', got '%s'", value)
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demo.db")

	db, err := Open(path)
	if err != nil {
		t.Fatalf("Error opening database: %v", err)
	}
	db.Close()

	// Opening the same file again must not fail on the existing schema.
	db, err = Open(path)
	if err != nil {
		t.Fatalf("Error reopening database: %v", err)
	}
	db.Close()
}

func TestDefaultPath(t *testing.T) {
	originalFly := os.Getenv("FLY_APP_NAME")
	originalPath := os.Getenv("DEMO_DB_PATH")
	defer func() {
		os.Setenv("FLY_APP_NAME", originalFly)
		os.Setenv("DEMO_DB_PATH", originalPath)
	}()

	os.Setenv("FLY_APP_NAME", "")
	os.Setenv("DEMO_DB_PATH", "")
	if path := DefaultPath(); path != "./demo.db" {
		t.Errorf("Expected './demo.db', got '%s'", path)
	}

	os.Setenv("DEMO_DB_PATH", "/tmp/other.db")
	if path := DefaultPath(); path != "/tmp/other.db" {
		t.Errorf("Expected '/tmp/other.db', got '%s'", path)
	}

	// The Fly volume wins over everything else.
	os.Setenv("FLY_APP_NAME", "brokeaf")
	if path := DefaultPath(); path != filepath.Join("/data", "demo.db") {
		t.Errorf("Expected '/data/demo.db', got '%s'", path)
	}
}
