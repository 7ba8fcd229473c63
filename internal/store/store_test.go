package store

import (
	"os"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	return s
}

func TestNewStore_CreatesDatabase(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	if _, err := os.Stat(dbPath); !os.IsNotExist(err) {
		t.Fatal("database file should not exist before creating store")
	}

	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Fatal("database file should exist after creating store")
	}
}

func TestNewStore_RunsMigrations(t *testing.T) {
	s := newTestStore(t)

	tables := []string{"sessions", "analyses", "expression_stats", "settings"}
	for _, table := range tables {
		var name string
		err := s.DB().QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
			table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %q should exist after migrations: %v", table, err)
		}
	}
}

func TestNewStore_MigrationsAreIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	s1, err := New(dbPath)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	s1.Close()

	// Reopening runs migrations again against the existing schema.
	s2, err := New(dbPath)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	s2.Close()
}

func TestSettings(t *testing.T) {
	s := newTestStore(t)
	settings := s.Settings()

	if _, err := settings.Get("cooldown"); err != ErrNotFound {
		t.Errorf("expected ErrNotFound for unset key, got %v", err)
	}

	if err := settings.Set("cooldown", "5"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := settings.Set("cooldown", "10"); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}

	got, err := settings.Get("cooldown")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "10" {
		t.Errorf("expected %q, got %q", "10", got)
	}
}
