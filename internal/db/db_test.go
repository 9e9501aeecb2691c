package db

import (
	"path/filepath"
	"testing"
)

func TestOpenMemory(t *testing.T) {
	d, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory() error: %v", err)
	}
	defer d.Close()

	var clicks int
	if err := d.QueryRow("SELECT clicks FROM counts WHERE id = 1").Scan(&clicks); err != nil {
		t.Fatalf("reading seed row: %v", err)
	}
	if clicks != 0 {
		t.Errorf("seed clicks = %d, want 0", clicks)
	}
}

func TestMigrateIdempotent(t *testing.T) {
	d, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory() error: %v", err)
	}
	defer d.Close()

	if _, err := d.Exec("UPDATE counts SET clicks = 7 WHERE id = 1"); err != nil {
		t.Fatalf("update: %v", err)
	}

	// Running migrate again must not fail or reset the seed row.
	if err := d.migrate(); err != nil {
		t.Fatalf("second migrate() error: %v", err)
	}

	var clicks int
	if err := d.QueryRow("SELECT clicks FROM counts WHERE id = 1").Scan(&clicks); err != nil {
		t.Fatalf("reading row: %v", err)
	}
	if clicks != 7 {
		t.Errorf("clicks after re-migrate = %d, want 7", clicks)
	}
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "blog.db")
	d, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer d.Close()

	if d.Path() != path {
		t.Errorf("Path() = %q, want %q", d.Path(), path)
	}
}

func TestCountsRejectNegative(t *testing.T) {
	d, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory() error: %v", err)
	}
	defer d.Close()

	if _, err := d.Exec("UPDATE counts SET clicks = -1 WHERE id = 1"); err == nil {
		t.Error("expected CHECK constraint to reject a negative count")
	}
}
