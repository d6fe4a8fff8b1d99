package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDiskUsageBytes(t *testing.T) {
	dir := t.TempDir()

	db := filepath.Join(dir, "aidex.db")
	if err := os.WriteFile(db, []byte("hello"), 0644); err != nil {
		t.Fatal(err)
	}
	got, err := DiskUsageBytes(DatabaseFiles(db)...)
	if err != nil {
		t.Fatal(err)
	}
	if got != 5 {
		t.Errorf("database without WAL: got %d bytes, want 5", got)
	}

	idx := filepath.Join(dir, "index")
	if err := os.MkdirAll(filepath.Join(idx, "store"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(idx, "meta"), []byte("ab"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(idx, "store", "seg"), []byte("c"), 0644); err != nil {
		t.Fatal(err)
	}
	got, err = DiskUsageBytes(idx, db, "", ":memory:", filepath.Join(dir, "missing"))
	if err != nil {
		t.Fatal(err)
	}
	if got != 8 {
		t.Errorf("mixed paths: got %d bytes, want 8", got)
	}
}

func TestDatabaseFiles(t *testing.T) {
	if got := DatabaseFiles(":memory:"); got != nil {
		t.Errorf("DatabaseFiles(:memory:) = %v", got)
	}
	got := DatabaseFiles("/tmp/a.db")
	if len(got) != 3 || got[1] != "/tmp/a.db-wal" {
		t.Errorf("DatabaseFiles = %v", got)
	}
}
