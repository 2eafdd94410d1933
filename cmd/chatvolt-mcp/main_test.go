package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestOpenJournal_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "calls", "journal.db")

	store, err := openJournal(path, nil)
	if err != nil {
		t.Fatalf("openJournal: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(filepath.Dir(path)); err != nil {
		t.Errorf("journal directory not created: %v", err)
	}
}

func TestOpenJournal_DirectoryError(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "data")
	if err := os.WriteFile(blocker, []byte("not a directory"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := openJournal(filepath.Join(blocker, "journal.db"), nil)
	if err == nil {
		t.Fatal("expected error when the parent path is a file")
	}
	if !strings.Contains(err.Error(), "create journal directory") {
		t.Errorf("error = %v, want directory error", err)
	}
}
