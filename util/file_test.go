package util

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	savePath := filepath.Join(dir, "nested", "table.json")
	if err := WriteFileAtomic(savePath, []byte("first")); err != nil {
		t.Fatalf("write failed: %s", err)
	}
	if err := WriteFileAtomic(savePath, []byte("second")); err != nil {
		t.Fatalf("overwrite failed: %s", err)
	}
	bs, err := os.ReadFile(savePath)
	if err != nil || string(bs) != "second" {
		t.Errorf("expected second, got %q (%v)", bs, err)
	}
	entries, _ := os.ReadDir(filepath.Dir(savePath))
	if len(entries) != 1 {
		t.Errorf("temporary files left behind: %d entries", len(entries))
	}
}

func TestAppendToFile(t *testing.T) {
	savePath := filepath.Join(t.TempDir(), "traces.jsonl")
	if err := AppendToFile(savePath, "a", "b"); err != nil {
		t.Fatal(err)
	}
	if err := AppendToFile(savePath, "c"); err != nil {
		t.Fatal(err)
	}
	bs, _ := os.ReadFile(savePath)
	if lines := strings.Split(strings.TrimSpace(string(bs)), "\n"); len(lines) != 3 {
		t.Errorf("expected 3 lines, got %d", len(lines))
	}
}
