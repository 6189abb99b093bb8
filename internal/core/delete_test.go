package core

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestSizeOf(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a"), make([]byte, 100), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "sub", "b"), make([]byte, 50), 0o644); err != nil {
		t.Fatal(err)
	}

	if got := SizeOf(dir); got != 150 {
		t.Errorf("SizeOf(dir) = %d, want 150", got)
	}
	if got := SizeOf(filepath.Join(dir, "a")); got != 100 {
		t.Errorf("SizeOf(file) = %d, want 100", got)
	}
	if got := SizeOf(filepath.Join(dir, "missing")); got != 0 {
		t.Errorf("SizeOf(missing) = %d, want 0", got)
	}
}

func TestSafeDeleteDryRun(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data")
	if err := os.WriteFile(path, make([]byte, 64), 0o644); err != nil {
		t.Fatal(err)
	}

	freed, err := SafeDelete(path, true)
	if err != nil {
		t.Fatalf("SafeDelete dry run: %v", err)
	}
	if freed != 64 {
		t.Errorf("freed = %d, want 64", freed)
	}
	if _, err := os.Stat(path); err != nil {
		t.Error("dry run removed the file")
	}
}

func TestSafeDeleteRemovesReadOnlyTree(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "store")
	if err := os.MkdirAll(target, 0o755); err != nil {
		t.Fatal(err)
	}
	locked := filepath.Join(target, "000001.ldb")
	if err := os.WriteFile(locked, make([]byte, 32), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chmod(locked, 0o400); err != nil {
		t.Fatal(err)
	}

	freed, err := SafeDelete(target, false)
	if err != nil {
		t.Fatalf("SafeDelete: %v", err)
	}
	if freed != 32 {
		t.Errorf("freed = %d, want 32", freed)
	}
	if _, err := os.Stat(target); !os.IsNotExist(err) {
		t.Error("tree still exists")
	}
}

func TestSafeDeleteMissingPath(t *testing.T) {
	freed, err := SafeDelete(filepath.Join(t.TempDir(), "gone"), false)
	if err != nil {
		t.Fatalf("SafeDelete missing: %v", err)
	}
	if freed != 0 {
		t.Errorf("freed = %d, want 0", freed)
	}
}

func TestSafeDeleteRefusals(t *testing.T) {
	t.Setenv("LOCALAPPDATA", t.TempDir())

	tests := []struct {
		name string
		path string
	}{
		{"empty", ""},
		{"relative", filepath.Join("relative", "path")},
		{"env root", os.Getenv("LOCALAPPDATA")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := SafeDelete(tt.path, false); !errors.Is(err, ErrProtectedPath) {
				t.Errorf("SafeDelete(%q) = %v, want ErrProtectedPath", tt.path, err)
			}
		})
	}
}

func TestIsProtected(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{`C:\`, true},
		{`D:\`, true},
		{`C:`, true},
		{filepath.Join(os.TempDir(), "sitemole-test", "deep"), false},
	}

	for _, tt := range tests {
		if got := isProtected(tt.path); got != tt.want {
			t.Errorf("isProtected(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
