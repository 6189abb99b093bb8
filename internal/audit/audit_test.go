package audit

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestOpenWritesSessionFile(t *testing.T) {
	dir := t.TempDir()

	l := Open(dir, "1.2.3", "chrome-Default")
	if l.File() == "" {
		t.Fatal("no session file opened in a writable directory")
	}

	l.Deletion("google.com", "COOKIES", "SUCCESS", "5 deleted")
	l.Deletion("google.com", "STORAGE", "NONE", "")
	l.Infow("kill", "processes", 3)
	l.Close()

	name := filepath.Base(l.File())
	if !strings.HasPrefix(name, "session_") || !strings.HasSuffix(name, ".log") {
		t.Errorf("session file name = %q", name)
	}

	content, err := Read(l.File())
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	for _, want := range []string{"session start", "1.2.3", "chrome-Default", "deletion", "google.com", "COOKIES", "SUCCESS"} {
		if !strings.Contains(content, want) {
			t.Errorf("log is missing %q:\n%s", want, content)
		}
	}
}

func TestOpenDegradesWhenDirUnwritable(t *testing.T) {
	parent := t.TempDir()
	blocker := filepath.Join(parent, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	// A path through a regular file cannot be created.
	l := Open(filepath.Join(blocker, "logs"), "1.2.3", "chrome-Default")
	defer l.Close()

	if l.File() != "" {
		t.Errorf("File() = %q, want empty for degraded logger", l.File())
	}

	// Logging must still work.
	l.Deletion("google.com", "COOKIES", "ERROR", "db locked")
}

func TestSessionsNewestFirst(t *testing.T) {
	dir := t.TempDir()

	names := []string{
		"session_2024-01-01_10-00-00.log",
		"session_2024-01-02_10-00-00.log",
		"session_2024-01-03_10-00-00.log",
	}
	base := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	for i, name := range names {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte("log\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		stamp := base.AddDate(0, 0, i)
		if err := os.Chtimes(path, stamp, stamp); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "unrelated.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	sessions, err := Sessions(dir)
	if err != nil {
		t.Fatalf("Sessions: %v", err)
	}
	if len(sessions) != 3 {
		t.Fatalf("got %d sessions, want 3: %+v", len(sessions), sessions)
	}
	if sessions[0].Name != names[2] || sessions[2].Name != names[0] {
		t.Errorf("order = %s, %s, %s", sessions[0].Name, sessions[1].Name, sessions[2].Name)
	}
}

func TestSessionsMissingDir(t *testing.T) {
	sessions, err := Sessions(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatalf("Sessions: %v", err)
	}
	if sessions != nil {
		t.Errorf("Sessions of missing dir = %+v, want nil", sessions)
	}
}
