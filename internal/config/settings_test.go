package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	t.Setenv("APPDATA", t.TempDir())

	s, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.AcknowledgedRisk {
		t.Error("fresh settings have the disclaimer acknowledged")
	}
	if s.DefaultBrowser != "chrome" {
		t.Errorf("DefaultBrowser = %q, want chrome", s.DefaultBrowser)
	}
	if s.CountdownSeconds != 5 {
		t.Errorf("CountdownSeconds = %d, want 5", s.CountdownSeconds)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Setenv("APPDATA", t.TempDir())

	s := DefaultSettings()
	s.AcknowledgedRisk = true
	s.DefaultBrowser = "edge"
	s.CountdownSeconds = 3
	s.BackupDir = `D:\Backups`

	if err := s.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != s {
		t.Errorf("round trip = %+v, want %+v", got, s)
	}
}

func TestLoadCorruptFileFails(t *testing.T) {
	t.Setenv("APPDATA", t.TempDir())

	if err := os.MkdirAll(Dir(), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(File(), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(); err == nil {
		t.Fatal("Load accepted a corrupt config file")
	}
}

func TestLoadClampsCountdown(t *testing.T) {
	t.Setenv("APPDATA", t.TempDir())

	if err := os.MkdirAll(Dir(), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(File(), []byte(`{"countdown_seconds": -1}`), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.CountdownSeconds != 5 {
		t.Errorf("CountdownSeconds = %d, want clamped to 5", s.CountdownSeconds)
	}
}

func TestResolvedDirs(t *testing.T) {
	t.Setenv("USERPROFILE", `C:\Users\test`)

	s := DefaultSettings()
	if got := s.ResolvedLogDir(); got != filepath.Join(`C:\Users\test`, "Documents", "SiteMole", "Logs") {
		t.Errorf("ResolvedLogDir = %q", got)
	}

	s.LogDir = `D:\logs`
	if got := s.ResolvedLogDir(); got != `D:\logs` {
		t.Errorf("override ResolvedLogDir = %q", got)
	}
}

func TestNeverDeletePathsCoverUserDataRoots(t *testing.T) {
	t.Setenv("LOCALAPPDATA", `C:\Users\test\AppData\Local`)

	paths := GetNeverDeletePaths()
	wantChrome := filepath.Join(`C:\Users\test\AppData\Local`, "Google", "Chrome", "User Data")

	found := false
	for _, p := range paths {
		if p == wantChrome {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("never-delete paths missing %q: %v", wantChrome, paths)
	}
}
