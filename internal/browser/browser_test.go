package browser

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestLookup(t *testing.T) {
	for _, id := range []string{"chrome", "edge", "brave", "chromium", "Chrome", "EDGE"} {
		if _, err := Lookup(id); err != nil {
			t.Errorf("Lookup(%q): %v", id, err)
		}
	}

	_, err := Lookup("firefox")
	if !errors.Is(err, ErrUnknownBrowser) {
		t.Fatalf("Lookup(firefox) = %v, want ErrUnknownBrowser", err)
	}
}

func TestUserDataDir(t *testing.T) {
	base := t.TempDir()
	t.Setenv("LOCALAPPDATA", base)

	tests := []struct {
		id   string
		want string
	}{
		{"chrome", filepath.Join(base, "Google", "Chrome", "User Data")},
		{"edge", filepath.Join(base, "Microsoft", "Edge", "User Data")},
		{"brave", filepath.Join(base, "BraveSoftware", "Brave-Browser", "User Data")},
		{"chromium", filepath.Join(base, "Chromium", "User Data")},
	}
	for _, tt := range tests {
		b, err := Lookup(tt.id)
		if err != nil {
			t.Fatalf("Lookup(%s): %v", tt.id, err)
		}
		if got := b.UserDataDir(); got != tt.want {
			t.Errorf("%s UserDataDir = %q, want %q", tt.id, got, tt.want)
		}
	}
}

func TestKnownIsACopy(t *testing.T) {
	browsers := Known()
	if len(browsers) == 0 {
		t.Fatal("no known browsers")
	}
	browsers[0].ID = "mutated"

	if known[0].ID == "mutated" {
		t.Error("Known leaked the internal table")
	}
}
