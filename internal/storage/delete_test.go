package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDeleteEntriesDryRun(t *testing.T) {
	p := newProfileFixture(t)

	entries, err := ScanSite(p, "google.com")
	if err != nil {
		t.Fatalf("ScanSite: %v", err)
	}

	results, freed := DeleteEntries(p.Dir, entries, true)
	if freed != 192 {
		t.Errorf("freed = %d, want 192", freed)
	}
	for _, r := range results {
		if r.Err != nil {
			t.Errorf("%s: %v", r.Entry.Name, r.Err)
		}
	}

	// Nothing may be gone after a dry run.
	for _, e := range entries {
		if _, err := os.Stat(e.Path); err != nil {
			t.Errorf("dry run removed %s", e.Path)
		}
	}
}

func TestDeleteEntriesRemoves(t *testing.T) {
	p := newProfileFixture(t)

	entries, err := ScanSite(p, "google.com")
	if err != nil {
		t.Fatalf("ScanSite: %v", err)
	}

	results, freed := DeleteEntries(p.Dir, entries, false)
	if freed != 192 {
		t.Errorf("freed = %d, want 192", freed)
	}
	for _, r := range results {
		if r.Err != nil {
			t.Errorf("%s: %v", r.Entry.Name, r.Err)
		}
	}

	for _, e := range entries {
		if _, err := os.Stat(e.Path); !os.IsNotExist(err) {
			t.Errorf("%s still exists after delete", e.Path)
		}
	}

	// The other site's data is untouched.
	other := filepath.Join(p.Dir, "IndexedDB", "https_other.com_0.indexeddb.leveldb")
	if _, err := os.Stat(other); err != nil {
		t.Errorf("unrelated entry was removed: %v", err)
	}
}

func TestDeleteEntriesRefusesEscapes(t *testing.T) {
	p := newProfileFixture(t)
	outside := filepath.Join(t.TempDir(), "victim.txt")
	if err := os.WriteFile(outside, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	entries := []Entry{{Area: "IndexedDB", Name: "victim.txt", Path: outside}}
	results, freed := DeleteEntries(p.Dir, entries, false)

	if freed != 0 {
		t.Errorf("freed = %d, want 0", freed)
	}
	if len(results) != 1 || results[0].Err == nil {
		t.Fatalf("escape was not refused: %+v", results)
	}
	if _, err := os.Stat(outside); err != nil {
		t.Errorf("file outside the profile was deleted")
	}
}
