package storage

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/lakshaymaurya-felt/sitemole/internal/core"
)

// DeleteResult records the outcome for one entry. Per-entry failures do not
// stop the batch; a single locked leveldb file should not strand the rest
// of the site's data.
type DeleteResult struct {
	Entry Entry
	Freed int64
	Err   error
}

// DeleteEntries removes the given entries, refusing anything that resolves
// outside the profile directory. Returns one result per entry plus the
// total bytes freed.
func DeleteEntries(profileDir string, entries []Entry, dryRun bool) ([]DeleteResult, int64) {
	results := make([]DeleteResult, 0, len(entries))
	var freed int64

	for _, e := range entries {
		res := DeleteResult{Entry: e}
		if !withinDir(profileDir, e.Path) {
			res.Err = fmt.Errorf("entry %s escapes profile %s", e.Path, profileDir)
		} else {
			res.Freed, res.Err = core.SafeDelete(e.Path, dryRun)
			freed += res.Freed
		}
		results = append(results, res)
	}
	return results, freed
}

// withinDir reports whether path is inside dir after cleaning.
func withinDir(dir, path string) bool {
	rel, err := filepath.Rel(filepath.Clean(dir), filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
