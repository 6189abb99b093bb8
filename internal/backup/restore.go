package backup

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Restore copies a backup's items back over the live profile. The caller is
// responsible for making sure the browser is closed first. Returns the
// number of files written (or that would be written, in dryRun mode).
func Restore(backupDir string, profileDir string, dryRun bool) (int, *Manifest, error) {
	m, err := ReadManifest(backupDir)
	if err != nil {
		return 0, nil, err
	}

	var restored int
	for _, item := range m.Items {
		if escapes(item.Rel) {
			return restored, m, fmt.Errorf("manifest item %q escapes the profile", item.Rel)
		}

		src := filepath.Join(backupDir, item.Rel)
		dst := filepath.Join(profileDir, item.Rel)

		info, statErr := os.Lstat(src)
		if statErr != nil {
			// Manifest lists it but the payload is gone; nothing to copy.
			continue
		}

		if info.IsDir() {
			n, copyErr := restoreTree(src, dst, dryRun)
			restored += n
			if copyErr != nil {
				return restored, m, fmt.Errorf("restore %s: %w", item.Rel, copyErr)
			}
		} else {
			if !dryRun {
				if copyErr := copyFile(src, dst); copyErr != nil {
					return restored, m, fmt.Errorf("restore %s: %w", item.Rel, copyErr)
				}
			}
			restored++
		}
	}
	return restored, m, nil
}

// restoreTree copies every file under src to the same relative location
// under dst, overwriting what is there.
func restoreTree(src, dst string, dryRun bool) (int, error) {
	var files int
	err := filepath.WalkDir(src, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(src, path)
		if relErr != nil {
			return nil
		}
		if !dryRun {
			if copyErr := copyFile(path, filepath.Join(dst, rel)); copyErr != nil {
				return copyErr
			}
		}
		files++
		return nil
	})
	return files, err
}

// escapes reports whether a manifest-relative path climbs out of its root.
func escapes(rel string) bool {
	if rel == "" || filepath.IsAbs(rel) {
		return true
	}
	cleaned := filepath.Clean(rel)
	return cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator))
}
