package core

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrProtectedPath is returned when SafeDelete refuses to touch a path.
var ErrProtectedPath = errors.New("refusing to delete protected path")

// protectedRoots returns paths SafeDelete must never remove, resolved from
// the environment so non-C: installations are covered too.
func protectedRoots() []string {
	var roots []string

	w := os.Getenv("WINDIR")
	if w == "" {
		w = `C:\Windows`
	}
	roots = append(roots, w)

	if d := os.Getenv("SYSTEMDRIVE"); d != "" {
		roots = append(roots, d+`\`, filepath.Join(d+`\`, "Users"))
	} else {
		roots = append(roots, `C:\`, `C:\Users`)
	}

	for _, env := range []string{"PROGRAMFILES", "PROGRAMFILES(X86)", "PROGRAMDATA", "USERPROFILE", "LOCALAPPDATA", "APPDATA"} {
		if p := os.Getenv(env); p != "" {
			roots = append(roots, p)
		}
	}

	return roots
}

// isProtected reports whether path is one of the protected roots or a
// volume root like D:\.
func isProtected(path string) bool {
	cleaned := filepath.Clean(path)

	// Volume roots: "C:\", "D:\" clean to `C:\`; reject anything that short.
	if len(cleaned) <= 3 {
		return true
	}

	for _, root := range protectedRoots() {
		if strings.EqualFold(cleaned, filepath.Clean(root)) {
			return true
		}
	}
	return false
}

// SizeOf returns the total byte size of the file or directory tree at path.
// Unreadable entries are skipped rather than failing the walk.
func SizeOf(path string) int64 {
	info, err := os.Lstat(path)
	if err != nil {
		return 0
	}
	if !info.IsDir() {
		return info.Size()
	}

	var total int64
	_ = filepath.WalkDir(path, func(_ string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			if fi, infoErr := d.Info(); infoErr == nil {
				total += fi.Size()
			}
		}
		return nil
	})
	return total
}

// SafeDelete removes a file or directory tree and returns the bytes freed.
// Missing paths are not an error (something else already removed it).
// Read-only attributes are cleared and the removal retried once, since
// Chromium marks parts of its storage read-only.
// In dryRun mode nothing is removed; the size that would be freed is returned.
func SafeDelete(path string, dryRun bool) (int64, error) {
	if path == "" {
		return 0, fmt.Errorf("%w: empty path", ErrProtectedPath)
	}
	if !filepath.IsAbs(path) {
		return 0, fmt.Errorf("%w: %s is not absolute", ErrProtectedPath, path)
	}
	if isProtected(path) {
		return 0, fmt.Errorf("%w: %s", ErrProtectedPath, path)
	}

	if _, err := os.Lstat(path); err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	size := SizeOf(path)
	if dryRun {
		return size, nil
	}

	if err := os.RemoveAll(path); err != nil {
		clearReadOnly(path)
		if err = os.RemoveAll(path); err != nil {
			return 0, fmt.Errorf("delete %s: %w", path, err)
		}
	}
	return size, nil
}

// clearReadOnly strips the read-only attribute from path and everything
// under it. Best effort; the caller retries the removal afterwards.
func clearReadOnly(path string) {
	_ = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			_ = os.Chmod(p, 0o700)
		} else {
			_ = os.Chmod(p, 0o600)
		}
		return nil
	})
}
