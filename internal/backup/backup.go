package backup

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/lakshaymaurya-felt/sitemole/internal/browser"
)

const (
	// manifestName is the metadata file inside each backup directory.
	manifestName = "manifest.json"

	// dirPrefix names backup directories backup_<stamp>.
	dirPrefix = "backup_"

	// stampLayout matches the session log timestamp format.
	stampLayout = "2006-01-02_15-04-05"

	// copyConcurrency bounds parallel file copies.
	copyConcurrency = 4
)

var (
	// ErrNothingToBackup means the profile has neither a cookie database
	// nor any storage area on disk.
	ErrNothingToBackup = errors.New("profile has no site data to back up")

	// ErrNoManifest means a directory is not a SiteMole backup.
	ErrNoManifest = errors.New("no backup manifest found")
)

// Item is one backed-up file or directory tree, identified by its path
// relative to the profile directory.
type Item struct {
	Rel   string `json:"rel"`
	Size  int64  `json:"size"`
	IsDir bool   `json:"is_dir"`
}

// Manifest describes one backup.
type Manifest struct {
	CreatedAt  time.Time `json:"created_at"`
	Browser    string    `json:"browser"`
	Profile    string    `json:"profile"`
	ProfileDir string    `json:"profile_dir"`
	Items      []Item    `json:"items"`
	FileCount  int       `json:"file_count"`
	TotalBytes int64     `json:"total_bytes"`
}

// Backup pairs a backup directory with its manifest.
type Backup struct {
	Dir      string
	Manifest Manifest
}

// Create copies the profile's cookie database and every existing storage
// area into a fresh backup_<stamp> directory under destRoot and writes the
// manifest. Returns the backup directory and manifest.
func Create(p browser.Profile, destRoot string) (string, *Manifest, error) {
	var rels []string
	if db, err := p.CookieDB(); err == nil {
		if rel, relErr := filepath.Rel(p.Dir, db); relErr == nil {
			rels = append(rels, rel)
		}
	}
	for _, area := range p.Areas() {
		if rel, relErr := filepath.Rel(p.Dir, area.Path); relErr == nil {
			rels = append(rels, rel)
		}
	}
	if len(rels) == 0 {
		return "", nil, ErrNothingToBackup
	}

	dir := filepath.Join(destRoot, dirPrefix+time.Now().Format(stampLayout))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", nil, fmt.Errorf("create backup dir: %w", err)
	}

	m := &Manifest{
		CreatedAt:  time.Now(),
		Browser:    p.Browser.ID,
		Profile:    p.Name,
		ProfileDir: p.Dir,
	}

	for _, rel := range rels {
		src := filepath.Join(p.Dir, rel)
		dst := filepath.Join(dir, rel)

		info, err := os.Lstat(src)
		if err != nil {
			continue
		}

		item := Item{Rel: rel, IsDir: info.IsDir()}
		var copied int64
		var files int
		if info.IsDir() {
			copied, files, err = copyTree(src, dst)
		} else {
			err = copyFile(src, dst)
			copied, files = info.Size(), 1
		}
		if err != nil {
			return dir, m, fmt.Errorf("back up %s: %w", rel, err)
		}

		item.Size = copied
		m.Items = append(m.Items, item)
		m.FileCount += files
		m.TotalBytes += copied
	}

	if err := writeManifest(dir, m); err != nil {
		return dir, m, err
	}
	return dir, m, nil
}

// List returns the backups under destRoot, newest first. Directories
// without a readable manifest are skipped.
func List(destRoot string) ([]Backup, error) {
	entries, err := os.ReadDir(destRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var backups []Backup
	for _, e := range entries {
		if !e.IsDir() || !strings.HasPrefix(e.Name(), dirPrefix) {
			continue
		}
		dir := filepath.Join(destRoot, e.Name())
		m, err := ReadManifest(dir)
		if err != nil {
			continue
		}
		backups = append(backups, Backup{Dir: dir, Manifest: *m})
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].Manifest.CreatedAt.After(backups[j].Manifest.CreatedAt)
	})
	return backups, nil
}

// ReadManifest loads the manifest from a backup directory.
func ReadManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, manifestName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w in %s", ErrNoManifest, dir)
		}
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest in %s: %w", dir, err)
	}
	return &m, nil
}

func writeManifest(dir string, m *Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, manifestName), append(data, '\n'), 0o644)
}

// ─── Copy helpers ────────────────────────────────────────────────────────────

// copyTree copies a directory tree with bounded concurrency, preserving
// modification times. Returns bytes and files copied.
func copyTree(src, dst string) (int64, int, error) {
	type job struct {
		src, dst string
	}

	var jobs []job
	err := filepath.WalkDir(src, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		rel, relErr := filepath.Rel(src, path)
		if relErr != nil {
			return nil
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		jobs = append(jobs, job{src: path, dst: target})
		return nil
	})
	if err != nil {
		return 0, 0, err
	}

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		sem      = make(chan struct{}, copyConcurrency)
		copied   int64
		files    int
		firstErr error
	)
	for _, j := range jobs {
		wg.Add(1)
		go func(j job) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			copyErr := copyFile(j.src, j.dst)

			mu.Lock()
			defer mu.Unlock()
			if copyErr != nil {
				if firstErr == nil {
					firstErr = copyErr
				}
				return
			}
			if info, statErr := os.Stat(j.dst); statErr == nil {
				copied += info.Size()
			}
			files++
		}(j)
	}
	wg.Wait()

	return copied, files, firstErr
}

// copyFile copies one file, creating parent directories and carrying the
// source modification time over.
func copyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err = io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err = out.Close(); err != nil {
		return err
	}

	if info, statErr := os.Stat(src); statErr == nil {
		_ = os.Chtimes(dst, info.ModTime(), info.ModTime())
	}
	return nil
}
