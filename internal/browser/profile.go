package browser

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Profile is one profile directory inside a browser's user data.
type Profile struct {
	Browser Browser
	Name    string
	Dir     string
}

var (
	// ErrNoUserData is returned when the browser's user-data directory is
	// missing entirely.
	ErrNoUserData = errors.New("browser user data directory not found")

	// ErrNoCookieDB is returned when a profile has no cookie database.
	// Callers treat this as "no sites" rather than a failure.
	ErrNoCookieDB = errors.New("cookie database not found")

	// ErrNoProfile is returned when a named profile does not exist.
	ErrNoProfile = errors.New("profile not found")
)

// Profiles enumerates the browser's profile directories. A directory counts
// as a profile when it is named like one (Default, Profile N) or carries a
// Preferences file. Default sorts first, then Profile N numerically.
func (b Browser) Profiles() ([]Profile, error) {
	root := b.UserDataDir()
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNoUserData, root)
		}
		return nil, err
	}

	var profiles []Profile
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		dir := filepath.Join(root, e.Name())
		if !looksLikeProfile(e.Name(), dir) {
			continue
		}
		profiles = append(profiles, Profile{Browser: b, Name: e.Name(), Dir: dir})
	}

	sort.Slice(profiles, func(i, j int) bool {
		return profileSortKey(profiles[i].Name) < profileSortKey(profiles[j].Name)
	})
	return profiles, nil
}

// FindProfile returns the named profile, or the Default profile (falling
// back to the first found) when name is empty.
func (b Browser) FindProfile(name string) (Profile, error) {
	profiles, err := b.Profiles()
	if err != nil {
		return Profile{}, err
	}
	if len(profiles) == 0 {
		return Profile{}, fmt.Errorf("%w: no profiles under %s", ErrNoProfile, b.UserDataDir())
	}

	if name == "" {
		for _, p := range profiles {
			if p.Name == "Default" {
				return p, nil
			}
		}
		return profiles[0], nil
	}

	for _, p := range profiles {
		if strings.EqualFold(p.Name, name) {
			return p, nil
		}
	}
	return Profile{}, fmt.Errorf("%w: %q in %s", ErrNoProfile, name, b.Name)
}

func looksLikeProfile(name, dir string) bool {
	if name == "Default" || strings.HasPrefix(name, "Profile ") {
		return true
	}
	// Guest/system profiles and stray directories only count when they
	// carry the Preferences marker.
	if _, err := os.Stat(filepath.Join(dir, "Preferences")); err == nil {
		return true
	}
	return false
}

// profileSortKey orders Default before Profile 1 < Profile 2 < … < others.
func profileSortKey(name string) string {
	if name == "Default" {
		return "0"
	}
	if rest, ok := strings.CutPrefix(name, "Profile "); ok {
		if n, err := strconv.Atoi(rest); err == nil {
			return fmt.Sprintf("1%09d", n)
		}
	}
	return "2" + strings.ToLower(name)
}

// Key identifies the profile for lock files and log context.
func (p Profile) Key() string {
	return p.Browser.ID + "-" + p.Name
}

// CookieDB returns the profile's cookie database path. Newer Chromium keeps
// it under Network\Cookies; older profiles have it at the profile root.
func (p Profile) CookieDB() (string, error) {
	candidates := []string{
		filepath.Join(p.Dir, "Network", "Cookies"),
		filepath.Join(p.Dir, "Cookies"),
	}
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w in %s", ErrNoCookieDB, p.Dir)
}

// ─── Storage areas ───────────────────────────────────────────────────────────

// StorageArea names one on-disk store that holds per-site data.
type StorageArea struct {
	// Name is the display name used in logs and the UI.
	Name string

	// rels are candidate locations relative to the profile directory;
	// the first that exists wins. Chromium has moved these around across
	// releases, so most areas carry a legacy location too.
	rels [][]string
}

// storageAreas is every non-cookie store SiteMole manages.
var storageAreas = []StorageArea{
	{Name: "Local Storage", rels: [][]string{{"Local Storage", "leveldb"}}},
	{Name: "Session Storage", rels: [][]string{{"Session Storage"}, {"Session Storage", "leveldb"}}},
	{Name: "IndexedDB", rels: [][]string{{"IndexedDB"}, {"Indexed DB"}}},
	{Name: "CacheStorage", rels: [][]string{{"Service Worker", "CacheStorage"}}},
	{Name: "ScriptCache", rels: [][]string{{"Service Worker", "ScriptCache"}}},
}

// StorageAreas returns the managed area definitions.
func StorageAreas() []StorageArea {
	out := make([]StorageArea, len(storageAreas))
	copy(out, storageAreas)
	return out
}

// AreaPath is a storage area resolved against a concrete profile.
type AreaPath struct {
	Area string
	Path string
}

// Areas resolves the storage areas that actually exist for this profile.
func (p Profile) Areas() []AreaPath {
	var out []AreaPath
	for _, area := range storageAreas {
		for _, rel := range area.rels {
			parts := append([]string{p.Dir}, rel...)
			path := filepath.Join(parts...)
			if info, err := os.Stat(path); err == nil && info.IsDir() {
				out = append(out, AreaPath{Area: area.Name, Path: path})
				break
			}
		}
	}
	return out
}
