package browser

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Browser describes one supported Chromium-family browser.
type Browser struct {
	// ID is the stable identifier used on the command line (--browser).
	ID string

	// Name is the display name.
	Name string

	// ProcessNames are the image names of the browser's processes.
	ProcessNames []string

	// userDataRel is the user-data directory relative to %LOCALAPPDATA%.
	userDataRel []string

	// exeName is the App Paths registry entry name, empty when the browser
	// does not register one (detection then falls back to the data dir).
	exeName string
}

// ErrUnknownBrowser is returned by Lookup for an unrecognized id.
var ErrUnknownBrowser = errors.New("unknown browser")

// known lists every supported browser. Firefox-family browsers store site
// data in a different layout and are deliberately absent.
var known = []Browser{
	{
		ID:           "chrome",
		Name:         "Google Chrome",
		ProcessNames: []string{"chrome.exe"},
		userDataRel:  []string{"Google", "Chrome", "User Data"},
		exeName:      "chrome.exe",
	},
	{
		ID:           "edge",
		Name:         "Microsoft Edge",
		ProcessNames: []string{"msedge.exe"},
		userDataRel:  []string{"Microsoft", "Edge", "User Data"},
		exeName:      "msedge.exe",
	},
	{
		ID:           "brave",
		Name:         "Brave",
		ProcessNames: []string{"brave.exe"},
		userDataRel:  []string{"BraveSoftware", "Brave-Browser", "User Data"},
		exeName:      "brave.exe",
	},
	{
		// Chromium ships no App Paths entry and reuses the chrome.exe
		// image name.
		ID:           "chromium",
		Name:         "Chromium",
		ProcessNames: []string{"chrome.exe"},
		userDataRel:  []string{"Chromium", "User Data"},
	},
}

// Known returns all supported browsers.
func Known() []Browser {
	out := make([]Browser, len(known))
	copy(out, known)
	return out
}

// Lookup resolves a browser id (case-insensitive).
func Lookup(id string) (Browser, error) {
	for _, b := range known {
		if strings.EqualFold(b.ID, id) {
			return b, nil
		}
	}
	return Browser{}, fmt.Errorf("%w: %q (known: %s)", ErrUnknownBrowser, id, strings.Join(knownIDs(), ", "))
}

func knownIDs() []string {
	ids := make([]string, len(known))
	for i, b := range known {
		ids[i] = b.ID
	}
	return ids
}

// Detect returns the known browsers that are actually present on this
// machine: either an App Paths registry entry resolves or the user-data
// directory exists.
func Detect() []Browser {
	var found []Browser
	for _, b := range known {
		if b.Installed() {
			found = append(found, b)
		}
	}
	return found
}

// UserDataDir returns the browser's user-data directory.
func (b Browser) UserDataDir() string {
	parts := append([]string{localAppData()}, b.userDataRel...)
	return filepath.Join(parts...)
}

// Installed reports whether the browser is present. The registry is
// consulted first; a user-data directory left behind by a past install
// also counts, since its site data is exactly what SiteMole cleans.
func (b Browser) Installed() bool {
	if b.exeName != "" {
		if _, ok := appPathsLookup(b.exeName); ok {
			return true
		}
	}
	info, err := os.Stat(b.UserDataDir())
	return err == nil && info.IsDir()
}

// ExePath returns the browser executable path from the registry, or an
// empty string when not registered.
func (b Browser) ExePath() string {
	if b.exeName == "" {
		return ""
	}
	path, _ := appPathsLookup(b.exeName)
	return path
}

// localAppData returns the local app data directory.
func localAppData() string {
	return os.Getenv("LOCALAPPDATA")
}
