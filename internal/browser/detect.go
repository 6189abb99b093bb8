package browser

import (
	"golang.org/x/sys/windows/registry"
)

// appPathsSource describes one registry hive to consult for App Paths.
type appPathsSource struct {
	root registry.Key
	path string
}

// appPathsSources are checked in order; machine-wide installs win over
// per-user ones.
var appPathsSources = []appPathsSource{
	{registry.LOCAL_MACHINE, `SOFTWARE\Microsoft\Windows\CurrentVersion\App Paths\`},
	{registry.CURRENT_USER, `SOFTWARE\Microsoft\Windows\CurrentVersion\App Paths\`},
}

// appPathsLookup resolves an executable's install path via the App Paths
// registry convention. Returns the path and whether an entry was found.
func appPathsLookup(exeName string) (string, bool) {
	for _, src := range appPathsSources {
		key, err := registry.OpenKey(src.root, src.path+exeName, registry.QUERY_VALUE)
		if err != nil {
			continue
		}
		// The default value holds the executable path.
		path := readStringValue(key, "")
		key.Close()
		if path != "" {
			return path, true
		}
	}
	return "", false
}

// readStringValue safely reads a string value from a registry key.
// Returns an empty string on any error.
func readStringValue(key registry.Key, name string) string {
	val, _, err := key.GetStringValue(name)
	if err != nil {
		return ""
	}
	return val
}
