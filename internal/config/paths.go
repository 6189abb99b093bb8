package config

import (
	"os"
	"path/filepath"
)

// userProfile returns the user profile directory.
func userProfile() string {
	return os.Getenv("USERPROFILE")
}

// localAppData returns the local app data directory.
func localAppData() string {
	return os.Getenv("LOCALAPPDATA")
}

// appData returns the roaming app data directory.
func appData() string {
	return os.Getenv("APPDATA")
}

// documentsDir returns the user's Documents folder.
func documentsDir() string {
	return filepath.Join(userProfile(), "Documents")
}

// winDir returns the Windows directory (e.g., C:\Windows).
// Falls back to C:\Windows only if %WINDIR% is not set.
func winDir() string {
	if w := os.Getenv("WINDIR"); w != "" {
		return w
	}
	return `C:\Windows`
}

// systemDrive returns the system drive letter with backslash (e.g., C:\).
// Falls back to C:\ only if %SYSTEMDRIVE% is not set.
func systemDrive() string {
	if d := os.Getenv("SYSTEMDRIVE"); d != "" {
		return d + `\`
	}
	return `C:\`
}

// ─── SiteMole directories ────────────────────────────────────────────────────

// Dir returns the SiteMole configuration directory (%APPDATA%\SiteMole).
func Dir() string {
	return filepath.Join(appData(), "SiteMole")
}

// File returns the path of the settings file.
func File() string {
	return filepath.Join(Dir(), "config.json")
}

// DefaultLogDir returns where session logs are written unless overridden:
// Documents\SiteMole\Logs.
func DefaultLogDir() string {
	return filepath.Join(documentsDir(), "SiteMole", "Logs")
}

// DefaultBackupDir returns where profile backups land unless overridden:
// Documents\SiteMole\Backups.
func DefaultBackupDir() string {
	return filepath.Join(documentsDir(), "SiteMole", "Backups")
}

// LockDir returns the directory holding per-profile lock files.
// Lives under %LOCALAPPDATA% since locks are machine-local state.
func LockDir() string {
	return filepath.Join(localAppData(), "SiteMole", "locks")
}

// ─── Safety rails ────────────────────────────────────────────────────────────

// GetNeverDeletePaths returns paths that must NEVER be deleted under any
// circumstances. Beyond the system roots, the browser user-data roots are
// listed: SiteMole removes entries inside a profile's storage areas, never
// a profile or user-data directory wholesale.
func GetNeverDeletePaths() []string {
	w := winDir()
	sd := systemDrive()
	local := localAppData()

	return []string{
		w,
		filepath.Join(w, "System32"),
		filepath.Join(sd, "Users"),
		userProfile(),
		local,
		appData(),
		filepath.Join(local, "Google", "Chrome", "User Data"),
		filepath.Join(local, "Microsoft", "Edge", "User Data"),
		filepath.Join(local, "BraveSoftware", "Brave-Browser", "User Data"),
		filepath.Join(local, "Chromium", "User Data"),
	}
}
