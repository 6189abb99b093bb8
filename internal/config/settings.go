package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Settings is the persisted SiteMole configuration.
type Settings struct {
	// AcknowledgedRisk records that the user accepted the first-run
	// disclaimer; the picker skips it afterwards.
	AcknowledgedRisk bool `json:"acknowledged_risk"`

	// DefaultBrowser is the browser id used when --browser is not given.
	DefaultBrowser string `json:"default_browser,omitempty"`

	// CountdownSeconds is how long the final confirmation stays disabled.
	CountdownSeconds int `json:"countdown_seconds"`

	// LogDir overrides where session logs are written.
	LogDir string `json:"log_dir,omitempty"`

	// BackupDir overrides where backups are created.
	BackupDir string `json:"backup_dir,omitempty"`
}

// DefaultSettings returns the settings used when no config file exists.
func DefaultSettings() Settings {
	return Settings{
		DefaultBrowser:   "chrome",
		CountdownSeconds: 5,
	}
}

// Load reads the settings file, returning defaults when it does not exist.
// A corrupt file is an error; silently resetting it would also silently
// re-enable the disclaimer and drop user overrides.
func Load() (Settings, error) {
	s := DefaultSettings()

	data, err := os.ReadFile(File())
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return s, fmt.Errorf("read config: %w", err)
	}

	if err := json.Unmarshal(data, &s); err != nil {
		return DefaultSettings(), fmt.Errorf("parse %s: %w", File(), err)
	}
	if s.CountdownSeconds <= 0 {
		s.CountdownSeconds = DefaultSettings().CountdownSeconds
	}
	return s, nil
}

// Save writes the settings file, creating the config directory if needed.
func (s Settings) Save() error {
	if err := os.MkdirAll(Dir(), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(File(), append(data, '\n'), 0o644)
}

// ResolvedLogDir returns the effective log directory.
func (s Settings) ResolvedLogDir() string {
	if s.LogDir != "" {
		return s.LogDir
	}
	return DefaultLogDir()
}

// ResolvedBackupDir returns the effective backup directory.
func (s Settings) ResolvedBackupDir() string {
	if s.BackupDir != "" {
		return s.BackupDir
	}
	return DefaultBackupDir()
}
