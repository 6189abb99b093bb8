package cmd

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/lakshaymaurya-felt/sitemole/internal/audit"
	"github.com/lakshaymaurya-felt/sitemole/internal/browser"
	"github.com/lakshaymaurya-felt/sitemole/internal/config"
	"github.com/lakshaymaurya-felt/sitemole/internal/picker"
)

var (
	// Global flags
	debug       bool
	browserFlag string
	profileFlag string

	// Version info populated from main
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// SetVersionInfo sets build-time version information.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

var rootCmd = &cobra.Command{
	Use:   "sm",
	Short: "Delete a site's cookies and storage from Chromium browsers",
	Long: `SiteMole - Per-site data removal for Chromium browsers on Windows.

Lists every site a browser profile keeps cookies or stored data for,
backs the profile up, force-closes the browser, and deletes exactly
the sites you pick. Everything else is left alone.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Without a subcommand the picker runs on a terminal; piped
		// output gets the help text instead.
		if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
			return runPicker()
		}
		return cmd.Help()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Show detailed operation logs")
	rootCmd.PersistentFlags().StringVar(&browserFlag, "browser", "", "Browser to operate on (chrome, edge, brave, chromium)")
	rootCmd.PersistentFlags().StringVar(&profileFlag, "profile", "", "Profile name (defaults to the first profile found)")

	// Register all subcommands
	rootCmd.AddCommand(sitesCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(killCmd)
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(restoreCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(logsCmd)
	rootCmd.AddCommand(completionCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveProfile turns the global --browser/--profile flags into a profile,
// falling back to the configured default and then to the first browser that
// is actually installed.
func resolveProfile(settings config.Settings) (browser.Profile, error) {
	id := browserFlag
	if id == "" {
		id = settings.DefaultBrowser
	}

	var b browser.Browser
	if id != "" {
		var err error
		b, err = browser.Lookup(id)
		if err != nil {
			return browser.Profile{}, err
		}
	} else {
		detected := browser.Detect()
		if len(detected) == 0 {
			return browser.Profile{}, fmt.Errorf("no supported browser found; pass --browser")
		}
		b = detected[0]
	}

	return b.FindProfile(profileFlag)
}

// runPicker launches the full-screen interactive site picker.
func runPicker() error {
	settings, err := config.Load()
	if err != nil {
		return err
	}

	profile, err := resolveProfile(settings)
	if err != nil {
		return err
	}

	log := audit.Open(settings.ResolvedLogDir(), appVersion, profile.Key())
	defer log.Close()

	model := picker.NewPickerModel(profile, settings, log, config.LockDir())
	_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
	return err
}
