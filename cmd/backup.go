package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lakshaymaurya-felt/sitemole/internal/backup"
	"github.com/lakshaymaurya-felt/sitemole/internal/config"
	"github.com/lakshaymaurya-felt/sitemole/internal/core"
	"github.com/lakshaymaurya-felt/sitemole/internal/ui"
)

var (
	backupOut  string
	backupList bool
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Back up a profile's cookie database and site storage",
	Long: `Copies the profile's cookie database and every site-storage area into
a timestamped backup directory with a manifest, so a cleaning run can
be undone with 'sm restore'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := config.Load()
		if err != nil {
			return err
		}

		destRoot := backupOut
		if destRoot == "" {
			destRoot = settings.ResolvedBackupDir()
		}

		if backupList {
			return printBackups(destRoot)
		}

		profile, err := resolveProfile(settings)
		if err != nil {
			return err
		}

		var (
			dir      string
			manifest *backup.Manifest
		)
		err = core.WithLock(config.LockDir(), profile.Key(), func() error {
			var err error
			dir, manifest, err = backup.Create(profile, destRoot)
			return err
		})
		if errors.Is(err, backup.ErrNothingToBackup) {
			fmt.Printf("Nothing to back up in %s / %s\n", profile.Browser.Name, profile.Name)
			return nil
		}
		if err != nil {
			return err
		}

		fmt.Printf("%s backup: %s\n", ui.IconCheck, dir)
		fmt.Printf("  %d files, %s\n", manifest.FileCount, core.FormatSize(manifest.TotalBytes))
		return nil
	},
}

func init() {
	backupCmd.Flags().StringVar(&backupOut, "out", "", "Backup root directory (default Documents\\SiteMole\\Backups)")
	backupCmd.Flags().BoolVar(&backupList, "list", false, "List existing backups instead of creating one")
}

func printBackups(destRoot string) error {
	backups, err := backup.List(destRoot)
	if err != nil {
		return err
	}
	if len(backups) == 0 {
		fmt.Printf("No backups under %s\n", destRoot)
		return nil
	}

	for _, b := range backups {
		m := b.Manifest
		fmt.Printf("%s%s\n", ui.IconFolder, b.Dir)
		fmt.Printf("  %s  %s / %s  %d files  %s\n",
			m.CreatedAt.Format("2006-01-02 15:04:05"),
			m.Browser, m.Profile, m.FileCount, core.FormatSize(m.TotalBytes))
	}
	return nil
}
