package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/lakshaymaurya-felt/sitemole/internal/backup"
	"github.com/lakshaymaurya-felt/sitemole/internal/config"
	"github.com/lakshaymaurya-felt/sitemole/internal/core"
	"github.com/lakshaymaurya-felt/sitemole/internal/proc"
	"github.com/lakshaymaurya-felt/sitemole/internal/ui"
)

var (
	restoreDryRun bool
	restoreYes    bool
)

var restoreCmd = &cobra.Command{
	Use:   "restore BACKUP_DIR",
	Short: "Restore a backup into the profile",
	Long: `Copies a backup made by 'sm backup' or a cleaning run back into the
profile, overwriting whatever is there now. The browser must be closed.

'sm backup --list' shows the available backups.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		backupDir := args[0]

		settings, err := config.Load()
		if err != nil {
			return err
		}

		profile, err := resolveProfile(settings)
		if err != nil {
			return err
		}

		manifest, err := backup.ReadManifest(backupDir)
		if err != nil {
			return err
		}

		if !restoreDryRun && proc.Running(cmd.Context(), profile.Browser) {
			return fmt.Errorf("%s is running; close it or run 'sm kill' first", profile.Browser.Name)
		}

		if !restoreDryRun && !restoreYes {
			tty := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
			if !tty {
				return fmt.Errorf("refusing to overwrite profile data without --yes when not running on a terminal")
			}
			fmt.Printf("%s Overwrite %s / %s with the backup from %s? [y/N] ",
				ui.IconWarning, profile.Browser.Name, profile.Name,
				manifest.CreatedAt.Format("2006-01-02 15:04:05"))
			line, err := bufio.NewReader(os.Stdin).ReadString('\n')
			if err != nil {
				return err
			}
			answer := strings.ToLower(strings.TrimSpace(line))
			if answer != "y" && answer != "yes" {
				fmt.Println("Aborted.")
				return nil
			}
		}

		var restored int
		work := func() error {
			var err error
			restored, _, err = backup.Restore(backupDir, profile.Dir, restoreDryRun)
			return err
		}

		if restoreDryRun {
			err = work()
		} else {
			err = core.WithLock(config.LockDir(), profile.Key(), work)
		}
		if err != nil {
			return err
		}

		verb := "restored"
		if restoreDryRun {
			verb = "would restore"
		}
		fmt.Printf("%s %s %d file(s) into %s\n", ui.IconCheck, verb, restored, profile.Dir)
		return nil
	},
}

func init() {
	restoreCmd.Flags().BoolVar(&restoreDryRun, "dry-run", false, "Report what would be restored without writing")
	restoreCmd.Flags().BoolVarP(&restoreYes, "yes", "y", false, "Skip the confirmation prompt")
}
