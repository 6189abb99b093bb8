package cmd

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/lakshaymaurya-felt/sitemole/internal/audit"
	"github.com/lakshaymaurya-felt/sitemole/internal/browser"
	"github.com/lakshaymaurya-felt/sitemole/internal/clean"
	"github.com/lakshaymaurya-felt/sitemole/internal/config"
	"github.com/lakshaymaurya-felt/sitemole/internal/cookies"
	"github.com/lakshaymaurya-felt/sitemole/internal/core"
	"github.com/lakshaymaurya-felt/sitemole/internal/ui"
)

var (
	cleanDryRun   bool
	cleanYes      bool
	cleanNoBackup bool
	cleanKill     bool
	cleanMatch    string
)

var cleanCmd = &cobra.Command{
	Use:   "clean [SITE...]",
	Short: "Delete cookies and stored data for the given sites",
	Long: `Deletes cookies and per-site storage (Local Storage, Session Storage,
IndexedDB, Service Worker caches) for each named site, including its
subdomains. The profile is backed up first unless --no-backup is set,
and the browser must be closed or force-closed with --kill.

Sites are named by host (example.com). --match selects sites from the
cookie database by glob instead of, or in addition to, naming them.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := config.Load()
		if err != nil {
			return err
		}

		profile, err := resolveProfile(settings)
		if err != nil {
			return err
		}

		sites, err := resolveSites(profile, args, cleanMatch)
		if err != nil {
			return err
		}
		if len(sites) == 0 {
			return fmt.Errorf("no sites given; name sites, pass --match, or run 'sm' for the picker")
		}

		tty := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
		if !cleanDryRun && !cleanYes {
			if !tty {
				return fmt.Errorf("refusing to delete without --yes when not running on a terminal")
			}
			if !confirmCountdown(profile.Browser.Name, sites, settings.CountdownSeconds) {
				fmt.Println("Aborted.")
				return nil
			}
		}

		log := audit.Open(settings.ResolvedLogDir(), appVersion, profile.Key())
		defer log.Close()

		opts := clean.Options{
			Profile:   profile,
			Sites:     sites,
			DryRun:    cleanDryRun,
			Backup:    !cleanNoBackup,
			BackupDir: settings.ResolvedBackupDir(),
			Kill:      cleanKill,
			LockDir:   config.LockDir(),
			Log:       log,
			OnEvent:   printEvent,
		}

		summary, err := clean.Run(cmd.Context(), opts)
		if err != nil {
			return err
		}

		printSummary(summary, cleanDryRun, log.File())
		if summary.Failed > 0 {
			return fmt.Errorf("%d of %d sites had errors", summary.Failed, len(summary.Results))
		}
		return nil
	},
}

func init() {
	cleanCmd.Flags().BoolVar(&cleanDryRun, "dry-run", false, "Report what would be deleted without deleting")
	cleanCmd.Flags().BoolVarP(&cleanYes, "yes", "y", false, "Skip the confirmation countdown")
	cleanCmd.Flags().BoolVar(&cleanNoBackup, "no-backup", false, "Skip the profile backup")
	cleanCmd.Flags().BoolVar(&cleanKill, "kill", false, "Force-close the browser if it is running")
	cleanCmd.Flags().StringVar(&cleanMatch, "match", "", "Also clean sites matching this glob (e.g. *.tracker.com)")
}

// resolveSites merges literal site arguments with glob matches from the
// cookie database, deduplicated and sorted.
func resolveSites(profile browser.Profile, args []string, match string) ([]string, error) {
	set := make(map[string]bool)
	for _, arg := range args {
		host := cookies.NormalizeHost(arg)
		if host != "" {
			set[host] = true
		}
	}

	if match != "" {
		db, err := profile.CookieDB()
		if err != nil {
			return nil, err
		}
		store, err := cookies.OpenSnapshot(db)
		if err != nil {
			return nil, err
		}
		defer store.Close()

		sites, err := store.Sites()
		if err != nil {
			return nil, err
		}
		sites, err = cookies.FilterSites(sites, match)
		if err != nil {
			return nil, err
		}
		for _, s := range sites {
			set[s.Host] = true
		}
	}

	out := make([]string, 0, len(set))
	for host := range set {
		out = append(out, host)
	}
	sort.Strings(out)
	return out, nil
}

// confirmCountdown is the terminal rendition of the disabled confirm
// button: the prompt only appears after the countdown has run out.
func confirmCountdown(browserName string, sites []string, seconds int) bool {
	fmt.Printf("%s Permanently delete data for %d site(s) from %s:\n\n", ui.IconWarning, len(sites), browserName)
	for _, s := range sites {
		fmt.Printf("  %s %s\n", ui.IconBullet, s)
	}
	fmt.Println()

	for i := seconds; i > 0; i-- {
		fmt.Printf("\rConfirmation in %d... ", i)
		time.Sleep(time.Second)
	}
	fmt.Printf("\r                       \r")

	fmt.Print("Proceed? [y/N] ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func printEvent(ev clean.Event) {
	switch ev := ev.(type) {
	case clean.KillEvent:
		if ev.Err != nil {
			fmt.Printf("%s force-close failed: %v\n", ui.IconError, ev.Err)
			return
		}
		fmt.Printf("%s closed %d browser process(es)\n", ui.IconCheck, ev.Killed)

	case clean.BackupEvent:
		if ev.Err != nil {
			fmt.Printf("%s backup failed: %v\n", ui.IconWarning, ev.Err)
			return
		}
		fmt.Printf("%s backup: %s (%d files)\n", ui.IconCheck, ev.Dir, ev.Files)

	case clean.SiteEvent:
		res := ev.Result
		if res.Err != nil {
			fmt.Printf("[%d/%d] %s %s: %v\n", ev.Index, ev.Total, ui.IconError, res.Site, res.Err)
			return
		}
		fmt.Printf("[%d/%d] %s %s: %d cookies, %d storage items, %s\n",
			ev.Index, ev.Total, ui.IconCheck, res.Site,
			res.Cookies, res.StorageItems, core.FormatSize(res.Freed))
	}
}

func printSummary(s *clean.Summary, dryRun bool, logFile string) {
	verb := "deleted"
	if dryRun {
		verb = "would delete"
	}

	fmt.Println()
	fmt.Printf("%d site(s) processed, %d ok, %d failed\n", len(s.Results), s.Succeeded, s.Failed)
	fmt.Printf("%s %d cookies, %d storage items, %s\n", verb, s.Cookies, s.StorageItems, core.FormatSize(s.Freed))
	if s.BackupDir != "" {
		fmt.Printf("backup: %s\n", s.BackupDir)
	}
	if logFile != "" {
		fmt.Printf("log:    %s\n", logFile)
	}
}
