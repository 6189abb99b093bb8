package clean

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/lakshaymaurya-felt/sitemole/internal/audit"
	"github.com/lakshaymaurya-felt/sitemole/internal/backup"
	"github.com/lakshaymaurya-felt/sitemole/internal/browser"
	"github.com/lakshaymaurya-felt/sitemole/internal/config"
	"github.com/lakshaymaurya-felt/sitemole/internal/core"
	"github.com/lakshaymaurya-felt/sitemole/internal/proc"
)

var (
	// ErrNoSites means the run was started with nothing selected.
	ErrNoSites = errors.New("no sites selected")

	// ErrBrowserRunning means the browser is open and the caller did not
	// ask for a force-close.
	ErrBrowserRunning = errors.New("browser is running; close it or pass --kill")
)

// Options configures one cleaning run.
type Options struct {
	Profile browser.Profile
	Sites   []string

	// DryRun reports what would be deleted without touching anything.
	DryRun bool

	// Backup creates a profile backup before the first deletion.
	Backup    bool
	BackupDir string

	// Kill force-closes the browser instead of refusing while it runs.
	Kill     bool
	KillWait time.Duration

	// LockDir holds the per-profile lock; empty skips locking.
	LockDir string

	// Log receives the session audit entries. Must be set.
	Log *audit.Logger

	// OnEvent, when set, receives progress events as the run advances.
	OnEvent func(Event)
}

// ─── Events ──────────────────────────────────────────────────────────────────

// Event is a progress notification during a run.
type Event interface{ isEvent() }

// KillEvent reports the browser force-close step.
type KillEvent struct {
	Killed int
	Err    error
}

// BackupEvent reports the pre-deletion backup step.
type BackupEvent struct {
	Dir   string
	Files int
	Err   error
}

// SiteEvent reports one processed site.
type SiteEvent struct {
	Index  int // 1-based
	Total  int
	Result SiteResult
}

func (KillEvent) isEvent()   {}
func (BackupEvent) isEvent() {}
func (SiteEvent) isEvent()   {}

func (o Options) emit(ev Event) {
	if o.OnEvent != nil {
		o.OnEvent(ev)
	}
}

// ─── Results ─────────────────────────────────────────────────────────────────

// SiteResult is the outcome for one site.
type SiteResult struct {
	Site         string
	Cookies      int64
	StorageItems int
	Areas        string
	Freed        int64
	Err          error
}

// Summary aggregates a whole run.
type Summary struct {
	Results      []SiteResult
	BackupDir    string
	BackupFiles  int
	Killed       int
	Cookies      int64
	StorageItems int
	Freed        int64
	Succeeded    int
	Failed       int
}

func (s *Summary) add(res SiteResult) {
	s.Results = append(s.Results, res)
	s.Cookies += res.Cookies
	s.StorageItems += res.StorageItems
	s.Freed += res.Freed
	if res.Err != nil {
		s.Failed++
	} else {
		s.Succeeded++
	}
}

// ─── Run ─────────────────────────────────────────────────────────────────────

// Run executes a cleaning run under the profile lock. The browser must be
// closed (or Kill set) before anything is deleted; a backup is taken first
// when requested. Per-site failures are collected in the summary rather
// than aborting the run.
func Run(ctx context.Context, opts Options) (*Summary, error) {
	if len(opts.Sites) == 0 {
		return nil, ErrNoSites
	}

	summary := &Summary{}
	work := func() error {
		return run(ctx, opts, summary)
	}

	var err error
	if opts.LockDir != "" {
		err = core.WithLock(opts.LockDir, opts.Profile.Key(), work)
	} else {
		err = work()
	}

	opts.Log.Infow("summary",
		"sites", len(summary.Results),
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"cookies", summary.Cookies,
		"storage_items", summary.StorageItems,
		"freed", core.FormatSize(summary.Freed),
		"dry_run", opts.DryRun,
	)
	return summary, err
}

func run(ctx context.Context, opts Options, summary *Summary) error {
	b := opts.Profile.Browser

	// Deletion always targets entries inside a profile, never a profile
	// or user-data root itself. A misconfigured profile dir stops here.
	profileDir := filepath.Clean(opts.Profile.Dir)
	for _, never := range config.GetNeverDeletePaths() {
		if strings.EqualFold(profileDir, filepath.Clean(never)) {
			return fmt.Errorf("%w: %s", core.ErrProtectedPath, opts.Profile.Dir)
		}
	}

	if !opts.DryRun && proc.Running(ctx, b) {
		if !opts.Kill {
			return fmt.Errorf("%s: %w", b.Name, ErrBrowserRunning)
		}

		wait := opts.KillWait
		if wait <= 0 {
			wait = 10 * time.Second
		}
		killed, killErr := proc.EnsureClosed(ctx, b, wait)
		summary.Killed = killed
		opts.emit(KillEvent{Killed: killed, Err: killErr})
		opts.Log.Infow("kill", "browser", b.ID, "processes", killed, "err", errString(killErr))
		if killErr != nil {
			return fmt.Errorf("force-close %s: %w", b.Name, killErr)
		}
	}

	if opts.Backup && !opts.DryRun {
		dir, m, backupErr := backup.Create(opts.Profile, opts.BackupDir)
		if backupErr != nil && !errors.Is(backupErr, backup.ErrNothingToBackup) {
			opts.emit(BackupEvent{Dir: dir, Err: backupErr})
			return fmt.Errorf("backup before deletion: %w", backupErr)
		}
		if m != nil {
			summary.BackupDir = dir
			summary.BackupFiles = m.FileCount
			opts.emit(BackupEvent{Dir: dir, Files: m.FileCount})
			opts.Log.Deletion("SYSTEM", "BACKUP", "CREATED", dir)
		}
	}

	runner, err := NewRunner(opts.Profile, opts.Log, opts.DryRun)
	if err != nil {
		return err
	}
	defer runner.Close()

	for i, site := range opts.Sites {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		res := runner.DeleteSite(site)
		summary.add(res)
		opts.emit(SiteEvent{Index: i + 1, Total: len(opts.Sites), Result: res})
	}
	return nil
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
