package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/lakshaymaurya-felt/sitemole/internal/browser"
	"github.com/lakshaymaurya-felt/sitemole/internal/config"
	"github.com/lakshaymaurya-felt/sitemole/internal/cookies"
	"github.com/lakshaymaurya-felt/sitemole/internal/core"
	"github.com/lakshaymaurya-felt/sitemole/internal/proc"
	"github.com/lakshaymaurya-felt/sitemole/internal/storage"
	"github.com/lakshaymaurya-felt/sitemole/internal/ui"
)

var statusJSON bool

type browserStatus struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Installed bool   `json:"installed"`
	Running   bool   `json:"running"`
	Profiles  int    `json:"profiles"`
}

type profileStatus struct {
	Browser    string             `json:"browser"`
	Name       string             `json:"name"`
	Dir        string             `json:"dir"`
	Sites      int                `json:"sites"`
	Areas      []storage.AreaSize `json:"areas"`
	TotalBytes int64              `json:"total_bytes"`
}

type statusReport struct {
	Version    string          `json:"version"`
	Windows    string          `json:"windows"`
	Elevated   bool            `json:"elevated"`
	ConfigFile string          `json:"config_file"`
	LogDir     string          `json:"log_dir"`
	BackupDir  string          `json:"backup_dir"`
	Browsers   []browserStatus `json:"browsers"`
	Profile    *profileStatus  `json:"profile,omitempty"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show detected browsers and profile storage",
	Long: `Shows which supported browsers are installed and running, the selected
profile's storage footprint per area, and where logs and backups go.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		report := collectStatus()

		if statusJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}

		fmt.Println(renderStatus(report))
		return nil
	},
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Print machine-readable JSON")
}

func collectStatus() statusReport {
	settings, _ := config.Load()

	report := statusReport{
		Version:    appVersion,
		Windows:    core.WindowsVersionString(),
		Elevated:   core.IsElevated(),
		ConfigFile: config.File(),
		LogDir:     settings.ResolvedLogDir(),
		BackupDir:  settings.ResolvedBackupDir(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	for _, b := range browser.Known() {
		bs := browserStatus{ID: b.ID, Name: b.Name, Installed: b.Installed()}
		if bs.Installed {
			bs.Running = proc.Running(ctx, b)
			if profiles, err := b.Profiles(); err == nil {
				bs.Profiles = len(profiles)
			}
		}
		report.Browsers = append(report.Browsers, bs)
	}

	profile, err := resolveProfile(settings)
	if err != nil {
		return report
	}

	ps := profileStatus{
		Browser: profile.Browser.Name,
		Name:    profile.Name,
		Dir:     profile.Dir,
		Areas:   storage.AreaSizes(profile),
	}
	for _, a := range ps.Areas {
		ps.TotalBytes += a.Size
	}

	if db, err := profile.CookieDB(); err == nil {
		if store, err := cookies.OpenSnapshot(db); err == nil {
			if n, err := store.Count(); err == nil {
				ps.Sites = int(n)
			}
			store.Close()
		}
	}

	report.Profile = &ps
	return report
}

func renderStatus(r statusReport) string {
	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ui.ColorSecondary).
		Padding(0, 1)

	title := lipgloss.NewStyle().Foreground(ui.ColorPrimary).Bold(true)
	ok := lipgloss.NewStyle().Foreground(ui.ColorSuccess)
	dim := lipgloss.NewStyle().Foreground(ui.ColorTextDim)

	var s strings.Builder
	s.WriteString(title.Render(ui.IconDiamond+" SiteMole "+r.Version) + "\n\n")

	envLines := []string{
		fmt.Sprintf("  OS         %s", r.Windows),
		fmt.Sprintf("  Elevated   %v", r.Elevated),
		fmt.Sprintf("  Config     %s", r.ConfigFile),
		fmt.Sprintf("  Logs       %s", r.LogDir),
		fmt.Sprintf("  Backups    %s", r.BackupDir),
	}
	s.WriteString(card.Render(strings.Join(envLines, "\n")) + "\n\n")

	var browserLines []string
	for _, b := range r.Browsers {
		state := dim.Render("not installed")
		if b.Installed {
			state = ok.Render("installed")
			if b.Running {
				state = ui.TagWarningStyle().Render(" running ")
			}
			state += dim.Render(fmt.Sprintf("  %d profile(s)", b.Profiles))
		}
		browserLines = append(browserLines, fmt.Sprintf("  %-10s %s", b.Name, state))
	}
	s.WriteString(card.Render(strings.Join(browserLines, "\n")) + "\n")

	if p := r.Profile; p != nil {
		profileLines := []string{
			fmt.Sprintf("  Profile    %s %s %s", p.Browser, ui.IconChevron, p.Name),
			fmt.Sprintf("  Sites      %d", p.Sites),
		}
		for _, a := range p.Areas {
			pct := 0.0
			if p.TotalBytes > 0 {
				pct = float64(a.Size) / float64(p.TotalBytes) * 100
			}
			profileLines = append(profileLines,
				fmt.Sprintf("  %-14s %s %8s", a.Area, ui.GradientBar(pct, 16), core.FormatSize(a.Size)))
		}
		profileLines = append(profileLines,
			fmt.Sprintf("  %-14s %s", "Total", core.FormatSize(p.TotalBytes)))
		s.WriteString("\n" + card.Render(strings.Join(profileLines, "\n")) + "\n")
	}

	return s.String()
}
