package picker

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lakshaymaurya-felt/sitemole/internal/clean"
	"github.com/lakshaymaurya-felt/sitemole/internal/core"
	"github.com/lakshaymaurya-felt/sitemole/internal/ui"
)

var (
	clrPrimary = ui.ColorPrimary
	clrCoral   = ui.ColorCoral
	clrSuccess = ui.ColorSuccess
	clrWarning = ui.ColorWarning
	clrError   = ui.ColorError
	clrText    = ui.ColorText
	clrDim     = ui.ColorTextDim
	clrMuted   = ui.ColorMuted

	headerStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(clrPrimary).
			Padding(0, 2)

	dangerPanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(clrError).
				Padding(1, 3)

	summaryPanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(clrSuccess).
				Padding(1, 3)

	titleStyle    = lipgloss.NewStyle().Foreground(clrPrimary).Bold(true)
	dimStyle      = lipgloss.NewStyle().Foreground(clrDim)
	mutedStyle    = lipgloss.NewStyle().Foreground(clrMuted)
	selectedStyle = lipgloss.NewStyle().Foreground(clrCoral).Bold(true)
	cursorStyle   = lipgloss.NewStyle().Foreground(clrPrimary).Bold(true)
	okStyle       = lipgloss.NewStyle().Foreground(clrSuccess)
	warnStyle     = lipgloss.NewStyle().Foreground(clrWarning).Bold(true)
	errStyle      = lipgloss.NewStyle().Foreground(clrError).Bold(true)
)

func (m PickerModel) renderView() string {
	switch m.stage {
	case StageDisclaimer:
		return m.renderDisclaimer()
	case StageBrowse:
		return m.renderBrowse()
	case StageConfirm:
		return m.renderConfirm()
	case StageRun:
		return m.renderRun()
	case StageDone:
		return m.renderDone()
	}
	return ""
}

// ─── Disclaimer ──────────────────────────────────────────────────────────────

func (m PickerModel) renderDisclaimer() string {
	var b strings.Builder

	b.WriteString(warnStyle.Render(ui.IconWarning+" Read before you continue") + "\n\n")
	b.WriteString("This tool permanently deletes cookies and stored site data\n")
	b.WriteString("from the selected browser profile. Deleted data cannot be\n")
	b.WriteString("recovered unless a backup was made first.\n\n")
	b.WriteString("The browser is force-closed before anything is deleted so\n")
	b.WriteString("its files are not locked. Unsaved work in open tabs is lost.\n\n")
	b.WriteString(dimStyle.Render("Backups are on by default and kept under\n"))
	b.WriteString(dimStyle.Render(m.settings.ResolvedBackupDir()))

	panel := dangerPanelStyle.Render(b.String())

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(titleStyle.Render(ui.IconDiamond+" SiteMole") + "\n\n")
	out.WriteString(panel)
	out.WriteString("\n\n")
	out.WriteString(ui.HintBarStyle().Render("a accept " + ui.IconPipe + " q quit"))
	out.WriteString("\n")
	return out.String()
}

// ─── Browse ──────────────────────────────────────────────────────────────────

func (m PickerModel) renderBrowse() string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")

	if m.loading {
		b.WriteString("  " + m.spinner.View() + " reading cookie database...\n")
		return b.String()
	}

	if m.err != nil {
		b.WriteString("  " + errStyle.Render(ui.IconError+" "+m.err.Error()) + "\n")
		b.WriteString("  " + dimStyle.Render("r retry "+ui.IconPipe+" q quit") + "\n")
		return b.String()
	}

	if m.searching || m.search.Value() != "" {
		b.WriteString("  " + m.search.View() + "\n\n")
	}

	if len(m.filtered) == 0 {
		if m.search.Value() != "" {
			b.WriteString("  " + dimStyle.Render("no sites match the filter") + "\n")
		} else {
			b.WriteString("  " + dimStyle.Render("no sites found in this profile") + "\n")
		}
	} else {
		b.WriteString(m.renderSiteList())
	}

	b.WriteString("\n")
	hints := "space select " + ui.IconPipe + " a all " + ui.IconPipe + " n none " +
		ui.IconPipe + " / filter " + ui.IconPipe + " enter clean " + ui.IconPipe +
		" c close browser " + ui.IconPipe + " r refresh " + ui.IconPipe + " q quit"
	b.WriteString(ui.HintBarStyle().Render(hints))
	b.WriteString("\n")
	return b.String()
}

func (m PickerModel) renderHeader() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(ui.IconDiamond + " SiteMole"))
	b.WriteString(dimStyle.Render("  " + m.profile.Browser.Name + " " + ui.IconChevron + " " + m.profile.Name))

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("%d sites", len(m.sites))))
	if n := len(m.selected); n > 0 {
		b.WriteString(selectedStyle.Render(fmt.Sprintf("  %d selected", n)))
	}

	if m.killing {
		b.WriteString(warnStyle.Render("  closing browser..."))
	} else if m.browserRunning {
		b.WriteString(warnStyle.Render("  " + ui.IconWarning + " " + m.profile.Browser.Name + " is running"))
	}

	return headerStyle.Render(b.String())
}

func (m PickerModel) renderSiteList() string {
	var b strings.Builder

	vh := m.viewportHeight()
	end := m.offset + vh
	if end > len(m.filtered) {
		end = len(m.filtered)
	}

	if m.offset > 0 {
		b.WriteString("  " + mutedStyle.Render(fmt.Sprintf("... %d above", m.offset)) + "\n")
	}

	for i := m.offset; i < end; i++ {
		site := m.filtered[i]

		cursor := "  "
		if i == m.cursor {
			cursor = cursorStyle.Render(ui.IconChevron + " ")
		}

		mark := dimStyle.Render("[ ]")
		host := site.Host
		line := dimStyle.Render(host)
		if m.selected[site.Host] {
			mark = selectedStyle.Render("[x]")
			line = selectedStyle.Render(host)
		} else if i == m.cursor {
			line = lipgloss.NewStyle().Foreground(clrText).Render(host)
		}

		detail := fmt.Sprintf("%d cookies", site.Cookies)
		if n := m.storageCounts[site.Host]; n > 0 {
			detail += fmt.Sprintf(" +%d storage", n)
		}
		b.WriteString(fmt.Sprintf("  %s%s %s  %s\n", cursor, mark, line, mutedStyle.Render(detail)))
	}

	if end < len(m.filtered) {
		b.WriteString("  " + mutedStyle.Render(fmt.Sprintf("... %d below", len(m.filtered)-end)) + "\n")
	}

	return b.String()
}

// ─── Confirm ─────────────────────────────────────────────────────────────────

func (m PickerModel) renderConfirm() string {
	sites := m.orderedSelection()

	var p strings.Builder
	p.WriteString(errStyle.Render(ui.IconWarning+" Permanently delete data for these sites?") + "\n\n")

	const maxListed = 10
	for i, host := range sites {
		if i == maxListed {
			p.WriteString(dimStyle.Render(fmt.Sprintf("  ... and %d more", len(sites)-maxListed)) + "\n")
			break
		}
		p.WriteString("  " + ui.IconBullet + " " + host + "\n")
	}
	p.WriteString("\n")

	backup := okStyle.Render(ui.IconCheck + " backup first")
	if !m.withBackup {
		backup = errStyle.Render(ui.IconError+" no backup") + " " + ui.TagDangerStyle().Render(" no undo ")
	}
	p.WriteString(backup + dimStyle.Render("  (b toggles)") + "\n")

	if m.browserRunning {
		p.WriteString(warnStyle.Render(ui.IconWarning+" "+m.profile.Browser.Name+" will be force-closed") + "\n")
	}

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(titleStyle.Render(ui.IconDiamond+" SiteMole") + "\n\n")
	out.WriteString(dangerPanelStyle.Render(p.String()))
	out.WriteString("\n\n")

	if m.countdown > 0 {
		out.WriteString(ui.HintBarStyle().Render(fmt.Sprintf("enter enabled in %d... %s esc back", m.countdown, ui.IconPipe)))
	} else {
		out.WriteString(ui.HintBarStyle().Render("enter delete " + ui.IconPipe + " b backup " + ui.IconPipe + " esc back"))
	}
	out.WriteString("\n")
	return out.String()
}

// ─── Run ─────────────────────────────────────────────────────────────────────

func (m PickerModel) renderRun() string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(titleStyle.Render(ui.IconDiamond+" Cleaning") + "\n\n")

	pct := 0.0
	if m.total > 0 {
		pct = float64(len(m.results)) / float64(m.total)
	}
	b.WriteString("  " + m.progress.ViewAs(pct) + "\n\n")

	if m.backupDir != "" {
		b.WriteString("  " + okStyle.Render(ui.IconCheck+" backup "+m.backupDir) + "\n")
	}

	// Recent results, newest last.
	const maxShown = 12
	start := 0
	if len(m.results) > maxShown {
		start = len(m.results) - maxShown
	}
	for _, res := range m.results[start:] {
		b.WriteString("  " + renderResult(res) + "\n")
	}

	if m.current != "" {
		b.WriteString("  " + m.spinner.View() + dimStyle.Render(" "+m.current) + "\n")
	}

	b.WriteString("\n")
	if m.quitting {
		b.WriteString(ui.HintBarStyle().Render("stopping after the current site..."))
	} else {
		b.WriteString(ui.HintBarStyle().Render("q stop after current site"))
	}
	b.WriteString("\n")
	return b.String()
}

func renderResult(res clean.SiteResult) string {
	if res.Err != nil {
		return errStyle.Render(ui.IconError+" "+res.Site) + dimStyle.Render("  "+res.Err.Error())
	}
	detail := fmt.Sprintf("%d cookies, %d items, %s", res.Cookies, res.StorageItems, core.FormatSize(res.Freed))
	return okStyle.Render(ui.IconCheck+" "+res.Site) + mutedStyle.Render("  "+detail)
}

// ─── Done ────────────────────────────────────────────────────────────────────

func (m PickerModel) renderDone() string {
	var b strings.Builder
	b.WriteString("\n")

	if m.runErr != nil {
		b.WriteString(errStyle.Render(ui.IconError+" Run failed") + "\n\n")
		b.WriteString("  " + m.runErr.Error() + "\n\n")
		b.WriteString(ui.HintBarStyle().Render("q quit"))
		b.WriteString("\n")
		return b.String()
	}

	s := m.summary

	var p strings.Builder
	p.WriteString(titleStyle.Render("Deletion summary") + "\n\n")
	p.WriteString(fmt.Sprintf("Sites processed   %d\n", len(s.Results)))
	p.WriteString(okStyle.Render(fmt.Sprintf("Succeeded         %d", s.Succeeded)) + "\n")
	if s.Failed > 0 {
		p.WriteString(errStyle.Render(fmt.Sprintf("Failed            %d", s.Failed)) + "\n")
	}
	p.WriteString(fmt.Sprintf("Cookies deleted   %d\n", s.Cookies))
	p.WriteString(fmt.Sprintf("Storage items     %d\n", s.StorageItems))
	p.WriteString(fmt.Sprintf("Space freed       %s\n", core.FormatSize(s.Freed)))
	if s.BackupDir != "" {
		p.WriteString("\n" + dimStyle.Render("backup  "+s.BackupDir))
	}
	if m.log != nil && m.log.File() != "" {
		p.WriteString("\n" + dimStyle.Render("log     "+m.log.File()))
	}

	b.WriteString(summaryPanelStyle.Render(p.String()))
	b.WriteString("\n\n")

	for _, res := range s.Results {
		if res.Err != nil {
			b.WriteString("  " + errStyle.Render(ui.IconError+" "+res.Site) + dimStyle.Render("  "+res.Err.Error()) + "\n")
		}
	}

	b.WriteString(ui.HintBarStyle().Render("q quit"))
	b.WriteString("\n")
	return b.String()
}
