package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ─── Palette ─────────────────────────────────────────────────────────────────

var (
	ColorPrimary   = lipgloss.AdaptiveColor{Light: "#7c3aed", Dark: "#a78bfa"}
	ColorSecondary = lipgloss.AdaptiveColor{Light: "#2563eb", Dark: "#60a5fa"}
	ColorCoral     = lipgloss.AdaptiveColor{Light: "#e5604c", Dark: "#ff9478"}
	ColorSuccess   = lipgloss.AdaptiveColor{Light: "#16a34a", Dark: "#4ade80"}
	ColorWarning   = lipgloss.AdaptiveColor{Light: "#ca8a04", Dark: "#facc15"}
	ColorError     = lipgloss.AdaptiveColor{Light: "#dc2626", Dark: "#f87171"}
	ColorText      = lipgloss.AdaptiveColor{Light: "#1f2937", Dark: "#e5e7eb"}
	ColorTextDim   = lipgloss.AdaptiveColor{Light: "#6b7280", Dark: "#9ca3af"}
	ColorMuted     = lipgloss.AdaptiveColor{Light: "#9ca3af", Dark: "#4b5563"}
)

// barRamp is the severity gradient used by GradientBar, low to high.
var barRamp = []lipgloss.AdaptiveColor{
	{Light: "#16a34a", Dark: "#4ade80"},
	{Light: "#ca8a04", Dark: "#facc15"},
	{Light: "#ea580c", Dark: "#fb923c"},
	{Light: "#dc2626", Dark: "#f87171"},
}

// ─── Icons ───────────────────────────────────────────────────────────────────

const (
	IconDiamond = "◆"
	IconChevron = "›"
	IconBullet  = "·"
	IconFolder  = "▸ "
	IconCheck   = "✓"
	IconWarning = "⚠"
	IconError   = "✗"
	IconPipe    = "│"
)

// ─── Style helpers ───────────────────────────────────────────────────────────

// HintBarStyle styles the keybinding hint line at the bottom of a screen.
func HintBarStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(ColorMuted).Italic(true)
}

// TagWarningStyle styles a short inline warning tag like " stale ".
func TagWarningStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.AdaptiveColor{Light: "#ffffff", Dark: "#1f2937"}).
		Background(ColorWarning).
		Bold(true)
}

// TagDangerStyle styles a short inline tag for destructive states.
func TagDangerStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.AdaptiveColor{Light: "#ffffff", Dark: "#1f2937"}).
		Background(ColorError).
		Bold(true)
}

// GradientBar renders a ████░░░░ bar of the given width. The filled portion
// is colored along a green→red ramp by position, so fuller bars read hotter.
func GradientBar(pct float64, width int) string {
	if width <= 0 {
		return ""
	}
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	filled := int(pct / 100 * float64(width))
	if filled > width {
		filled = width
	}

	var b strings.Builder
	for i := 0; i < filled; i++ {
		idx := i * len(barRamp) / width
		if idx >= len(barRamp) {
			idx = len(barRamp) - 1
		}
		b.WriteString(lipgloss.NewStyle().Foreground(barRamp[idx]).Render("█"))
	}
	b.WriteString(lipgloss.NewStyle().Foreground(ColorMuted).Render(strings.Repeat("░", width-filled)))
	return b.String()
}
