package picker

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lakshaymaurya-felt/sitemole/internal/browser"
	"github.com/lakshaymaurya-felt/sitemole/internal/clean"
	"github.com/lakshaymaurya-felt/sitemole/internal/config"
	"github.com/lakshaymaurya-felt/sitemole/internal/cookies"
)

// newTestModel builds a picker over a throwaway profile with the
// disclaimer already acknowledged, pointing every config path at temp
// directories.
func newTestModel(t *testing.T) PickerModel {
	t.Helper()
	t.Setenv("APPDATA", t.TempDir())
	t.Setenv("LOCALAPPDATA", t.TempDir())
	t.Setenv("USERPROFILE", t.TempDir())

	p := browser.Profile{
		Browser: browser.Browser{ID: "test", Name: "Test Browser"},
		Name:    "Default",
		Dir:     t.TempDir(),
	}
	settings := config.DefaultSettings()
	settings.AcknowledgedRisk = true

	return NewPickerModel(p, settings, nil, "")
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEscape}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func update(t *testing.T, m PickerModel, msg tea.Msg) (PickerModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	pm, ok := next.(PickerModel)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return pm, cmd
}

func testSites() []cookies.Site {
	return []cookies.Site{
		{Host: "ads.tracker.net", Cookies: 9},
		{Host: "google.com", Cookies: 4},
		{Host: "mail.google.com", Cookies: 2},
	}
}

func TestDisclaimerShowsUntilAcknowledged(t *testing.T) {
	m := newTestModel(t)
	m.settings.AcknowledgedRisk = false
	m.stage = StageDisclaimer

	m, _ = update(t, m, key("a"))
	if m.stage != StageBrowse {
		t.Fatalf("stage = %v after accept, want StageBrowse", m.stage)
	}
	if !m.settings.AcknowledgedRisk {
		t.Error("acknowledgment not recorded")
	}
	if m.err != nil {
		t.Errorf("accept failed: %v", m.err)
	}

	// The acknowledgment must persist.
	saved, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !saved.AcknowledgedRisk {
		t.Error("acknowledgment not persisted")
	}
}

func TestBrowseSelection(t *testing.T) {
	m := newTestModel(t)
	m, _ = update(t, m, sitesMsg{sites: testSites()})

	if m.loading {
		t.Fatal("still loading after sitesMsg")
	}
	if len(m.filtered) != 3 {
		t.Fatalf("filtered = %d, want 3", len(m.filtered))
	}

	// Toggle the first site, move down, toggle the second.
	m, _ = update(t, m, key("space"))
	m, _ = update(t, m, key("j"))
	m, _ = update(t, m, key("space"))

	if len(m.selected) != 2 {
		t.Fatalf("selected = %d, want 2: %v", len(m.selected), m.selected)
	}
	if !m.selected["ads.tracker.net"] || !m.selected["google.com"] {
		t.Errorf("selection = %v", m.selected)
	}

	// Toggling again deselects.
	m, _ = update(t, m, key("space"))
	if m.selected["google.com"] {
		t.Error("second toggle did not deselect")
	}

	// Select all, then none.
	m, _ = update(t, m, key("a"))
	if len(m.selected) != 3 {
		t.Errorf("select all = %d, want 3", len(m.selected))
	}
	m, _ = update(t, m, key("n"))
	if len(m.selected) != 0 {
		t.Errorf("select none = %d, want 0", len(m.selected))
	}
}

func TestBrowseFilterDebounce(t *testing.T) {
	m := newTestModel(t)
	m, _ = update(t, m, sitesMsg{sites: testSites()})

	m, _ = update(t, m, key("/"))
	if !m.searching {
		t.Fatal("search not active after /")
	}

	m, _ = update(t, m, key("google"))

	// The list only narrows once the debounce tick for the current query
	// arrives; stale ticks are ignored.
	m, _ = update(t, m, searchTickMsg{query: "goo"})
	if len(m.filtered) != 3 {
		t.Errorf("stale tick filtered the list: %d", len(m.filtered))
	}

	m, _ = update(t, m, searchTickMsg{query: "google"})
	if len(m.filtered) != 2 {
		t.Fatalf("filtered = %d, want 2: %+v", len(m.filtered), m.filtered)
	}

	// Escape clears the filter.
	m, _ = update(t, m, key("esc"))
	if m.searching {
		t.Error("search still active after esc")
	}
	if len(m.filtered) != 3 {
		t.Errorf("filter not cleared: %d", len(m.filtered))
	}
}

func TestEmptySelectionCannotConfirm(t *testing.T) {
	m := newTestModel(t)
	m, _ = update(t, m, sitesMsg{sites: testSites()})

	m, _ = update(t, m, key("enter"))
	if m.stage != StageBrowse {
		t.Fatalf("stage = %v with empty selection, want StageBrowse", m.stage)
	}
}

func TestConfirmCountdownGatesEnter(t *testing.T) {
	m := newTestModel(t)
	m, _ = update(t, m, sitesMsg{sites: testSites()})
	m, _ = update(t, m, key("space"))
	m, _ = update(t, m, key("enter"))

	if m.stage != StageConfirm {
		t.Fatalf("stage = %v, want StageConfirm", m.stage)
	}
	if m.countdown != m.settings.CountdownSeconds {
		t.Errorf("countdown = %d, want %d", m.countdown, m.settings.CountdownSeconds)
	}

	// Enter is ignored while the countdown runs.
	m, _ = update(t, m, key("enter"))
	if m.stage != StageConfirm {
		t.Fatalf("enter during countdown moved to %v", m.stage)
	}

	for i := 0; i < m.settings.CountdownSeconds; i++ {
		m, _ = update(t, m, countdownTickMsg{})
	}
	if m.countdown != 0 {
		t.Fatalf("countdown = %d after ticks, want 0", m.countdown)
	}

	// Backup toggles while confirming.
	if !m.withBackup {
		t.Error("backup not on by default")
	}
	m, _ = update(t, m, key("b"))
	if m.withBackup {
		t.Error("b did not toggle backup off")
	}

	// Escape goes back without starting anything.
	m, _ = update(t, m, key("esc"))
	if m.stage != StageBrowse {
		t.Fatalf("esc from confirm = %v, want StageBrowse", m.stage)
	}
}

func TestRunStageStreamsResults(t *testing.T) {
	m := newTestModel(t)
	m.stage = StageRun
	m.total = 2
	m.selected = map[string]bool{"a.com": true, "b.com": true}
	m.events = make(chan tea.Msg, 4)

	m, cmd := update(t, m, runEventMsg{ev: clean.SiteEvent{
		Index: 1, Total: 2,
		Result: clean.SiteResult{Site: "a.com", Cookies: 3},
	}})
	if len(m.results) != 1 {
		t.Fatalf("results = %d, want 1", len(m.results))
	}
	if cmd == nil {
		t.Fatal("no listen command re-armed")
	}
	if m.current != "b.com" {
		t.Errorf("current = %q, want b.com", m.current)
	}

	summary := &clean.Summary{Succeeded: 2}
	m, _ = update(t, m, runDoneMsg{summary: summary})
	if m.stage != StageDone {
		t.Fatalf("stage = %v after runDoneMsg, want StageDone", m.stage)
	}
	if m.summary != summary {
		t.Error("summary not captured")
	}
}

func TestQuitDuringRunDefersUntilDone(t *testing.T) {
	m := newTestModel(t)
	m.stage = StageRun
	m.total = 1

	m, cmd := update(t, m, key("q"))
	if m.stage != StageRun {
		t.Fatalf("q during run moved to %v", m.stage)
	}
	if !m.quitting {
		t.Fatal("quit request not recorded")
	}
	if cmd != nil {
		t.Fatal("run stage quit returned a command early")
	}

	_, cmd = update(t, m, runDoneMsg{summary: &clean.Summary{}})
	if cmd == nil {
		t.Fatal("no quit command after run finished")
	}
	if msg := cmd(); msg != (tea.QuitMsg{}) {
		t.Errorf("final command = %#v, want tea.QuitMsg", msg)
	}
}

func TestBrowserBannerUpdates(t *testing.T) {
	m := newTestModel(t)

	m, cmd := update(t, m, browserStateMsg{running: true})
	if !m.browserRunning {
		t.Fatal("running state not recorded")
	}
	if cmd == nil {
		t.Fatal("no recheck scheduled")
	}

	m, _ = update(t, m, browserStateMsg{running: false})
	if m.browserRunning {
		t.Fatal("stopped state not recorded")
	}
}

func TestStorageCountsFollowSites(t *testing.T) {
	m := newTestModel(t)

	m, cmd := update(t, m, sitesMsg{sites: testSites()})
	if cmd == nil {
		t.Fatal("no storage count load scheduled after sites arrive")
	}

	m, _ = update(t, m, storageCountsMsg{counts: map[string]int{"google.com": 2}})
	if m.storageCounts["google.com"] != 2 {
		t.Fatalf("storageCounts = %v", m.storageCounts)
	}
}
