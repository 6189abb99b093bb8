package picker

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lakshaymaurya-felt/sitemole/internal/audit"
	"github.com/lakshaymaurya-felt/sitemole/internal/browser"
	"github.com/lakshaymaurya-felt/sitemole/internal/clean"
	"github.com/lakshaymaurya-felt/sitemole/internal/config"
	"github.com/lakshaymaurya-felt/sitemole/internal/cookies"
	"github.com/lakshaymaurya-felt/sitemole/internal/proc"
	"github.com/lakshaymaurya-felt/sitemole/internal/storage"
	"github.com/lakshaymaurya-felt/sitemole/internal/ui"
)

// Stage is the picker's current screen.
type Stage int

const (
	StageDisclaimer Stage = iota
	StageBrowse
	StageConfirm
	StageRun
	StageDone
)

// browserCheckEvery is how often the running-browser banner refreshes.
const browserCheckEvery = 5 * time.Second

// searchDebounce delays filtering until typing pauses.
const searchDebounce = 150 * time.Millisecond

// ─── Messages ────────────────────────────────────────────────────────────────

type sitesMsg struct {
	sites []cookies.Site
	err   error
}

type storageCountsMsg struct {
	counts map[string]int
}

type browserTickMsg struct{}

type browserStateMsg struct {
	running bool
}

type searchTickMsg struct {
	query string
}

type countdownTickMsg struct{}

type killDoneMsg struct {
	killed int
	err    error
}

type runEventMsg struct {
	ev clean.Event
}

type runDoneMsg struct {
	summary *clean.Summary
	err     error
}

// ─── Model ───────────────────────────────────────────────────────────────────

// PickerModel is the bubbletea Model for the site picker.
type PickerModel struct {
	profile  browser.Profile
	settings config.Settings
	log      *audit.Logger
	lockDir  string

	stage    Stage
	width    int
	height   int
	quitting bool
	err      error

	// Browse state.
	loading        bool
	sites          []cookies.Site
	filtered       []cookies.Site
	storageCounts  map[string]int
	selected       map[string]bool
	cursor         int
	offset         int
	searching      bool
	search         textinput.Model
	browserRunning bool
	killing        bool

	// Confirm state.
	countdown  int
	withBackup bool

	// Run state.
	spinner   spinner.Model
	progress  progress.Model
	events    chan tea.Msg
	runCancel context.CancelFunc
	results   []clean.SiteResult
	current   string
	total     int
	backupDir string

	// Done state.
	summary *clean.Summary
	runErr  error
}

// NewPickerModel builds a picker for the given profile. The disclaimer shows
// until the user has acknowledged it once.
func NewPickerModel(p browser.Profile, settings config.Settings, log *audit.Logger, lockDir string) PickerModel {
	search := textinput.New()
	search.Placeholder = "filter sites"
	search.Prompt = "/ "
	search.CharLimit = 120

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(ui.ColorPrimary)

	stage := StageBrowse
	if !settings.AcknowledgedRisk {
		stage = StageDisclaimer
	}

	return PickerModel{
		profile:    p,
		settings:   settings,
		log:        log,
		lockDir:    lockDir,
		stage:      stage,
		width:      100,
		height:     30,
		loading:    true,
		selected:   make(map[string]bool),
		search:     search,
		spinner:    sp,
		progress:   progress.New(progress.WithDefaultGradient()),
		withBackup: true,
	}
}

func (m PickerModel) Init() tea.Cmd {
	return tea.Batch(
		loadSites(m.profile),
		checkBrowser(m.profile.Browser),
		m.spinner.Tick,
	)
}

// ─── Commands ────────────────────────────────────────────────────────────────

func loadSites(p browser.Profile) tea.Cmd {
	return func() tea.Msg {
		db, err := p.CookieDB()
		if err != nil {
			if errors.Is(err, browser.ErrNoCookieDB) {
				return sitesMsg{}
			}
			return sitesMsg{err: err}
		}
		store, err := cookies.OpenSnapshot(db)
		if err != nil {
			return sitesMsg{err: err}
		}
		defer store.Close()

		sites, err := store.Sites()
		return sitesMsg{sites: sites, err: err}
	}
}

func loadStorageCounts(p browser.Profile, sites []cookies.Site) tea.Cmd {
	return func() tea.Msg {
		hosts := make([]string, len(sites))
		for i, s := range sites {
			hosts[i] = s.Host
		}
		return storageCountsMsg{counts: storage.CountsForSites(p, hosts)}
	}
}

func checkBrowser(b browser.Browser) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		return browserStateMsg{running: proc.Running(ctx, b)}
	}
}

func scheduleBrowserCheck() tea.Cmd {
	return tea.Tick(browserCheckEvery, func(time.Time) tea.Msg {
		return browserTickMsg{}
	})
}

func killBrowser(b browser.Browser) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		killed, err := proc.EnsureClosed(ctx, b, 10*time.Second)
		return killDoneMsg{killed: killed, err: err}
	}
}

func countdownTick() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return countdownTickMsg{}
	})
}

func debounceSearch(query string) tea.Cmd {
	return tea.Tick(searchDebounce, func(time.Time) tea.Msg {
		return searchTickMsg{query: query}
	})
}

// startRun launches the cleaning run in its own goroutine and returns the
// command that relays its progress events into the update loop.
func (m *PickerModel) startRun() tea.Cmd {
	ch := make(chan tea.Msg, 16)
	m.events = ch

	ctx, cancel := context.WithCancel(context.Background())
	m.runCancel = cancel

	opts := clean.Options{
		Profile:   m.profile,
		Sites:     m.selectedSites(),
		Backup:    m.withBackup,
		BackupDir: m.settings.ResolvedBackupDir(),
		Kill:      true,
		LockDir:   m.lockDir,
		Log:       m.log,
		OnEvent: func(ev clean.Event) {
			ch <- runEventMsg{ev: ev}
		},
	}

	go func() {
		summary, err := clean.Run(ctx, opts)
		ch <- runDoneMsg{summary: summary, err: err}
		close(ch)
	}()

	return listenRun(ch)
}

func listenRun(ch chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}

// ─── Update ──────────────────────────────────────────────────────────────────

func (m PickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = clamp(msg.Width-20, 20, 60)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case sitesMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.sites = msg.sites
		m.applyFilter()
		return m, loadStorageCounts(m.profile, m.sites)

	case storageCountsMsg:
		m.storageCounts = msg.counts
		return m, nil

	case browserTickMsg:
		return m, checkBrowser(m.profile.Browser)

	case browserStateMsg:
		m.browserRunning = msg.running
		return m, scheduleBrowserCheck()

	case killDoneMsg:
		m.killing = false
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.err = nil
			m.browserRunning = false
		}
		if m.log != nil {
			m.log.Infow("kill", "browser", m.profile.Browser.ID, "processes", msg.killed)
		}
		return m, checkBrowser(m.profile.Browser)

	case searchTickMsg:
		// Stale ticks from earlier keystrokes are dropped.
		if msg.query == m.search.Value() {
			m.applyFilter()
		}
		return m, nil

	case countdownTickMsg:
		if m.stage != StageConfirm {
			return m, nil
		}
		if m.countdown > 0 {
			m.countdown--
		}
		if m.countdown > 0 {
			return m, countdownTick()
		}
		return m, nil

	case runEventMsg:
		switch ev := msg.ev.(type) {
		case clean.KillEvent:
			m.browserRunning = false
		case clean.BackupEvent:
			m.backupDir = ev.Dir
			if ev.Err != nil {
				m.err = ev.Err
			}
		case clean.SiteEvent:
			m.results = append(m.results, ev.Result)
			m.total = ev.Total
			m.current = ""
			if ev.Index < ev.Total {
				m.current = m.orderedSelection()[ev.Index]
			}
		}
		return m, listenRun(m.events)

	case runDoneMsg:
		m.stage = StageDone
		m.summary = msg.summary
		m.runErr = msg.err
		if m.runCancel != nil {
			m.runCancel()
			m.runCancel = nil
		}
		if m.quitting {
			return m, tea.Quit
		}
		return m, nil

	case tea.KeyMsg:
		return m.updateKeys(msg)
	}

	return m, nil
}

func (m PickerModel) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// The run stage ignores everything except a quit request, which is
	// honored once the run finishes.
	if m.stage == StageRun {
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			m.quitting = true
			if m.runCancel != nil {
				m.runCancel()
			}
		}
		return m, nil
	}

	switch m.stage {
	case StageDisclaimer:
		return m.updateDisclaimer(msg)
	case StageBrowse:
		return m.updateBrowse(msg)
	case StageConfirm:
		return m.updateConfirm(msg)
	case StageDone:
		switch msg.String() {
		case "q", "esc", "enter", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}
	return m, nil
}

func (m PickerModel) updateDisclaimer(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "a":
		m.settings.AcknowledgedRisk = true
		if err := m.settings.Save(); err != nil {
			m.err = err
		}
		m.stage = StageBrowse
		return m, nil
	case "q", "esc", "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m PickerModel) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Search input swallows keys while focused.
	if m.searching {
		switch msg.Type {
		case tea.KeyEscape:
			m.searching = false
			m.search.Blur()
			m.search.SetValue("")
			m.applyFilter()
			return m, nil
		case tea.KeyEnter:
			m.searching = false
			m.search.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		return m, tea.Batch(cmd, debounceSearch(m.search.Value()))
	}

	switch msg.String() {
	case "q", "esc", "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
			m.ensureVisible()
		}

	case "down", "j":
		if m.cursor < len(m.filtered)-1 {
			m.cursor++
			m.ensureVisible()
		}

	case " ":
		if m.cursor >= 0 && m.cursor < len(m.filtered) {
			host := m.filtered[m.cursor].Host
			if m.selected[host] {
				delete(m.selected, host)
			} else {
				m.selected[host] = true
			}
		}

	case "a":
		for _, s := range m.filtered {
			m.selected[s.Host] = true
		}

	case "n":
		m.selected = make(map[string]bool)

	case "/":
		m.searching = true
		return m, m.search.Focus()

	case "r":
		m.loading = true
		return m, tea.Batch(loadSites(m.profile), m.spinner.Tick)

	case "c":
		if m.browserRunning && !m.killing {
			m.killing = true
			return m, killBrowser(m.profile.Browser)
		}

	case "d", "enter":
		if len(m.selected) == 0 {
			return m, nil
		}
		m.stage = StageConfirm
		m.countdown = m.settings.CountdownSeconds
		return m, countdownTick()
	}

	return m, nil
}

func (m PickerModel) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		m.stage = StageBrowse
		return m, nil

	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "b":
		m.withBackup = !m.withBackup
		return m, nil

	case "enter":
		if m.countdown > 0 {
			return m, nil
		}
		m.stage = StageRun
		m.results = nil
		m.total = len(m.selected)
		m.current = ""
		if names := m.orderedSelection(); len(names) > 0 {
			m.current = names[0]
		}
		return m, tea.Batch(m.startRun(), m.spinner.Tick)
	}
	return m, nil
}

func (m PickerModel) View() string {
	if m.quitting && m.stage != StageRun {
		return ""
	}
	return m.renderView()
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// applyFilter recomputes the visible site list from the search query.
func (m *PickerModel) applyFilter() {
	query := strings.ToLower(strings.TrimSpace(m.search.Value()))
	if query == "" {
		m.filtered = m.sites
	} else {
		var out []cookies.Site
		for _, s := range m.sites {
			if strings.Contains(s.Host, query) {
				out = append(out, s)
			}
		}
		m.filtered = out
	}

	if m.cursor >= len(m.filtered) {
		m.cursor = 0
		m.offset = 0
	}
}

// selectedSites returns the chosen hosts, sorted.
func (m PickerModel) selectedSites() []string {
	return m.orderedSelection()
}

func (m PickerModel) orderedSelection() []string {
	hosts := make([]string, 0, len(m.selected))
	for host := range m.selected {
		hosts = append(hosts, host)
	}
	sort.Strings(hosts)
	return hosts
}

func (m *PickerModel) ensureVisible() {
	vh := m.viewportHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+vh {
		m.offset = m.cursor - vh + 1
	}
}

func (m PickerModel) viewportHeight() int {
	h := m.height - 10 // header + search + footer + padding
	if h < 1 {
		h = 1
	}
	return h
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
