package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/spigell/prospector/internal/bus"
	"github.com/spigell/prospector/internal/prospect"
	"github.com/spigell/prospector/internal/scoring"
	"github.com/spigell/prospector/internal/settings"
)

// Store is the part of the persistent store the interface reads from.
type Store interface {
	ListCandidates(ctx context.Context) (*prospect.Candidates, error)
	ClearCandidates(ctx context.Context) (int64, error)
	ListReports(ctx context.Context) ([]*prospect.Report, error)
	GetReport(ctx context.Context, id int64) (*prospect.Report, error)
}

type SettingsStore interface {
	Load() (settings.Config, error)
	Save(cfg settings.Config) error
}

type Options struct {
	Controller *Controller
	Store      Store
	Settings   SettingsStore
	// Events is a bus subscription. The model stops listening once it is closed.
	Events <-chan bus.Event
	// Notice is shown in the status bar on start.
	Notice string
	// Clipboard receives the connection message copied from a report.
	// Defaults to the system clipboard.
	Clipboard func(text string) error
}

type busEventMsg struct {
	evt bus.Event
}

type busClosedMsg struct{}

type candidatesLoadedMsg struct {
	items []*prospect.Candidate
	err   error
}

type reportsLoadedMsg struct {
	items []*prospect.Report
	err   error
}

type reportLoadedMsg struct {
	report *prospect.Report
	err    error
}

type settingsLoadedMsg struct {
	cfg settings.Config
	err error
}

type settingsSavedMsg struct {
	cfg settings.Config
	err error
}

type clearedMsg struct {
	removed int64
	err     error
}

// Settings form fields; the goal is cycled rather than typed.
const (
	fieldTitle = iota
	fieldIndustry
	fieldSkills
	fieldAPIKey
	fieldGoal
	fieldCount
)

// Model renders the Controller state with bubbletea.
type Model struct {
	ctl      *Controller
	store    Store
	settings SettingsStore
	events   <-chan bus.Event
	copyText func(text string) error

	cfg        settings.Config
	candidates []*prospect.Candidate
	reports    []*prospect.Report
	report     *prospect.Report

	cursor        int
	historyCursor int

	inputs    []textinput.Model
	focus     int
	draftGoal scoring.Goal

	confirmClear bool
	notice       string
	failure      string

	viewport viewport.Model
	width    int
	height   int
	ready    bool
}

func NewModel(opts Options) Model {
	ctl := opts.Controller
	if ctl == nil {
		ctl = NewController(bus.Discard)
	}
	copyText := opts.Clipboard
	if copyText == nil {
		copyText = clipboard.WriteAll
	}

	return Model{
		ctl:      ctl,
		store:    opts.Store,
		settings: opts.Settings,
		events:   opts.Events,
		copyText: copyText,
		cfg:      settings.Default(),
		inputs:   newInputs(),
		notice:   opts.Notice,
	}
}

func newInputs() []textinput.Model {
	placeholders := []string{
		fieldTitle:    "Founder, Recruiter, ...",
		fieldIndustry: "SaaS, Fintech, ...",
		fieldSkills:   "go, kubernetes, sales",
		fieldAPIKey:   "Gemini api key",
	}

	inputs := make([]textinput.Model, fieldGoal)
	for i := range inputs {
		in := textinput.New()
		in.Placeholder = placeholders[i]
		in.CharLimit = 256
		if i == fieldAPIKey {
			in.EchoMode = textinput.EchoPassword
		}
		inputs[i] = in
	}
	return inputs
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.waitForEvent(), m.loadSettings(), m.loadCandidates())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case busEventMsg:
		cmd = tea.Batch(m.handleEvent(msg.evt), m.waitForEvent())

	case busClosedMsg:
		m.events = nil

	case candidatesLoadedMsg:
		if msg.err != nil {
			m.failure = fmt.Sprintf("loading prospects: %v", msg.err)
			break
		}
		m.candidates = msg.items
		m.cursor = clamp(m.cursor, 0, max(len(m.candidates)-1, 0))

	case reportsLoadedMsg:
		if msg.err != nil {
			m.failure = fmt.Sprintf("loading history: %v", msg.err)
			break
		}
		m.reports = msg.items
		m.historyCursor = clamp(m.historyCursor, 0, max(len(m.reports)-1, 0))

	case reportLoadedMsg:
		if msg.err != nil {
			m.failure = fmt.Sprintf("loading report: %v", msg.err)
			break
		}
		m.report = msg.report
		m.viewport.GotoTop()

	case settingsLoadedMsg:
		if msg.err != nil {
			m.failure = fmt.Sprintf("loading settings: %v", msg.err)
			break
		}
		m.cfg = msg.cfg

	case settingsSavedMsg:
		if msg.err != nil {
			m.failure = fmt.Sprintf("saving settings: %v", msg.err)
			break
		}
		m.cfg = msg.cfg
		m.notice = "Settings saved"
		_ = m.ctl.CloseSettings()

	case clearedMsg:
		if msg.err != nil {
			m.failure = fmt.Sprintf("clearing prospects: %v", msg.err)
			break
		}
		m.notice = fmt.Sprintf("Removed %d pending prospects", msg.removed)
		cmd = m.loadCandidates()

	case tea.KeyMsg:
		var quit bool
		cmd, quit = m.handleKey(msg)
		if quit {
			return m, tea.Quit
		}
	}

	m.sync()
	return m, cmd
}

// handleEvent feeds an orchestrator event to the controller and loads what the new state shows.
func (m *Model) handleEvent(evt bus.Event) tea.Cmd {
	if !m.ctl.HandleEvent(evt) {
		return nil
	}

	switch evt.(type) {
	case bus.ScrapeReady:
		m.viewport.GotoTop()
	case bus.AnalysisComplete:
		m.report = nil
		return tea.Batch(m.loadReport(m.ctl.ReportID()), m.loadCandidates())
	case bus.AnalysisError:
		m.failure = m.ctl.Err()
		return m.loadCandidates()
	}
	return nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	if msg.String() == "ctrl+c" {
		return nil, true
	}

	switch m.ctl.State() {
	case StateListing:
		return m.listingKey(msg)
	case StateSettings:
		return m.settingsKey(msg), false
	case StateHistory:
		return m.historyKey(msg)
	case StateReviewingScrape:
		return m.reviewKey(msg), false
	case StateReport:
		return m.reportKey(msg), false
	case StateAnalyzing:
		return nil, msg.String() == "q"
	}
	return nil, false
}

func (m *Model) listingKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	if m.confirmClear {
		m.confirmClear = false
		if msg.String() == "y" {
			return m.clearCandidates(), false
		}
		m.notice = "Clear cancelled"
		return nil, false
	}

	switch msg.String() {
	case "q":
		return nil, true
	case "up", "k":
		m.cursor = clamp(m.cursor-1, 0, max(len(m.candidates)-1, 0))
		m.ensureVisible(m.cursor)
	case "down", "j":
		m.cursor = clamp(m.cursor+1, 0, max(len(m.candidates)-1, 0))
		m.ensureVisible(m.cursor)
	case "enter", "a":
		if len(m.candidates) == 0 {
			return nil, false
		}
		m.clearMessages()
		m.report = nil
		m.surface(m.ctl.Analyze(*m.candidates[m.cursor], m.cfg))
	case "s":
		m.clearMessages()
		if m.surface(m.ctl.OpenSettings()) {
			m.fillInputs()
			return m.focusInput(fieldTitle), false
		}
	case "h":
		m.clearMessages()
		if m.surface(m.ctl.OpenHistory()) {
			m.viewport.GotoTop()
			return m.loadReports(), false
		}
	case "r":
		return m.loadCandidates(), false
	case "x":
		if len(m.candidates) > 0 {
			m.confirmClear = true
			m.notice = fmt.Sprintf("Press y to remove all %d pending prospects", len(m.candidates))
		}
	default:
		return m.scroll(msg), false
	}
	return nil, false
}

func (m *Model) settingsKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.blurInputs()
		m.surface(m.ctl.CloseSettings())
		return nil
	case "tab", "down":
		return m.focusInput((m.focus + 1) % fieldCount)
	case "shift+tab", "up":
		return m.focusInput((m.focus + fieldCount - 1) % fieldCount)
	case "enter":
		m.blurInputs()
		return m.saveSettings(m.draft())
	}

	if m.focus == fieldGoal {
		switch msg.String() {
		case "left", "right", " ":
			m.draftGoal = m.draftGoal.Next()
		}
		return nil
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return cmd
}

func (m *Model) historyKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch msg.String() {
	case "q":
		return nil, true
	case "esc", "b":
		m.surface(m.ctl.CloseHistory())
	case "up", "k":
		m.historyCursor = clamp(m.historyCursor-1, 0, max(len(m.reports)-1, 0))
		m.ensureVisible(m.historyCursor)
	case "down", "j":
		m.historyCursor = clamp(m.historyCursor+1, 0, max(len(m.reports)-1, 0))
		m.ensureVisible(m.historyCursor)
	case "enter":
		if len(m.reports) == 0 {
			return nil, false
		}
		selected := m.reports[m.historyCursor]
		if m.surface(m.ctl.OpenReport(selected.ID)) {
			m.report = selected
			m.viewport.GotoTop()
		}
	default:
		return m.scroll(msg), false
	}
	return nil, false
}

func (m *Model) reviewKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter", "p":
		m.surface(m.ctl.Proceed())
		return nil
	case "esc", "c":
		if m.surface(m.ctl.Cancel()) {
			m.notice = "Analysis cancelled"
		}
		return nil
	}
	return m.scroll(msg)
}

func (m *Model) reportKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc", "b":
		if m.surface(m.ctl.Back()) {
			m.viewport.GotoTop()
			return m.loadReports()
		}
		return nil
	case "c":
		m.copyMessage()
		return nil
	}
	return m.scroll(msg)
}

func (m *Model) copyMessage() {
	m.clearMessages()
	if m.report == nil || m.report.ConnectionMessage == "" {
		m.failure = "no connection message to copy"
		return
	}
	if err := m.copyText(m.report.ConnectionMessage); err != nil {
		m.failure = fmt.Sprintf("copying message: %v", err)
		return
	}
	m.notice = "Connection message copied to clipboard"
}

// surface shows err in the status bar and reports whether the action succeeded.
func (m *Model) surface(err error) bool {
	if err != nil {
		m.failure = err.Error()
		return false
	}
	return true
}

func (m *Model) clearMessages() {
	m.notice = ""
	m.failure = ""
	m.ctl.ClearErr()
}

func (m *Model) scroll(msg tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return cmd
}

func (m *Model) ensureVisible(cursor int) {
	top := cursor * itemHeight
	bottom := top + itemHeight - 1

	if top < m.viewport.YOffset {
		m.viewport.SetYOffset(top)
	} else if bottom >= m.viewport.YOffset+m.viewport.Height {
		m.viewport.SetYOffset(bottom - m.viewport.Height + 1)
	}
}

func (m *Model) fillInputs() {
	m.inputs[fieldTitle].SetValue(m.cfg.Profile.Title)
	m.inputs[fieldIndustry].SetValue(m.cfg.Profile.Industry)
	m.inputs[fieldSkills].SetValue(m.cfg.Profile.Skills)
	m.inputs[fieldAPIKey].SetValue(m.cfg.APIKey)
	m.draftGoal = m.cfg.Goal
	if !m.draftGoal.Valid() {
		m.draftGoal = scoring.DefaultGoal
	}
}

func (m *Model) focusInput(field int) tea.Cmd {
	m.blurInputs()
	m.focus = field
	if field < len(m.inputs) {
		return m.inputs[field].Focus()
	}
	return nil
}

func (m *Model) blurInputs() {
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
}

func (m Model) draft() settings.Config {
	cfg := m.cfg
	cfg.Profile = settings.UserProfile{
		Title:    strings.TrimSpace(m.inputs[fieldTitle].Value()),
		Industry: strings.TrimSpace(m.inputs[fieldIndustry].Value()),
		Skills:   strings.TrimSpace(m.inputs[fieldSkills].Value()),
	}
	cfg.APIKey = strings.TrimSpace(m.inputs[fieldAPIKey].Value())
	cfg.Goal = m.draftGoal
	return cfg
}

func (m *Model) resize() {
	// Title (1 line) + border top/bottom (2) + status bar (1).
	width := max(m.width-4, 20)
	height := max(m.height-4, 5)

	if !m.ready {
		m.viewport = viewport.New(width, height)
		m.ready = true
		return
	}
	m.viewport.Width = width
	m.viewport.Height = height
}

func (m *Model) sync() {
	if m.ready {
		m.viewport.SetContent(m.renderBody())
	}
}

func (m Model) waitForEvent() tea.Cmd {
	events := m.events
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		evt, ok := <-events
		if !ok {
			return busClosedMsg{}
		}
		return busEventMsg{evt: evt}
	}
}

func (m Model) loadCandidates() tea.Cmd {
	store := m.store
	if store == nil {
		return nil
	}
	return func() tea.Msg {
		c, err := store.ListCandidates(context.Background())
		if err != nil {
			return candidatesLoadedMsg{err: err}
		}
		return candidatesLoadedMsg{items: c.Items}
	}
}

func (m Model) loadReports() tea.Cmd {
	store := m.store
	if store == nil {
		return nil
	}
	return func() tea.Msg {
		reports, err := store.ListReports(context.Background())
		return reportsLoadedMsg{items: reports, err: err}
	}
}

func (m Model) loadReport(id int64) tea.Cmd {
	store := m.store
	if store == nil {
		return nil
	}
	return func() tea.Msg {
		r, err := store.GetReport(context.Background(), id)
		return reportLoadedMsg{report: r, err: err}
	}
}

func (m Model) loadSettings() tea.Cmd {
	store := m.settings
	if store == nil {
		return nil
	}
	return func() tea.Msg {
		cfg, err := store.Load()
		return settingsLoadedMsg{cfg: cfg, err: err}
	}
}

func (m Model) saveSettings(cfg settings.Config) tea.Cmd {
	store := m.settings
	return func() tea.Msg {
		if store == nil {
			return settingsSavedMsg{err: errors.New("settings are not persisted")}
		}
		return settingsSavedMsg{cfg: cfg, err: store.Save(cfg)}
	}
}

func (m Model) clearCandidates() tea.Cmd {
	store := m.store
	return func() tea.Msg {
		if store == nil {
			return clearedMsg{}
		}
		n, err := store.ClearCandidates(context.Background())
		return clearedMsg{removed: n, err: err}
	}
}

// Run shows the interface until the user quits or ctx is done.
func Run(ctx context.Context, m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
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
