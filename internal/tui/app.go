package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tessro/reel/internal/core"
	"github.com/tessro/reel/internal/logger"
	"github.com/tessro/reel/internal/playback"
	"github.com/tessro/reel/internal/registry"
	"github.com/tessro/reel/internal/tui/components"
	"github.com/tessro/reel/internal/tui/styles"
)

// Screen represents which screen is showing
type Screen int

const (
	ScreenFeed Screen = iota
	ScreenStory
)

// App holds the TUI application state
type App struct {
	registry  *registry.Registry
	policy    playback.Policy
	log       logger.Logger
	scheduler playback.Scheduler

	// send delivers messages to the running program
	send func(tea.Msg)

	// events collects engine notifications until the next Update drains them
	events []engineEvent
}

// NewApp creates a new TUI application
func NewApp(reg *registry.Registry, policy playback.Policy, log logger.Logger) *App {
	if log == nil {
		log = logger.Nop()
	}
	app := &App{
		registry: reg,
		policy:   policy,
		log:      log,
	}
	app.scheduler = programScheduler{app: app}
	return app
}

// programScheduler routes engine ticks through the bubbletea event loop so
// the engine only ever runs on the update goroutine.
type programScheduler struct {
	app *App
}

func (s programScheduler) Schedule(d time.Duration, fn func()) func() {
	t := time.AfterFunc(d, func() {
		if s.app.send != nil {
			s.app.send(tickMsg{fire: fn})
		}
	})
	return func() { t.Stop() }
}

type engineEvent int

const (
	eventSegmentChanged engineEvent = iota
	eventTimelineEnded
	eventClosed
)

// viewerObserver queues engine notifications. It runs with the engine
// locked, so it only records.
type viewerObserver struct {
	app *App
}

func (o viewerObserver) OnSegmentChanged(int) {
	o.app.events = append(o.app.events, eventSegmentChanged)
}

func (o viewerObserver) OnTimelineEnded() {
	o.app.events = append(o.app.events, eventTimelineEnded)
}

func (o viewerObserver) OnClosed() {
	o.app.events = append(o.app.events, eventClosed)
}

// Model is the main TUI model
type Model struct {
	app    *App
	width  int
	height int
	screen Screen

	// State
	entries []registry.Entry
	engine  *playback.Engine
	author  core.Author

	// Components
	feed  *components.Feed
	posts *components.Posts
	story *components.Story

	// Overlays
	showHelp bool

	// Filter state
	showFilter  bool
	filterInput textinput.Model

	// Error handling
	lastError   error
	errorExpiry time.Time

	// Quit flag
	quitting bool
}

// NewModel creates a new TUI model
func NewModel(app *App) Model {
	ti := textinput.New()
	ti.Placeholder = "Filter authors..."
	ti.CharLimit = 50
	ti.Width = 30

	return Model{
		app:         app,
		screen:      ScreenFeed,
		entries:     app.registry.Authors(),
		feed:        components.NewFeed(),
		posts:       components.NewPosts(),
		story:       components.NewStory(),
		filterInput: ti,
	}
}

// Messages
type tickMsg struct{ fire func() }
type errMsg error

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		if msg.fire != nil {
			msg.fire()
		}
		m.drainEvents()
		return m, nil

	case errMsg:
		m.lastError = msg
		m.errorExpiry = time.Now().Add(5 * time.Second)
		return m, nil
	}

	if m.showFilter {
		var inputCmd tea.Cmd
		m.filterInput, inputCmd = m.filterInput.Update(msg)
		return m, inputCmd
	}

	return m, nil
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global keys (always work)
	if msg.String() == "ctrl+c" {
		if m.engine != nil {
			m.engine.Close()
		}
		m.quitting = true
		return m, tea.Quit
	}

	// Help overlay
	if m.showHelp {
		switch msg.String() {
		case "?", "esc":
			m.showHelp = false
		}
		return m, nil
	}

	if m.screen == ScreenStory {
		return m.handleStoryKeyPress(msg)
	}

	if m.showFilter {
		return m.handleFilterKeyPress(msg)
	}

	switch msg.String() {
	case "q":
		m.quitting = true
		return m, tea.Quit

	case "?":
		m.showHelp = true

	case "/":
		m.showFilter = true
		m.filterInput.Focus()
		return m, textinput.Blink

	case "esc":
		m.clearFilter()

	case "j", "down":
		m.feed.SelectNext(len(m.visibleEntries()))

	case "k", "up":
		m.feed.SelectPrev()

	case "enter":
		return m, m.openSelected()

	case "R":
		if err := m.app.registry.Reset(context.Background()); err != nil {
			return m, func() tea.Msg { return errMsg(err) }
		}
		m.refreshEntries()
	}

	return m, nil
}

func (m Model) handleFilterKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.clearFilter()
		return m, nil

	case "enter":
		m.showFilter = false
		m.filterInput.Blur()
		return m, m.openSelected()

	case "down", "ctrl+n":
		m.feed.SelectNext(len(m.visibleEntries()))
		return m, nil

	case "up", "ctrl+p":
		m.feed.SelectPrev()
		return m, nil
	}

	var inputCmd tea.Cmd
	m.filterInput, inputCmd = m.filterInput.Update(msg)
	m.feed.Clamp(len(m.visibleEntries()))
	return m, inputCmd
}

func (m Model) handleStoryKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.engine == nil {
		m.screen = ScreenFeed
		return m, nil
	}

	switch msg.String() {
	case "l", "right":
		_ = m.engine.Next()
	case "h", "left":
		_ = m.engine.Previous()
	case " ":
		if m.engine.Status() == core.StatusPaused {
			m.engine.Resume()
		} else {
			m.engine.Interrupt()
		}
	case "x", "esc", "q":
		m.engine.Close()
	case "?":
		m.showHelp = true
	}

	m.drainEvents()
	return m, nil
}

// openSelected starts a story session for the highlighted author.
func (m *Model) openSelected() tea.Cmd {
	entries := m.visibleEntries()
	i := m.feed.Selected()
	if i < 0 || i >= len(entries) {
		return nil
	}

	m.author = entries[i].Author
	m.engine = playback.New(m.author.Timeline(), m.author.ID, playback.Options{
		Policy:    m.app.policy,
		Observer:  viewerObserver{app: m.app},
		MarkSeen:  m.app.registry.MarkSeen,
		Scheduler: m.app.scheduler,
		Logger:    m.app.log,
	})
	m.app.events = m.app.events[:0]
	m.screen = ScreenStory
	m.showFilter = false
	m.filterInput.Blur()

	err := m.engine.Start(0)
	m.drainEvents()
	if err != nil {
		m.app.log.Warnf("open %s: %v", m.author.ID, err)
		return func() tea.Msg { return errMsg(err) }
	}
	return nil
}

// drainEvents applies queued engine notifications. Ending or closing the
// session returns to a freshly sorted feed.
func (m *Model) drainEvents() {
	events := append([]engineEvent(nil), m.app.events...)
	m.app.events = m.app.events[:0]

	for _, ev := range events {
		switch ev {
		case eventTimelineEnded, eventClosed:
			if m.engine != nil {
				m.engine.Close()
			}
			m.engine = nil
			m.screen = ScreenFeed
			m.refreshEntries()
		}
	}
	// Close above may have queued one more notification
	m.app.events = m.app.events[:0]
}

func (m *Model) refreshEntries() {
	m.entries = m.app.registry.Authors()
	m.feed.Reset()
}

func (m *Model) clearFilter() {
	m.showFilter = false
	m.filterInput.SetValue("")
	m.filterInput.Blur()
	m.feed.Clamp(len(m.visibleEntries()))
}

// visibleEntries applies the name filter to the feed.
func (m Model) visibleEntries() []registry.Entry {
	query := strings.ToLower(strings.TrimSpace(m.filterInput.Value()))
	if query == "" {
		return m.entries
	}
	out := make([]registry.Entry, 0, len(m.entries))
	for _, e := range m.entries {
		if strings.Contains(strings.ToLower(e.Author.Name), query) {
			out = append(out, e)
		}
	}
	return out
}

// View renders the UI
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	if m.width == 0 {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}

	var main string
	if m.screen == ScreenStory && m.engine != nil {
		main = m.story.Render(m.engine.Snapshot(), m.author, m.width-2, m.height-2)
	} else {
		main = m.renderFeed()
	}

	return lipgloss.JoinVertical(lipgloss.Left, main, m.renderStatusBar())
}

func (m Model) renderFeed() string {
	entries := m.visibleEntries()
	width := m.width - 2
	feedHeight := m.height * 40 / 100
	postsHeight := m.height - feedHeight - 4

	var parts []string
	if m.showFilter || m.filterInput.Value() != "" {
		parts = append(parts, " "+m.filterInput.View())
		feedHeight--
	}
	parts = append(parts,
		m.feed.Render(entries, width, feedHeight, true),
		m.posts.Render(entries, width, postsHeight),
	)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderStatusBar() string {
	status := styles.Dim.Render("q:quit  ?:help  /:filter  j/k:move  enter:watch  R:reset seen")
	if m.screen == ScreenStory {
		status = styles.Dim.Render("h/←:previous  l/→:next  space:pause  x/esc:close")
	}

	if m.lastError != nil && time.Now().Before(m.errorExpiry) {
		status = styles.ErrorText.Render("Error: " + m.lastError.Error())
	}

	return lipgloss.NewStyle().
		Width(m.width).
		Padding(0, 1).
		Render(status)
}

func (m Model) renderHelp() string {
	title := "Reel - Keyboard Shortcuts"
	divider := strings.Repeat("═", len(title))

	help := `
  ` + title + `
  ` + divider + `

  Feed
  ────
  q, Ctrl+C    Quit
  ?            Toggle help
  /            Filter authors
  j/↓          Select next
  k/↑          Select previous
  Enter        Watch stories
  R            Mark everyone unseen

  Stories
  ───────
  l/→          Next story
  h/←          Previous story
  Space        Pause/Resume
  x, Esc       Close

  Press ? or Esc to close
`

	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(styles.BorderStyle.Render(help))
}

// Run starts the TUI application
func Run(reg *registry.Registry, policy playback.Policy, theme string, log logger.Logger) error {
	styles.Apply(theme)

	app := NewApp(reg, policy, log)
	p := tea.NewProgram(NewModel(app), tea.WithAltScreen())
	app.send = p.Send

	_, err := p.Run()
	return err
}
