// Package tui is the Bubble Tea front end. It owns the terminal, the
// tick/debounce/animation timers, and the widgets; all engine state
// lives in the session it renders.
package tui

import (
	"fmt"
	"time"

	"procsweep/internal/search"
	"procsweep/internal/session"
	"procsweep/ui/tui/styles"
	"procsweep/ui/tui/views"

	"github.com/NimbleMarkets/ntcharts/canvas"
	"github.com/NimbleMarkets/ntcharts/linechart"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
)

// Options selects the cosmetic and timing knobs the CLI resolved.
type Options struct {
	Theme           string
	RefreshInterval time.Duration
}

// MainModel is the Bubble Tea model acting as the controller.
type MainModel struct {
	sess    *session.Session
	theme   styles.Theme
	refresh time.Duration

	input    textinput.Model
	spinner  spinner.Model
	cpuChart linechart.Model
	infoView viewport.Model

	// Physics spring smoothing the viewport scroll position.
	spring     harmonica.Spring
	animCursor float64
	velocity   float64

	width    int
	height   int
	quitting bool
}

// Messages
type TickMsg time.Time
type DebounceMsg time.Time
type AnimateMsg time.Time

func InitialModel(sess *session.Session, opts Options) MainModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	ti := textinput.New()
	ti.Prompt = "/"
	ti.Placeholder = "name, /regex/, /killed"
	ti.CharLimit = 64

	lc := linechart.New(30, 8, 0, 30, 0, 100)

	return MainModel{
		sess:     sess,
		theme:    styles.ForName(opts.Theme),
		refresh:  opts.RefreshInterval,
		input:    ti,
		spinner:  s,
		cpuChart: lc,
		infoView: viewport.New(80, 20),
		spring:   harmonica.NewSpring(harmonica.FPS(60), 12.0, 0.9),
	}
}

func (m *MainModel) Init() tea.Cmd {
	zone.NewGlobal()
	m.sess.Refresh()
	return tea.Batch(
		m.spinner.Tick,
		tickCmd(m.refresh),
		debounceCmd(),
		animateCmd(),
	)
}

// Commands
func tickCmd(every time.Duration) tea.Cmd {
	return tea.Tick(every, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func debounceCmd() tea.Cmd {
	return tea.Tick(50*time.Millisecond, func(t time.Time) tea.Msg {
		return DebounceMsg(t)
	})
}

func animateCmd() tea.Cmd {
	return tea.Tick(time.Millisecond*16, func(t time.Time) tea.Msg {
		return AnimateMsg(t)
	})
}

func (m *MainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case TickMsg:
		m.sess.Refresh()
		m.refreshChart()
		return m, tickCmd(m.refresh)

	case DebounceMsg:
		m.sess.TickDebounce()
		return m, debounceCmd()

	case AnimateMsg:
		return m.handleAnimateMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.infoView.Width = msg.Width
		if h := msg.Height - 5; h > 3 {
			m.infoView.Height = h
		}
		if w := msg.Width/2 - 6; w > 10 {
			m.cpuChart.Resize(w, 8)
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.MouseMsg:
		return m.handleMouseMsg(msg)
	}

	return m, nil
}

func (m *MainModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	if m.sess.HandleKey(key) {
		m.syncSearchInput()
		m.syncInfoView()
		return m, nil
	}

	// Unconsumed keys in search mode feed the text input widget.
	if m.sess.Mode() == session.ModeSearch {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		m.sess.SetQuery(m.input.Value())
		return m, cmd
	}

	// Unconsumed keys in the info pane scroll its viewport.
	if m.sess.Mode() == session.ModeInfoPane {
		var cmd tea.Cmd
		m.infoView, cmd = m.infoView.Update(msg)
		return m, cmd
	}

	if key == "q" {
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

// syncInfoView reloads the viewport content when the info pane is open,
// so section toggles and fresh details show up.
func (m *MainModel) syncInfoView() {
	if m.sess.Mode() != session.ModeInfoPane {
		return
	}
	m.infoView.SetContent(views.RenderInfo(m.sess, m.theme, m.cpuChart.View()))
}

// syncSearchInput keeps the text input widget's focus and content
// aligned with the session after a mode change.
func (m *MainModel) syncSearchInput() {
	if m.sess.Mode() == session.ModeSearch {
		if !m.input.Focused() {
			m.input.SetValue(m.sess.QueryRaw())
			m.input.CursorEnd()
			m.input.Focus()
		}
		return
	}
	if m.input.Focused() {
		m.input.Blur()
	}
	m.input.SetValue(m.sess.QueryRaw())
}

func (m *MainModel) handleAnimateMsg(msg AnimateMsg) (tea.Model, tea.Cmd) {
	var v float64 = m.velocity
	m.animCursor, v = m.spring.Update(m.animCursor, float64(m.sess.Selected()), v)
	m.velocity = v
	return m, animateCmd()
}

func (m *MainModel) handleMouseMsg(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.sess.MoveSelection(-1)
		return m, nil
	case tea.MouseButtonWheelDown:
		m.sess.MoveSelection(1)
		return m, nil
	}
	if msg.Action != tea.MouseActionRelease {
		return m, nil
	}

	for c := session.SortColumn(0); c.String() != "unknown"; c = c + 1 {
		if zone.Get("col_" + c.String()).InBounds(msg) {
			m.sess.SetSortColumn(c)
			return m, nil
		}
	}
	for i := 0; i < m.visibleRowCount(); i++ {
		if zone.Get(fmt.Sprintf("row_%d", i)).InBounds(msg) {
			m.sess.SelectIndex(i)
			return m, nil
		}
	}
	return m, nil
}

func (m *MainModel) visibleRowCount() int {
	switch {
	case m.sess.Mode() == session.ModeTreeView:
		return len(m.sess.TreeRows())
	case m.sess.QueryMode() == search.ModeKilled:
		return len(m.sess.HistoryRows())
	default:
		return len(m.sess.Rows())
	}
}

// refreshChart redraws the CPU history braille line for the info pane.
func (m *MainModel) refreshChart() {
	history := m.sess.CPUHistory()
	m.cpuChart.Clear()
	for i := 0; i < len(history)-1; i++ {
		m.cpuChart.DrawBrailleLine(
			canvas.Float64Point{X: float64(i), Y: history[i]},
			canvas.Float64Point{X: float64(i + 1), Y: history[i+1]},
		)
	}
	m.cpuChart.DrawXYAxisAndLabel()
}

func (m *MainModel) View() string {
	if m.quitting {
		return "Bye!\n"
	}

	theme := m.theme
	bodyHeight := m.height - 5
	if bodyHeight < 3 {
		bodyHeight = 3
	}
	anchor := int(m.animCursor + 0.5)

	var body string
	switch {
	case m.sess.Pending() != nil:
		body = views.RenderShellConfirm(m.sess.Pending(), m.sess.PendingRisk(), theme)
	case m.sess.TreePrompt() != nil:
		body = views.RenderTreePrompt(m.sess.TreePrompt(), theme)
	case m.sess.HelpOpen():
		body = views.RenderHelp(theme)
	case m.sess.HistoryOpen():
		body = views.RenderHistory(m.sess.History(), theme)
	case m.sess.Mode() == session.ModeSignalMenu:
		body = views.RenderSignalMenu(m.sess, theme, bodyHeight)
	case m.sess.Mode() == session.ModeInfoPane:
		body = m.infoView.View()
	case m.sess.Mode() == session.ModeTreeView:
		body = views.RenderTree(m.sess, theme, bodyHeight, anchor)
	case m.sess.QueryMode() == search.ModeKilled:
		body = views.RenderKilledTable(m.sess, theme, bodyHeight)
	default:
		body = views.RenderHeader(m.sess, theme) + "\n" +
			views.RenderTable(m.sess, theme, bodyHeight-1, anchor)
	}

	title := theme.Title.Render("procsweep") + " " + m.spinner.View()
	out := title + "\n" +
		views.RenderSearchLine(m.sess, theme, m.input.View()) + "\n" +
		body + "\n" +
		views.RenderStatusBar(m.sess, theme, m.width)
	return zone.Scan(out)
}

// Run starts the interactive session and blocks until it exits.
func Run(sess *session.Session, opts Options) error {
	m := InitialModel(sess, opts)
	p := tea.NewProgram(
		&m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	_, err := p.Run()
	return err
}
