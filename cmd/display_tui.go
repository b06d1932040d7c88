// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/Thermoquad/heliograph/pkg/display"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// pointCountStep is how much + and - change the series capacity
const pointCountStep = 5

// Messages
type displayUpdateMsg struct{}
type displayTickMsg time.Time
type connectionLostMsg struct {
	err error
}
type reconnectedMsg struct {
	connInfo string
}
type receiverDoneMsg struct {
	err error
}

// displayKeyMap lists the display key bindings
type displayKeyMap struct {
	SwitchTab  key.Binding
	Clear      key.Binding
	ClearPlots key.Binding
	MorePoints key.Binding
	FewerPoint key.Binding
	Console    key.Binding
	Help       key.Binding
	Quit       key.Binding
}

func (k displayKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.SwitchTab, k.Console, k.Help, k.Quit}
}

func (k displayKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.SwitchTab, k.Clear, k.ClearPlots},
		{k.MorePoints, k.FewerPoint},
		{k.Console, k.Help, k.Quit},
	}
}

var displayKeys = displayKeyMap{
	SwitchTab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "switch tab"),
	),
	Clear: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "clear tab"),
	),
	ClearPlots: key.NewBinding(
		key.WithKeys("C"),
		key.WithHelp("C", "clear plots"),
	),
	MorePoints: key.NewBinding(
		key.WithKeys("+", "="),
		key.WithHelp("+", "more points"),
	),
	FewerPoint: key.NewBinding(
		key.WithKeys("-"),
		key.WithHelp("-", "fewer points"),
	),
	Console: key.NewBinding(
		key.WithKeys(":"),
		key.WithHelp(":", "console"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// TUI model
type displayModel struct {
	disp      *display.Display
	connInfo  string
	connected bool
	lastError string
	width     int
	height    int
	quitting  bool

	console       textinput.Model
	consoleActive bool
	help          help.Model
	keys          displayKeyMap
}

func initialDisplayModel(d *display.Display, connInfo string) displayModel {
	console := textinput.New()
	console.Prompt = ": "
	console.Placeholder = `cpu::42, +++CP, hello (\n separates lines)`
	console.CharLimit = 1024

	return displayModel{
		disp:      d,
		connInfo:  connInfo,
		connected: true,
		console:   console,
		help:      help.New(),
		keys:      displayKeys,
	}
}

func (m displayModel) Init() tea.Cmd {
	return displayTickCmd()
}

func displayTickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return displayTickMsg(t)
	})
}

func (m displayModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.consoleActive {
			return m.handleConsoleKey(msg)
		}
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.console.Width = msg.Width - 4
		m.resizeContent()
		return m, nil

	case displayUpdateMsg:
		// the view is re-rendered after every message
		return m, nil

	case displayTickMsg:
		return m, displayTickCmd()

	case connectionLostMsg:
		m.connected = false
		m.lastError = msg.err.Error()
		return m, nil

	case reconnectedMsg:
		m.connected = true
		m.connInfo = msg.connInfo
		m.lastError = ""
		return m, nil

	case receiverDoneMsg:
		m.connected = false
		if msg.err != nil {
			m.lastError = msg.err.Error()
		} else {
			m.lastError = "receiver stopped"
		}
		return m, nil
	}

	return m, nil
}

func (m displayModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.SwitchTab):
		m.disp.SwitchTab()

	case key.Matches(msg, m.keys.Clear):
		m.disp.ClearActive()

	case key.Matches(msg, m.keys.ClearPlots):
		m.disp.ClearPlots()

	case key.Matches(msg, m.keys.MorePoints):
		m.disp.SetChartMaxPointCount(m.disp.ChartMaxPointCount() + pointCountStep)

	case key.Matches(msg, m.keys.FewerPoint):
		m.disp.SetChartMaxPointCount(m.disp.ChartMaxPointCount() - pointCountStep)

	case key.Matches(msg, m.keys.Console):
		m.consoleActive = true
		m.console.SetValue("")
		m.resizeContent()
		cmd := m.console.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.resizeContent()
	}
	return m, nil
}

func (m displayModel) handleConsoleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.closeConsole()
		return m, nil

	case tea.KeyEnter:
		if payload := consolePayload(m.console.Value()); payload != "" {
			m.disp.PushData(payload)
		}
		m.closeConsole()
		return m, nil
	}

	var cmd tea.Cmd
	m.console, cmd = m.console.Update(msg)
	return m, cmd
}

func (m *displayModel) closeConsole() {
	m.consoleActive = false
	m.console.Blur()
	m.resizeContent()
}

// consolePayload turns a typed console line into a payload; a literal \n
// separates lines
func consolePayload(input string) string {
	return strings.ReplaceAll(strings.TrimSpace(input), `\n`, "\n")
}

var (
	displayTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("12")).
				Background(lipgloss.Color("235")).
				Padding(0, 1)
	displayHeaderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("241"))
	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("12")).
			Padding(0, 1)
	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("250")).
				Background(lipgloss.Color("237")).
				Padding(0, 1)
	displayBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240"))
	displayLabelStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("12")).
				Bold(true)
	displayValueStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("10"))
	displayErrorStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("9")).
				Bold(true)
)

// chromeHeight is the number of rows around the tab content: title, tab
// bar, box border, status line and help or console
func (m displayModel) chromeHeight() int {
	rows := 1 + 1 + 2 + 1 + 1
	if m.help.ShowAll {
		rows += len(m.keys.FullHelp()[0]) - 1
	}
	return rows
}

func (m *displayModel) resizeContent() {
	if m.width == 0 || m.height == 0 {
		return
	}
	w := m.width - 2
	h := m.height - m.chromeHeight()
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	m.disp.Resize(w, h)
}

func (m displayModel) View() string {
	if m.quitting {
		return ""
	}

	var s strings.Builder

	// Title
	title := displayTitleStyle.Render("Heliograph")
	conn := displayHeaderStyle.Render(" " + m.connInfo)
	if !m.connected {
		conn = displayErrorStyle.Render(" DISCONNECTED")
		if m.lastError != "" {
			conn += displayHeaderStyle.Render(" (" + m.lastError + ")")
		}
	}
	s.WriteString(title + conn + "\n")

	// Tab bar
	active := m.disp.ActiveTab()
	var tabs []string
	for _, t := range display.Tabs() {
		if t == active {
			tabs = append(tabs, activeTabStyle.Render(t.String()))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(t.String()))
		}
	}
	s.WriteString(strings.Join(tabs, " ") + "\n")

	// Content
	box := displayBoxStyle
	if m.width > 2 {
		box = box.Width(m.width - 2)
	}
	if m.height > m.chromeHeight() {
		box = box.Height(m.height - m.chromeHeight())
	}
	s.WriteString(box.Render(m.disp.View()) + "\n")

	// Status
	s.WriteString(m.renderStatus() + "\n")

	// Console or help
	if m.consoleActive {
		s.WriteString(m.console.View())
	} else {
		s.WriteString(m.help.View(m.keys))
	}

	return s.String()
}

func (m displayModel) renderStatus() string {
	snap := m.disp.Snapshot()

	parts := []string{
		displayLabelStyle.Render("Series: ") + displayValueStyle.Render(fmt.Sprintf("%d", len(snap.Series))),
		displayLabelStyle.Render("Points: ") + displayValueStyle.Render(fmt.Sprintf("%d", snap.MaxPointCount)),
		displayLabelStyle.Render("Logs: ") + displayValueStyle.Render(fmt.Sprintf("%d", len(snap.Logs))),
		displayLabelStyle.Render("Queued: ") + displayValueStyle.Render(fmt.Sprintf("%d", snap.Queued)),
	}
	if snap.Dropped > 0 {
		parts = append(parts, displayErrorStyle.Render(fmt.Sprintf("Dropped: %d", snap.Dropped)))
	}
	if snap.Stats != nil {
		snap.Stats.CalculateRates()
		parts = append(parts,
			displayLabelStyle.Render("Rate: ")+displayValueStyle.Render(fmt.Sprintf("%.1f lines/s", snap.Stats.LineRate)))
		if snap.Stats.Fallbacks > 0 {
			parts = append(parts,
				displayLabelStyle.Render("Fallbacks: ")+displayValueStyle.Render(fmt.Sprintf("%d", snap.Stats.Fallbacks)))
		}
	}
	return strings.Join(parts, "  ")
}
