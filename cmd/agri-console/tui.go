package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"agriassist/client/advice"
	"agriassist/client/search"
	"agriassist/client/transcript"
	"agriassist/locale"
	"agriassist/models"
	"agriassist/suggestions"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// TUI message types
type sessionChangedMsg struct{}
type transcriptChangedMsg struct{}
type committedMsg struct{ Text string }
type adviceMsg struct {
	Outcome *advice.Outcome
	Err     error
}
type captureErrMsg struct{ Err error }

type focusField int

const (
	focusQuestion focusField = iota
	focusLocation
)

var languages = []models.Language{models.LanguageEnglish, models.LanguageJapanese, models.LanguageHindi}

var (
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	activeBox    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("42")).Padding(0, 1)
	inactiveBox  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("239")).Padding(0, 1)
	hintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	cursorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	errStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	tipStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	tipHeadStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4")).Bold(true)
	recStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

type consoleModel struct {
	ctx     context.Context
	cfg     consoleConfig
	machine *transcript.Machine
	capture *transcript.Capture
	coord   *search.Coordinator
	orch    *advice.Orchestrator

	focus      focusField
	query      string
	cursor     int
	session    search.Session
	generating bool
	warning    string
	errText    string
	tips       []string
	weather    string
	lastCommit string

	width, height int
}

func newConsoleModel(ctx context.Context, cfg consoleConfig, machine *transcript.Machine, capture *transcript.Capture, coord *search.Coordinator, orch *advice.Orchestrator) consoleModel {
	machine.Focus()
	return consoleModel{
		ctx:     ctx,
		cfg:     cfg,
		machine: machine,
		capture: capture,
		coord:   coord,
		orch:    orch,
		weather: models.WeatherUnavailable,
	}
}

func (m consoleModel) Init() tea.Cmd {
	return nil
}

func (m consoleModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		return m.handleKey(msg)

	case sessionChangedMsg:
		m.session = m.coord.Session()
		if m.cursor >= len(m.session.Results) {
			m.cursor = 0
		}

	case transcriptChangedMsg:
		// re-render only

	case committedMsg:
		m.lastCommit = msg.Text

	case captureErrMsg:
		m.errText = msg.Err.Error()

	case adviceMsg:
		m.generating = false
		m.applyAdvice(msg)
	}
	return m, nil
}

func (m *consoleModel) applyAdvice(msg adviceMsg) {
	var rejected *advice.RejectionError
	var failed *advice.GenerationError
	switch {
	case errors.As(msg.Err, &rejected):
		m.errText = rejected.Message
	case errors.As(msg.Err, &failed):
		m.errText = failed.Message
	case msg.Err != nil:
		m.errText = msg.Err.Error()
	default:
		m.errText = ""
		m.warning = msg.Outcome.Warning
		m.tips = m.orch.Suggestions()
		m.weather = m.orch.Weather().Summary()
	}
}

func (m consoleModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		if m.capture != nil {
			_ = m.capture.Stop()
		}
		return m, tea.Quit

	case "tab":
		if m.focus == focusQuestion {
			m.focus = focusLocation
			m.machine.Blur()
			m.coord.Focus()
		} else {
			m.focus = focusQuestion
			m.coord.Dismiss()
			m.machine.Focus()
		}
		m.session = m.coord.Session()

	case "up":
		if m.focus == focusLocation && m.cursor > 0 {
			m.cursor--
		}

	case "down":
		if m.focus == focusLocation && m.cursor < len(m.session.Results)-1 {
			m.cursor++
		}

	case "enter":
		if m.focus == focusQuestion {
			return m.generate()
		}
		if m.session.Visible && m.cursor < len(m.session.Results) {
			m.coord.Select(m.session.Results[m.cursor])
			m.session = m.coord.Session()
			m.query = m.session.Query
			m.cursor = 0
			m.errText = ""
			return m, nil
		}
		query := m.query
		coord := m.coord
		return m, func() tea.Msg {
			coord.SearchNow(query)
			return sessionChangedMsg{}
		}

	case "esc":
		if m.focus == focusLocation {
			m.coord.Dismiss()
			m.session = m.coord.Session()
		}

	case "ctrl+l":
		lang := nextLanguage(m.orch.Language())
		m.orch.SetLanguage(lang)
		coord := m.coord
		return m, func() tea.Msg {
			coord.SetLanguage(lang)
			return sessionChangedMsg{}
		}

	case "ctrl+k":
		m.machine.SetLock(!m.machine.Snapshot().LockEnabled)

	case "ctrl+g":
		if m.cfg.HasDevice {
			m.coord.UseLocation(models.DeviceSelection(m.cfg.DeviceLat, m.cfg.DeviceLon))
			m.session = m.coord.Session()
		}

	case "ctrl+r":
		return m.toggleCapture()

	case "ctrl+x":
		m.orch.Clear()
		m.machine.Reset()
		m.tips = nil
		m.warning = ""
		m.errText = ""
		m.weather = models.WeatherUnavailable

	case "backspace":
		m.editFocused(func(s string) string {
			r := []rune(s)
			if len(r) == 0 {
				return s
			}
			return string(r[:len(r)-1])
		})

	default:
		if msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace {
			typed := string(msg.Runes)
			if msg.Type == tea.KeySpace {
				typed = " "
			}
			m.editFocused(func(s string) string { return s + typed })
		}
	}
	return m, nil
}

func (m *consoleModel) editFocused(edit func(string) string) {
	if m.focus == focusQuestion {
		m.machine.Edit(edit(m.machine.Text()))
		return
	}
	m.query = edit(m.query)
	m.coord.OnQueryChange(m.query)
}

func (m consoleModel) toggleCapture() (tea.Model, tea.Cmd) {
	if m.capture == nil {
		m.errText = "no recording configured (set AUDIO_FILE)"
		return m, nil
	}
	if m.machine.Snapshot().Capturing {
		if err := m.capture.Stop(); err != nil {
			m.errText = err.Error()
		}
		return m, nil
	}
	capture, ctx, lang := m.capture, m.ctx, m.orch.Language()
	return m, func() tea.Msg {
		if err := capture.Start(ctx, lang); err != nil {
			return captureErrMsg{Err: err}
		}
		return transcriptChangedMsg{}
	}
}

func (m consoleModel) generate() (tea.Model, tea.Cmd) {
	if m.generating {
		return m, nil
	}
	m.generating = true
	m.errText = ""
	orch, ctx := m.orch, m.ctx
	text, loc := m.machine.Text(), m.coord.Selection()
	return m, func() tea.Msg {
		out, err := orch.Generate(ctx, text, loc)
		return adviceMsg{Outcome: out, Err: err}
	}
}

func nextLanguage(current models.Language) models.Language {
	for i, lang := range languages {
		if lang == current {
			return languages[(i+1)%len(languages)]
		}
	}
	return models.LanguageEnglish
}

func (m consoleModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}
	boxWidth := m.width - 4
	if boxWidth < 20 {
		boxWidth = 20
	}
	lang := m.orch.Language()
	snap := m.machine.Snapshot()

	var b strings.Builder
	b.WriteString(titleStyle.Render("agriassist"))
	b.WriteString(labelStyle.Render(fmt.Sprintf("  [%s | %s | lock %s]", lang, snap.State, onOff(snap.LockEnabled))))
	if snap.Capturing {
		b.WriteString("  " + recStyle.Render("● REC"))
	}
	b.WriteString("\n\n")

	question := snap.Text
	if question == "" {
		question = hintStyle.Render(locale.Text(lang, locale.MsgSpeakFirst))
	}
	b.WriteString(labelStyle.Render("Question") + "\n")
	b.WriteString(boxFor(m.focus == focusQuestion).Width(boxWidth).Render(question) + "\n")
	if m.lastCommit != "" {
		b.WriteString(hintStyle.Render("heard: "+m.lastCommit) + "\n")
	}

	query := m.query
	if query == "" {
		query = hintStyle.Render(locale.Text(lang, locale.MsgSearchHint))
	}
	b.WriteString(labelStyle.Render("Location") + "\n")
	b.WriteString(boxFor(m.focus == focusLocation).Width(boxWidth).Render(query) + "\n")
	if m.session.Pending {
		b.WriteString(hintStyle.Render("  searching...") + "\n")
	}
	if m.session.Visible {
		for i, r := range m.session.Results {
			line := "  " + r.DisplayName()
			if i == m.cursor {
				line = cursorStyle.Render("> " + r.DisplayName())
			}
			b.WriteString(line + "\n")
		}
	}
	sel := m.coord.Selection()
	if sel.HasCoordinates {
		b.WriteString(labelStyle.Render("Selected: ") + sel.Label() + "\n")
	}
	b.WriteString(labelStyle.Render("Weather: ") + m.weather + "\n\n")

	if m.generating {
		b.WriteString(hintStyle.Render("Generating...") + "\n")
	}
	if m.errText != "" {
		b.WriteString(errStyle.Render(m.errText) + "\n")
	}
	if m.warning != "" {
		b.WriteString(warnStyle.Render("⚠ "+m.warning) + "\n")
	}
	for _, tip := range m.tips {
		head := suggestions.Title(tip)
		rest := strings.TrimSpace(strings.TrimPrefix(tip, head))
		b.WriteString(tipHeadStyle.Render("• " + head))
		if rest != "" {
			b.WriteString(tipStyle.Render(rest))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n" + hintStyle.Render("tab switch field · enter search/select/generate · ctrl+r record · ctrl+l language · ctrl+k lock · ctrl+g my location · ctrl+x clear · ctrl+c quit"))
	return b.String()
}

func boxFor(active bool) lipgloss.Style {
	if active {
		return activeBox
	}
	return inactiveBox
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
