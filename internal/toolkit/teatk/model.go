package teatk

import (
	"strings"

	"installsplash/internal/toolkit"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/mattn/go-runewidth"
)

// Palette, as hex so the fade can blend it.
const (
	colorAccent    = "#5fd7af"
	colorHighlight = "#ff5faf"
	colorMuted     = "#626262"
	colorText      = "#d0d0d0"
)

var icons = map[string]string{
	toolkit.IconApp: "◆",
}

// model is the Bubble Tea model behind a Surface. It is only touched on the
// surface goroutine.
type model struct {
	s *Surface

	caption       string
	status        string
	icon          string
	visible       map[toolkit.Control]bool
	sysButtons    bool
	indeterminate bool
	centered      bool
	shown         bool
	alpha         uint8

	background string
	boxWidth   int
	width      int
	height     int

	spinner spinner.Model
}

var _ tea.Model = (*model)(nil)

func newModel(s *Surface, title string, opts Options) *model {
	return &model{
		s:       s,
		caption: title,
		visible: map[toolkit.Control]bool{
			toolkit.ControlImage:    true,
			toolkit.ControlProgress: true,
		},
		sysButtons: true,
		alpha:      toolkit.AlphaValue(100),
		background: opts.Background,
		boxWidth:   opts.Width,
		spinner:    spinner.New(spinner.WithSpinner(spinner.MiniDot)),
	}
}

// Init implements tea.Model.
func (m *model) Init() tea.Cmd {
	if m.indeterminate {
		return m.spinner.Tick
	}
	return nil
}

// Update implements tea.Model.
func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case spinner.TickMsg:
		if !m.indeterminate || !m.s.Alive() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case timerMsg:
		if m.s.Alive() && m.s.current(msg.t) {
			m.s.h.OnTimer(msg.t.id)
		}

	case closeMsg:
		if m.s.Alive() {
			m.s.h.OnCloseRequest()
		}

	case quitMsg:
		return m, tea.Quit
	}
	return m, nil
}

// View implements tea.Model.
func (m *model) View() string {
	if !m.shown {
		return ""
	}
	box := m.render()
	if m.centered && m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
	}
	return box
}

func (m *model) render() string {
	inner := m.boxWidth - 4
	if inner < 8 {
		inner = 8
	}

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(m.color(colorAccent))
	muted := lipgloss.NewStyle().Foreground(m.color(colorMuted))
	text := lipgloss.NewStyle().Foreground(m.color(colorText))

	var b strings.Builder

	title := m.caption
	if m.icon != "" {
		title = m.icon + " " + title
	}
	buttons := ""
	if m.sysButtons {
		buttons = " _ □ ×"
	}
	title = runewidth.Truncate(title, inner-runewidth.StringWidth(buttons), "…")
	pad := inner - runewidth.StringWidth(title) - runewidth.StringWidth(buttons)
	if pad < 0 {
		pad = 0
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString(strings.Repeat(" ", pad))
	b.WriteString(muted.Render(buttons))

	if m.visible[toolkit.ControlImage] {
		b.WriteString("\n\n")
		b.WriteString(muted.Render("[ " + m.icon + " ]"))
	}
	if m.visible[toolkit.ControlStatusText] && m.status != "" {
		b.WriteString("\n\n")
		b.WriteString(text.Render(runewidth.Truncate(m.status, inner, "…")))
	}
	if m.visible[toolkit.ControlProgress] && m.indeterminate {
		b.WriteString("\n\n")
		m.spinner.Style = lipgloss.NewStyle().Foreground(m.color(colorHighlight))
		b.WriteString(m.spinner.View())
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.color(colorHighlight)).
		Padding(0, 1).
		Width(inner + 2).
		Render(b.String())
}

// color blends hex toward the background by the current alpha.
func (m *model) color(hex string) lipgloss.Color {
	fg, err := colorful.Hex(hex)
	if err != nil {
		return lipgloss.Color(hex)
	}
	bg, err := colorful.Hex(m.background)
	if err != nil {
		return lipgloss.Color(hex)
	}
	return lipgloss.Color(bg.BlendRgb(fg, float64(m.alpha)/255).Clamped().Hex())
}
