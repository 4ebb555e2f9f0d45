package cli

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/abramin/wattson/internal/cli/formatter"
	"github.com/abramin/wattson/internal/dialog"
)

// replyMsg carries one dispatched turn's result back into the update loop.
type replyMsg struct {
	reply dialog.Reply
	err   error
}

// chatModel is the full-screen conversation shell: a scrollback viewport,
// a single-line input and a spinner while a turn is in flight.
type chatModel struct {
	app       *App
	sessionID string

	vp    viewport.Model
	input textinput.Model
	spin  spinner.Model

	messages []string
	waiting  bool
	ready    bool
}

func newChatModel(app *App) chatModel {
	ti := textinput.New()
	ti.Focus()
	ti.Prompt = ""
	ti.CharLimit = 500

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = formatter.StylePurple

	m := chatModel{
		app:       app,
		sessionID: app.Sessions.Open("", app.Scope),
		input:     ti,
		spin:      sp,
	}
	m.messages = append(m.messages, formatter.FormatChatWelcome())
	return m
}

// ── bubbletea interface ──────────────────────────────────────────────────────

func (m chatModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit

		case tea.KeyPgUp, tea.KeyPgDown:
			var cmd tea.Cmd
			m.vp, cmd = m.vp.Update(msg)
			return m, cmd

		case tea.KeyEnter:
			if m.waiting {
				return m, nil
			}
			input := strings.TrimSpace(m.input.Value())
			m.input.Reset()
			if input == "" {
				return m, nil
			}
			return m.handleInput(input)
		}

		if m.waiting {
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.vp, cmd = m.vp.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		// Viewport fills everything above the gap, input and footer lines.
		const chromeHeight = 3
		if !m.ready {
			m.vp = viewport.New(msg.Width, msg.Height-chromeHeight)
			m.vp.MouseWheelEnabled = true
			m.ready = true
		} else {
			m.vp.Width = msg.Width
			m.vp.Height = msg.Height - chromeHeight
		}
		m.input.Width = msg.Width - 4
		m.refreshViewport()
		return m, nil

	case spinner.TickMsg:
		if m.waiting {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			return m, cmd
		}
		return m, nil

	case replyMsg:
		m.waiting = false
		if msg.err != nil {
			m.messages = append(m.messages, formatter.FormatTurnError(msg.err))
		} else {
			m.messages = append(m.messages, formatter.FormatReply(msg.reply))
		}
		m.refreshViewport()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m chatModel) View() string {
	if !m.ready {
		return formatter.Dim("…")
	}

	var b strings.Builder
	b.WriteString(m.vp.View())
	b.WriteString("\n\n")
	if m.waiting {
		b.WriteString(m.spin.View() + formatter.Dim(" 思考中…"))
	} else {
		b.WriteString(formatter.StylePurple.Render("wattson") + formatter.Dim("> "))
		b.WriteString(m.input.View())
	}
	b.WriteString("\n")
	b.WriteString(formatter.Dim("enter 发送 · /reset 重新开始 · /quit 退出"))
	return b.String()
}

// ── input handling ───────────────────────────────────────────────────────────

func (m chatModel) handleInput(input string) (tea.Model, tea.Cmd) {
	if isQuitWord(input) {
		return m, tea.Quit
	}
	if input == "/reset" {
		if err := m.app.Sessions.Reset(m.sessionID); err != nil {
			m.messages = append(m.messages, formatter.FormatTurnError(err))
		} else {
			m.messages = append(m.messages, formatter.FormatSessionReset())
		}
		m.refreshViewport()
		return m, nil
	}

	m.messages = append(m.messages, formatter.FormatUserLine(input))
	m.waiting = true
	m.refreshViewport()
	return m, tea.Batch(m.spin.Tick, m.sendTurn(input))
}

// sendTurn runs the dispatcher off the update loop and reports back.
func (m chatModel) sendTurn(input string) tea.Cmd {
	app, id := m.app, m.sessionID
	return func() tea.Msg {
		reply, err := app.Sessions.Handle(context.Background(), id, input)
		return replyMsg{reply: reply, err: err}
	}
}

func (m *chatModel) refreshViewport() {
	if !m.ready {
		return
	}
	content := strings.Join(m.messages, "\n\n")
	m.vp.SetContent(lipgloss.NewStyle().Width(m.vp.Width).Render(content))
	m.vp.GotoBottom()
}
