// Package tui renders a local review conversation in the terminal. It is a
// transport surface only: operator text goes into the review session, the
// session's plain-text messages come back out. The session itself has no
// idea it is talking to a terminal.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/PoorRican/BidBeast/internal/review"
)

var (
	transcriptStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("39")) // bright blue

	operatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")) // green

	statusBarStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236"))
)

// transcript collects the session's outbound messages so Update can append
// them to the viewport after each synchronous session call.
type transcript struct {
	msgs []string
}

func (t *transcript) Send(text string) error {
	t.msgs = append(t.msgs, text)
	return nil
}

func (t *transcript) drain() []string {
	msgs := t.msgs
	t.msgs = nil
	return msgs
}

// Model is the bubbletea model for the review conversation.
type Model struct {
	ctx     context.Context
	session *review.Session
	out     *transcript

	viewport viewport.Model
	input    textarea.Model
	lines    []string
	ready    bool
}

// NewModel builds the conversation model. out must be the same transcript
// the session sends through.
func NewModel(ctx context.Context, session *review.Session, out *transcript) Model {
	input := textarea.New()
	input.Placeholder = "Type a reply (ctrl+s to send)"
	input.SetHeight(3)
	input.ShowLineNumbers = false
	input.Focus()

	return Model{
		ctx:     ctx,
		session: session,
		out:     out,
		input:   input,
	}
}

func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		inputHeight := m.input.Height() + 1 // plus status bar
		if !m.ready {
			m.viewport = viewport.New(msg.Width-2, msg.Height-inputHeight-2)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width - 2
			m.viewport.Height = msg.Height - inputHeight - 2
		}
		m.input.SetWidth(msg.Width - 2)
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			// Abort: the loaded posting is requeued, edits discarded.
			m.session.Exit(m.ctx)
			m.append(m.out.drain()...)
			return m, tea.Quit

		case "ctrl+s":
			return m.submit()
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit hands the typed text to the session and appends whatever the
// session said in response.
func (m Model) submit() (tea.Model, tea.Cmd) {
	text := m.input.Value()
	if strings.TrimSpace(text) == "" && m.session.State() == review.StateIdle {
		return m, nil
	}
	m.input.Reset()

	if strings.TrimSpace(text) == "exit" {
		m.session.Exit(m.ctx)
		m.append(m.out.drain()...)
		return m, tea.Quit
	}

	m.append(operatorStyle.Render("you> " + text))
	m.session.HandleInput(m.ctx, text)
	m.append(m.out.drain()...)

	if m.session.State() == review.StateIdle {
		// Conversation finished (all postings reviewed or aborted).
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) append(msgs ...string) {
	for _, msg := range msgs {
		m.lines = append(m.lines, strings.TrimRight(msg, "\n"))
	}
	m.refresh()
}

func (m *Model) refresh() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(strings.Join(m.lines, "\n\n"))
	m.viewport.GotoBottom()
}

func (m Model) View() string {
	if !m.ready {
		return "loading..."
	}

	status := statusBarStyle.Render(
		fmt.Sprintf("review: %s · %d pending · ctrl+s send · esc abort", m.session.State(), m.session.Pending()),
	)
	return transcriptStyle.Render(m.viewport.View()) + "\n" + status + "\n" + m.input.View()
}

// Run begins the review session and drives the conversation until it
// finishes or the operator aborts. When the queue is already empty the
// session's announcement is printed directly and no TUI is started.
func Run(ctx context.Context, session *review.Session, out *transcript) error {
	session.Begin(ctx)

	model := NewModel(ctx, session, out)
	if session.State() == review.StateIdle {
		for _, msg := range out.drain() {
			fmt.Println(msg)
		}
		return nil
	}
	model.append(out.drain()...)

	_, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
	return err
}

// NewTranscript returns the messenger handed to the session driving this
// surface.
func NewTranscript() *transcript {
	return &transcript{}
}
