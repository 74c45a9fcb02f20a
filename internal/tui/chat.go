package tui

import (
	"context"
	"fmt"
	"strings"

	"codedoc/internal/chunker"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

type chatState int

const (
	chatIdle chatState = iota
	chatAsking
)

const chatHelp = "Commands:\n  /context - show or hide the context of each answer (ctrl+o)\n  /ingest  - ingest another codebase\n  /clear   - clear the conversation\n  /exit    - quit\n  /help    - show this help"

type chatModel struct {
	viewport    viewport.Model
	input       textinput.Model
	spinner     spinner.Model
	renderer    *glamour.TermRenderer
	messages    []chatMessage
	client      *Client
	state       chatState
	showContext bool
	width       int
	height      int
	initialized bool
}

type chatMessage struct {
	role    string
	content string
	context []chunker.Chunk
}

// answerMsg is sent when a question has been answered.
type answerMsg struct {
	resp *AskResponse
	err  error
}

// openSetupMsg returns to the ingestion screen.
type openSetupMsg struct{}

func newChatModel(c *Client) chatModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = selectedStyle

	ti := textinput.New()
	ti.Placeholder = "Ask a question about your codebase..."
	ti.CharLimit = 2000
	ti.Focus()

	return chatModel{
		spinner: sp,
		input:   ti,
		client:  c,
		state:   chatIdle,
	}
}

func (m *chatModel) initViewport(width, height int) {
	m.width = width
	m.height = height

	// Layout: viewport + status bar (1 line) + input (1 line) + gap (1 line).
	vpHeight := height - 3
	if vpHeight < 5 {
		vpHeight = 5
	}
	m.viewport = viewport.New(width, vpHeight)
	m.input.Width = width - 4

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(max(width-2, 20)),
	)
	if err == nil {
		m.renderer = r
	}

	m.initialized = true
}

// refresh re-renders the conversation and scrolls to the end.
func (m *chatModel) refresh() {
	if len(m.messages) == 0 && m.state == chatIdle {
		m.viewport.SetContent(dimStyle.Render("Ask a question about your codebase.\n\n" + chatHelp))
		return
	}
	m.viewport.SetContent(m.renderMessages())
	m.viewport.GotoBottom()
}

func askQuestion(c *Client, question string) tea.Cmd {
	return func() tea.Msg {
		resp, err := c.Ask(context.Background(), question)
		return answerMsg{resp: resp, err: err}
	}
}

func (m chatModel) Update(msg tea.Msg) (chatModel, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.initViewport(msg.Width, msg.Height)
		m.refresh()
		return m, nil

	case answerMsg:
		m.state = chatIdle
		if msg.err != nil {
			m.messages = append(m.messages, chatMessage{role: "error", content: msg.err.Error()})
		} else {
			m.messages = append(m.messages, chatMessage{
				role:    "assistant",
				content: msg.resp.Answer,
				context: msg.resp.Context,
			})
		}
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		if m.state != chatIdle {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			m.refresh()
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)

	case tea.KeyMsg:
		if msg.String() == "ctrl+o" {
			m.showContext = !m.showContext
			m.refresh()
			return m, nil
		}
		if m.state != chatIdle {
			return m, nil
		}
		if msg.Type == tea.KeyEnter {
			question := strings.TrimSpace(m.input.Value())
			if question == "" {
				return m, nil
			}
			m.input.Reset()

			switch question {
			case "/exit", "/quit":
				return m, tea.Quit
			case "/clear":
				m.messages = nil
				m.refresh()
				return m, nil
			case "/context":
				m.showContext = !m.showContext
				m.refresh()
				return m, nil
			case "/ingest":
				return m, func() tea.Msg { return openSetupMsg{} }
			case "/help":
				m.messages = append(m.messages, chatMessage{role: "system", content: chatHelp})
				m.refresh()
				return m, nil
			}

			m.messages = append(m.messages, chatMessage{role: "user", content: question})
			m.state = chatAsking
			m.refresh()

			return m, tea.Batch(m.spinner.Tick, askQuestion(m.client, question))
		}
	}

	if m.state == chatIdle {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m chatModel) renderMarkdown(content string) string {
	if m.renderer == nil {
		return assistantMsgStyle.Render(content)
	}
	rendered, err := m.renderer.Render(content)
	if err != nil {
		return assistantMsgStyle.Render(content)
	}
	return strings.TrimRight(rendered, "\n")
}

// renderContext lists the chunks an answer was based on, or a one-line
// summary when the listing is collapsed.
func (m chatModel) renderContext(chunks []chunker.Chunk) string {
	if len(chunks) == 0 {
		return ""
	}
	if !m.showContext {
		return dimStyle.Render(fmt.Sprintf("▸ %d context chunks (ctrl+o to expand)", len(chunks))) + "\n"
	}
	var sb strings.Builder
	sb.WriteString(dimStyle.Render(fmt.Sprintf("▾ %d context chunks", len(chunks))) + "\n")
	for _, c := range chunks {
		label := fmt.Sprintf("%s (chunk %d)", c.FilePath, c.ChunkIndex)
		if c.Name != "" {
			label += fmt.Sprintf(" %s %s", c.ChunkType, c.Name)
		}
		if c.StartLine > 0 {
			label += fmt.Sprintf(" L%d-%d", c.StartLine, c.EndLine)
		}
		sb.WriteString(contextStyle.Render("  "+label) + "\n")
	}
	return sb.String()
}

func (m chatModel) renderMessages() string {
	var sb strings.Builder
	for _, msg := range m.messages {
		switch msg.role {
		case "user":
			sb.WriteString(userMsgStyle.Render("You: ") + msg.content + "\n\n")
		case "assistant":
			sb.WriteString(m.renderMarkdown(msg.content) + "\n")
			sb.WriteString(m.renderContext(msg.context) + "\n")
		case "error":
			sb.WriteString(errorStyle.Render("Error: "+msg.content) + "\n\n")
		case "system":
			sb.WriteString(dimStyle.Render(msg.content) + "\n\n")
		}
	}

	if m.state == chatAsking {
		sb.WriteString(m.spinner.View() + " " + dimStyle.Render("Thinking...") + "\n")
	}

	return sb.String()
}

func (m chatModel) View(width, height int) string {
	if !m.initialized {
		return ""
	}

	statusText := "idle"
	if m.state == chatAsking {
		statusText = "thinking..."
	}
	statusBar := statusBarStyle.
		Width(m.width).
		Render(fmt.Sprintf(" codedoc • %s • ctrl+o context", statusText))

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewport.View(),
		statusBar,
		m.input.View(),
	)
}
