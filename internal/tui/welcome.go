package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

type welcomeModel struct {
	serverURL string
	message   string
	err       error
	ready     bool // true once the check has completed
}

// healthMsg is sent after checking the server.
type healthMsg struct {
	message string
	err     error
}

func checkServer(c *Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		message, err := c.Health(ctx)
		return healthMsg{message: message, err: err}
	}
}

func (m welcomeModel) Update(msg tea.Msg) welcomeModel {
	if msg, ok := msg.(healthMsg); ok {
		m.message = msg.message
		m.err = msg.err
		m.ready = true
	}
	return m
}

func (m welcomeModel) View(width, height int) string {
	s := "\n"
	s += titleStyle.Render("  ◆ codedoc") + "\n"
	s += subtitleStyle.Render("  Ask questions about your codebase") + "\n\n"

	if !m.ready {
		s += dimStyle.Render("  Connecting to "+m.serverURL+"...") + "\n"
		return s
	}

	if m.err != nil {
		s += errorStyle.Render("  ✗ Server unreachable") + "\n"
		s += dimStyle.Render("    "+m.err.Error()) + "\n"
		s += dimStyle.Render("    Start one with 'codedoc serve'.") + "\n\n"
		s += dimStyle.Render("  Press Enter to retry, q to quit") + "\n"
		return s
	}

	s += successStyle.Render("  ✓ Connected to "+m.serverURL) + "\n"
	if m.message != "" {
		s += dimStyle.Render("    "+m.message) + "\n"
	}
	s += "\n"
	s += dimStyle.Render("  Press Enter to continue") + "\n"
	return s
}
