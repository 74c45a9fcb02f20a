package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// ViewState represents which screen is active.
type ViewState int

const (
	ViewWelcome ViewState = iota
	ViewSetup
	ViewIndexing
	ViewChat
)

// Config holds configuration passed from the CLI layer.
type Config struct {
	// ServerURL is the base URL of the codedoc HTTP API.
	ServerURL string
}

// Model is the top-level Bubble Tea model.
type Model struct {
	state  ViewState
	config Config
	client *Client
	width  int
	height int

	welcome  welcomeModel
	setup    setupModel
	indexing indexingModel
	chat     chatModel
}

// New creates a new TUI model with the given config.
func New(cfg Config) Model {
	return Model{
		state:   ViewWelcome,
		config:  cfg,
		client:  NewClient(cfg.ServerURL),
		welcome: welcomeModel{serverURL: cfg.ServerURL},
	}
}

func (m Model) Init() tea.Cmd {
	return checkServer(m.client)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.state == ViewChat {
			var c tea.Cmd
			m.chat, c = m.chat.Update(msg)
			return m, c
		}
		return m, nil

	case openSetupMsg:
		m.state = ViewSetup
		m.setup = newSetupModel()
		return m, nil

	case tea.KeyMsg:
		// Global quit.
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "q":
			if m.state == ViewWelcome || m.state == ViewIndexing || (m.state == ViewSetup && m.setup.choosing) {
				return m, tea.Quit
			}
		}
	}

	var cmd tea.Cmd

	switch m.state {
	case ViewWelcome:
		m.welcome = m.welcome.Update(msg)
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEnter && m.welcome.ready {
			if m.welcome.err != nil {
				m.welcome.ready = false
				return m, checkServer(m.client)
			}
			m.state = ViewSetup
			m.setup = newSetupModel()
		}

	case ViewSetup:
		m.setup, cmd = m.setup.Update(msg)
		if m.setup.done {
			if m.setup.mode == modeChat {
				return m, m.transitionToChat()
			}
			m.state = ViewIndexing
			m.indexing = newIndexingModel(m.setup.mode, m.setup.path)
			return m, tea.Batch(m.indexing.spinner.Tick, runIngest(m.client, m.setup.mode, m.setup.path))
		}
		return m, cmd

	case ViewIndexing:
		m.indexing, cmd = m.indexing.Update(msg)
		if cmd != nil {
			return m, cmd
		}
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEnter && m.indexing.done {
			if m.indexing.err != nil {
				m.state = ViewSetup
				m.setup = newSetupModel()
				return m, nil
			}
			return m, m.transitionToChat()
		}

	case ViewChat:
		m.chat, cmd = m.chat.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *Model) transitionToChat() tea.Cmd {
	if !m.chat.initialized {
		m.chat = newChatModel(m.client)
	}
	m.chat.initViewport(m.width, m.height)
	m.chat.refresh()
	m.state = ViewChat
	return m.chat.input.Focus()
}

func (m Model) View() string {
	switch m.state {
	case ViewWelcome:
		return m.welcome.View(m.width, m.height)
	case ViewSetup:
		return m.setup.View(m.width, m.height)
	case ViewIndexing:
		return m.indexing.View(m.width, m.height)
	case ViewChat:
		return m.chat.View(m.width, m.height)
	}
	return ""
}

// Run starts the TUI program.
func Run(cfg Config) error {
	p := tea.NewProgram(New(cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
