package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type ingestMode int

const (
	modeDirectory ingestMode = iota
	modeUpload
	modeChat
)

var modes = []struct {
	label string
	hint  string
}{
	{"Ingest Directory", "Index a directory on the server's file system"},
	{"Upload Zip", "Upload a .zip archive of a codebase"},
	{"Ask Questions", "Skip ingestion and use the existing index"},
}

type setupModel struct {
	cursor   int
	choosing bool
	mode     ingestMode
	input    textinput.Model
	path     string
	err      string
	done     bool
}

func newSetupModel() setupModel {
	ti := textinput.New()
	ti.CharLimit = 4096
	return setupModel{choosing: true, input: ti}
}

func (m setupModel) Update(msg tea.Msg) (setupModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		if m.choosing {
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	if m.choosing {
		switch keyMsg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(modes)-1 {
				m.cursor++
			}
		case "enter":
			m.mode = ingestMode(m.cursor)
			if m.mode == modeChat {
				m.done = true
				return m, nil
			}
			m.choosing = false
			m.err = ""
			m.input.Reset()
			if m.mode == modeDirectory {
				m.input.Placeholder = "/path/to/project"
				if wd, err := os.Getwd(); err == nil {
					m.input.SetValue(wd)
				}
			} else {
				m.input.Placeholder = "/path/to/project.zip"
			}
			return m, m.input.Focus()
		}
		return m, nil
	}

	switch keyMsg.Type {
	case tea.KeyEsc:
		m.choosing = true
		m.input.Blur()
		return m, nil
	case tea.KeyEnter:
		path, err := validatePath(m.mode, m.input.Value())
		if err != nil {
			m.err = err.Error()
			return m, nil
		}
		m.path = path
		m.done = true
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// validatePath checks the entered path for the chosen mode. Directories are
// sent as absolute paths; the server may share this file system.
func validatePath(mode ingestMode, raw string) (string, error) {
	path := strings.TrimSpace(raw)
	if path == "" {
		return "", fmt.Errorf("enter a path")
	}
	if mode == modeDirectory {
		return filepath.Abs(path)
	}
	if !strings.EqualFold(filepath.Ext(path), ".zip") {
		return "", fmt.Errorf("only .zip archives can be uploaded")
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("cannot read %s", path)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s is a directory", path)
	}
	return path, nil
}

func (m setupModel) View(width, height int) string {
	s := "\n"

	if m.choosing {
		s += titleStyle.Render("  What would you like to do?") + "\n\n"
		for i, mode := range modes {
			cursor := "  "
			style := listItemStyle
			if i == m.cursor {
				cursor = "▸ "
				style = selectedStyle
			}
			s += fmt.Sprintf("  %s%s\n", cursor, style.Render(mode.label))
			s += dimStyle.Render("      "+mode.hint) + "\n"
		}
		s += "\n"
		s += helpStyle.Render("  ↑/↓ navigate • Enter select • q quit") + "\n"
		return s
	}

	s += titleStyle.Render("  "+modes[m.mode].label) + "\n"
	s += dimStyle.Render("  "+modes[m.mode].hint) + "\n\n"
	s += "  " + m.input.View() + "\n"
	if m.err != "" {
		s += "\n" + errorStyle.Render("  "+m.err) + "\n"
	}
	s += "\n"
	s += helpStyle.Render("  Enter start • Esc back") + "\n"
	return s
}
