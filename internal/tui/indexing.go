package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

type indexingModel struct {
	spinner spinner.Model
	mode    ingestMode
	path    string
	done    bool
	resp    *IngestResponse
	err     error
}

func newIndexingModel(mode ingestMode, path string) indexingModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = selectedStyle
	return indexingModel{spinner: sp, mode: mode, path: path}
}

// ingestDoneMsg is sent when the server finishes ingesting.
type ingestDoneMsg struct {
	resp *IngestResponse
	err  error
}

func runIngest(c *Client, mode ingestMode, path string) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		var (
			resp *IngestResponse
			err  error
		)
		if mode == modeUpload {
			resp, err = c.Upload(ctx, path)
		} else {
			resp, err = c.Ingest(ctx, path)
		}
		return ingestDoneMsg{resp: resp, err: err}
	}
}

func (m indexingModel) Update(msg tea.Msg) (indexingModel, tea.Cmd) {
	switch msg := msg.(type) {
	case ingestDoneMsg:
		m.done = true
		m.resp = msg.resp
		m.err = msg.err
		return m, nil
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m indexingModel) View(width, height int) string {
	s := "\n"
	s += titleStyle.Render("  Indexing") + "\n\n"

	if m.done {
		if m.err != nil {
			s += errorStyle.Render(fmt.Sprintf("  Error: %v", m.err)) + "\n\n"
			s += dimStyle.Render("  Press Enter to go back, or q to quit.") + "\n"
			return s
		}
		s += successStyle.Render("  ✓ Indexing complete!") + "\n\n"
		if m.resp != nil {
			s += fmt.Sprintf("  Files:  %d\n", m.resp.FilesProcessed)
			s += fmt.Sprintf("  Chunks: %d\n", m.resp.Chunks)
		}
		s += "\n"
		s += dimStyle.Render("  Press Enter to start asking questions") + "\n"
		return s
	}

	verb := "Ingesting"
	if m.mode == modeUpload {
		verb = "Uploading and ingesting"
	}
	s += fmt.Sprintf("  %s %s %s\n", m.spinner.View(), verb, m.path)
	s += "\n"
	s += dimStyle.Render("  This may take a while for large codebases...") + "\n"
	return s
}
