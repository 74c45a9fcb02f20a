package cmd

import (
	"fmt"
	"io"
	"strings"

	"codedoc/internal/index"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

var sourceStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

// printAnswer renders the answer as markdown followed by its sources.
func printAnswer(w io.Writer, answer *index.Answer, showSources bool) {
	out := answer.Text
	if r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100)); err == nil {
		if rendered, err := r.Render(answer.Text); err == nil {
			out = rendered
		}
	}
	fmt.Fprintln(w, strings.TrimRight(out, "\n"))

	if !showSources || len(answer.Context) == 0 {
		return
	}
	fmt.Fprintln(w)
	for _, c := range answer.Context {
		label := fmt.Sprintf("%s (chunk %d)", c.FilePath, c.ChunkIndex)
		if c.Name != "" {
			label += fmt.Sprintf(" [%s %s]", c.ChunkType, c.Name)
		}
		fmt.Fprintln(w, sourceStyle.Render("  "+label))
	}
}
