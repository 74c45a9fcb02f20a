package rag

import (
	"fmt"
	"strings"

	"codedoc/internal/chunker"
)

const promptIntro = `You are a helpful code documentation assistant. Use the following code context to answer the user's question. If the answer is not in the context, say you don't know.`

// BuildPrompt renders the answering prompt for question over chunks.
func BuildPrompt(question string, chunks []chunker.Chunk) string {
	var b strings.Builder
	b.WriteString(promptIntro)
	b.WriteString("\n\nContext:\n")
	for _, c := range chunks {
		fmt.Fprintf(&b, "File: %s (chunk %d)", c.FilePath, c.ChunkIndex)
		if c.Name != "" {
			fmt.Fprintf(&b, " [%s %s]", c.ChunkType, c.Name)
		}
		b.WriteByte('\n')
		b.WriteString(c.Content)
		b.WriteString("\n---\n")
	}
	fmt.Fprintf(&b, "\nUser question: %s\n\nAnswer as clearly and concisely as possible:", question)
	return b.String()
}
