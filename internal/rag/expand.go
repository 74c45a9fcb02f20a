package rag

import (
	"codedoc/internal/chunker"
	"codedoc/internal/ingest"
)

// Expand adds the chunks that the retrieved chunks call or import, drops
// repeats, and trims the list to a token budget. Retrieved chunks come
// first, in order; the list stops at the first chunk that would exceed
// maxTokens. A nil result disables expansion.
func Expand(initial []chunker.Chunk, res *ingest.Result, maxTokens int) []chunker.Chunk {
	candidates := make([]chunker.Chunk, 0, len(initial))
	candidates = append(candidates, initial...)
	for _, c := range initial {
		candidates = append(candidates, res.Related(c)...)
	}

	seen := make(map[chunker.Key]bool, len(candidates))
	var out []chunker.Chunk
	used := 0
	for _, c := range candidates {
		if seen[c.Key()] {
			continue
		}
		seen[c.Key()] = true

		cost := c.Tokens()
		if used+cost > maxTokens {
			break
		}
		used += cost
		out = append(out, c)
	}
	return out
}
