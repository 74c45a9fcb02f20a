package chunker

import "strings"

// chunkLines splits content into windows of whole lines. A window is emitted
// once its text exceeds the chunk size; the next window starts with its last
// OverlapLines lines, never all of them.
func (c *Chunker) chunkLines(path, content, fileType string) []Chunk {
	lines := strings.Split(content, "\n")

	var chunks []Chunk
	emit := func(first, last int) {
		chunks = append(chunks, Chunk{
			Content:    strings.Join(lines[first:last+1], "\n"),
			FilePath:   path,
			FileType:   fileType,
			ChunkIndex: len(chunks),
			ChunkType:  TypeLines,
			TotalLines: len(lines),
			StartLine:  first + 1,
			EndLine:    last + 1,
		})
	}

	// The window is lines[start:i+1]; lines before `fresh` were already emitted.
	start, fresh, size := 0, 0, 0
	for i, line := range lines {
		if i > start {
			size++ // joining newline
		}
		size += len(line)
		if size <= c.opts.ChunkSize {
			continue
		}
		emit(start, i)
		fresh = i + 1
		keep := min(c.opts.OverlapLines, i-start)
		start = i + 1 - keep
		size = windowSize(lines[start : i+1])
	}
	if fresh < len(lines) || len(chunks) == 0 {
		emit(start, len(lines)-1)
	}
	return chunks
}

func windowSize(window []string) int {
	if len(window) == 0 {
		return 0
	}
	n := len(window) - 1
	for _, l := range window {
		n += len(l)
	}
	return n
}
