package store

import (
	"strconv"
	"strings"

	"codedoc/internal/chunker"
)

// Result is a stored chunk with its similarity to the query
// (1 - cosine distance).
type Result struct {
	Chunk chunker.Chunk
	Score float64
}

// Metadata keys.
const (
	MetaFilePath   = "file_path"
	MetaFileType   = "file_type"
	MetaChunkIndex = "chunk_index"
	MetaChunkType  = "chunk_type"
	MetaName       = "name"
	MetaCalls      = "calls"
	MetaImports    = "imports"
	MetaTotalLines = "total_lines"
	MetaStartLine  = "start_line"
	MetaEndLine    = "end_line"
)

// ID returns the store id of a chunk, "file_path:chunk_index".
func ID(c chunker.Chunk) string {
	return c.Key().String()
}

// FlattenMetadata renders a chunk's metadata as flat strings. Lists are
// comma-joined; empty optional fields are left out.
func FlattenMetadata(c chunker.Chunk) map[string]string {
	md := map[string]string{
		MetaFilePath:   c.FilePath,
		MetaFileType:   c.FileType,
		MetaChunkIndex: strconv.Itoa(c.ChunkIndex),
	}
	if c.ChunkType != "" {
		md[MetaChunkType] = string(c.ChunkType)
	}
	if c.Name != "" {
		md[MetaName] = c.Name
	}
	if len(c.Calls) > 0 {
		md[MetaCalls] = strings.Join(c.Calls, ",")
	}
	if len(c.Imports) > 0 {
		md[MetaImports] = strings.Join(c.Imports, ",")
	}
	if c.TotalLines > 0 {
		md[MetaTotalLines] = strconv.Itoa(c.TotalLines)
	}
	if c.StartLine > 0 {
		md[MetaStartLine] = strconv.Itoa(c.StartLine)
		md[MetaEndLine] = strconv.Itoa(c.EndLine)
	}
	return md
}

// ChunkFromMetadata rebuilds a chunk from its content and flat metadata.
func ChunkFromMetadata(content string, md map[string]string) chunker.Chunk {
	return chunker.Chunk{
		Content:    content,
		FilePath:   md[MetaFilePath],
		FileType:   md[MetaFileType],
		ChunkIndex: atoi(md[MetaChunkIndex]),
		ChunkType:  chunker.ChunkType(md[MetaChunkType]),
		Name:       md[MetaName],
		Calls:      splitList(md[MetaCalls]),
		Imports:    splitList(md[MetaImports]),
		TotalLines: atoi(md[MetaTotalLines]),
		StartLine:  atoi(md[MetaStartLine]),
		EndLine:    atoi(md[MetaEndLine]),
	}
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
