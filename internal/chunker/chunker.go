package chunker

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

// Strategy selects how files are split into chunks.
type Strategy string

const (
	StrategyAuto  Strategy = "auto"
	StrategyAST   Strategy = "ast"
	StrategyLines Strategy = "lines"
)

// ChunkType labels what a chunk holds.
type ChunkType string

const (
	TypeModuleDocstring ChunkType = "module_docstring"
	TypeFunction        ChunkType = "function"
	TypeClass           ChunkType = "class"
	TypeLines           ChunkType = ""
)

const docstringHeader = "# Module docstring\n"

// Key identifies a chunk within one ingestion run.
type Key struct {
	FilePath   string
	ChunkIndex int
}

func (k Key) String() string {
	return fmt.Sprintf("%s:%d", k.FilePath, k.ChunkIndex)
}

// Chunk is a contiguous piece of one source file.
type Chunk struct {
	Content    string    `json:"content"`
	FilePath   string    `json:"file_path"`
	FileType   string    `json:"file_type"`
	ChunkIndex int       `json:"chunk_index"`
	ChunkType  ChunkType `json:"chunk_type,omitempty"`
	Name       string    `json:"name,omitempty"`
	Calls      []string  `json:"calls,omitempty"`
	Imports    []string  `json:"imports,omitempty"`
	TotalLines int       `json:"total_lines,omitempty"`
	StartLine  int       `json:"start_line"`
	EndLine    int       `json:"end_line"`
}

// Key returns the chunk's identity.
func (c Chunk) Key() Key {
	return Key{FilePath: c.FilePath, ChunkIndex: c.ChunkIndex}
}

// Tokens estimates the chunk's size in tokens, at least 1.
func (c Chunk) Tokens() int {
	return max(1, len(c.Content)/4)
}

// Options configures a Chunker.
type Options struct {
	Strategy     Strategy
	ChunkSize    int
	OverlapLines int
}

// DefaultOptions returns the default chunking configuration.
func DefaultOptions() Options {
	return Options{Strategy: StrategyAuto, ChunkSize: 1000, OverlapLines: 4}
}

// Chunker splits decoded source text into chunks.
type Chunker struct {
	registry *Registry
	opts     Options
}

// New creates a chunker backed by the given registry.
func New(r *Registry, opts Options) *Chunker {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultOptions().ChunkSize
	}
	if opts.OverlapLines < 0 {
		opts.OverlapLines = 0
	}
	if r == nil {
		r = NewRegistry()
	}
	return &Chunker{registry: r, opts: opts}
}

// Registry returns the chunker's parser registry.
func (c *Chunker) Registry() *Registry { return c.registry }

// Chunk splits content into chunks. It never fails: files without a parser,
// files that do not parse, and files with no definitions are split into
// line windows.
func (c *Chunker) Chunk(path, content, fileType string) []Chunk {
	if c.opts.Strategy != StrategyLines {
		if parser, lang := c.registry.Lookup(fileType); parser != nil {
			chunks, err := c.chunkSyntax(parser, path, content, fileType)
			var perr *ParseError
			switch {
			case errors.As(err, &perr):
				log.Warn().Str("file", path).Err(err).Msg("syntax parse failed, using line windows")
			case err != nil:
				log.Warn().Str("file", path).Str("language", lang).Err(err).Msg("parser failed, using line windows")
			case len(chunks) > 0:
				log.Debug().Str("file", path).Int("chunks", len(chunks)).Msg("chunked by syntax tree")
				return chunks
			}
		}
	}
	return c.chunkLines(path, content, fileType)
}

func (c *Chunker) chunkSyntax(p SourceParser, path, content, fileType string) ([]Chunk, error) {
	mod, err := p.Parse(context.Background(), []byte(content))
	if err != nil {
		return nil, err
	}

	lines := strings.Split(content, "\n")
	var chunks []Chunk
	if mod.Docstring != "" {
		chunks = append(chunks, Chunk{
			Content:    docstringHeader + mod.Docstring,
			FilePath:   path,
			FileType:   fileType,
			ChunkIndex: len(chunks),
			ChunkType:  TypeModuleDocstring,
			Imports:    mod.Imports,
			StartLine:  mod.DocStartLine,
			EndLine:    mod.DocEndLine,
		})
	}

	for i, n := range mod.Nodes {
		end := n.EndLine
		if end <= 0 {
			end = len(lines)
			if i+1 < len(mod.Nodes) {
				end = mod.Nodes[i+1].StartLine - 1
			}
		}
		start := max(n.StartLine, 1)
		end = min(end, len(lines))
		if end < start {
			continue
		}
		chunkType := TypeFunction
		if n.Kind == KindClass {
			chunkType = TypeClass
		}
		chunks = append(chunks, Chunk{
			Content:    strings.Join(lines[start-1:end], "\n"),
			FilePath:   path,
			FileType:   fileType,
			ChunkIndex: len(chunks),
			ChunkType:  chunkType,
			Name:       n.Name,
			Calls:      n.Calls,
			Imports:    mod.Imports,
			StartLine:  start,
			EndLine:    end,
		})
	}
	return chunks, nil
}
