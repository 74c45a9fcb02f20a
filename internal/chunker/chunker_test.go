package chunker_test

import (
	"errors"
	"context"
	"fmt"
	"strings"
	"testing"

	"codedoc/internal/chunker"
	"codedoc/internal/chunker/languages"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	zerolog.SetGlobalLevel(zerolog.Disabled)
}

const pythonSource = `"""Utility helpers."""
import os
from pkg.sub import thing

@decorator
def helper(x):
    return os.path.join(x, "a")

async def fetch():
    await helper(1)

class Greeter:
    def greet(self):
        return helper("hi")
`

func newChunker(opts chunker.Options) *chunker.Chunker {
	return chunker.New(languages.Default(), opts)
}

func TestChunkPythonDefinitions(t *testing.T) {
	c := newChunker(chunker.DefaultOptions())
	chunks := c.Chunk("pkg/util.py", pythonSource, ".py")
	require.Len(t, chunks, 4)

	doc := chunks[0]
	assert.Equal(t, chunker.TypeModuleDocstring, doc.ChunkType)
	assert.Equal(t, "# Module docstring\nUtility helpers.", doc.Content)
	assert.Equal(t, []string{"os", "pkg.sub"}, doc.Imports)

	helper := chunks[1]
	assert.Equal(t, chunker.TypeFunction, helper.ChunkType)
	assert.Equal(t, "helper", helper.Name)
	assert.Equal(t, "@decorator\ndef helper(x):\n    return os.path.join(x, \"a\")", helper.Content)
	assert.Equal(t, []string{"join"}, helper.Calls)
	assert.Equal(t, 5, helper.StartLine)
	assert.Equal(t, 7, helper.EndLine)

	fetch := chunks[2]
	assert.Equal(t, "fetch", fetch.Name)
	assert.Equal(t, []string{"helper"}, fetch.Calls)

	greeter := chunks[3]
	assert.Equal(t, chunker.TypeClass, greeter.ChunkType)
	assert.Equal(t, "Greeter", greeter.Name)
	assert.Equal(t, []string{"helper"}, greeter.Calls)
	assert.True(t, strings.HasPrefix(greeter.Content, "class Greeter:"))

	for i, ch := range chunks {
		assert.Equal(t, i, ch.ChunkIndex)
		assert.Equal(t, "pkg/util.py", ch.FilePath)
		assert.Equal(t, ".py", ch.FileType)
		assert.Equal(t, []string{"os", "pkg.sub"}, ch.Imports)
	}
}

func TestChunkPythonWithoutDocstring(t *testing.T) {
	c := newChunker(chunker.DefaultOptions())
	chunks := c.Chunk("a.py", "def helper():\n    return 1\n", ".py")
	require.Len(t, chunks, 1)
	assert.Equal(t, "helper", chunks[0].Name)
	assert.Equal(t, 0, chunks[0].ChunkIndex)
	assert.Equal(t, "def helper():\n    return 1", chunks[0].Content)
	assert.Empty(t, chunks[0].Calls)
}

func TestChunkFallsBackOnParseError(t *testing.T) {
	src := "def broken(:\n    pass\n"
	c := newChunker(chunker.DefaultOptions())
	chunks := c.Chunk("broken.py", src, ".py")
	require.Len(t, chunks, 1)
	assert.Equal(t, chunker.TypeLines, chunks[0].ChunkType)
	assert.Equal(t, src, chunks[0].Content)
	assert.Equal(t, 3, chunks[0].TotalLines)
}

func TestParseErrorIsTyped(t *testing.T) {
	parser, lang := languages.Default().Lookup(".py")
	require.NotNil(t, parser)
	assert.Equal(t, "python", lang)

	_, err := parser.Parse(context.Background(), []byte("def broken(:\n    pass\n"))
	var perr *chunker.ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "python", perr.Language)
	assert.Equal(t, 1, perr.Line)
}

func TestChunkWithoutDefinitionsUsesLines(t *testing.T) {
	c := newChunker(chunker.DefaultOptions())
	chunks := c.Chunk("script.py", "x = 1\nprint(x)\n", ".py")
	require.Len(t, chunks, 1)
	assert.Equal(t, chunker.TypeLines, chunks[0].ChunkType)
	assert.Empty(t, chunks[0].Name)
}

func TestChunkUnknownTypeUsesLines(t *testing.T) {
	c := newChunker(chunker.DefaultOptions())
	chunks := c.Chunk("notes.txt", "hello\nworld", ".txt")
	require.Len(t, chunks, 1)
	assert.Equal(t, "hello\nworld", chunks[0].Content)
	assert.Equal(t, 2, chunks[0].TotalLines)
}

func TestLinesStrategySkipsParser(t *testing.T) {
	opts := chunker.DefaultOptions()
	opts.Strategy = chunker.StrategyLines
	chunks := newChunker(opts).Chunk("pkg/util.py", pythonSource, ".py")
	require.Len(t, chunks, 1)
	assert.Equal(t, chunker.TypeLines, chunks[0].ChunkType)
	assert.Equal(t, pythonSource, chunks[0].Content)
}

func TestChunkGo(t *testing.T) {
	src := `// Package demo does things.
package demo

import (
	"fmt"
	"strings"
)

func Hello(name string) string {
	return fmt.Sprintf("hi %s", strings.ToUpper(name))
}

type Greeter struct{}

func (g Greeter) Greet() string { return Hello("x") }
`
	chunks := newChunker(chunker.DefaultOptions()).Chunk("demo/demo.go", src, ".go")
	require.Len(t, chunks, 4)
	assert.Equal(t, "# Module docstring\nPackage demo does things.", chunks[0].Content)
	assert.Equal(t, []string{"fmt", "strings"}, chunks[0].Imports)

	assert.Equal(t, "Hello", chunks[1].Name)
	assert.Equal(t, []string{"Sprintf", "ToUpper"}, chunks[1].Calls)
	assert.Equal(t, chunker.TypeClass, chunks[2].ChunkType)
	assert.Equal(t, "Greeter", chunks[2].Name)
	assert.Equal(t, "Greet", chunks[3].Name)
	assert.Equal(t, []string{"Hello"}, chunks[3].Calls)
}

func TestChunkGoGroupedTypes(t *testing.T) {
	src := `package demo

type (
	A struct{}
	B int
)

func f() {}
`
	chunks := newChunker(chunker.DefaultOptions()).Chunk("demo/types.go", src, ".go")
	require.Len(t, chunks, 3)
	assert.Equal(t, "A", chunks[0].Name)
	assert.Equal(t, chunker.TypeClass, chunks[0].ChunkType)
	assert.Equal(t, "\tA struct{}", chunks[0].Content)
	assert.Equal(t, "B", chunks[1].Name)
	assert.Equal(t, chunker.TypeClass, chunks[1].ChunkType)
	assert.Equal(t, 5, chunks[1].StartLine)
	assert.Equal(t, "f", chunks[2].Name)
	assert.Equal(t, chunker.TypeFunction, chunks[2].ChunkType)
}

func TestChunkJavaScript(t *testing.T) {
	src := `/** Math helpers. */
import { sum } from './sum';

export function add(a, b) {
  return sum([a, b]);
}

class Calc {
  run() { return new Adder().apply(add(1, 2)); }
}
`
	chunks := newChunker(chunker.DefaultOptions()).Chunk("math.js", src, ".js")
	require.Len(t, chunks, 3)
	assert.Equal(t, "# Module docstring\nMath helpers.", chunks[0].Content)
	assert.Equal(t, []string{"./sum"}, chunks[0].Imports)
	assert.Equal(t, "add", chunks[1].Name)
	assert.True(t, strings.HasPrefix(chunks[1].Content, "export function add"))
	assert.Equal(t, []string{"sum"}, chunks[1].Calls)
	assert.Equal(t, "Calc", chunks[2].Name)
	assert.Equal(t, []string{"Adder", "add", "apply"}, chunks[2].Calls)
}

func numberedLines(n int) []string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = fmt.Sprintf("line %02d", i)
	}
	return lines
}

func TestLineWindowsOverlapAndCoverFile(t *testing.T) {
	lines := numberedLines(50)
	src := strings.Join(lines, "\n")
	c := newChunker(chunker.Options{Strategy: chunker.StrategyLines, ChunkSize: 100, OverlapLines: 4})
	chunks := c.Chunk("numbers.txt", src, ".txt")
	require.Greater(t, len(chunks), 1)

	assert.Equal(t, 1, chunks[0].StartLine)
	assert.Equal(t, 50, chunks[len(chunks)-1].EndLine)
	for i, ch := range chunks {
		assert.Equal(t, i, ch.ChunkIndex)
		window := lines[ch.StartLine-1 : ch.EndLine]
		assert.Equal(t, strings.Join(window, "\n"), ch.Content)
		assert.Equal(t, len(lines), ch.TotalLines)
		if i == 0 {
			continue
		}
		prev := chunks[i-1]
		overlap := min(4, prev.EndLine-prev.StartLine)
		assert.Equal(t, prev.EndLine-overlap+1, ch.StartLine, "chunk %d must start with the last %d lines of chunk %d", i, overlap, i-1)
		assert.Greater(t, ch.EndLine, prev.EndLine, "every chunk holds new lines")
	}
	// All but the last window exceeded the size limit when emitted.
	for _, ch := range chunks[:len(chunks)-1] {
		assert.Greater(t, len(ch.Content), 100)
	}
}

func TestLineWindowsDoNotRepeatTail(t *testing.T) {
	// 13 lines of 7 bytes plus newlines exceed 100 exactly at the last line.
	src := strings.Join(numberedLines(13), "\n")
	c := newChunker(chunker.Options{Strategy: chunker.StrategyLines, ChunkSize: 100, OverlapLines: 4})
	chunks := c.Chunk("numbers.txt", src, ".txt")
	require.Len(t, chunks, 1)
	assert.Equal(t, src, chunks[0].Content)
}

func TestLineWindowsLongLine(t *testing.T) {
	long := strings.Repeat("x", 300)
	src := "a\n" + long + "\nb"
	c := newChunker(chunker.Options{Strategy: chunker.StrategyLines, ChunkSize: 100, OverlapLines: 4})
	chunks := c.Chunk("long.txt", src, ".txt")
	require.Len(t, chunks, 2)
	assert.Equal(t, "a\n"+long, chunks[0].Content)
	assert.Equal(t, long+"\nb", chunks[1].Content)
	for _, ch := range chunks {
		assert.Equal(t, 3, ch.TotalLines)
	}
}

func TestChunkEmptyContent(t *testing.T) {
	chunks := newChunker(chunker.DefaultOptions()).Chunk("empty.md", "", ".md")
	require.Len(t, chunks, 1)
	assert.Equal(t, "", chunks[0].Content)
}

func TestChunkTokens(t *testing.T) {
	assert.Equal(t, 1, chunker.Chunk{}.Tokens())
	assert.Equal(t, 1, chunker.Chunk{Content: "abc"}.Tokens())
	assert.Equal(t, 25, chunker.Chunk{Content: strings.Repeat("a", 100)}.Tokens())
	assert.Equal(t, "a.py:3", chunker.Chunk{FilePath: "a.py", ChunkIndex: 3}.Key().String())
}
