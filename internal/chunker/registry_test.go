package chunker

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubParser struct {
	parse func(ctx context.Context, src []byte) (*Module, error)
}

func (s stubParser) Parse(ctx context.Context, src []byte) (*Module, error) {
	return s.parse(ctx, src)
}

func TestRegistryLookup(t *testing.T) {
	r := NewRegistry()
	p := stubParser{}
	r.Register("python", p, "py", ".pyi")

	got, lang := r.Lookup(".py")
	assert.NotNil(t, got)
	assert.Equal(t, "python", lang)

	_, lang = r.Lookup("pkg/types.PYI")
	assert.Equal(t, "python", lang)
	assert.Equal(t, "python", r.LanguageName("py"))

	got, lang = r.Lookup(".rs")
	assert.Nil(t, got)
	assert.Empty(t, lang)

	assert.Equal(t, []string{".py", ".pyi"}, r.Extensions())
}

func TestChunkEndLineFallback(t *testing.T) {
	r := NewRegistry()
	r.Register("fake", stubParser{parse: func(context.Context, []byte) (*Module, error) {
		return &Module{Nodes: []Node{
			{Kind: KindFunction, Name: "first", StartLine: 1},
			{Kind: KindClass, Name: "second", StartLine: 3},
		}}, nil
	}}, "fk")

	c := New(r, DefaultOptions())
	chunks := c.Chunk("x.fk", "a\nb\nc\nd", ".fk")
	require.Len(t, chunks, 2)
	assert.Equal(t, "a\nb", chunks[0].Content)
	assert.Equal(t, 2, chunks[0].EndLine)
	assert.Equal(t, "c\nd", chunks[1].Content)
	assert.Equal(t, TypeClass, chunks[1].ChunkType)
}

func TestChunkFallsBackOnParserFailure(t *testing.T) {
	r := NewRegistry()
	r.Register("fake", stubParser{parse: func(context.Context, []byte) (*Module, error) {
		return nil, &ParseError{Language: "fake", Line: 1, Column: 1, Message: "unexpected input"}
	}}, "fk")

	chunks := New(r, DefaultOptions()).Chunk("x.fk", "a\nb", ".fk")
	require.Len(t, chunks, 1)
	assert.Equal(t, TypeLines, chunks[0].ChunkType)
}
