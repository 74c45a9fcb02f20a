package store

import (
	"context"
	"testing"

	"codedoc/internal/chunker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadataRoundTrip(t *testing.T) {
	c := chunker.Chunk{
		Content:    "def helper():\n    return os.getcwd()",
		FilePath:   "pkg/a.py",
		FileType:   ".py",
		ChunkIndex: 2,
		ChunkType:  chunker.TypeFunction,
		Name:       "helper",
		Calls:      []string{"getcwd"},
		Imports:    []string{"os", "sys"},
		StartLine:  4,
		EndLine:    5,
	}
	md := FlattenMetadata(c)
	assert.Equal(t, "os,sys", md[MetaImports])
	assert.Equal(t, "2", md[MetaChunkIndex])
	assert.NotContains(t, md, MetaTotalLines)
	assert.Equal(t, c, ChunkFromMetadata(c.Content, md))
	assert.Equal(t, "pkg/a.py:2", ID(c))
}

func TestMetadataLineWindow(t *testing.T) {
	c := chunker.Chunk{Content: "x", FilePath: "n.txt", FileType: ".txt", TotalLines: 1, StartLine: 1, EndLine: 1}
	md := FlattenMetadata(c)
	assert.NotContains(t, md, MetaChunkType)
	assert.NotContains(t, md, MetaCalls)
	assert.Equal(t, c, ChunkFromMetadata("x", md))
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), Config{Backend: "pinecone"})
	assert.ErrorIs(t, err, ErrUnknownBackend)
}

func TestChromemStore(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, Config{Backend: "chromem"})
	require.NoError(t, err)
	defer s.Close()

	res, err := s.Query(ctx, []float32{1, 0, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, res, "querying an empty store returns nothing")

	chunks := []chunker.Chunk{
		{Content: "alpha", FilePath: "a.py", FileType: ".py", ChunkIndex: 0},
		{Content: "beta", FilePath: "a.py", FileType: ".py", ChunkIndex: 1},
		{Content: "gamma", FilePath: "b.py", FileType: ".py", ChunkIndex: 0},
	}
	vecs := [][]float32{{1, 0, 0}, {0, 1, 0}, {0.9, 0.1, 0}}
	require.NoError(t, s.Add(ctx, chunks, vecs))

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	res, err = s.Query(ctx, []float32{1, 0, 0}, 10)
	require.NoError(t, err)
	require.Len(t, res, 3)
	assert.Equal(t, "alpha", res[0].Chunk.Content)
	assert.Equal(t, "gamma", res[1].Chunk.Content)
	assert.InDelta(t, 1.0, res[0].Score, 1e-5)
	assert.GreaterOrEqual(t, res[0].Score, res[1].Score)

	// Same id replaces the stored chunk.
	require.NoError(t, s.Add(ctx, chunks[:1], [][]float32{{0, 0, 1}}))
	n, _ = s.Count(ctx)
	assert.Equal(t, 3, n)

	require.NoError(t, s.DeleteAll(ctx))
	n, _ = s.Count(ctx)
	assert.Zero(t, n)
}

func TestChromemStoreMismatchedLengths(t *testing.T) {
	s, err := OpenChromem("", "test")
	require.NoError(t, err)
	err = s.Add(context.Background(), []chunker.Chunk{{FilePath: "a"}}, nil)
	assert.Error(t, err)
}

func TestChromemMeta(t *testing.T) {
	ctx := context.Background()
	s, err := OpenChromem("", "test")
	require.NoError(t, err)

	v, err := s.GetMeta(ctx, "embedding_model")
	require.NoError(t, err)
	assert.Empty(t, v)

	require.NoError(t, s.SetMeta(ctx, "embedding_model", "nomic-embed-text"))
	require.NoError(t, s.SetMeta(ctx, "embedding_model", "text-embedding-3-small"))
	require.NoError(t, s.DeleteAll(ctx))

	v, err = s.GetMeta(ctx, "embedding_model")
	require.NoError(t, err)
	assert.Equal(t, "text-embedding-3-small", v)

	var _ MetaStore = s
}
