package vector_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archbuilder/orchestrator/internal/rag/vector"
	"github.com/archbuilder/orchestrator/internal/types"
)

func TestLocalVectorizer_DeterministicAndNormalized(t *testing.T) {
	v := vector.NewLocalVectorizer()
	ctx := context.Background()

	a, err := v.Embed(ctx, "fire egress requirements for residential corridors")
	require.NoError(t, err)
	b, err := v.Embed(ctx, "fire egress requirements for residential corridors")
	require.NoError(t, err)

	assert.Equal(t, a, b, "embedding the same text twice must be deterministic")
	assert.Len(t, a, v.Dimensions())

	var sumSq float64
	for _, x := range a {
		sumSq += float64(x) * float64(x)
	}
	assert.InDelta(t, 1.0, sumSq, 1e-3, "vector should be L2-normalized")
}

func TestLocalVectorizer_DifferentTextsDiffer(t *testing.T) {
	v := vector.NewLocalVectorizer()
	ctx := context.Background()

	a, _ := v.Embed(ctx, "kitchen layout requirements")
	b, _ := v.Embed(ctx, "seismic retrofit standards")
	assert.NotEqual(t, a, b)
}

func TestIndex_ReplaceDocumentIsAtomic(t *testing.T) {
	idx := vector.NewIndex()
	v := vector.NewLocalVectorizer()
	ctx := context.Background()

	mk := func(id, content string) types.DocumentChunk {
		return types.DocumentChunk{ChunkID: id, DocID: "doc-1", Content: content}
	}

	c1 := mk("doc-1_chunk_0", "initial content about zoning")
	vec1, _ := v.Embed(ctx, c1.Content)
	idx.ReplaceDocument("doc-1", []types.DocumentChunk{c1}, [][]float32{vec1})
	require.Equal(t, 1, idx.Size())

	c2 := mk("doc-1_chunk_0_v2", "replaced content about setbacks")
	vec2, _ := v.Embed(ctx, c2.Content)
	idx.ReplaceDocument("doc-1", []types.DocumentChunk{c2}, [][]float32{vec2})

	require.Equal(t, 1, idx.Size(), "re-indexing must drop the previous chunk set entirely")
}

func TestIndex_QueryRanksByBlendedScore(t *testing.T) {
	idx := vector.NewIndex()
	v := vector.NewLocalVectorizer()
	ctx := context.Background()

	chunks := []types.DocumentChunk{
		{ChunkID: "a", DocID: "doc-1", Content: "fire egress corridor width requirements", Metadata: types.ChunkMetadata{QualityScore: 0.9, Language: "en"}},
		{ChunkID: "b", DocID: "doc-1", Content: "unrelated kitchen countertop material", Metadata: types.ChunkMetadata{QualityScore: 0.9, Language: "en"}},
	}
	vecs := make([][]float32, len(chunks))
	for i, c := range chunks {
		vecs[i], _ = v.Embed(ctx, c.Content)
	}
	idx.ReplaceDocument("doc-1", chunks, vecs)

	query, _ := v.Embed(ctx, "fire egress corridor width")
	hits := idx.Query(query, types.VectorFilter{}, 0.0, 5)

	require.NotEmpty(t, hits)
	assert.Equal(t, "a", hits[0].Chunk.ChunkID)
}

func TestIndex_QueryAppliesLanguageFilter(t *testing.T) {
	idx := vector.NewIndex()
	v := vector.NewLocalVectorizer()
	ctx := context.Background()

	chunks := []types.DocumentChunk{
		{ChunkID: "en-1", DocID: "doc-2", Content: "setback requirements", Metadata: types.ChunkMetadata{Language: "en"}},
		{ChunkID: "tr-1", DocID: "doc-2", Content: "setback requirements", Metadata: types.ChunkMetadata{Language: "tr"}},
	}
	vecs := make([][]float32, len(chunks))
	for i, c := range chunks {
		vecs[i], _ = v.Embed(ctx, c.Content)
	}
	idx.ReplaceDocument("doc-2", chunks, vecs)

	query, _ := v.Embed(ctx, "setback requirements")
	hits := idx.Query(query, types.VectorFilter{Language: "tr"}, 0.0, 5)

	require.Len(t, hits, 1)
	assert.Equal(t, "tr-1", hits[0].Chunk.ChunkID)
}

func TestIndex_RemoveDocument(t *testing.T) {
	idx := vector.NewIndex()
	idx.ReplaceDocument("doc-3", []types.DocumentChunk{{ChunkID: "x", DocID: "doc-3"}}, [][]float32{{1, 0}})
	require.Equal(t, 1, idx.Size())

	idx.RemoveDocument("doc-3")
	assert.Equal(t, 0, idx.Size())
}
