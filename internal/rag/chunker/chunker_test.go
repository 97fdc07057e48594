package chunker_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archbuilder/orchestrator/internal/rag/chunker"
)

func TestChunk_ShortContentIsOneCompleteSectionChunk(t *testing.T) {
	c := chunker.New(chunker.DefaultStrategy())

	chunks := c.Chunk("Just a short paragraph about zoning rules.", "doc-1", chunker.Input{Language: "en"})

	require.Len(t, chunks, 1)
	assert.Equal(t, "doc-1_chunk_0", chunks[0].ChunkID)
	assert.Equal(t, "complete_section", chunks[0].Metadata.ChunkType)
}

func TestChunk_LongContentRespectsMinAndMaxBounds(t *testing.T) {
	strategy := chunker.DefaultStrategy()
	c := chunker.New(strategy)

	sentence := "This is a sentence about building codes and setback requirements. "
	content := strings.Repeat(sentence, 80) // well over max_chunk_size

	chunks := c.Chunk(content, "doc-2", chunker.Input{Language: "en"})

	require.NotEmpty(t, chunks)
	for i, ch := range chunks {
		assert.GreaterOrEqual(t, len(ch.Content), strategy.MinChunkSize, "chunk %d below min size", i)
		if i != len(chunks)-1 {
			assert.LessOrEqual(t, len(ch.Content), strategy.MaxChunkSize, "non-final chunk %d above max size", i)
		}
	}
}

func TestChunk_IndicesAreConsecutive(t *testing.T) {
	c := chunker.New(chunker.DefaultStrategy())
	content := strings.Repeat("Article 1. Requirement text here for testing purposes. ", 60)

	chunks := c.Chunk(content, "doc-3", chunker.Input{Language: "en"})

	for i, ch := range chunks {
		assert.Equal(t, i, ch.Index)
	}
}

func TestChunk_QualityScoreWithinUnitRange(t *testing.T) {
	c := chunker.New(chunker.DefaultStrategy())
	chunks := c.Chunk("Section 1. A complete architectural clause ending properly.", "doc-4", chunker.Input{Language: "en"})

	require.NotEmpty(t, chunks)
	for _, ch := range chunks {
		assert.GreaterOrEqual(t, ch.Metadata.QualityScore, 0.0)
		assert.LessOrEqual(t, ch.Metadata.QualityScore, 1.0)
	}
}

func TestChunk_EmptyContentProducesNoChunks(t *testing.T) {
	c := chunker.New(chunker.DefaultStrategy())
	chunks := c.Chunk("", "doc-5", chunker.Input{Language: "en"})
	assert.Empty(t, chunks)
}

func TestChunk_PropagatesIsBuildingCodeFlag(t *testing.T) {
	c := chunker.New(chunker.DefaultStrategy())
	chunks := c.Chunk("Section 5. Fire egress requirements for multi-story buildings.", "doc-6", chunker.Input{Language: "en", IsBuildingCode: true})

	require.NotEmpty(t, chunks)
	assert.True(t, chunks[0].Metadata.IsBuildingCode)
}
