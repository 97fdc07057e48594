package rag_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archbuilder/orchestrator/internal/obslog"
	"github.com/archbuilder/orchestrator/internal/rag"
	"github.com/archbuilder/orchestrator/internal/rag/chunker"
	"github.com/archbuilder/orchestrator/internal/rag/vector"
	"github.com/archbuilder/orchestrator/internal/types"
)

func TestRetriever_IndexAndQuery(t *testing.T) {
	r := rag.New(vector.NewLocalVectorizer(), chunker.DefaultStrategy(), obslog.New("test"))
	ctx := context.Background()

	n, err := r.IndexDocument(ctx, "code-1", "Article 1. Minimum corridor width for fire egress is 1.2 meters in residential buildings.", chunker.Input{Language: "en", IsBuildingCode: true})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	hits, err := r.Query(ctx, "corridor width for fire egress", types.VectorFilter{}, 5)
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, "code-1", hits[0].Chunk.DocID)
}

func TestRetriever_ReindexReplacesDocument(t *testing.T) {
	r := rag.New(vector.NewLocalVectorizer(), chunker.DefaultStrategy(), obslog.New("test"))
	ctx := context.Background()

	_, err := r.IndexDocument(ctx, "code-2", "Section 2. Old setback text describing property lines.", chunker.Input{Language: "en"})
	require.NoError(t, err)
	before := r.Size()

	_, err = r.IndexDocument(ctx, "code-2", "Section 2. New setback text replacing the old requirement entirely.", chunker.Input{Language: "en"})
	require.NoError(t, err)

	assert.Equal(t, before, r.Size(), "reindexing should replace, not accumulate")
}

func TestRetriever_RemoveDocument(t *testing.T) {
	r := rag.New(vector.NewLocalVectorizer(), chunker.DefaultStrategy(), obslog.New("test"))
	ctx := context.Background()

	_, err := r.IndexDocument(ctx, "code-3", "Chapter 9. Accessibility ramp slope requirements for public buildings.", chunker.Input{Language: "en"})
	require.NoError(t, err)
	require.NotZero(t, r.Size())

	r.RemoveDocument("code-3")
	assert.Equal(t, 0, r.Size())
}
