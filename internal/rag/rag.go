// Package rag implements C3, the retrieval-augmented-generation facade
// that composes C1 (chunker) and C2 (embedder + vector index) into the
// three operations the rest of the orchestrator needs: index a document,
// query the knowledge base, and remove a document. Grounded on the
// original implementation's RAGService orchestration of DocumentChunker
// + EmbeddingGenerator + SimilarityScanEngine into one coherent service.
package rag

import (
	"context"
	"fmt"

	"github.com/archbuilder/orchestrator/internal/obslog"
	"github.com/archbuilder/orchestrator/internal/rag/chunker"
	"github.com/archbuilder/orchestrator/internal/rag/vector"
	"github.com/archbuilder/orchestrator/internal/types"
)

// Retriever indexes and queries architectural knowledge-base documents.
type Retriever struct {
	chunker  *chunker.Chunker
	embedder vector.Embedder
	index    *vector.Index
	log      *obslog.Logger
}

// New creates a Retriever with the given embedder (a GenAIEmbedder or a
// bare LocalVectorizer) and chunking strategy.
func New(embedder vector.Embedder, strategy chunker.Strategy, log *obslog.Logger) *Retriever {
	return &Retriever{
		chunker:  chunker.New(strategy),
		embedder: embedder,
		index:    vector.NewIndex(),
		log:      log.WithComponent("rag.retriever"),
	}
}

// IndexDocument chunks content, embeds every chunk, and atomically
// replaces any previously indexed chunks for docID.
func (r *Retriever) IndexDocument(ctx context.Context, docID, content string, in chunker.Input) (int, error) {
	chunks := r.chunker.Chunk(content, docID, in)
	if len(chunks) == 0 {
		r.index.RemoveDocument(docID)
		return 0, nil
	}

	vectors := make([][]float32, len(chunks))
	for i, chunk := range chunks {
		vec, err := r.embedder.Embed(ctx, chunk.Content)
		if err != nil {
			return 0, fmt.Errorf("rag: embed chunk %s: %w", chunk.ChunkID, err)
		}
		vectors[i] = vec
	}

	r.index.ReplaceDocument(docID, chunks, vectors)
	r.log.Info("indexed document", obslog.Fields{
		"document_id": docID,
		"chunk_count": len(chunks),
	})
	return len(chunks), nil
}

// RemoveDocument drops every chunk indexed for docID.
func (r *Retriever) RemoveDocument(docID string) {
	r.index.RemoveDocument(docID)
}

// Query embeds the query text and returns the topK best-matching chunks
// satisfying filter, ranked by the blended cosine/quality/length score.
func (r *Retriever) Query(ctx context.Context, query string, filter types.VectorFilter, topK int) ([]types.Hit, error) {
	if topK <= 0 {
		topK = 10
	}
	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("rag: embed query: %w", err)
	}
	return r.index.Query(vec, filter, 0.1, topK), nil
}

// Size reports the total number of chunks currently indexed, across all
// documents.
func (r *Retriever) Size() int {
	return r.index.Size()
}
