package vector

import (
	"math"
	"sort"
	"sync"

	"github.com/archbuilder/orchestrator/internal/types"
)

// entry is one indexed chunk plus its embedding.
type entry struct {
	chunk  types.DocumentChunk
	vector []float32
}

// Index is an in-memory, mutex-protected vector index over
// DocumentChunks. Documents are replaced atomically: re-indexing a
// document_id first drops every chunk previously stored for it, so
// stale chunks never linger after a document update — grounded on the
// original SimilaritySearchEngine's index_chunks/remove_document pair.
type Index struct {
	mu      sync.RWMutex
	entries map[string]entry   // chunk_id -> entry
	byDoc   map[string]map[string]struct{} // doc_id -> set of chunk_ids
}

// NewIndex creates an empty Index.
func NewIndex() *Index {
	return &Index{
		entries: make(map[string]entry),
		byDoc:   make(map[string]map[string]struct{}),
	}
}

// ReplaceDocument atomically swaps out every chunk previously indexed
// under docID for the given (chunks, vectors) pair.
func (idx *Index) ReplaceDocument(docID string, chunks []types.DocumentChunk, vectors [][]float32) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.removeDocumentLocked(docID)

	ids := make(map[string]struct{}, len(chunks))
	for i, chunk := range chunks {
		idx.entries[chunk.ChunkID] = entry{chunk: chunk, vector: vectors[i]}
		ids[chunk.ChunkID] = struct{}{}
	}
	idx.byDoc[docID] = ids
}

// RemoveDocument drops every chunk indexed under docID.
func (idx *Index) RemoveDocument(docID string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.removeDocumentLocked(docID)
}

func (idx *Index) removeDocumentLocked(docID string) {
	for chunkID := range idx.byDoc[docID] {
		delete(idx.entries, chunkID)
	}
	delete(idx.byDoc, docID)
}

// Size reports the number of indexed chunks.
func (idx *Index) Size() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.entries)
}

// Query returns the topK highest-scoring chunks for the query vector
// matching filter, with cosine similarity below minSimilarity excluded.
// Ties are broken by quality_score then chunk_id for deterministic
// ordering across otherwise-equal results.
func (idx *Index) Query(queryVec []float32, filter types.VectorFilter, minSimilarity float64, topK int) []types.Hit {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	var hits []types.Hit
	for _, e := range idx.entries {
		if !filter.Matches(e.chunk.DocID, e.chunk.Metadata) {
			continue
		}

		cosine := cosineSimilarity(queryVec, e.vector)
		if cosine < minSimilarity {
			continue
		}

		lengthScore := float64(len(e.chunk.Content)) / 1000.0
		if lengthScore > 1.0 {
			lengthScore = 1.0
		}

		features := types.RankingFeatures{
			Cosine:       cosine,
			QualityScore: e.chunk.Metadata.QualityScore,
			LengthScore:  lengthScore,
		}
		combined := features.Cosine*0.6 + features.QualityScore*0.3 + features.LengthScore*0.1

		hits = append(hits, types.Hit{
			Chunk:           e.chunk,
			Score:           combined,
			RankingFeatures: features,
		})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		if hits[i].Chunk.Metadata.QualityScore != hits[j].Chunk.Metadata.QualityScore {
			return hits[i].Chunk.Metadata.QualityScore > hits[j].Chunk.Metadata.QualityScore
		}
		return hits[i].Chunk.ChunkID < hits[j].Chunk.ChunkID
	})

	if topK > 0 && len(hits) > topK {
		hits = hits[:topK]
	}
	return hits
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
