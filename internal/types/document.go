package types

import "fmt"

// ChunkMetadata carries the provenance and quality signals attached to a
// DocumentChunk by the chunker and embedder.
type ChunkMetadata struct {
	Language      string  `json:"language"`
	SectionIndex  int     `json:"section_index"`
	ChunkType     string  `json:"chunk_type"`
	QualityScore  float64 `json:"quality_score"`
	ContentLength int     `json:"content_length"`
	WordCount     int     `json:"word_count"`

	// IsBuildingCode and the rest are caller-supplied document metadata
	// propagated through to every chunk, used as vector-query filters.
	IsBuildingCode bool `json:"is_building_code,omitempty"`
}

// DocumentChunk is a bounded, overlap-aware span of a source document.
type DocumentChunk struct {
	ChunkID  string        `json:"chunk_id"`
	DocID    string        `json:"doc_id"`
	Index    int           `json:"index"`
	Content  string        `json:"content"`
	Metadata ChunkMetadata `json:"metadata"`
}

// NewChunkID builds the canonical "{doc_id}_chunk_{idx}" identifier.
func NewChunkID(docID string, idx int) string {
	return fmt.Sprintf("%s_chunk_%d", docID, idx)
}

// EmbeddingVector is a fixed-dimension vector for one chunk.
type EmbeddingVector struct {
	ChunkID string                 `json:"chunk_id"`
	DocID   string                 `json:"doc_id"`
	Vector  []float32              `json:"vector"`
	ModelID string                 `json:"model_id"`
	Meta    map[string]interface{} `json:"meta,omitempty"`
}

// RankingFeatures are the components the retriever blends to produce the
// final re-ranked score for a query hit.
type RankingFeatures struct {
	Cosine       float64 `json:"cosine"`
	QualityScore float64 `json:"quality_score"`
	LengthScore  float64 `json:"length_score"`
}

// Hit is a single scored passage returned by C2/C3 queries.
type Hit struct {
	Chunk           DocumentChunk   `json:"chunk"`
	Score           float64         `json:"score"`
	RankingFeatures RankingFeatures `json:"ranking_features"`
}

// VectorFilter restricts a Query to chunks matching the given predicates.
// A zero-value field means "no restriction on this dimension".
type VectorFilter struct {
	Language          string
	DocIDs            map[string]struct{}
	IsBuildingCode    *bool
	MinContentLength  int
}

// Matches reports whether the chunk metadata satisfies the filter.
func (f VectorFilter) Matches(docID string, meta ChunkMetadata) bool {
	if f.Language != "" && meta.Language != f.Language {
		return false
	}
	if len(f.DocIDs) > 0 {
		if _, ok := f.DocIDs[docID]; !ok {
			return false
		}
	}
	if f.IsBuildingCode != nil && meta.IsBuildingCode != *f.IsBuildingCode {
		return false
	}
	if f.MinContentLength > 0 && meta.ContentLength < f.MinContentLength {
		return false
	}
	return true
}
