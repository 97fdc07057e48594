// Package vector implements C2: embedding generation and the in-memory
// vector index used by the retriever. A deterministic hashed
// term-frequency vectorizer (grounded on the original implementation's
// TF-IDF fallback) stands in as the always-available local embedder; an
// optional Google GenAI-backed embedder (grounded on codenerd's
// embedding.GenAIEngine) is tried first when configured and falls
// through to the local one on any error, so indexing and querying never
// hard-fail for lack of an external embedding API.
package vector

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	"google.golang.org/genai"
)

const localDimensions = 512

// Embedder produces a fixed-dimension vector for a piece of text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
	Name() string
}

// LocalVectorizer is a deterministic hashed bag-of-words embedder: every
// token is hashed into one of 512 buckets and weighted by
// term-frequency, then L2-normalized. It requires no external service
// and no fitting step, trading semantic quality for total availability —
// the same role the original implementation's TF-IDF fallback played
// when no remote embedding API was configured.
type LocalVectorizer struct{}

// NewLocalVectorizer creates a LocalVectorizer.
func NewLocalVectorizer() *LocalVectorizer { return &LocalVectorizer{} }

func (v *LocalVectorizer) Dimensions() int { return localDimensions }
func (v *LocalVectorizer) Name() string    { return "local-hashed-tf-512d" }

// Embed tokenizes text on non-letter/digit boundaries, hashes each token
// (and each adjacent bigram, mirroring the original's (1,2) ngram range)
// into a bucket, accumulates term frequency, then L2-normalizes.
func (v *LocalVectorizer) Embed(_ context.Context, text string) ([]float32, error) {
	tokens := tokenize(text)
	vec := make([]float32, localDimensions)

	for i, tok := range tokens {
		vec[bucket(tok)]++
		if i+1 < len(tokens) {
			vec[bucket(tok+"_"+tokens[i+1])] += 0.5
		}
	}

	normalize(vec)
	return vec, nil
}

func tokenize(text string) []string {
	lower := strings.ToLower(text)
	return strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func bucket(token string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(token))
	return int(h.Sum32() % uint32(localDimensions))
}

func normalize(vec []float32) {
	var sumSq float64
	for _, v := range vec {
		sumSq += float64(v) * float64(v)
	}
	if sumSq == 0 {
		return
	}
	norm := float32(math.Sqrt(sumSq))
	for i := range vec {
		vec[i] /= norm
	}
}

// GenAIEmbedder wraps Google's GenAI embedding API, falling through to a
// LocalVectorizer whenever the remote call fails (quota, network,
// unsupported region) so RAG indexing stays available under provider
// outages, matching spec §4.2's "never hard-fail" requirement for C2.
type GenAIEmbedder struct {
	client *genai.Client
	model  string
	local  *LocalVectorizer
}

// NewGenAIEmbedder creates a GenAI-backed embedder. model defaults to
// "gemini-embedding-001" when empty.
func NewGenAIEmbedder(client *genai.Client, model string) *GenAIEmbedder {
	if model == "" {
		model = "gemini-embedding-001"
	}
	return &GenAIEmbedder{client: client, model: model, local: NewLocalVectorizer()}
}

func (e *GenAIEmbedder) Dimensions() int { return localDimensions }
func (e *GenAIEmbedder) Name() string    { return "genai:" + e.model }

// Embed calls the remote API and, on any failure, silently falls
// through to the local hashed-TF vectorizer rather than propagating the
// error — embedding is best-effort infrastructure for retrieval quality,
// not a correctness-critical path.
func (e *GenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if e.client == nil {
		return e.local.Embed(ctx, text)
	}

	contents := []*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}
	dims := int32(localDimensions)
	result, err := e.client.Models.EmbedContent(ctx, e.model, contents, &genai.EmbedContentConfig{
		OutputDimensionality: &dims,
	})
	if err != nil || len(result.Embeddings) == 0 {
		return e.local.Embed(ctx, text)
	}
	return result.Embeddings[0].Values, nil
}
