// Package chunker implements C1's document chunking: section-aware
// splitting with paragraph accumulation, character-fallback chunking
// with language-aware sentence-boundary search, overlap carry-over, and
// post-hoc quality scoring. Ported from the original implementation's
// DocumentChunker, restructured into the teacher's small-struct,
// explicit-error idiom.
package chunker

import (
	"strings"
	"unicode"

	"github.com/archbuilder/orchestrator/internal/types"
)

// Input is the caller-supplied document metadata propagated onto every
// chunk and used downstream as vector-query filter fields.
type Input struct {
	Language       string
	IsBuildingCode bool
}

// Strategy configures chunking behavior. Defaults mirror the original
// service's ChunkingStrategy.
type Strategy struct {
	ChunkSize         int
	Overlap           int
	RespectSentences  bool
	RespectParagraphs bool
	MinChunkSize      int
	MaxChunkSize      int
}

// DefaultStrategy returns the production chunking configuration.
func DefaultStrategy() Strategy {
	return Strategy{
		ChunkSize:         1000,
		Overlap:           200,
		RespectSentences:  true,
		RespectParagraphs: true,
		MinChunkSize:      100,
		MaxChunkSize:      2000,
	}
}

var sentenceDelimiters = map[string][]rune{
	"en": {'.', '!', '?'},
	"tr": {'.', '!', '?', ':', ';'},
	"de": {'.', '!', '?', ':', ';'},
	"fr": {'.', '!', '?', ':', ';'},
	"es": {'.', '!', '?', ':', ';'},
}

var sectionMarkers = []string{
	"Article", "Section", "Chapter", "Madde", "Bölüm", "Artikel",
	"Paragraf", "Clause", "Subsection", "Part",
}

// Chunker splits document content into DocumentChunks.
type Chunker struct {
	strategy Strategy
}

// New creates a Chunker with the given strategy.
func New(strategy Strategy) *Chunker {
	return &Chunker{strategy: strategy}
}

// Chunk splits content into chunks, attaching docID/language/section
// metadata and a computed quality score to each. in.Language defaults to
// "en" when empty.
func (c *Chunker) Chunk(content, docID string, in Input) []types.DocumentChunk {
	language := in.Language
	if language == "" {
		language = "en"
	}

	sections := c.splitIntoSections(content, language)

	var chunks []types.DocumentChunk
	chunkIndex := 0
	for sectionIdx, section := range sections {
		sectionChunks := c.chunkSection(section, docID, sectionIdx, chunkIndex, in, language)
		chunks = append(chunks, sectionChunks...)
		chunkIndex += len(sectionChunks)
	}

	return c.postProcess(chunks)
}

func (c *Chunker) splitIntoSections(content, language string) []string {
	lines := strings.Split(content, "\n")
	var sections []string
	var current []string

	flush := func() {
		joined := strings.TrimSpace(strings.Join(current, "\n"))
		if joined != "" {
			sections = append(sections, joined)
		}
	}

	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if c.isSectionHeader(line) && len(current) > 0 {
			flush()
			current = []string{line}
		} else {
			current = append(current, line)
		}
	}
	flush()

	if len(sections) == 0 {
		sections = []string{content}
	}
	return sections
}

func (c *Chunker) isSectionHeader(line string) bool {
	if line == "" {
		return false
	}
	for _, marker := range sectionMarkers {
		if strings.HasPrefix(line, marker) {
			return true
		}
	}

	words := strings.Fields(line)
	if len(words) > 0 {
		first := words[0]
		stripped := strings.NewReplacer(".", "", "-", "").Replace(first)
		if isAllDigits(stripped) {
			return true
		}
		limit := first
		if len(limit) > 5 {
			limit = limit[:5]
		}
		for _, r := range limit {
			if unicode.IsDigit(r) {
				return true
			}
		}
	}

	if line == strings.ToUpper(line) && hasLetter(line) && len(words) <= 8 {
		return true
	}
	return false
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

func (c *Chunker) chunkSection(section, docID string, sectionIdx, startIdx int, in Input, language string) []types.DocumentChunk {
	if len(section) <= c.strategy.MaxChunkSize {
		return []types.DocumentChunk{c.newChunk(section, docID, startIdx, sectionIdx, language, "complete_section", in)}
	}

	if c.strategy.RespectParagraphs {
		return c.chunkByParagraphs(section, docID, sectionIdx, startIdx, in, language)
	}
	return c.chunkByCharacters(section, docID, sectionIdx, startIdx, in, language)
}

func (c *Chunker) chunkByParagraphs(section, docID string, sectionIdx, startIdx int, in Input, language string) []types.DocumentChunk {
	paragraphs := strings.Split(section, "\n\n")
	var chunks []types.DocumentChunk
	var current strings.Builder
	idx := startIdx

	flush := func() {
		content := strings.TrimSpace(current.String())
		if content != "" {
			chunks = append(chunks, c.newChunk(content, docID, idx, sectionIdx, language, "paragraph_split", in))
		}
	}

	for _, para := range paragraphs {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}

		if len(para) > c.strategy.MaxChunkSize {
			if strings.TrimSpace(current.String()) != "" {
				flush()
				idx++
			}
			current.Reset()
			split := c.chunkByCharacters(para, docID, sectionIdx, idx, in, language)
			chunks = append(chunks, split...)
			if len(split) > 0 {
				idx = split[len(split)-1].Index + 1
			}
			continue
		}

		if current.Len()+len(para)+2 > c.strategy.ChunkSize && current.Len() >= c.strategy.MinChunkSize {
			flush()
			overlap := c.overlapText(current.String())
			current.Reset()
			if overlap != "" {
				current.WriteString(overlap)
				current.WriteString("\n\n")
			}
			current.WriteString(para)
			idx++
		} else {
			if current.Len() > 0 {
				current.WriteString("\n\n")
			}
			current.WriteString(para)
		}
	}
	flush()

	return chunks
}

func (c *Chunker) chunkByCharacters(text, docID string, sectionIdx, startIdx int, in Input, language string) []types.DocumentChunk {
	var chunks []types.DocumentChunk
	idx := startIdx
	start := 0
	runes := []rune(text)
	n := len(runes)

	for start < n {
		end := start + c.strategy.ChunkSize
		if end >= n {
			content := strings.TrimSpace(string(runes[start:]))
			if content != "" {
				chunks = append(chunks, c.newChunk(content, docID, idx, sectionIdx, language, "character_split", in))
			}
			break
		}

		if c.strategy.RespectSentences {
			if boundary := c.findSentenceBoundary(runes, end, language, start+c.strategy.MinChunkSize); boundary > start {
				end = boundary
			}
		}

		content := strings.TrimSpace(string(runes[start:end]))
		if content != "" {
			chunks = append(chunks, c.newChunk(content, docID, idx, sectionIdx, language, "character_split", in))
		}

		start = end - c.strategy.Overlap
		idx++
	}

	return chunks
}

func (c *Chunker) findSentenceBoundary(runes []rune, preferredEnd int, language string, minEnd int) int {
	delims := sentenceDelimiters[language]
	if delims == nil {
		delims = sentenceDelimiters["en"]
	}

	searchStart := preferredEnd - 200
	if minEnd > searchStart {
		searchStart = minEnd
	}
	if searchStart < 0 {
		searchStart = 0
	}

	for i := preferredEnd - 1; i >= searchStart; i-- {
		if containsRune(delims, runes[i]) {
			if i+1 < len(runes) && (unicode.IsSpace(runes[i+1]) || runes[i+1] == '\n') {
				return i + 1
			}
		}
	}
	return preferredEnd
}

func containsRune(set []rune, r rune) bool {
	for _, c := range set {
		if c == r {
			return true
		}
	}
	return false
}

func (c *Chunker) overlapText(text string) string {
	runes := []rune(text)
	if len(runes) <= c.strategy.Overlap {
		return text
	}
	tail := string(runes[len(runes)-c.strategy.Overlap:])
	if idx := strings.Index(tail, " "); idx > 0 {
		tail = tail[idx+1:]
	}
	return tail
}

func (c *Chunker) newChunk(content, docID string, idx, sectionIdx int, language, chunkType string, in Input) types.DocumentChunk {
	return types.DocumentChunk{
		ChunkID: types.NewChunkID(docID, idx),
		DocID:   docID,
		Index:   idx,
		Content: content,
		Metadata: types.ChunkMetadata{
			Language:       language,
			SectionIndex:   sectionIdx,
			ChunkType:      chunkType,
			IsBuildingCode: in.IsBuildingCode,
		},
	}
}

func (c *Chunker) postProcess(chunks []types.DocumentChunk) []types.DocumentChunk {
	out := make([]types.DocumentChunk, 0, len(chunks))
	for i, chunk := range chunks {
		content := strings.TrimSpace(chunk.Content)
		// The last chunk of a section is kept even when shorter than MinChunkSize.
		lastOfSection := i == len(chunks)-1 || chunks[i+1].Metadata.SectionIndex != chunk.Metadata.SectionIndex
		if content == "" || (len(content) < c.strategy.MinChunkSize && !lastOfSection) {
			continue
		}

		content = strings.Join(strings.Fields(content), " ")
		chunk.Content = content
		chunk.Metadata.ContentLength = len(content)
		chunk.Metadata.WordCount = len(strings.Fields(content))
		chunk.Metadata.QualityScore = c.qualityScore(content)

		out = append(out, chunk)
	}
	return out
}

func (c *Chunker) qualityScore(content string) float64 {
	score := 1.0

	if len(content) < 100 {
		score *= 0.5
	}

	spaceCount := strings.Count(content, " ")
	whitespaceRatio := float64(spaceCount) / float64(len(content))
	if whitespaceRatio > 0.3 {
		score *= 0.8
	}

	trimmed := strings.TrimSpace(content)
	for _, delim := range []string{".", "!", "?"} {
		if strings.HasSuffix(trimmed, delim) {
			score *= 1.1
			break
		}
	}

	for _, marker := range sectionMarkers {
		if strings.Contains(content, marker) {
			score *= 1.2
			break
		}
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}
