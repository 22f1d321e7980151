package knowledge

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/empuraan01/fenmoai-hrletter/internal/document"
	"github.com/empuraan01/fenmoai-hrletter/internal/logger"
)

// Chunk is one retrievable unit of a source document.
type Chunk struct {
	Content        string
	ChunkID        string
	SourceDocument string
	Category       document.Category
	PageNumber     int
	ChunkIndex     int
	Metadata       map[string]interface{}
}

// Chunker splits document text into chunks. HR policy documents are split
// on section headings so entitlement tables stay whole; everything else
// falls back to a word-count sliding window.
type Chunker struct {
	chunkSize int
	overlap   int
	logger    *zap.Logger
}

const minSectionChars = 50

// Heading layouts tried in order; the first with at least one match wins.
var sectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\n\d+\.\s+[A-Z][^.\n]*\n`),
	regexp.MustCompile(`\n[A-Z][A-Z\s]{3,}:\n`),
	regexp.MustCompile(`\n[A-Z][A-Z\s]{3,}\n\n`),
}

var pageMarkerPattern = regexp.MustCompile(`--- Page (\d+) ---`)

// NewChunker creates a chunker with word-count window parameters.
// Out-of-range values fall back to the defaults.
func NewChunker(chunkSize, overlap int) *Chunker {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = 200
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 5
	}
	return &Chunker{
		chunkSize: chunkSize,
		overlap:   overlap,
		logger:    logger.GetLogger(),
	}
}

// ChunkDocument splits content into chunks for indexing.
func (c *Chunker) ChunkDocument(content, sourceDocument string, category document.Category) []Chunk {
	if strings.TrimSpace(content) == "" {
		return nil
	}

	if category == document.CategoryHRPolicy {
		if chunks := c.semanticChunks(content, sourceDocument, category); len(chunks) > 0 {
			c.logger.Debug("chunked document semantically",
				zap.String("document", sourceDocument), zap.Int("chunks", len(chunks)))
			return chunks
		}
	}

	chunks := c.windowChunks(content, sourceDocument, category)
	c.logger.Debug("chunked document by sliding window",
		zap.String("document", sourceDocument), zap.Int("chunks", len(chunks)))
	return chunks
}

func (c *Chunker) semanticChunks(content, sourceDocument string, category document.Category) []Chunk {
	sections, offsets := splitSections(content)
	if sections == nil {
		return nil
	}

	pages := pageOffsets(content)
	var chunks []Chunk
	for i, section := range sections {
		section = strings.TrimSpace(section)
		if len(section) < minSectionChars {
			continue
		}

		isTable := strings.Contains(section, "=== TABLE") && strings.Contains(section, "ROW 1 DETAILS")
		page := pageForOffset(pages, offsets[i])

		// Oversized prose sections get re-windowed; tables never do, a
		// split table loses its row structure.
		if len(section) > c.chunkSize && !isTable {
			for j, piece := range c.slidingWindow(section) {
				chunks = append(chunks, Chunk{
					Content:        piece,
					ChunkID:        fmt.Sprintf("%s_semantic_%d_%d", sourceDocument, i, j),
					SourceDocument: sourceDocument,
					Category:       category,
					PageNumber:     page,
					ChunkIndex:     len(chunks),
					Metadata: map[string]interface{}{
						"chunking_method": "semantic",
						"section":         strconv.Itoa(i),
						"is_table":        false,
					},
				})
			}
			continue
		}

		chunks = append(chunks, Chunk{
			Content:        section,
			ChunkID:        fmt.Sprintf("%s_semantic_%d", sourceDocument, i),
			SourceDocument: sourceDocument,
			Category:       category,
			PageNumber:     page,
			ChunkIndex:     len(chunks),
			Metadata: map[string]interface{}{
				"chunking_method": "semantic",
				"section":         strconv.Itoa(i),
				"is_table":        isTable,
			},
		})
	}
	return chunks
}

func (c *Chunker) windowChunks(content, sourceDocument string, category document.Category) []Chunk {
	pieces := c.slidingWindow(content)
	chunks := make([]Chunk, 0, len(pieces))
	for i, piece := range pieces {
		chunks = append(chunks, Chunk{
			Content:        piece,
			ChunkID:        fmt.Sprintf("%s_window_%d", sourceDocument, i),
			SourceDocument: sourceDocument,
			Category:       category,
			ChunkIndex:     i,
			Metadata: map[string]interface{}{
				"chunking_method": "sliding_window",
				"is_table":        false,
			},
		})
	}
	return chunks
}

// splitSections cuts content at the first heading pattern that matches,
// keeping each heading attached to the text it introduces. Returns nil
// when no pattern matches.
func splitSections(content string) ([]string, []int) {
	for _, pattern := range sectionPatterns {
		matches := pattern.FindAllStringIndex(content, -1)
		if len(matches) == 0 {
			continue
		}

		var sections []string
		var offsets []int
		prev := 0
		for _, m := range matches {
			if m[0] > prev {
				sections = append(sections, content[prev:m[0]])
				offsets = append(offsets, prev)
			}
			prev = m[0]
		}
		sections = append(sections, content[prev:])
		offsets = append(offsets, prev)
		return sections, offsets
	}
	return nil, nil
}

// slidingWindow splits text into overlapping word windows. Text at or
// under the window size comes back as a single piece.
func (c *Chunker) slidingWindow(text string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	if len(words) <= c.chunkSize {
		return []string{text}
	}

	step := c.chunkSize - c.overlap
	var pieces []string
	for i := 0; ; i += step {
		end := i + c.chunkSize
		if end > len(words) {
			end = len(words)
		}
		pieces = append(pieces, strings.Join(words[i:end], " "))
		if i+c.chunkSize >= len(words) {
			break
		}
	}
	return pieces
}

func pageOffsets(content string) [][2]int {
	matches := pageMarkerPattern.FindAllStringSubmatchIndex(content, -1)
	if len(matches) == 0 {
		return nil
	}
	pages := make([][2]int, 0, len(matches))
	for _, m := range matches {
		page, err := strconv.Atoi(content[m[2]:m[3]])
		if err != nil {
			continue
		}
		pages = append(pages, [2]int{m[0], page})
	}
	return pages
}

func pageForOffset(pages [][2]int, offset int) int {
	page := 0
	for _, p := range pages {
		if p[0] > offset {
			break
		}
		page = p[1]
	}
	return page
}
