package chunker

import (
	"strings"

	"github.com/dgallion1/vbtree/internal/doctree"
)

// Config controls chunking behavior.
type Config struct {
	ChunkSize    int // Target chunk size in tokens.
	ChunkOverlap int // Overlap between consecutive pieces of one split unit, in tokens.
	MinChunk     int // Minimum chunk size to emit.
}

// DefaultConfig returns the defaults used when a request does not set them.
func DefaultConfig() Config {
	return Config{
		ChunkSize:    800,
		ChunkOverlap: 100,
		MinChunk:     1,
	}
}

// unitLevel is the depth at which a node and its whole subtree become one
// chunk: articles in statutes and decisions, items in directives and plans.
const unitLevel = 4

// ChunkResult cuts a parsed document into retrieval chunks. Every article or
// item becomes one chunk holding its title and the text of its clauses and
// points; nodes above that level contribute their own content only. Units
// larger than ChunkSize are split on line and sentence boundaries with
// overlap. Metadata and attachments are not chunked.
func ChunkResult(res *doctree.Result, cfg Config) []doctree.Chunk {
	def := DefaultConfig()
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = def.ChunkSize
	}
	if cfg.ChunkOverlap < 0 || cfg.ChunkOverlap >= cfg.ChunkSize {
		cfg.ChunkOverlap = min(def.ChunkOverlap, cfg.ChunkSize/2)
	}
	if cfg.MinChunk <= 0 {
		cfg.MinChunk = def.MinChunk
	}
	if res == nil || res.Root == nil {
		return nil
	}

	c := &chunkWriter{cfg: cfg}
	c.visit(res.Root, nil)
	return c.chunks
}

type chunkWriter struct {
	cfg    Config
	chunks []doctree.Chunk
}

func (c *chunkWriter) visit(n *doctree.Node, breadcrumb []string) {
	bc := breadcrumb
	if n.Kind != doctree.Document && n.Title != "" {
		bc = append(copyBreadcrumb(breadcrumb), n.Title)
	}

	if n.Kind != doctree.Document && n.Level() >= unitLevel {
		text := doctree.FullText(n)
		if n.Title != "" {
			text = strings.TrimSpace(n.Title + "\n" + text)
		}
		c.emit(n, bc, text)
		return
	}

	c.emit(n, bc, n.Text())
	for _, child := range n.Children {
		c.visit(child, bc)
	}
}

func (c *chunkWriter) emit(n *doctree.Node, bc []string, text string) {
	if text == "" {
		return
	}
	parts := []string{text}
	if EstimateTokens(text) > c.cfg.ChunkSize {
		parts = splitText(text, c.cfg.ChunkSize, c.cfg.ChunkOverlap)
	}
	for _, part := range parts {
		if EstimateTokens(part) < c.cfg.MinChunk {
			continue
		}
		c.chunks = append(c.chunks, doctree.Chunk{
			Text:       part,
			Index:      len(c.chunks),
			Breadcrumb: copyBreadcrumb(bc),
			Kind:       n.Kind,
			AnchorID:   n.AnchorID,
		})
	}
}

// splitText breaks text into pieces of approximately targetTokens, with
// overlap. Lines are kept whole where possible.
func splitText(text string, targetTokens, overlapTokens int) []string {
	var result []string
	var current strings.Builder
	currentTokens := 0

	for _, line := range splitLines(text) {
		lineTokens := EstimateTokens(line)

		if lineTokens > targetTokens {
			if currentTokens > 0 {
				result = append(result, current.String())
				current.Reset()
				currentTokens = 0
			}
			result = append(result, splitBySentences(line, targetTokens, overlapTokens)...)
			continue
		}

		if currentTokens+lineTokens > targetTokens && currentTokens > 0 {
			result = append(result, current.String())
			overlap := getOverlapText(current.String(), overlapTokens)
			current.Reset()
			currentTokens = 0
			if overlap != "" {
				current.WriteString(overlap)
				currentTokens = EstimateTokens(overlap)
			}
		}

		if current.Len() > 0 {
			current.WriteString("\n")
		}
		current.WriteString(line)
		currentTokens += lineTokens
	}

	if currentTokens > 0 {
		result = append(result, current.String())
	}
	return result
}

func splitLines(text string) []string {
	var out []string
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

// splitBySentences breaks one oversized line into sentence-based pieces.
func splitBySentences(text string, targetTokens, overlapTokens int) []string {
	var result []string
	var current strings.Builder
	currentTokens := 0

	for _, sent := range splitSentences(text) {
		sentTokens := EstimateTokens(sent)

		if currentTokens+sentTokens > targetTokens && currentTokens > 0 {
			result = append(result, current.String())
			overlap := getOverlapText(current.String(), overlapTokens)
			current.Reset()
			currentTokens = 0
			if overlap != "" {
				current.WriteString(overlap)
				currentTokens = EstimateTokens(overlap)
			}
		}

		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(sent)
		currentTokens += sentTokens
	}

	if currentTokens > 0 {
		result = append(result, current.String())
	}
	return result
}

// splitSentences splits after '.', ';', '!' or '?' followed by a space.
// Enumerations in legal prose end with ';' far more often than with '.'.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	for i, r := range text {
		current.WriteRune(r)
		if (r == '.' || r == ';' || r == '!' || r == '?') && i+1 < len(text) && text[i+1] == ' ' {
			sentences = append(sentences, strings.TrimSpace(current.String()))
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

// getOverlapText returns the trailing words of text worth about
// targetTokens tokens.
func getOverlapText(text string, targetTokens int) string {
	words := strings.Fields(text)
	targetWords := int(float64(targetTokens) / tokensPerWord)
	if targetWords <= 0 || len(words) <= targetWords {
		return ""
	}
	return strings.Join(words[len(words)-targetWords:], " ")
}

func copyBreadcrumb(bc []string) []string {
	if len(bc) == 0 {
		return nil
	}
	out := make([]string, len(bc))
	copy(out, bc)
	return out
}
