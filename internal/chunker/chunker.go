// Package chunker splits document text into overlapping, token-bounded
// segments sized for a single embedding call.
package chunker

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// DefaultChunkSize is the default chunk budget in estimated tokens.
const DefaultChunkSize = 512

// DefaultOverlap is the default overlap between chunks in estimated tokens.
const DefaultOverlap = 50

// charsPerToken is the character-to-token ratio used by the estimator.
const charsPerToken = 4

// sentenceBoundary marks a break immediately after '.', '!' or '?' followed
// by whitespace. Abbreviations ("Dr.", "U.S.") are not special-cased, so
// they over-split; the ids and overlap behaviour downstream rely on this
// exact heuristic staying stable.
var sentenceBoundary = regexp.MustCompile(`[.!?]\s+`)

// Segment is one emitted chunk of text before identity and embedding are
// attached.
type Segment struct {
	// Text is the trimmed segment content.
	Text string

	// Position is the zero-based emission order, assigned when the segment
	// is closed.
	Position int

	// TokenCount is the estimated token count of Text.
	TokenCount int
}

// Chunker accumulates sentences into token-bounded segments.
type Chunker struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithChunkSize sets the chunk budget in estimated tokens.
func WithChunkSize(size int) Option {
	return func(c *Chunker) {
		if size > 0 {
			c.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between consecutive chunks in estimated tokens.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		if overlap >= 0 {
			c.overlap = overlap
		}
	}
}

// New creates a chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultOverlap,
	}

	for _, opt := range opts {
		opt(c)
	}

	// Overlap at or above the chunk budget would never make progress.
	if c.overlap >= c.chunkSize {
		c.overlap = c.chunkSize / 4
	}

	return c
}

// EstimateTokens approximates the token count of s as ceil(characters / 4).
func EstimateTokens(s string) int {
	n := utf8.RuneCountInString(s)
	return (n + charsPerToken - 1) / charsPerToken
}

// Chunk splits text into segments. Sentences are accumulated until the
// running token estimate would exceed the chunk budget; the closing
// segment's trailing overlap*4 characters seed the next one. A single
// sentence larger than the budget becomes its own segment, unbounded.
// Whitespace-only input yields no segments.
func (c *Chunker) Chunk(text string) []Segment {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	sentences := splitSentences(text)

	var segments []Segment
	current := ""
	currentTokens := 0
	position := 0

	for _, sentence := range sentences {
		sentenceTokens := EstimateTokens(sentence)

		if current != "" && currentTokens+sentenceTokens > c.chunkSize {
			closed := strings.TrimSpace(current)
			segments = append(segments, Segment{
				Text:       closed,
				Position:   position,
				TokenCount: EstimateTokens(closed),
			})
			position++

			// Seed the next chunk with the raw character tail of the one
			// just closed. Not sentence-aligned: the overlap may start
			// mid-word.
			overlapText := tail(closed, c.overlap*charsPerToken)
			current = overlapText + " " + sentence
			currentTokens = EstimateTokens(overlapText) + sentenceTokens
			continue
		}

		if current == "" {
			current = sentence
		} else {
			current += " " + sentence
		}
		currentTokens += sentenceTokens
	}

	if strings.TrimSpace(current) != "" {
		closed := strings.TrimSpace(current)
		segments = append(segments, Segment{
			Text:       closed,
			Position:   position,
			TokenCount: EstimateTokens(closed),
		})
	}

	return segments
}

// splitSentences breaks text after sentence-ending punctuation followed by
// whitespace. The punctuation stays with its sentence; the whitespace is
// consumed.
func splitSentences(text string) []string {
	var sentences []string
	start := 0
	for _, loc := range sentenceBoundary.FindAllStringIndex(text, -1) {
		// loc[0] is the punctuation byte; include it in the sentence.
		sentences = append(sentences, text[start:loc[0]+1])
		start = loc[1]
	}
	if start < len(text) {
		sentences = append(sentences, text[start:])
	}
	return sentences
}

// tail returns the last n characters of s (the whole string if shorter).
func tail(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[len(runes)-n:])
}
