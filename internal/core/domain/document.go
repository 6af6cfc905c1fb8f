package domain

import (
	"strings"
	"time"
)

// DefaultDocumentType is used when a source provides no type for a document.
const DefaultDocumentType = "document"

// MinTextLength is the minimum trimmed text length for a document to be
// indexed. Shorter documents are skipped entirely.
const MinTextLength = 10

// Document is a unit of content to be indexed.
// It is the canonical representation after source normalisation and is
// never mutated once constructed.
type Document struct {
	// SourceID is the stable identifier: a database row id or a file path
	// relative to the scanned root.
	SourceID string

	// Title is the human-readable title.
	Title string

	// Summary is a short description, may be empty.
	Summary string

	// Type is the document category. Defaults to DefaultDocumentType.
	Type string

	// Text is the plain-text body to be chunked.
	Text string

	// Tags are descriptive labels normalised to a flat string list.
	// Sources accept an array, a single scalar, or nothing.
	Tags []string

	// UpdatedAt is when the source content was last modified.
	// Provenance only; it does not affect chunking or identity.
	UpdatedAt time.Time
}

// Indexable reports whether the document carries enough text to be worth
// chunking. Empty and near-empty documents are excluded from the index.
func (d Document) Indexable() bool {
	return len(strings.TrimSpace(d.Text)) >= MinTextLength
}

// Chunk is a bounded slice of a Document's text with its embedding.
// Field names map directly onto the persisted artifact schema.
type Chunk struct {
	// ID is the content-addressed identifier, see ChunkID.
	ID string `json:"id"`

	// StrandID equals the parent document's SourceID.
	StrandID string `json:"strandId"`

	// Text is the trimmed chunk content.
	Text string `json:"text"`

	// Position is the zero-based emission order within the document.
	// Chunks must be reassemblable in reading order.
	Position int `json:"position"`

	// TokenCount is the approximate token count, ceil(len/4).
	TokenCount int `json:"tokenCount"`

	// Embedding is the vector representation. Length equals the index's
	// Dimensions value; empty in dry-run mode, never null.
	Embedding []float32 `json:"embedding"`
}
