package driving

import "context"

// QueryService ranks chunks of an existing index against a query string.
// It is the offline smoke test for the artifact the web client consumes.
type QueryService interface {
	// Query embeds text with the same provider/model family as the index
	// and returns the topK most similar chunks by cosine similarity.
	Query(ctx context.Context, text string, topK int) ([]QueryMatch, error)
}

// QueryMatch is one ranked chunk.
type QueryMatch struct {
	// StrandID is the owning document's source id.
	StrandID string

	// Title is the owning document's title.
	Title string

	// ChunkID is the matched chunk's content-addressed id.
	ChunkID string

	// Text is the chunk text.
	Text string

	// Position is the chunk's position within its document.
	Position int

	// Score is the cosine similarity in [-1, 1].
	Score float64
}
