package services

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openstrand/oracle-indexer/internal/core/domain"
	"github.com/openstrand/oracle-indexer/internal/index"
)

func writeQueryIndex(t *testing.T, dims int) string {
	t.Helper()
	embedder := &fakeEmbedder{dims: dims}

	chunkFor := func(strandID, text string, pos int) domain.Chunk {
		vec, err := embedder.Embed(context.Background(), text)
		require.NoError(t, err)
		return domain.Chunk{
			ID:         domain.ChunkID(strandID, pos, text),
			StrandID:   strandID,
			Text:       text,
			Position:   pos,
			TokenCount: 5,
			Embedding:  vec,
		}
	}

	idx := &domain.Index{
		Version:       domain.IndexVersion,
		Model:         "fake-embedder",
		Dimensions:    dims,
		GeneratedAt:   "2026-08-25T12:00:00Z",
		BuildID:       "feedfacefeedface",
		DocumentCount: 2,
		ChunkCount:    2,
		Documents: map[string]domain.DocumentEntry{
			"graphs.md": {
				StrandID: "graphs.md", Title: "Graphs", Type: "document", Tags: []string{},
				Chunks: []domain.Chunk{chunkFor("graphs.md", "Knowledge graphs connect concepts.", 0)},
			},
			"cards.md": {
				StrandID: "cards.md", Title: "Cards", Type: "document", Tags: []string{},
				Chunks: []domain.Chunk{chunkFor("cards.md", "Flashcards help with spaced repetition.", 0)},
			},
		},
	}

	path := filepath.Join(t.TempDir(), "oracle-embeddings.json")
	_, err := index.Write(idx, path)
	require.NoError(t, err)
	return path
}

func TestQuery_ExactTextRanksFirst(t *testing.T) {
	path := writeQueryIndex(t, 8)
	q := NewQuery(&fakeEmbedder{dims: 8}, path)

	// The fake embedder is deterministic, so identical text gets an
	// identical vector and a perfect score.
	matches, err := q.Query(context.Background(), "Knowledge graphs connect concepts.", 2)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "graphs.md", matches[0].StrandID)
	assert.InDelta(t, 1.0, matches[0].Score, 1e-6)
	assert.GreaterOrEqual(t, matches[0].Score, matches[1].Score)
}

func TestQuery_TopKLimits(t *testing.T) {
	path := writeQueryIndex(t, 8)
	q := NewQuery(&fakeEmbedder{dims: 8}, path)

	matches, err := q.Query(context.Background(), "anything at all", 1)
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestQuery_DimensionMismatch(t *testing.T) {
	path := writeQueryIndex(t, 8)
	q := NewQuery(&fakeEmbedder{dims: 16}, path)

	_, err := q.Query(context.Background(), "text", 3)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestQuery_MissingIndex(t *testing.T) {
	q := NewQuery(&fakeEmbedder{dims: 8}, filepath.Join(t.TempDir(), "absent.json"))

	_, err := q.Query(context.Background(), "text", 3)
	assert.ErrorIs(t, err, domain.ErrIndexNotFound)
}

func TestQuery_NoEmbedder(t *testing.T) {
	q := NewQuery(nil, "whatever.json")

	_, err := q.Query(context.Background(), "text", 3)
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}
