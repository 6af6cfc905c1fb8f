package index

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openstrand/oracle-indexer/internal/core/domain"
)

func sampleIndex() *domain.Index {
	return &domain.Index{
		Version:       domain.IndexVersion,
		Model:         "all-MiniLM-L6-v2",
		Dimensions:    3,
		GeneratedAt:   "2026-08-25T12:00:00Z",
		BuildID:       "0123456789abcdef",
		DocumentCount: 1,
		ChunkCount:    2,
		Documents: map[string]domain.DocumentEntry{
			"notes/alpha.md": {
				StrandID: "notes/alpha.md",
				Title:    "Alpha",
				Summary:  "",
				Type:     "document",
				Tags:     []string{"x"},
				Chunks: []domain.Chunk{
					{ID: "aaaa", StrandID: "notes/alpha.md", Text: "First chunk.", Position: 0, TokenCount: 3, Embedding: []float32{1, 0, 0}},
					{ID: "bbbb", StrandID: "notes/alpha.md", Text: "Second chunk.", Position: 1, TokenCount: 4, Embedding: []float32{0, 1, 0}},
				},
			},
		},
	}
}

func TestWriteAndLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "oracle-embeddings.json")

	size, err := Write(sampleIndex(), path)
	require.NoError(t, err)
	assert.Greater(t, size, int64(0))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, size, info.Size())

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, sampleIndex(), loaded)
}

func TestWrite_EmptyCollectionsStayArrays(t *testing.T) {
	idx := sampleIndex()
	entry := idx.Documents["notes/alpha.md"]
	entry.Tags = []string{}
	entry.Chunks[0].Embedding = []float32{}
	idx.Documents["notes/alpha.md"] = entry

	path := filepath.Join(t.TempDir(), "out.json")
	_, err := Write(idx, path)
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(raw)
	assert.NotContains(t, content, `"tags": null`)
	assert.NotContains(t, content, `"embedding": null`)
	assert.True(t, strings.Contains(content, `"tags": []`))
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	assert.ErrorIs(t, err, domain.ErrIndexNotFound)
}

func TestLoad_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, CosineSimilarity([]float32{1, 0}, []float32{2, 0}), 1e-9)
	assert.InDelta(t, 0.0, CosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, CosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-9)
	assert.Equal(t, 0.0, CosineSimilarity([]float32{1, 0}, []float32{1}))
	assert.Equal(t, 0.0, CosineSimilarity([]float32{0, 0}, []float32{0, 0}))
	assert.Equal(t, 0.0, CosineSimilarity(nil, nil))
}

func TestRank(t *testing.T) {
	idx := sampleIndex()

	matches := Rank(idx, []float32{1, 0.1, 0}, 10)
	require.Len(t, matches, 2)
	assert.Equal(t, "aaaa", matches[0].ChunkID)
	assert.Equal(t, "bbbb", matches[1].ChunkID)
	assert.Greater(t, matches[0].Score, matches[1].Score)
}

func TestRank_TopKAndEmptyEmbeddings(t *testing.T) {
	idx := sampleIndex()
	entry := idx.Documents["notes/alpha.md"]
	entry.Chunks[1].Embedding = nil // dry-run style chunk is skipped
	idx.Documents["notes/alpha.md"] = entry

	matches := Rank(idx, []float32{0, 1, 0}, 1)
	require.Len(t, matches, 1)
	assert.Equal(t, "aaaa", matches[0].ChunkID)
}
