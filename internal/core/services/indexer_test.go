package services

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openstrand/oracle-indexer/internal/core/domain"
	"github.com/openstrand/oracle-indexer/internal/index"
)

// fakeSource returns a fixed document list.
type fakeSource struct {
	docs     []domain.Document
	warnings []string
	err      error
	closed   bool
}

func (f *fakeSource) Name() string { return "files" }

func (f *fakeSource) Fetch(context.Context) ([]domain.Document, []string, error) {
	return f.docs, f.warnings, f.err
}

func (f *fakeSource) Close() error {
	f.closed = true
	return nil
}

// fakeEmbedder produces deterministic hash-derived pseudo-embeddings, so
// pipeline wiring can be validated without a real model.
type fakeEmbedder struct {
	dims    int
	failOn  string // substring that makes Embed fail
	pingErr error
	calls   int
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	f.calls++
	if f.failOn != "" && strings.Contains(text, f.failOn) {
		return nil, errors.New("model exploded")
	}
	sum := sha256.Sum256([]byte(text))
	vec := make([]float32, f.dims)
	for i := range vec {
		vec[i] = float32(sum[i%len(sum)]) / 255
	}
	return vec, nil
}

func (f *fakeEmbedder) Dimensions() int            { return f.dims }
func (f *fakeEmbedder) ModelName() string          { return "fake-embedder" }
func (f *fakeEmbedder) Ping(context.Context) error { return f.pingErr }
func (f *fakeEmbedder) Close() error               { return nil }

func prose(sentences int) string {
	var sb strings.Builder
	for i := 0; i < sentences; i++ {
		fmt.Fprintf(&sb, "This is test sentence number %d in the document. ", i)
	}
	return sb.String()
}

func TestIndexer_Run(t *testing.T) {
	out := filepath.Join(t.TempDir(), "public", "oracle-embeddings.json")
	source := &fakeSource{docs: []domain.Document{
		{SourceID: "a.md", Title: "Alpha", Tags: []string{"x"}, Text: prose(30)},
		{SourceID: "b.md", Title: "Bravo", Text: prose(5)},
	}}
	embedder := &fakeEmbedder{dims: 8}

	ix := NewIndexer(source, embedder, nil, IndexerOptions{
		ChunkSize:  50,
		Overlap:    5,
		OutputPath: out,
	})

	result, err := ix.Run(context.Background())
	require.NoError(t, err)

	assert.False(t, result.DryRun)
	assert.Greater(t, result.BytesWritten, int64(0))
	assert.GreaterOrEqual(t, result.Elapsed, time.Duration(0))

	idx := result.Index
	assert.Equal(t, domain.IndexVersion, idx.Version)
	assert.Equal(t, "fake-embedder", idx.Model)
	assert.Equal(t, 8, idx.Dimensions)
	assert.Len(t, idx.BuildID, 16)
	assert.Equal(t, 2, idx.DocumentCount)
	assert.Len(t, idx.Documents, 2)

	total := 0
	for _, entry := range idx.Documents {
		total += len(entry.Chunks)
		for i, chunk := range entry.Chunks {
			assert.Equal(t, i, chunk.Position)
			assert.Len(t, chunk.Embedding, 8)
			assert.Equal(t, domain.ChunkID(entry.StrandID, chunk.Position, chunk.Text), chunk.ID)
		}
	}
	assert.Equal(t, total, idx.ChunkCount)

	// Artifact on disk round-trips.
	loaded, err := index.Load(out)
	require.NoError(t, err)
	assert.Equal(t, idx.BuildID, loaded.BuildID)
}

func TestIndexer_DryRun(t *testing.T) {
	out := filepath.Join(t.TempDir(), "oracle-embeddings.json")
	source := &fakeSource{docs: []domain.Document{
		{SourceID: "a.md", Title: "Alpha", Text: prose(20)},
	}}

	ix := NewIndexer(source, nil, nil, IndexerOptions{
		Model:      "all-MiniLM-L6-v2",
		Dimensions: 384,
		ChunkSize:  50,
		Overlap:    5,
		OutputPath: out,
		DryRun:     true,
	})

	result, err := ix.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, result.DryRun)
	assert.Equal(t, int64(0), result.BytesWritten)

	// The output file must not exist.
	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr))

	// Index metadata reflects the configured model; all embeddings empty.
	assert.Equal(t, "all-MiniLM-L6-v2", result.Index.Model)
	assert.Equal(t, 384, result.Index.Dimensions)
	for _, entry := range result.Index.Documents {
		for _, chunk := range entry.Chunks {
			assert.NotNil(t, chunk.Embedding)
			assert.Empty(t, chunk.Embedding)
		}
	}
}

func TestIndexer_SkipsShortDocuments(t *testing.T) {
	source := &fakeSource{docs: []domain.Document{
		{SourceID: "long.md", Title: "Long", Text: prose(10)},
		{SourceID: "tiny.md", Title: "Tiny", Text: "hi"},
		{SourceID: "blank.md", Title: "Blank", Text: "   \n  "},
	}}

	ix := NewIndexer(source, nil, nil, IndexerOptions{
		ChunkSize:  100,
		Overlap:    10,
		OutputPath: filepath.Join(t.TempDir(), "out.json"),
		DryRun:     true,
	})

	result, err := ix.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Index.DocumentCount)
	assert.Contains(t, result.Index.Documents, "long.md")
	assert.NotContains(t, result.Index.Documents, "tiny.md")
	assert.NotContains(t, result.Index.Documents, "blank.md")
}

func TestIndexer_DropsFailedChunksOnly(t *testing.T) {
	// One sentence carries the poison marker; only its chunk is dropped.
	text := prose(30) + "The poisoned sentence lives here with more words to fill it out. " + prose(5)
	source := &fakeSource{docs: []domain.Document{
		{SourceID: "a.md", Title: "Alpha", Text: text},
	}}
	embedder := &fakeEmbedder{dims: 4, failOn: "poisoned"}

	ix := NewIndexer(source, embedder, nil, IndexerOptions{
		ChunkSize:  30,
		Overlap:    0,
		OutputPath: filepath.Join(t.TempDir(), "out.json"),
	})

	result, err := ix.Run(context.Background())
	require.NoError(t, err)

	require.Contains(t, result.Index.Documents, "a.md")
	for _, chunk := range result.Index.Documents["a.md"].Chunks {
		assert.NotContains(t, chunk.Text, "poisoned")
	}
	assert.NotEmpty(t, result.Warnings)
}

func TestIndexer_ExcludesDocumentWithAllChunksDropped(t *testing.T) {
	source := &fakeSource{docs: []domain.Document{
		{SourceID: "bad.md", Title: "Bad", Text: "Every sentence mentions doom here. Doom again in this one too."},
		{SourceID: "good.md", Title: "Good", Text: prose(5)},
	}}
	embedder := &fakeEmbedder{dims: 4, failOn: "doom"}

	ix := NewIndexer(source, embedder, nil, IndexerOptions{
		ChunkSize:  100,
		Overlap:    0,
		OutputPath: filepath.Join(t.TempDir(), "out.json"),
	})

	result, err := ix.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Index.DocumentCount)
	assert.NotContains(t, result.Index.Documents, "bad.md")
	assert.Contains(t, result.Index.Documents, "good.md")
}

func TestIndexer_FatalWhenEmbedderMissing(t *testing.T) {
	source := &fakeSource{}
	ix := NewIndexer(source, nil, nil, IndexerOptions{OutputPath: "x.json"})

	_, err := ix.Run(context.Background())
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestIndexer_FatalWhenPingFails(t *testing.T) {
	source := &fakeSource{}
	embedder := &fakeEmbedder{dims: 4, pingErr: errors.New("connection refused")}
	ix := NewIndexer(source, embedder, nil, IndexerOptions{OutputPath: "x.json"})

	_, err := ix.Run(context.Background())
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestIndexer_FatalWhenSourceFails(t *testing.T) {
	source := &fakeSource{err: errors.New("query failed")}
	ix := NewIndexer(source, nil, nil, IndexerOptions{DryRun: true, OutputPath: "x.json"})

	_, err := ix.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query failed")
}

func TestIndexer_ChunkIDsReproducible(t *testing.T) {
	docs := []domain.Document{{SourceID: "a.md", Title: "Alpha", Text: prose(25)}}
	opts := IndexerOptions{ChunkSize: 40, Overlap: 5, OutputPath: filepath.Join(t.TempDir(), "o.json"), DryRun: true}

	first, err := NewIndexer(&fakeSource{docs: docs}, nil, nil, opts).Run(context.Background())
	require.NoError(t, err)
	second, err := NewIndexer(&fakeSource{docs: docs}, nil, nil, opts).Run(context.Background())
	require.NoError(t, err)

	a := first.Index.Documents["a.md"].Chunks
	b := second.Index.Documents["a.md"].Chunks
	require.Equal(t, len(a), len(b))
	for i := range a {
		assert.Equal(t, a[i].ID, b[i].ID)
		assert.Equal(t, a[i].Text, b[i].Text)
	}

	// Build ids differ run to run.
	assert.NotEqual(t, first.Index.BuildID, second.Index.BuildID)
}

func TestIndexer_PropagatesSourceWarnings(t *testing.T) {
	source := &fakeSource{
		docs:     []domain.Document{{SourceID: "a.md", Title: "Alpha", Text: prose(5)}},
		warnings: []string{"skipping broken.md: permission denied"},
	}
	ix := NewIndexer(source, nil, nil, IndexerOptions{DryRun: true, OutputPath: filepath.Join(t.TempDir(), "o.json")})

	result, err := ix.Run(context.Background())
	require.NoError(t, err)
	assert.Contains(t, result.Warnings, "skipping broken.md: permission denied")
}
