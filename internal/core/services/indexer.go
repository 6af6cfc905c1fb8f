// Package services implements the driving ports: the indexing pipeline and
// the index query smoke test.
package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/openstrand/oracle-indexer/internal/chunker"
	"github.com/openstrand/oracle-indexer/internal/core/domain"
	"github.com/openstrand/oracle-indexer/internal/core/ports/driven"
	"github.com/openstrand/oracle-indexer/internal/core/ports/driving"
	"github.com/openstrand/oracle-indexer/internal/index"
	"github.com/openstrand/oracle-indexer/internal/logger"
)

// Ensure Indexer implements the interface.
var _ driving.IndexerService = (*Indexer)(nil)

// IndexerOptions configure one indexing run.
type IndexerOptions struct {
	// Model and Dimensions describe the embedding space. In a normal run
	// they are taken from the embedding service; in dry-run these values
	// are recorded in the (unwritten) index instead.
	Model      string
	Dimensions int

	// ChunkSize and Overlap are the chunker budgets in estimated tokens.
	ChunkSize int
	Overlap   int

	// OutputPath is where the artifact is written.
	OutputPath string

	// DryRun skips embedding calls and the output write entirely.
	DryRun bool
}

// Indexer runs the pipeline: fetch, chunk, identify, embed, assemble, write.
// Processing is strictly sequential: one document at a time, one chunk at a
// time. Throughput is bounded by the embedding service, not the pipeline.
type Indexer struct {
	source   driven.DocumentSource
	embedder driven.EmbeddingService
	progress driven.ProgressReporter
	splitter *chunker.Chunker
	opts     IndexerOptions
}

// NewIndexer creates the pipeline. embedder may be nil only in dry-run.
// progress may be nil, in which case updates are discarded.
func NewIndexer(
	source driven.DocumentSource,
	embedder driven.EmbeddingService,
	progress driven.ProgressReporter,
	opts IndexerOptions,
) *Indexer {
	if progress == nil {
		progress = nopReporter{}
	}
	return &Indexer{
		source:   source,
		embedder: embedder,
		progress: progress,
		splitter: chunker.New(
			chunker.WithChunkSize(opts.ChunkSize),
			chunker.WithOverlap(opts.Overlap),
		),
		opts: opts,
	}
}

// Run executes one complete indexing pass.
func (ix *Indexer) Run(ctx context.Context) (*driving.RunResult, error) {
	start := time.Now()

	model := ix.opts.Model
	dimensions := ix.opts.Dimensions
	if !ix.opts.DryRun {
		if ix.embedder == nil {
			return nil, domain.ErrEmbeddingUnavailable
		}
		// An unreachable embedding service is fatal before any document
		// is processed; per-chunk failures later are not.
		if err := ix.embedder.Ping(ctx); err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
		}
		model = ix.embedder.ModelName()
		dimensions = ix.embedder.Dimensions()
	}

	logger.Section("Fetching documents")
	docs, warnings, err := ix.source.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching documents: %w", err)
	}
	logger.Info("fetched %d documents from %s source", len(docs), ix.source.Name())

	idx := &domain.Index{
		Version:     domain.IndexVersion,
		Model:       model,
		Dimensions:  dimensions,
		GeneratedAt: start.UTC().Format(time.RFC3339),
		BuildID:     newBuildID(),
		Documents:   make(map[string]domain.DocumentEntry),
	}

	logger.Section("Processing")
	for i, doc := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ix.progress.Report(i+1, len(docs), doc.Title)

		if !doc.Indexable() {
			logger.Debug("skipping %s: text too short", doc.SourceID)
			continue
		}

		chunks, dropped := ix.processDocument(ctx, doc)
		warnings = append(warnings, dropped...)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if len(chunks) == 0 {
			logger.Debug("skipping %s: no chunks produced", doc.SourceID)
			continue
		}

		idx.Documents[doc.SourceID] = domain.DocumentEntry{
			StrandID: doc.SourceID,
			Title:    doc.Title,
			Summary:  doc.Summary,
			Type:     documentType(doc),
			Tags:     normalisedTags(doc),
			Chunks:   chunks,
		}
		idx.DocumentCount++
		idx.ChunkCount += len(chunks)
	}
	ix.progress.Done()

	result := &driving.RunResult{
		Index:      idx,
		OutputPath: ix.opts.OutputPath,
		Warnings:   warnings,
		DryRun:     ix.opts.DryRun,
	}

	if ix.opts.DryRun {
		logger.Info("dry run: skipping write of %s", ix.opts.OutputPath)
	} else {
		logger.Section("Writing index")
		size, err := index.Write(idx, ix.opts.OutputPath)
		if err != nil {
			return nil, err
		}
		result.BytesWritten = size
		logger.Info("wrote %s (%d bytes)", ix.opts.OutputPath, size)
	}

	result.Elapsed = time.Since(start)
	return result, nil
}

// processDocument chunks one document and embeds each chunk in order.
// A failed embedding drops only that chunk; the document and run continue.
func (ix *Indexer) processDocument(ctx context.Context, doc domain.Document) ([]domain.Chunk, []string) {
	segments := ix.splitter.Chunk(doc.Text)

	var warnings []string
	chunks := make([]domain.Chunk, 0, len(segments))
	for _, seg := range segments {
		chunk := domain.Chunk{
			ID:         domain.ChunkID(doc.SourceID, seg.Position, seg.Text),
			StrandID:   doc.SourceID,
			Text:       seg.Text,
			Position:   seg.Position,
			TokenCount: seg.TokenCount,
			Embedding:  []float32{},
		}

		if !ix.opts.DryRun {
			vec, err := ix.embedder.Embed(ctx, seg.Text)
			if err != nil {
				if ctx.Err() != nil {
					return chunks, warnings
				}
				warning := fmt.Sprintf("dropping chunk %d of %s: %v", seg.Position, doc.SourceID, err)
				logger.Warn("%s", warning)
				warnings = append(warnings, warning)
				continue
			}
			chunk.Embedding = vec
		}

		chunks = append(chunks, chunk)
	}

	return chunks, warnings
}

// documentType applies the generic category when the source provided none.
func documentType(doc domain.Document) string {
	if doc.Type == "" {
		return domain.DefaultDocumentType
	}
	return doc.Type
}

// normalisedTags guarantees the tags field serialises as an array.
func normalisedTags(doc domain.Document) []string {
	if doc.Tags == nil {
		return []string{}
	}
	return doc.Tags
}

// newBuildID returns a random 16-hex-character token distinguishing builds.
func newBuildID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:16]
}

// nopReporter discards progress updates when no reporter is injected.
type nopReporter struct{}

func (nopReporter) Report(int, int, string) {}
func (nopReporter) Done()                   {}
