package services

import (
	"context"
	"fmt"

	"github.com/openstrand/oracle-indexer/internal/core/domain"
	"github.com/openstrand/oracle-indexer/internal/core/ports/driven"
	"github.com/openstrand/oracle-indexer/internal/core/ports/driving"
	"github.com/openstrand/oracle-indexer/internal/index"
	"github.com/openstrand/oracle-indexer/internal/logger"
)

// Ensure Query implements the interface.
var _ driving.QueryService = (*Query)(nil)

// Query ranks chunks of a persisted index against ad-hoc text. It exists to
// smoke-test an artifact before the web client ships it.
type Query struct {
	embedder  driven.EmbeddingService
	indexPath string
}

// NewQuery creates a query service over the artifact at indexPath.
func NewQuery(embedder driven.EmbeddingService, indexPath string) *Query {
	return &Query{embedder: embedder, indexPath: indexPath}
}

// Query embeds text and returns the topK most similar chunks.
func (q *Query) Query(ctx context.Context, text string, topK int) ([]driving.QueryMatch, error) {
	if q.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	idx, err := index.Load(q.indexPath)
	if err != nil {
		return nil, err
	}
	logger.Info("loaded index: %d documents, %d chunks, model %s",
		idx.DocumentCount, idx.ChunkCount, idx.Model)

	if q.embedder.Dimensions() != idx.Dimensions {
		return nil, fmt.Errorf("%w: index has %d, service %s produces %d",
			domain.ErrDimensionMismatch, idx.Dimensions, q.embedder.ModelName(), q.embedder.Dimensions())
	}

	vec, err := q.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	if len(vec) != idx.Dimensions {
		return nil, fmt.Errorf("%w: query vector has length %d", domain.ErrDimensionMismatch, len(vec))
	}

	ranked := index.Rank(idx, vec, topK)
	matches := make([]driving.QueryMatch, len(ranked))
	for i, m := range ranked {
		matches[i] = driving.QueryMatch{
			StrandID: m.StrandID,
			Title:    m.Title,
			ChunkID:  m.ChunkID,
			Text:     m.Text,
			Position: m.Position,
			Score:    m.Score,
		}
	}
	return matches, nil
}
