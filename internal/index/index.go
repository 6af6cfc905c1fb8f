// Package index persists and loads the Oracle index artifact and ranks its
// chunks for offline query smoke tests.
package index

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/openstrand/oracle-indexer/internal/core/domain"
)

// Write serialises the index as formatted JSON to path, creating parent
// directories as needed. It returns the artifact size in bytes. The write
// happens once per run, at the very end; there is exactly one writer.
func Write(idx *domain.Index, path string) (int64, error) {
	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("marshal index: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, fmt.Errorf("create output directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return 0, fmt.Errorf("write index: %w", err)
	}
	return int64(len(data)), nil
}

// Load reads an index artifact from path.
func Load(path string) (*domain.Index, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: %w", path, domain.ErrIndexNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read index: %w", err)
	}

	var idx domain.Index
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("parse index %s: %w", path, err)
	}
	return &idx, nil
}

// Match is one chunk ranked against a query vector.
type Match struct {
	StrandID string
	Title    string
	ChunkID  string
	Text     string
	Position int
	Score    float64
}

// Rank scores every embedded chunk in the index against query by cosine
// similarity and returns the topK best matches. Chunks without embeddings
// (dry-run artifacts) are ignored.
func Rank(idx *domain.Index, query []float32, topK int) []Match {
	var matches []Match
	for sourceID, entry := range idx.Documents {
		for _, chunk := range entry.Chunks {
			if len(chunk.Embedding) == 0 {
				continue
			}
			matches = append(matches, Match{
				StrandID: sourceID,
				Title:    entry.Title,
				ChunkID:  chunk.ID,
				Text:     chunk.Text,
				Position: chunk.Position,
				Score:    CosineSimilarity(query, chunk.Embedding),
			})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		// Stable order for equal scores, map iteration is random.
		if matches[i].StrandID != matches[j].StrandID {
			return matches[i].StrandID < matches[j].StrandID
		}
		return matches[i].Position < matches[j].Position
	})

	if topK > 0 && len(matches) > topK {
		matches = matches[:topK]
	}
	return matches
}

// CosineSimilarity computes the cosine of the angle between a and b.
// Mismatched lengths or zero vectors score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
