package driven

import "context"

// EmbeddingService generates vector embeddings from text.
//
// Implementations may include:
//   - Ollama (all-MiniLM-L6-v2, nomic-embed-text)
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
//
// The indexer calls Embed once per chunk, sequentially. A per-chunk failure
// is recoverable (the chunk is dropped with a warning); a Ping failure at
// startup is fatal for the run.
type EmbeddingService interface {
	// Embed generates a mean-pooled, normalised vector for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the embedding vector size (e.g. 384, 1536).
	// This value is recorded in the index artifact.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable with a lightweight request.
	// Called once before any document is processed.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
