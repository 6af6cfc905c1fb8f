package domain

// IndexVersion identifies the artifact schema version.
const IndexVersion = "1.0.0"

// Index is the final persisted artifact. It is assembled once per run and
// serialised as a single JSON file consumed by the OpenStrand web client.
type Index struct {
	// Version is the artifact schema version.
	Version string `json:"version"`

	// Model is the embedding model name the vectors were produced with.
	Model string `json:"model"`

	// Dimensions is the fixed length of every embedding vector.
	Dimensions int `json:"dimensions"`

	// GeneratedAt is the RFC 3339 UTC timestamp of the run.
	GeneratedAt string `json:"generatedAt"`

	// BuildID is a random 16-hex-character token distinguishing builds.
	BuildID string `json:"buildId"`

	// DocumentCount is the number of documents that produced at least one
	// chunk. Documents with zero valid chunks are excluded and not counted.
	DocumentCount int `json:"documentCount"`

	// ChunkCount is the sum of chunk-list lengths across all entries.
	ChunkCount int `json:"chunkCount"`

	// Documents maps each contributing document's SourceID to its entry.
	Documents map[string]DocumentEntry `json:"documents"`
}

// DocumentEntry is a document's descriptive fields plus its ordered chunks
// as they appear in the artifact.
type DocumentEntry struct {
	// StrandID equals the document's SourceID (the map key).
	StrandID string `json:"strandId"`

	Title   string   `json:"title"`
	Summary string   `json:"summary"`
	Type    string   `json:"type"`
	Tags    []string `json:"tags"`

	// Chunks are in position order, contiguous from zero.
	Chunks []Chunk `json:"chunks"`
}
