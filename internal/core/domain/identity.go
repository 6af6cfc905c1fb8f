package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// chunkIDHexLength is the number of hex characters kept from the digest.
const chunkIDHexLength = 16

// chunkIDTextPrefix is how many characters of the chunk text contribute
// to its identity. Edits beyond this prefix do not change the id.
const chunkIDTextPrefix = 100

// ChunkID derives a stable, content-addressed identifier for a chunk.
// The digest input is "{sourceID}:{position}:{first 100 chars of text}",
// so re-running the indexer on unchanged content reproduces identical ids.
func ChunkID(sourceID string, position int, text string) string {
	prefix := text
	if runes := []rune(text); len(runes) > chunkIDTextPrefix {
		prefix = string(runes[:chunkIDTextPrefix])
	}
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s:%d:%s", sourceID, position, prefix)))
	return hex.EncodeToString(sum[:])[:chunkIDHexLength]
}
