package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "indexer.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNewConfigStore_MissingFileIsEmpty(t *testing.T) {
	s, err := NewConfigStore(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)

	_, ok := s.Get("model")
	assert.False(t, ok)
	assert.Equal(t, "", s.GetString("model"))
	assert.Equal(t, 0, s.GetInt("chunk-size"))
}

func TestNewConfigStore_MalformedFile(t *testing.T) {
	path := writeConfig(t, "model = [unclosed")
	_, err := NewConfigStore(path)
	assert.Error(t, err)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	path := writeConfig(t, `
model = "nomic-embed-text"
chunk-size = 256
dry-run = true
`)

	s, err := NewConfigStore(path)
	require.NoError(t, err)

	assert.Equal(t, "nomic-embed-text", s.GetString("model"))
	assert.Equal(t, 256, s.GetInt("chunk-size"))
	assert.True(t, s.GetBool("dry-run"))

	// Wrong-type reads fall back to zero values.
	assert.Equal(t, 0, s.GetInt("model"))
	assert.Equal(t, "", s.GetString("chunk-size"))
	assert.False(t, s.GetBool("model"))
}
