// Package files provides a DocumentSource that scans a filesystem tree of
// text and markdown files.
package files

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/openstrand/oracle-indexer/internal/core/domain"
	"github.com/openstrand/oracle-indexer/internal/core/ports/driven"
	"github.com/openstrand/oracle-indexer/internal/logger"
)

// Ensure Source implements the interface.
var _ driven.DocumentSource = (*Source)(nil)

// indexableExtensions are the file types picked up by the walk.
var indexableExtensions = map[string]bool{
	".md":   true,
	".mdx":  true,
	".txt":  true,
	".json": true,
}

// Source walks a directory tree and yields one document per indexable file.
type Source struct {
	root string
}

// New creates a filesystem source rooted at dir.
// The directory must exist and be readable.
func New(dir string) (*Source, error) {
	if dir == "" {
		return nil, domain.ErrMissingFilesDir
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("files dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("files dir %s: %w", dir, domain.ErrInvalidInput)
	}
	return &Source{root: dir}, nil
}

// Name returns the source mode identifier.
func (s *Source) Name() string {
	return "files"
}

// Fetch recursively walks the root directory. Files that cannot be read are
// skipped with a warning; the walk continues. A walk failure itself is fatal.
func (s *Source) Fetch(ctx context.Context) ([]domain.Document, []string, error) {
	var docs []domain.Document
	var warnings []string

	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			return nil
		}
		if !indexableExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}

		doc, readErr := s.readDocument(path, d)
		if readErr != nil {
			warning := fmt.Sprintf("skipping %s: %v", path, readErr)
			logger.Warn("%s", warning)
			warnings = append(warnings, warning)
			return nil
		}

		docs = append(docs, doc)
		return nil
	})
	if err != nil {
		return nil, warnings, fmt.Errorf("walking %s: %w", s.root, err)
	}

	logger.Info("files source: %d documents from %s (%d skipped)",
		len(docs), s.root, len(warnings))
	return docs, warnings, nil
}

// Close releases resources. The plain walker holds none.
func (s *Source) Close() error {
	return nil
}

// readDocument loads one file and normalises it into a Document.
func (s *Source) readDocument(path string, d fs.DirEntry) (domain.Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return domain.Document{}, err
	}

	rel, err := filepath.Rel(s.root, path)
	if err != nil {
		return domain.Document{}, err
	}

	doc := domain.Document{
		SourceID: filepath.ToSlash(rel),
		Type:     domain.DefaultDocumentType,
		Tags:     []string{},
	}

	if info, err := d.Info(); err == nil {
		doc.UpdatedAt = info.ModTime()
	}

	if meta, body, ok := parseFrontmatter(string(content)); ok {
		doc.Title = meta.Title
		doc.Summary = meta.Summary
		if len(meta.Tags) > 0 {
			doc.Tags = meta.Tags
		}
		doc.Text = body
	} else {
		doc.Title = titleFromFilename(path)
		doc.Text = string(content)
	}

	if doc.Title == "" {
		doc.Title = titleFromFilename(path)
	}

	return doc, nil
}

// titleFromFilename derives a title from the file name with its extension
// stripped.
func titleFromFilename(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}
