// Package database provides a DocumentSource backed by the OpenStrand
// content store (a SQLite strands table).
package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/openstrand/oracle-indexer/internal/core/domain"
	"github.com/openstrand/oracle-indexer/internal/core/ports/driven"
	"github.com/openstrand/oracle-indexer/internal/logger"
)

// Ensure Source implements the interface.
var _ driven.DocumentSource = (*Source)(nil)

// selectStrands fetches the most recently updated content-bearing strands.
const selectStrands = `
	SELECT id, title, summary, type, content, metadata, updated_at
	FROM strands
	WHERE content IS NOT NULL AND TRIM(content) != ''
	ORDER BY updated_at DESC
	LIMIT ?
`

// Source reads strand records from the product database.
type Source struct {
	db      *sql.DB
	maxDocs int
}

// New opens the database at url and verifies connectivity.
// An empty url is a configuration error caught before any I/O.
func New(ctx context.Context, url string, maxDocs int) (*Source, error) {
	if url == "" {
		return nil, domain.ErrMissingDatabaseURL
	}

	db, err := sql.Open("sqlite", url)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	return &Source{db: db, maxDocs: maxDocs}, nil
}

// Name returns the source mode identifier.
func (s *Source) Name() string {
	return "db"
}

// Fetch queries up to maxDocs strands ordered by most-recently-updated.
// The connection is checked out for the duration of the query and released
// on both success and failure paths.
func (s *Source) Fetch(ctx context.Context) ([]domain.Document, []string, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("acquiring connection: %w", err)
	}
	defer conn.Close()

	rows, err := conn.QueryContext(ctx, selectStrands, s.maxDocs)
	if err != nil {
		return nil, nil, fmt.Errorf("querying strands: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		var id string
		var title, summary, typ, content, metadata, updated sql.NullString
		if err := rows.Scan(&id, &title, &summary, &typ, &content, &metadata, &updated); err != nil {
			return nil, nil, fmt.Errorf("scanning strand: %w", err)
		}

		doc := domain.Document{
			SourceID:  id,
			Title:     title.String,
			Summary:   summary.String,
			Type:      typ.String,
			Text:      content.String,
			Tags:      tagsFromMetadata(metadata.String),
			UpdatedAt: parseTimestamp(updated.String),
		}
		if doc.Type == "" {
			doc.Type = domain.DefaultDocumentType
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("reading strands: %w", err)
	}

	logger.Info("db source: %d strands fetched", len(docs))
	return docs, nil, nil
}

// Close releases the database handle.
func (s *Source) Close() error {
	return s.db.Close()
}

// tagsFromMetadata normalises the metadata JSON's tags field into a flat
// string list. Accepts an array of strings, a single string scalar, or
// nothing; everything else yields an empty set. The ambiguity is resolved
// here so downstream code only ever sees []string.
func tagsFromMetadata(raw string) []string {
	tags := []string{}
	if raw == "" {
		return tags
	}

	var meta map[string]any
	if err := json.Unmarshal([]byte(raw), &meta); err != nil {
		logger.Debug("unparseable strand metadata: %v", err)
		return tags
	}

	switch v := meta["tags"].(type) {
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				tags = append(tags, s)
			}
		}
	case string:
		tags = append(tags, v)
	}
	return tags
}

// parseTimestamp accepts the timestamp formats SQLite commonly stores.
// Provenance only; a zero time is acceptable.
func parseTimestamp(raw string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05", time.DateOnly} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}
