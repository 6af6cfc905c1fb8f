package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrMissingDatabaseURL indicates db mode was selected without a
	// connection URL (flag or DATABASE_URL environment variable).
	ErrMissingDatabaseURL = errors.New("database URL is required for --source db (set --db-url or DATABASE_URL)")

	// ErrMissingFilesDir indicates files mode was selected without a root
	// directory to scan.
	ErrMissingFilesDir = errors.New("--files-dir is required for --source files")

	// ErrUnknownSource indicates a source mode other than db or files.
	ErrUnknownSource = errors.New("unknown source (expected db or files)")

	// ErrUnknownProvider indicates an unrecognised embedding provider.
	ErrUnknownProvider = errors.New("unknown embedding provider (expected ollama or openai)")

	// ErrEmbeddingUnavailable indicates the embedding service could not be
	// initialised. This is fatal for a normal (non-dry-run) run.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrDimensionMismatch indicates a query vector's length differs from
	// the index's Dimensions value.
	ErrDimensionMismatch = errors.New("embedding dimensions do not match index")

	// ErrIndexNotFound indicates the index artifact does not exist at the
	// given path.
	ErrIndexNotFound = errors.New("index file not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")
)
