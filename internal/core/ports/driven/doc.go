// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - DocumentSource: Fetches documents from a backend (database or files)
//   - EmbeddingService: Generates vector embeddings (not needed in dry-run)
//   - ProgressReporter: Receives per-document progress updates
//
// # Optional Interfaces
//
//   - ConfigStore: Flag defaults from a configuration file; can be nil
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or source package
package driven
