package driven

// ProgressReporter receives per-document progress during an indexing run.
// Implementations render to the terminal or discard updates entirely; the
// pipeline itself holds no display state.
type ProgressReporter interface {
	// Report is called once per document before it is processed.
	// current is 1-based; label is the document title (may be truncated
	// for display by the implementation).
	Report(current, total int, label string)

	// Done is called once after the last document, letting terminal
	// implementations finish the in-place line.
	Done()
}
