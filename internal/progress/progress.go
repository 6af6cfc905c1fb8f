// Package progress provides ProgressReporter implementations for the
// indexing pipeline: an in-place terminal line for interactive runs and a
// no-op reporter for tests and redirected output.
package progress

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/openstrand/oracle-indexer/internal/core/ports/driven"
)

// minLabelWidth is the floor for the truncated document title.
const minLabelWidth = 12

// Terminal renders a `\r`-rewritten status line:
//
//	[12/100] 12% Some Document Title...
type Terminal struct {
	out   io.Writer
	width int
}

// NewTerminal creates a terminal reporter writing to w. The label is
// truncated to the terminal width when w is a TTY.
func NewTerminal(w io.Writer) *Terminal {
	width := 0
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if tw, _, err := term.GetSize(int(f.Fd())); err == nil {
			width = tw
		}
	}
	return &Terminal{out: w, width: width}
}

// Report rewrites the status line in place.
func (t *Terminal) Report(current, total int, label string) {
	pct := 0
	if total > 0 {
		pct = current * 100 / total
	}

	prefix := fmt.Sprintf("[%d/%d] %d%% ", current, total, pct)
	if t.width > 0 {
		budget := t.width - len(prefix) - 1
		if budget < minLabelWidth {
			budget = minLabelWidth
		}
		label = truncate(label, budget)
	}

	// Trailing spaces clear leftovers from a longer previous line.
	fmt.Fprintf(t.out, "\r%s%s    ", prefix, label)
}

// Done finishes the in-place line.
func (t *Terminal) Done() {
	fmt.Fprintln(t.out)
}

// truncate shortens s to at most n characters, ellipsised.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}

// Nop discards all progress updates. Used in tests and when stderr is not
// a terminal.
type Nop struct{}

// Report does nothing.
func (Nop) Report(int, int, string) {}

// Done does nothing.
func (Nop) Done() {}

// ForWriter picks the terminal reporter when w is an interactive TTY and
// the no-op reporter otherwise.
func ForWriter(w io.Writer) driven.ProgressReporter {
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return NewTerminal(w)
	}
	return Nop{}
}
