package diag

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/text/width"
)

// Mode selects how a Handler emits reports.
type Mode int

const (
	ModeStderr Mode = iota
	ModeBuffered
)

// Handler collects diagnostics. It is cheap to clone (sharing the
// underlying slice pointer is wrong — instead every pass receives the same
// *Handler instance) with append-only semantics; this is safe because
// compilation is single-threaded (spec.md §5, §9 "interior mutability for
// the diagnostics handler").
type Handler struct {
	mode     Mode
	out      io.Writer
	buffer   []*Report
	lastCode string
}

// NewHandler creates a Handler in the given mode. out is only used in
// ModeStderr; pass nil to default to os.Stderr.
func NewHandler(mode Mode, out io.Writer) *Handler {
	if out == nil {
		out = os.Stderr
	}
	return &Handler{mode: mode, out: out}
}

var (
	colorRed    = color.New(color.FgRed, color.Bold).SprintFunc()
	colorYellow = color.New(color.FgYellow, color.Bold).SprintFunc()
	colorCyan   = color.New(color.FgCyan).SprintFunc()
)

// Emit records a report, rendering it immediately in ModeStderr.
func (h *Handler) Emit(r *Report) {
	if r.Schema == "" {
		r.Schema = "leo.diag/v1"
	}
	h.buffer = append(h.buffer, r)
	if r.Severity == SeverityError {
		h.lastCode = r.Code
	}
	if h.mode == ModeStderr {
		h.render(r)
	}
}

func (h *Handler) render(r *Report) {
	label := colorRed(r.Severity.String())
	if r.Severity == SeverityWarning {
		label = colorYellow(r.Severity.String())
	}
	loc := "<no location>"
	if r.Span != nil {
		loc = fmt.Sprintf("%s:%d:%d", r.Span.File, r.Span.StartLine, r.Span.StartCol)
	}
	fmt.Fprintf(h.out, "%s: %s %s: %s\n", loc, label, colorCyan(r.Code), r.Message)
	if r.Span != nil && r.Span.Line != "" {
		fmt.Fprintf(h.out, "    %s\n", r.Span.Line)
		fmt.Fprintf(h.out, "    %s%s\n", caretPad(r.Span.Line, r.Span.StartCol), colorCyan("^"))
	}
}

// caretPad builds the whitespace prefix that aligns a caret under column
// col (1-based) of line. East-Asian-wide and fullwidth runes occupy two
// terminal columns; every other rune (including combining marks, which
// width.LookupRune reports as narrow) occupies one, so a byte-count-based
// pad would misalign the caret under any non-ASCII identifier or string
// literal. Grounded on golang.org/x/text/width's EastAsianWidth-aware
// classification, from the same golang.org/x/text module whose
// unicode/norm package the lexer uses for source normalization
// (internal/lexer.New).
func caretPad(line string, col int) string {
	var b strings.Builder
	col--
	for _, r := range line {
		if col <= 0 {
			break
		}
		col--
		if isWideRune(r) {
			b.WriteByte(' ')
			b.WriteByte(' ')
		} else {
			b.WriteByte(' ')
		}
	}
	return b.String()
}

func isWideRune(r rune) bool {
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return true
	default:
		return false
	}
}

// HadErrors reports whether any SeverityError report has been emitted.
func (h *Handler) HadErrors() bool {
	for _, r := range h.buffer {
		if r.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Reports returns every buffered report (errors and warnings), in emission order.
func (h *Handler) Reports() []*Report { return h.buffer }

// Errors returns only the SeverityError reports.
func (h *Handler) Errors() []*Report {
	var out []*Report
	for _, r := range h.buffer {
		if r.Severity == SeverityError {
			out = append(out, r)
		}
	}
	return out
}

// Warnings returns only the SeverityWarning reports.
func (h *Handler) Warnings() []*Report {
	var out []*Report
	for _, r := range h.buffer {
		if r.Severity == SeverityWarning {
			out = append(out, r)
		}
	}
	return out
}

// Drain returns and clears the buffer (used by the linter/tests between
// passes, per spec.md §6.4).
func (h *Handler) Drain() []*Report {
	out := h.buffer
	h.buffer = nil
	return out
}

// LastErrorCode returns the code of the most recently emitted error, so a
// process wrapper can preserve an exit code across a recoverable failure
// (spec.md §7).
func (h *Handler) LastErrorCode() string { return h.lastCode }
